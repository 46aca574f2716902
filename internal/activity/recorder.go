package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
	"github.com/tradedeskhq/tradedesk-backend/pkg/pagination"
)

const recordTimeout = 5 * time.Second

// Entry describes one auditable event.
type Entry struct {
	ActorID   *uuid.UUID
	ActorName string
	Action    enums.ActivityAction
	Outcome   enums.ActivityOutcome
	EntityID  *uuid.UUID
	Detail    string
}

// Recorder writes audit entries. Recording is best effort: a failed
// insert is logged and swallowed so it can never fail the operation
// being audited.
type Recorder struct {
	repo *Repository
	logg *logger.Logger
	wg   sync.WaitGroup
}

// NewRecorder constructs a recorder over the activity repository.
func NewRecorder(repo *Repository, logg *logger.Logger) (*Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	return &Recorder{repo: repo, logg: logg}, nil
}

// Record persists the entry off the request path. The write runs in its
// own goroutine with a deadline detached from the request context, so a
// slow audit insert never delays the response and a cancelled request
// still gets audited.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if entry.Outcome == "" {
		entry.Outcome = enums.ActivityOutcomeSuccess
	}

	detached := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		writeCtx, cancel := context.WithTimeout(detached, recordTimeout)
		defer cancel()

		err := r.repo.Insert(writeCtx, &models.ActivityLog{
			ActorID:   entry.ActorID,
			ActorName: entry.ActorName,
			Action:    entry.Action,
			Outcome:   entry.Outcome,
			EntityID:  entry.EntityID,
			Detail:    entry.Detail,
		})
		if err != nil && r.logg != nil {
			r.logg.Error(detached, "activity record failed", fmt.Errorf("recording %s: %w", entry.Action, err))
		}
	}()
}

// Wait blocks until every in-flight Record goroutine has finished. Used
// on shutdown to flush pending audit writes.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// ListInput captures listing filters and pagination.
type ListInput struct {
	ActorID *uuid.UUID
	Action  string
	Limit   int
	Cursor  string
}

// ListResult is a cursor page of activity entries.
type ListResult struct {
	Entries    []EntryDTO `json:"entries"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// List returns the audit trail page matching the input.
func (r *Recorder) List(ctx context.Context, input ListInput) (*ListResult, error) {
	filter := ListFilter{ActorID: input.ActorID}
	if input.Action != "" {
		action, err := enums.ParseActivityAction(input.Action)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid action filter")
		}
		filter.Action = action
	}

	params := pagination.Params{Limit: input.Limit, Cursor: input.Cursor}
	rows, err := r.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing activity")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	result := &ListResult{Entries: make([]EntryDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		result.Entries = append(result.Entries, *toEntryDTO(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

// Recent returns the newest n audit entries for the dashboard.
func (r *Recorder) Recent(ctx context.Context, n int) ([]EntryDTO, error) {
	rows, err := r.repo.Recent(ctx, n)
	if err != nil {
		return nil, err
	}
	dtos := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *toEntryDTO(&rows[i]))
	}
	return dtos, nil
}

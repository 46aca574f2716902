package activity

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradedeskhq/tradedesk-backend/pkg/db/models"
)

// EntryDTO is one audit trail row returned to clients.
type EntryDTO struct {
	ID        uuid.UUID  `json:"id"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	ActorName string     `json:"actor_name,omitempty"`
	Action    string     `json:"action"`
	Outcome   string     `json:"outcome"`
	EntityID  *uuid.UUID `json:"entity_id,omitempty"`
	Detail    string     `json:"detail,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toEntryDTO(m *models.ActivityLog) *EntryDTO {
	if m == nil {
		return nil
	}
	return &EntryDTO{
		ID:        m.ID,
		ActorID:   m.ActorID,
		ActorName: m.ActorName,
		Action:    m.Action.String(),
		Outcome:   m.Outcome.String(),
		EntityID:  m.EntityID,
		Detail:    m.Detail,
		CreatedAt: m.CreatedAt,
	}
}

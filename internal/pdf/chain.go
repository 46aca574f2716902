package pdf

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	pkgerrors "github.com/tradedeskhq/tradedesk-backend/pkg/errors"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
	"github.com/tradedeskhq/tradedesk-backend/pkg/metrics"
)

// DefaultStrategyTimeout bounds a single strategy attempt when the
// configured timeout is zero.
const DefaultStrategyTimeout = 45 * time.Second

// Chain tries renderers in a fixed priority order until one produces a
// PDF. A strategy failure, missing dependency, or timeout advances the
// chain; only exhausting every strategy fails the request.
type Chain struct {
	renderers []Renderer
	timeout   time.Duration
	logg      *logger.Logger
	metrics   *metrics.PDFMetrics
}

// NewChain builds a chain over the provided renderers in priority order.
func NewChain(renderers []Renderer, timeout time.Duration, logg *logger.Logger, m *metrics.PDFMetrics) (*Chain, error) {
	if len(renderers) == 0 {
		return nil, fmt.Errorf("at least one renderer is required")
	}
	if timeout <= 0 {
		timeout = DefaultStrategyTimeout
	}
	return &Chain{
		renderers: renderers,
		timeout:   timeout,
		logg:      logg,
		metrics:   m,
	}, nil
}

// Render walks the strategy chain with the same document until one
// renderer succeeds. Callers receive either the full PDF bytes or a
// single aggregated failure; no partial output.
func (c *Chain) Render(ctx context.Context, doc Document) ([]byte, error) {
	var failures error

	for _, renderer := range c.renderers {
		data, err := c.attempt(ctx, renderer, doc)
		if err == nil {
			return data, nil
		}

		failures = multierr.Append(failures, fmt.Errorf("%s: %w", renderer.Name(), err))
		c.metrics.IncFailure(renderer.Name())
		if c.logg != nil {
			logCtx := c.logg.WithFields(ctx, map[string]any{
				"strategy": renderer.Name(),
				"cause":    err.Error(),
			})
			c.logg.Warn(logCtx, "pdf.strategy.failed")
		}

		if ctx.Err() != nil {
			break
		}
	}

	c.metrics.IncChainExhausted()
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, failures, "PDF generation failed")
}

func (c *Chain) attempt(ctx context.Context, renderer Renderer, doc Document) ([]byte, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := renderer.Available(attemptCtx); err != nil {
		return nil, fmt.Errorf("unavailable: %w", err)
	}

	start := time.Now()
	data, err := renderer.Render(attemptCtx, doc)
	c.metrics.ObserveDuration(renderer.Name(), time.Since(start))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("renderer returned empty output")
	}

	c.metrics.IncSuccess(renderer.Name())
	return data, nil
}

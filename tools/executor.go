// Retrieval executor with timeout and retry logic.
//
// Information Hiding:
// - Retry strategy implementation hidden
// - Backoff algorithm hidden
// - Per-attempt deadlines hidden

package tools

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/richinex/chatrag/index"
	"github.com/richinex/chatrag/model"
)

// Executor runs index searches with a per-attempt timeout and retries.
type Executor struct {
	config ToolConfig
	logger *zap.Logger
}

// NewExecutor creates a new executor with the given configuration.
func NewExecutor(config ToolConfig, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{config: config, logger: logger}
}

// Search queries the index, retrying failed attempts with exponential
// backoff. A cancelled parent context stops immediately.
func (e *Executor) Search(ctx context.Context, idx index.Index, query string, k int) ([]model.Evidence, error) {
	var lastErr error
	attempts := e.config.Retries()

	for attempt := uint32(0); attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.calculateBackoff(attempt)):
			}
		}

		items, err := e.searchOnce(ctx, idx, query, k)
		if err == nil {
			return items, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Debug("index search attempt failed",
			zap.Uint32("attempt", attempt+1),
			zap.String("query", query),
			zap.Error(err))
	}

	return nil, fmt.Errorf("index search failed after %d attempts: %w", attempts, lastErr)
}

func (e *Executor) searchOnce(ctx context.Context, idx index.Index, query string, k int) ([]model.Evidence, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout())
	defer cancel()
	return idx.SimilaritySearch(ctx, query, k)
}

// calculateBackoff returns the backoff duration for the given attempt.
func (e *Executor) calculateBackoff(attempt uint32) time.Duration {
	const (
		baseDelay = 100 * time.Millisecond
		maxDelay  = 2 * time.Second
	)

	delay := baseDelay * time.Duration(1<<attempt)
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

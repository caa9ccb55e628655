package executor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Retry wraps an executor with bounded retries and linear backoff.
// Context cancellation is never retried.
type Retry struct {
	inner       Executor
	maxAttempts int
	backoff     time.Duration
}

// WithRetry wraps the executor with up to maxAttempts attempts.
// maxAttempts below 2 returns the executor unwrapped.
func WithRetry(inner Executor, maxAttempts int, backoff time.Duration) Executor {
	if maxAttempts < 2 {
		return inner
	}
	if backoff < 0 {
		backoff = 0
	}
	return &Retry{inner: inner, maxAttempts: maxAttempts, backoff: backoff}
}

// Name returns the wrapped executor's identifier.
func (r *Retry) Name() string { return r.inner.Name() }

// Capabilities returns the wrapped executor's capability set.
func (r *Retry) Capabilities() models.CapabilitySet { return r.inner.Capabilities() }

// Execute runs the wrapped executor, retrying transient failures.
func (r *Retry) Execute(ctx context.Context, payload models.Payload) (models.Payload, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		result, err := r.inner.Execute(ctx, payload)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, err
		}

		if attempt < r.maxAttempts {
			log.Printf("[executor] %s attempt %d/%d failed: %v", r.inner.Name(), attempt, r.maxAttempts, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * r.backoff):
			}
		}
	}
	return nil, fmt.Errorf("executor %s failed after %d attempts: %w", r.inner.Name(), r.maxAttempts, lastErr)
}

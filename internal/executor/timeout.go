package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Timeout wraps an executor with a per-call deadline.
// A fired deadline surfaces as an ordinary execution error so the
// coordinator records a failed outcome instead of aborting the batch.
type Timeout struct {
	inner   Executor
	timeout time.Duration
}

// WithTimeout wraps the executor. A non-positive timeout returns the
// executor unwrapped.
func WithTimeout(inner Executor, timeout time.Duration) Executor {
	if timeout <= 0 {
		return inner
	}
	return &Timeout{inner: inner, timeout: timeout}
}

// Name returns the wrapped executor's identifier.
func (t *Timeout) Name() string { return t.inner.Name() }

// Capabilities returns the wrapped executor's capability set.
func (t *Timeout) Capabilities() models.CapabilitySet { return t.inner.Capabilities() }

// Execute runs the wrapped executor under a deadline.
func (t *Timeout) Execute(ctx context.Context, payload models.Payload) (models.Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	result, err := t.inner.Execute(ctx, payload)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("executor %s timed out after %s", t.inner.Name(), t.timeout)
		}
		return nil, err
	}
	return result, nil
}

// Package executor defines the task executor contract and the built-in
// executor kinds: static responders, HTTP JSON forwarders, and LLM-backed
// executors.
package executor

import (
	"context"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Executor runs one subtask payload and returns a result payload.
// Implementations must be safe to invoke concurrently with other
// executors; they share no mutable state with each other.
type Executor interface {
	// Name is the unique executor identifier used in assignments.
	Name() string
	// Capabilities is the declared capability tag set.
	Capabilities() models.CapabilitySet
	// Execute runs the payload. It must respect ctx cancellation.
	Execute(ctx context.Context, payload models.Payload) (models.Payload, error)
}

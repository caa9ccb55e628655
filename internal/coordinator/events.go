package coordinator

import (
	"sync/atomic"
	"time"
)

// EventType represents the type of coordinator event.
type EventType string

const (
	// EventPhaseChanged indicates the execution moved to a new phase.
	EventPhaseChanged EventType = "phase_changed"
	// EventSubtaskStarted indicates a subtask was handed to its executor.
	EventSubtaskStarted EventType = "subtask_started"
	// EventSubtaskFinished indicates a subtask outcome was collected.
	EventSubtaskFinished EventType = "subtask_finished"
	// EventDispatchFailed indicates coordinate could not proceed at all.
	EventDispatchFailed EventType = "dispatch_failed"
	// EventExecutionDone indicates the aggregate result is available.
	EventExecutionDone EventType = "execution_done"
	// EventTraceWritten indicates the audit trace was recorded.
	EventTraceWritten EventType = "trace_written"
)

// Event represents an event emitted during one execution.
// Events drive the TUI and CLI progress output.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// ExecutionID identifies the execute() call.
	ExecutionID string
	// Phase is the coordinator phase at emission time.
	Phase Phase
	// Position is the related subtask position, -1 if not applicable.
	Position int
	// Executor is the related executor name, if applicable.
	Executor string
	// Success reports the outcome for subtask_finished and execution_done.
	Success bool
	// Message provides additional context.
	Message string
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// emit sends an event without blocking. Events are dropped when the
// buffer is full or the swarm is closed; droppedEvents counts them.
func (c *Swarm) emit(ev Event) {
	ev.Timestamp = time.Now()
	c.eventMu.RLock()
	defer c.eventMu.RUnlock()
	if c.closed {
		atomic.AddUint64(&c.droppedEvents, 1)
		return
	}
	select {
	case c.events <- ev:
	default:
		atomic.AddUint64(&c.droppedEvents, 1)
	}
}

// Events returns the channel for receiving coordinator events.
func (c *Swarm) Events() <-chan Event {
	return c.events
}

// DroppedEventCount returns the number of events dropped due to a full
// buffer.
func (c *Swarm) DroppedEventCount() uint64 {
	return atomic.LoadUint64(&c.droppedEvents)
}

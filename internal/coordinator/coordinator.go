// Package coordinator implements the swarm task-execution lifecycle:
// decompose a task into subtasks, assign each to a capability-matched
// executor, run executors concurrently, and merge the collected
// outcomes into one aggregate result.
package coordinator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Phase represents the coordinator's position in one execution.
type Phase string

const (
	// PhaseIdle is the state before execution begins.
	PhaseIdle Phase = "idle"
	// PhaseDecomposing indicates the task is being split into subtasks.
	PhaseDecomposing Phase = "decomposing"
	// PhaseAssigning indicates subtasks are being matched to executors.
	PhaseAssigning Phase = "assigning"
	// PhaseCoordinating indicates executors are running.
	PhaseCoordinating Phase = "coordinating"
	// PhaseMerging indicates outcomes are being merged.
	PhaseMerging Phase = "merging"
	// PhaseDone is the successful terminal state.
	PhaseDone Phase = "done"
	// PhaseAborted is the terminal state after a dispatch-level failure.
	PhaseAborted Phase = "aborted"
)

// Decomposer splits a task into an ordered subtask sequence.
// An empty sequence is valid and means "nothing to do".
type Decomposer interface {
	Decompose(ctx context.Context, task models.Task) ([]models.Subtask, error)
}

// MergePolicy combines the complete, order-preserved outcome sequence
// (failures included) into exactly one aggregate result.
type MergePolicy interface {
	Merge(task models.Task, outcomes []models.ExecutionOutcome) models.AggregateResult
}

// TraceRecorder accepts execution traces for the audit store.
// Record must not block and must never surface failures to the caller.
type TraceRecorder interface {
	Record(trace models.ExecutionTrace)
}

// Swarm drives the decompose -> assign -> coordinate -> merge lifecycle.
// Each Execute call starts fresh; no state carries over between calls.
type Swarm struct {
	decomposer  Decomposer
	registry    *Registry
	mergePolicy MergePolicy
	recorder    TraceRecorder
	maxInFlight int

	// events is the channel for emitting coordinator events.
	events chan Event
	// droppedEvents counts events dropped due to a full buffer.
	droppedEvents uint64

	// eventMu orders emit against Close so late emits from dispatch
	// goroutines are dropped instead of hitting a closed channel.
	eventMu sync.RWMutex
	closed  bool
}

// New creates a Swarm coordinator. Decomposer, registry, and merge
// policy are required; the rest is configured via options.
func New(decomposer Decomposer, registry *Registry, policy MergePolicy, opts ...Option) *Swarm {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Swarm{
		decomposer:  decomposer,
		registry:    registry,
		mergePolicy: policy,
		recorder:    o.recorder,
		maxInFlight: o.maxInFlight,
		events:      make(chan Event, o.eventBuffer),
	}
}

// Execute runs one task through the full lifecycle and returns its
// aggregate result.
//
// Only assignment failures (*UnassignableSubtaskError), dispatch-level
// failures (*DispatchError), and decomposition errors propagate as call
// failures; individual executor failures are absorbed into outcomes
// and judged by the merge policy.
func (c *Swarm) Execute(ctx context.Context, task models.Task) (models.AggregateResult, error) {
	executionID := uuid.New().String()[:8]

	c.setPhase(executionID, PhaseDecomposing)
	subtasks, err := c.decomposer.Decompose(ctx, task)
	if err != nil {
		return models.AggregateResult{}, fmt.Errorf("decompose task %s: %w", task.ID, err)
	}

	// Empty decomposition is an immediate successful no-op: assign,
	// coordinate, and merge are never invoked.
	if len(subtasks) == 0 {
		log.Printf("[coordinator] %s: task %s decomposed to nothing, no-op", executionID, task.ID)
		result := models.AggregateResult{
			TaskID:  task.ID,
			Success: true,
			Meta:    models.Payload{"noop": true},
		}
		c.finish(executionID, task, subtasks, result)
		return result, nil
	}

	log.Printf("[coordinator] %s: task %s decomposed into %d subtasks", executionID, task.ID, len(subtasks))

	c.setPhase(executionID, PhaseAssigning)
	assignment, err := Assign(subtasks, c.registry.Snapshot())
	if err != nil {
		return models.AggregateResult{}, fmt.Errorf("assign subtasks for task %s: %w", task.ID, err)
	}

	c.setPhase(executionID, PhaseCoordinating)
	outcomes, err := c.dispatch(ctx, executionID, subtasks, assignment)
	if err != nil {
		// Dispatch-level failure: short-circuit, merge is skipped.
		c.emit(Event{
			Type:        EventDispatchFailed,
			ExecutionID: executionID,
			Phase:       PhaseAborted,
			Position:    -1,
			Message:     err.Error(),
		})
		log.Printf("[coordinator] %s: dispatch aborted: %v", executionID, err)
		return models.AggregateResult{}, err
	}

	c.setPhase(executionID, PhaseMerging)
	result := c.mergePolicy.Merge(task, outcomes)
	result.TaskID = task.ID

	c.finish(executionID, task, subtasks, result)
	return result, nil
}

// finish emits the terminal events and hands the trace to the recorder.
// Trace writing is strictly observational: it happens after the result
// is final and cannot alter or fail it.
func (c *Swarm) finish(executionID string, task models.Task, subtasks []models.Subtask, result models.AggregateResult) {
	c.setPhase(executionID, PhaseDone)
	c.emit(Event{
		Type:        EventExecutionDone,
		ExecutionID: executionID,
		Phase:       PhaseDone,
		Position:    -1,
		Success:     result.Success,
	})

	if c.recorder == nil {
		return
	}

	failed := 0
	for _, o := range result.Outcomes {
		if !o.Success {
			failed++
		}
	}

	c.recorder.Record(models.ExecutionTrace{
		ExecutionID:  executionID,
		TaskID:       task.ID,
		Goal:         task.Goal,
		SubtaskCount: len(subtasks),
		OutcomeCount: len(result.Outcomes),
		FailedCount:  failed,
		Success:      result.Success,
		RecordedAt:   time.Now(),
	})
	c.emit(Event{
		Type:        EventTraceWritten,
		ExecutionID: executionID,
		Phase:       PhaseDone,
		Position:    -1,
	})
}

// setPhase emits a phase transition event.
func (c *Swarm) setPhase(executionID string, phase Phase) {
	c.emit(Event{
		Type:        EventPhaseChanged,
		ExecutionID: executionID,
		Phase:       phase,
		Position:    -1,
	})
}

// Close closes the event channel. Safe to call more than once, and
// safe to call while an Execute is still in flight: remaining events
// from that execution are counted as dropped.
func (c *Swarm) Close() {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.events)
}

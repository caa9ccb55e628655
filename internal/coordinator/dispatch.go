package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ShayCichocki/hive/internal/executor"
	"github.com/ShayCichocki/hive/pkg/models"
)

// dispatch invokes each assigned executor with its subtask's payload.
//
// Executors run concurrently up to maxInFlight at a time. Each outcome
// is written to an index-addressed slot, so collection order always
// matches subtask order regardless of completion order. An executor
// error or panic becomes a failed outcome for that slot and never
// aborts the siblings.
//
// A *DispatchError is returned only when dispatch itself cannot
// proceed: the subtask positions are not a usable sequence, or the
// assignment does not resolve to executors anymore.
func (c *Swarm) dispatch(ctx context.Context, executionID string, subtasks []models.Subtask, assignment models.Assignment) ([]models.ExecutionOutcome, error) {
	// Positions address outcome slots, so they must be exactly 0..N-1.
	// Decomposers are pluggable and not trusted to get this right.
	seen := make([]bool, len(subtasks))
	for _, st := range subtasks {
		if st.Position < 0 || st.Position >= len(subtasks) {
			return nil, &DispatchError{Reason: fmt.Sprintf("subtask position %d out of range for %d subtasks", st.Position, len(subtasks))}
		}
		if seen[st.Position] {
			return nil, &DispatchError{Reason: fmt.Sprintf("duplicate subtask position %d", st.Position)}
		}
		seen[st.Position] = true
	}

	// Resolve every assigned executor up front. The assignment was built
	// against a registry snapshot; if it no longer resolves, the
	// coordination mechanism itself is broken.
	resolved := make([]executor.Executor, len(subtasks))
	for _, st := range subtasks {
		name, ok := assignment[st.Position]
		if !ok {
			return nil, &DispatchError{Reason: fmt.Sprintf("subtask %d has no assignment", st.Position)}
		}
		e := c.registry.Get(name)
		if e == nil {
			return nil, &DispatchError{Reason: fmt.Sprintf("executor %q not resolvable", name)}
		}
		resolved[st.Position] = e
	}

	outcomes := make([]models.ExecutionOutcome, len(subtasks))

	var wg sync.WaitGroup
	sem := make(chan struct{}, c.maxInFlight)

	for i := range subtasks {
		wg.Add(1)
		go func(st models.Subtask, e executor.Executor) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			c.emit(Event{
				Type:        EventSubtaskStarted,
				ExecutionID: executionID,
				Phase:       PhaseCoordinating,
				Position:    st.Position,
				Executor:    e.Name(),
			})

			outcome := runOne(ctx, st, e)
			outcomes[st.Position] = outcome

			c.emit(Event{
				Type:        EventSubtaskFinished,
				ExecutionID: executionID,
				Phase:       PhaseCoordinating,
				Position:    st.Position,
				Executor:    e.Name(),
				Success:     outcome.Success,
				Message:     outcome.ErrorText(),
			})
		}(subtasks[i], resolved[subtasks[i].Position])
	}

	wg.Wait()

	return outcomes, nil
}

// runOne executes a single subtask, translating errors and panics into
// a failed outcome.
func runOne(ctx context.Context, st models.Subtask, e executor.Executor) (outcome models.ExecutionOutcome) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			outcome = failedOutcome(st, e, started, fmt.Sprintf("executor panic: %v", r))
		}
	}()

	result, err := e.Execute(ctx, st.Payload)
	if err != nil {
		return failedOutcome(st, e, started, err.Error())
	}

	return models.ExecutionOutcome{
		Position: st.Position,
		Success:  true,
		Result:   result,
		Meta: models.Payload{
			"executor":    e.Name(),
			"requirement": st.Requirement,
			"duration_ms": time.Since(started).Milliseconds(),
		},
	}
}

// failedOutcome builds the failure record for one subtask.
func failedOutcome(st models.Subtask, e executor.Executor, started time.Time, errText string) models.ExecutionOutcome {
	return models.ExecutionOutcome{
		Position: st.Position,
		Success:  false,
		Meta: models.Payload{
			"executor":    e.Name(),
			"requirement": st.Requirement,
			"duration_ms": time.Since(started).Milliseconds(),
			"error":       errText,
		},
	}
}

package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ShayCichocki/hive/internal/executor"
	"github.com/ShayCichocki/hive/pkg/models"
)

// funcDecomposer adapts a function to the Decomposer interface.
type funcDecomposer func(ctx context.Context, task models.Task) ([]models.Subtask, error)

func (f funcDecomposer) Decompose(ctx context.Context, task models.Task) ([]models.Subtask, error) {
	return f(ctx, task)
}

// spyPolicy records merge invocations and applies a simple
// all-succeeded policy.
type spyPolicy struct {
	mu       sync.Mutex
	calls    int
	received []models.ExecutionOutcome
}

func (p *spyPolicy) Merge(task models.Task, outcomes []models.ExecutionOutcome) models.AggregateResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.received = outcomes

	success := true
	for _, o := range outcomes {
		if !o.Success {
			success = false
		}
	}
	return models.AggregateResult{Success: success, Outcomes: outcomes}
}

func (p *spyPolicy) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// spyRecorder captures recorded traces.
type spyRecorder struct {
	mu     sync.Mutex
	traces []models.ExecutionTrace
}

func (r *spyRecorder) Record(trace models.ExecutionTrace) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.traces = append(r.traces, trace)
}

func opsDecomposer(ops ...string) Decomposer {
	return funcDecomposer(func(_ context.Context, task models.Task) ([]models.Subtask, error) {
		subtasks := make([]models.Subtask, len(ops))
		for i, op := range ops {
			subtasks[i] = models.Subtask{
				Position:    i,
				Requirement: op,
				Payload:     models.Payload{"op": op},
			}
		}
		return subtasks, nil
	})
}

func TestExecute_EmptyDecompositionIsNoOp(t *testing.T) {
	registry := NewRegistry()
	policy := &spyPolicy{}
	c := New(opsDecomposer(), registry, policy)

	result, err := c.Execute(context.Background(), models.Task{ID: "t1"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Success {
		t.Error("empty decomposition should produce a successful result")
	}
	if len(result.Outcomes) != 0 {
		t.Errorf("outcomes = %d, want 0", len(result.Outcomes))
	}
	if policy.callCount() != 0 {
		t.Errorf("merge called %d times for empty decomposition, want 0", policy.callCount())
	}
}

func TestExecute_TwoSubtasksBothSucceed(t *testing.T) {
	registry := NewRegistry()
	mustRegister(t, registry, &stubExecutor{
		name:   "summarizer",
		caps:   models.NewCapabilitySet("summarize"),
		result: models.Payload{"summary": "short"},
	})
	mustRegister(t, registry, &stubExecutor{
		name:   "translator",
		caps:   models.NewCapabilitySet("translate"),
		result: models.Payload{"translation": "hallo"},
	})

	policy := &spyPolicy{}
	c := New(opsDecomposer("summarize", "translate"), registry, policy)

	result, err := c.Execute(context.Background(), models.Task{
		ID:      "t1",
		Goal:    "summarize+translate",
		Payload: models.Payload{"goal": "summarize+translate"},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if !result.Success {
		t.Error("expected overall success")
	}
	if len(result.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(result.Outcomes))
	}
	if result.Outcomes[0].Executor() != "summarizer" {
		t.Errorf("outcome 0 executor = %s, want summarizer", result.Outcomes[0].Executor())
	}
	if result.Outcomes[1].Executor() != "translator" {
		t.Errorf("outcome 1 executor = %s, want translator", result.Outcomes[1].Executor())
	}
}

func TestExecute_FailureIsolation(t *testing.T) {
	registry := NewRegistry()
	mustRegister(t, registry, &stubExecutor{
		name:   "summarizer",
		caps:   models.NewCapabilitySet("summarize"),
		result: models.Payload{"summary": "short"},
	})
	mustRegister(t, registry, &stubExecutor{
		name: "translator",
		caps: models.NewCapabilitySet("translate"),
		err:  fmt.Errorf("model unavailable"),
	})

	policy := &spyPolicy{}
	c := New(opsDecomposer("summarize", "translate"), registry, policy)

	result, err := c.Execute(context.Background(), models.Task{ID: "t1"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2 (failure must not suppress siblings)", len(result.Outcomes))
	}
	if !result.Outcomes[0].Success {
		t.Error("outcome 0 should succeed despite sibling failure")
	}
	if result.Outcomes[1].Success {
		t.Error("outcome 1 should be a failure")
	}
	if got := result.Outcomes[1].ErrorText(); got != "model unavailable" {
		t.Errorf("outcome 1 error = %q, want 'model unavailable'", got)
	}
	if policy.callCount() != 1 {
		t.Errorf("merge called %d times, want 1 (failed outcomes still merge)", policy.callCount())
	}
}

func TestExecute_UnassignablePropagates(t *testing.T) {
	registry := NewRegistry()
	policy := &spyPolicy{}
	c := New(opsDecomposer("summarize"), registry, policy)

	_, err := c.Execute(context.Background(), models.Task{ID: "t1"})
	if err == nil {
		t.Fatal("expected error with no covering executor")
	}

	var uaErr *UnassignableSubtaskError
	if !errors.As(err, &uaErr) {
		t.Fatalf("error type = %T, want *UnassignableSubtaskError", err)
	}
	if policy.callCount() != 0 {
		t.Errorf("merge called %d times after assign failure, want 0", policy.callCount())
	}
}

func TestExecute_DecomposeErrorPropagates(t *testing.T) {
	registry := NewRegistry()
	decomposer := funcDecomposer(func(_ context.Context, _ models.Task) ([]models.Subtask, error) {
		return nil, fmt.Errorf("payload is not a mapping")
	})
	policy := &spyPolicy{}
	c := New(decomposer, registry, policy)

	if _, err := c.Execute(context.Background(), models.Task{ID: "t1"}); err == nil {
		t.Fatal("expected decompose error to propagate")
	}
	if policy.callCount() != 0 {
		t.Errorf("merge called %d times after decompose failure, want 0", policy.callCount())
	}
}

// renamingExecutor reports a different name after registration,
// simulating an assignment that no longer resolves at dispatch time.
type renamingExecutor struct {
	mu    sync.Mutex
	calls int
}

func (r *renamingExecutor) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls == 1 {
		return "shifty"
	}
	return "shifty-gone"
}

func (r *renamingExecutor) Capabilities() models.CapabilitySet {
	return models.NewCapabilitySet("summarize")
}

func (r *renamingExecutor) Execute(_ context.Context, _ models.Payload) (models.Payload, error) {
	return models.Payload{}, nil
}

func TestExecute_DispatchFailureSkipsMerge(t *testing.T) {
	registry := NewRegistry()
	mustRegister(t, registry, &renamingExecutor{})

	policy := &spyPolicy{}
	c := New(opsDecomposer("summarize"), registry, policy)

	_, err := c.Execute(context.Background(), models.Task{ID: "t1"})
	if err == nil {
		t.Fatal("expected dispatch failure")
	}

	var dispErr *DispatchError
	if !errors.As(err, &dispErr) {
		t.Fatalf("error type = %T, want *DispatchError", err)
	}
	if policy.callCount() != 0 {
		t.Errorf("merge called %d times after dispatch failure, want 0 (short-circuit)", policy.callCount())
	}
}

func TestExecute_RecordsTrace(t *testing.T) {
	registry := NewRegistry()
	mustRegister(t, registry, &stubExecutor{
		name:   "summarizer",
		caps:   models.NewCapabilitySet("summarize"),
		result: models.Payload{"summary": "short"},
	})

	recorder := &spyRecorder{}
	c := New(opsDecomposer("summarize"), registry, &spyPolicy{}, WithRecorder(recorder))

	if _, err := c.Execute(context.Background(), models.Task{ID: "t1", Goal: "summarize this"}); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.traces) != 1 {
		t.Fatalf("traces recorded = %d, want 1", len(recorder.traces))
	}
	trace := recorder.traces[0]
	if trace.TaskID != "t1" {
		t.Errorf("trace task ID = %s, want t1", trace.TaskID)
	}
	if trace.SubtaskCount != 1 {
		t.Errorf("trace subtask count = %d, want 1", trace.SubtaskCount)
	}
	if !trace.Success {
		t.Error("trace should record success")
	}
}

func TestExecute_FreshStatePerCall(t *testing.T) {
	registry := NewRegistry()
	mustRegister(t, registry, &stubExecutor{
		name:   "summarizer",
		caps:   models.NewCapabilitySet("summarize"),
		result: models.Payload{"summary": "short"},
	})

	c := New(opsDecomposer("summarize"), registry, &spyPolicy{})

	for i := 0; i < 3; i++ {
		result, err := c.Execute(context.Background(), models.Task{ID: fmt.Sprintf("t%d", i)})
		if err != nil {
			t.Fatalf("Execute %d failed: %v", i, err)
		}
		if len(result.Outcomes) != 1 {
			t.Errorf("Execute %d: outcomes = %d, want 1", i, len(result.Outcomes))
		}
	}
}

func mustRegister(t *testing.T, r *Registry, e executor.Executor) {
	t.Helper()
	if err := r.Register(e); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

// gatedExecutor blocks inside Execute until released.
type gatedExecutor struct {
	name    string
	started chan struct{}
	release chan struct{}
}

func (g *gatedExecutor) Name() string                       { return g.name }
func (g *gatedExecutor) Capabilities() models.CapabilitySet { return models.NewCapabilitySet("summarize") }
func (g *gatedExecutor) Execute(_ context.Context, _ models.Payload) (models.Payload, error) {
	close(g.started)
	<-g.release
	return models.Payload{"summary": "late"}, nil
}

func TestClose_DuringExecutionDropsLateEvents(t *testing.T) {
	exec := &gatedExecutor{
		name:    "slow",
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	registry := NewRegistry()
	mustRegister(t, registry, exec)

	policy := &spyPolicy{}
	c := New(opsDecomposer("summarize"), registry, policy)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Execute(context.Background(), models.Task{ID: "t1"})
		errCh <- err
	}()

	<-exec.started
	c.Close()
	close(exec.release)

	if err := <-errCh; err != nil {
		t.Fatalf("Execute failed after Close: %v", err)
	}
	if policy.callCount() != 1 {
		t.Errorf("merge called %d times, want 1", policy.callCount())
	}
	if c.DroppedEventCount() == 0 {
		t.Error("events emitted after Close should count as dropped")
	}

	// A second Close stays a no-op.
	c.Close()
}

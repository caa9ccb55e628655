package models

import "time"

// Payload is the free-form structured body of a task, subtask, or result.
// Keys are strings, values are arbitrary JSON-compatible data.
type Payload map[string]any

// Clone returns a shallow copy of the payload.
// Nested values are shared; callers must not mutate them.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Task is the top-level unit of work submitted for swarm execution.
// A Task is immutable once submitted.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Goal is the short human-readable description of the request.
	Goal string `json:"goal,omitempty"`
	// Payload describes what is requested.
	Payload Payload `json:"payload"`
	// SubmittedAt is when the task was submitted.
	SubmittedAt time.Time `json:"submitted_at"`
}

// Subtask is one decomposed unit derived from a Task.
// Its position in the decomposition sequence is its identity for
// assignment and merging.
type Subtask struct {
	// Position is the ordinal index within the decomposition sequence.
	Position int `json:"position"`
	// Requirement is the capability tag an executor must cover to run this subtask.
	Requirement string `json:"requirement"`
	// Payload is the subtask's input data.
	Payload Payload `json:"payload"`
}

// Assignment maps each subtask position to the name of the executor
// chosen to run it. Built once per execution and read-only afterwards.
type Assignment map[int]string

// ExecutionOutcome is the result of running one subtask through its
// assigned executor.
type ExecutionOutcome struct {
	// Position is the subtask position this outcome belongs to.
	Position int `json:"position"`
	// Success reports whether the executor completed without error.
	Success bool `json:"success"`
	// Result is the executor's result payload, nil on failure.
	Result Payload `json:"result,omitempty"`
	// Meta carries diagnostic metadata: executor name, error text, timing.
	Meta Payload `json:"meta,omitempty"`
}

// Executor returns the name of the executor that produced this outcome,
// or the empty string if unknown.
func (o ExecutionOutcome) Executor() string {
	if o.Meta == nil {
		return ""
	}
	name, _ := o.Meta["executor"].(string)
	return name
}

// ErrorText returns the recorded error text for a failed outcome.
func (o ExecutionOutcome) ErrorText() string {
	if o.Meta == nil {
		return ""
	}
	msg, _ := o.Meta["error"].(string)
	return msg
}

// AggregateResult is the merged, caller-visible result of one execution.
type AggregateResult struct {
	// TaskID is the ID of the task this result belongs to.
	TaskID string `json:"task_id"`
	// Success is the merge policy's judgment of the outcome set.
	// It is not necessarily "all outcomes succeeded".
	Success bool `json:"success"`
	// Payload is the merged result payload.
	Payload Payload `json:"payload,omitempty"`
	// Meta carries merge metadata such as failed operations and counts.
	Meta Payload `json:"meta,omitempty"`
	// Outcomes is the complete ordered outcome sequence the merge saw.
	Outcomes []ExecutionOutcome `json:"outcomes,omitempty"`
}

package models

import "time"

// ExecutionTrace is the append-only audit record of one execution.
// The coordinator writes traces and never reads them back.
type ExecutionTrace struct {
	// ExecutionID is the short ID of the execute() call.
	ExecutionID string `json:"execution_id"`
	// TaskID is the ID of the executed task.
	TaskID string `json:"task_id"`
	// Goal is the task's goal text.
	Goal string `json:"goal,omitempty"`
	// SubtaskCount is the number of subtasks produced by decomposition.
	SubtaskCount int `json:"subtask_count"`
	// OutcomeCount is the number of outcomes collected.
	OutcomeCount int `json:"outcome_count"`
	// FailedCount is the number of failed outcomes.
	FailedCount int `json:"failed_count"`
	// Success is the merged overall success flag.
	Success bool `json:"success"`
	// RecordedAt is when the trace was produced.
	RecordedAt time.Time `json:"recorded_at"`
}

package coordinator

import "fmt"

// UnassignableSubtaskError reports that no registered executor covers a
// subtask's requirement. It fails the whole assign step.
type UnassignableSubtaskError struct {
	// Position is the subtask position that could not be assigned.
	Position int
	// Requirement is the capability tag nothing covered.
	Requirement string
}

// Error implements the error interface.
func (e *UnassignableSubtaskError) Error() string {
	return fmt.Sprintf("no executor covers requirement %q for subtask %d", e.Requirement, e.Position)
}

// DispatchError reports that coordinate could not proceed at all.
// It short-circuits the driver; merge is skipped.
type DispatchError struct {
	// Reason describes why dispatch could not proceed.
	Reason string
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return "dispatch failed: " + e.Reason
}

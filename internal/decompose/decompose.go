// Package decompose provides task decomposition strategies for the swarm.
package decompose

import (
	"context"
	"fmt"

	"github.com/ShayCichocki/hive/pkg/models"
)

// DefaultRequirement is the capability tag used for a task whose payload
// does not name an operation.
const DefaultRequirement = "general"

// Ops splits a task whose payload carries an "ops" list into one subtask
// per operation. It is pure and deterministic: the same task always yields
// the same subtask sequence.
//
// Each ops entry is either a plain string (the capability requirement,
// executed against the task payload) or an object with an "op" string and
// an optional "payload" object that overlays the task payload.
type Ops struct{}

// Decompose returns the subtask sequence for the given task. A payload
// without an "ops" key yields a single subtask covering the whole task;
// an empty "ops" list yields an empty sequence.
func (Ops) Decompose(_ context.Context, task models.Task) ([]models.Subtask, error) {
	raw, ok := task.Payload["ops"]
	if !ok {
		return []models.Subtask{singleSubtask(task)}, nil
	}

	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("task %s: ops must be a list, got %T", task.ID, raw)
	}

	subtasks := make([]models.Subtask, 0, len(entries))
	for i, entry := range entries {
		st, err := subtaskForEntry(task, i, entry)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, st)
	}

	return subtasks, nil
}

func singleSubtask(task models.Task) models.Subtask {
	requirement := DefaultRequirement
	if op, ok := task.Payload["op"].(string); ok && op != "" {
		requirement = op
	}
	return models.Subtask{
		Position:    0,
		Requirement: requirement,
		Payload:     task.Payload.Clone(),
	}
}

func subtaskForEntry(task models.Task, position int, entry any) (models.Subtask, error) {
	base := task.Payload.Clone()
	delete(base, "ops")

	switch e := entry.(type) {
	case string:
		if e == "" {
			return models.Subtask{}, fmt.Errorf("task %s: ops[%d] is empty", task.ID, position)
		}
		base["op"] = e
		return models.Subtask{Position: position, Requirement: e, Payload: base}, nil

	case map[string]any:
		op, _ := e["op"].(string)
		if op == "" {
			return models.Subtask{}, fmt.Errorf("task %s: ops[%d] missing op name", task.ID, position)
		}
		if overlay, ok := e["payload"].(map[string]any); ok {
			for k, v := range overlay {
				base[k] = v
			}
		}
		base["op"] = op
		return models.Subtask{Position: position, Requirement: op, Payload: base}, nil

	default:
		return models.Subtask{}, fmt.Errorf("task %s: ops[%d] must be a string or object, got %T", task.ID, position, entry)
	}
}

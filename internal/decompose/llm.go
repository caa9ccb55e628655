package decompose

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ShayCichocki/hive/pkg/models"
)

// Completer produces a single completion for a system/user prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// llmSubtask is the JSON structure the model returns for a single subtask.
type llmSubtask struct {
	Op      string         `json:"op"`
	Payload map[string]any `json:"payload"`
}

// LLM asks a model to decompose a task into a JSON array of subtasks.
type LLM struct {
	completer Completer
}

// NewLLM creates an LLM decomposer backed by the given completer.
func NewLLM(completer Completer) *LLM {
	return &LLM{completer: completer}
}

// Decompose sends the task to the model and parses the returned subtask list.
func (d *LLM) Decompose(ctx context.Context, task models.Task) ([]models.Subtask, error) {
	payloadJSON, err := json.Marshal(task.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal task payload: %w", err)
	}

	user := fmt.Sprintf(decompositionUserPrompt, task.Goal, payloadJSON)
	response, err := d.completer.Complete(ctx, decompositionPrompt, user)
	if err != nil {
		return nil, fmt.Errorf("decomposition completion: %w", err)
	}

	subtasks, err := ParseSubtasks(response)
	if err != nil {
		return nil, fmt.Errorf("parse decomposition response: %w", err)
	}

	return subtasks, nil
}

// ParseSubtasks extracts the JSON array from a possibly chatty model
// response and converts it into positioned subtasks.
func ParseSubtasks(response string) ([]models.Subtask, error) {
	jsonStart := strings.Index(response, "[")
	jsonEnd := strings.LastIndex(response, "]")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		preview := response
		if len(preview) > 300 {
			preview = preview[:300] + "... (truncated)"
		}
		return nil, fmt.Errorf("no JSON array found in response (got %d chars): %q", len(response), preview)
	}

	var parsed []llmSubtask
	if err := json.Unmarshal([]byte(response[jsonStart:jsonEnd+1]), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal subtask array: %w", err)
	}

	subtasks := make([]models.Subtask, len(parsed))
	for i, p := range parsed {
		if p.Op == "" {
			return nil, fmt.Errorf("subtask %d missing op name", i)
		}
		payload := models.Payload(p.Payload)
		if payload == nil {
			payload = models.Payload{}
		}
		payload["op"] = p.Op
		subtasks[i] = models.Subtask{
			Position:    i,
			Requirement: p.Op,
			Payload:     payload,
		}
	}

	return subtasks, nil
}

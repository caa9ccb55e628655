package merge

import (
	"testing"

	"github.com/ShayCichocki/hive/pkg/models"
)

func outcome(pos int, requirement string, success bool, result models.Payload) models.ExecutionOutcome {
	meta := models.Payload{"requirement": requirement, "executor": "exec-" + requirement}
	if !success {
		meta["error"] = "executor failed"
	}
	return models.ExecutionOutcome{
		Position: pos,
		Success:  success,
		Result:   result,
		Meta:     meta,
	}
}

func TestAll_AllSucceeded(t *testing.T) {
	task := models.Task{ID: "t1"}
	outcomes := []models.ExecutionOutcome{
		outcome(0, "summarize", true, models.Payload{"summary": "short"}),
		outcome(1, "translate", true, models.Payload{"translation": "hallo"}),
	}

	result := All{}.Merge(task, outcomes)

	if !result.Success {
		t.Error("expected success when all outcomes succeeded")
	}

	summary, ok := result.Payload["summarize"].(models.Payload)
	if !ok {
		t.Fatalf("payload missing summarize key: %v", result.Payload)
	}
	if summary["summary"] != "short" {
		t.Errorf("summarize result = %v, want short", summary["summary"])
	}
	if _, ok := result.Payload["translate"]; !ok {
		t.Errorf("payload missing translate key: %v", result.Payload)
	}
}

func TestAll_OneFailed(t *testing.T) {
	task := models.Task{ID: "t1"}
	outcomes := []models.ExecutionOutcome{
		outcome(0, "summarize", true, models.Payload{"summary": "short"}),
		outcome(1, "translate", false, nil),
	}

	result := All{}.Merge(task, outcomes)

	if result.Success {
		t.Error("expected failure when any outcome failed")
	}

	failed, ok := result.Meta["failed_ops"].([]string)
	if !ok || len(failed) != 1 || failed[0] != "translate" {
		t.Errorf("failed_ops = %v, want [translate]", result.Meta["failed_ops"])
	}
}

func TestQuorum_MajoritySucceeds(t *testing.T) {
	task := models.Task{ID: "t1"}
	outcomes := []models.ExecutionOutcome{
		outcome(0, "summarize", true, models.Payload{"summary": "short"}),
		outcome(1, "translate", false, nil),
	}

	result := NewQuorum(0.5).Merge(task, outcomes)

	if !result.Success {
		t.Error("expected success with 1/2 succeeded at 0.5 quorum")
	}
	if _, ok := result.Payload["summarize"]; !ok {
		t.Error("partial payload should carry the successful sub-result")
	}
	if _, ok := result.Payload["translate"]; ok {
		t.Error("failed op should not contribute payload")
	}

	failed, ok := result.Meta["failed_ops"].([]string)
	if !ok || len(failed) != 1 || failed[0] != "translate" {
		t.Errorf("failed_ops = %v, want [translate]", result.Meta["failed_ops"])
	}
}

func TestQuorum_BelowThreshold(t *testing.T) {
	task := models.Task{ID: "t1"}
	outcomes := []models.ExecutionOutcome{
		outcome(0, "a", false, nil),
		outcome(1, "b", false, nil),
		outcome(2, "c", true, models.Payload{"ok": true}),
	}

	result := NewQuorum(0.5).Merge(task, outcomes)

	if result.Success {
		t.Error("expected failure with 1/3 succeeded at 0.5 quorum")
	}
}

func TestQuorum_AllFailedStillMerges(t *testing.T) {
	task := models.Task{ID: "t1"}
	outcomes := []models.ExecutionOutcome{
		outcome(0, "a", false, nil),
		outcome(1, "b", false, nil),
	}

	result := NewQuorum(0.5).Merge(task, outcomes)

	if result.Success {
		t.Error("expected overall failure")
	}
	if len(result.Outcomes) != 2 {
		t.Errorf("merged result should carry all outcomes, got %d", len(result.Outcomes))
	}
}

func TestNewQuorum_Clamping(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"negative defaults to majority", -1, 0.5},
		{"zero defaults to majority", 0, 0.5},
		{"above one clamps", 1.5, 1},
		{"valid passes through", 0.75, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewQuorum(tt.ratio).Ratio; got != tt.want {
				t.Errorf("NewQuorum(%v).Ratio = %v, want %v", tt.ratio, got, tt.want)
			}
		})
	}
}

func TestCombine_MissingRequirementKeyedByPosition(t *testing.T) {
	outcomes := []models.ExecutionOutcome{
		{Position: 0, Success: true, Result: models.Payload{"x": 1}, Meta: models.Payload{}},
	}

	payload, failed := combine(outcomes)
	if len(failed) != 0 {
		t.Errorf("failed = %v, want empty", failed)
	}
	if _, ok := payload["subtask_0"]; !ok {
		t.Errorf("payload = %v, want subtask_0 key", payload)
	}
}

package decompose

import (
	"context"
	"testing"

	"github.com/ShayCichocki/hive/pkg/models"
)

func TestOps_NoOpsKeyYieldsSingleSubtask(t *testing.T) {
	task := models.Task{
		ID:      "t1",
		Goal:    "summarize the report",
		Payload: models.Payload{"text": "hello"},
	}

	subtasks, err := Ops{}.Decompose(context.Background(), task)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if len(subtasks) != 1 {
		t.Fatalf("got %d subtasks, want 1", len(subtasks))
	}
	if subtasks[0].Requirement != DefaultRequirement {
		t.Errorf("requirement = %q, want %q", subtasks[0].Requirement, DefaultRequirement)
	}
	if subtasks[0].Payload["text"] != "hello" {
		t.Errorf("payload not carried over: %v", subtasks[0].Payload)
	}
}

func TestOps_OpKeyNamesRequirement(t *testing.T) {
	task := models.Task{
		ID:      "t1",
		Payload: models.Payload{"op": "translate", "text": "hello"},
	}

	subtasks, err := Ops{}.Decompose(context.Background(), task)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if len(subtasks) != 1 || subtasks[0].Requirement != "translate" {
		t.Errorf("subtasks = %+v, want single translate subtask", subtasks)
	}
}

func TestOps_EmptyOpsListYieldsEmptySequence(t *testing.T) {
	task := models.Task{
		ID:      "t1",
		Payload: models.Payload{"ops": []any{}},
	}

	subtasks, err := Ops{}.Decompose(context.Background(), task)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if len(subtasks) != 0 {
		t.Errorf("got %d subtasks, want 0", len(subtasks))
	}
}

func TestOps_StringEntries(t *testing.T) {
	task := models.Task{
		ID:      "t1",
		Payload: models.Payload{"ops": []any{"summarize", "translate"}, "text": "hello"},
	}

	subtasks, err := Ops{}.Decompose(context.Background(), task)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if len(subtasks) != 2 {
		t.Fatalf("got %d subtasks, want 2", len(subtasks))
	}

	for i, want := range []string{"summarize", "translate"} {
		if subtasks[i].Position != i {
			t.Errorf("subtask %d position = %d", i, subtasks[i].Position)
		}
		if subtasks[i].Requirement != want {
			t.Errorf("subtask %d requirement = %q, want %q", i, subtasks[i].Requirement, want)
		}
		if subtasks[i].Payload["text"] != "hello" {
			t.Errorf("subtask %d lost the base payload: %v", i, subtasks[i].Payload)
		}
		if _, ok := subtasks[i].Payload["ops"]; ok {
			t.Errorf("subtask %d payload should not carry the ops list", i)
		}
	}
}

func TestOps_ObjectEntryOverlaysPayload(t *testing.T) {
	task := models.Task{
		ID: "t1",
		Payload: models.Payload{
			"ops": []any{
				map[string]any{"op": "translate", "payload": map[string]any{"lang": "de"}},
			},
			"text": "hello",
		},
	}

	subtasks, err := Ops{}.Decompose(context.Background(), task)
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if len(subtasks) != 1 {
		t.Fatalf("got %d subtasks, want 1", len(subtasks))
	}
	st := subtasks[0]
	if st.Requirement != "translate" {
		t.Errorf("requirement = %q, want translate", st.Requirement)
	}
	if st.Payload["lang"] != "de" || st.Payload["text"] != "hello" {
		t.Errorf("payload = %v, want lang and text merged", st.Payload)
	}
}

func TestOps_InvalidEntries(t *testing.T) {
	tests := []struct {
		name    string
		payload models.Payload
	}{
		{"ops not a list", models.Payload{"ops": "summarize"}},
		{"empty string entry", models.Payload{"ops": []any{""}}},
		{"object without op", models.Payload{"ops": []any{map[string]any{"payload": map[string]any{}}}}},
		{"numeric entry", models.Payload{"ops": []any{42}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Ops{}.Decompose(context.Background(), models.Task{ID: "t1", Payload: tt.payload})
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestOps_DoesNotMutateTaskPayload(t *testing.T) {
	payload := models.Payload{"ops": []any{"summarize"}, "text": "hello"}
	task := models.Task{ID: "t1", Payload: payload}

	if _, err := (Ops{}).Decompose(context.Background(), task); err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	if _, ok := payload["ops"]; !ok {
		t.Error("task payload was mutated")
	}
	if _, ok := payload["op"]; ok {
		t.Error("task payload gained an op key")
	}
}

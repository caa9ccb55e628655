package trace

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ShayCichocki/hive/pkg/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "hive.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTrace(executionID string, recordedAt time.Time) models.ExecutionTrace {
	return models.ExecutionTrace{
		ExecutionID:  executionID,
		TaskID:       "task-1",
		Goal:         "summarize the report",
		SubtaskCount: 3,
		OutcomeCount: 3,
		FailedCount:  1,
		Success:      false,
		RecordedAt:   recordedAt,
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	s := testStore(t)

	now := time.Now()
	for i, id := range []string{"ex-a", "ex-b", "ex-c"} {
		tr := sampleTrace(id, now.Add(time.Duration(i)*time.Second))
		if err := s.Append(tr); err != nil {
			t.Fatalf("Append(%s) failed: %v", id, err)
		}
	}

	traces, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(traces) != 2 {
		t.Fatalf("got %d traces, want 2", len(traces))
	}
	if traces[0].ExecutionID != "ex-c" || traces[1].ExecutionID != "ex-b" {
		t.Errorf("order = %s, %s; want newest first", traces[0].ExecutionID, traces[1].ExecutionID)
	}
}

func TestStore_RoundTripFields(t *testing.T) {
	s := testStore(t)

	want := sampleTrace("ex-1", time.Now())
	if err := s.Append(want); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	traces, err := s.Recent(1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(traces) != 1 {
		t.Fatalf("got %d traces, want 1", len(traces))
	}

	got := traces[0]
	if got.TaskID != want.TaskID || got.Goal != want.Goal {
		t.Errorf("identity fields = %q/%q, want %q/%q", got.TaskID, got.Goal, want.TaskID, want.Goal)
	}
	if got.SubtaskCount != 3 || got.OutcomeCount != 3 || got.FailedCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/3/1", got.SubtaskCount, got.OutcomeCount, got.FailedCount)
	}
	if got.Success {
		t.Error("success flag should be false")
	}
}

func TestStore_RecentEmpty(t *testing.T) {
	s := testStore(t)

	traces, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(traces) != 0 {
		t.Errorf("got %d traces, want 0", len(traces))
	}
}

func TestStore_Purge(t *testing.T) {
	s := testStore(t)

	old := sampleTrace("ex-old", time.Now().Add(-48*time.Hour))
	fresh := sampleTrace("ex-fresh", time.Now())
	for _, tr := range []models.ExecutionTrace{old, fresh} {
		if err := s.Append(tr); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	deleted, err := s.Purge(24 * time.Hour)
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	traces, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(traces) != 1 || traces[0].ExecutionID != "ex-fresh" {
		t.Errorf("remaining = %+v, want only ex-fresh", traces)
	}
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dirs", "hive.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}

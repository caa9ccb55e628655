package coordinator

import (
	"github.com/ShayCichocki/hive/internal/executor"
	"github.com/ShayCichocki/hive/pkg/models"
)

// Assign builds a total mapping from every subtask position to exactly
// one executor name from the candidate list.
//
// Selection is deterministic: among executors whose capability set
// covers the subtask's requirement, the one with the narrowest declared
// set wins (most specific match); exact ties fall back to declaration
// order. Returns *UnassignableSubtaskError if any subtask has no
// covering executor.
func Assign(subtasks []models.Subtask, candidates []executor.Executor) (models.Assignment, error) {
	assignment := make(models.Assignment, len(subtasks))

	for _, st := range subtasks {
		chosen := pickExecutor(st.Requirement, candidates)
		if chosen == nil {
			return nil, &UnassignableSubtaskError{
				Position:    st.Position,
				Requirement: st.Requirement,
			}
		}
		assignment[st.Position] = chosen.Name()
	}

	return assignment, nil
}

// pickExecutor selects the most specific covering executor.
// Candidates are scanned in declaration order, so the first executor at
// the winning specificity is kept.
func pickExecutor(requirement string, candidates []executor.Executor) executor.Executor {
	var best executor.Executor
	bestSize := -1

	for _, cand := range candidates {
		caps := cand.Capabilities()
		if !caps.Covers(requirement) {
			continue
		}
		if best == nil || caps.Size() < bestSize {
			best = cand
			bestSize = caps.Size()
		}
	}

	return best
}

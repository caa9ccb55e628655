// Package merge provides the pluggable policies that combine subtask
// outcomes into one aggregate result.
package merge

import (
	"fmt"

	"github.com/ShayCichocki/hive/pkg/models"
)

// combine keys each successful outcome's result payload by the
// requirement it was executed for, preserving subtask order within the
// returned failed list. Outcomes without a requirement fall back to
// their position as the key.
func combine(outcomes []models.ExecutionOutcome) (models.Payload, []string) {
	payload := models.Payload{}
	var failed []string

	for _, o := range outcomes {
		key, _ := o.Meta["requirement"].(string)
		if key == "" {
			key = fmt.Sprintf("subtask_%d", o.Position)
		}

		if o.Success {
			payload[key] = o.Result
		} else {
			failed = append(failed, key)
		}
	}

	return payload, failed
}

// All succeeds only when every outcome succeeded.
type All struct{}

// Merge combines outcomes under the all-succeeded policy.
func (All) Merge(task models.Task, outcomes []models.ExecutionOutcome) models.AggregateResult {
	payload, failed := combine(outcomes)

	meta := models.Payload{
		"policy":    "all",
		"succeeded": len(outcomes) - len(failed),
		"failed":    len(failed),
	}
	if len(failed) > 0 {
		meta["failed_ops"] = failed
	}

	return models.AggregateResult{
		TaskID:   task.ID,
		Success:  len(failed) == 0,
		Payload:  payload,
		Meta:     meta,
		Outcomes: outcomes,
	}
}

// Quorum succeeds when at least Ratio of the outcomes succeeded.
// A partial payload is still produced from the successes; failed
// operations are listed in the result metadata.
type Quorum struct {
	// Ratio is the required success fraction in (0, 1].
	Ratio float64
}

// NewQuorum creates a Quorum policy, clamping the ratio into (0, 1].
// A non-positive ratio defaults to simple majority.
func NewQuorum(ratio float64) Quorum {
	if ratio <= 0 {
		ratio = 0.5
	}
	if ratio > 1 {
		ratio = 1
	}
	return Quorum{Ratio: ratio}
}

// Merge combines outcomes under the quorum policy.
func (q Quorum) Merge(task models.Task, outcomes []models.ExecutionOutcome) models.AggregateResult {
	payload, failed := combine(outcomes)
	succeeded := len(outcomes) - len(failed)

	success := false
	if len(outcomes) > 0 {
		success = float64(succeeded)/float64(len(outcomes)) >= q.Ratio
	}

	meta := models.Payload{
		"policy":    "quorum",
		"ratio":     q.Ratio,
		"succeeded": succeeded,
		"failed":    len(failed),
	}
	if len(failed) > 0 {
		meta["failed_ops"] = failed
	}

	return models.AggregateResult{
		TaskID:   task.ID,
		Success:  success,
		Payload:  payload,
		Meta:     meta,
		Outcomes: outcomes,
	}
}

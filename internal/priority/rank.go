// Package priority implements the task priority-scoring engine: a pure
// computation that turns subjects, their tasks, weight tables, and
// academic performance into one globally ranked task list.
//
// The engine never errors. Malformed due dates, unknown section labels,
// and missing weight tables all degrade to safe numeric defaults so a
// total ordering always exists over whatever data is present.
package priority

import (
	"sort"
	"time"
)

// Rank scores every task in the snapshot and returns the flat, globally
// sorted (descending by score) task list. No task is ever dropped.
//
// The sort is stable: tasks with equal scores keep subject-then-insertion
// order from the snapshot. That policy is deliberate but not part of the
// contract — don't rely on tie order across snapshot reorderings.
func Rank(snap Snapshot, now time.Time) []ScoredTask {
	var ranked []ScoredTask

	for _, subject := range snap.Subjects {
		tasks := snap.Tasks[subject.Tag]
		perf := snap.Performance[subject.Tag]

		for _, task := range tasks {
			score := ScoreTask(task, subject.RelativeScore, subject.CognitiveDifficulty, subject.Tag, perf, snap.Weights, now)
			ranked = append(ranked, ScoredTask{
				Task:          task,
				PriorityScore: score,
				ProjectID:     subject.Tag,
				ProjectName:   subject.Name,
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PriorityScore > ranked[j].PriorityScore
	})

	return ranked
}

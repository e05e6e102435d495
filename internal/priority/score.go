package priority

import "time"

// Breakdown itemizes the components of a single task's score, for
// display alongside the final number.
type Breakdown struct {
	CreditHours         float64 `json:"creditHoursPoints"`
	CognitiveDifficulty float64 `json:"cognitiveDifficultyPoints"`
	Weight              float64 `json:"taskWeightagePoints"`
	TimeRemaining       float64 `json:"timeRemainingPoints"`
	Performance         float64 `json:"academicPerformanceAdjustment"`
	Base                float64 `json:"baseScore"`
	Final               float64 `json:"finalScore"`
}

// ScoreTask computes the priority score for a single task. Pure and
// deterministic: same inputs, same score.
func ScoreTask(t Task, creditPts, difficultyPts float64, subjectTag string, performancePct float64, w Tables, now time.Time) float64 {
	return ScoreBreakdown(t, creditPts, difficultyPts, subjectTag, performancePct, w, now).Final
}

// ScoreBreakdown computes a task's score and returns every component.
//
// The base score is the sum of the subject's credit-hour points, its
// cognitive difficulty, the task's grading weight, and time urgency.
// Academic performance then discounts the base: standing well in a subject
// lowers the urgency of its tasks. The percentage is clamped to [0,100]
// so out-of-range input can't flip the score negative.
func ScoreBreakdown(t Task, creditPts, difficultyPts float64, subjectTag string, performancePct float64, w Tables, now time.Time) Breakdown {
	b := Breakdown{
		CreditHours:         creditPts,
		CognitiveDifficulty: difficultyPts,
		Weight:              w.ResolveWeight(subjectTag, t.Section),
		TimeRemaining:       DueDatePoints(t.DueDate, now),
		Performance:         clampPct(performancePct),
	}
	b.Base = b.CreditHours + b.CognitiveDifficulty + b.Weight + b.TimeRemaining
	b.Final = b.Base * (1 - b.Performance/100)
	return b
}

func clampPct(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

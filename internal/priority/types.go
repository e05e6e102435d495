package priority

// Subject is an academic course with static credit and difficulty metadata.
// RelativeScore is the precomputed credit-hour weight on a 0–100 scale;
// CognitiveDifficulty is likewise 0–100. Both are read-only to the engine.
type Subject struct {
	Tag                 string  `json:"tag"`
	Name                string  `json:"name"`
	CreditHours         float64 `json:"creditHours"`
	RelativeScore       float64 `json:"relativeScore"`
	CognitiveDifficulty float64 `json:"cognitiveDifficulty"`
}

// Task is a gradable work item belonging to exactly one subject.
// DueDate is kept as the raw string the user entered — the urgency model
// parses it tolerantly and degrades to zero points when it can't.
type Task struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Section string `json:"section"`
	DueDate string `json:"dueDate"`
}

// ScoredTask is a Task annotated with its computed priority and the
// identity of the subject it belongs to. Field names are stable across
// JSON round trips.
type ScoredTask struct {
	Task
	PriorityScore float64 `json:"priorityScore"`
	ProjectID     string  `json:"projectId"`
	ProjectName   string  `json:"projectName"`
}

// Snapshot is the complete, immutable input to a ranking run: subjects,
// their task lists keyed by subject tag, per-subject academic performance
// percentages, and the weight tables.
type Snapshot struct {
	Subjects    []Subject          `json:"subjects"`
	Tasks       map[string][]Task  `json:"tasks"`
	Performance map[string]float64 `json:"academicPerformance"`
	Weights     Tables             `json:"taskWeightages"`
}

// Clone returns a deep copy of the snapshot. The async executor hands the
// copy to its goroutine so caller and worker never share mutable state.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Subjects:    append([]Subject(nil), s.Subjects...),
		Tasks:       make(map[string][]Task, len(s.Tasks)),
		Performance: make(map[string]float64, len(s.Performance)),
		Weights:     s.Weights.clone(),
	}
	for tag, tasks := range s.Tasks {
		out.Tasks[tag] = append([]Task(nil), tasks...)
	}
	for tag, pct := range s.Performance {
		out.Performance[tag] = pct
	}
	return out
}

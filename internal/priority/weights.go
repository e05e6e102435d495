package priority

import (
	"sort"
	"strings"
)

// ProjectWeight is a class-average weight entry imported from a shared
// project table. Only the average is used for scoring.
type ProjectWeight struct {
	Avg float64 `json:"avg"`
}

// Tables holds both weight table sources, keyed by subject tag. A
// subject-level table takes precedence; the project-level table is a
// fallback consulted only when the subject has no table of its own;
// fixed defaults close the chain. Defaults, when set, replaces the
// built-in fallback weights (configurable via config, not serialized).
type Tables struct {
	Subject  map[string]map[Category]float64  `json:"subjectWeightages"`
	Project  map[string]map[string]ProjectWeight `json:"projectWeightages"`
	Defaults map[Category]float64             `json:"-"`
}

// ResolveWeight returns the grading weight (0–100 percentage points) for a
// task's section within a subject, walking the precedence chain
// [subject table, project table, defaults]. It never fails: unknown
// subjects, labels, and categories all degrade to the default weight, and
// unknown categories default to 0.
//
// Presence in the subject table is checked with comma-ok, so an explicit
// zero weight is honored rather than falling through.
func (t Tables) ResolveWeight(subjectTag, section string) float64 {
	category := NormalizeSection(section)

	if sw, ok := t.Subject[subjectTag]; ok && len(sw) > 0 {
		if w, ok := sw[category]; ok {
			return w
		}
		return t.defaultWeight(category)
	}

	// No subject table: the project table is matched case-insensitively
	// against the original (non-aliased) section label.
	if pw, ok := t.Project[subjectTag]; ok {
		labels := make([]string, 0, len(pw))
		for label := range pw {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			if strings.EqualFold(label, strings.TrimSpace(section)) {
				if avg := pw[label].Avg; avg != 0 {
					return avg
				}
				break
			}
		}
	}

	return t.defaultWeight(category)
}

func (t Tables) defaultWeight(c Category) float64 {
	defaults := t.Defaults
	if defaults == nil {
		defaults = DefaultCategoryWeights()
	}
	return defaults[c]
}

func (t Tables) clone() Tables {
	out := Tables{
		Subject: make(map[string]map[Category]float64, len(t.Subject)),
		Project: make(map[string]map[string]ProjectWeight, len(t.Project)),
	}
	for tag, weights := range t.Subject {
		m := make(map[Category]float64, len(weights))
		for c, w := range weights {
			m[c] = w
		}
		out.Subject[tag] = m
	}
	for tag, weights := range t.Project {
		m := make(map[string]ProjectWeight, len(weights))
		for label, w := range weights {
			m[label] = w
		}
		out.Project[tag] = m
	}
	if t.Defaults != nil {
		out.Defaults = make(map[Category]float64, len(t.Defaults))
		for c, w := range t.Defaults {
			out.Defaults[c] = w
		}
	}
	return out
}

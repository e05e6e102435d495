package priority

import "strings"

// Category is a task's grading bucket. The canonical set is closed;
// unrecognized section labels pass through as their own category so a
// typo'd task still ranks instead of erroring.
type Category string

const (
	CategoryAssignment Category = "assignment"
	CategoryQuiz       Category = "quiz"
	CategoryMidterm    Category = "midterm"
	CategoryFinal      Category = "final"
	CategoryRevision   Category = "revision"
)

// sectionAliases maps normalized free-text section labels to canonical
// categories. Matching is case-insensitive; labels not listed here become
// their own category.
var sectionAliases = map[string]Category{
	"assignment":     CategoryAssignment,
	"assignments":    CategoryAssignment,
	"quiz":           CategoryQuiz,
	"quizzes":        CategoryQuiz,
	"midterm":        CategoryMidterm,
	"mid term / oht": CategoryMidterm,
	"final":          CategoryFinal,
	"finals":         CategoryFinal,
	"revision":       CategoryRevision,
}

// NormalizeSection maps a free-text section label to its category.
func NormalizeSection(label string) Category {
	norm := strings.ToLower(strings.TrimSpace(label))
	if c, ok := sectionAliases[norm]; ok {
		return c
	}
	return Category(norm)
}

// DefaultCategoryWeights returns the fixed fallback weight table, in
// percentage points. Categories outside the canonical set default to 0.
func DefaultCategoryWeights() map[Category]float64 {
	return map[Category]float64{
		CategoryAssignment: 15,
		CategoryQuiz:       10,
		CategoryMidterm:    30,
		CategoryFinal:      40,
		CategoryRevision:   5,
	}
}

// Package quality scores an imported skill and turns the gaps it finds into
// prioritized issues and recommendations.
package quality

import (
	"github.com/jingkaihe/skillport/pkg/types/skill"
)

// Grade is a letter grade derived from the overall score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeFor maps an overall score to its grade band.
func GradeFor(score int) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// Description returns a short human readable label for the grade.
func (g Grade) Description() string {
	switch g {
	case GradeA:
		return "Production Ready"
	case GradeB:
		return "Good - Minor Issues"
	case GradeC:
		return "Usable - Needs Review"
	case GradeD:
		return "Incomplete - Needs Work"
	default:
		return "Significant Issues"
	}
}

// Priority orders issues and recommendations. Lower values sort first.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// MarshalText implements encoding.TextMarshaler
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Category classifies an issue.
type Category string

const (
	CategoryMissingRequired  Category = "missing_required"
	CategoryLowConfidence    Category = "low_confidence"
	CategoryUnverifiedDep    Category = "unverified_dependency"
	CategoryMissingAuth      Category = "missing_auth"
	CategoryNoTriggers       Category = "no_triggers"
	CategoryPlaceholderValue Category = "placeholder_value"
	CategoryFormatLimitation Category = "format_limitation"
)

// Issue is one problem found in an import.
type Issue struct {
	Category   Category `json:"category"`
	Priority   Priority `json:"priority"`
	Field      string   `json:"field"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion"`
}

// Effort estimates how much work a recommendation takes.
type Effort string

const (
	EffortQuick       Effort = "quick"
	EffortModerate    Effort = "moderate"
	EffortSignificant Effort = "significant"
)

// Recommendation is an actionable next step.
type Recommendation struct {
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Action      string   `json:"action"`
	Effort      Effort   `json:"effort"`
}

// Breakdown holds the per-category scores, each 0-100.
type Breakdown struct {
	Metadata     int `json:"metadata"`
	Dependencies int `json:"dependencies"`
	Instructions int `json:"instructions"`
	Triggers     int `json:"triggers"`
	Config       int `json:"config"`
}

// Category weights used for the overall score. They sum to 100.
const (
	WeightMetadata     = 25
	WeightDependencies = 30
	WeightInstructions = 25
	WeightTriggers     = 10
	WeightConfig       = 10
)

// Overall returns the weighted average of the category scores.
func (b Breakdown) Overall() int {
	total := b.Metadata*WeightMetadata +
		b.Dependencies*WeightDependencies +
		b.Instructions*WeightInstructions +
		b.Triggers*WeightTriggers +
		b.Config*WeightConfig
	return total / 100
}

// Assessment is the full quality report of one import.
type Assessment struct {
	Score           int              `json:"score"`
	Grade           Grade            `json:"grade"`
	Breakdown       Breakdown        `json:"breakdown"`
	Issues          []Issue          `json:"issues"`
	Recommendations []Recommendation `json:"recommendations"`
	Limitations     []string         `json:"limitations"`
	Format          skill.Format     `json:"format"`
}

// IssuesWith returns the issues of the given priority.
func (a *Assessment) IssuesWith(p Priority) []Issue {
	var out []Issue
	for _, i := range a.Issues {
		if i.Priority == p {
			out = append(out, i)
		}
	}
	return out
}

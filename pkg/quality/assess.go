package quality

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jingkaihe/skillport/pkg/registry"
	"github.com/jingkaihe/skillport/pkg/types/skill"
)

// Points per metadata field, scaled by the field's confidence weight.
const (
	pointsName        = 30
	pointsDescription = 30
	pointsVersion     = 15
	pointsAuthor      = 15
	pointsLicense     = 10

	shortDescriptionPenalty = 10
	shortDescriptionLength  = 20

	// A front matter description is what agents match a request against,
	// so it counts as a trigger when nothing more specific is declared.
	pointsDescriptionTrigger = 50
)

// Assess scores the skill. enrichment may be nil when the registry was not
// consulted. Assess does not modify its inputs.
func Assess(s *skill.Skill, enrichment *registry.Enrichment) *Assessment {
	a := &assessor{skill: s, enrichment: enrichment}

	breakdown := Breakdown{
		Metadata:     clamp(a.metadata()),
		Dependencies: clamp(a.dependencies()),
		Instructions: clamp(a.instructions()),
		Triggers:     clamp(a.triggers()),
		Config:       clamp(a.config()),
	}
	score := clamp(breakdown.Overall())
	grade := GradeFor(score)

	sort.SliceStable(a.issues, func(i, j int) bool {
		return a.issues[i].Priority < a.issues[j].Priority
	})

	assessment := &Assessment{
		Score:       score,
		Grade:       grade,
		Breakdown:   breakdown,
		Issues:      a.issues,
		Limitations: Limitations(s.Source.Format),
		Format:      s.Source.Format,
	}
	if assessment.Issues == nil {
		assessment.Issues = []Issue{}
	}
	assessment.Recommendations = recommend(assessment, enrichment)
	return assessment
}

type assessor struct {
	skill      *skill.Skill
	enrichment *registry.Enrichment
	issues     []Issue
}

func (a *assessor) issue(category Category, priority Priority, field, message, suggestion string) {
	a.issues = append(a.issues, Issue{
		Category:   category,
		Priority:   priority,
		Field:      field,
		Message:    message,
		Suggestion: suggestion,
	})
}

func scaled(points int, c skill.Confidence) int {
	return points * c.Weight() / 100
}

func clamp(v int) int {
	return max(0, min(100, v))
}

func (a *assessor) metadata() int {
	s := a.skill
	score := 0

	score += scaled(pointsName, s.Name.Confidence)
	switch {
	case s.Name.Confidence <= skill.ConfidenceLow:
		a.issue(CategoryLowConfidence, PriorityHigh, "name", "Skill name was guessed from the file path", "Set an explicit name in skill.yaml")
	case s.Name.Confidence == skill.ConfidenceMedium:
		a.issue(CategoryLowConfidence, PriorityLow, "name", "Skill name was inferred from the document", "Confirm the name in skill.yaml")
	}

	desc := scaled(pointsDescription, s.Description.Confidence)
	if len(strings.TrimSpace(s.Description.Value)) < shortDescriptionLength {
		desc = max(0, desc-shortDescriptionPenalty)
		a.issue(CategoryLowConfidence, PriorityLow, "description", "Description is very short", "Describe what the skill does in a full sentence")
	}
	if s.Description.Confidence <= skill.ConfidenceLow {
		a.issue(CategoryPlaceholderValue, PriorityMedium, "description", "Description is a placeholder", "Write a description for the skill")
	}
	score += desc

	score += scaled(pointsVersion, s.Version.Confidence)
	if s.Version.Source == skill.SourceDefault {
		a.issue(CategoryPlaceholderValue, PriorityMedium, "version", "Version is a placeholder", "Set the real version of the skill")
	}

	if s.Author != nil {
		score += scaled(pointsAuthor, s.Author.Name.Confidence)
	} else {
		a.issue(CategoryMissingRequired, PriorityMedium, "author", "No author information", "Add an author to skill.yaml")
	}

	if s.License != nil {
		score += scaled(pointsLicense, s.License.Confidence)
	} else {
		a.issue(CategoryMissingRequired, PriorityLow, "license", "No license declared", "Add a license to skill.yaml")
	}

	return score
}

func (a *assessor) dependencies() int {
	s := a.skill
	if len(s.Dependencies) == 0 {
		a.issue(CategoryMissingRequired, PriorityCritical, "dependencies", "No service dependencies detected", "Declare the services and methods the skill uses")
		return 0
	}

	score := 30
	score += min(s.MethodCount()*30, 30)

	if a.enrichment != nil {
		score += a.enrichment.VerifiedRatio() * 40 / 100
		for _, name := range a.enrichment.Unknown {
			a.issue(CategoryUnverifiedDep, PriorityHigh, "dependencies."+name,
				fmt.Sprintf("Service %q is not in the registry", name),
				"Check the service name or install the service")
		}
	} else {
		score += 15
		a.issue(CategoryUnverifiedDep, PriorityMedium, "dependencies", "Dependencies were not verified against the registry", "Re-run the import with --enrich")
	}

	for _, d := range s.Dependencies {
		if d.Name.Confidence <= skill.ConfidenceLow {
			a.issue(CategoryLowConfidence, PriorityMedium, "dependencies."+d.Name.Value,
				fmt.Sprintf("Service %q was recovered from a loose text match", d.Name.Value),
				"Verify the service name")
		}
	}

	return score
}

func (a *assessor) instructions() int {
	f := a.skill.Instructions

	var score int
	switch f.Confidence {
	case skill.ConfidenceHigh:
		score = 90
	case skill.ConfidenceMedium:
		score = 60
	case skill.ConfidenceLow:
		score = 30
	default:
		score = 5
	}
	if f.Source == skill.SourceDefault && f.Confidence <= skill.ConfidenceLow {
		a.issue(CategoryPlaceholderValue, PriorityHigh, "instructions", "Instructions are a placeholder", "Write instructions for the skill")
	}

	length := len(strings.TrimSpace(f.Value))
	switch {
	case length > 200:
		score += 10
	case length <= 50:
		a.issue(CategoryMissingRequired, PriorityHigh, "instructions", "Instructions are very brief", "Expand the instructions with usage guidance")
	}

	if strings.Contains(f.Value, "```") {
		score += 10
	}
	return score
}

func (a *assessor) triggers() int {
	t := a.skill.Triggers
	if t.Count() > 0 {
		return min(len(t.Keywords)*15, 45) + min(len(t.Patterns)*20, 40) + min(len(t.Commands)*10, 15)
	}

	d := a.skill.Description
	if d.Source == skill.SourceFrontmatter && d.Confidence >= skill.ConfidenceMedium {
		a.issue(CategoryNoTriggers, PriorityLow, "triggers", "Activation relies on the description alone", "Add keywords, patterns or commands")
		return pointsDescriptionTrigger
	}
	a.issue(CategoryNoTriggers, PriorityMedium, "triggers", "No activation triggers found", "Add keywords, patterns or commands")
	return 0
}

func (a *assessor) config() int {
	e := a.enrichment
	if e == nil {
		a.issue(CategoryMissingAuth, PriorityMedium, "auth", "Authentication requirements unknown", "Re-run the import with --enrich")
		return 20
	}

	score := 0
	if len(e.Auth) > 0 {
		score += 40
	} else if len(e.Verified) > 0 {
		a.issue(CategoryMissingAuth, PriorityLow, "auth", "Registry has no authentication details for the verified services", "Document auth requirements in skill.yaml")
	}
	if len(e.Platforms) > 0 {
		score += 20
	}
	if methods := a.skill.MethodCount(); methods > 0 {
		score += e.DescribedMethods() * 40 / methods
	}
	return score
}

func recommend(assessment *Assessment, enrichment *registry.Enrichment) []Recommendation {
	var recs []Recommendation
	add := func(p Priority, title, description, action string, effort Effort) {
		recs = append(recs, Recommendation{Priority: p, Title: title, Description: description, Action: action, Effort: effort})
	}

	if n := len(assessment.IssuesWith(PriorityCritical)); n > 0 {
		add(PriorityCritical, "Fix Critical Issues First",
			fmt.Sprintf("%d critical issue(s) block use of this skill", n),
			"Address the critical issues listed above", EffortModerate)
	}
	if n := len(assessment.IssuesWith(PriorityHigh)); n > 0 {
		add(PriorityHigh, "Resolve High Priority Issues",
			fmt.Sprintf("%d high priority issue(s) need attention", n),
			"Review the high priority issues listed above", EffortModerate)
	}

	b := assessment.Breakdown
	if b.Metadata < 70 {
		add(PriorityMedium, "Complete Metadata",
			"Name, version, description, author or license are missing or uncertain",
			"Edit skill.yaml and fill in the fields marked [*LOW-CONFIDENCE*] or [*INCOMPLETE*]", EffortQuick)
	}
	if b.Dependencies < 70 {
		if enrichment == nil {
			add(PriorityHigh, "Verify Service Dependencies",
				"Dependencies were recovered from text and have not been checked",
				"Re-run the import with --enrich", EffortQuick)
		} else if len(enrichment.Unknown) > 0 {
			add(PriorityMedium, "Check Unknown Services",
				fmt.Sprintf("Not in the registry: %s", strings.Join(enrichment.Unknown, ", ")),
				"Fix the service names or install the missing services", EffortModerate)
		}
	}
	if b.Instructions < 70 {
		add(PriorityMedium, "Improve Instructions",
			"Instructions are short or were not recovered verbatim",
			"Expand instructions/core.md with usage guidance and examples", EffortModerate)
	}
	if b.Triggers < 50 {
		add(PriorityLow, "Add Triggers",
			"Few or no activation triggers were found",
			"Add keywords, patterns or commands to skill.yaml", EffortQuick)
	}
	if b.Config < 50 {
		add(PriorityLow, "Document Configuration",
			"Authentication and platform requirements are incomplete",
			"Fill in the auth section of skill.yaml", EffortQuick)
	}

	switch assessment.Grade {
	case GradeA:
		add(PriorityLow, "Ready for Use", "The import is complete and well structured", "Review skill.yaml and start using the skill", EffortQuick)
	case GradeB:
		add(PriorityLow, "Good Quality Import", "Only minor gaps remain", "Review the flagged fields in skill.yaml", EffortQuick)
	case GradeC, GradeD:
		add(PriorityMedium, "Manual Review Required", "Several fields need human review before use", "Work through the issues and recommendations above", EffortModerate)
	default:
		add(PriorityHigh, "Significant Work Needed", "The source format carried too little information for a usable import", "Treat the output as a starting point and complete it by hand", EffortSignificant)
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Priority < recs[j].Priority })
	return recs
}

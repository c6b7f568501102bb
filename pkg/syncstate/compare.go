package syncstate

import (
	"fmt"

	"github.com/aymanbagabas/go-udiff"
	"github.com/jingkaihe/skillport/pkg/types/skill"
)

// ChangeType says how a field changed.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// Significance ranks how much a change matters.
type Significance string

const (
	SignificanceCritical  Significance = "critical"
	SignificanceImportant Significance = "important"
	SignificanceMinor     Significance = "minor"
	SignificanceTrivial   Significance = "trivial"
)

// FieldDiff is one detected change.
type FieldDiff struct {
	Field        string       `json:"field"`
	ChangeType   ChangeType   `json:"change_type"`
	OldValue     string       `json:"old_value,omitempty"`
	NewValue     string       `json:"new_value,omitempty"`
	Significance Significance `json:"significance"`
	// Patch holds a unified diff for multi-line values.
	Patch string `json:"patch,omitempty"`
}

// instructionChangeThreshold is the relative length change, in percent,
// above which an instructions edit counts as important.
const instructionChangeThreshold = 20

// Compare lists the differences between two parsed versions of a skill:
// value changes for scalar fields and set differences for dependencies,
// methods and triggers.
func Compare(prior, current *skill.Skill) []FieldDiff {
	diffs := []FieldDiff{}
	add := func(d FieldDiff) { diffs = append(diffs, d) }

	if prior.Name.Value != current.Name.Value {
		add(FieldDiff{Field: "name", ChangeType: ChangeModified, OldValue: prior.Name.Value, NewValue: current.Name.Value, Significance: SignificanceCritical})
	}
	if prior.Description.Value != current.Description.Value {
		add(FieldDiff{
			Field:        "description",
			ChangeType:   ChangeModified,
			OldValue:     truncate(prior.Description.Value, 100),
			NewValue:     truncate(current.Description.Value, 100),
			Significance: SignificanceMinor,
		})
	}
	if prior.Version.Value != current.Version.Value {
		add(FieldDiff{Field: "version", ChangeType: ChangeModified, OldValue: prior.Version.Value, NewValue: current.Version.Value, Significance: SignificanceImportant})
	}

	if old, cur := normalizeText(prior.Instructions.Value), normalizeText(current.Instructions.Value); old != cur {
		significance := SignificanceMinor
		if relativeChange(len(old), len(cur)) > instructionChangeThreshold {
			significance = SignificanceImportant
		}
		add(FieldDiff{
			Field:        "instructions",
			ChangeType:   ChangeModified,
			OldValue:     fmt.Sprintf("%d chars", len(old)),
			NewValue:     fmt.Sprintf("%d chars", len(cur)),
			Significance: significance,
			Patch:        udiff.Unified("instructions (previous)", "instructions (current)", old+"\n", cur+"\n"),
		})
	}

	diffs = append(diffs, compareDependencies(prior, current)...)

	diffs = append(diffs, compareSet("triggers.keywords", values(prior.Triggers.Keywords), values(current.Triggers.Keywords), SignificanceMinor)...)
	diffs = append(diffs, compareSet("triggers.patterns", values(prior.Triggers.Patterns), values(current.Triggers.Patterns), SignificanceMinor)...)
	diffs = append(diffs, compareSet("triggers.commands", values(prior.Triggers.Commands), values(current.Triggers.Commands), SignificanceMinor)...)

	return diffs
}

func compareDependencies(prior, current *skill.Skill) []FieldDiff {
	var diffs []FieldDiff

	for _, d := range prior.Dependencies {
		if _, ok := current.Dependency(d.Name.Value); !ok {
			diffs = append(diffs, FieldDiff{
				Field:        "dependencies." + d.Name.Value,
				ChangeType:   ChangeRemoved,
				OldValue:     fmt.Sprintf("%d methods", len(d.Methods)),
				Significance: SignificanceCritical,
			})
		}
	}

	for _, d := range current.Dependencies {
		old, ok := prior.Dependency(d.Name.Value)
		if !ok {
			diffs = append(diffs, FieldDiff{
				Field:        "dependencies." + d.Name.Value,
				ChangeType:   ChangeAdded,
				NewValue:     fmt.Sprintf("%d methods", len(d.Methods)),
				Significance: SignificanceCritical,
			})
			continue
		}
		prefix := "dependencies." + d.Name.Value
		diffs = append(diffs, compareSet(prefix, old.MethodNames(), d.MethodNames(), SignificanceImportant)...)
	}

	return diffs
}

// compareSet reports members removed from and added to a set of strings.
func compareSet(field string, prior, current []string, significance Significance) []FieldDiff {
	var diffs []FieldDiff
	inPrior := make(map[string]bool, len(prior))
	for _, v := range prior {
		inPrior[v] = true
	}
	inCurrent := make(map[string]bool, len(current))
	for _, v := range current {
		inCurrent[v] = true
	}

	for _, v := range prior {
		if !inCurrent[v] {
			diffs = append(diffs, FieldDiff{Field: field + "." + v, ChangeType: ChangeRemoved, OldValue: v, Significance: significance})
		}
	}
	for _, v := range current {
		if !inPrior[v] {
			diffs = append(diffs, FieldDiff{Field: field + "." + v, ChangeType: ChangeAdded, NewValue: v, Significance: significance})
		}
	}
	return diffs
}

func values(fields []skill.Field[string]) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Value)
	}
	return out
}

func relativeChange(old, cur int) int {
	if old == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	delta := cur - old
	if delta < 0 {
		delta = -delta
	}
	return delta * 100 / old
}

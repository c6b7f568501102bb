package skill

import (
	"strings"
	"time"
	"unicode"
)

// Skill is the format independent intermediate representation of one
// imported skill. A Skill is produced once per import and not shared.
type Skill struct {
	Name         Field[string]  `json:"name"`
	Version      Field[string]  `json:"version"`
	Description  Field[string]  `json:"description"`
	Author       *Author        `json:"author,omitempty"`
	License      *Field[string] `json:"license,omitempty"`
	Dependencies []Dependency   `json:"dependencies"`
	Instructions Field[string]  `json:"instructions"`
	Triggers     Triggers       `json:"triggers"`
	Source       SourceInfo     `json:"source"`
}

// Author describes who wrote the skill.
type Author struct {
	Name  Field[string] `json:"name"`
	Email string        `json:"email,omitempty"`
	URL   string        `json:"url,omitempty"`
}

// Dependency is a service the skill calls, with the methods it uses.
type Dependency struct {
	Name              Field[string]   `json:"name"`
	VersionConstraint Field[string]   `json:"versionConstraint"`
	Optional          Field[bool]     `json:"optional"`
	Methods           []Field[string] `json:"methods"`
}

// MethodNames returns the bare method values in declaration order.
func (d Dependency) MethodNames() []string {
	names := make([]string, 0, len(d.Methods))
	for _, m := range d.Methods {
		names = append(names, m.Value)
	}
	return names
}

// Triggers describes when the skill should activate.
type Triggers struct {
	Keywords []Field[string] `json:"keywords"`
	Patterns []Field[string] `json:"patterns"`
	Commands []Field[string] `json:"commands"`
}

// Count returns the total number of trigger entries.
func (t Triggers) Count() int {
	return len(t.Keywords) + len(t.Patterns) + len(t.Commands)
}

// SourceInfo records where and when the skill was imported from.
type SourceInfo struct {
	Format     Format    `json:"format"`
	Path       string    `json:"path"`
	ImportedAt time.Time `json:"importedAt"`
}

// Dependency returns the dependency with the given name.
func (s *Skill) Dependency(name string) (*Dependency, bool) {
	for i := range s.Dependencies {
		if s.Dependencies[i].Name.Value == name {
			return &s.Dependencies[i], true
		}
	}
	return nil, false
}

// MethodCount returns the number of methods across all dependencies.
func (s *Skill) MethodCount() int {
	n := 0
	for _, d := range s.Dependencies {
		n += len(d.Methods)
	}
	return n
}

// OverallConfidence averages the confidence weights of the scalar fields
// and of every dependency name, returning a value in [0, 100].
func (s *Skill) OverallConfidence() int {
	weights := []int{
		s.Name.Confidence.Weight(),
		s.Version.Confidence.Weight(),
		s.Description.Confidence.Weight(),
		s.Instructions.Confidence.Weight(),
	}
	for _, d := range s.Dependencies {
		weights = append(weights, d.Name.Confidence.Weight())
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	return total / len(weights)
}

// CanonicalName is the name used for the canonical skill: the slug of the
// recovered name, or the name itself when it has no letters or digits.
func (s *Skill) CanonicalName() string {
	if slug := Slug(s.Name.Value); slug != "" {
		return slug
	}
	return s.Name.Value
}

// Slug lowercases name and collapses everything except letters and digits
// into single hyphens.
func Slug(name string) string {
	var sb strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if hyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			hyphen = false
			sb.WriteRune(r)
			continue
		}
		hyphen = true
	}
	return sb.String()
}

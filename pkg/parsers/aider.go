package parsers

import (
	"strings"

	"github.com/jingkaihe/skillport/pkg/types/skill"
)

// aiderParser reads CONVENTIONS.md files. Their H1 is usually a generic
// "Coding Conventions" title, so the path is preferred in that case.
type aiderParser struct{}

func (aiderParser) Format() skill.Format { return skill.FormatAider }

func (aiderParser) Parse(doc Document) (*skill.Skill, error) {
	md, err := parseMarkdown(doc.Path, doc.Content)
	if err != nil {
		return nil, err
	}
	fm, err := decodeFrontMatter(doc.Path, md.meta)
	if err != nil {
		return nil, err
	}

	s := markdownSkill(doc, md, fm)

	if fm.Name == "" {
		if h1, ok := md.firstHeading(1); ok && isGenericHeading(h1) {
			s.Name = skill.Low(nameFromPath(doc.Path), skill.SourceFilename, "H1 was generic, using path")
		}
	}

	if fm.Description == "" {
		if overview, ok := md.sectionParagraph("overview", "about", "description"); ok {
			s.Description = skill.Medium(overview, skill.SourceContent, "Extracted from Overview section")
		} else if s.Description.Source == skill.SourceDefault {
			s.Description = placeholderDescription(s.Name.Value)
		}
	}

	triggers := resumeTriggers(s.Triggers)
	_, items := md.sectionItems("commands", "usage")
	for _, item := range items {
		switch {
		case strings.HasPrefix(item, "/"):
			cmd := strings.Fields(item)[0]
			triggers.command(skill.Medium(cmd, skill.SourceContent, "From Commands/Usage section"))
		case strings.HasPrefix(strings.ToLower(item), "aider"):
			triggers.keyword(skill.Medium(item, skill.SourceContent, "From Commands/Usage section"))
		}
	}
	s.Triggers = triggers.triggers

	return s, nil
}

func isGenericHeading(h string) bool {
	lower := strings.ToLower(h)
	for _, word := range []string{"convention", "rules", "guide"} {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

package parsers

import (
	"github.com/jingkaihe/skillport/pkg/types/skill"
)

// claudeParser reads SKILL.md files: YAML front matter followed by a
// markdown body. A skill usually lives in a directory named after it.
type claudeParser struct{}

func (claudeParser) Format() skill.Format { return skill.FormatClaudeCode }

func (claudeParser) Parse(doc Document) (*skill.Skill, error) {
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
		if dir, ok := nameFromDir(doc.Path); ok {
			s.Name = skill.Medium(dir, skill.SourceFilename, "Inferred from directory name")
		}
		if s.Description.Source == skill.SourceDefault {
			s.Description = placeholderDescription(s.Name.Value)
		}
	}
	return s, nil
}

package parsers

import (
	"github.com/jingkaihe/skillport/pkg/types/skill"
)

// rulesParser handles markdown rule files (Cursor, Zed and Windsurf). The
// body is the instructions; everything else comes from an optional front
// matter block or from document structure.
type rulesParser struct {
	format skill.Format
}

func (p rulesParser) Format() skill.Format { return p.format }

func (p rulesParser) Parse(doc Document) (*skill.Skill, error) {
	md, err := parseMarkdown(doc.Path, doc.Content)
	if err != nil {
		return nil, err
	}
	fm, err := decodeFrontMatter(doc.Path, md.meta)
	if err != nil {
		return nil, err
	}
	return markdownSkill(doc, md, fm), nil
}

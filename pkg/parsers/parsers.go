// Package parsers converts skills authored in the supported agent-tooling
// formats into the intermediate skill representation, tagging every
// recovered field with a confidence level and its provenance.
package parsers

import (
	"time"

	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/pkg/errors"
)

var (
	// ErrMalformed is returned when a structured block (front matter or a
	// JSON manifest) cannot be decoded.
	ErrMalformed = errors.New("malformed structured input")
	// ErrUnknownFormat is returned when no parser exists for a format.
	ErrUnknownFormat = errors.New("unknown format")
)

// Document is one source file handed to a parser.
type Document struct {
	Path       string
	Content    []byte
	ImportedAt time.Time
	// Sibling reads a file referenced relative to Path. A nil Sibling
	// behaves as if every referenced file were missing.
	Sibling func(name string) ([]byte, error)
}

func (d Document) readSibling(name string) ([]byte, bool) {
	if d.Sibling == nil || name == "" {
		return nil, false
	}
	content, err := d.Sibling(name)
	if err != nil {
		return nil, false
	}
	return content, true
}

// Parser converts a document of one format into a skill.
type Parser interface {
	Format() skill.Format
	Parse(doc Document) (*skill.Skill, error)
}

var parsers = map[skill.Format]Parser{
	skill.FormatClaudeCode: claudeParser{},
	skill.FormatCursor:     rulesParser{format: skill.FormatCursor},
	skill.FormatZed:        rulesParser{format: skill.FormatZed},
	skill.FormatWindsurf:   rulesParser{format: skill.FormatWindsurf},
	skill.FormatAider:      aiderParser{},
	skill.FormatGemini:     geminiParser{},
	skill.FormatCodex:      codexParser{},
	skill.FormatMCP:        mcpParser{},
}

// ForFormat returns the parser registered for the format.
func ForFormat(format skill.Format) (Parser, error) {
	p, ok := parsers[format]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	return p, nil
}

// Parse converts the document using the parser for the given format.
func Parse(format skill.Format, doc Document) (*skill.Skill, error) {
	p, err := ForFormat(format)
	if err != nil {
		return nil, err
	}
	s, err := p.Parse(doc)
	if err != nil {
		return nil, err
	}
	s.Source = skill.SourceInfo{
		Format:     format,
		Path:       doc.Path,
		ImportedAt: doc.ImportedAt,
	}
	return s, nil
}

func malformed(path string, err error, what string) error {
	return errors.Wrapf(ErrMalformed, "%s: invalid %s: %v", path, what, err)
}

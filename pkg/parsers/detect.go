package parsers

import (
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/pkg/errors"
)

type formatPattern struct {
	format  skill.Format
	pattern glob.Glob
}

type formatGlobs struct {
	format   skill.Format
	patterns []string
}

// Patterns are checked in order against the base name of the file; the
// first match wins.
var fileGlobs = []formatGlobs{
	{skill.FormatClaudeCode, []string{"SKILL.md"}},
	{skill.FormatGemini, []string{"gemini-extension.json"}},
	{skill.FormatAider, []string{"CONVENTIONS.md", "*.CONVENTIONS.md"}},
	{skill.FormatCursor, []string{"*.cursorrules"}},
	{skill.FormatCodex, []string{"*.codex.json"}},
	{skill.FormatMCP, []string{"*.mcp.json"}},
	{skill.FormatWindsurf, []string{"*.windsurf.md"}},
	{skill.FormatZed, []string{"*.rules"}},
}

var detectPatterns = compilePatterns(fileGlobs)

// FilePatterns returns the file name globs detected as format.
func FilePatterns(format skill.Format) []string {
	for _, g := range fileGlobs {
		if g.format == format {
			return append([]string(nil), g.patterns...)
		}
	}
	return nil
}

func compilePatterns(globs []formatGlobs) []formatPattern {
	var compiled []formatPattern
	for _, g := range globs {
		for _, p := range g.patterns {
			compiled = append(compiled, formatPattern{
				format:  g.format,
				pattern: glob.MustCompile(p),
			})
		}
	}
	return compiled
}

// Detect infers the format of a file from its name alone. It returns false
// when the name matches none of the known formats; generic extensions such
// as .md or .json are never guessed.
func Detect(path string) (skill.Format, bool) {
	base := filepath.Base(path)
	for _, fp := range detectPatterns {
		if fp.pattern.Match(base) {
			return fp.format, true
		}
	}
	return "", false
}

// Resolve picks the format for a path: an explicit hint wins, otherwise the
// file name is used.
func Resolve(path, hint string) (skill.Format, error) {
	if hint != "" {
		return skill.ParseFormat(hint)
	}
	if f, ok := Detect(path); ok {
		return f, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "cannot detect format of %s, pass an explicit format", path)
}

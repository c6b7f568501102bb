package parsers

import (
	"path/filepath"
	"strings"

	"github.com/jingkaihe/skillport/pkg/types/skill"
)

// Directory names that say nothing about the skill they contain.
var genericDirNames = map[string]bool{
	"":            true,
	".":           true,
	"/":           true,
	"skills":      true,
	"claude-code": true,
	"cursorrules": true,
	"rules":       true,
}

var trimmedSuffixes = []string{".cursorrules", ".rules", ".windsurf", ".codex", ".mcp", ".conventions"}

// nameFromDir returns the slug of the directory holding path, unless the
// directory name is generic.
func nameFromDir(path string) (string, bool) {
	dir := filepath.Base(filepath.Dir(path))
	if genericDirNames[strings.ToLower(dir)] {
		return "", false
	}
	if slug := skill.Slug(dir); slug != "" {
		return slug, true
	}
	return "", false
}

// nameFromPath guesses a skill name from the path: the containing directory
// first, then the file stem with format suffixes removed.
func nameFromPath(path string) string {
	if name, ok := nameFromDir(path); ok {
		return name
	}

	stem := filepath.Base(path)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	stem = strings.TrimPrefix(stem, ".")
	for _, suffix := range trimmedSuffixes {
		if len(stem) > len(suffix) && strings.HasSuffix(strings.ToLower(stem), suffix) {
			stem = stem[:len(stem)-len(suffix)]
		}
	}
	if slug := skill.Slug(stem); slug != "" {
		return slug
	}
	return "unknown-skill"
}

package skill

import (
	"strings"

	"github.com/pkg/errors"
)

// Format identifies the agent-tooling format a skill was authored in.
type Format string

const (
	FormatClaudeCode Format = "claude-code"
	FormatCursor     Format = "cursor"
	FormatCodex      Format = "codex"
	FormatMCP        Format = "mcp"
	FormatZed        Format = "zed"
	FormatWindsurf   Format = "windsurf"
	FormatGemini     Format = "gemini"
	FormatAider      Format = "aider"
)

// Formats lists every supported format in a stable order.
var Formats = []Format{
	FormatClaudeCode,
	FormatCursor,
	FormatCodex,
	FormatMCP,
	FormatZed,
	FormatWindsurf,
	FormatGemini,
	FormatAider,
}

var formatAliases = map[string]Format{
	"claude":      FormatClaudeCode,
	"claudecode":  FormatClaudeCode,
	"cursorrules": FormatCursor,
	"gemini-cli":  FormatGemini,
}

// ParseFormat resolves a user supplied format key.
func ParseFormat(s string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, f := range Formats {
		if string(f) == key {
			return f, nil
		}
	}
	if f, ok := formatAliases[key]; ok {
		return f, nil
	}
	return "", errors.Errorf("unknown format %q (supported: %s)", s, strings.Join(FormatKeys(), ", "))
}

// FormatKeys returns the canonical keys of all formats.
func FormatKeys() []string {
	keys := make([]string, 0, len(Formats))
	for _, f := range Formats {
		keys = append(keys, string(f))
	}
	return keys
}

// DisplayName returns the human readable name of the format.
func (f Format) DisplayName() string {
	switch f {
	case FormatClaudeCode:
		return "Claude Code"
	case FormatCursor:
		return "Cursor"
	case FormatCodex:
		return "Codex"
	case FormatMCP:
		return "MCP"
	case FormatZed:
		return "Zed"
	case FormatWindsurf:
		return "Windsurf"
	case FormatGemini:
		return "Gemini"
	case FormatAider:
		return "Aider"
	default:
		return string(f)
	}
}

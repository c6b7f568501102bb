package quality

import (
	"github.com/jingkaihe/skillport/pkg/types/skill"
)

var formatLimitations = map[skill.Format][]string{
	skill.FormatClaudeCode: {
		"Workflows are not part of the format",
		"Config options are not recoverable",
		"Some triggers may be inferred",
	},
	skill.FormatCursor: {
		"No structured metadata in the format",
		"Service and method information must be inferred from text",
		"No version or author information",
		"Pure markdown format has low fidelity (~50%)",
	},
	skill.FormatCodex: {
		"Minimal schema format (~25% fidelity)",
		"No detailed instructions",
		"Tool list only, no method parameters",
	},
	skill.FormatMCP: {
		"Tool definitions only (~30% fidelity)",
		"No workflow or trigger information",
		"Tool names may need translation to service methods",
	},
	skill.FormatZed: {
		"Context-only format (~40% fidelity)",
		"No structured service configuration",
		"Rules may not map to skill concepts",
	},
	skill.FormatWindsurf: {
		"Similar limitations to Claude Code",
		"Instructions may need adaptation",
	},
	skill.FormatGemini: {
		"Capabilities may not map directly to service methods",
		"Extension config is not fully recoverable",
	},
	skill.FormatAider: {
		"Conventions format is minimal (~35% fidelity)",
		"No tool or service definitions",
		"Style preferences only",
	},
}

// Limitations returns the fixed list of things the format cannot express.
func Limitations(format skill.Format) []string {
	out := make([]string, len(formatLimitations[format]))
	copy(out, formatLimitations[format])
	return out
}

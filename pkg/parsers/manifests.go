package parsers

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/mark3labs/mcp-go/mcp"
)

func decodeJSON(doc Document, v interface{}) error {
	if err := json.Unmarshal(doc.Content, v); err != nil {
		return malformed(doc.Path, err, "JSON manifest")
	}
	return nil
}

func manifestName(doc Document, names ...string) skill.Field[string] {
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			return skill.High(n, skill.SourceFrontmatter)
		}
	}
	return skill.Low(nameFromPath(doc.Path), skill.SourceFilename, "No name in manifest, inferred from path")
}

func manifestString(value string, fallback func() skill.Field[string]) skill.Field[string] {
	if value = strings.TrimSpace(value); value != "" {
		return skill.High(value, skill.SourceFrontmatter)
	}
	return fallback()
}

// resolveInstructions prefers inline instructions, then a referenced file
// next to the manifest, then a placeholder.
func resolveInstructions(doc Document, inline, file, name string) skill.Field[string] {
	if strings.TrimSpace(inline) != "" {
		return skill.High(inline, skill.SourceFrontmatter)
	}
	if file == "" {
		return placeholderInstructions(name, "No instructions in manifest")
	}
	content, ok := doc.readSibling(file)
	if !ok {
		return placeholderInstructions(name, "Referenced instructions file not found: "+file)
	}
	if strings.TrimSpace(string(content)) == "" {
		return placeholderInstructions(name, "Referenced instructions file is empty: "+file)
	}
	return skill.High(string(content), skill.SourceContent)
}

type geminiManifest struct {
	Name             string `json:"name"`
	DisplayName      string `json:"display_name"`
	Description      string `json:"description"`
	Version          string `json:"version"`
	Instructions     string `json:"instructions"`
	InstructionsFile string `json:"instructions_file"`
	ContextFileName  string `json:"contextFileName"`
	Capabilities     []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"capabilities"`
	Triggers struct {
		Keywords []string `json:"keywords"`
		Patterns []string `json:"patterns"`
	} `json:"triggers"`
}

// geminiParser reads gemini-extension.json manifests.
type geminiParser struct{}

func (geminiParser) Format() skill.Format { return skill.FormatGemini }

func (geminiParser) Parse(doc Document) (*skill.Skill, error) {
	var m geminiManifest
	if err := decodeJSON(doc, &m); err != nil {
		return nil, err
	}

	s := &skill.Skill{Name: manifestName(doc, m.Name, m.DisplayName)}
	s.Version = manifestString(m.Version, fallbackVersion)
	s.Description = manifestString(m.Description, func() skill.Field[string] { return placeholderDescription(s.Name.Value) })

	file := m.InstructionsFile
	if file == "" {
		file = m.ContextFileName
	}
	s.Instructions = resolveInstructions(doc, m.Instructions, file, s.Name.Value)

	deps := newDependencyCollector()
	for _, c := range m.Capabilities {
		deps.addQualified(c.Name, skill.ConfidenceHigh, skill.SourceFrontmatter, "")
	}
	deps.addFromText(s.Instructions.Value)
	s.Dependencies = deps.dependencies()

	triggers := newTriggerCollector()
	for _, kw := range m.Triggers.Keywords {
		triggers.keyword(skill.High(kw, skill.SourceFrontmatter))
	}
	for _, p := range m.Triggers.Patterns {
		triggers.pattern(skill.High(p, skill.SourceFrontmatter))
	}
	s.Triggers = triggers.triggers

	return s, nil
}

type codexManifest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Version          string   `json:"version"`
	Instructions     string   `json:"instructions"`
	InstructionsFile string   `json:"instructions_file"`
	Tools            []string `json:"tools"`
}

// codexParser reads .codex.json manifests: a tool list plus instructions.
type codexParser struct{}

func (codexParser) Format() skill.Format { return skill.FormatCodex }

func (codexParser) Parse(doc Document) (*skill.Skill, error) {
	var m codexManifest
	if err := decodeJSON(doc, &m); err != nil {
		return nil, err
	}

	s := &skill.Skill{Name: manifestName(doc, m.Name)}
	s.Version = manifestString(m.Version, fallbackVersion)
	s.Description = manifestString(m.Description, func() skill.Field[string] { return placeholderDescription(s.Name.Value) })
	s.Instructions = resolveInstructions(doc, m.Instructions, m.InstructionsFile, s.Name.Value)

	deps := newDependencyCollector()
	for _, tool := range m.Tools {
		deps.addQualified(tool, skill.ConfidenceHigh, skill.SourceFrontmatter, "")
	}
	deps.addFromText(s.Instructions.Value)
	s.Dependencies = deps.dependencies()
	s.Triggers = newTriggerCollector().triggers

	return s, nil
}

type mcpManifest struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Version     string                     `json:"version"`
	Tools       []mcp.Tool                 `json:"tools"`
	MCPServers  map[string]json.RawMessage `json:"mcpServers"`
}

// mcpParser reads .mcp.json files: either a tool list or an mcpServers map.
type mcpParser struct{}

func (mcpParser) Format() skill.Format { return skill.FormatMCP }

func (mcpParser) Parse(doc Document) (*skill.Skill, error) {
	var m mcpManifest
	if err := decodeJSON(doc, &m); err != nil {
		return nil, err
	}

	s := &skill.Skill{Name: manifestName(doc, m.Name)}
	s.Version = manifestString(m.Version, fallbackVersion)
	s.Description = manifestString(m.Description, func() skill.Field[string] { return placeholderDescription(s.Name.Value) })

	deps := newDependencyCollector()
	for _, tool := range m.Tools {
		service, method, ok := splitToolName(tool.Name)
		if ok {
			deps.add(service, method, skill.ConfidenceHigh, skill.SourceFrontmatter, "")
			continue
		}
		deps.add(s.Name.Value, tool.Name, skill.ConfidenceMedium, skill.SourceFrontmatter, "Bare tool name attributed to the server")
	}
	for _, server := range slices.Sorted(maps.Keys(m.MCPServers)) {
		deps.add(server, "", skill.ConfidenceHigh, skill.SourceFrontmatter, "")
	}
	s.Dependencies = deps.dependencies()

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", s.Name.Value)
	if len(m.Tools) > 0 {
		sb.WriteString("## Available Tools\n\n")
		for _, tool := range m.Tools {
			fmt.Fprintf(&sb, "- **%s**: %s\n", tool.Name, tool.Description)
			for _, param := range toolParams(tool) {
				fmt.Fprintf(&sb, "  - %s\n", param)
			}
		}
	}
	s.Instructions = skill.Medium(sb.String(), skill.SourceDefault, "Generated from tool list")
	s.Triggers = newTriggerCollector().triggers

	return s, nil
}

// toolParams renders the input schema properties of a tool, sorted by name,
// with required parameters marked.
func toolParams(tool mcp.Tool) []string {
	required := make(map[string]bool, len(tool.InputSchema.Required))
	for _, name := range tool.InputSchema.Required {
		required[name] = true
	}

	var params []string
	for _, name := range slices.Sorted(maps.Keys(tool.InputSchema.Properties)) {
		line := "`" + name + "`"
		prop, _ := tool.InputSchema.Properties[name].(map[string]any)
		if typ, ok := prop["type"].(string); ok && typ != "" {
			line += " (" + typ + ")"
		}
		if required[name] {
			line += " required"
		}
		if desc, ok := prop["description"].(string); ok && desc != "" {
			line += ": " + desc
		}
		params = append(params, line)
	}
	return params
}

// splitToolName understands mcp__server__method, server__method and
// server.method tool names.
func splitToolName(name string) (string, string, bool) {
	name = strings.TrimSpace(name)
	if rest, ok := strings.CutPrefix(name, "mcp__"); ok {
		name = rest
	}
	if service, method, ok := strings.Cut(name, "__"); ok && service != "" && method != "" {
		return service, method, true
	}
	if m := serviceMethodRe.FindStringSubmatch(name); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

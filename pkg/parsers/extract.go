package parsers

import (
	"regexp"
	"strings"

	"github.com/jingkaihe/skillport/pkg/types/skill"
)

const defaultVersionConstraint = ">=1.0.0"

// Names that look like service references in prose but are file
// extensions, directory names or generic words.
var deniedServiceNames = map[string]struct{}{}

func init() {
	for _, name := range []string{
		"json", "yaml", "yml", "md", "txt", "toml", "xml", "html", "css",
		"js", "ts", "py", "rs", "go", "java", "sh", "bash", "zsh",
		"env", "log", "tmp", "bak",
		"credentials", "config", "settings", "example", "test", "spec", "mock",
		"src", "bin", "lib", "pkg", "dist", "build", "target", "node_modules",
	} {
		deniedServiceNames[name] = struct{}{}
	}
}

func isPlausibleServiceName(name string) bool {
	if len(name) < 2 {
		return false
	}
	_, denied := deniedServiceNames[strings.ToLower(name)]
	return !denied
}

var (
	serviceMethodRe = regexp.MustCompile(`^([A-Za-z][\w-]*)\.([A-Za-z_]\w*)$`)
	callRe          = regexp.MustCompile(`fgp\s+call\s+([A-Za-z][\w-]*)\.([A-Za-z_]\w*)`)
	clientRe        = regexp.MustCompile(`fgp-([A-Za-z]\w*)-client\s+([A-Za-z_]\w*)`)
	daemonRe        = regexp.MustCompile(`fgp-([A-Za-z]\w*)\s+([A-Za-z_]\w*)`)
	commandRe       = regexp.MustCompile(`^/([a-zA-Z][a-zA-Z0-9-]+)$`)
)

// dependencyCollector merges service/method references from all
// extraction surfaces, keeping the first-seen order and the highest
// confidence seen for each name.
type dependencyCollector struct {
	deps  []skill.Dependency
	index map[string]int
}

func newDependencyCollector() *dependencyCollector {
	return &dependencyCollector{index: make(map[string]int)}
}

func (c *dependencyCollector) add(service, method string, confidence skill.Confidence, source skill.FieldSource, note string) {
	service = strings.TrimSpace(service)
	method = strings.TrimSpace(method)
	if !isPlausibleServiceName(service) {
		return
	}

	i, ok := c.index[service]
	if !ok {
		c.deps = append(c.deps, skill.Dependency{
			Name:              skill.NewField(service, confidence, source, note),
			VersionConstraint: skill.Low(defaultVersionConstraint, skill.SourceDefault, "Default version constraint"),
			Optional:          skill.Low(false, skill.SourceDefault, "Not declared in source, assumed required"),
		})
		i = len(c.deps) - 1
		c.index[service] = i
	}
	dep := &c.deps[i]
	dep.Name.Promote(confidence, source, note)

	if method == "" {
		return
	}
	for j := range dep.Methods {
		if dep.Methods[j].Value == method {
			dep.Methods[j].Promote(confidence, source, note)
			return
		}
	}
	dep.Methods = append(dep.Methods, skill.NewField(method, confidence, source, note))
}

// addQualified adds a "service.method" reference; other shapes are ignored.
func (c *dependencyCollector) addQualified(ref string, confidence skill.Confidence, source skill.FieldSource, note string) bool {
	m := serviceMethodRe.FindStringSubmatch(strings.Trim(strings.TrimSpace(ref), "`"))
	if m == nil {
		return false
	}
	c.add(m[1], m[2], confidence, source, note)
	return true
}

// addFromText scans prose for service invocations.
func (c *dependencyCollector) addFromText(content string) {
	for _, m := range callRe.FindAllStringSubmatch(content, -1) {
		c.add(m[1], m[2], skill.ConfidenceMedium, skill.SourceMethodExtraction, "Extracted from 'fgp call' invocation")
	}
	for _, m := range clientRe.FindAllStringSubmatch(content, -1) {
		c.add(m[1], m[2], skill.ConfidenceMedium, skill.SourceMethodExtraction, "Extracted from client binary invocation")
	}
	for _, m := range daemonRe.FindAllStringSubmatch(content, -1) {
		if m[2] == "client" || m[2] == "daemon" {
			continue
		}
		c.add(m[1], m[2], skill.ConfidenceLow, skill.SourceMethodExtraction, "Loose match on service binary invocation, verify")
	}
}

// addFromTables reads "service.method" entries from markdown tables with a
// Method column.
func (c *dependencyCollector) addFromTables(md *markdownDoc) {
	for _, cell := range md.tableColumn("method") {
		c.addQualified(cell, skill.ConfidenceMedium, skill.SourceMethodExtraction, "Extracted from method table")
	}
}

func (c *dependencyCollector) dependencies() []skill.Dependency {
	if c.deps == nil {
		return []skill.Dependency{}
	}
	return c.deps
}

// triggerCollector de-duplicates trigger entries case-insensitively.
type triggerCollector struct {
	triggers skill.Triggers
	seen     map[string]struct{}
}

func newTriggerCollector() *triggerCollector {
	return &triggerCollector{
		triggers: skill.Triggers{
			Keywords: []skill.Field[string]{},
			Patterns: []skill.Field[string]{},
			Commands: []skill.Field[string]{},
		},
		seen: make(map[string]struct{}),
	}
}

// resumeTriggers continues collecting on top of already extracted triggers.
func resumeTriggers(existing skill.Triggers) *triggerCollector {
	t := &triggerCollector{triggers: existing, seen: make(map[string]struct{})}
	for _, f := range existing.Keywords {
		t.once("k", f.Value)
	}
	for _, f := range existing.Patterns {
		t.once("p", f.Value)
	}
	for _, f := range existing.Commands {
		t.once("c", f.Value)
	}
	return t
}

func (t *triggerCollector) once(kind, value string) bool {
	key := kind + "\x00" + strings.ToLower(value)
	if _, ok := t.seen[key]; ok {
		return false
	}
	t.seen[key] = struct{}{}
	return true
}

func (t *triggerCollector) keyword(f skill.Field[string]) {
	f.Value = strings.Trim(strings.TrimSpace(f.Value), `"'`)
	if f.Value != "" && t.once("k", f.Value) {
		t.triggers.Keywords = append(t.triggers.Keywords, f)
	}
}

func (t *triggerCollector) pattern(f skill.Field[string]) {
	f.Value = strings.TrimSpace(f.Value)
	if f.Value != "" && t.once("p", f.Value) {
		t.triggers.Patterns = append(t.triggers.Patterns, f)
	}
}

func (t *triggerCollector) command(f skill.Field[string]) {
	f.Value = strings.TrimSpace(f.Value)
	if f.Value != "" && t.once("c", f.Value) {
		t.triggers.Commands = append(t.triggers.Commands, f)
	}
}

// fromSection adds list items under a triggers-like heading as keywords.
func (t *triggerCollector) fromSection(md *markdownDoc) {
	title, items := md.sectionItems("trigger", "when to use", "activation")
	for _, item := range items {
		t.keyword(skill.Medium(item, skill.SourceContent, "Listed under '"+title+"' section"))
	}
}

// fromCommands adds slash commands mentioned outside code blocks.
func (t *triggerCollector) fromCommands(content string) {
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		for _, token := range strings.Fields(trimmed) {
			token = strings.Trim(token, "`*_\"'(),.;:!?")
			if commandRe.MatchString(token) {
				t.command(skill.Medium(token, skill.SourceContent, "Slash command mentioned in content"))
			}
		}
	}
}

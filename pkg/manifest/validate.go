package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var (
	nameRe   = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?$`)
	secretRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

var configTypes = map[string]bool{
	"string":  true,
	"number":  true,
	"boolean": true,
	"enum":    true,
	"array":   true,
}

// Problem is one lint finding.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Field, p.Message)
}

// Result holds the outcome of Validate. Errors make the manifest invalid;
// warnings do not.
type Result struct {
	Errors   []Problem `json:"errors"`
	Warnings []Problem `json:"warnings"`
}

// Valid reports whether no errors were found.
func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(field, format string, args ...interface{}) {
	r.Errors = append(r.Errors, Problem{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) warnf(field, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, Problem{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate lints the manifest. baseDir is the directory holding skill.yaml;
// when non-empty, referenced instruction files are checked for existence.
func Validate(m *Manifest, baseDir string) *Result {
	r := &Result{Errors: []Problem{}, Warnings: []Problem{}}

	switch {
	case m.Name == "":
		r.errorf("name", "is required")
	case len(m.Name) < 2 || len(m.Name) > 64:
		r.errorf("name", "must be between 2 and 64 characters")
	case !nameRe.MatchString(m.Name):
		r.errorf("name", "must start with a lowercase letter and contain only lowercase letters, digits and hyphens")
	}

	switch {
	case m.Version == "":
		r.errorf("version", "is required")
	case !semverRe.MatchString(m.Version):
		r.errorf("version", "must be a semantic version (x.y.z)")
	}

	switch {
	case m.Description == "":
		r.errorf("description", "is required")
	case len(m.Description) < 10:
		r.errorf("description", "must be at least 10 characters")
	case len(m.Description) > 500:
		r.errorf("description", "must be at most 500 characters")
	}

	if m.Author == nil || m.Author.Name == "" || m.Author.Name == "Unknown" {
		r.warnf("author", "is missing")
	}

	seen := make(map[string]bool)
	for i, d := range m.Daemons {
		field := fmt.Sprintf("daemons[%d]", i)
		if d.Name == "" {
			r.errorf(field, "name is required")
			continue
		}
		if seen[d.Name] {
			r.errorf(field, "duplicate service %q", d.Name)
		}
		seen[d.Name] = true
		if len(d.Methods) == 0 {
			r.warnf(field, "service %q lists no methods", d.Name)
		}
	}

	if _, ok := m.Instructions["core"]; !ok {
		r.errorf("instructions.core", "is required")
	}
	if baseDir != "" {
		for _, key := range sortedKeys(m.Instructions) {
			path := filepath.Join(baseDir, m.Instructions[key])
			if _, err := os.Stat(path); err != nil {
				r.warnf("instructions."+key, "file %s not found", m.Instructions[key])
			}
		}
	}

	for _, key := range sortedKeys(m.Config) {
		entry := m.Config[key]
		field := "config." + key
		if !configTypes[entry.Type] {
			r.errorf(field, "unknown type %q", entry.Type)
		}
		if entry.Type == "enum" && len(entry.Options) == 0 {
			r.errorf(field, "enum needs options")
		}
	}

	if m.Auth != nil {
		for _, service := range sortedKeys(m.Auth.Daemons) {
			if v := m.Auth.Daemons[service]; v != "required" && v != "optional" {
				r.errorf("auth.daemons."+service, "must be required or optional, got %q", v)
			}
		}
		for i, s := range m.Auth.Secrets {
			if !secretRe.MatchString(s.Name) {
				r.errorf(fmt.Sprintf("auth.secrets[%d]", i), "name %q must be UPPER_SNAKE_CASE", s.Name)
			}
		}
	}

	return r
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

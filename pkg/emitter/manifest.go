// Package emitter writes an import result to a canonical skill directory:
// skill.yaml, instruction files, the import report and sync metadata.
package emitter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jingkaihe/skillport/pkg/importer"
	"github.com/jingkaihe/skillport/pkg/manifest"
	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	markerLowConfidence = "[*LOW-CONFIDENCE*]"
	markerIncomplete    = "[*INCOMPLETE*]"
)

// sourceCopyName is the file under instructions/ holding the verbatim source.
func sourceCopyName(s *skill.Skill) string {
	ext := ".md"
	if strings.EqualFold(filepath.Ext(s.Source.Path), ".json") {
		ext = ".json"
	}
	return string(s.Source.Format) + ext
}

// canonicalManifest maps the imported skill onto the skill.yaml model.
func canonicalManifest(res *importer.Result) *manifest.Manifest {
	s := res.Skill
	m := &manifest.Manifest{
		Name:        s.CanonicalName(),
		Version:     s.Version.Value,
		Description: s.Description.Value,
		Daemons:     []manifest.Daemon{},
		Instructions: map[string]string{
			"core":                   "./instructions/core.md",
			string(s.Source.Format): "./instructions/" + sourceCopyName(s),
		},
	}

	if s.Author != nil {
		m.Author = &manifest.Author{Name: s.Author.Name.Value, Email: s.Author.Email, URL: s.Author.URL}
	} else {
		m.Author = &manifest.Author{Name: "Unknown"}
	}
	if s.License != nil {
		m.License = s.License.Value
	}

	for _, d := range s.Dependencies {
		m.Daemons = append(m.Daemons, manifest.Daemon{
			Name:     d.Name.Value,
			Version:  d.VersionConstraint.Value,
			Optional: d.Optional.Value,
			Methods:  d.MethodNames(),
		})
	}

	if s.Triggers.Count() > 0 {
		m.Triggers = &manifest.Triggers{
			Keywords: fieldValues(s.Triggers.Keywords),
			Patterns: fieldValues(s.Triggers.Patterns),
			Commands: fieldValues(s.Triggers.Commands),
		}
	}

	if e := res.Enrichment; e != nil && len(e.Auth) > 0 {
		m.Auth = &manifest.Auth{Daemons: make(map[string]string)}
		for service := range e.Auth {
			m.Auth.Daemons[service] = "required"
		}
	}

	return m
}

func fieldValues(fields []skill.Field[string]) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Value)
	}
	return out
}

// RenderManifest renders skill.yaml with review markers on every value
// that was not recovered with high confidence.
func RenderManifest(res *importer.Result) ([]byte, error) {
	s := res.Skill
	m := canonicalManifest(res)

	var root yaml.Node
	if err := root.Encode(m); err != nil {
		return nil, errors.Wrap(err, "failed to encode skill manifest")
	}

	annotateField(&root, "name", s.Name)
	annotateField(&root, "version", s.Version)
	annotateField(&root, "description", s.Description)

	if s.Author == nil {
		if _, v := lookup(&root, "author"); v != nil {
			if _, name := lookup(v, "name"); name != nil {
				name.LineComment = markerIncomplete + " Add author"
			}
		}
	}

	if _, daemons := lookup(&root, "daemons"); daemons != nil {
		for i, item := range daemons.Content {
			if i >= len(s.Dependencies) {
				break
			}
			annotateDependency(item, s.Dependencies[i])
		}
	}

	if _, triggers := lookup(&root, "triggers"); triggers != nil {
		annotateSequence(triggers, "keywords", s.Triggers.Keywords)
		annotateSequence(triggers, "patterns", s.Triggers.Patterns)
		annotateSequence(triggers, "commands", s.Triggers.Commands)
	}

	if _, auth := lookup(&root, "auth"); auth != nil {
		if k, _ := lookup(auth, "daemons"); k != nil {
			k.LineComment = "From service registry"
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Imported from %s (%s) on %s\n",
		filepath.Base(s.Source.Path), s.Source.Format.DisplayName(), s.Source.ImportedAt.Format("2006-01-02"))
	fmt.Fprintf(&buf, "# Fields marked %s or %s need review\n\n", markerLowConfidence, markerIncomplete)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, errors.Wrap(err, "failed to render skill manifest")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to render skill manifest")
	}

	buf.WriteString(placeholderSections(res))
	return buf.Bytes(), nil
}

func placeholderSections(res *importer.Result) string {
	var sb strings.Builder
	sb.WriteString("\n# " + markerIncomplete + " Workflows could not be recovered from the source\n")
	sb.WriteString("# workflows:\n#   example: ./workflows/example.yaml\n")
	sb.WriteString("\n# " + markerIncomplete + " Configuration options could not be recovered from the source\n")
	sb.WriteString("# config:\n#   option_name:\n#     type: string\n#     description: \"\"\n")
	if res.Enrichment == nil || len(res.Enrichment.Auth) == 0 {
		sb.WriteString("\n# " + markerIncomplete + " Authentication requirements unknown\n")
		sb.WriteString("# auth:\n#   daemons:\n#     service_name: required\n")
	}
	return sb.String()
}

// lookup finds key in a mapping node and returns the key and value nodes.
func lookup(mapping *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil, nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i], mapping.Content[i+1]
		}
	}
	return nil, nil
}

func reviewComment[T any](f skill.Field[T]) string {
	if f.IsHigh() {
		return ""
	}
	if f.Notes == "" {
		return markerLowConfidence
	}
	return markerLowConfidence + " " + f.Notes
}

func annotateField[T any](mapping *yaml.Node, key string, f skill.Field[T]) {
	if _, v := lookup(mapping, key); v != nil {
		v.LineComment = reviewComment(f)
	}
}

func annotateDependency(item *yaml.Node, d skill.Dependency) {
	annotateField(item, "name", d.Name)
	annotateField(item, "version", d.VersionConstraint)
	if _, methods := lookup(item, "methods"); methods != nil {
		for i, m := range methods.Content {
			if i < len(d.Methods) {
				m.LineComment = reviewComment(d.Methods[i])
			}
		}
	}
}

func annotateSequence(mapping *yaml.Node, key string, fields []skill.Field[string]) {
	_, seq := lookup(mapping, key)
	if seq == nil {
		return
	}
	for i, item := range seq.Content {
		if i < len(fields) {
			item.LineComment = reviewComment(fields[i])
		}
	}
}

package emitter

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/jingkaihe/skillport/pkg/importer"
	"github.com/jingkaihe/skillport/pkg/quality"
	"github.com/jingkaihe/skillport/pkg/registry"
	"github.com/jingkaihe/skillport/pkg/syncstate"
	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/pkg/errors"
)

//go:embed templates/*
var templateFS embed.FS

const reportTemplate = "templates/import_report.md.tmpl"

// fieldRow is one line of the field recovery table.
type fieldRow struct {
	Field      string
	Value      string
	Confidence skill.Confidence
	Source     skill.FieldSource
	Notes      string
}

// verifiedService is the registry view of one verified dependency.
type verifiedService struct {
	Name      string
	Auth      *registry.Auth
	Platforms []string
	Methods   []verifiedMethod
	Available []string
}

type verifiedMethod struct {
	Name        string
	Description string
	Params      []registry.Param
}

type reportWeights struct {
	Metadata, Dependencies, Instructions, Triggers, Config int
}

type reportData struct {
	ID           string
	ToolVersion  string
	OutputDir    string
	Skill        *skill.Skill
	Assessment   *quality.Assessment
	Enrichment   *registry.Enrichment
	Services     []verifiedService
	Sync         *syncstate.Analysis
	Weights      reportWeights
	Fields       []fieldRow
	Issues       []quality.Issue
	Placeholders []string
}

// RenderReport renders IMPORT_REPORT.md.
func RenderReport(res *importer.Result, toolVersion string) ([]byte, error) {
	content, err := templateFS.ReadFile(reportTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read template file")
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"join": strings.Join,
		"inc":  func(i int) int { return i + 1 },
	}).Parse(string(content))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse template")
	}

	data := reportData{
		ID:          res.ID,
		ToolVersion: toolVersion,
		OutputDir:   res.OutputDir,
		Skill:       res.Skill,
		Assessment:  res.Assessment,
		Enrichment:  res.Enrichment,
		Services:    verifiedServices(res.Skill, res.Enrichment),
		Sync:        res.Sync,
		Weights: reportWeights{
			Metadata:     quality.WeightMetadata,
			Dependencies: quality.WeightDependencies,
			Instructions: quality.WeightInstructions,
			Triggers:     quality.WeightTriggers,
			Config:       quality.WeightConfig,
		},
		Fields:       fieldRows(res.Skill),
		Issues:       res.Assessment.Issues,
		Placeholders: placeholders(res.Skill),
	}
	if data.OutputDir == "" {
		data.OutputDir = "."
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, "failed to execute template")
	}
	return buf.Bytes(), nil
}

func row[T any](name string, f skill.Field[T], value string) fieldRow {
	return fieldRow{
		Field:      name,
		Value:      cell(value),
		Confidence: f.Confidence,
		Source:     f.Source,
		Notes:      cell(f.Notes),
	}
}

// cell makes a value safe to place in a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	r := []rune(s)
	if len(r) > 60 {
		return string(r[:60]) + "..."
	}
	return s
}

func fieldRows(s *skill.Skill) []fieldRow {
	rows := []fieldRow{
		row("name", s.Name, s.Name.Value),
		row("version", s.Version, s.Version.Value),
		row("description", s.Description, s.Description.Value),
	}
	if s.Author != nil {
		rows = append(rows, row("author", s.Author.Name, s.Author.Name.Value))
	}
	if s.License != nil {
		rows = append(rows, row("license", *s.License, s.License.Value))
	}
	rows = append(rows, row("instructions", s.Instructions, fmt.Sprintf("%d chars", len(s.Instructions.Value))))

	for _, d := range s.Dependencies {
		rows = append(rows, row("daemon", d.Name, d.Name.Value))
		for _, m := range d.Methods {
			rows = append(rows, row("method", m, d.Name.Value+"."+m.Value))
		}
	}
	return rows
}

func verifiedServices(s *skill.Skill, e *registry.Enrichment) []verifiedService {
	if e == nil {
		return nil
	}
	services := make([]verifiedService, 0, len(e.Verified))
	for _, name := range e.Verified {
		svc := verifiedService{
			Name:      name,
			Platforms: e.Platforms[name],
			Available: e.Available[name],
		}
		if auth, ok := e.Auth[name]; ok {
			svc.Auth = &auth
		}
		if d, ok := s.Dependency(name); ok {
			for _, m := range d.MethodNames() {
				key := name + "." + m
				svc.Methods = append(svc.Methods, verifiedMethod{
					Name:        m,
					Description: e.MethodDescriptions[key],
					Params:      e.MethodParams[key],
				})
			}
		}
		services = append(services, svc)
	}
	return services
}

// placeholders lists manifest fields that hold generated stand-in values.
func placeholders(s *skill.Skill) []string {
	var out []string
	if s.Description.Source == skill.SourceDefault {
		out = append(out, "description")
	}
	if s.Author == nil {
		out = append(out, "author")
	}
	if s.License == nil {
		out = append(out, "license")
	}
	for _, d := range s.Dependencies {
		if d.VersionConstraint.Source == skill.SourceDefault {
			out = append(out, "daemons."+d.Name.Value+".version")
		}
	}
	return out
}

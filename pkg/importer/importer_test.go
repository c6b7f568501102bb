package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jingkaihe/skillport/pkg/emitter"
	"github.com/jingkaihe/skillport/pkg/importer"
	"github.com/jingkaihe/skillport/pkg/parsers"
	"github.com/jingkaihe/skillport/pkg/quality"
	"github.com/jingkaihe/skillport/pkg/registry"
	"github.com/jingkaihe/skillport/pkg/syncstate"
	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var clock = fixedClock{t: time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)}

const fooBarSkill = `---
name: foo-bar
description: "Foo Bar skill"
tools: ["mail.send"]
---

# Foo Bar

This skill drafts and sends email on behalf of the user. It reads the request,
works out who the recipients are, writes a short and polite message in the
tone the user asked for, and sends it through the mail service. Always show
the draft to the user before sending and wait for an explicit confirmation.
Never send to addresses that did not appear in the conversation. When the
request is ambiguous, ask one clarifying question instead of guessing. Keep
subject lines under sixty characters and put the most important sentence
first in the body of the message.

## When to use

- sending email
- replying to a thread
- forwarding a message

Type /mail to start a new draft.

` + "```sh\nfgp call mail.send --to alice@example.com\n```\n"

const shortFooBarSkill = `---
name: foo-bar
description: "Foo Bar skill"
tools: ["mail.send"]
---

Send the email the user asked for.
`

const exampleDoc = "# Example\n\nThis is an example skill. It helps with examples.\n"

func mailRegistry() *registry.Registry {
	return registry.New(&registry.Manifest{
		Name:      "mail",
		Auth:      &registry.Auth{Type: "oauth2", Provider: "google"},
		Platforms: []string{"linux", "darwin"},
		Methods: []registry.Method{
			{Name: "send", Description: "Send an email"},
			{Name: "list", Description: "List messages"},
		},
	})
}

func writeSource(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportStructuredSkill(t *testing.T) {
	src := writeSource(t, "skills/foo-bar/SKILL.md", fooBarSkill)

	res, err := importer.Import(context.Background(), importer.Options{
		Path:     src,
		Registry: mailRegistry(),
		Clock:    clock,
	})
	require.NoError(t, err)

	s := res.Skill
	assert.Equal(t, skill.High("foo-bar", skill.SourceFrontmatter), s.Name)
	require.Len(t, s.Dependencies, 1)
	dep := s.Dependencies[0]
	assert.Equal(t, "mail", dep.Name.Value)
	assert.Equal(t, skill.ConfidenceHigh, dep.Name.Confidence)
	require.Equal(t, []string{"send"}, dep.MethodNames())
	assert.Equal(t, skill.ConfidenceHigh, dep.Methods[0].Confidence)

	require.NotNil(t, res.Enrichment)
	assert.Equal(t, []string{"mail"}, res.Enrichment.Verified)
	assert.Equal(t, []string{"list"}, res.Enrichment.Available["mail"])

	assert.Equal(t, quality.Breakdown{Metadata: 54, Dependencies: 100, Instructions: 100, Triggers: 55, Config: 100}, res.Assessment.Breakdown)
	assert.Equal(t, 84, res.Assessment.Score)
	assert.Equal(t, quality.GradeB, res.Assessment.Grade)

	assert.Equal(t, syncstate.StatusUnknown, res.Sync.Status)
	assert.Equal(t, syncstate.ActionInitialize, res.Sync.Recommendation.Action)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, clock.t, s.Source.ImportedAt)
}

func TestImportWithoutRegistrySkipsEnrichment(t *testing.T) {
	src := writeSource(t, "skills/foo-bar/SKILL.md", fooBarSkill)

	res, err := importer.Import(context.Background(), importer.Options{Path: src, Clock: clock})
	require.NoError(t, err)

	assert.Nil(t, res.Enrichment)
	assert.Equal(t, 75, res.Assessment.Breakdown.Dependencies)
	assert.Equal(t, 20, res.Assessment.Breakdown.Config)
	assert.Less(t, res.Assessment.Score, 80)
}

func TestImportShortFrontMatterSkill(t *testing.T) {
	src := writeSource(t, "skills/foo-bar/SKILL.md", shortFooBarSkill)

	res, err := importer.Import(context.Background(), importer.Options{Path: src, Registry: mailRegistry(), Clock: clock})
	require.NoError(t, err)

	s := res.Skill
	assert.Equal(t, skill.ConfidenceHigh, s.Name.Confidence)
	require.Len(t, s.Dependencies, 1)
	assert.Equal(t, []string{"send"}, s.Dependencies[0].MethodNames())
	assert.Equal(t, skill.ConfidenceHigh, s.Dependencies[0].Methods[0].Confidence)
	assert.Equal(t, skill.ConfidenceHigh, s.Instructions.Confidence)

	assert.Equal(t, quality.Breakdown{Metadata: 54, Dependencies: 100, Instructions: 90, Triggers: 50, Config: 100}, res.Assessment.Breakdown)
	assert.Equal(t, quality.GradeB, res.Assessment.Grade)

	unverified, err := importer.Import(context.Background(), importer.Options{Path: src, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, quality.GradeD, unverified.Assessment.Grade)
}

func TestImportPlainMarkdown(t *testing.T) {
	src := writeSource(t, "notes/example.md", exampleDoc)

	res, err := importer.Import(context.Background(), importer.Options{Path: src, Format: "cursor", Clock: clock})
	require.NoError(t, err)

	assert.Equal(t, "Example", res.Skill.Name.Value)
	assert.Equal(t, "example", res.Skill.CanonicalName())
	assert.Equal(t, skill.ConfidenceMedium, res.Skill.Name.Confidence)
	assert.Empty(t, res.Skill.Dependencies)
	assert.NotEmpty(t, res.Assessment.IssuesWith(quality.PriorityCritical))
	assert.Contains(t, []quality.Grade{quality.GradeD, quality.GradeF}, res.Assessment.Grade)
}

func TestReimportUnchangedIsInSync(t *testing.T) {
	src := writeSource(t, "example.cursorrules", exampleDoc)
	out := t.TempDir()
	ctx := context.Background()

	first, err := importer.Import(ctx, importer.Options{Path: src, OutputDir: out, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, syncstate.StatusUnknown, first.Sync.Status)
	_, err = emitter.Write(ctx, first, emitter.Options{ToolVersion: "test"})
	require.NoError(t, err)

	later := fixedClock{t: clock.t.Add(time.Hour)}
	second, err := importer.Import(ctx, importer.Options{Path: src, OutputDir: out, Clock: later})
	require.NoError(t, err)
	assert.Equal(t, syncstate.StatusInSync, second.Sync.Status)
	assert.Equal(t, syncstate.ActionNone, second.Sync.Recommendation.Action)
	assert.Empty(t, second.Sync.Diffs)
	require.NotNil(t, second.Sync.LastSync)
	assert.Equal(t, clock.t, *second.Sync.LastSync)
}

func TestReimportChangedSourceIsSourceNewer(t *testing.T) {
	src := writeSource(t, "example.cursorrules", exampleDoc)
	out := t.TempDir()
	ctx := context.Background()

	first, err := importer.Import(ctx, importer.Options{Path: src, OutputDir: out, Clock: clock})
	require.NoError(t, err)
	_, err = emitter.Write(ctx, first, emitter.Options{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte(exampleDoc+"\nRun fgp call mail.send when asked.\n"), 0o644))

	second, err := importer.Import(ctx, importer.Options{Path: src, OutputDir: out, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, syncstate.StatusSourceNewer, second.Sync.Status)
	assert.Equal(t, syncstate.ActionImport, second.Sync.Recommendation.Action)

	var fields []string
	for _, d := range second.Sync.Diffs {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "dependencies")
	assert.Contains(t, fields, "instructions")
	assert.NotContains(t, fields, "name")
}

func TestImportRejectsDeniedServiceNames(t *testing.T) {
	src := writeSource(t, "helper.cursorrules", "# Helper\n\nPipe the output through fgp-json parse before reading it.\n")

	res, err := importer.Import(context.Background(), importer.Options{Path: src, Clock: clock})
	require.NoError(t, err)
	assert.Empty(t, res.Skill.Dependencies)
}

func TestImportIsDeterministic(t *testing.T) {
	src := writeSource(t, "skills/foo-bar/SKILL.md", fooBarSkill)
	opts := importer.Options{Path: src, Registry: mailRegistry(), Clock: clock}

	a, err := importer.Import(context.Background(), opts)
	require.NoError(t, err)
	b, err := importer.Import(context.Background(), importer.Options{Path: src, Registry: mailRegistry(), Clock: clock})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Skill, b.Skill)
	assert.Equal(t, a.Assessment, b.Assessment)
	assert.Equal(t, a.Sync.Current, b.Sync.Current)
}

func TestImportErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.cursorrules")
	_, err := importer.Import(context.Background(), importer.Options{Path: missing})
	assert.True(t, errors.Is(err, importer.ErrSourceNotFound), "got %v", err)

	missingUnknown := filepath.Join(t.TempDir(), "gone.txt")
	_, err = importer.Import(context.Background(), importer.Options{Path: missingUnknown})
	assert.True(t, errors.Is(err, importer.ErrSourceNotFound), "got %v", err)

	src := writeSource(t, "notes.txt", "hello")
	_, err = importer.Import(context.Background(), importer.Options{Path: src})
	assert.True(t, errors.Is(err, parsers.ErrUnknownFormat), "got %v", err)

	bad := writeSource(t, "bad/SKILL.md", "---\nname: [unclosed\n---\n\nbody\n")
	_, err = importer.Import(context.Background(), importer.Options{Path: bad})
	assert.True(t, errors.Is(err, parsers.ErrMalformed), "got %v", err)
}

func TestImportReadsSiblingInstructions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "GEMINI.md"), []byte("# Context\n\nUse the calendar carefully.\n"), 0o644))
	src := filepath.Join(dir, "gemini-extension.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"name":"calendar-helper","version":"0.3.0","contextFileName":"GEMINI.md"}`), 0o644))

	res, err := importer.Import(context.Background(), importer.Options{Path: src, Clock: clock})
	require.NoError(t, err)
	assert.True(t, strings.Contains(res.Skill.Instructions.Value, "Use the calendar carefully."))
}

func TestImportDerivesOutputDirFromRoot(t *testing.T) {
	src := writeSource(t, "skills/foo-bar/SKILL.md", fooBarSkill)
	root := t.TempDir()

	res, err := importer.Import(context.Background(), importer.Options{Path: src, OutputRoot: root, Clock: clock})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "foo-bar"), res.OutputDir)
	assert.Contains(t, res.Sync.Recommendation.Command, "--output "+filepath.Join(root, "foo-bar"))
}

func TestMetadataStoresAbsoluteSourcePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "skills", "foo-bar"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skills", "foo-bar", "SKILL.md"), []byte(fooBarSkill), 0o644))
	t.Chdir(dir)
	wd, err := os.Getwd()
	require.NoError(t, err)

	rel := filepath.Join("skills", "foo-bar", "SKILL.md")
	res, err := importer.Import(context.Background(), importer.Options{Path: rel, Clock: clock})
	require.NoError(t, err)

	meta := res.Metadata("test")
	assert.Equal(t, filepath.Join(wd, rel), meta.SourcePath)
	assert.Equal(t, "test", meta.ToolVersion)
}

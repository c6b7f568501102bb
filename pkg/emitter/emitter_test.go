package emitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jingkaihe/skillport/pkg/importer"
	"github.com/jingkaihe/skillport/pkg/manifest"
	"github.com/jingkaihe/skillport/pkg/registry"
	"github.com/jingkaihe/skillport/pkg/syncstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC) }

const rulesDoc = `# Inbox Helper

Keeps the inbox tidy and answers routine email.

## Triggers

- triage my inbox

Run fgp call mail.send to reply and fgp-mail list to read.
`

func importDoc(t *testing.T, reg *registry.Registry) *importer.Result {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "inbox.cursorrules")
	require.NoError(t, os.WriteFile(src, []byte(rulesDoc), 0o644))

	res, err := importer.Import(context.Background(), importer.Options{
		Path:      src,
		OutputDir: filepath.Join(dir, "out"),
		Registry:  reg,
		Clock:     fixedClock{},
	})
	require.NoError(t, err)
	return res
}

func TestWriteLaysOutSkillDirectory(t *testing.T) {
	res := importDoc(t, nil)

	written, err := Write(context.Background(), res, Options{ToolVersion: "0.1.0"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"skill.yaml",
		"instructions/core.md",
		"instructions/cursor.md",
		"workflows/.gitkeep",
		ReportFileName,
		syncstate.FileName,
	}, written)

	for _, name := range written {
		_, err := os.Stat(filepath.Join(res.OutputDir, name))
		assert.NoError(t, err, name)
	}

	source, err := os.ReadFile(filepath.Join(res.OutputDir, "instructions", "cursor.md"))
	require.NoError(t, err)
	assert.Equal(t, rulesDoc, string(source))

	meta, err := syncstate.NewStore(res.OutputDir).Read()
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, res.ID, meta.ImportID)
	assert.Equal(t, "0.1.0", meta.ToolVersion)
	assert.Equal(t, res.Sync.Current, meta.Fingerprint)
}

func TestWriteRequiresOutputDir(t *testing.T) {
	res := importDoc(t, nil)
	res.OutputDir = ""
	_, err := Write(context.Background(), res, Options{})
	assert.Error(t, err)
}

func TestWriteSkipReport(t *testing.T) {
	res := importDoc(t, nil)
	written, err := Write(context.Background(), res, Options{SkipReport: true})
	require.NoError(t, err)
	assert.NotContains(t, written, ReportFileName)
}

func TestManifestIsValidYAMLWithMarkers(t *testing.T) {
	res := importDoc(t, nil)

	out, err := RenderManifest(res)
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "# Imported from inbox.cursorrules (Cursor) on 2026-05-04")
	assert.Contains(t, text, "version: 1.0.0 # "+markerLowConfidence)
	assert.Contains(t, text, markerIncomplete+" Add author")
	assert.Contains(t, text, markerIncomplete+" Authentication requirements unknown")

	var m manifest.Manifest
	require.NoError(t, yaml.Unmarshal(out, &m))
	assert.Equal(t, "inbox-helper", m.Name)
	assert.Equal(t, "1.0.0", m.Version)
	require.Len(t, m.Daemons, 1)
	assert.Equal(t, "mail", m.Daemons[0].Name)
	assert.Equal(t, []string{"send", "list"}, m.Daemons[0].Methods)
	assert.Equal(t, ">=1.0.0", m.Daemons[0].Version)
	assert.Equal(t, "./instructions/core.md", m.Instructions["core"])
	assert.Equal(t, "./instructions/cursor.md", m.Instructions["cursor"])
	require.NotNil(t, m.Triggers)
	assert.Equal(t, []string{"triage my inbox"}, m.Triggers.Keywords)
	assert.Nil(t, m.Auth)

	r := manifest.Validate(&m, "")
	assert.True(t, r.Valid(), "%v", r.Errors)
}

func TestManifestCarriesRegistryAuth(t *testing.T) {
	reg := registry.New(&registry.Manifest{
		Name:    "mail",
		Auth:    &registry.Auth{Type: "oauth2"},
		Methods: []registry.Method{{Name: "send"}, {Name: "list"}},
	})
	res := importDoc(t, reg)

	out, err := RenderManifest(res)
	require.NoError(t, err)

	var m manifest.Manifest
	require.NoError(t, yaml.Unmarshal(out, &m))
	require.NotNil(t, m.Auth)
	assert.Equal(t, map[string]string{"mail": "required"}, m.Auth.Daemons)
	assert.NotContains(t, string(out), "Authentication requirements unknown")
}

func TestReportSections(t *testing.T) {
	res := importDoc(t, nil)

	out, err := RenderReport(res, "0.1.0")
	require.NoError(t, err)
	text := string(out)

	for _, want := range []string{
		"# Import Report: inbox-helper",
		"**Score: ",
		"## Field Recovery",
		"| name | Inbox Helper | medium |",
		"| method | mail.send | medium |",
		"## Issues",
		"## Recommendations",
		"## Unrecoverable Data",
		"No structured metadata in the format",
		"`author` is a placeholder",
		"- **Status**: unknown",
		"skillport validate " + res.OutputDir,
	} {
		assert.Contains(t, text, want)
	}
	assert.NotContains(t, text, "## Registry Verification")
}

func TestReportListsRegistryResults(t *testing.T) {
	reg := registry.New(&registry.Manifest{
		Name:    "mail",
		Methods: []registry.Method{{Name: "send"}, {Name: "list"}, {Name: "archive"}},
	})
	res := importDoc(t, reg)

	out, err := RenderReport(res, "")
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Verified services: mail")
	assert.Contains(t, text, "Other methods available on `mail`: archive")
}

func TestReportRendersRegistryDetails(t *testing.T) {
	reg := registry.New(&registry.Manifest{
		Name:      "mail",
		Auth:      &registry.Auth{Type: "oauth2", Provider: "google", Scopes: []string{"gmail.send"}},
		Platforms: []string{"linux", "darwin"},
		Methods: []registry.Method{
			{
				Name:        "send",
				Description: "Send an email",
				Params: []registry.Param{
					{Name: "to", Type: "string", Required: true, Description: "Recipient address"},
					{Name: "cc", Type: "array"},
				},
			},
			{Name: "list"},
		},
	})
	res := importDoc(t, reg)

	out, err := RenderReport(res, "")
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "### `mail`\n\n"+
		"- **Auth**: oauth2 (google), scopes: gmail.send\n"+
		"- **Platforms**: linux, darwin\n"+
		"- Method `send`: Send an email\n"+
		"  - `to` (string) required: Recipient address\n"+
		"  - `cc` (array)\n"+
		"- Method `list`\n")
	assert.NotContains(t, text, "Other methods available")
}

func TestReportWithoutRegistryAuth(t *testing.T) {
	reg := registry.New(&registry.Manifest{Name: "mail", Methods: []registry.Method{{Name: "send"}}})
	res := importDoc(t, reg)

	out, err := RenderReport(res, "")
	require.NoError(t, err)
	assert.Contains(t, string(out), "- **Auth**: not documented\n- **Platforms**: not documented\n")
}

func TestCellEscapes(t *testing.T) {
	assert.Equal(t, `a \| b c`, cell("a | b\nc"))
	long := cell(string(make([]byte, 80)))
	assert.Len(t, []rune(long), 63)
}

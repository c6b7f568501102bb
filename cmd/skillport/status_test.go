package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/skillport/pkg/manifest"
	"github.com/jingkaihe/skillport/pkg/syncstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importInto(t *testing.T, src, out string) {
	t.Helper()
	cfg := NewImportConfig()
	cfg.Output = out
	_, err := runImport(context.Background(), src, cfg, nil)
	require.NoError(t, err)
}

func TestRunStatusFromSkillDir(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "inbox.cursorrules"), inboxRules)
	out := filepath.Join(dir, "out")
	importInto(t, src, out)

	a, err := runStatus(context.Background(), out, NewStatusConfig())
	require.NoError(t, err)
	assert.Equal(t, syncstate.StatusInSync, a.Status)

	writeFile(t, src, inboxRules+"\nAlso run fgp call calendar.today.\n")
	a, err = runStatus(context.Background(), out, NewStatusConfig())
	require.NoError(t, err)
	assert.Equal(t, syncstate.StatusSourceNewer, a.Status)
	assert.NotEmpty(t, a.Diffs)
}

func TestRunStatusFromSource(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "inbox.cursorrules"), inboxRules)

	_, err := runStatus(context.Background(), src, NewStatusConfig())
	assert.ErrorContains(t, err, "--output is required")

	cfg := NewStatusConfig()
	cfg.Output = filepath.Join(dir, "never-imported")
	a, err := runStatus(context.Background(), src, cfg)
	require.NoError(t, err)
	assert.Equal(t, syncstate.StatusUnknown, a.Status)
	assert.Equal(t, syncstate.ActionInitialize, a.Recommendation.Action)
}

func TestRunStatusWithoutMetadata(t *testing.T) {
	_, err := runStatus(context.Background(), t.TempDir(), NewStatusConfig())
	assert.ErrorContains(t, err, "import it first")
}

func TestRunCompare(t *testing.T) {
	dir := t.TempDir()
	oldSrc := writeFile(t, filepath.Join(dir, "old", "inbox.cursorrules"), inboxRules)
	newSrc := writeFile(t, filepath.Join(dir, "new", "inbox.cursorrules"), inboxRules+"\nAlso run fgp call calendar.today.\n")

	diffs, err := runCompare(context.Background(), oldSrc, oldSrc, NewCompareConfig())
	require.NoError(t, err)
	assert.Empty(t, diffs)

	diffs, err = runCompare(context.Background(), oldSrc, newSrc, NewCompareConfig())
	require.NoError(t, err)
	byField := map[string]syncstate.FieldDiff{}
	for _, d := range diffs {
		byField[d.Field] = d
	}
	calendar, ok := byField["dependencies.calendar"]
	require.True(t, ok, "diffs: %v", diffs)
	assert.Equal(t, syncstate.ChangeAdded, calendar.ChangeType)
	assert.Equal(t, syncstate.SignificanceCritical, calendar.Significance)
	assert.Contains(t, byField, "instructions")
	assert.NotContains(t, byField, "dependencies.mail")
}

func TestRunValidate(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "inbox.cursorrules"), inboxRules)
	out := filepath.Join(dir, "out")
	importInto(t, src, out)

	result, err := runValidate(out)
	require.NoError(t, err)
	assert.True(t, result.Valid(), "%v", result.Errors)

	result, err = runValidate(filepath.Join(out, manifest.FileName))
	require.NoError(t, err)
	assert.True(t, result.Valid())

	require.NoError(t, os.Remove(filepath.Join(out, "instructions", "core.md")))
	result, err = runValidate(out)
	require.NoError(t, err)
	var fields []string
	for _, w := range result.Warnings {
		fields = append(fields, w.Field)
	}
	assert.Contains(t, fields, "instructions.core")

	_, err = runValidate(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

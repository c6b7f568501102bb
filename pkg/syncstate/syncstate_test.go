package syncstate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(48 * time.Hour)
)

func sampleSkill() *skill.Skill {
	return &skill.Skill{
		Name:        skill.High("foo", skill.SourceFrontmatter),
		Version:     skill.High("1.0.0", skill.SourceFrontmatter),
		Description: skill.High("Does foo things", skill.SourceFrontmatter),
		Dependencies: []skill.Dependency{
			{Name: skill.High("mail", skill.SourceFrontmatter), Methods: []skill.Field[string]{skill.High("send", skill.SourceFrontmatter), skill.High("list", skill.SourceFrontmatter)}},
			{Name: skill.Medium("calendar", skill.SourceMethodExtraction, "call"), Methods: []skill.Field[string]{skill.Medium("today", skill.SourceMethodExtraction, "call")}},
		},
		Instructions: skill.High("# Foo\n\nDo the foo.\n", skill.SourceContent),
		Triggers: skill.Triggers{
			Keywords: []skill.Field[string]{skill.High("foo", skill.SourceFrontmatter), skill.High("bar", skill.SourceFrontmatter)},
		},
		Source: skill.SourceInfo{Format: skill.FormatClaudeCode, Path: "skills/foo/SKILL.md"},
	}
}

func TestFingerprintIgnoresOrderAndFormatting(t *testing.T) {
	a := sampleSkill()
	b := sampleSkill()
	b.Dependencies[0], b.Dependencies[1] = b.Dependencies[1], b.Dependencies[0]
	b.Dependencies[1].Methods[0], b.Dependencies[1].Methods[1] = b.Dependencies[1].Methods[1], b.Dependencies[1].Methods[0]
	b.Triggers.Keywords[0], b.Triggers.Keywords[1] = b.Triggers.Keywords[1], b.Triggers.Keywords[0]
	b.Instructions.Value = "\r\n# Foo\r\n\r\nDo the foo.\r\n\r\n"
	b.Name.Confidence = skill.ConfidenceLow

	fa := NewFingerprint(a, t0)
	fb := NewFingerprint(b, t1)

	assert.True(t, fa.Equal(fb))
	assert.Equal(t, fa.CombinedHash, fb.CombinedHash)
	assert.Len(t, fa.CombinedHash, 64)
	assert.Equal(t, t0, fa.Timestamp)
}

func TestFingerprintDetectsChanges(t *testing.T) {
	base := NewFingerprint(sampleSkill(), t0)

	s := sampleSkill()
	s.Instructions.Value += "\nMore.\n"
	changed := NewFingerprint(s, t0)

	assert.False(t, base.Equal(changed))
	assert.NotEqual(t, base.InstructionsHash, changed.InstructionsHash)
	assert.Equal(t, base.NameHash, changed.NameHash)
	assert.Equal(t, base.DependenciesHash, changed.DependenciesHash)
	assert.NotEqual(t, base.CombinedHash, changed.CombinedHash)
}

func TestAnalyzeFirstImport(t *testing.T) {
	a := Analyze(sampleSkill(), nil, "out/foo", t0)

	assert.Equal(t, StatusUnknown, a.Status)
	assert.Equal(t, ActionInitialize, a.Recommendation.Action)
	assert.Nil(t, a.Previous)
	assert.Empty(t, a.Diffs)
	assert.Equal(t, "skillport import skills/foo/SKILL.md --output out/foo", a.Recommendation.Command)
}

func TestAnalyzeInSync(t *testing.T) {
	prior := &Metadata{Fingerprint: NewFingerprint(sampleSkill(), t0), LastSync: t0}

	a := Analyze(sampleSkill(), prior, "out/foo", t1)

	assert.Equal(t, StatusInSync, a.Status)
	assert.Equal(t, ActionNone, a.Recommendation.Action)
	assert.Empty(t, a.Diffs)
	require.NotNil(t, a.LastSync)
	assert.Equal(t, t0, *a.LastSync)
}

func TestAnalyzeSourceChanged(t *testing.T) {
	prior := &Metadata{Fingerprint: NewFingerprint(sampleSkill(), t0), LastSync: t0}

	s := sampleSkill()
	s.Instructions.Value = "# Foo\n\nDo the foo, then the bar.\n"
	s.Dependencies = s.Dependencies[:1]

	a := Analyze(s, prior, "out/foo", t1)

	assert.Equal(t, StatusSourceNewer, a.Status)
	assert.Equal(t, ActionImport, a.Recommendation.Action)
	require.Len(t, a.Diffs, 2)
	assert.Equal(t, "dependencies", a.Diffs[0].Field)
	assert.Equal(t, SignificanceCritical, a.Diffs[0].Significance)
	assert.Equal(t, "instructions", a.Diffs[1].Field)
	assert.Equal(t, SignificanceImportant, a.Diffs[1].Significance)
	assert.Equal(t, ChangeModified, a.Diffs[1].ChangeType)
}

func TestCompare(t *testing.T) {
	prior := sampleSkill()
	current := sampleSkill()
	current.Version.Value = "1.1.0"
	current.Dependencies = []skill.Dependency{
		{Name: skill.High("mail", skill.SourceFrontmatter), Methods: []skill.Field[string]{skill.High("send", skill.SourceFrontmatter), skill.High("archive", skill.SourceFrontmatter)}},
		{Name: skill.High("drive", skill.SourceFrontmatter), Methods: []skill.Field[string]{skill.High("search", skill.SourceFrontmatter)}},
	}
	current.Triggers.Keywords = append(current.Triggers.Keywords, skill.High("baz", skill.SourceFrontmatter))

	got := Compare(prior, current)

	want := []FieldDiff{
		{Field: "version", ChangeType: ChangeModified, OldValue: "1.0.0", NewValue: "1.1.0", Significance: SignificanceImportant},
		{Field: "dependencies.calendar", ChangeType: ChangeRemoved, OldValue: "1 methods", Significance: SignificanceCritical},
		{Field: "dependencies.mail.list", ChangeType: ChangeRemoved, OldValue: "list", Significance: SignificanceImportant},
		{Field: "dependencies.mail.archive", ChangeType: ChangeAdded, NewValue: "archive", Significance: SignificanceImportant},
		{Field: "dependencies.drive", ChangeType: ChangeAdded, NewValue: "1 methods", Significance: SignificanceCritical},
		{Field: "triggers.keywords.baz", ChangeType: ChangeAdded, NewValue: "baz", Significance: SignificanceMinor},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compare() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareInstructions(t *testing.T) {
	prior := sampleSkill()

	small := sampleSkill()
	small.Instructions.Value = "# Foo\n\nDo the fob.\n"
	diffs := Compare(prior, small)
	require.Len(t, diffs, 1)
	assert.Equal(t, SignificanceMinor, diffs[0].Significance)
	assert.Contains(t, diffs[0].Patch, "-Do the foo.")
	assert.Contains(t, diffs[0].Patch, "+Do the fob.")

	large := sampleSkill()
	large.Instructions.Value = "# Foo\n\nDo the foo.\n\n## Details\n\nA much longer explanation of everything.\n"
	diffs = Compare(prior, large)
	require.Len(t, diffs, 1)
	assert.Equal(t, SignificanceImportant, diffs[0].Significance)
}

func TestCompareIdentical(t *testing.T) {
	assert.Empty(t, Compare(sampleSkill(), sampleSkill()))
}

func TestStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "foo")
	store := NewStore(dir)

	m, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, m)

	want := &Metadata{
		SourcePath:   "skills/foo/SKILL.md",
		SourceFormat: skill.FormatClaudeCode,
		Fingerprint:  NewFingerprint(sampleSkill(), t0),
		LastSync:     t0,
		Direction:    DirectionImport,
		ImportID:     "3b1f0f5e-6a57-4f54-9a55-1f0c8f5d7a10",
	}
	require.NoError(t, store.Write(want))

	got, err := store.Read()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(0)); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreReadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))

	_, err := NewStore(dir).Read()
	assert.Error(t, err)
}

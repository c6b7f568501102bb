package skill

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceOrderingAndWeights(t *testing.T) {
	assert.True(t, ConfidenceUnknown < ConfidenceLow)
	assert.True(t, ConfidenceLow < ConfidenceMedium)
	assert.True(t, ConfidenceMedium < ConfidenceHigh)

	assert.Equal(t, 100, ConfidenceHigh.Weight())
	assert.Equal(t, 60, ConfidenceMedium.Weight())
	assert.Equal(t, 30, ConfidenceLow.Weight())
	assert.Equal(t, 0, ConfidenceUnknown.Weight())
}

func TestConfidenceText(t *testing.T) {
	for _, c := range []Confidence{ConfidenceUnknown, ConfidenceLow, ConfidenceMedium, ConfidenceHigh} {
		b, err := c.MarshalText()
		require.NoError(t, err)

		var got Confidence
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, c, got)
	}

	var c Confidence
	assert.Error(t, c.UnmarshalText([]byte("certain")))
}

func TestFieldRaise(t *testing.T) {
	f := Low("gmail", SourceContent, "pattern match")

	assert.True(t, f.Raise("verified"))
	assert.Equal(t, ConfidenceMedium, f.Confidence)
	assert.Equal(t, "verified", f.Notes)

	assert.True(t, f.Raise("confirmed"))
	assert.Equal(t, ConfidenceHigh, f.Confidence)

	assert.False(t, f.Raise("again"))
	assert.Equal(t, ConfidenceHigh, f.Confidence)
	assert.Equal(t, "confirmed", f.Notes)
}

func TestFieldPromoteNeverLowers(t *testing.T) {
	f := High("send", SourceFrontmatter)

	assert.False(t, f.Promote(ConfidenceMedium, SourceRegistry, "registry"))
	assert.Equal(t, ConfidenceHigh, f.Confidence)
	assert.Equal(t, SourceFrontmatter, f.Source)

	g := Low("send", SourceContent, "loose match")
	assert.True(t, g.Promote(ConfidenceHigh, SourceRegistry, "verified"))
	assert.Equal(t, ConfidenceHigh, g.Confidence)
	assert.Equal(t, SourceRegistry, g.Source)
}

func TestFieldJSON(t *testing.T) {
	f := Medium("demo", SourceContent, "first heading")
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"demo","confidence":"medium","source":"content","notes":"first heading"}`, string(b))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "claude-code", want: FormatClaudeCode},
		{in: "claude", want: FormatClaudeCode},
		{in: " Cursor ", want: FormatCursor},
		{in: "mcp", want: FormatMCP},
		{in: "aider", want: FormatAider},
		{in: "notepad", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSkillHelpers(t *testing.T) {
	s := &Skill{
		Name:         High("demo", SourceFrontmatter),
		Version:      Low("1.0.0", SourceDefault, "default"),
		Description:  Medium("A demo skill", SourceContent, "first paragraph"),
		Instructions: High("body", SourceContent),
		Dependencies: []Dependency{
			{
				Name:    High("mail", SourceFrontmatter),
				Methods: []Field[string]{High("send", SourceFrontmatter), High("list", SourceFrontmatter)},
			},
			{
				Name:    Low("calendar", SourceContent, "loose"),
				Methods: []Field[string]{Low("today", SourceContent, "loose")},
			},
		},
	}

	assert.Equal(t, 3, s.MethodCount())

	d, ok := s.Dependency("mail")
	require.True(t, ok)
	assert.Equal(t, []string{"send", "list"}, d.MethodNames())

	_, ok = s.Dependency("missing")
	assert.False(t, ok)

	// (100 + 30 + 60 + 100 + 100 + 30) / 6
	assert.Equal(t, 70, s.OverallConfidence())
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Example", "example"},
		{"Inbox Helper", "inbox-helper"},
		{"  Git & GitHub: PR flow ", "git-github-pr-flow"},
		{"foo-bar", "foo-bar"},
		{"---", "---"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Skill{Name: Medium(tt.name, SourceContent, "")}
			assert.Equal(t, tt.expected, s.CanonicalName())
		})
	}
}

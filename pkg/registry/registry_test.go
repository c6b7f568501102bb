package registry

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mailManifest = `{
  "name": "mail",
  "version": "1.2.0",
  "description": "Mail service",
  "methods": [
    {"name": "mail.send", "description": "Send a message", "params": [{"name": "to", "type": "string", "required": true}]},
    {"name": "list", "description": "List messages"},
    {"name": "mail.archive"}
  ],
  "auth": {"type": "oauth2", "provider": "google", "scopes": ["mail.send"]},
  "platforms": ["darwin", "linux"]
}`

func testRoots() []Root {
	return []Root{
		{Name: "primary", FS: fstest.MapFS{
			"mail/manifest.json":     {Data: []byte(mailManifest)},
			"broken/manifest.json":   {Data: []byte(`{"name": `)},
			"nameless/manifest.json": {Data: []byte(`{"version": "1.0.0"}`)},
			"calendar.manifest.json": {Data: []byte(`{"name": "calendar", "methods": [{"name": "today"}]}`)},
			"mail/README.md":         {Data: []byte("not a manifest")},
		}},
		{Name: "secondary", FS: fstest.MapFS{
			"mail/manifest.json": {Data: []byte(`{"name": "mail", "description": "shadowed"}`)},
		}},
	}
}

func TestLoad(t *testing.T) {
	r, err := Load(context.Background(), testRoots(), nil)
	require.NotNil(t, r)

	require.Error(t, err)
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)

	assert.Equal(t, 2, r.Len())
	mail, ok := r.Service("mail")
	require.True(t, ok)
	assert.Equal(t, "Mail service", mail.Description)

	m, ok := r.Method("mail", "send")
	require.True(t, ok)
	assert.Equal(t, "Send a message", m.Description)
	_, ok = r.Method("mail", "list")
	assert.True(t, ok)
	_, ok = r.Method("calendar", "today")
	assert.True(t, ok)

	var names []string
	for _, s := range r.Services() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"calendar", "mail"}, names)
}

func TestLoadEmptyRoots(t *testing.T) {
	r, err := Load(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestNilRegistryLookups(t *testing.T) {
	var r *Registry
	_, ok := r.Service("mail")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func newSkill() *skill.Skill {
	return &skill.Skill{
		Name: skill.High("mailer", skill.SourceFrontmatter),
		Dependencies: []skill.Dependency{
			{
				Name: skill.Medium("mail", skill.SourceMethodExtraction, "call pattern"),
				Methods: []skill.Field[string]{
					skill.Low("send", skill.SourceMethodExtraction, "loose"),
					skill.Medium("search", skill.SourceMethodExtraction, "call pattern"),
				},
			},
			{
				Name:    skill.Low("weather", skill.SourceMethodExtraction, "loose"),
				Methods: []skill.Field[string]{skill.Low("forecast", skill.SourceMethodExtraction, "loose")},
			},
		},
	}
}

func TestEnrich(t *testing.T) {
	r, _ := Load(context.Background(), testRoots(), nil)
	s := newSkill()

	e := Enrich(s, r)

	assert.Equal(t, []string{"mail"}, e.Verified)
	assert.Equal(t, []string{"weather"}, e.Unknown)
	assert.Equal(t, 50, e.VerifiedRatio())

	mail := s.Dependencies[0]
	assert.Equal(t, skill.ConfidenceHigh, mail.Name.Confidence)
	assert.Equal(t, skill.High("send", skill.SourceRegistry).Value, mail.Methods[0].Value)
	assert.Equal(t, skill.ConfidenceHigh, mail.Methods[0].Confidence)
	assert.Equal(t, skill.SourceRegistry, mail.Methods[0].Source)
	assert.Equal(t, skill.ConfidenceMedium, mail.Methods[1].Confidence, "methods missing from the registry keep their confidence")

	weather := s.Dependencies[1]
	assert.Equal(t, skill.ConfidenceLow, weather.Name.Confidence)

	assert.Equal(t, "oauth2", e.Auth["mail"].Type)
	assert.Equal(t, []string{"darwin", "linux"}, e.Platforms["mail"])
	assert.Equal(t, map[string]string{"mail.send": "Send a message"}, e.MethodDescriptions)
	require.Len(t, e.MethodParams["mail.send"], 1)
	assert.Equal(t, []string{"list", "archive"}, e.Available["mail"])
	assert.Len(t, s.Dependencies, 2, "undeclared registry methods are not added as dependencies")
}

func TestEnrichRaisesExactlyOneLevel(t *testing.T) {
	r := New(&Manifest{Name: "mail"})
	for _, start := range []skill.Confidence{skill.ConfidenceUnknown, skill.ConfidenceLow, skill.ConfidenceMedium, skill.ConfidenceHigh} {
		t.Run(start.String(), func(t *testing.T) {
			s := &skill.Skill{Dependencies: []skill.Dependency{{Name: skill.NewField("mail", start, skill.SourceContent, "n")}}}
			Enrich(s, r)
			assert.Equal(t, start.Next(), s.Dependencies[0].Name.Confidence)
		})
	}
}

func TestEnrichNeverLowersConfidence(t *testing.T) {
	r, _ := Load(context.Background(), testRoots(), nil)
	s := newSkill()

	var before []skill.Confidence
	for _, d := range s.Dependencies {
		before = append(before, d.Name.Confidence)
		for _, m := range d.Methods {
			before = append(before, m.Confidence)
		}
	}

	Enrich(s, r)

	i := 0
	for _, d := range s.Dependencies {
		assert.GreaterOrEqual(t, d.Name.Confidence, before[i])
		i++
		for _, m := range d.Methods {
			assert.GreaterOrEqual(t, m.Confidence, before[i])
			i++
		}
	}
}

func TestEnrichWithEmptyRegistry(t *testing.T) {
	s := newSkill()
	e := Enrich(s, New())
	assert.Empty(t, e.Verified)
	assert.Equal(t, []string{"mail", "weather"}, e.Unknown)
	assert.Equal(t, 0, e.VerifiedRatio())
}

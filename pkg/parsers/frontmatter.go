package parsers

import (
	"fmt"
	"strings"

	"github.com/jingkaihe/skillport/pkg/types/skill"
	"github.com/mitchellh/mapstructure"
)

// frontMatter is the union of the keys recognised across markdown formats.
type frontMatter struct {
	Name         string      `mapstructure:"name"`
	Description  string      `mapstructure:"description"`
	Version      string      `mapstructure:"version"`
	Author       interface{} `mapstructure:"author"`
	License      string      `mapstructure:"license"`
	Tools        []string    `mapstructure:"tools"`
	AllowedTools []string    `mapstructure:"allowed-tools"`
	Triggers     []string    `mapstructure:"triggers"`
}

func decodeFrontMatter(path string, raw map[string]interface{}) (*frontMatter, error) {
	fm := &frontMatter{}
	if raw == nil {
		return fm, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		Result:           fm,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, malformed(path, err, "front matter")
	}

	fm.Name = strings.TrimSpace(fm.Name)
	fm.Description = strings.TrimSpace(fm.Description)
	fm.Version = strings.TrimSpace(fm.Version)
	fm.License = strings.TrimSpace(fm.License)
	fm.Tools = cleanList(append(fm.Tools, fm.AllowedTools...))
	fm.Triggers = cleanList(fm.Triggers)
	return fm, nil
}

// author converts the author key, which may be a plain string or a
// mapping with name, email and url.
func (fm *frontMatter) author() *skill.Author {
	switch v := fm.Author.(type) {
	case string:
		if name := strings.TrimSpace(v); name != "" {
			return &skill.Author{Name: skill.High(name, skill.SourceFrontmatter)}
		}
	case map[interface{}]interface{}:
		return authorFromMap(func(k string) string { return stringValue(v[k]) })
	case map[string]interface{}:
		return authorFromMap(func(k string) string { return stringValue(v[k]) })
	}
	return nil
}

func authorFromMap(get func(string) string) *skill.Author {
	name := get("name")
	if name == "" {
		return nil
	}
	return &skill.Author{
		Name:  skill.High(name, skill.SourceFrontmatter),
		Email: get("email"),
		URL:   get("url"),
	}
}

func (fm *frontMatter) license() *skill.Field[string] {
	if fm.License == "" {
		return nil
	}
	f := skill.High(fm.License, skill.SourceFrontmatter)
	return &f
}

func stringValue(v interface{}) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Package manifest defines the canonical skill.yaml document, loads it from
// disk and lints it.
package manifest

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the canonical manifest file name.
const FileName = "skill.yaml"

// Manifest is the canonical skill definition.
type Manifest struct {
	Name         string                 `yaml:"name" json:"name" jsonschema:"description=Skill identifier: lowercase letters digits and hyphens"`
	Version      string                 `yaml:"version" json:"version" jsonschema:"description=Semantic version (x.y.z)"`
	Description  string                 `yaml:"description" json:"description"`
	Author       *Author                `yaml:"author,omitempty" json:"author,omitempty"`
	License      string                 `yaml:"license,omitempty" json:"license,omitempty"`
	Repository   string                 `yaml:"repository,omitempty" json:"repository,omitempty"`
	Homepage     string                 `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	Keywords     []string               `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Daemons      []Daemon               `yaml:"daemons" json:"daemons"`
	Instructions map[string]string      `yaml:"instructions" json:"instructions" jsonschema:"description=Instruction files keyed by target (core plus one per agent format)"`
	Triggers     *Triggers              `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Workflows    map[string]string      `yaml:"workflows,omitempty" json:"workflows,omitempty"`
	Config       map[string]ConfigEntry `yaml:"config,omitempty" json:"config,omitempty"`
	Auth         *Auth                  `yaml:"auth,omitempty" json:"auth,omitempty"`
}

// Author may be written as a plain string or as a mapping.
type Author struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
	URL   string `yaml:"url,omitempty" json:"url,omitempty"`
}

// UnmarshalYAML accepts both "author: Jane" and "author: {name: Jane}".
func (a *Author) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		a.Name = node.Value
		return nil
	}
	type plain Author
	return node.Decode((*plain)(a))
}

// Daemon is a service dependency.
type Daemon struct {
	Name     string   `yaml:"name" json:"name"`
	Version  string   `yaml:"version,omitempty" json:"version,omitempty"`
	Optional bool     `yaml:"optional,omitempty" json:"optional,omitempty"`
	Methods  []string `yaml:"methods,omitempty" json:"methods,omitempty"`
}

// Triggers control when the skill activates.
type Triggers struct {
	Keywords []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
	Patterns []string `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Commands []string `yaml:"commands,omitempty" json:"commands,omitempty"`
}

// ConfigEntry is one user configurable option.
type ConfigEntry struct {
	Type        string      `yaml:"type" json:"type" jsonschema:"enum=string,enum=number,enum=boolean,enum=enum,enum=array"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Default     interface{} `yaml:"default,omitempty" json:"default,omitempty"`
	Options     []string    `yaml:"options,omitempty" json:"options,omitempty"`
}

// Auth lists what the skill needs to authenticate.
type Auth struct {
	Daemons map[string]string `yaml:"daemons,omitempty" json:"daemons,omitempty" jsonschema:"description=Per service requirement: required or optional"`
	Secrets []Secret          `yaml:"secrets,omitempty" json:"secrets,omitempty"`
}

// Secret is a named secret the skill reads from the environment.
type Secret struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty"`
}

// Load reads and decodes a skill.yaml file.
func Load(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}
	var m Manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &m, nil
}

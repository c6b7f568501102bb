// Package registry loads locally installed service manifests and uses them
// to verify and enrich the dependencies recovered by an import.
package registry

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/jingkaihe/skillport/pkg/logger"
	"github.com/pkg/errors"
)

// DefaultPatterns locate manifests below a registry root.
var DefaultPatterns = []string{"*/manifest.json", "*.manifest.json"}

// Manifest describes one installed service.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Author      string   `json:"author,omitempty"`
	License     string   `json:"license,omitempty"`
	Repository  string   `json:"repository,omitempty"`
	Methods     []Method `json:"methods"`
	Auth        *Auth    `json:"auth,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
}

// Method is a callable operation exposed by a service.
type Method struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Params      []Param `json:"params,omitempty"`
}

// Param describes one method parameter.
type Param struct {
	Name        string      `json:"name"`
	Type        string      `json:"type,omitempty"`
	Required    bool        `json:"required"`
	Default     interface{} `json:"default,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Auth describes what a service needs to authenticate.
type Auth struct {
	Type     string   `json:"type,omitempty"`
	Provider string   `json:"provider,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
}

// Registry maps service names to their manifests. It is built once and
// only read afterwards.
type Registry struct {
	services map[string]*Manifest
	// methods is keyed by "service.method"
	methods map[string]*Method
}

// New creates a registry from already decoded manifests.
func New(manifests ...*Manifest) *Registry {
	r := &Registry{
		services: make(map[string]*Manifest),
		methods:  make(map[string]*Method),
	}
	for _, m := range manifests {
		r.add(m)
	}
	return r
}

func (r *Registry) add(m *Manifest) {
	r.services[m.Name] = m
	for i := range m.Methods {
		method := &m.Methods[i]
		r.methods[m.Name+"."+shortMethodName(m.Name, method.Name)] = method
	}
}

// shortMethodName strips a "service." prefix from a method name.
func shortMethodName(service, method string) string {
	return strings.TrimPrefix(method, service+".")
}

// Service returns the manifest of a service.
func (r *Registry) Service(name string) (*Manifest, bool) {
	if r == nil {
		return nil, false
	}
	m, ok := r.services[name]
	return m, ok
}

// Method returns a method of a service.
func (r *Registry) Method(service, method string) (*Method, bool) {
	if r == nil {
		return nil, false
	}
	m, ok := r.methods[service+"."+method]
	return m, ok
}

// Services returns the manifests sorted by service name.
func (r *Registry) Services() []*Manifest {
	if r == nil {
		return nil
	}
	out := make([]*Manifest, 0, len(r.services))
	for _, m := range r.services {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of known services.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.services)
}

// Root is a directory tree that may contain manifests.
type Root struct {
	Name string
	FS   fs.FS
}

// DirRoot returns a Root backed by a directory on disk.
func DirRoot(dir string) Root {
	return Root{Name: dir, FS: os.DirFS(dir)}
}

// Load builds a registry from every manifest matching patterns under the
// given roots. Manifests that cannot be read or decoded are skipped; the
// returned error, if any, aggregates those problems and the registry is
// still usable.
func Load(ctx context.Context, roots []Root, patterns []string) (*Registry, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	log := logger.G(ctx)

	r := New()
	var result *multierror.Error

	for _, root := range roots {
		for _, pattern := range patterns {
			matches, err := doublestar.Glob(root.FS, pattern)
			if err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "invalid manifest pattern %q", pattern))
				continue
			}
			for _, match := range matches {
				m, err := readManifest(root.FS, match)
				if err != nil {
					log.WithError(err).WithField("manifest", path.Join(root.Name, match)).Warn("skipping service manifest")
					result = multierror.Append(result, errors.Wrapf(err, "%s", path.Join(root.Name, match)))
					continue
				}
				if _, dup := r.services[m.Name]; dup {
					log.WithField("service", m.Name).Debug("service already registered by an earlier root, ignoring")
					continue
				}
				r.add(m)
			}
		}
	}

	log.WithField("services", r.Len()).Debug("service registry loaded")
	return r, result.ErrorOrNil()
}

func readManifest(fsys fs.FS, name string) (*Manifest, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}
	var m Manifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, errors.Wrap(err, "failed to decode manifest")
	}
	if m.Name == "" {
		return nil, errors.New("manifest has no name")
	}
	return &m, nil
}

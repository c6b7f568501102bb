package registry

import (
	"github.com/jingkaihe/skillport/pkg/types/skill"
)

// Enrichment reports what the registry confirmed about an imported skill.
type Enrichment struct {
	// Verified lists dependencies found in the registry, in skill order.
	Verified []string `json:"verified"`
	// Unknown lists dependencies the registry has never heard of.
	Unknown []string `json:"unknown"`
	// Auth holds the authentication requirements of verified services.
	Auth map[string]Auth `json:"auth,omitempty"`
	// Platforms holds the supported platforms of verified services.
	Platforms map[string][]string `json:"platforms,omitempty"`
	// MethodDescriptions and MethodParams are keyed by "service.method"
	// and cover declared methods only.
	MethodDescriptions map[string]string  `json:"methodDescriptions,omitempty"`
	MethodParams       map[string][]Param `json:"methodParams,omitempty"`
	// Available lists registry methods of verified services that the skill
	// does not declare, keyed by service.
	Available map[string][]string `json:"available,omitempty"`
}

// VerifiedRatio returns the share of dependencies that were verified, 0-100.
func (e *Enrichment) VerifiedRatio() int {
	total := len(e.Verified) + len(e.Unknown)
	if total == 0 {
		return 0
	}
	return len(e.Verified) * 100 / total
}

// DescribedMethods counts declared methods the registry had a description for.
func (e *Enrichment) DescribedMethods() int {
	return len(e.MethodDescriptions)
}

// Enrich cross-references the skill's dependencies against the registry.
// Verified dependency names are raised one confidence level and matched
// methods become High with registry provenance. Confidence is never lowered.
func Enrich(s *skill.Skill, r *Registry) *Enrichment {
	e := &Enrichment{
		Verified:           []string{},
		Unknown:            []string{},
		Auth:               make(map[string]Auth),
		Platforms:          make(map[string][]string),
		MethodDescriptions: make(map[string]string),
		MethodParams:       make(map[string][]Param),
		Available:          make(map[string][]string),
	}

	for i := range s.Dependencies {
		dep := &s.Dependencies[i]
		service := dep.Name.Value

		manifest, ok := r.Service(service)
		if !ok {
			e.Unknown = append(e.Unknown, service)
			continue
		}
		e.Verified = append(e.Verified, service)
		dep.Name.Raise("Verified against service registry")

		if manifest.Auth != nil {
			e.Auth[service] = *manifest.Auth
		}
		if len(manifest.Platforms) > 0 {
			e.Platforms[service] = manifest.Platforms
		}

		declared := make(map[string]bool, len(dep.Methods))
		for j := range dep.Methods {
			method := &dep.Methods[j]
			declared[method.Value] = true

			rm, ok := r.Method(service, method.Value)
			if !ok {
				continue
			}
			method.Promote(skill.ConfidenceHigh, skill.SourceRegistry, "Verified in service registry")

			key := service + "." + method.Value
			if rm.Description != "" {
				e.MethodDescriptions[key] = rm.Description
			}
			if len(rm.Params) > 0 {
				e.MethodParams[key] = rm.Params
			}
		}

		for _, rm := range manifest.Methods {
			short := shortMethodName(service, rm.Name)
			if !declared[short] {
				e.Available[service] = append(e.Available[service], short)
			}
		}
	}

	return e
}

// Package syncstate fingerprints imported skills and decides whether a
// previously imported skill has drifted from its source.
package syncstate

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/jingkaihe/skillport/pkg/types/skill"
)

// Fingerprint holds one hash per semantic field group plus a combined hash.
// Two fingerprints are equal when all their hashes are equal.
type Fingerprint struct {
	NameHash         string    `json:"name_hash"`
	DescriptionHash  string    `json:"description_hash"`
	VersionHash      string    `json:"version_hash"`
	DependenciesHash string    `json:"dependencies_hash"`
	InstructionsHash string    `json:"instructions_hash"`
	TriggersHash     string    `json:"triggers_hash"`
	CombinedHash     string    `json:"combined_hash"`
	Timestamp        time.Time `json:"timestamp"`
}

// Equal compares the hashes and ignores the timestamp.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.NameHash == other.NameHash &&
		f.DescriptionHash == other.DescriptionHash &&
		f.VersionHash == other.VersionHash &&
		f.DependenciesHash == other.DependenciesHash &&
		f.InstructionsHash == other.InstructionsHash &&
		f.TriggersHash == other.TriggersHash &&
		f.CombinedHash == other.CombinedHash
}

// NewFingerprint hashes the semantic content of the skill. Dependency and
// trigger order, line endings and surrounding whitespace do not affect the
// result.
func NewFingerprint(s *skill.Skill, now time.Time) Fingerprint {
	f := Fingerprint{
		NameHash:         hashStrings(strings.TrimSpace(s.Name.Value)),
		DescriptionHash:  hashStrings(strings.TrimSpace(s.Description.Value)),
		VersionHash:      hashStrings(strings.TrimSpace(s.Version.Value)),
		DependenciesHash: hashStrings(dependencyLines(s.Dependencies)...),
		InstructionsHash: hashStrings(normalizeText(s.Instructions.Value)),
		TriggersHash:     hashStrings(triggerLines(s.Triggers)...),
		Timestamp:        now.UTC(),
	}
	f.CombinedHash = hashStrings(
		f.NameHash,
		f.DescriptionHash,
		f.VersionHash,
		f.DependenciesHash,
		f.InstructionsHash,
		f.TriggersHash,
	)
	return f
}

// hashStrings hashes the values with a NUL terminator after each one so
// that different splits of the same bytes hash differently.
func hashStrings(values ...string) string {
	h := sha256.New()
	for _, v := range values {
		h.Write([]byte(v))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

func dependencyLines(deps []skill.Dependency) []string {
	lines := make([]string, 0, len(deps))
	for _, d := range deps {
		methods := d.MethodNames()
		sort.Strings(methods)
		lines = append(lines, d.Name.Value+":"+strings.Join(methods, ","))
	}
	sort.Strings(lines)
	return lines
}

func triggerLines(t skill.Triggers) []string {
	var lines []string
	add := func(kind string, fields []skill.Field[string]) {
		for _, f := range fields {
			lines = append(lines, kind+":"+f.Value)
		}
	}
	add("keyword", t.Keywords)
	add("pattern", t.Patterns)
	add("command", t.Commands)
	sort.Strings(lines)
	return lines
}

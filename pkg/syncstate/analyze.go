package syncstate

import (
	"fmt"
	"time"

	"github.com/jingkaihe/skillport/pkg/types/skill"
)

// Status is the sync relationship between a source and its canonical copy.
type Status string

const (
	StatusInSync         Status = "in_sync"
	StatusSourceNewer    Status = "source_newer"
	StatusCanonicalNewer Status = "canonical_newer"
	StatusDiverged       Status = "diverged"
	StatusUnknown        Status = "unknown"
)

// Action is what the user should do about the status.
type Action string

const (
	ActionNone       Action = "none"
	ActionImport     Action = "import"
	ActionExport     Action = "export"
	ActionMerge      Action = "merge"
	ActionInitialize Action = "initialize"
)

// Direction records which way the last sync went.
type Direction string

const (
	DirectionImport Direction = "import"
	DirectionExport Direction = "export"
)

// Metadata is persisted next to the canonical skill after every import.
type Metadata struct {
	SourcePath   string       `json:"source_path"`
	SourceFormat skill.Format `json:"source_format"`
	Fingerprint  Fingerprint  `json:"fingerprint"`
	LastSync     time.Time    `json:"last_sync"`
	Direction    Direction    `json:"direction"`
	ImportID     string       `json:"import_id,omitempty"`
	ToolVersion  string       `json:"tool_version,omitempty"`
}

// Recommendation tells the user what to run next.
type Recommendation struct {
	Action      Action `json:"action"`
	Description string `json:"description"`
	Command     string `json:"command,omitempty"`
}

// Analysis is the result of comparing the current import with the last one.
type Analysis struct {
	Status         Status         `json:"status"`
	Current        Fingerprint    `json:"current"`
	Previous       *Fingerprint   `json:"previous,omitempty"`
	LastSync       *time.Time     `json:"last_sync,omitempty"`
	Diffs          []FieldDiff    `json:"diffs"`
	Recommendation Recommendation `json:"recommendation"`
}

// Analyze compares the fingerprint of the freshly parsed skill against the
// metadata of the previous import. prior is nil for a first import; target
// is the canonical output directory used in suggested commands.
func Analyze(s *skill.Skill, prior *Metadata, target string, now time.Time) *Analysis {
	current := NewFingerprint(s, now)
	a := &Analysis{
		Current: current,
		Diffs:   []FieldDiff{},
	}
	importCmd := fmt.Sprintf("skillport import %s --output %s", s.Source.Path, target)

	if prior == nil {
		a.Status = StatusUnknown
		a.Recommendation = Recommendation{
			Action:      ActionInitialize,
			Description: "No sync history. Import will initialize sync tracking.",
			Command:     importCmd,
		}
		return a
	}

	previous := prior.Fingerprint
	lastSync := prior.LastSync
	a.Previous = &previous
	a.LastSync = &lastSync

	if current.CombinedHash == previous.CombinedHash {
		a.Status = StatusInSync
		a.Recommendation = Recommendation{
			Action:      ActionNone,
			Description: "Skill is in sync with source. No action needed.",
		}
		return a
	}

	a.Diffs = groupDiffs(previous, current, s)
	a.Status = StatusSourceNewer
	a.Recommendation = Recommendation{
		Action:      ActionImport,
		Description: "Source has been updated. Re-import to update canonical skill.",
		Command:     importCmd,
	}
	return a
}

// groupDiffs reports one modification per differing hash group. Only the
// current values are known; previous values are not stored.
func groupDiffs(previous, current Fingerprint, s *skill.Skill) []FieldDiff {
	var diffs []FieldDiff
	modified := func(field string, significance Significance, newValue string) {
		diffs = append(diffs, FieldDiff{
			Field:        field,
			ChangeType:   ChangeModified,
			NewValue:     newValue,
			Significance: significance,
		})
	}

	if previous.NameHash != current.NameHash {
		modified("name", SignificanceCritical, s.Name.Value)
	}
	if previous.DescriptionHash != current.DescriptionHash {
		modified("description", SignificanceMinor, truncate(s.Description.Value, 50))
	}
	if previous.VersionHash != current.VersionHash {
		modified("version", SignificanceImportant, s.Version.Value)
	}
	if previous.DependenciesHash != current.DependenciesHash {
		modified("dependencies", SignificanceCritical, fmt.Sprintf("%d services", len(s.Dependencies)))
	}
	if previous.InstructionsHash != current.InstructionsHash {
		modified("instructions", SignificanceImportant, fmt.Sprintf("%d chars", len(s.Instructions.Value)))
	}
	if previous.TriggersHash != current.TriggersHash {
		modified("triggers", SignificanceMinor, fmt.Sprintf("%d triggers", s.Triggers.Count()))
	}
	return diffs
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

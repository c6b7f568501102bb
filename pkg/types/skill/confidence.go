// Package skill defines the intermediate representation that every import
// format is converted into, together with the confidence and provenance
// tags carried by each recovered field.
package skill

import (
	"strings"

	"github.com/pkg/errors"
)

// Confidence expresses how certain the importer is that a recovered value is correct.
// Values are ordered: Unknown < Low < Medium < High.
type Confidence int

const (
	// ConfidenceUnknown means the value is a placeholder
	ConfidenceUnknown Confidence = iota
	// ConfidenceLow means the value was guessed from weak signals
	ConfidenceLow
	// ConfidenceMedium means the value was inferred from document structure
	ConfidenceMedium
	// ConfidenceHigh means the value was read from a structured field
	ConfidenceHigh
)

// Weight returns the numeric weight used by quality scoring.
func (c Confidence) Weight() int {
	switch c {
	case ConfidenceHigh:
		return 100
	case ConfidenceMedium:
		return 60
	case ConfidenceLow:
		return 30
	default:
		return 0
	}
}

// Next returns the confidence one level above c. High stays High.
func (c Confidence) Next() Confidence {
	if c >= ConfidenceHigh {
		return ConfidenceHigh
	}
	return c + 1
}

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Confidence) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "high":
		*c = ConfidenceHigh
	case "medium":
		*c = ConfidenceMedium
	case "low":
		*c = ConfidenceLow
	case "unknown", "":
		*c = ConfidenceUnknown
	default:
		return errors.Errorf("invalid confidence %q", string(b))
	}
	return nil
}

// FieldSource records where a field value was recovered from.
type FieldSource string

const (
	SourceFrontmatter      FieldSource = "frontmatter"
	SourceContent          FieldSource = "content"
	SourceFilename         FieldSource = "filename"
	SourceMethodExtraction FieldSource = "method_extraction"
	SourceRegistry         FieldSource = "registry"
	SourceUserInput        FieldSource = "user_input"
	SourceDefault          FieldSource = "default"
)

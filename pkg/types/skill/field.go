package skill

// Field wraps a recovered value with its confidence, provenance and an
// optional note. Any field below High carries a note saying why.
type Field[T any] struct {
	Value      T           `json:"value"`
	Confidence Confidence  `json:"confidence"`
	Source     FieldSource `json:"source"`
	Notes      string      `json:"notes,omitempty"`
}

// High returns a field read directly from a structured source.
func High[T any](value T, source FieldSource) Field[T] {
	return Field[T]{Value: value, Confidence: ConfidenceHigh, Source: source}
}

// Medium returns a field inferred from document structure.
func Medium[T any](value T, source FieldSource, note string) Field[T] {
	return Field[T]{Value: value, Confidence: ConfidenceMedium, Source: source, Notes: note}
}

// Low returns a field guessed from weak signals.
func Low[T any](value T, source FieldSource, note string) Field[T] {
	return Field[T]{Value: value, Confidence: ConfidenceLow, Source: source, Notes: note}
}

// Unknown returns a placeholder field.
func Unknown[T any](value T, note string) Field[T] {
	return Field[T]{Value: value, Confidence: ConfidenceUnknown, Source: SourceDefault, Notes: note}
}

// NewField builds a field at an arbitrary confidence. High fields drop the note.
func NewField[T any](value T, confidence Confidence, source FieldSource, note string) Field[T] {
	if confidence == ConfidenceHigh {
		note = ""
	}
	return Field[T]{Value: value, Confidence: confidence, Source: source, Notes: note}
}

// IsHigh reports whether the field needs no review.
func (f Field[T]) IsHigh() bool {
	return f.Confidence == ConfidenceHigh
}

// Raise moves the field exactly one confidence level up and records the
// reason. It reports whether the confidence changed.
func (f *Field[T]) Raise(note string) bool {
	if f.Confidence >= ConfidenceHigh {
		return false
	}
	f.Confidence = f.Confidence.Next()
	f.Notes = note
	return true
}

// Promote lifts the field to the given confidence and source. Promote never
// lowers confidence; it reports whether anything changed.
func (f *Field[T]) Promote(to Confidence, source FieldSource, note string) bool {
	if to <= f.Confidence {
		return false
	}
	f.Confidence = to
	f.Source = source
	f.Notes = note
	return true
}

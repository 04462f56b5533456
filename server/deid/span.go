// Package deid detects and rewrites personally-identifying text in
// clinical documents. Detection is a fast regex pass for structured
// patterns plus a title heuristic for person names; rewriting is driven
// by a selectable anonymization strategy. Spans whose surrounding context
// is clinical are preserved so the document keeps its medical meaning.
package deid

import (
	"sort"

	"github.com/pkg/errors"
)

// EntityType classifies the kind of sensitive data found.
type EntityType string

// Supported entity types for detection and anonymization.
const (
	EntityEmail     EntityType = "EMAIL"
	EntityPhone     EntityType = "PHONE"
	EntitySSN       EntityType = "SSN"
	EntityIPAddress EntityType = "IP_ADDRESS"
	EntityPerson    EntityType = "PERSON"
)

// DetectedSpan is a half-open [Start,End) range into the source text
// identifying one detected entity.
type DetectedSpan struct {
	Type       EntityType
	Value      string
	Confidence float64
	Start      int
	End        int
}

var (
	// ErrEmptyText is returned when an operation requires non-empty input text.
	ErrEmptyText = errors.New("text is empty")
	// ErrInvalidSpan is returned when a span's offsets fall outside the text.
	ErrInvalidSpan = errors.New("span offsets out of bounds")
	// ErrOverlappingSpans is returned when spans still overlap at rewrite
	// time. Overlaps are merged before filtering, so hitting this means the
	// caller bypassed the pipeline.
	ErrOverlappingSpans = errors.New("overlapping spans")
)

// MergeOverlapping collapses overlapping spans into single spans. Matchers
// run independently, so e.g. a PHONE digit group can overlap an SSN match.
// The merged span takes the union extent; its type and confidence come from
// the highest-confidence member (first seen wins ties). The value is
// re-sliced from the text over the union. Output is sorted by start offset.
func MergeOverlapping(text string, spans []DetectedSpan) []DetectedSpan {
	if len(spans) <= 1 {
		return spans
	}

	sorted := make([]DetectedSpan, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := make([]DetectedSpan, 0, len(sorted))
	current := sorted[0]
	for _, span := range sorted[1:] {
		if span.Start >= current.End {
			merged = append(merged, current)
			current = span
			continue
		}
		// Overlap: widen the extent, keep the strongest member's identity.
		if span.End > current.End {
			current.End = span.End
		}
		if span.Confidence > current.Confidence {
			current.Type = span.Type
			current.Confidence = span.Confidence
		}
		current.Value = text[current.Start:current.End]
	}
	merged = append(merged, current)

	return merged
}

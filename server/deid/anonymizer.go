package deid

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Rewrite replaces every span in text according to the strategy. Spans are
// processed rightmost-first so earlier offsets stay valid while
// replacements of different lengths are spliced in. Spans must not overlap;
// run MergeOverlapping first.
func Rewrite(text string, spans []DetectedSpan, strategy Strategy) (string, error) {
	sub, err := strategy.substituter()
	if err != nil {
		return "", err
	}

	sorted := make([]DetectedSpan, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	for i, span := range sorted {
		if span.Start < 0 || span.Start >= span.End || span.End > len(text) {
			return "", errors.Wrapf(ErrInvalidSpan, "[%d,%d) in text of length %d", span.Start, span.End, len(text))
		}
		if i+1 < len(sorted) && sorted[i+1].End > span.Start {
			return "", errors.Wrapf(ErrOverlappingSpans, "[%d,%d) and [%d,%d)", sorted[i+1].Start, sorted[i+1].End, span.Start, span.End)
		}
	}

	result := text
	for _, span := range sorted {
		result = result[:span.Start] + sub.Substitute(span.Type, span.Value) + result[span.End:]
	}
	return result, nil
}

// AuditSink receives anonymization events. Implementations must not block;
// the pipeline reports fire-and-forget and never fails on audit errors.
type AuditSink interface {
	RecordAnonymization(event AnonymizationEvent)
}

// AnonymizationEvent describes one completed anonymize call.
type AnonymizationEvent struct {
	DocumentID     string
	OriginalText   string
	AnonymizedText string
	Strategy       Strategy
	Entities       []DetectedSpan
}

// Anonymizer runs the full pipeline: detect, merge, filter, rewrite.
type Anonymizer struct {
	detector *Detector
	filter   *MedicalContextFilter
	audit    AuditSink
}

// NewAnonymizer creates an Anonymizer. audit may be nil.
func NewAnonymizer(audit AuditSink) *Anonymizer {
	return &Anonymizer{
		detector: NewDetector(),
		filter:   NewMedicalContextFilter(),
		audit:    audit,
	}
}

// Result is the outcome of one anonymize call. Entities lists the spans
// that were actually rewritten, post merge and medical filtering.
type Result struct {
	AnonymizedText string
	Entities       []DetectedSpan
	Strategy       Strategy
}

// Anonymize detects sensitive spans in text and rewrites them under the
// strategy. With preserveMedical, spans in clinical context are left
// intact. documentID is only used for audit reporting and may be empty.
func (a *Anonymizer) Anonymize(documentID, text string, strategy Strategy, preserveMedical bool) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	spans := a.detector.Detect(text)
	spans = MergeOverlapping(text, spans)
	spans = a.filter.Filter(text, spans, preserveMedical)

	anonymized, err := Rewrite(text, spans, strategy)
	if err != nil {
		return nil, err
	}

	slog.Debug("anonymized document",
		"document_id", documentID,
		"strategy", string(strategy),
		"entities", len(spans))

	if a.audit != nil {
		a.audit.RecordAnonymization(AnonymizationEvent{
			DocumentID:     documentID,
			OriginalText:   text,
			AnonymizedText: anonymized,
			Strategy:       strategy,
			Entities:       spans,
		})
	}

	return &Result{
		AnonymizedText: anonymized,
		Entities:       spans,
		Strategy:       strategy,
	}, nil
}

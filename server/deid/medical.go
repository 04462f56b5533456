package deid

import "strings"

// contextWindow is the number of characters inspected on each side of a
// span when deciding whether it sits in clinical context.
const contextWindow = 50

// medicalTerms is the allow-list of clinical conditions, treatments and
// diagnostic terms (French and English). A span whose surrounding window
// contains any of these is treated as clinically necessary and preserved.
var medicalTerms = []string{
	"diabète", "diabetes", "hypertension", "asthme", "asthma",
	"métabolique", "metabolic", "cardiaque", "cardiac", "pulmonaire",
	"pulmonary", "hépatique", "hepatic", "rénal", "renal",
	"médicament", "medication", "traitement", "treatment", "thérapie",
	"therapy", "diagnostic", "diagnosis", "symptôme", "symptom",
	"pathologie", "pathology", "syndrome", "maladie", "disease",
}

// MedicalContextFilter drops spans that appear in clinical context so
// they survive anonymization. This trades recall for clinical utility: a
// term list hit near a true identifier causes under-redaction, which is
// the documented, accepted behavior.
type MedicalContextFilter struct {
	terms []string
}

// NewMedicalContextFilter creates a filter with the built-in term list.
func NewMedicalContextFilter() *MedicalContextFilter {
	return &MedicalContextFilter{terms: medicalTerms}
}

// Filter returns the spans that should still be anonymized. When enabled
// is false the input is returned unchanged. Output preserves input order.
func (f *MedicalContextFilter) Filter(text string, spans []DetectedSpan, enabled bool) []DetectedSpan {
	if !enabled {
		return spans
	}

	kept := make([]DetectedSpan, 0, len(spans))
	for _, span := range spans {
		if !f.inMedicalContext(text, span) {
			kept = append(kept, span)
		}
	}
	return kept
}

func (f *MedicalContextFilter) inMedicalContext(text string, span DetectedSpan) bool {
	start := span.Start - contextWindow
	if start < 0 {
		start = 0
	}
	end := span.End + contextWindow
	if end > len(text) {
		end = len(text)
	}

	window := strings.ToLower(text[start:end])
	for _, term := range f.terms {
		if strings.Contains(window, term) {
			return true
		}
	}
	return false
}

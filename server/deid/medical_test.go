package deid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spanFor(t *testing.T, text, value string, entityType EntityType) DetectedSpan {
	t.Helper()
	start := strings.Index(text, value)
	require.GreaterOrEqual(t, start, 0)
	return DetectedSpan{
		Type:       entityType,
		Value:      value,
		Confidence: 0.9,
		Start:      start,
		End:        start + len(value),
	}
}

func TestMedicalFilterDisabled(t *testing.T) {
	filter := NewMedicalContextFilter()
	text := "Diabetes care plan from jean@hopital.fr"
	spans := []DetectedSpan{spanFor(t, text, "jean@hopital.fr", EntityEmail)}

	assert.Equal(t, spans, filter.Filter(text, spans, false))
}

func TestMedicalFilterDropsClinicalContext(t *testing.T) {
	filter := NewMedicalContextFilter()
	text := "Diabetes treatment adjusted; follow up with jean@hopital.fr for dosage."
	spans := []DetectedSpan{spanFor(t, text, "jean@hopital.fr", EntityEmail)}

	assert.Empty(t, filter.Filter(text, spans, true))
}

func TestMedicalFilterKeepsNonClinicalSpans(t *testing.T) {
	filter := NewMedicalContextFilter()
	text := "Please send the invoice to jean@hopital.fr before Friday."
	spans := []DetectedSpan{spanFor(t, text, "jean@hopital.fr", EntityEmail)}

	kept := filter.Filter(text, spans, true)
	assert.Equal(t, spans, kept)
}

func TestMedicalFilterWindowIsBounded(t *testing.T) {
	filter := NewMedicalContextFilter()
	// The clinical term sits more than 50 characters before the span, so
	// it must not suppress it.
	padding := strings.Repeat("x", 60)
	text := "diabetes " + padding + " jean@hopital.fr"
	spans := []DetectedSpan{spanFor(t, text, "jean@hopital.fr", EntityEmail)}

	kept := filter.Filter(text, spans, true)
	assert.Len(t, kept, 1)
}

func TestMedicalFilterCaseFolds(t *testing.T) {
	filter := NewMedicalContextFilter()
	text := "HYPERTENSION follow-up: jean@hopital.fr"
	spans := []DetectedSpan{spanFor(t, text, "jean@hopital.fr", EntityEmail)}

	assert.Empty(t, filter.Filter(text, spans, true))
}

func TestMedicalFilterFrenchTerms(t *testing.T) {
	filter := NewMedicalContextFilter()
	text := "Traitement en cours, contacter jean@hopital.fr"
	spans := []DetectedSpan{spanFor(t, text, "jean@hopital.fr", EntityEmail)}

	assert.Empty(t, filter.Filter(text, spans, true))
}

func TestMedicalFilterPreservesOrder(t *testing.T) {
	filter := NewMedicalContextFilter()
	text := "Invoice contacts: alice@example.com and bob@example.com, unrelated to care."
	spans := []DetectedSpan{
		spanFor(t, text, "alice@example.com", EntityEmail),
		spanFor(t, text, "bob@example.com", EntityEmail),
	}

	kept := filter.Filter(text, spans, true)
	require.Len(t, kept, 2)
	assert.Equal(t, "alice@example.com", kept[0].Value)
	assert.Equal(t, "bob@example.com", kept[1].Value)
}

package deid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeOverlapping(t *testing.T) {
	text := "0123456789abcdefghij"

	t.Run("disjoint spans unchanged", func(t *testing.T) {
		spans := []DetectedSpan{
			{Type: EntityEmail, Value: "0123", Confidence: 0.9, Start: 0, End: 4},
			{Type: EntityPhone, Value: "89ab", Confidence: 0.9, Start: 8, End: 12},
		}
		merged := MergeOverlapping(text, spans)
		assert.Equal(t, spans, merged)
	})

	t.Run("overlap keeps highest confidence type", func(t *testing.T) {
		spans := []DetectedSpan{
			{Type: EntityPerson, Value: "2345", Confidence: 0.7, Start: 2, End: 6},
			{Type: EntitySSN, Value: "4567", Confidence: 0.9, Start: 4, End: 8},
		}
		merged := MergeOverlapping(text, spans)
		require.Len(t, merged, 1)
		assert.Equal(t, EntitySSN, merged[0].Type)
		assert.Equal(t, 0.9, merged[0].Confidence)
		assert.Equal(t, 2, merged[0].Start)
		assert.Equal(t, 8, merged[0].End)
		assert.Equal(t, "234567", merged[0].Value)
	})

	t.Run("contained span absorbed", func(t *testing.T) {
		spans := []DetectedSpan{
			{Type: EntityPhone, Value: "123456", Confidence: 0.9, Start: 1, End: 7},
			{Type: EntityPerson, Value: "34", Confidence: 0.7, Start: 3, End: 5},
		}
		merged := MergeOverlapping(text, spans)
		require.Len(t, merged, 1)
		assert.Equal(t, EntityPhone, merged[0].Type)
		assert.Equal(t, 1, merged[0].Start)
		assert.Equal(t, 7, merged[0].End)
	})

	t.Run("adjacent spans stay separate", func(t *testing.T) {
		spans := []DetectedSpan{
			{Type: EntityEmail, Value: "01", Confidence: 0.9, Start: 0, End: 2},
			{Type: EntityPhone, Value: "23", Confidence: 0.9, Start: 2, End: 4},
		}
		merged := MergeOverlapping(text, spans)
		assert.Len(t, merged, 2)
	})

	t.Run("chain of overlaps collapses to one", func(t *testing.T) {
		spans := []DetectedSpan{
			{Type: EntityEmail, Value: "0123", Confidence: 0.9, Start: 0, End: 4},
			{Type: EntityPhone, Value: "2345", Confidence: 0.9, Start: 2, End: 6},
			{Type: EntitySSN, Value: "4567", Confidence: 0.9, Start: 4, End: 8},
		}
		merged := MergeOverlapping(text, spans)
		require.Len(t, merged, 1)
		assert.Equal(t, 0, merged[0].Start)
		assert.Equal(t, 8, merged[0].End)
		// First seen wins confidence ties.
		assert.Equal(t, EntityEmail, merged[0].Type)
	})

	t.Run("unsorted input is sorted first", func(t *testing.T) {
		spans := []DetectedSpan{
			{Type: EntityPhone, Value: "89ab", Confidence: 0.9, Start: 8, End: 12},
			{Type: EntityEmail, Value: "0123", Confidence: 0.9, Start: 0, End: 4},
		}
		merged := MergeOverlapping(text, spans)
		require.Len(t, merged, 2)
		assert.Equal(t, 0, merged[0].Start)
		assert.Equal(t, 8, merged[1].Start)
	})

	t.Run("empty and single pass through", func(t *testing.T) {
		assert.Empty(t, MergeOverlapping(text, nil))
		single := []DetectedSpan{{Type: EntityEmail, Start: 0, End: 4}}
		assert.Equal(t, single, MergeOverlapping(text, single))
	})
}

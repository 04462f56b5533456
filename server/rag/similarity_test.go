package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	v := []float32{0.5, -1.5, 2.0, 0.25}
	negated := []float32{-0.5, 1.5, -2.0, -0.25}

	t.Run("identical vectors", func(t *testing.T) {
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		assert.InDelta(t, -1.0, CosineSimilarity(v, negated), 1e-9)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		a := []float32{1, 0}
		b := []float32{0, 1}
		assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-9)
	})

	t.Run("zero vector yields zero", func(t *testing.T) {
		zero := []float32{0, 0, 0, 0}
		assert.Equal(t, 0.0, CosineSimilarity(zero, v))
		assert.Equal(t, 0.0, CosineSimilarity(v, zero))
		assert.Equal(t, 0.0, CosineSimilarity(zero, zero))
	})

	t.Run("dimension mismatch yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
	})

	t.Run("empty vectors yield zero", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity(nil, v))
		assert.Equal(t, 0.0, CosineSimilarity(v, nil))
		assert.Equal(t, 0.0, CosineSimilarity([]float32{}, []float32{}))
	})

	t.Run("scaling does not change similarity", func(t *testing.T) {
		doubled := []float32{1.0, -3.0, 4.0, 0.5}
		assert.InDelta(t, 1.0, CosineSimilarity(v, doubled), 1e-6)
	})
}

package rag

import "math"

// CosineSimilarity returns the normalized dot product of two vectors, in
// [-1, 1]. Mismatched dimensions, empty vectors, and zero-norm vectors all
// yield 0.0 rather than NaN or an error, so a degenerate embedding simply
// ranks last.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denominator := math.Sqrt(normA) * math.Sqrt(normB)
	if denominator == 0.0 {
		return 0.0
	}
	return dot / denominator
}

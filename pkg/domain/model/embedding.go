package model

import "math"

// Embedding is a fixed length vector summarising a piece of text
type Embedding []float32

const (
	// EmbeddingDimension is the vector size requested from the LLM embedding API
	EmbeddingDimension = 768
	// HashEmbeddingDimension is the vector size of the placeholder hash encoder
	HashEmbeddingDimension = 128
)

// Magnitude returns the euclidean norm of e
func (e Embedding) Magnitude() float64 {
	var sum float64
	for _, v := range e {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// CosineSimilarity returns dot(a,b)/(|a||b|). It is 0 when either vector has
// zero magnitude or when the lengths differ.
func CosineSimilarity(a, b Embedding) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / math.Sqrt(normA*normB)
	switch {
	case math.IsNaN(sim):
		return 0
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}

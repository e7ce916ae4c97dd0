package vector

import "math"

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Vectors of different length are compared over the shared prefix; embeddings
// from different providers are not guaranteed to be comparable beyond that.
// Empty input or a zero-magnitude vector yields 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

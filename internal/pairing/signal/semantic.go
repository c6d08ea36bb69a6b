package signal

import "math"

// SemanticSimilarity is the cosine similarity of two embeddings remapped
// from [-1,1] to [0,1]. Vectors of different length are compared over
// their common prefix. Empty or zero-norm input scores 0.
func SemanticSimilarity(a, b []float32) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}

	cosine := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return clamp01((cosine + 1) / 2)
}

package embed

import (
	"context"
	"math"
)

// HashDimension is the vector size produced by the hash fallback.
const HashDimension = 384

// HashProvider is the deterministic floor of the fallback chain. It buckets
// character codes by position modulo the vector dimension and L2-normalizes
// the result. It has no dependencies, no side effects, and cannot fail, at
// the cost of semantic quality.
type HashProvider struct {
	dim int
}

// NewHashProvider creates a hash provider with the default dimension.
func NewHashProvider() *HashProvider {
	return &HashProvider{dim: HashDimension}
}

// Name returns the tier identifier.
func (p *HashProvider) Name() string {
	return "hash-fallback"
}

// Embed returns one deterministic vector per input text. Identical input
// always yields a bit-identical vector.
func (p *HashProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = p.vector(text)
	}
	return vectors, nil
}

func (p *HashProvider) vector(text string) []float32 {
	vec := make([]float32, p.dim)

	pos := 0
	for _, r := range text {
		vec[pos%p.dim] += float32(r)
		pos++
	}

	var sumSquares float64
	for _, v := range vec {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		// Empty text stays the zero vector
		return vec
	}

	norm := float32(math.Sqrt(sumSquares))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

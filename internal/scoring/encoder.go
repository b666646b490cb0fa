package scoring

import (
	"hash/fnv"
	"math"
)

// TextEncoder produces a fixed-size vector for a text. The scorer only
// needs the derived similarity, so a trained embedding model can be swapped
// in behind this interface later.
type TextEncoder interface {
	Encode(text string) []float64
	// Similarity returns a score in [0,1] for two texts.
	Similarity(a, b string) float64
}

// NGramEncoder is a lexical character-trigram encoder. It stands in for a
// learned embedding: hashed trigram frequencies, L2-normalized, compared by
// cosine scaled into [0,1].
type NGramEncoder struct {
	dim int
	n   int
}

func NewNGramEncoder() *NGramEncoder {
	return &NGramEncoder{dim: 64, n: 3}
}

func (e *NGramEncoder) Encode(text string) []float64 {
	vec := make([]float64, e.dim)
	runes := []rune(text)
	if len(runes) < e.n {
		if len(runes) > 0 {
			vec[hashBucket(string(runes), e.dim)]++
		}
	} else {
		for i := 0; i+e.n <= len(runes); i++ {
			vec[hashBucket(string(runes[i:i+e.n]), e.dim)]++
		}
	}
	normalize(vec)
	return vec
}

func (e *NGramEncoder) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	cos := dot(e.Encode(a), e.Encode(b))
	// Cosine lands in [-1,1]; frequency vectors keep it non-negative, but
	// the scaling matches the general contract.
	return clamp01((cos + 1) / 2)
}

func hashBucket(s string, dim int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(dim))
}

func normalize(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

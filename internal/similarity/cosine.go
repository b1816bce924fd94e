// Package similarity scores embeddings against each other.
package similarity

import (
	"math"

	"github.com/viant/vec/search"
)

// Query is a vector prepared for repeated scoring.
type Query struct {
	vec search.Float32s
	mag float32
}

// NewQuery precomputes the magnitude of v.
func NewQuery(v []float32) Query {
	q := search.Float32s(v)
	return Query{vec: q, mag: q.Magnitude()}
}

// Score returns the cosine similarity between the query and v in [-1, 1].
// Vectors of a different length or zero magnitude score 0.
func (q Query) Score(v []float32) float64 {
	if len(v) == 0 || len(v) != len(q.vec) || q.mag == 0 {
		return 0
	}
	if search.Float32s(v).Magnitude() == 0 {
		return 0
	}
	score := 1 - float64(q.vec.CosineDistance(v))
	return math.Max(-1, math.Min(1, score))
}

// Cosine returns the cosine similarity of a and b.
func Cosine(a, b []float32) float64 {
	return NewQuery(a).Score(b)
}

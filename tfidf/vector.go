package tfidf

// Vector is a sparse vector with strictly ascending indices. Vectors
// produced by a Vectorizer are L2-normalised, so Dot is cosine similarity.
type Vector struct {
	Indices []int32
	Values  []float32
}

// Len returns the number of non-zero entries.
func (v Vector) Len() int {
	return len(v.Indices)
}

// IsZero reports whether v has no non-zero entries.
func (v Vector) IsZero() bool {
	return len(v.Indices) == 0
}

// Dot returns the inner product of v and w.
func (v Vector) Dot(w Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(w.Indices) {
		switch {
		case v.Indices[i] == w.Indices[j]:
			sum += float64(v.Values[i]) * float64(w.Values[j])
			i++
			j++
		case v.Indices[i] < w.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Dense expands v into a dense slice of length size.
func (v Vector) Dense(size int) []float32 {
	out := make([]float32, size)
	for i, idx := range v.Indices {
		out[idx] = v.Values[i]
	}
	return out
}

// DotDense returns the inner product of v with a dense vector.
func (v Vector) DotDense(dense []float32) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += float64(v.Values[i]) * float64(dense[idx])
	}
	return sum
}

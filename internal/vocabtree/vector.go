package vocabtree

import "math"

// MakeVector quantizes descriptors and returns the resulting visit-count
// vector, optionally weighted by IDF and L2-normalized. A zero-vector
// input (no descriptors, or an all-zero count vector) yields an all-zero
// output rather than dividing by zero.
func MakeVector(t *Tree, descriptors [][]float32, weighted bool) []float32 {
	assertTrained(t)
	visits, _ := quantize(t, descriptors, modeVector, 0)

	vec := make([]float32, len(visits))
	for i, v := range visits {
		vec[i] = float32(v)
	}
	if !weighted {
		return vec
	}
	for i := range vec {
		vec[i] *= t.Weights[i]
	}
	normalizeL2(vec)
	return vec
}

// normalizeL2 scales v in place to unit L2 norm. A zero vector is left
// unchanged (norm 0 would otherwise require dividing by zero).
func normalizeL2(v []float32) {
	sumSq := 0.0
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

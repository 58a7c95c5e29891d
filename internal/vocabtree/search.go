package vocabtree

import (
	"math"
	"sort"
)

// SearchConfig carries the search-time configuration parameter. AmountToReturn
// is accepted and stored but intentionally does not size the returned list —
// see the "top 10%" truncation design note: the result size is always
// ceil(|candidates| / 10), regardless of AmountToReturn. It is kept on the
// struct for forward compatibility and so callers have somewhere to express
// intent once/if that contract changes.
type SearchConfig struct {
	AmountToReturn uint32
}

// Match is one ranked search result.
type Match struct {
	ImageID uint64
	Score   float64
}

// Search quantizes queryDescriptors in query mode to obtain a weighted,
// normalized query vector and a candidate set drawn from the union of
// visited leaves' posting lists, scores every candidate by absolute-value
// L1 accumulation against its stored database vector, and returns the
// lowest-scoring ceil(|candidates|/10) matches, ascending by score.
//
// An empty query, or a query whose descriptors reach no indexed leaf,
// yields an empty result — not an error.
func Search(t *Tree, queryDescriptors [][]float32, cfg SearchConfig) []Match {
	assertTrained(t)

	visits, candidates := quantize(t, queryDescriptors, modeQuery, 0)
	if len(candidates) == 0 {
		return nil
	}

	q := make([]float32, len(visits))
	for i, v := range visits {
		q[i] = float32(v) * t.Weights[i]
	}
	normalizeL2(q)

	matches := make([]Match, 0, len(candidates))
	for id := range candidates {
		dbVec, ok := t.DatabaseVectors[id]
		if !ok {
			continue
		}
		matches = append(matches, Match{ImageID: id, Score: l1Score(q, dbVec)})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score < matches[j].Score
		}
		return matches[i].ImageID < matches[j].ImageID
	})

	n := int(math.Ceil(float64(len(matches)) / 10.0))
	if n > len(matches) {
		n = len(matches)
	}
	return matches[:n]
}

// l1Score computes Σ|q[n]·dbVec[n]|, the documented absolute-value-per-term
// score. This is not the same as Σ|q[n]-dbVec[n]|; see the design note on
// why the absolute-value-of-product form is used here.
func l1Score(q, dbVec []float32) float64 {
	sum := 0.0
	for n := range q {
		sum += math.Abs(float64(q[n]) * float64(dbVec[n]))
	}
	return sum
}

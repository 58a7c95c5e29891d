package vocabtree

// quantizeMode selects the side effect of a quantization walk: indexing
// mode mutates inverted files, query mode accumulates a candidate set.
// Modeling both as one walk function (rather than two copies) is what
// guarantees they stay in lockstep — the same walk order, every time.
type quantizeMode int

const (
	modeIndex quantizeMode = iota
	modeQuery
	modeVector // no side effects: used by MakeVector, which only needs counts
)

// quantizeDescriptor walks one descriptor from the root to a leaf by
// greedy inner-product maximization, ties broken by the smallest child
// index, incrementing visits at every node along the path. It returns the
// leaf reached.
func quantizeDescriptor(t *Tree, descriptor []float32, visits []uint32) *Node {
	node := &t.Nodes[0]
	visits[0]++
	for !node.IsLeaf() {
		best := uint32(0)
		bestScore := innerProduct(descriptor, childMean(t, node, 0))
		for c := uint32(1); c < t.Split; c++ {
			score := innerProduct(descriptor, childMean(t, node, c))
			if score > bestScore {
				bestScore = score
				best = c
			}
		}
		child := &t.Nodes[node.FirstChildIndex+best]
		visits[child.Index]++
		node = child
	}
	return node
}

func childMean(t *Tree, node *Node, c uint32) []float32 {
	return t.Nodes[node.FirstChildIndex+c].Mean
}

func innerProduct(a, b []float32) float64 {
	sum := 0.0
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// quantize walks every row of descriptors through t, returning the
// resulting visit-count vector of length t.NumberOfNodes.
//
// In index mode (modeIndex) each descriptor's terminal leaf has its
// posting list incremented for imageID. In query mode (modeQuery) the
// union of image IDs found in every visited leaf's posting list is
// accumulated into the returned candidate set instead; imageID is ignored.
// modeVector only counts visits and returns a nil candidate set.
func quantize(t *Tree, descriptors [][]float32, mode quantizeMode, imageID uint64) (visits []uint32, candidates map[uint64]struct{}) {
	visits = make([]uint32, t.NumberOfNodes)
	if mode == modeQuery {
		candidates = make(map[uint64]struct{})
	}
	for _, d := range descriptors {
		leaf := quantizeDescriptor(t, d, visits)
		switch mode {
		case modeIndex:
			t.InvertedFiles[leaf.LevelIndex][imageID]++
		case modeQuery:
			for id := range t.InvertedFiles[leaf.LevelIndex] {
				candidates[id] = struct{}{}
			}
		case modeVector:
			// counts only; no inverted-file mutation or candidate lookup.
		}
	}
	return visits, candidates
}

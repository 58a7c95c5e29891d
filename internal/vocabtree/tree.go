// Package vocabtree is the vocabulary-tree indexing and retrieval engine:
// hierarchical k-means clustering into a tree of visual words, per-image
// TF-IDF-weighted sparse vector generation, an inverted-file posting list
// per leaf, and ranked scoring against candidate database images.
package vocabtree

// Tree is the trained vocabulary tree: topology, IDF weights, per-image
// database vectors, and per-leaf posting lists. It is produced once by
// Train (or Load), then read-only for the remainder of its lifetime —
// Search and MakeVector take no locks because they mutate nothing.
type Tree struct {
	Split         uint32
	MaxLevel      uint32
	NumberOfNodes uint32

	Nodes           []Node
	Weights         []float32
	DatabaseVectors map[uint64][]float32
	InvertedFiles   []map[uint64]uint32 // indexed by leaf levelIndex
}

// newEmptyTree allocates a Tree's backing arrays for a complete split-ary
// tree of depth maxLevel, with every node's Mean sized to dim.
func newEmptyTree(split, maxLevel uint32, dim int) *Tree {
	n := NumberOfNodes(split, maxLevel)
	leaves := LeafCount(split, maxLevel)

	t := &Tree{
		Split:           split,
		MaxLevel:        maxLevel,
		NumberOfNodes:   n,
		Nodes:           make([]Node, n),
		Weights:         make([]float32, n),
		DatabaseVectors: make(map[uint64][]float32),
		InvertedFiles:   make([]map[uint64]uint32, leaves),
	}
	for i := range t.InvertedFiles {
		t.InvertedFiles[i] = make(map[uint64]uint32)
	}
	for i := range t.Nodes {
		t.Nodes[i].Index = uint32(i)
		t.Nodes[i].FirstChildIndex = noChild
		t.Nodes[i].Mean = make([]float32, dim)
	}
	return t
}

// Leaf returns the node at the given leaf levelIndex. Nodes are laid out
// level-major (every node of level L-1 sits at NumberOfNodes(split, L-1)
// + levelIndex), so this is a direct index, not a scan.
func (t *Tree) Leaf(levelIndex uint32) *Node {
	idx := NumberOfNodes(t.Split, t.MaxLevel-1) + levelIndex
	if int(idx) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[idx]
}

package vocabtree

// noChild marks a leaf's FirstChildIndex: there is no global node index this
// large, so it is unambiguous as a sentinel.
const noChild = ^uint32(0)

// Node is one entry of the dense, ordered node sequence backing a Tree.
// Every field here is part of the persisted wire format (see persist.go);
// do not reorder without updating the codec.
type Node struct {
	FirstChildIndex    uint32 // noChild if this node is a leaf
	Index              uint32 // the node's own global index, redundant by design
	InvertedFileLength uint32 // reserved, unused by scoring, preserved across save/load
	Level              uint32
	LevelIndex         uint32
	Mean               []float32 // length D; unused for the root
}

// IsLeaf reports whether n is a leaf (level == maxLevel-1).
func (n Node) IsLeaf() bool {
	return n.FirstChildIndex == noChild
}

// NumberOfNodes returns the explicit geometric sum (K^L - 1)/(K - 1), the
// node count of a complete K-ary tree of depth L rooted at level 0.
//
// This is the open-contract decision recorded in the design notes: the
// source computes K^L/(K-1), which is the geometric sum only for the
// (K, L) pairs where the rounding happens to agree. This implementation
// uses the exact sum, since it is what the per-level child-index offsets
// algebraically require to stay in bounds.
func NumberOfNodes(split, maxLevel uint32) uint32 {
	if split <= 1 || maxLevel == 0 {
		return 1
	}
	total := uint64(0)
	pow := uint64(1)
	for l := uint32(0); l < maxLevel; l++ {
		total += pow
		pow *= uint64(split)
	}
	return uint32(total)
}

// LeafCount returns K^(L-1), the number of leaves (and posting lists) of a
// complete K-ary tree of depth L.
func LeafCount(split, maxLevel uint32) uint32 {
	if maxLevel == 0 {
		return 0
	}
	count := uint32(1)
	for l := uint32(0); l < maxLevel-1; l++ {
		count *= split
	}
	return count
}

// firstChildIndexFor computes childIndex(c=0) for a node at the given level
// and levelIndex: childLevelIndex = levelIndex*K + c; childIndex =
// NumberOfNodes(K, level+1) + childLevelIndex, i.e. the count of every node
// at levels 0..level (inclusive) plus the child's position within its own
// level.
//
// The source's stated formula is floor(K^level/(K-1)) + childLevelIndex,
// which diverges from this for K=2 at level >= 1 (see the node-count open
// question in the design notes). Using NumberOfNodes here keeps child
// indices consistent with the array sized by NumberOfNodes, which the
// source's literal formula does not guarantee for every (K, L).
func firstChildIndexFor(split, level, levelIndex uint32) uint32 {
	childLevelIndex := levelIndex * split
	return NumberOfNodes(split, level+1) + childLevelIndex
}

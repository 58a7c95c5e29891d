package vocabtree

import (
	"errors"
	"fmt"
)

// ErrCorrupt is returned by Load when the persisted stream is truncated,
// fails its checksum, or is otherwise rejected by the underlying I/O layer.
// Load never returns a non-nil *Tree alongside a non-nil error.
var ErrCorrupt = errors.New("vocabtree: corrupt or truncated index file")

// assertTrained panics if t is the zero value — Search and MakeVector must
// never run against an untrained or unloaded tree. This is the core's one
// InvariantViolation: programmer misuse, not a recoverable condition.
func assertTrained(t *Tree) {
	if t == nil || t.NumberOfNodes == 0 {
		panic(fmt.Sprintf("vocabtree: operation called on untrained tree (NumberOfNodes=%d)", numberOfNodesOf(t)))
	}
}

func numberOfNodesOf(t *Tree) uint32 {
	if t == nil {
		return 0
	}
	return t.NumberOfNodes
}

package scene

import (
	"fmt"
	"os"
)

// globalDebug mirrors the most recent Scene.SetDebugMode call.
var globalDebug bool

// debugCheckDisposed panics with a descriptive message when a destroyed node
// is used in a tree operation. In release mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("scene debug: %s on disposed node %q (ID %d)", op, n.name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[scene] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.name)
	}
}

// debugCheckChildCount warns on stderr if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[scene] warning: node %q has %d children (threshold %d)\n",
			n.name, len(n.children), debugMaxChildCount)
	}
}

package bramble

import (
	"fmt"
	"os"
)

// globalDebug enables stderr diagnostics for the whole engine. The engine is
// single-threaded, so a plain bool is enough.
var globalDebug bool

// SetDebugMode enables or disables debug diagnostics. When enabled, listener
// and cleanup failures and suspiciously large subscriber lists are reported
// on stderr.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// DebugMode reports whether debug diagnostics are enabled.
func DebugMode() bool {
	return globalDebug
}

// debugMaxSubscribers is the subscriber count above which a warning is printed.
const debugMaxSubscribers = 1000

func debugCheckSubscribers(v *vertex) {
	if !globalDebug {
		return
	}
	if n := len(v.subs); n > debugMaxSubscribers {
		_, _ = fmt.Fprintf(os.Stderr, "[bramble] warning: %s observable %d has %d subscribers (exceeds %d)\n",
			v.kind, v.id, n, debugMaxSubscribers)
	}
}

func debugReport(err error) {
	if !globalDebug || err == nil {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[bramble] %v\n", err)
}

// debugCheckOpenSources warns when a root is torn down while update sources
// are still open. It is called after Root.Unmount.
func debugCheckOpenSources() {
	if !globalDebug {
		return
	}
	if n := stats.openSources.Load(); n > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "[bramble] warning: %d update sources still open after root teardown\n", n)
	}
}

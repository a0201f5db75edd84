package viewkit

import (
	"fmt"
	"os"
)

// warnf reports a configuration or persistence problem on stderr. The
// viewer never aborts on misuse: the offending call is ignored and the
// reason logged.
func warnf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[viewkit] warning: "+format+"\n", args...)
}

package debug

import (
	"fmt"
	"os"

	"github.com/signadot/recs/record"
)

// Logf writes a trace line to stderr. *record.Node arguments are rendered
// as compact JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		switch x := args[i].(type) {
		case *record.Node:
			d, err := x.MarshalJSON()
			if err != nil {
				args[i] = fmt.Sprintf("[raw *record.Node] %v", x)
				continue
			}
			args[i] = string(d)
		case []string, bool, string, int:
		default:
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}

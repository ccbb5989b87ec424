package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	All       bool
	KeySpec   bool
	KeyGroups bool
	Clump     bool
	Eval      bool
}

var d *debug

func init() {
	d = &debug{}
	d.All = boolEnv("RECS_DEBUG")
	d.KeySpec = boolEnv("RECS_DEBUG_KEYSPEC")
	d.KeyGroups = boolEnv("RECS_DEBUG_KEYGROUPS")
	d.Clump = boolEnv("RECS_DEBUG_CLUMP")
	d.Eval = boolEnv("RECS_DEBUG_EVAL")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

// All reports whether RECS_DEBUG is set. The CLI uses it to lower the log
// level to debug.
func All() bool {
	return d.All
}
func KeySpec() bool {
	return d.KeySpec
}
func KeyGroups() bool {
	return d.KeyGroups
}
func Clump() bool {
	return d.Clump
}
func Eval() bool {
	return d.Eval
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
}

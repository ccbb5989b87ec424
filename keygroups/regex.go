package keygroups

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/signadot/recs/keyspec"
	"github.com/signadot/recs/record"
)

// Regex is a member selecting the paths of a record that match a pattern.
type Regex struct {
	spec    string
	pattern string
	re      *regexp.Regexp

	depth int
	full  bool
	sort  bool
	refs  bool
}

const (
	optDepth = "depth"
	optFull  = "full"
	optSort  = "sort"
	optRefs  = "returnrefs"
)

var optNames = map[string]string{
	"d":          optDepth,
	"depth":      optDepth,
	"f":          optFull,
	"full":       optFull,
	"s":          optSort,
	"sort":       optSort,
	"rr":         optRefs,
	"returnrefs": optRefs,
}

// ParseRegex parses a "!pattern!opts" group spec.
func ParseRegex(spec string) (*Regex, error) {
	if !strings.HasPrefix(spec, "!") {
		return nil, fmt.Errorf("%w: '%s', does not start with '!'", ErrMalformed, spec)
	}
	if len(spec) < 2 {
		return nil, fmt.Errorf("%w: '%s', does not have enough length", ErrMalformed, spec)
	}
	var (
		pat   strings.Builder
		last  rune
		found bool
		rest  string
	)
	body := spec[1:]
	for i, ch := range body {
		if ch == '!' && last != '\\' {
			found = true
			rest = body[i+1:]
			break
		}
		pat.WriteRune(ch)
		last = ch
	}
	if !found {
		return nil, fmt.Errorf("%w: did not find terminating '!' in '%s'", ErrMalformed, spec)
	}
	r := &Regex{spec: spec, pattern: pat.String(), depth: 1}
	seen := map[string]bool{}
	for _, opt := range strings.Split(rest, "!") {
		if opt == "" {
			continue
		}
		name, val, hasVal := strings.Cut(opt, "=")
		norm, ok := optNames[name]
		if !ok {
			return nil, fmt.Errorf("%w: unrecognized option '%s' in '%s'", ErrMalformed, name, spec)
		}
		if seen[norm] {
			return nil, fmt.Errorf("%w: already specified option '%s', bad option '%s' in '%s'", ErrMalformed, name, opt, spec)
		}
		seen[norm] = true
		if hasVal && norm != optDepth {
			return nil, fmt.Errorf("%w: option '%s' takes no value in '%s'", ErrMalformed, name, spec)
		}
		switch norm {
		case optDepth:
			if !hasVal {
				continue
			}
			n, err := strconv.Atoi(val)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("%w: bad depth '%s' in '%s'", ErrMalformed, val, spec)
			}
			r.depth = n
		case optFull:
			r.full = true
		case optSort:
			r.sort = true
		case optRefs:
			r.refs = true
		}
	}
	re, err := regexp.Compile(r.pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", ErrMalformed, spec, err)
	}
	r.re = re
	return r, nil
}

func (r *Regex) String() string {
	return r.spec
}

func (r *Regex) Pattern() string {
	return r.pattern
}

// Fields returns the paths of rec matching the pattern. The pattern is
// tested against the whole joined path, not only the last key.
func (r *Regex) Fields(rec *record.Node) ([]string, error) {
	var res []string
	r.collect(rec, nil, func(path []string) {
		p := keyspec.JoinKeys(path)
		if r.re.MatchString(p) {
			res = append(res, p)
		}
	})
	if r.sort {
		slices.Sort(res)
	}
	return res, nil
}

// collect visits the candidate paths of v depth first, objects in key order
// and arrays by index.
func (r *Regex) collect(v *record.Node, path []string, f func([]string)) {
	if n := len(path); n > 0 && (r.full || n == r.depth) {
		if v.IsNull() || v.IsLeaf() || r.refs {
			f(path)
		}
	}
	if !r.full && len(path) >= r.depth {
		return
	}
	if v == nil {
		return
	}
	switch v.Type {
	case record.ObjectType:
		for i, key := range v.Fields {
			r.collect(v.Values[i], append(slices.Clip(path), key), f)
		}
	case record.ArrayType:
		for i, elt := range v.Values {
			r.collect(elt, append(slices.Clip(path), "#"+strconv.Itoa(i)), f)
		}
	}
}

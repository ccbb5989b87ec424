package keyspec

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/signadot/recs/record"
)

// Policy selects how resolution treats absent paths.
type Policy int

const (
	// Strict fails with ErrNoSuchKey when the path is absent.
	Strict Policy = iota
	// Lenient reports an absent path as not found.
	Lenient
	// Vivify creates missing intermediate containers in the record.
	Vivify
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	case Vivify:
		return "vivify"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// KeySpec is a parsed key spec. It is immutable once parsed.
type KeySpec struct {
	spec   string
	keys   []string
	fuzzy  bool
	simple bool
	cache  *Cache
}

// Parse parses spec using DefaultCache.
func Parse(spec string) *KeySpec {
	return DefaultCache.Parse(spec)
}

var arrayIndexRE = regexp.MustCompile(`^#(\d+)$`)

// IsSimple reports whether spec is looked up as a single literal key.
func IsSimple(spec string) bool {
	return !strings.ContainsAny(spec, `/\#`) && !strings.HasPrefix(spec, "@")
}

func parse(spec string) *KeySpec {
	ks := &KeySpec{spec: spec}
	if IsSimple(spec) {
		ks.simple = true
		ks.keys = []string{spec}
		return ks
	}
	raw := spec
	if strings.HasPrefix(raw, "@") {
		ks.fuzzy = true
		raw = raw[1:]
	}
	var (
		cur  strings.Builder
		last rune
	)
	for _, ch := range raw {
		if ch == '/' && last != '\\' {
			ks.keys = append(ks.keys, cur.String())
			cur.Reset()
			last = 0
			continue
		}
		if ch == '/' {
			// escaped slash, drop the backslash
			s := cur.String()
			cur.Reset()
			cur.WriteString(s[:len(s)-1])
		}
		cur.WriteRune(ch)
		last = ch
	}
	if cur.Len() > 0 {
		ks.keys = append(ks.keys, cur.String())
	}
	return ks
}

func (k *KeySpec) String() string {
	return k.spec
}

// Keys returns the parsed segments.
func (k *KeySpec) Keys() []string {
	return slices.Clone(k.keys)
}

func (k *KeySpec) Fuzzy() bool {
	return k.fuzzy
}

// Simple reports whether the spec resolves as a direct property lookup.
func (k *KeySpec) Simple() bool {
	return k.simple
}

// Resolve looks up the spec in data. The boolean result is false when the
// path is absent and p is Lenient or Vivify.
func (k *KeySpec) Resolve(data *record.Node, p Policy) (*record.Node, bool, error) {
	if k.simple {
		return resolveSimple(data, k.spec, p)
	}
	v, found, _, err := k.walk(data, p)
	return v, found, err
}

// Has reports whether the full path is present in data.
func (k *KeySpec) Has(data *record.Node) (bool, error) {
	return hasResult(k.Resolve(data, Strict))
}

func hasResult(_ *record.Node, _ bool, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, err
}

// KeyList returns the actual keys traversed to reach the spec in data, with
// array positions written as "#N". It returns nil when the path is absent.
// KeyList never modifies data.
func (k *KeySpec) KeyList(data *record.Node) ([]string, error) {
	if k.simple {
		_, found, err := resolveSimple(data, k.spec, Lenient)
		if err != nil || !found {
			return nil, err
		}
		return []string{k.spec}, nil
	}
	_, found, chain, err := k.walk(data, Lenient)
	if err != nil || !found {
		return nil, err
	}
	return chain, nil
}

// SetValue assigns value at the spec in data, creating intermediate
// containers as needed.
func (k *KeySpec) SetValue(data, value *record.Node) error {
	if k.simple {
		return setSimple(data, k.spec, value)
	}
	if len(k.keys) == 0 {
		return fmt.Errorf("%w: empty key spec %q", ErrBadPath, k.spec)
	}
	if data.IsNull() {
		return fmt.Errorf("%w: cannot set %s in null record", ErrBadPath, k.spec)
	}
	parentKeys := k.keys[:len(k.keys)-1]
	cur := data
	var chain []string
	for i, search := range parentKeys {
		next, step, err := k.descend(cur, chain, search, k.keys[i+1], Vivify)
		if err != nil {
			return err
		}
		chain = append(chain, step)
		cur = next
	}
	last := k.keys[len(k.keys)-1]
	if cur.IsLeaf() {
		return scalarErr(last, cur)
	}
	key, idx, err := k.guessKey(cur, chain, last)
	if err != nil {
		return err
	}
	if cur.Type == record.ArrayType {
		return setIndex(cur, idx, value)
	}
	cur.Set(key, value)
	return nil
}

// MaxIndexGrowth bounds how many null elements a single assignment may add
// in front of an array index.
const MaxIndexGrowth = 1 << 16

func setIndex(arr *record.Node, idx int, v *record.Node) error {
	if grow := idx - len(arr.Values); grow > MaxIndexGrowth {
		return fmt.Errorf("%w: index #%d would grow array of length %d by more than %d", ErrBadPath, idx, len(arr.Values), MaxIndexGrowth)
	}
	arr.SetIndex(idx, v)
	return nil
}

// walk resolves every segment, returning the value, whether it was found
// and the resolved key chain.
func (k *KeySpec) walk(data *record.Node, p Policy) (*record.Node, bool, []string, error) {
	if len(k.keys) == 0 {
		return data, true, nil, nil
	}
	cur := data
	var chain []string
	for i, search := range k.keys {
		if cur.IsNull() {
			return missing(k.spec, p)
		}
		if i == len(k.keys)-1 {
			if cur.IsLeaf() {
				return nil, false, nil, scalarErr(search, cur)
			}
			key, idx, err := k.guessKey(cur, chain, search)
			if err != nil {
				return nil, false, nil, err
			}
			var (
				v       *record.Node
				present bool
				step    string
			)
			if cur.Type == record.ArrayType {
				v, present = cur.Index(idx)
				step = "#" + strconv.Itoa(idx)
			} else {
				v, present = cur.Get(key)
				step = key
			}
			if !present {
				if p == Strict {
					return nil, false, nil, noSuchKey(k.spec)
				}
				return nil, false, nil, nil
			}
			return v, true, append(chain, step), nil
		}
		next, step, err := k.descend(cur, chain, search, k.keys[i+1], p)
		if err != nil {
			return nil, false, nil, err
		}
		if next == nil {
			return nil, false, nil, nil
		}
		chain = append(chain, step)
		cur = next
	}
	return cur, true, chain, nil
}

// descend moves from cur into the container addressed by search. A nil
// result without error means the path is absent under a Lenient policy.
// Under Vivify a missing container is created, choosing an array when
// nextSearch is an array index.
func (k *KeySpec) descend(cur *record.Node, chain []string, search, nextSearch string, p Policy) (*record.Node, string, error) {
	if cur.IsNull() {
		_, _, _, err := missing(k.spec, p)
		return nil, "", err
	}
	if cur.IsLeaf() {
		return nil, "", scalarErr(search, cur)
	}
	key, idx, err := k.guessKey(cur, chain, search)
	if err != nil {
		return nil, "", err
	}
	var (
		next *record.Node
		step string
	)
	if cur.Type == record.ArrayType {
		next, _ = cur.Index(idx)
		step = "#" + strconv.Itoa(idx)
	} else {
		next, _ = cur.Get(key)
		step = key
	}
	if !next.IsNull() {
		return next, step, nil
	}
	if p != Vivify {
		_, _, _, err := missing(k.spec, p)
		return nil, "", err
	}
	if strings.HasPrefix(nextSearch, "#") {
		next = record.NewArray()
	} else {
		next = record.NewObject()
	}
	if cur.Type == record.ArrayType {
		if err := setIndex(cur, idx, next); err != nil {
			return nil, "", err
		}
	} else {
		cur.Set(key, next)
	}
	return next, step, nil
}

// guessKey maps a segment to the actual key of an object, or to the index
// of an array.
func (k *KeySpec) guessKey(cur *record.Node, chain []string, search string) (string, int, error) {
	if cur.Type == record.ArrayType {
		m := arrayIndexRE.FindStringSubmatch(search)
		if m == nil {
			return "", 0, nonNumericErr(search)
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return "", 0, fmt.Errorf("%w: index %s: %w", ErrBadPath, search, err)
		}
		return "", idx, nil
	}
	if !k.fuzzy {
		return search, 0, nil
	}
	return k.cache.fuzzyResolve(cur, chain, search), 0, nil
}

func missing(spec string, p Policy) (*record.Node, bool, []string, error) {
	if p == Strict {
		return nil, false, nil, noSuchKey(spec)
	}
	return nil, false, nil, nil
}

func noSuchKey(spec string) error {
	return fmt.Errorf("%w: %s", ErrNoSuchKey, spec)
}

func scalarErr(search string, v *record.Node) error {
	d, _ := v.MarshalJSON()
	return fmt.Errorf("%w: Cannot look for %s in scalar: %s", ErrBadPath, search, d)
}

func nonNumericErr(search string) error {
	return fmt.Errorf("%w: Cannot select non-numeric index: %s (did you forget to prefix with a '#'?) for array", ErrBadPath, search)
}

// JoinKeys renders a resolved key list as a canonical spec, escaping
// slashes inside keys.
func JoinKeys(keys []string) string {
	escaped := make([]string, len(keys))
	for i, key := range keys {
		escaped[i] = strings.ReplaceAll(key, "/", `\/`)
	}
	return strings.Join(escaped, "/")
}

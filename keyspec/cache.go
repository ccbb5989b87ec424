package keyspec

import (
	"regexp"
	"slices"
	"strings"

	"github.com/signadot/recs/debug"
	"github.com/signadot/recs/record"
)

// Cache memoizes parsed key specs and fuzzy key resolutions. A nil *Cache
// behaves like [NoCache].
type Cache struct {
	disabled bool
	specs    map[string]*KeySpec
	fuzzy    map[fuzzyKey]string
}

type fuzzyKey struct {
	chain  string
	search string
}

// DefaultCache backs the package level functions.
var DefaultCache = NewCache()

func NewCache() *Cache {
	return &Cache{
		specs: map[string]*KeySpec{},
		fuzzy: map[fuzzyKey]string{},
	}
}

// NoCache returns a cache that never memoizes.
func NoCache() *Cache {
	return &Cache{disabled: true}
}

func (c *Cache) enabled() bool {
	return c != nil && !c.disabled
}

// Clear drops all memoized specs and fuzzy resolutions.
func (c *Cache) Clear() {
	if !c.enabled() {
		return
	}
	clear(c.specs)
	clear(c.fuzzy)
}

// Len returns the number of memoized specs and fuzzy resolutions.
func (c *Cache) Len() (specs, fuzzy int) {
	if !c.enabled() {
		return 0, 0
	}
	return len(c.specs), len(c.fuzzy)
}

// Parse returns the KeySpec for spec, reusing a previous parse of the same
// string when there is one.
func (c *Cache) Parse(spec string) *KeySpec {
	if c.enabled() {
		if ks, ok := c.specs[spec]; ok {
			return ks
		}
	}
	ks := parse(spec)
	ks.cache = c
	if c.enabled() {
		c.specs[spec] = ks
	}
	return ks
}

// ClearCaches clears DefaultCache.
func ClearCaches() {
	DefaultCache.Clear()
}

// fuzzyResolve maps search to an actual key of obj. chain holds the keys
// already resolved on the way to obj.
func (c *Cache) fuzzyResolve(obj *record.Node, chain []string, search string) string {
	fk := fuzzyKey{chain: strings.Join(chain, "\x00"), search: search}
	if c.enabled() {
		if res, ok := c.fuzzy[fk]; ok {
			return res
		}
	}
	res := guessFuzzy(obj, search)
	if debug.KeySpec() {
		debug.Logf("keyspec: fuzzy %q under %v resolved to %q\n", search, chain, res)
	}
	if c.enabled() {
		c.fuzzy[fk] = res
	}
	return res
}

func guessFuzzy(obj *record.Node, search string) string {
	if obj.Has(search) {
		return search
	}
	keys := slices.Sorted(slices.Values(obj.Fields))
	found, ok := "", false
	lower := strings.ToLower(search)
	for _, key := range keys {
		if strings.HasPrefix(strings.ToLower(key), lower) {
			found, ok = key, true
		}
	}
	if ok {
		return found
	}
	re, err := regexp.Compile("(?i)" + search)
	if err == nil {
		for _, key := range keys {
			if re.MatchString(key) {
				found, ok = key, true
			}
		}
	}
	if ok {
		return found
	}
	return search
}

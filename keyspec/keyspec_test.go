package keyspec

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/recs/record"
)

func mustParse(t *testing.T, s string) *record.Node {
	t.Helper()
	n, err := record.Parse([]byte(s))
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return n
}

func js(t *testing.T, n *record.Node) string {
	t.Helper()
	if n == nil {
		return "<nil>"
	}
	d, err := n.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	return string(d)
}

func TestParseSegments(t *testing.T) {
	tests := []struct {
		spec   string
		keys   []string
		fuzzy  bool
		simple bool
	}{
		{spec: "foo", keys: []string{"foo"}, simple: true},
		{spec: "foo/bar", keys: []string{"foo", "bar"}},
		{spec: "foo/#0/bar", keys: []string{"foo", "#0", "bar"}},
		{spec: "@foo/ba", keys: []string{"foo", "ba"}, fuzzy: true},
		{spec: "@foo", keys: []string{"foo"}, fuzzy: true},
		{spec: `a\/b`, keys: []string{"a/b"}},
		{spec: `a\/b/c`, keys: []string{"a/b", "c"}},
		{spec: "a//b", keys: []string{"a", "", "b"}},
		{spec: "a/", keys: []string{"a"}},
		{spec: "#3", keys: []string{"#3"}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			ks := NoCache().Parse(tt.spec)
			if diff := cmp.Diff(tt.keys, ks.Keys()); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
			if ks.Fuzzy() != tt.fuzzy {
				t.Errorf("fuzzy: want %v got %v", tt.fuzzy, ks.Fuzzy())
			}
			if ks.Simple() != tt.simple {
				t.Errorf("simple: want %v got %v", tt.simple, ks.Simple())
			}
		})
	}
}

func TestParseMemoized(t *testing.T) {
	c := NewCache()
	a := c.Parse("@a/b")
	b := c.Parse("@a/b")
	if a != b {
		t.Errorf("expected the memoized KeySpec to be reused")
	}
	if diff := cmp.Diff(a.Keys(), b.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	if n, _ := c.Len(); n != 1 {
		t.Errorf("expected 1 memoized spec, got %d", n)
	}
	c.Clear()
	if n, _ := c.Len(); n != 0 {
		t.Errorf("expected empty cache after Clear, got %d", n)
	}
	if c.Parse("@a/b") == a {
		t.Errorf("expected a fresh parse after Clear")
	}

	nc := NoCache()
	x, y := nc.Parse("a/b"), nc.Parse("a/b")
	if x == y {
		t.Errorf("NoCache should not memoize")
	}
	if diff := cmp.Diff(x.Keys(), y.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestFindKey(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		spec  string
		want  string
		found bool
	}{
		{name: "simple", data: `{"a":1}`, spec: "a", want: "1", found: true},
		{name: "nested", data: `{"a":{"b":"x"}}`, spec: "a/b", want: `"x"`, found: true},
		{name: "array index", data: `{"a":[1,{"c":true}]}`, spec: "a/#1/c", want: "true", found: true},
		{name: "escaped slash", data: `{"a/b":2}`, spec: `a\/b`, want: "2", found: true},
		{name: "null value present", data: `{"a":null}`, spec: "a", want: "null", found: true},
		{name: "missing leaf", data: `{"a":{}}`, spec: "a/b", want: "<nil>"},
		{name: "missing intermediate", data: `{"x":1}`, spec: "a/b", want: "<nil>"},
		{name: "index out of range", data: `{"a":[1]}`, spec: "a/#4", want: "<nil>"},
		{name: "fuzzy prefix", data: `{"Hostname":"h","port":1}`, spec: "@host", want: `"h"`, found: true},
		{name: "fuzzy substring", data: `{"the_latency":5}`, spec: "@lat", want: "5", found: true},
		{name: "fuzzy exact wins", data: `{"zip":0,"zip_foo":1}`, spec: "@zip", want: "0", found: true},
		{name: "fuzzy nested", data: `{"stats":{"latency":{"p50":7}}}`, spec: "@st/lat/p5", want: "7", found: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache()
			data := mustParse(t, tt.data)
			got, found, err := c.FindKey(data, tt.spec, Lenient)
			if err != nil {
				t.Fatal(err)
			}
			if found != tt.found {
				t.Errorf("found: want %v got %v", tt.found, found)
			}
			if diff := cmp.Diff(tt.want, js(t, got)); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFuzzyLastPrefixWins(t *testing.T) {
	c := NewCache()
	data := mustParse(t, `{"zip_foo":1,"zip_bar":2}`)
	got, _, err := c.FindKey(data, "@zip", Lenient)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("1", js(t, got)); diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestFuzzyCacheStable(t *testing.T) {
	c := NewCache()
	first := mustParse(t, `{"zip_foo":1,"zip_bar":2}`)
	second := mustParse(t, `{"zip_zzz":3}`)
	if _, _, err := c.FindKey(first, "@zip", Lenient); err != nil {
		t.Fatal(err)
	}
	// the resolution "zip_foo" is keyed by (ancestors, search) only
	_, found, err := c.FindKey(second, "@zip", Lenient)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Errorf("expected memoized zip_foo resolution to miss in the second record")
	}
	if _, n := c.Len(); n != 1 {
		t.Errorf("expected 1 fuzzy entry, got %d", n)
	}
	c.Clear()
	got, found, err := c.FindKey(second, "@zip", Lenient)
	if err != nil {
		t.Fatal(err)
	}
	if !found || js(t, got) != "3" {
		t.Errorf("expected zip_zzz after Clear, got %s (found %v)", js(t, got), found)
	}
}

func TestFuzzyCacheScopedByAncestors(t *testing.T) {
	c := NewCache()
	data := mustParse(t, `{"a":{"name_x":1},"b":{"name_y":2}}`)
	got, _, err := c.FindKey(data, "@a/name", Lenient)
	if err != nil {
		t.Fatal(err)
	}
	if js(t, got) != "1" {
		t.Errorf("want 1 got %s", js(t, got))
	}
	got, _, err = c.FindKey(data, "@b/name", Lenient)
	if err != nil {
		t.Fatal(err)
	}
	if js(t, got) != "2" {
		t.Errorf("want 2 got %s", js(t, got))
	}
}

func TestNonNumericIndex(t *testing.T) {
	c := NewCache()
	data := mustParse(t, `{"arr":[1,2,3]}`)
	for _, p := range []Policy{Strict, Lenient, Vivify} {
		_, _, err := c.FindKey(data, "arr/notanumber", p)
		if err == nil {
			t.Fatalf("%s: expected error", p)
		}
		if !errors.Is(err, ErrBadPath) {
			t.Errorf("%s: expected ErrBadPath, got %v", p, err)
		}
		if !strings.Contains(err.Error(), "Cannot select non-numeric index") {
			t.Errorf("%s: unexpected message %q", p, err)
		}
	}
}

func TestScalarDescent(t *testing.T) {
	c := NewCache()
	data := mustParse(t, `{"a":"str"}`)
	for _, p := range []Policy{Strict, Lenient, Vivify} {
		_, _, err := c.FindKey(data, "a/b", p)
		if !errors.Is(err, ErrBadPath) {
			t.Fatalf("%s: expected ErrBadPath, got %v", p, err)
		}
		if !strings.Contains(err.Error(), `Cannot look for b in scalar: "str"`) {
			t.Errorf("%s: unexpected message %q", p, err)
		}
	}
	if err := c.SetKey(data, "a/b", record.FromInt(1)); !errors.Is(err, ErrBadPath) {
		t.Errorf("SetKey: expected ErrBadPath, got %v", err)
	}
}

func TestStrictPolicy(t *testing.T) {
	c := NewCache()
	data := mustParse(t, `{"a":{"b":null}}`)
	for _, spec := range []string{"x", "a/x", "x/y", "a/b/c"} {
		_, _, err := c.FindKey(data, spec, Strict)
		if !errors.Is(err, ErrNoSuchKey) {
			t.Errorf("%s: expected ErrNoSuchKey, got %v", spec, err)
		}
	}
	if _, _, err := c.FindKey(data, "a/b", Strict); err != nil {
		t.Errorf("a/b holds null and is present: %v", err)
	}
}

func TestFindVivifies(t *testing.T) {
	c := NewCache()
	data := mustParse(t, `{}`)
	_, found, err := c.FindKey(data, "a/#0/b", Vivify)
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Errorf("leaf should not be found")
	}
	if diff := cmp.Diff(`{"a":[{}]}`, js(t, data)); diff != "" {
		t.Errorf("vivified record mismatch (-want +got):\n%s", diff)
	}

	data = mustParse(t, `{}`)
	if _, _, err := c.FindKey(data, "a/b", Lenient); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(`{}`, js(t, data)); diff != "" {
		t.Errorf("lenient lookup modified record (-want +got):\n%s", diff)
	}
}

func TestSetKey(t *testing.T) {
	tests := []struct {
		name string
		data string
		spec string
		val  *record.Node
		want string
	}{
		{name: "deep object", data: `{}`, spec: "a/b/c", val: record.FromString("deep"), want: `{"a":{"b":{"c":"deep"}}}`},
		{name: "array vivify", data: `{}`, spec: "a/#0", val: record.FromString("x"), want: `{"a":["x"]}`},
		{name: "array grows", data: `{"a":[1]}`, spec: "a/#2", val: record.FromInt(3), want: `{"a":[1,null,3]}`},
		{name: "simple replace keeps order", data: `{"a":1,"b":2}`, spec: "a", val: record.FromInt(9), want: `{"a":9,"b":2}`},
		{name: "simple append", data: `{"a":1}`, spec: "z", val: record.FromBool(false), want: `{"a":1,"z":false}`},
		{name: "null intermediate replaced", data: `{"a":null}`, spec: "a/b", val: record.FromInt(1), want: `{"a":{"b":1}}`},
		{name: "fuzzy set", data: `{"Stats":{"count":1}}`, spec: "@st/co", val: record.FromInt(2), want: `{"Stats":{"count":2}}`},
		{name: "escaped", data: `{}`, spec: `x\/y/z`, val: record.Null(), want: `{"x/y":{"z":null}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := mustParse(t, tt.data)
			if err := NewCache().SetKey(data, tt.spec, tt.val); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, js(t, data)); diff != "" {
				t.Errorf("record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSetThenFind(t *testing.T) {
	specs := []string{"a", "a/b", "a/#0", "a/#2/b/#1", `a\/b/c`, "x/y/z/w"}
	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			c := NewCache()
			data := mustParse(t, `{"keep":true}`)
			v := record.FromString("v:" + spec)
			if err := c.SetKey(data, spec, v); err != nil {
				t.Fatal(err)
			}
			got, found, err := c.FindKey(data, spec, Strict)
			if err != nil {
				t.Fatal(err)
			}
			if !found || got != v {
				t.Errorf("expected the stored node back, got %s", js(t, got))
			}
		})
	}
}

func TestSimpleFastPathMatchesGeneral(t *testing.T) {
	datas := []string{`{"a":1}`, `{"b":1}`, `[1,2]`, `"scalar"`, `{"a":{"x":1}}`}
	for _, d := range datas {
		for _, p := range []Policy{Strict, Lenient} {
			fast, fastFound, fastErr := resolveSimple(mustParse(t, d), "a", p)
			general := &KeySpec{spec: "a", keys: []string{"a"}}
			slow, slowFound, _, slowErr := general.walk(mustParse(t, d), p)
			if (fastErr == nil) != (slowErr == nil) {
				t.Errorf("%s %s: error mismatch fast=%v general=%v", d, p, fastErr, slowErr)
				continue
			}
			if fastErr != nil && fastErr.Error() != slowErr.Error() {
				t.Errorf("%s %s: message mismatch fast=%q general=%q", d, p, fastErr, slowErr)
			}
			if fastFound != slowFound || js(t, fast) != js(t, slow) {
				t.Errorf("%s %s: result mismatch fast=%s general=%s", d, p, js(t, fast), js(t, slow))
			}
		}
	}
}

func TestFindKeyBypassesCache(t *testing.T) {
	c := NewCache()
	if _, _, err := c.FindKey(mustParse(t, `{"a":1}`), "a", Lenient); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.Len(); n != 0 {
		t.Errorf("simple keys should not be memoized, got %d specs", n)
	}
}

func TestHasAndKeyList(t *testing.T) {
	c := NewCache()
	data := mustParse(t, `{"Hostname":"h","lat":[{"p50":1}],"n":null}`)
	tests := []struct {
		spec string
		has  bool
		keys []string
	}{
		{spec: "Hostname", has: true, keys: []string{"Hostname"}},
		{spec: "@host", has: true, keys: []string{"Hostname"}},
		{spec: "@la/#0/p5", has: true, keys: []string{"lat", "#0", "p50"}},
		{spec: "lat/#1", has: false},
		{spec: "n", has: true, keys: []string{"n"}},
		{spec: "n/x", has: false},
		{spec: "missing", has: false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			ks := c.Parse(tt.spec)
			has, err := ks.Has(data)
			if err != nil {
				t.Fatal(err)
			}
			if has != tt.has {
				t.Errorf("has: want %v got %v", tt.has, has)
			}
			keys, err := ks.KeyList(data)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.keys, keys); diff != "" {
				t.Errorf("key list mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if _, err := c.Parse("lat/x").Has(data); !errors.Is(err, ErrBadPath) {
		t.Errorf("structural errors must propagate from Has, got %v", err)
	}
}

func TestJoinKeys(t *testing.T) {
	got := JoinKeys([]string{"a/b", "#0", "c"})
	if diff := cmp.Diff(`a\/b/#0/c`, got); diff != "" {
		t.Errorf("join mismatch (-want +got):\n%s", diff)
	}
	ks := NoCache().Parse(got)
	if diff := cmp.Diff([]string{"a/b", "#0", "c"}, ks.Keys()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSetKeyIndexTooFar(t *testing.T) {
	c := NewCache()
	data := mustParse(t, `{"a":[]}`)
	for _, spec := range []string{"a/#500000000", "b/#500000000/c"} {
		if err := c.SetKey(data, spec, record.FromInt(1)); !errors.Is(err, ErrBadPath) {
			t.Errorf("%s: expected ErrBadPath, got %v", spec, err)
		}
	}
	a, _ := data.Get("a")
	if len(a.Values) != 0 {
		t.Errorf("array grew to %d", len(a.Values))
	}
	if err := c.SetKey(data, "a/#3", record.FromInt(1)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(`{"a":[null,null,null,1]}`, js(t, data)); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

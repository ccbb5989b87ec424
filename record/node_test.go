package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseKeepsOrder(t *testing.T) {
	in := `{"z":1,"a":{"y":[1,2.5,"x"],"b":null},"m":true}`
	n, err := Parse([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"z", "a", "m"}, n.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	out, err := n.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, string(out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{`{"a":`, `{"a":1} 2`, `[1,`, ``} {
		_, err := Parse([]byte(in))
		if err == nil {
			t.Errorf("%q: expected error", in)
			continue
		}
		if in != "" && !errors.Is(err, ErrParse) {
			t.Errorf("%q: expected ErrParse, got %v", in, err)
		}
	}
}

func TestDecodeStream(t *testing.T) {
	dec := json.NewDecoder(bytes.NewReader([]byte("{\"a\":1}\n{\"a\":2}\n[3]")))
	dec.UseNumber()
	var got []string
	for {
		n, err := Decode(dec)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		d, _ := n.MarshalJSON()
		got = append(got, string(d))
	}
	if diff := cmp.Diff([]string{`{"a":1}`, `{"a":2}`, `[3]`}, got); diff != "" {
		t.Errorf("stream mismatch (-want +got):\n%s", diff)
	}
}

func TestSetDeleteOrder(t *testing.T) {
	n := NewObject()
	n.Set("b", FromInt(1))
	n.Set("a", FromInt(2))
	n.Set("b", FromInt(3))
	if diff := cmp.Diff([]string{"b", "a"}, n.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
	v, ok := n.Get("b")
	if !ok || v.Number != "3" {
		t.Errorf("expected replaced value 3, got %v", v)
	}
	if !n.Delete("b") || n.Delete("b") {
		t.Errorf("delete should succeed exactly once")
	}
	if diff := cmp.Diff([]string{"a"}, n.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSetIndexGrows(t *testing.T) {
	a := NewArray()
	a.SetIndex(2, FromString("x"))
	d, _ := a.MarshalJSON()
	if diff := cmp.Diff(`[null,null,"x"]`, string(d)); diff != "" {
		t.Errorf("array mismatch (-want +got):\n%s", diff)
	}
	if _, ok := a.Index(3); ok {
		t.Errorf("index 3 should be out of range")
	}
	if _, ok := a.Index(-1); ok {
		t.Errorf("negative index should be out of range")
	}
}

func TestKeyString(t *testing.T) {
	tests := []struct {
		node *Node
		want string
	}{
		{nil, ""},
		{Null(), ""},
		{FromString("a b"), "a b"},
		{FromNumber("1.50"), "1.50"},
		{FromInt(-3), "-3"},
		{FromBool(true), "true"},
		{FromSlice([]*Node{FromInt(1), FromString("x")}), `[1,"x"]`},
	}
	for _, tt := range tests {
		if got := tt.node.KeyString(); got != tt.want {
			t.Errorf("want %q got %q", tt.want, got)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	n, err := Parse([]byte(`{"a":{"b":[1]}}`))
	if err != nil {
		t.Fatal(err)
	}
	c := n.Clone()
	if !n.Equal(c) {
		t.Fatalf("clone not equal")
	}
	inner, _ := c.Get("a")
	inner.Set("b", FromInt(2))
	if n.Equal(c) {
		t.Errorf("mutating clone changed original")
	}
}

func TestEqualKeyOrder(t *testing.T) {
	a, _ := Parse([]byte(`{"a":1,"b":2}`))
	b, _ := Parse([]byte(`{"b":2,"a":1}`))
	if a.Equal(b) {
		t.Errorf("key order should be significant")
	}
	if !Null().Equal(nil) {
		t.Errorf("nil and null should compare equal")
	}
}

func TestToAny(t *testing.T) {
	n, err := Parse([]byte(`{"i":3,"f":1.5,"s":"x","b":false,"n":null,"a":[1]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"i": int64(3),
		"f": 1.5,
		"s": "x",
		"b": false,
		"n": nil,
		"a": []any{int64(1)},
	}
	if diff := cmp.Diff(want, n.ToAny()); diff != "" {
		t.Errorf("ToAny mismatch (-want +got):\n%s", diff)
	}
}

func TestQuoteNoHTMLEscape(t *testing.T) {
	if got := Quote("<a&b>"); got != `"<a&b>"` {
		t.Errorf("got %s", got)
	}
}

func TestTypeText(t *testing.T) {
	for _, ty := range Types() {
		d, err := ty.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Type
		if err := back.UnmarshalText(d); err != nil {
			t.Fatal(err)
		}
		if back != ty {
			t.Errorf("%s: got %s", ty, back)
		}
	}
}

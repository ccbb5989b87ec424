package parse

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/signadot/recs/record"
)

func readAll(t *testing.T, r io.Reader, opts ...ParseOption) []string {
	t.Helper()
	recs, err := All(NewReader(r, opts...))
	if err != nil {
		t.Fatal(err)
	}
	res := make([]string, len(recs))
	for i, rec := range recs {
		d, err := rec.MarshalJSON()
		if err != nil {
			t.Fatal(err)
		}
		res[i] = string(d)
	}
	return res
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "lines",
			in:   "{\"b\":1,\"a\":2}\n{\"x\":[1,2.50]}\n",
			want: []string{`{"b":1,"a":2}`, `{"x":[1,2.50]}`},
		},
		{
			name: "concatenated",
			in:   `{"a":1}{"a":2} {"a":3}`,
			want: []string{`{"a":1}`, `{"a":2}`, `{"a":3}`},
		},
		{
			name: "pretty",
			in:   "{\n  \"a\": {\n    \"b\": null\n  }\n}\n",
			want: []string{`{"a":{"b":null}}`},
		},
		{
			name: "empty",
			in:   "  \n",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readAll(t, strings.NewReader(tt.in))
			if len(tt.want) == 0 && len(got) == 0 {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadJSONError(t *testing.T) {
	rd := NewReader(strings.NewReader(`{"a":1} {"a":`))
	if _, err := rd.Next(); err != nil {
		t.Fatal(err)
	}
	_, err := rd.Next()
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if !strings.Contains(err.Error(), "record 2") {
		t.Errorf("expected record position in %q", err)
	}
	if rd.Count() != 1 {
		t.Errorf("count: got %d", rd.Count())
	}
}

func TestReadYAML(t *testing.T) {
	in := "b: 1\na:\n  z: [x, 2.5]\n  y: true\n---\nname: n\nnone: null\nneg: -3\n"
	got := readAll(t, strings.NewReader(in), ParseYAML())
	want := []string{
		`{"b":1,"a":{"z":["x",2.5],"y":true}}`,
		`{"name":"n","none":null,"neg":-3}`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

const sample = "{\"k\":\"v\",\"n\":1}\n{\"k\":\"w\",\"n\":2}\n"

func compressWith(t *testing.T, codec Codec, data string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	var w io.WriteCloser
	switch codec {
	case CodecGzip:
		w = gzip.NewWriter(buf)
	case CodecZstd:
		zw, err := zstd.NewWriter(buf)
		if err != nil {
			t.Fatal(err)
		}
		w = zw
	case CodecLZ4:
		w = lz4.NewWriter(buf)
	case CodecS2:
		w = s2.NewWriter(buf)
	default:
		return []byte(data)
	}
	if _, err := io.WriteString(w, data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOpenCompressed(t *testing.T) {
	dir := t.TempDir()
	want := []string{`{"k":"v","n":1}`, `{"k":"w","n":2}`}
	for _, codec := range []Codec{CodecNone, CodecGzip, CodecZstd, CodecLZ4, CodecS2} {
		name := "plain"
		if codec != CodecNone {
			name = string(codec)
		}
		t.Run(name, func(t *testing.T) {
			data := compressWith(t, codec, sample)
			if got := DetectCodec(data, "x"); got != codec {
				t.Errorf("detected %q, want %q", got, codec)
			}
			path := filepath.Join(dir, name+".data")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				t.Fatal(err)
			}
			rc, err := Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer rc.Close()
			if diff := cmp.Diff(want, readAll(t, rc)); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetectCodecByExtension(t *testing.T) {
	tests := map[string]Codec{
		"a.json":    CodecNone,
		"a.json.gz": CodecGzip,
		"a.ZST":     CodecZstd,
		"a.lz4":     CodecLZ4,
		"a.sz":      CodecS2,
	}
	for name, want := range tests {
		if got := DetectCodec(nil, name); got != want {
			t.Errorf("%s: got %q want %q", name, got, want)
		}
	}
	if got := DetectCodec([]byte{0x1f, 0x8b, 0}, "a.json"); got != CodecGzip {
		t.Errorf("magic should win over extension, got %q", got)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestFromYAMLFallbacks(t *testing.T) {
	got := fromYAML(map[string]any{"b": uint64(18446744073709551615), "a": 1})
	d, _ := got.MarshalJSON()
	if diff := cmp.Diff(`{"a":1,"b":18446744073709551615}`, string(d)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if !fromYAML(nil).Equal(record.Null()) {
		t.Errorf("nil should be null")
	}
}

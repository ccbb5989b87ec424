package encode

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/signadot/recs/format"
	"github.com/signadot/recs/record"
)

// Writer writes records to an underlying writer.
type Writer struct {
	w  *bufio.Writer
	es *EncState
	n  int
}

func NewWriter(w io.Writer, opts ...EncodeOption) *Writer {
	es := &EncState{}
	for _, opt := range opts {
		opt(es)
	}
	return &Writer{w: bufio.NewWriter(w), es: es}
}

// Write writes rec and flushes it to the underlying writer.
func (w *Writer) Write(rec *record.Node) error {
	if err := Encode(rec, w.w, w.n == 0, w.es); err != nil {
		return err
	}
	w.n++
	return w.w.Flush()
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.n
}

// Encode writes a single record with the settings of es. first tells
// whether rec starts the stream.
func Encode(rec *record.Node, w io.Writer, first bool, es *EncState) error {
	switch es.format {
	case format.YAMLFormat:
		d, err := yaml.MarshalWithOptions(ToYAML(rec), yaml.UseLiteralStyleIfMultiline(true))
		if err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		if !first {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		_, err = w.Write(d)
		return err
	default:
		buf := &bytes.Buffer{}
		writeJSON(buf, rec, es, 0)
		buf.WriteByte('\n')
		_, err := w.Write(buf.Bytes())
		return err
	}
}

// String renders rec as compact JSON.
func String(rec *record.Node) string {
	buf := &bytes.Buffer{}
	writeJSON(buf, rec, &EncState{}, 0)
	return buf.String()
}

func writeJSON(buf *bytes.Buffer, n *record.Node, es *EncState, depth int) {
	c := es.Color
	if c == nil {
		c = plain
	}
	if n.IsNull() {
		buf.WriteString(c(record.NullType, ValueColor, "null"))
		return
	}
	switch n.Type {
	case record.StringType:
		buf.WriteString(c(n.Type, ValueColor, record.Quote(n.String)))
	case record.NumberType:
		buf.WriteString(c(n.Type, ValueColor, n.Number))
	case record.BoolType:
		v := "false"
		if n.Bool {
			v = "true"
		}
		buf.WriteString(c(n.Type, ValueColor, v))
	case record.ArrayType:
		buf.WriteString(c(n.Type, SepColor, "["))
		for i, v := range n.Values {
			if i > 0 {
				buf.WriteString(c(n.Type, SepColor, ","))
			}
			newline(buf, es, depth+1)
			writeJSON(buf, v, es, depth+1)
		}
		if len(n.Values) > 0 {
			newline(buf, es, depth)
		}
		buf.WriteString(c(n.Type, SepColor, "]"))
	case record.ObjectType:
		buf.WriteString(c(n.Type, SepColor, "{"))
		for i, f := range n.Fields {
			if i > 0 {
				buf.WriteString(c(n.Type, SepColor, ","))
			}
			newline(buf, es, depth+1)
			buf.WriteString(c(n.Type, FieldColor, record.Quote(f)))
			sep := ":"
			if es.indent > 0 {
				sep = ": "
			}
			buf.WriteString(c(n.Type, SepColor, sep))
			writeJSON(buf, n.Values[i], es, depth+1)
		}
		if len(n.Fields) > 0 {
			newline(buf, es, depth)
		}
		buf.WriteString(c(n.Type, SepColor, "}"))
	}
}

func newline(buf *bytes.Buffer, es *EncState, depth int) {
	if es.indent <= 0 {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(" ", es.indent*depth))
}

func plain(_ record.Type, _ ColorAttr, s string) string { return s }

// ToYAML converts rec to values goccy/go-yaml marshals with key order
// kept.
func ToYAML(rec *record.Node) any {
	if rec.IsNull() {
		return nil
	}
	switch rec.Type {
	case record.ObjectType:
		res := make(yaml.MapSlice, len(rec.Fields))
		for i, f := range rec.Fields {
			res[i] = yaml.MapItem{Key: f, Value: ToYAML(rec.Values[i])}
		}
		return res
	case record.ArrayType:
		res := make([]any, len(rec.Values))
		for i, v := range rec.Values {
			res[i] = ToYAML(v)
		}
		return res
	default:
		return rec.ToAny()
	}
}

package encode

import (
	"github.com/signadot/recs/format"
	"github.com/signadot/recs/record"
)

// EncState holds the settings of a Writer.
type EncState struct {
	format format.Format
	indent int
	Color  func(record.Type, ColorAttr, string) string
}

type EncodeOption func(*EncState)

func EncodeFormat(f format.Format) EncodeOption {
	return func(es *EncState) { es.format = f }
}

// FormatFromOpts extracts the format from encode options.
func FormatFromOpts(opts ...EncodeOption) format.Format {
	es := &EncState{}
	for _, opt := range opts {
		opt(es)
	}
	return es.format
}

// EncodeColors colorizes JSON output. A nil c leaves output plain.
func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) {
		if c == nil {
			es.Color = nil
			return
		}
		es.Color = c.Color
	}
}

// Indent pretty prints JSON records with n spaces per level.
func Indent(n int) EncodeOption {
	return func(es *EncState) { es.indent = n }
}

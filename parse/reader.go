package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/signadot/recs/format"
	"github.com/signadot/recs/record"
)

var ErrParse = record.ErrParse

// Reader reads records one at a time from a stream.
type Reader struct {
	next func() (*record.Node, error)
	n    int
}

// NewReader returns a Reader decoding r. JSON is the default format.
func NewReader(r io.Reader, opts ...ParseOption) *Reader {
	pOpts := &parseOpts{}
	for _, f := range opts {
		f(pOpts)
	}
	rd := &Reader{}
	switch pOpts.format {
	case format.YAMLFormat:
		dec := yaml.NewDecoder(r, yaml.UseOrderedMap())
		rd.next = func() (*record.Node, error) {
			var v any
			if err := dec.Decode(&v); err != nil {
				if errors.Is(err, io.EOF) {
					return nil, io.EOF
				}
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			return fromYAML(v), nil
		}
	default:
		dec := json.NewDecoder(r)
		dec.UseNumber()
		rd.next = func() (*record.Node, error) {
			return record.Decode(dec)
		}
	}
	return rd
}

// Next returns the next record, or io.EOF at the end of the stream.
func (r *Reader) Next() (*record.Node, error) {
	rec, err := r.next()
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("record %d: %w", r.n+1, err)
	}
	r.n++
	return rec, nil
}

// Count returns the number of records read so far.
func (r *Reader) Count() int {
	return r.n
}

// All reads the remaining records of r.
func All(r *Reader) ([]*record.Node, error) {
	var res []*record.Node
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		res = append(res, rec)
	}
}

package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrParse = errors.New("parse error")
)

// Parse decodes a single JSON value, keeping object key order.
func Parse(d []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	res, err := Decode(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after value", ErrParse)
	}
	return res, nil
}

// Decode reads the next JSON value from dec. The decoder should have
// UseNumber set so numbers keep their text. io.EOF is returned unwrapped
// when the stream has no more values.
func Decode(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return decodeTok(dec, tok)
}

func decodeTok(dec *json.Decoder, tok json.Token) (*Node, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return FromBool(t), nil
	case string:
		return FromString(t), nil
	case json.Number:
		return FromNumber(t.String()), nil
	case float64:
		return FromFloat(t), nil
	case json.Delim:
		switch t {
		case '{':
			res := NewObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrParse, err)
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("%w: object key %v is not a string", ErrParse, kt)
				}
				v, err := decodeNext(dec)
				if err != nil {
					return nil, err
				}
				res.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			return res, nil
		case '[':
			res := NewArray()
			for dec.More() {
				v, err := decodeNext(dec)
				if err != nil {
					return nil, err
				}
				res.Append(v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			return res, nil
		}
	}
	return nil, fmt.Errorf("%w: unexpected token %v", ErrParse, tok)
}

func decodeNext(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return decodeTok(dec, tok)
}

func (y *Node) MarshalJSON() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := y.writeJSON(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (y *Node) UnmarshalJSON(d []byte) error {
	res, err := Parse(d)
	if err != nil {
		return err
	}
	*y = *res
	return nil
}

func (y *Node) writeJSON(buf *bytes.Buffer) error {
	if y.IsNull() {
		buf.WriteString("null")
		return nil
	}
	switch y.Type {
	case StringType:
		buf.WriteString(Quote(y.String))
	case NumberType:
		buf.WriteString(y.Number)
	case BoolType:
		if y.Bool {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case ArrayType:
		buf.WriteByte('[')
		for i, v := range y.Values {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := v.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case ObjectType:
		buf.WriteByte('{')
		for i, f := range y.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(Quote(f))
			buf.WriteByte(':')
			if err := y.Values[i].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("cannot encode type %s", y.Type)
	}
	return nil
}

// Quote returns s as a JSON string literal without HTML escaping.
func Quote(s string) string {
	sb := &strings.Builder{}
	enc := json.NewEncoder(sb)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

package record

import (
	"maps"
	"slices"
	"strconv"
)

// Node is a single value in a record. Objects keep their keys in Fields and
// the corresponding values at the same index in Values; arrays use Values
// only. Numbers keep their JSON text in Number.
type Node struct {
	Type   Type
	Fields []string
	Values []*Node

	String string
	Bool   bool
	Number string
}

func Null() *Node {
	return &Node{Type: NullType}
}

func FromString(v string) *Node {
	return &Node{Type: StringType, String: v}
}

func FromInt(v int64) *Node {
	return &Node{Type: NumberType, Number: strconv.FormatInt(v, 10)}
}

func FromFloat(f float64) *Node {
	return &Node{Type: NumberType, Number: strconv.FormatFloat(f, 'g', -1, 64)}
}

// FromNumber wraps already formatted JSON number text.
func FromNumber(text string) *Node {
	return &Node{Type: NumberType, Number: text}
}

func FromBool(v bool) *Node {
	return &Node{Type: BoolType, Bool: v}
}

func NewObject() *Node {
	return &Node{Type: ObjectType}
}

func NewArray() *Node {
	return &Node{Type: ArrayType}
}

func FromSlice(vs []*Node) *Node {
	res := &Node{Type: ArrayType, Values: make([]*Node, len(vs))}
	copy(res.Values, vs)
	return res
}

// FromMap builds an object whose keys are in sorted order.
func FromMap(m map[string]*Node) *Node {
	res := &Node{Type: ObjectType}
	for _, key := range slices.Sorted(maps.Keys(m)) {
		res.Fields = append(res.Fields, key)
		res.Values = append(res.Values, m[key])
	}
	return res
}

func ToMap(node *Node) map[string]*Node {
	if node.Type != ObjectType {
		return nil
	}
	res := make(map[string]*Node, len(node.Fields))
	for i, f := range node.Fields {
		res[f] = node.Values[i]
	}
	return res
}

func (y *Node) IsLeaf() bool {
	return y.Type.IsLeaf()
}

// IsNull is true for a nil node as well as an explicit null.
func (y *Node) IsNull() bool {
	return y == nil || y.Type == NullType
}

func (y *Node) fieldIndex(key string) int {
	for i, f := range y.Fields {
		if f == key {
			return i
		}
	}
	return -1
}

// Get returns the value of field key of an object.
func (y *Node) Get(key string) (*Node, bool) {
	if y == nil || y.Type != ObjectType {
		return nil, false
	}
	i := y.fieldIndex(key)
	if i == -1 {
		return nil, false
	}
	return y.Values[i], true
}

func (y *Node) Has(key string) bool {
	_, ok := y.Get(key)
	return ok
}

// Set replaces the value of an existing field in place or appends a new one.
func (y *Node) Set(key string, v *Node) {
	if i := y.fieldIndex(key); i != -1 {
		y.Values[i] = v
		return
	}
	y.Fields = append(y.Fields, key)
	y.Values = append(y.Values, v)
}

func (y *Node) Delete(key string) bool {
	i := y.fieldIndex(key)
	if i == -1 {
		return false
	}
	y.Fields = slices.Delete(y.Fields, i, i+1)
	y.Values = slices.Delete(y.Values, i, i+1)
	return true
}

// Keys returns a copy of the object's keys in order.
func (y *Node) Keys() []string {
	return slices.Clone(y.Fields)
}

func (y *Node) Len() int {
	return len(y.Values)
}

// Index returns element i of an array.
func (y *Node) Index(i int) (*Node, bool) {
	if y == nil || y.Type != ArrayType || i < 0 || i >= len(y.Values) {
		return nil, false
	}
	return y.Values[i], true
}

// SetIndex assigns element i of an array, growing it with nulls as needed.
// Callers bound i; keyspec refuses indexes far past the end.
func (y *Node) SetIndex(i int, v *Node) {
	for len(y.Values) <= i {
		y.Values = append(y.Values, Null())
	}
	y.Values[i] = v
}

func (y *Node) Append(v *Node) {
	y.Values = append(y.Values, v)
}

func (y *Node) Clone() *Node {
	if y == nil {
		return nil
	}
	res := &Node{
		Type:   y.Type,
		String: y.String,
		Bool:   y.Bool,
		Number: y.Number,
	}
	if y.Fields != nil {
		res.Fields = slices.Clone(y.Fields)
	}
	if y.Values != nil {
		res.Values = make([]*Node, len(y.Values))
		for i, v := range y.Values {
			res.Values[i] = v.Clone()
		}
	}
	return res
}

// Equal compares two trees structurally. Object key order is significant.
func (y *Node) Equal(o *Node) bool {
	if y.IsNull() || o.IsNull() {
		return y.IsNull() && o.IsNull()
	}
	if y.Type != o.Type {
		return false
	}
	switch y.Type {
	case StringType:
		return y.String == o.String
	case BoolType:
		return y.Bool == o.Bool
	case NumberType:
		return y.Number == o.Number
	case ObjectType:
		if !slices.Equal(y.Fields, o.Fields) {
			return false
		}
	}
	if len(y.Values) != len(o.Values) {
		return false
	}
	for i := range y.Values {
		if !y.Values[i].Equal(o.Values[i]) {
			return false
		}
	}
	return true
}

// KeyString renders a value as group key text. Missing and null values
// render as the empty string.
func (y *Node) KeyString() string {
	if y.IsNull() {
		return ""
	}
	switch y.Type {
	case StringType:
		return y.String
	case NumberType:
		return y.Number
	case BoolType:
		return strconv.FormatBool(y.Bool)
	}
	d, err := y.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(d)
}

// ToAny converts the tree to plain Go values: map[string]any, []any,
// int64 or float64, string, bool and nil.
func (y *Node) ToAny() any {
	if y.IsNull() {
		return nil
	}
	switch y.Type {
	case StringType:
		return y.String
	case BoolType:
		return y.Bool
	case NumberType:
		if i, err := strconv.ParseInt(y.Number, 10, 64); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(y.Number, 64)
		return f
	case ArrayType:
		res := make([]any, len(y.Values))
		for i, v := range y.Values {
			res[i] = v.ToAny()
		}
		return res
	default:
		res := make(map[string]any, len(y.Fields))
		for i, f := range y.Fields {
			res[f] = y.Values[i].ToAny()
		}
		return res
	}
}

package keyspec

import (
	"fmt"

	"github.com/signadot/recs/record"
)

// FindKey resolves spec in data using DefaultCache.
func FindKey(data *record.Node, spec string, p Policy) (*record.Node, bool, error) {
	return DefaultCache.FindKey(data, spec, p)
}

// SetKey assigns value at spec in data using DefaultCache.
func SetKey(data *record.Node, spec string, value *record.Node) error {
	return DefaultCache.SetKey(data, spec, value)
}

// FindKey resolves spec in data. Simple keys are looked up directly without
// constructing or memoizing a KeySpec.
func (c *Cache) FindKey(data *record.Node, spec string, p Policy) (*record.Node, bool, error) {
	if IsSimple(spec) {
		return resolveSimple(data, spec, p)
	}
	return c.Parse(spec).Resolve(data, p)
}

// SetKey assigns value at spec in data, vivifying intermediate containers.
// Simple keys are assigned directly.
func (c *Cache) SetKey(data *record.Node, spec string, value *record.Node) error {
	if IsSimple(spec) {
		return setSimple(data, spec, value)
	}
	return c.Parse(spec).SetValue(data, value)
}

func resolveSimple(data *record.Node, key string, p Policy) (*record.Node, bool, error) {
	if data.IsNull() {
		if p == Strict {
			return nil, false, noSuchKey(key)
		}
		return nil, false, nil
	}
	switch data.Type {
	case record.ObjectType:
		v, ok := data.Get(key)
		if !ok {
			if p == Strict {
				return nil, false, noSuchKey(key)
			}
			return nil, false, nil
		}
		return v, true, nil
	case record.ArrayType:
		return nil, false, nonNumericErr(key)
	default:
		return nil, false, scalarErr(key, data)
	}
}

func setSimple(data *record.Node, key string, value *record.Node) error {
	if data == nil {
		return fmt.Errorf("%w: cannot set %s in nil record", ErrBadPath, key)
	}
	switch data.Type {
	case record.ObjectType:
		data.Set(key, value)
		return nil
	case record.ArrayType:
		return nonNumericErr(key)
	default:
		return scalarErr(key, data)
	}
}

package clumper

import (
	"github.com/signadot/recs/keyspec"
	"github.com/signadot/recs/record"
)

func keyPerfectEntry() *Entry {
	return &Entry{
		Name:      "keyperfect",
		ArgCounts: []int{1},
		Short:     "clump records by the value for a key",
		Long:      "Usage: keyperfect,<keyspec>\n   Clump records by the value for a key.\n",
		New: func(cache *keyspec.Cache, args ...string) (Clumper, error) {
			return KeyPerfect(cache, args[0]), nil
		},
	}
}

func cubeKeyPerfectEntry() *Entry {
	return &Entry{
		Name:      "cubekeyperfect",
		ArgCounts: []int{1},
		Short:     "clump records by the value for a key, additionally cubing them",
		Long:      "Usage: cubekeyperfect,<keyspec>\n   Clump records by the value for a key and additionally produce an \"ALL\" slice.\n",
		New: func(cache *keyspec.Cache, args ...string) (Clumper, error) {
			return CubeKeyPerfect(cache, args[0]), nil
		},
	}
}

// All is the value of the rollup group in cube modes.
const All = "ALL"

// Expander maps the key value of a record to the values of every group the
// record belongs to.
type Expander func(v *record.Node) []*record.Node

// Identity puts a record in the group of its own value.
func Identity(v *record.Node) []*record.Node {
	return []*record.Node{v}
}

// Cube puts a record in the group of its own value and in the "ALL" group.
func Cube(v *record.Node) []*record.Node {
	return []*record.Node{v, record.FromString(All)}
}

// KeyPerfect groups records by the value of field regardless of input
// order. Groups stay open until the end of the stream and are closed in the
// order they were first seen.
func KeyPerfect(cache *keyspec.Cache, field string) Clumper {
	return KeyPerfectWith("keyperfect", cache, field, Identity)
}

// CubeKeyPerfect is KeyPerfect with every record also pushed into a
// group whose value is "ALL".
func CubeKeyPerfect(cache *keyspec.Cache, field string) Clumper {
	return KeyPerfectWith("cubekeyperfect", cache, field, Cube)
}

// KeyPerfectWith is KeyPerfect with group membership given by expand.
func KeyPerfectWith(name string, cache *keyspec.Cache, field string, expand Expander) Clumper {
	return Bind[*perfectState](name, &keyPerfect{cache: cache, field: field, expand: expand})
}

type keyPerfect struct {
	cache  *keyspec.Cache
	field  string
	expand Expander
}

type perfectState struct {
	order  []string
	groups map[string]Group
}

func (k *keyPerfect) InitState() *perfectState {
	return &perfectState{groups: map[string]Group{}}
}

func (k *keyPerfect) AcceptRecord(s *perfectState, rec *record.Node, cb Callback) error {
	v, _, err := keyValue(k.cache, rec, k.field)
	if err != nil {
		return err
	}
	for _, gv := range k.expand(v) {
		key := gv.KeyString()
		g, ok := s.groups[key]
		if !ok {
			g, err = cb.Begin(bucketOf(k.field, gv))
			if err != nil {
				return err
			}
			s.groups[key] = g
			s.order = append(s.order, key)
		}
		if err := g.Push(rec); err != nil {
			return err
		}
	}
	return nil
}

func (k *keyPerfect) StreamDone(s *perfectState, _ Callback) error {
	order := s.order
	s.order = nil
	for _, key := range order {
		g := s.groups[key]
		delete(s.groups, key)
		if err := g.End(); err != nil {
			return err
		}
	}
	return nil
}

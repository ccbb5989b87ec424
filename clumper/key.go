package clumper

import (
	"github.com/signadot/recs/debug"
	"github.com/signadot/recs/keyspec"
	"github.com/signadot/recs/record"
)

func keyEntry() *Entry {
	return &Entry{
		Name:      "key",
		ArgCounts: []int{1},
		Short:     "clump records by adjacent key values",
		Long:      "Usage: key,<keyspec>\n   Clump records by adjacent matching key values.\n",
		New: func(cache *keyspec.Cache, args ...string) (Clumper, error) {
			return KeyAdjacent(cache, args[0]), nil
		},
	}
}

// keyValue returns the value of field in rec and its group key text. A
// missing or null value is the empty string.
func keyValue(cache *keyspec.Cache, rec *record.Node, field string) (*record.Node, string, error) {
	v, found, err := cache.FindKey(rec, field, keyspec.Lenient)
	if err != nil {
		return nil, "", err
	}
	if !found || v.IsNull() {
		return record.FromString(""), "", nil
	}
	return v.Clone(), v.KeyString(), nil
}

// KeyAdjacent groups runs of records sharing the value of field. Input
// should be sorted or grouped by field: a value that recurs after a
// different one starts a new group.
func KeyAdjacent(cache *keyspec.Cache, field string) Clumper {
	return Bind[*adjacentState]("key", &keyAdjacent{cache: cache, field: field})
}

type keyAdjacent struct {
	cache *keyspec.Cache
	field string
}

type adjacentState struct {
	open  bool
	key   string
	group Group
}

func (k *keyAdjacent) InitState() *adjacentState {
	return &adjacentState{}
}

func (k *keyAdjacent) AcceptRecord(s *adjacentState, rec *record.Node, cb Callback) error {
	v, key, err := keyValue(k.cache, rec, k.field)
	if err != nil {
		return err
	}
	if !s.open || s.key != key {
		if s.open {
			if err := s.group.End(); err != nil {
				return err
			}
			s.open = false
		}
		if debug.Clump() {
			debug.Logf("clumper key: open %s=%q\n", k.field, key)
		}
		g, err := cb.Begin(bucketOf(k.field, v))
		if err != nil {
			return err
		}
		s.open, s.key, s.group = true, key, g
	}
	return s.group.Push(rec)
}

func (k *keyAdjacent) StreamDone(s *adjacentState, _ Callback) error {
	if !s.open {
		return nil
	}
	s.open = false
	return s.group.End()
}

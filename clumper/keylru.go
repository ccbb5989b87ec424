package clumper

import (
	"container/list"

	"github.com/signadot/recs/debug"
	"github.com/signadot/recs/keyspec"
	"github.com/signadot/recs/record"
)

func keyLRUEntry() *Entry {
	return &Entry{
		Name:      "keylru",
		ArgCounts: []int{2},
		Short:     "clump records by the value for a key, limiting number of active clumps",
		Long:      "Usage: keylru,<keyspec>,<size>\n   Clump records by the value for a key, limiting number of active clumps to <size>.\n",
		New: func(cache *keyspec.Cache, args ...string) (Clumper, error) {
			n, err := parseSize("keylru", args[1])
			if err != nil {
				return nil, err
			}
			return KeyLRU(cache, args[0], n), nil
		},
	}
}

// KeyLRU groups records by the value of field, keeping at most size groups
// open. Every push makes its group the most recently used one; when more
// than size groups are open after a record, the least recently used are
// closed. A closed value that recurs opens a new group.
func KeyLRU(cache *keyspec.Cache, field string, size int) Clumper {
	return Bind[*lruState]("keylru", &keyLRU{cache: cache, field: field, size: size})
}

type keyLRU struct {
	cache *keyspec.Cache
	field string
	size  int
}

// lruState keeps open groups in recency order, front is least recent.
type lruState struct {
	byKey map[string]*list.Element
	order *list.List
}

type lruEntry struct {
	key   string
	group Group
}

func (k *keyLRU) InitState() *lruState {
	return &lruState{byKey: map[string]*list.Element{}, order: list.New()}
}

func (k *keyLRU) AcceptRecord(s *lruState, rec *record.Node, cb Callback) error {
	v, key, err := keyValue(k.cache, rec, k.field)
	if err != nil {
		return err
	}
	elt, ok := s.byKey[key]
	if ok {
		s.order.MoveToBack(elt)
	} else {
		g, err := cb.Begin(bucketOf(k.field, v))
		if err != nil {
			return err
		}
		elt = s.order.PushBack(&lruEntry{key: key, group: g})
		s.byKey[key] = elt
	}
	if err := elt.Value.(*lruEntry).group.Push(rec); err != nil {
		return err
	}
	return k.purge(s, k.size)
}

func (k *keyLRU) StreamDone(s *lruState, _ Callback) error {
	return k.purge(s, 0)
}

func (k *keyLRU) purge(s *lruState, size int) error {
	for s.order.Len() > size {
		e := s.order.Remove(s.order.Front()).(*lruEntry)
		delete(s.byKey, e.key)
		if debug.Clump() {
			debug.Logf("clumper keylru: close %s=%q\n", k.field, e.key)
		}
		if err := e.group.End(); err != nil {
			return err
		}
	}
	return nil
}

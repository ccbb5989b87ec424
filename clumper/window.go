package clumper

import (
	"github.com/signadot/recs/keyspec"
	"github.com/signadot/recs/record"
)

func windowEntry() *Entry {
	return &Entry{
		Name:      "window",
		ArgCounts: []int{1},
		Short:     "clump records by a rolling window",
		Long:      "Usage: window,<size>\n   Clump records by a rolling window of size <size>.\n",
		New: func(_ *keyspec.Cache, args ...string) (Clumper, error) {
			n, err := parseSize("window", args[0])
			if err != nil {
				return nil, err
			}
			return Window(n), nil
		},
	}
}

// Window emits, for every record once size records have been seen, a group
// holding the last size records. Fewer than size records in total produce
// no groups.
func Window(size int) Clumper {
	return Bind[*windowState]("window", &window{size: size})
}

type window struct {
	size int
}

type windowState struct {
	recs []*record.Node
}

func (w *window) InitState() *windowState {
	return &windowState{recs: make([]*record.Node, 0, w.size+1)}
}

func (w *window) AcceptRecord(s *windowState, rec *record.Node, cb Callback) error {
	s.recs = append(s.recs, rec)
	if len(s.recs) > w.size {
		copy(s.recs, s.recs[1:])
		s.recs = s.recs[:w.size]
	}
	if len(s.recs) < w.size {
		return nil
	}
	g, err := cb.Begin(record.NewObject())
	if err != nil {
		return err
	}
	for _, r := range s.recs {
		if err := g.Push(r); err != nil {
			return err
		}
	}
	return g.End()
}

func (w *window) StreamDone(*windowState, Callback) error {
	return nil
}

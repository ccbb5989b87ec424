package clumper

import (
	"fmt"
	"testing"

	"github.com/signadot/recs/record"
)

// recorder is a Callback that records the group lifecycle and fails on
// protocol violations.
type recorder struct {
	t      *testing.T
	groups []*recGroup
	events []string
}

type recGroup struct {
	r      *recorder
	id     int
	bucket string
	recs   []string
	ends   int
}

func newRecorder(t *testing.T) *recorder {
	return &recorder{t: t}
}

func (r *recorder) Begin(bucket *record.Node) (Group, error) {
	d, err := bucket.MarshalJSON()
	if err != nil {
		return nil, err
	}
	g := &recGroup{r: r, id: len(r.groups), bucket: string(d)}
	r.groups = append(r.groups, g)
	r.events = append(r.events, fmt.Sprintf("begin %d %s", g.id, g.bucket))
	return g, nil
}

func (g *recGroup) Push(rec *record.Node) error {
	if g.ends > 0 {
		g.r.t.Errorf("push to closed group %d %s", g.id, g.bucket)
	}
	d, err := rec.MarshalJSON()
	if err != nil {
		return err
	}
	g.recs = append(g.recs, string(d))
	return nil
}

func (g *recGroup) End() error {
	g.ends++
	g.r.events = append(g.r.events, fmt.Sprintf("end %d", g.id))
	return nil
}

func (r *recorder) assertAllClosedOnce() {
	r.t.Helper()
	for _, g := range r.groups {
		if g.ends != 1 {
			r.t.Errorf("group %d %s closed %d times", g.id, g.bucket, g.ends)
		}
	}
}

func (r *recorder) buckets() []string {
	res := make([]string, len(r.groups))
	for i, g := range r.groups {
		res[i] = g.bucket
	}
	return res
}

func (r *recorder) sizes() []int {
	res := make([]int, len(r.groups))
	for i, g := range r.groups {
		res[i] = len(g.recs)
	}
	return res
}

func recs(t *testing.T, docs ...string) []*record.Node {
	t.Helper()
	res := make([]*record.Node, len(docs))
	for i, d := range docs {
		n, err := record.Parse([]byte(d))
		if err != nil {
			t.Fatalf("parse %s: %v", d, err)
		}
		res[i] = n
	}
	return res
}

func colors(t *testing.T, cs ...string) []*record.Node {
	t.Helper()
	docs := make([]string, len(cs))
	for i, c := range cs {
		docs[i] = fmt.Sprintf(`{"color":%q,"i":%d}`, c, i)
	}
	return recs(t, docs...)
}

func drive(t *testing.T, c Clumper, cb Callback, rs []*record.Node) {
	t.Helper()
	run := c.Start()
	for _, rec := range rs {
		if err := run.AcceptRecord(rec, cb); err != nil {
			t.Fatal(err)
		}
	}
	if err := run.StreamDone(cb); err != nil {
		t.Fatal(err)
	}
}

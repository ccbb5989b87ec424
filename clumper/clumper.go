// Package clumper partitions a stream of records into groups.
//
// A clumper is fed one record at a time and reports groups to a [Callback]:
// Begin opens a group described by a bucket (the grouping field values of
// the group), Push adds a record to an open group, and End closes it. A
// closed group is never pushed to again; if the same key recurs later a new
// group is begun.
//
// The algorithms differ in what they keep open:
//
//	key            one group at a time, closed when the key value changes
//	keylru         at most N groups, least recently used closed first
//	keyperfect     one group per distinct value, all closed at stream end
//	cubekeyperfect keyperfect with an additional "ALL" group
//	window         a new group of the last N records for every record
//
// [Options] combines key groups, named clumpers, a size limit and cube mode
// the way the recs command line does.
package clumper

import (
	"github.com/signadot/recs/record"
)

// Callback receives the groups produced by a clumper.
type Callback interface {
	// Begin opens a group. bucket is an object mapping grouping fields to
	// the values that define the group.
	Begin(bucket *record.Node) (Group, error)
}

// Group is an open group returned by Callback.Begin.
type Group interface {
	Push(rec *record.Node) error
	End() error
}

// Algorithm is a grouping algorithm with explicit per-run state of type S.
// The same Algorithm may be driven by any number of independent runs.
type Algorithm[S any] interface {
	InitState() S
	AcceptRecord(s S, rec *record.Node, cb Callback) error
	StreamDone(s S, cb Callback) error
}

// Clumper is a configured algorithm.
type Clumper interface {
	Name() string
	// Start returns a run with fresh state.
	Start() Run
}

// Run is one pass of a Clumper over a stream.
type Run interface {
	AcceptRecord(rec *record.Node, cb Callback) error
	StreamDone(cb Callback) error
}

// Bind returns a Clumper running alg under name.
func Bind[S any](name string, alg Algorithm[S]) Clumper {
	return &bound[S]{name: name, alg: alg}
}

type bound[S any] struct {
	name string
	alg  Algorithm[S]
}

func (b *bound[S]) Name() string {
	return b.name
}

func (b *bound[S]) Start() Run {
	return &run[S]{alg: b.alg, state: b.alg.InitState()}
}

type run[S any] struct {
	alg   Algorithm[S]
	state S
}

func (r *run[S]) AcceptRecord(rec *record.Node, cb Callback) error {
	return r.alg.AcceptRecord(r.state, rec, cb)
}

func (r *run[S]) StreamDone(cb Callback) error {
	return r.alg.StreamDone(r.state, cb)
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(bucket *record.Node) (Group, error)

func (f CallbackFunc) Begin(bucket *record.Node) (Group, error) {
	return f(bucket)
}

func bucketOf(field string, v *record.Node) *record.Node {
	b := record.NewObject()
	b.Set(field, v)
	return b
}

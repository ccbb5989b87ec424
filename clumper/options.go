package clumper

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/signadot/recs/keygroups"
	"github.com/signadot/recs/keyspec"
	"github.com/signadot/recs/record"
)

// keySep joins the values of several grouping fields into one group key.
const keySep = "\x1E"

// fieldSep joins the field names heading a group key. Fields are resolved
// per record, so records with equal values under different fields stay
// apart.
const fieldSep = "\x1F"

const maxCubeFields = 16

// Options groups records according to command line style configuration:
// key groups, named clumpers, a size limit on open groups, perfect and
// cube modes.
//
// Named clumpers nest in the order they are added, each group of one
// driving a fresh run of the next. Key groups form the innermost level.
// With no key groups and no clumpers the whole stream is a single group.
//
// CheckOptions must be called before AcceptRecord.
type Options struct {
	cache    *keyspec.Cache
	registry *Registry
	log      *slog.Logger

	keys     *keygroups.KeyGroups
	clumpers []Clumper
	keySize  int
	sizeSet  bool
	perfect  bool
	cube     bool
	helpList bool
	helpShow string

	run Run
	top Callback
}

// NewOptions returns Options resolving keys with cache, or
// keyspec.DefaultCache when cache is nil.
func NewOptions(cache *keyspec.Cache) *Options {
	if cache == nil {
		cache = keyspec.DefaultCache
	}
	keys, _ := keygroups.New(cache)
	return &Options{
		cache:    cache,
		registry: Default,
		log:      slog.New(slog.DiscardHandler),
		keys:     keys,
	}
}

// SetRegistry sets the registry AddClumper and help lookups use.
func (o *Options) SetRegistry(r *Registry) {
	o.registry = r
}

func (o *Options) SetLogger(l *slog.Logger) {
	o.log = l
}

// AddKey adds comma separated key group specs.
func (o *Options) AddKey(spec string) error {
	return o.keys.Add(spec)
}

// AddClumper adds the named clumper described by spec, "name,args...".
func (o *Options) AddClumper(spec string) error {
	c, err := o.registry.Parse(o.cache, spec)
	if err != nil {
		return err
	}
	o.clumpers = append(o.clumpers, c)
	return nil
}

// SetKeySize limits the number of groups open at once. When the limit is
// reached, opening a group closes the oldest opened one.
func (o *Options) SetKeySize(n int) {
	o.keySize, o.sizeSet = n, true
}

// SetPerfect keeps every group open until the end of the stream, even with
// a key size set.
func (o *Options) SetPerfect(v bool) {
	o.perfect = v
}

// SetCube puts each record in every combination of its key values with
// "ALL".
func (o *Options) SetCube(v bool) {
	o.cube = v
}

func (o *Options) SetHelpList(v bool) {
	o.helpList = v
}

func (o *Options) SetHelpShow(name string) {
	o.helpShow = name
}

func (o *Options) KeySize() (int, bool) {
	return o.keySize, o.sizeSet
}

func (o *Options) IsAdjacent() bool {
	return o.sizeSet && o.keySize == 1
}

func (o *Options) IsPerfect() bool {
	return o.perfect
}

func (o *Options) IsCube() bool {
	return o.cube
}

// HasGrouping reports whether any key group or clumper is configured.
func (o *Options) HasGrouping() bool {
	return o.keys.HasAny() || len(o.clumpers) > 0
}

// CheckOptions validates the configuration and sets the callback receiving
// groups. When listing or showing clumpers was requested it returns a
// *HelpRequest holding the text.
func (o *Options) CheckOptions(cb Callback) error {
	if o.helpList {
		return &HelpRequest{Text: o.registry.List("")}
	}
	if o.helpShow != "" {
		return &HelpRequest{Text: o.registry.Show(o.helpShow)}
	}
	if o.sizeSet && o.keySize < 1 {
		return fmt.Errorf("%w: key size must be positive, got %d", ErrBadOptions, o.keySize)
	}
	levels := slices.Clone(o.clumpers)
	if o.keys.HasAny() {
		kg := &keyGrouper{cache: o.cache, groups: o.keys, cube: o.cube, log: o.log}
		if o.sizeSet && !o.perfect {
			kg.size = o.keySize
		}
		levels = append(levels, Bind[*keyGroupState]("keygroups", kg))
	}
	if len(levels) == 0 {
		levels = append(levels, Bind[*implicitState]("all", implicit{}))
	}
	o.run = levels[0].Start()
	o.top = &chain{levels: levels[1:], bucket: record.NewObject(), cb: cb}
	return nil
}

// AcceptRecord groups rec. It always returns true when there is no error.
func (o *Options) AcceptRecord(rec *record.Node) (bool, error) {
	if o.run == nil {
		return false, ErrNotChecked
	}
	if err := o.run.AcceptRecord(rec, o.top); err != nil {
		return false, err
	}
	return true, nil
}

// StreamDone closes every open group.
func (o *Options) StreamDone() error {
	if o.run == nil {
		return nil
	}
	r := o.run
	o.run = nil
	return r.StreamDone(o.top)
}

// chain opens the groups of one level. When levels remain, a group drives
// a new run of the next level with the buckets merged.
type chain struct {
	levels []Clumper
	bucket *record.Node
	cb     Callback
}

func (c *chain) Begin(bucket *record.Node) (Group, error) {
	merged := mergeBuckets(c.bucket, bucket)
	if len(c.levels) == 0 {
		return c.cb.Begin(merged)
	}
	next := &chain{levels: c.levels[1:], bucket: merged, cb: c.cb}
	return &nested{run: c.levels[0].Start(), cb: next}, nil
}

type nested struct {
	run Run
	cb  Callback
}

func (n *nested) Push(rec *record.Node) error {
	return n.run.AcceptRecord(rec, n.cb)
}

func (n *nested) End() error {
	return n.run.StreamDone(n.cb)
}

func mergeBuckets(outer, inner *record.Node) *record.Node {
	res := outer.Clone()
	for i, f := range inner.Fields {
		res.Set(f, inner.Values[i])
	}
	return res
}

// implicit puts every record in a single group opened with the first
// record.
type implicit struct{}

type implicitState struct {
	group Group
}

func (implicit) InitState() *implicitState {
	return &implicitState{}
}

func (implicit) AcceptRecord(s *implicitState, rec *record.Node, cb Callback) error {
	if s.group == nil {
		g, err := cb.Begin(record.NewObject())
		if err != nil {
			return err
		}
		s.group = g
	}
	return s.group.Push(rec)
}

func (implicit) StreamDone(s *implicitState, _ Callback) error {
	if s.group == nil {
		return nil
	}
	g := s.group
	s.group = nil
	return g.End()
}

// keyGrouper groups by the joined values of the key group fields. With a
// size set, groups are closed in the order they were opened once size are
// open, irrespective of use.
type keyGrouper struct {
	cache  *keyspec.Cache
	groups *keygroups.KeyGroups
	cube   bool
	size   int
	log    *slog.Logger
}

type keyGroupState struct {
	open  map[string]Group
	order []string
}

func (k *keyGrouper) InitState() *keyGroupState {
	return &keyGroupState{open: map[string]Group{}}
}

func (k *keyGrouper) AcceptRecord(s *keyGroupState, rec *record.Node, cb Callback) error {
	fields, err := k.groups.KeySpecsForRecord(rec)
	if err != nil {
		return err
	}
	vals := make([]*record.Node, len(fields))
	texts := make([]string, len(fields))
	for i, f := range fields {
		vals[i], texts[i], err = keyValue(k.cache, rec, f)
		if err != nil {
			return err
		}
	}
	masks := 1
	if k.cube {
		if len(fields) > maxCubeFields {
			return fmt.Errorf("%w: cannot cube %d fields, at most %d", ErrBadOptions, len(fields), maxCubeFields)
		}
		masks = 1 << len(fields)
	}
	head := strings.Join(fields, fieldSep) + keySep
	parts := make([]string, len(fields))
	for mask := 0; mask < masks; mask++ {
		bucket := record.NewObject()
		for i, f := range fields {
			if mask&(1<<i) != 0 {
				bucket.Set(f, record.FromString(All))
				parts[i] = All
				continue
			}
			bucket.Set(f, vals[i].Clone())
			parts[i] = texts[i]
		}
		key := head + strings.Join(parts, keySep)
		g, ok := s.open[key]
		if !ok {
			if k.size > 0 && len(s.open) >= k.size {
				if err := k.evict(s); err != nil {
					return err
				}
			}
			k.log.Debug("open group", "key", key)
			g, err = cb.Begin(bucket)
			if err != nil {
				return err
			}
			s.open[key] = g
			s.order = append(s.order, key)
		}
		if err := g.Push(rec); err != nil {
			return err
		}
	}
	return nil
}

func (k *keyGrouper) evict(s *keyGroupState) error {
	key := s.order[0]
	s.order = s.order[1:]
	g := s.open[key]
	delete(s.open, key)
	k.log.Debug("evict group", "key", key, "size", k.size)
	return g.End()
}

func (k *keyGrouper) StreamDone(s *keyGroupState, _ Callback) error {
	order := s.order
	s.order = nil
	for _, key := range order {
		g := s.open[key]
		delete(s.open, key)
		k.log.Debug("close group", "key", key)
		if err := g.End(); err != nil {
			return err
		}
	}
	return nil
}

// Package keygroups resolves group specifications into concrete field
// paths for a record.
//
// A group spec is either a key spec (see package keyspec), which yields the
// canonical path of that key when the record has it, or a regex group of
// the form
//
//	!pattern!opt1!opt2...
//
// which yields every path of the record matching pattern. A '!' inside the
// pattern is written as \!. Options are
//
//	d, depth=N    match paths of exactly N segments (default 1)
//	f, full       match paths of any depth
//	s, sort       sort the matched paths
//	rr, returnrefs also match paths holding objects or arrays
//
// Several specs may be given in one string separated by commas.
package keygroups

import (
	"errors"
	"strings"

	"github.com/signadot/recs/debug"
	"github.com/signadot/recs/keyspec"
	"github.com/signadot/recs/record"
)

// ErrMalformed reports a group spec that cannot be parsed.
var ErrMalformed = errors.New("malformed group spec")

// Member is one group of a KeyGroups.
type Member interface {
	// Fields returns the concrete paths of rec selected by the member.
	Fields(rec *record.Node) ([]string, error)
	String() string
}

// KeyGroups is an ordered list of members.
type KeyGroups struct {
	cache    *keyspec.Cache
	members  []Member
	memo     []string
	memoized bool
}

// New returns KeyGroups with the members of each spec. Key specs are
// parsed with cache, or keyspec.DefaultCache when cache is nil.
func New(cache *keyspec.Cache, specs ...string) (*KeyGroups, error) {
	if cache == nil {
		cache = keyspec.DefaultCache
	}
	g := &KeyGroups{cache: cache}
	for _, spec := range specs {
		if err := g.Add(spec); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Add appends the members of the comma separated specs in groups.
func (g *KeyGroups) Add(groups string) error {
	for _, spec := range strings.Split(groups, ",") {
		m, err := newMember(g.cache, spec)
		if err != nil {
			return err
		}
		g.members = append(g.members, m)
	}
	g.memo, g.memoized = nil, false
	return nil
}

func newMember(cache *keyspec.Cache, spec string) (Member, error) {
	if strings.HasPrefix(spec, "!") {
		return ParseRegex(spec)
	}
	return NewLiteral(cache, spec), nil
}

func (g *KeyGroups) HasAny() bool {
	return len(g.members) > 0
}

func (g *KeyGroups) Members() []Member {
	return append([]Member(nil), g.members...)
}

func (g *KeyGroups) String() string {
	parts := make([]string, len(g.members))
	for i, m := range g.members {
		parts[i] = m.String()
	}
	return strings.Join(parts, ",")
}

// KeySpecsForRecord resolves every member against rec, concatenating the
// results in member order. Duplicates are kept.
func (g *KeyGroups) KeySpecsForRecord(rec *record.Node) ([]string, error) {
	var res []string
	for _, m := range g.members {
		fields, err := m.Fields(rec)
		if err != nil {
			return nil, err
		}
		res = append(res, fields...)
	}
	if debug.KeyGroups() {
		debug.Logf("keygroups: %s resolved to %v\n", g, res)
	}
	return res, nil
}

// KeySpecs resolves the groups against the first record it is given and
// returns that result on every later call, whatever the record.
func (g *KeyGroups) KeySpecs(rec *record.Node) ([]string, error) {
	if g.memoized {
		return g.memo, nil
	}
	res, err := g.KeySpecsForRecord(rec)
	if err != nil {
		return nil, err
	}
	g.memo, g.memoized = res, true
	return res, nil
}

// Literal is a member naming a single key spec.
type Literal struct {
	spec *keyspec.KeySpec
}

func NewLiteral(cache *keyspec.Cache, spec string) *Literal {
	return &Literal{spec: cache.Parse(spec)}
}

func (l *Literal) String() string {
	return l.spec.String()
}

// Fields returns the resolved path of the key spec, or nothing when rec
// does not have it.
func (l *Literal) Fields(rec *record.Node) ([]string, error) {
	ok, err := l.spec.Has(rec)
	if err != nil || !ok {
		return nil, err
	}
	keys, err := l.spec.KeyList(rec)
	if err != nil || len(keys) == 0 {
		return nil, err
	}
	return []string{keyspec.JoinKeys(keys)}, nil
}

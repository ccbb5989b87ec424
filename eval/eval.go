// Package eval compiles expressions evaluated against records.
//
// Expressions use the expr language (github.com/expr-lang/expr). The
// record is available as r in plain Go form and n is its 1-based position
// in the stream. The functions
//
//	key(spec)     the value at a key spec, or nil when absent
//	has(spec)     whether the key spec resolves
//	keys(groups)  the field list of a key group spec
//	getenv(name)  an environment variable
//
// resolve key specs against the record being evaluated.
package eval

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/signadot/recs/debug"
	"github.com/signadot/recs/keyspec"
	"github.com/signadot/recs/record"
)

// Env is the variable environment of a run. R holds the record in plain
// Go form, so r.field reads an object field and r[0] an array element.
type Env struct {
	R any `expr:"r"`
	N int `expr:"n"`
}

// Program is a compiled expression. A Program holds the record being
// evaluated while it runs and so is not safe for concurrent use.
type Program struct {
	src   string
	prg   *vm.Program
	cache *keyspec.Cache
	cur   *record.Node
	n     int
	funcs *funcs
}

// Compile compiles src to a Program whose result may be any value. A nil
// cache means keyspec.DefaultCache.
func Compile(src string, cache *keyspec.Cache) (*Program, error) {
	return compile(src, cache)
}

// CompilePredicate compiles src to a Program which must yield a bool.
func CompilePredicate(src string, cache *keyspec.Cache) (*Program, error) {
	return compile(src, cache, expr.AsBool())
}

func compile(src string, cache *keyspec.Cache, opts ...expr.Option) (*Program, error) {
	if cache == nil {
		cache = keyspec.DefaultCache
	}
	p := &Program{src: src, cache: cache}
	p.funcs = &funcs{p: p}
	compileOpts := append([]expr.Option{expr.Env(Env{})}, p.funcs.exprOpts()...)
	compileOpts = append(compileOpts, opts...)
	prg, err := expr.Compile(src, compileOpts...)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	p.prg = prg
	return p, nil
}

func (p *Program) String() string {
	return p.src
}

// Eval runs p against rec.
func (p *Program) Eval(rec *record.Node) (any, error) {
	p.cur = rec
	p.n++
	defer func() { p.cur = nil }()
	res, err := vm.Run(p.prg, Env{R: rec.ToAny(), N: p.n})
	if debug.Eval() {
		debug.Logf("eval %q on %v: %v %v\n", p.src, rec, res, err)
	}
	if err != nil {
		return nil, fmt.Errorf("eval %q: %w", p.src, err)
	}
	return res, nil
}

// Match runs p against rec and reports the result as a bool. Programs
// from Compile match when the result is truthy: non-nil, non-zero and
// non-empty.
func (p *Program) Match(rec *record.Node) (bool, error) {
	res, err := p.Eval(rec)
	if err != nil {
		return false, err
	}
	return truthy(res), nil
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	case []any:
		return len(x) != 0
	case map[string]any:
		return len(x) != 0
	default:
		return true
	}
}

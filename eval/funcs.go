package eval

import (
	"os"

	"github.com/expr-lang/expr"
	"github.com/signadot/recs/keygroups"
	"github.com/signadot/recs/keyspec"
)

type funcs struct {
	p      *Program
	groups map[string]*keygroups.KeyGroups
}

func (f *funcs) exprOpts() []expr.Option {
	return []expr.Option{
		expr.Function("key", func(params ...any) (any, error) {
			v, ok, err := f.p.cache.FindKey(f.p.cur, params[0].(string), keyspec.Lenient)
			if err != nil || !ok {
				return nil, err
			}
			return v.ToAny(), nil
		},
			new(func(string) any)),
		expr.Function("has", func(params ...any) (any, error) {
			return f.p.cache.Parse(params[0].(string)).Has(f.p.cur)
		},
			new(func(string) bool)),
		expr.Function("keys", func(params ...any) (any, error) {
			g, err := f.group(params[0].(string))
			if err != nil {
				return nil, err
			}
			fields, err := g.KeySpecsForRecord(f.p.cur)
			if err != nil {
				return nil, err
			}
			res := make([]any, len(fields))
			for i, s := range fields {
				res[i] = s
			}
			return res, nil
		},
			new(func(string) []any)),
		expr.Function("getenv", func(params ...any) (any, error) {
			return os.Getenv(params[0].(string)), nil
		},
			new(func(string) string)),
	}
}

// group parses spec once per Program.
func (f *funcs) group(spec string) (*keygroups.KeyGroups, error) {
	if g, ok := f.groups[spec]; ok {
		return g, nil
	}
	g, err := keygroups.New(f.p.cache, spec)
	if err != nil {
		return nil, err
	}
	if f.groups == nil {
		f.groups = map[string]*keygroups.KeyGroups{}
	}
	f.groups[spec] = g
	return g, nil
}

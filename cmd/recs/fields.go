package main

import (
	"github.com/scott-cotton/cli"
	"github.com/signadot/recs/encode"
	"github.com/signadot/recs/keygroups"
	"github.com/signadot/recs/record"
)

func fields(cfg *FieldsConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Fields.Parse(cc, args)
	if err != nil {
		return err
	}
	g, err := keygroups.New(nil, cfg.Keys...)
	if err != nil {
		return err
	}
	w := cfg.writer(cc.Out)
	return cfg.eachRecord(cc.In, args, fieldLister(g, cfg.All, w))
}

// fieldLister writes {"fields": [...]} for each record. Unless all is set
// the fields are those of the first record.
func fieldLister(g *keygroups.KeyGroups, all bool, w *encode.Writer) func(*record.Node) error {
	return func(rec *record.Node) error {
		var (
			fs  []string
			err error
		)
		if all {
			fs, err = g.KeySpecsForRecord(rec)
		} else {
			fs, err = g.KeySpecs(rec)
		}
		if err != nil {
			return err
		}
		vs := make([]*record.Node, len(fs))
		for i, f := range fs {
			vs[i] = record.FromString(f)
		}
		out := record.NewObject()
		out.Set("fields", record.FromSlice(vs))
		return w.Write(out)
	}
}

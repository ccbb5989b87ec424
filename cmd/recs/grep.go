package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/recs/encode"
	"github.com/signadot/recs/eval"
	"github.com/signadot/recs/record"
)

func grep(cfg *GrepConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Grep.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: grep requires an expression", cli.ErrUsage)
	}
	p, err := eval.CompilePredicate(args[0], nil)
	if err != nil {
		return fmt.Errorf("%w: %w", cli.ErrUsage, err)
	}
	return cfg.eachRecord(cc.In, args[1:], grepper(p, cfg.Invert, cfg.writer(cc.Out)))
}

// grepper writes the records p matches, or those it does not when invert
// is set.
func grepper(p *eval.Program, invert bool, w *encode.Writer) func(*record.Node) error {
	return func(rec *record.Node) error {
		ok, err := p.Match(rec)
		if err != nil {
			return err
		}
		if ok == invert {
			return nil
		}
		return w.Write(rec)
	}
}

package main

import (
	"fmt"

	"github.com/scott-cotton/cli"
	"github.com/signadot/recs/clumper"
	"github.com/signadot/recs/encode"
	"github.com/signadot/recs/record"
)

func topN(cfg *TopNConfig, cc *cli.Context, args []string) error {
	args, err := cfg.TopN.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.N < 1 {
		return fmt.Errorf("%w: -n must be positive, got %d", cli.ErrUsage, cfg.N)
	}
	cfg.apply()
	t := &topper{n: cfg.N, w: cfg.writer(cc.Out)}
	if err := cfg.Groups.CheckOptions(t); err != nil {
		return err
	}
	err = cfg.eachRecord(cc.In, args, func(rec *record.Node) error {
		_, err := cfg.Groups.AcceptRecord(rec)
		return err
	})
	if err != nil {
		return err
	}
	return cfg.Groups.StreamDone()
}

// topper writes the first n records pushed to each group as they arrive.
type topper struct {
	n int
	w *encode.Writer
}

func (t *topper) Begin(*record.Node) (clumper.Group, error) {
	return &topGroup{t: t}, nil
}

type topGroup struct {
	t    *topper
	seen int
}

func (g *topGroup) Push(rec *record.Node) error {
	if g.seen >= g.t.n {
		return nil
	}
	g.seen++
	return g.t.w.Write(rec)
}

func (g *topGroup) End() error { return nil }

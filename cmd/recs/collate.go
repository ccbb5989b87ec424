package main

import (
	"errors"
	"io"

	"github.com/scott-cotton/cli"
	"github.com/signadot/recs/clumper"
	"github.com/signadot/recs/encode"
	"github.com/signadot/recs/keyspec"
	"github.com/signadot/recs/record"
)

func collate(cfg *CollateConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Collate.Parse(cc, args)
	if err != nil {
		return err
	}
	cfg.apply()
	c := &collator{cfg: cfg, w: cfg.writer(cc.Out)}
	if err := cfg.Groups.CheckOptions(c); err != nil {
		var help *clumper.HelpRequest
		if errors.As(err, &help) {
			_, err := io.WriteString(cc.Out, help.Text)
			return err
		}
		return err
	}
	if err := cfg.eachRecord(cc.In, args, c.accept); err != nil {
		return err
	}
	return cfg.Groups.StreamDone()
}

// collator writes a record per group: the bucket values at their key
// specs and the count of records.
type collator struct {
	cfg *CollateConfig
	w   *encode.Writer
}

func (c *collator) accept(rec *record.Node) error {
	_, err := c.cfg.Groups.AcceptRecord(rec)
	return err
}

func (c *collator) Begin(bucket *record.Node) (clumper.Group, error) {
	return &collateGroup{c: c, bucket: bucket}, nil
}

type collateGroup struct {
	c       *collator
	bucket  *record.Node
	count   int
	records []*record.Node
}

func (g *collateGroup) Push(rec *record.Node) error {
	g.count++
	if g.c.cfg.Records {
		g.records = append(g.records, rec.Clone())
	}
	if g.c.cfg.Incremental {
		return g.emit()
	}
	return nil
}

func (g *collateGroup) End() error {
	if g.c.cfg.Incremental {
		return nil
	}
	return g.emit()
}

func (g *collateGroup) emit() error {
	out := record.NewObject()
	for i, field := range g.bucket.Fields {
		if err := keyspec.SetKey(out, field, g.bucket.Values[i].Clone()); err != nil {
			return err
		}
	}
	out.Set("count", record.FromInt(int64(g.count)))
	if g.c.cfg.Records {
		recs := make([]*record.Node, len(g.records))
		for i, rec := range g.records {
			recs[i] = rec.Clone()
		}
		out.Set("records", record.FromSlice(recs))
	}
	return g.c.w.Write(out)
}

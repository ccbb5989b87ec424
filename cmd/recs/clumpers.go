package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"
	"github.com/signadot/recs/clumper"
)

func clumpers(cfg *ClumpersConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Clumpers.Parse(cc, args)
	if err != nil {
		return err
	}
	color.NoColor = !cfg.colorOut(cc.Out)
	switch len(args) {
	case 0:
		return listClumpers(cc.Out, cfg.Registry)
	case 1:
		if cfg.Registry.Lookup(args[0]) == nil {
			return fmt.Errorf("%w: %w: %s", cli.ErrUsage, clumper.ErrBadClumper, args[0])
		}
		_, err := io.WriteString(cc.Out, cfg.Registry.Show(args[0]))
		return err
	default:
		return fmt.Errorf("%w: clumpers takes at most one name", cli.ErrUsage)
	}
}

// listClumpers writes the registry listing with names highlighted.
func listClumpers(w io.Writer, r *clumper.Registry) error {
	names := color.New(color.FgCyan, color.Bold).SprintFunc()
	for _, ln := range strings.SplitAfter(r.List(""), "\n") {
		if ln == "" {
			continue
		}
		if ns, usage, ok := strings.Cut(ln, ": "); ok {
			ln = names(ns) + ": " + usage
		}
		if _, err := io.WriteString(w, ln); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/scott-cotton/cli"
	"github.com/signadot/recs/parse"
	"github.com/signadot/recs/record"
)

func recsMain(cfg *MainConfig, cc *cli.Context, args []string) error {
	defer func() {
		if cfg.CloseOut != nil {
			cfg.CloseOut()
		}
	}()
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.J && cfg.Y {
		return fmt.Errorf("%w: must specify at most one of -j[son] -y[aml]", cli.ErrUsage)
	}
	cfg.Log = newLogger(cfg.Verbose)
	if len(args) == 0 {
		return cli.ErrNoCommandProvided
	}
	sub := cfg.Main.FindSub(cc, args[0])
	if sub == nil {
		return fmt.Errorf("%w: %q not found", cli.ErrNoSuchCommand, args[0])
	}
	err = sub.Run(cc, args[1:])
	if errors.Is(err, cli.ErrUsage) {
		sub.Usage(cc, err)
		os.Exit(sub.Exit(cc, err))
	}
	return err
}

func (cfg *MainConfig) outOpt(cc *cli.Context, a string) (any, error) {
	cfg.Out = a
	if a == "-" {
		return nil, nil
	}
	f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	cc.Out = f
	cfg.CloseOut = f.Close
	return nil, nil
}

// eachRecord calls f with every record of the files named by args in turn,
// or of in when there are none. "-" also names in.
func (cfg *MainConfig) eachRecord(in io.Reader, args []string, f func(*record.Node) error) error {
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, file := range args {
		if err := cfg.eachFileRecord(in, file, f); err != nil {
			return err
		}
	}
	return nil
}

func (cfg *MainConfig) eachFileRecord(in io.Reader, file string, f func(*record.Node) error) error {
	var (
		rc  io.ReadCloser
		err error
	)
	if file == "-" {
		rc, err = parse.Decompress(in, "")
	} else {
		rc, err = parse.Open(file)
	}
	if err != nil {
		return fmt.Errorf("could not open %q: %w", file, err)
	}
	defer rc.Close()
	cfg.logger().Debug("reading", "file", file)
	if err := readRecords(rc, cfg.parseOpts(), f); err != nil {
		return fmt.Errorf("error processing %s: %w", file, err)
	}
	return nil
}

func readRecords(r io.Reader, opts []parse.ParseOption, f func(*record.Node) error) error {
	rd := parse.NewReader(r, opts...)
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := f(rec); err != nil {
			return err
		}
	}
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"
	"github.com/signadot/recs/clumper"
	"github.com/signadot/recs/encode"
	"github.com/signadot/recs/format"
	"github.com/signadot/recs/parse"
)

type MainConfig struct {
	Color   bool `cli:"name=color desc='encode with color'"`
	Verbose bool `cli:"name=v aliases=verbose desc='log debug messages'"`

	J bool `cli:"name=j aliases=json desc='do i/o in json'"`
	Y bool `cli:"name=y aliases=yaml desc='do i/o in yaml'"`

	InFormat, OutFormat *format.Format

	Out      string
	CloseOut func() error

	Log  *slog.Logger
	Main *cli.Command
}

func (cfg *MainConfig) fmtFunc(fps ...**format.Format) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		f, err := format.ParseFormat(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		for _, fp := range fps {
			*fp = &f
		}
		return f, nil
	})
}

func (cfg *MainConfig) inFormat() format.Format {
	var fmat format.Format
	switch {
	case cfg.Y:
		fmat = format.YAMLFormat
	case cfg.J:
		fmat = format.JSONFormat
	}
	if cfg.InFormat != nil {
		fmat = *cfg.InFormat
	}
	return fmat
}

func (cfg *MainConfig) parseOpts() []parse.ParseOption {
	return []parse.ParseOption{parse.ParseFormat(cfg.inFormat())}
}

func (cfg *MainConfig) outFormat() format.Format {
	var fmat format.Format
	switch {
	case cfg.Y:
		fmat = format.YAMLFormat
	case cfg.J:
		fmat = format.JSONFormat
	}
	if cfg.OutFormat != nil {
		fmat = *cfg.OutFormat
	}
	return fmat
}

// colorOut reports whether output to w is colorized: always with -color,
// otherwise when w is a terminal.
func (cfg *MainConfig) colorOut(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

func (cfg *MainConfig) encOpts(w io.Writer) []encode.EncodeOption {
	res := []encode.EncodeOption{
		encode.EncodeFormat(cfg.outFormat()),
	}
	if cfg.colorOut(w) {
		res = append(res, encode.EncodeColors(encode.NewColors()))
	}
	return res
}

// writer returns a record writer on w configured by the output options.
func (cfg *MainConfig) writer(w io.Writer) *encode.Writer {
	color.NoColor = !cfg.colorOut(w)
	opts := cfg.encOpts(w)
	if f, ok := w.(*os.File); ok {
		w = colorable.NewColorable(f)
	}
	return encode.NewWriter(w, opts...)
}

func (cfg *MainConfig) logger() *slog.Logger {
	if cfg.Log == nil {
		cfg.Log = slog.New(slog.DiscardHandler)
	}
	return cfg.Log
}

// groupOpts returns the options configuring grouping through o.
func groupOpts(o *clumper.Options) []*cli.Opt {
	return []*cli.Opt{
		&cli.Opt{
			Name:        "k",
			Aliases:     []string{"key"},
			Description: "comma separated key groups to group by, may be repeated",
			Type: cli.NamedFuncOpt(cli.FuncOpt(func(_ *cli.Context, a string) (any, error) {
				if err := o.AddKey(a); err != nil {
					return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
				}
				return a, nil
			}), "(keys)"),
		},
		&cli.Opt{
			Name:        "c",
			Aliases:     []string{"clumper"},
			Description: "clumper spec name,args..., may be repeated",
			Type: cli.NamedFuncOpt(cli.FuncOpt(func(_ *cli.Context, a string) (any, error) {
				if err := o.AddClumper(a); err != nil {
					return nil, fmt.Errorf("%w: %w", cli.ErrUsage, err)
				}
				return a, nil
			}), "(clumper)"),
		},
	}
}

func sizeOpt(name, desc string, set func(int)) *cli.Opt {
	return &cli.Opt{
		Name:        name,
		Description: desc,
		Type: cli.NamedFuncOpt(cli.FuncOpt(func(_ *cli.Context, a string) (any, error) {
			n, err := strconv.Atoi(a)
			if err != nil {
				return nil, fmt.Errorf("%w: -%s expects an integer, got %q", cli.ErrUsage, name, a)
			}
			set(n)
			return n, nil
		}), "(n)"),
	}
}

type CollateConfig struct {
	*MainConfig
	Groups *clumper.Options

	Adjacent     bool   `cli:"name=1 aliases=adjacent desc='only group adjacent records, same as -n 1'"`
	Perfect      bool   `cli:"name=perfect desc='keep every group open until the end of input'"`
	Cube         bool   `cli:"name=cube desc='also group every key value as ALL'"`
	Records      bool   `cli:"name=records desc='include the records of each group'"`
	Incremental  bool   `cli:"name=incremental desc='output the group after every record'"`
	ListClumpers bool   `cli:"name=list-clumpers desc='list the available clumpers'"`
	ShowClumper  string `cli:"name=show-clumper desc='show the usage of a clumper'"`

	Collate *cli.Command
}

// apply transfers the flag values to Groups.
func (cfg *CollateConfig) apply() {
	if cfg.Adjacent {
		cfg.Groups.SetKeySize(1)
	}
	cfg.Groups.SetPerfect(cfg.Perfect)
	cfg.Groups.SetCube(cfg.Cube)
	cfg.Groups.SetHelpList(cfg.ListClumpers)
	cfg.Groups.SetHelpShow(cfg.ShowClumper)
	cfg.Groups.SetLogger(cfg.logger())
}

type TopNConfig struct {
	*MainConfig
	Groups *clumper.Options
	N      int

	Adjacent bool `cli:"name=1 aliases=adjacent desc='only group adjacent records'"`

	TopN *cli.Command
}

func (cfg *TopNConfig) apply() {
	if cfg.Adjacent {
		cfg.Groups.SetKeySize(1)
	} else {
		cfg.Groups.SetPerfect(true)
	}
	cfg.Groups.SetLogger(cfg.logger())
}

type GrepConfig struct {
	*MainConfig

	Invert bool `cli:"name=v aliases=invert desc='keep records not matching'"`

	Grep *cli.Command
}

type FieldsConfig struct {
	*MainConfig
	Keys []string

	All bool `cli:"name=all desc='resolve the fields of every record instead of the first'"`

	Fields *cli.Command
}

type ClumpersConfig struct {
	*MainConfig
	Registry *clumper.Registry

	Clumpers *cli.Command
}

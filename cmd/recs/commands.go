package main

import (
	"github.com/scott-cotton/cli"
	"github.com/signadot/recs/clumper"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	sOpts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts := append(sOpts, []*cli.Opt{
		&cli.Opt{
			Name:        "o",
			Description: "output file (default stdout)",
			Type:        cli.NamedFuncOpt(cfg.outOpt, "(filepath)"),
		},
		&cli.Opt{
			Name:        "I",
			Aliases:     []string{"ifmt"},
			Description: "input format: json/j, yaml/y",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.InFormat), "(format)"),
		}, &cli.Opt{
			Name:        "O",
			Aliases:     []string{"ofmt"},
			Description: "output format: json/j, yaml/y",
			Type:        cli.NamedFuncOpt(cfg.fmtFunc(&cfg.OutFormat), "(format)"),
		}}...)

	return cli.NewCommandAt(&cfg.Main, "recs").
		WithSynopsis("recs [opts] command [opts]").
		WithDescription("recs is a tool for working with streams of JSON records.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return recsMain(cfg, cc, args)
		}).
		WithSubs(
			CollateCommand(cfg),
			TopNCommand(cfg),
			GrepCommand(cfg),
			FieldsCommand(cfg),
			ClumpersCommand(cfg))
}

func CollateCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &CollateConfig{MainConfig: mainCfg, Groups: clumper.NewOptions(nil)}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, groupOpts(cfg.Groups)...)
	opts = append(opts, sizeOpt("n", "maximum number of groups open at once", cfg.Groups.SetKeySize))
	return cli.NewCommandAt(&cfg.Collate, "collate").
		WithAliases("co").
		WithSynopsis("collate [-k keys]... [-c clumper]... [-1] [-n N] [-perfect] [-cube] [-records] [files]").
		WithDescription(collateDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return collate(cfg, cc, args)
		})
}

const collateDescription = `collate groups records and outputs one record per group.

Each output record holds the values of the grouping keys of the group and
its record count. Key groups are comma separated key specs such as 'a/b' or
'@fuzzy', or regexes of the form '!regex!opts'. Clumpers given with -c nest
in order, with key groups innermost.`

func TopNCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &TopNConfig{MainConfig: mainCfg, Groups: clumper.NewOptions(nil), N: 10}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, groupOpts(cfg.Groups)...)
	opts = append(opts, sizeOpt("n", "number of records to keep per group (default 10)", func(n int) { cfg.N = n }))
	return cli.NewCommandAt(&cfg.TopN, "topn").
		WithAliases("t").
		WithSynopsis("topn [-n N] [-k keys]... [-1] [files]").
		WithDescription("output the first N records of each group").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return topN(cfg, cc, args)
		})
}

func GrepCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &GrepConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Grep, "grep").
		WithAliases("g").
		WithSynopsis("grep [-v] <expr> [files]").
		WithDescription(grepDescription).
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return grep(cfg, cc, args)
		})
}

const grepDescription = `grep outputs the records for which an expression is true.

The record is r, its position in the input is n. key("a/@b") resolves a key
spec, has("a/b") tests one, keys("!re!") lists the fields of a key group.`

func FieldsCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &FieldsConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, &cli.Opt{
		Name:        "k",
		Aliases:     []string{"key"},
		Description: "comma separated key groups, may be repeated",
		Type: cli.NamedFuncOpt(cli.FuncOpt(func(_ *cli.Context, a string) (any, error) {
			cfg.Keys = append(cfg.Keys, a)
			return a, nil
		}), "(keys)"),
	})
	return cli.NewCommandAt(&cfg.Fields, "fields").
		WithAliases("f").
		WithSynopsis("fields [-k keys]... [-all] [files]").
		WithDescription("output the fields key groups resolve to").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return fields(cfg, cc, args)
		})
}

func ClumpersCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ClumpersConfig{MainConfig: mainCfg, Registry: clumper.Default}
	return cli.NewCommandAt(&cfg.Clumpers, "clumpers").
		WithSynopsis("clumpers [name]").
		WithDescription("list clumpers or show the usage of one").
		WithRun(func(cc *cli.Context, args []string) error {
			return clumpers(cfg, cc, args)
		})
}

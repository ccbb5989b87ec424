package main

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/signadot/recs/debug"
)

// newLogger logs to stderr at info level, or debug level when verbose or
// RECS_DEBUG is set.
func newLogger(verbose bool) *slog.Logger {
	ll := &slog.LevelVar{}
	ll.Set(slog.LevelInfo)
	if verbose || debug.All() {
		ll.Set(slog.LevelDebug)
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}

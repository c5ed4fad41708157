package cli

import (
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// levelValue exposes a slog.LevelVar as a command-line flag.
type levelValue struct {
	v *slog.LevelVar
}

var _ pflag.Value = (*levelValue)(nil)

func (l *levelValue) String() string {
	if l.v == nil {
		return slog.LevelInfo.String()
	}
	return strings.ToLower(l.v.Level().String())
}

func (l *levelValue) Set(s string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return err
	}
	l.v.Set(lvl)
	return nil
}

func (l *levelValue) Type() string { return "level" }

// addLogLevelFlag registers --log-level on fs, writing into level.
func addLogLevelFlag(fs *pflag.FlagSet, level *slog.LevelVar) {
	fs.Var(&levelValue{v: level}, "log-level", "log verbosity: debug, info, warn or error")
}

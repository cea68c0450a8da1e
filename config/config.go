package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/c4lab/connectx/board"
)

const (
	ConfigDebug             = "debug"
	ConfigRows              = "rows"
	ConfigColumns           = "columns"
	ConfigInARow            = "in-a-row"
	ConfigDepthLimit        = "depth-limit"
	ConfigTimeLimit         = "time-limit"
	ConfigThreads           = "threads"
	ConfigTTableMemFraction = "ttable-mem-fraction"
	ConfigSeed              = "seed"
	ConfigCPUProfile        = "cpu-profile"
)

const (
	DefaultDepthLimit        = 5
	DefaultTimeLimit         = 3 * time.Second
	DefaultThreads           = 1
	DefaultTTableMemFraction = 0.005
)

// Config wraps a viper instance. Settings come from, in order of
// precedence: command-line flags, CONNECTX_* environment variables, and the
// defaults below.
type Config struct {
	*viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigRows, board.DefaultRows)
	v.SetDefault(ConfigColumns, board.DefaultColumns)
	v.SetDefault(ConfigInARow, board.DefaultInARow)
	v.SetDefault(ConfigDepthLimit, DefaultDepthLimit)
	v.SetDefault(ConfigTimeLimit, DefaultTimeLimit)
	v.SetDefault(ConfigThreads, DefaultThreads)
	v.SetDefault(ConfigTTableMemFraction, DefaultTTableMemFraction)
	v.SetDefault(ConfigSeed, uint64(0))
	v.SetDefault(ConfigCPUProfile, "")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("connectx")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultConfig returns a config with only defaults and the environment
// applied. Tests use this.
func DefaultConfig() *Config {
	return &Config{Viper: newViper()}
}

// Load parses args as flags on top of the environment and defaults. It
// returns the positional arguments left over.
func (c *Config) Load(args []string) ([]string, error) {
	c.Viper = newViper()
	fs := pflag.NewFlagSet("connectx", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "turn on debug logging")
	fs.Int(ConfigRows, board.DefaultRows, "number of rows on the board")
	fs.Int(ConfigColumns, board.DefaultColumns, "number of columns on the board")
	fs.Int(ConfigInARow, board.DefaultInARow, "pieces in a row needed to win")
	fs.Int(ConfigDepthLimit, DefaultDepthLimit, "deepest iteration of the search, in plies")
	fs.Duration(ConfigTimeLimit, DefaultTimeLimit, "time budget per move; checked between iterations")
	fs.Int(ConfigThreads, DefaultThreads, "threads used to score root moves")
	fs.Float64(ConfigTTableMemFraction, DefaultTTableMemFraction,
		"fraction of system memory for each transposition table")
	fs.Uint64(ConfigSeed, 0, "seed for move-order randomness; 0 picks a random seed")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := c.BindPFlags(fs); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

// Dims returns the configured board size, validated.
func (c *Config) Dims() (board.Dims, error) {
	d := board.Dims{
		Rows:    c.GetInt(ConfigRows),
		Columns: c.GetInt(ConfigColumns),
		InARow:  c.GetInt(ConfigInARow),
	}
	if err := d.Validate(); err != nil {
		return board.Dims{}, err
	}
	return d, nil
}

// SanitizedSettings is a printable summary of every setting.
func (c *Config) SanitizedSettings() string {
	var sb strings.Builder
	keys := c.AllKeys()
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s=%v ", k, c.Get(k))
	}
	return strings.TrimSpace(sb.String())
}

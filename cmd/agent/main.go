// Command agent reads one observation, from the file named on the command
// line or from stdin, and prints the column the engine picks.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/c4lab/connectx/bot"
	"github.com/c4lab/connectx/config"
)

func main() {
	cfg := &config.Config{}
	args, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, args, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("agent-failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, args []string, stdin io.Reader, stdout io.Writer) error {
	in := stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	obs, err := bot.LoadObservation(in)
	if err != nil {
		return err
	}
	agent, err := bot.NewAgent(cfg)
	if err != nil {
		return err
	}
	col, err := agent.Move(ctx, obs)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, col)
	return err
}

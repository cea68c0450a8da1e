package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/c4lab/connectx/automatic"
	"github.com/c4lab/connectx/bot"
	"github.com/c4lab/connectx/config"
	"github.com/c4lab/connectx/game"
	"github.com/c4lab/connectx/search"
)

const defaultAutoplayGames = 10

// settableKeys are the config keys the set command may change.
var settableKeys = []string{
	config.ConfigRows, config.ConfigColumns, config.ConfigInARow,
	config.ConfigDepthLimit, config.ConfigTimeLimit, config.ConfigThreads,
	config.ConfigTTableMemFraction, config.ConfigSeed,
}

// getSolver builds the engine from the current config the first time it is
// needed after a settings change.
func (sc *ShellController) getSolver() (*search.Solver, error) {
	if sc.solver != nil && sc.solver.Dims() == sc.game.Dims() {
		return sc.solver, nil
	}
	s := &search.Solver{}
	if err := s.Init(sc.game.Dims(), search.ParamsFromConfig(sc.config)); err != nil {
		return nil, err
	}
	if seed := sc.config.GetUint64(config.ConfigSeed); seed != 0 {
		s.SetSeed(seed)
	}
	sc.solver = s
	return s, nil
}

func (sc *ShellController) newGame(ctx context.Context, cmd *shellcmd) (*Response, error) {
	d, err := sc.config.Dims()
	if err != nil {
		return nil, err
	}
	g, err := game.NewGame(d)
	if err != nil {
		return nil, err
	}
	sc.game = g
	switch first := cmd.options.String("first"); first {
	case "", "human":
	case "engine":
		return sc.aiplay(ctx, cmd)
	default:
		return nil, fmt.Errorf("-first must be human or engine, not %q", first)
	}
	return sc.show(cmd)
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return msg(sc.game.ToDisplayText(sc.displayWriter())), nil
}

func (sc *ShellController) play(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("play <column>")
	}
	col, err := strconv.Atoi(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.game.Play(col); err != nil {
		return nil, err
	}
	if sc.options.autorespond && sc.game.Playing() == game.PlayStatePlaying {
		return sc.aiplay(ctx, cmd)
	}
	return sc.show(cmd)
}

func (sc *ShellController) engineRank(ctx context.Context) ([]search.ScoredMove, *search.Solver, error) {
	if sc.game == nil {
		return nil, nil, errNoGame
	}
	if sc.game.Playing() != game.PlayStatePlaying {
		return nil, nil, game.ErrGameOver
	}
	solver, err := sc.getSolver()
	if err != nil {
		return nil, nil, err
	}
	ranking, err := solver.Rank(ctx, sc.game.Position(), sc.game.PlayerOnTurn(),
		sc.game.LegalMoves())
	if err != nil {
		return nil, nil, err
	}
	return ranking, solver, nil
}

func (sc *ShellController) aiplay(ctx context.Context, cmd *shellcmd) (*Response, error) {
	ranking, solver, err := sc.engineRank(ctx)
	if err != nil {
		return nil, err
	}
	player := sc.game.PlayerOnTurn()
	best := ranking[0]
	if err := sc.game.Play(best.Col); err != nil {
		return nil, err
	}
	header := fmt.Sprintf("Engine (%v) plays column %d (score %g, depth %d, %d nodes)\n",
		player, best.Col, best.Score, solver.LastDepth(), solver.Nodes())
	return msg(header + sc.game.ToDisplayText(sc.displayWriter())), nil
}

func (sc *ShellController) rank(ctx context.Context, cmd *shellcmd) (*Response, error) {
	ranking, solver, err := sc.engineRank(ctx)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Depth %d, %d nodes\n", solver.LastDepth(), solver.Nodes())
	fmt.Fprintf(&sb, "%-6s%-8s%s\n", "#", "Column", "Score")
	for i, m := range ranking {
		fmt.Fprintf(&sb, "%-6d%-8d%g\n", i+1, m.Col, m.Score)
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	n := 1
	if len(cmd.args) > 0 {
		var err error
		n, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	for i := 0; i < n; i++ {
		if err := sc.game.Undo(); err != nil {
			return nil, err
		}
	}
	return sc.show(cmd)
}

// load starts a game from an observation file (see bot.Observation).
func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("load <file>")
	}
	f, err := os.Open(cmd.args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	obs, err := bot.LoadObservation(f)
	if err != nil {
		return nil, err
	}
	d, err := sc.config.Dims()
	if err != nil {
		return nil, err
	}
	pos, player, err := obs.Position(d)
	if err != nil {
		return nil, err
	}
	g, err := game.FromPosition(pos)
	if err != nil {
		return nil, err
	}
	if g.PlayerOnTurn() != player {
		return nil, fmt.Errorf("%w: mark %d is not on turn", game.ErrBadPosition, obs.Mark)
	}
	sc.game = g
	log.Debug().Str("file", cmd.args[0]).Int("pieces", pos.NumPieces()).Msg("loaded-position")
	return sc.show(cmd)
}

func (sc *ShellController) settingsText() string {
	var sb strings.Builder
	sb.WriteString("Settings:\n")
	for _, key := range settableKeys {
		fmt.Fprintf(&sb, "  %s: %v\n", key, sc.config.Get(key))
	}
	for _, key := range []string{"autorespond", "color"} {
		_, val := sc.options.Show(key)
		fmt.Fprintf(&sb, "  %s: %s\n", key, val)
	}
	return sb.String()
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(sc.settingsText()), nil
	}
	opt := cmd.args[0]
	if len(cmd.args) == 1 {
		if ok, val := sc.options.Show(opt); ok {
			return msg(val), nil
		}
		if !lo.Contains(settableKeys, opt) {
			return nil, fmt.Errorf("no such setting: %v", opt)
		}
		return msg(fmt.Sprintf("%v", sc.config.Get(opt))), nil
	}
	val := cmd.args[1]
	switch opt {
	case "autorespond", "color":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return nil, err
		}
		if opt == "autorespond" {
			sc.options.autorespond = b
		} else {
			sc.options.color = b
		}
		return msg("set " + opt + " to " + val), nil
	}

	var parsed interface{}
	var err error
	switch opt {
	case config.ConfigRows, config.ConfigColumns, config.ConfigInARow,
		config.ConfigDepthLimit, config.ConfigThreads:
		parsed, err = strconv.Atoi(val)
	case config.ConfigTimeLimit:
		parsed, err = time.ParseDuration(val)
	case config.ConfigTTableMemFraction:
		parsed, err = strconv.ParseFloat(val, 64)
	case config.ConfigSeed:
		parsed, err = strconv.ParseUint(val, 10, 64)
	default:
		return nil, fmt.Errorf("no such setting: %v", opt)
	}
	if err != nil {
		return nil, err
	}
	sc.config.Set(opt, parsed)
	// rebuilt on the next search.
	sc.solver = nil
	ret := "set " + opt + " to " + val
	switch opt {
	case config.ConfigRows, config.ConfigColumns, config.ConfigInARow:
		ret += "; takes effect on the next new game"
	}
	return msg(ret), nil
}

func (sc *ShellController) autoplay(ctx context.Context, cmd *shellcmd) (*Response, error) {
	numGames := defaultAutoplayGames
	if len(cmd.args) > 0 {
		var err error
		numGames, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	threads, err := cmd.options.IntDefault("threads", 1)
	if err != nil {
		return nil, err
	}
	var res automatic.Results
	logfile := cmd.options.String("file")
	if logfile != "" {
		res, err = automatic.PlayGamesToFile(ctx, sc.config, numGames, threads, logfile)
	} else {
		res, err = automatic.PlayGames(ctx, sc.config, numGames, threads, nil)
	}
	if err != nil {
		return nil, err
	}
	out := res.String()
	if logfile != "" {
		out += "\nTurn log written to " + logfile
	}
	return msg(out), nil
}

func (sc *ShellController) analyzeLog(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("analyze-log <file>")
	}
	stats, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(stats), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	var sb strings.Builder
	if len(cmd.args) == 0 {
		usage(&sb)
	} else {
		usageTopic(&sb, cmd.args[0])
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

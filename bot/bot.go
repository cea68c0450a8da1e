// Package bot answers a single observation (a board and whose piece is to
// be dropped) with a column.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/c4lab/connectx/board"
	"github.com/c4lab/connectx/config"
	"github.com/c4lab/connectx/search"
)

var (
	ErrInvalidMark = errors.New("invalid mark")
	ErrNoBoard     = errors.New("observation has no board")
)

// Observation is what the agent is shown each turn. Board is the flat grid,
// row-major with the top row first, 0 for empty and 1 or 2 for a player's
// piece. Grid is the same thing drawn as text (see board.ParseGrid) and is
// only read when Board is empty. Mark is the player to move, 1 or 2.
type Observation struct {
	Board []int  `yaml:"board,omitempty" json:"board,omitempty"`
	Grid  string `yaml:"grid,omitempty" json:"grid,omitempty"`
	Mark  int    `yaml:"mark" json:"mark"`
}

// Position validates obs against a board of size d and builds the position
// it describes, along with the player to move.
func (obs Observation) Position(d board.Dims) (*board.Position, board.Player, error) {
	if obs.Mark < int(board.PlayerOne) || obs.Mark > int(board.PlayerTwo) {
		return nil, board.Empty, fmt.Errorf("%w: %d", ErrInvalidMark, obs.Mark)
	}
	var g board.Grid
	var err error
	switch {
	case len(obs.Board) > 0:
		g, err = board.GridFromFlat(d, obs.Board)
	case obs.Grid != "":
		g, err = board.ParseGrid(d, obs.Grid)
	default:
		err = ErrNoBoard
	}
	if err != nil {
		return nil, board.Empty, err
	}
	pos, err := board.PositionFromGrid(d, g)
	if err != nil {
		return nil, board.Empty, err
	}
	if err := board.CheckGravity(d, pos.Board); err != nil {
		return nil, board.Empty, err
	}
	return pos, board.Player(obs.Mark), nil
}

// LoadObservation decodes a YAML observation. JSON works too.
func LoadObservation(r io.Reader) (Observation, error) {
	var obs Observation
	if err := yaml.NewDecoder(r).Decode(&obs); err != nil {
		return Observation{}, fmt.Errorf("decoding observation: %w", err)
	}
	return obs, nil
}

type Agent struct {
	dims   board.Dims
	solver *search.Solver
}

// NewAgent builds an agent for the board size and search limits in cfg.
func NewAgent(cfg *config.Config) (*Agent, error) {
	d, err := cfg.Dims()
	if err != nil {
		return nil, err
	}
	solver := &search.Solver{}
	if err := solver.Init(d, search.ParamsFromConfig(cfg)); err != nil {
		return nil, err
	}
	if seed := cfg.GetUint64(config.ConfigSeed); seed != 0 {
		solver.SetSeed(seed)
	}
	return &Agent{dims: d, solver: solver}, nil
}

func (a *Agent) Dims() board.Dims {
	return a.dims
}

func (a *Agent) Solver() *search.Solver {
	return a.solver
}

// Position validates obs and builds the position it describes.
func (a *Agent) Position(obs Observation) (*board.Position, board.Player, error) {
	return obs.Position(a.dims)
}

// Rank scores every legal column for the observed player, best first.
func (a *Agent) Rank(ctx context.Context, obs Observation) ([]search.ScoredMove, error) {
	pos, player, err := a.Position(obs)
	if err != nil {
		return nil, err
	}
	legal := pos.LegalMoves()
	if len(legal) == 0 {
		return nil, search.ErrNoLegalMoves
	}
	return a.solver.Rank(ctx, pos, player, legal)
}

// Move picks the column to play.
func (a *Agent) Move(ctx context.Context, obs Observation) (int, error) {
	ranking, err := a.Rank(ctx, obs)
	if err != nil {
		return 0, err
	}
	log.Debug().Int("mark", obs.Mark).Int("col", ranking[0].Col).
		Int("depth", a.solver.LastDepth()).Msg("agent-move")
	return ranking[0].Col, nil
}

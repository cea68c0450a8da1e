// Package automatic plays the engine against itself, for trying out search
// settings and gathering statistics.
package automatic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/c4lab/connectx/config"
	"github.com/c4lab/connectx/game"
	"github.com/c4lab/connectx/search"
)

// GameRunner is the master struct here for the automatic game logic. Each
// player gets its own solver.
type GameRunner struct {
	game    *game.Game
	config  *config.Config
	solvers [2]*search.Solver

	gameID  int
	logchan chan string
}

// NewGameRunner just instantiates and initializes a game runner. A zero
// seed leaves the solvers unseeded.
func NewGameRunner(logchan chan string, cfg *config.Config, seed uint64) (*GameRunner, error) {
	r := &GameRunner{logchan: logchan, config: cfg}
	if err := r.Init(seed); err != nil {
		return nil, err
	}
	return r, nil
}

// Init initializes the runner
func (r *GameRunner) Init(seed uint64) error {
	d, err := r.config.Dims()
	if err != nil {
		return err
	}
	r.game, err = game.NewGame(d)
	if err != nil {
		return err
	}
	params := search.ParamsFromConfig(r.config)
	for i := range r.solvers {
		s := &search.Solver{}
		if err := s.Init(d, params); err != nil {
			return err
		}
		if seed != 0 {
			s.SetSeed(seed + uint64(i))
		}
		r.solvers[i] = s
	}
	return nil
}

func (r *GameRunner) StartGame() {
	r.game.Reset()
}

func (r *GameRunner) Game() *game.Game {
	return r.game
}

// PlayBestTurn searches for the player on turn and plays the best column.
func (r *GameRunner) PlayBestTurn(ctx context.Context) error {
	player := r.game.PlayerOnTurn()
	solver := r.solvers[player-1]
	ranking, err := solver.Rank(ctx, r.game.Position(), player, r.game.LegalMoves())
	if err != nil {
		return err
	}
	best := ranking[0]
	if err := r.game.Play(best.Col); err != nil {
		return err
	}

	if r.logchan != nil {
		result := ""
		switch r.game.Playing() {
		case game.PlayStateWon:
			result = "win"
		case game.PlayStateDrawn:
			result = "draw"
		}
		r.logchan <- fmt.Sprintf("%v,%v,%v,%v,%g,%v,%v,%v\n",
			player,
			r.gameID,
			r.game.Turn(),
			best.Col,
			best.Score,
			solver.LastDepth(),
			solver.Nodes(),
			result)
	}
	return nil
}

func (r *GameRunner) playFull(ctx context.Context) error {
	r.StartGame()
	for r.game.Playing() == game.PlayStatePlaying {
		if err := r.PlayBestTurn(ctx); err != nil {
			return err
		}
	}
	log.Debug().Int("game-id", r.gameID).Str("state", r.game.Playing().String()).
		Str("winner", r.game.Winner().String()).Int("turns", r.game.Turn()).Msg("game-over")
	return nil
}

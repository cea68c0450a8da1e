// Package search picks moves with a depth-limited minimax search with
// alpha-beta pruning, driven by iterative deepening under a time budget.
package search

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/c4lab/connectx/board"
	"github.com/c4lab/connectx/config"
	"github.com/c4lab/connectx/heuristic"
	"github.com/c4lab/connectx/zobrist"
)

var (
	ErrNoLegalMoves  = errors.New("no legal moves")
	ErrIllegalMove   = errors.New("illegal move")
	ErrInvalidPlayer = errors.New("invalid player")
	ErrBadParams     = errors.New("bad search parameters")
)

// Params bound a search.
type Params struct {
	// DepthLimit is the deepest iteration, in plies.
	DepthLimit int
	// TimeLimit is checked between iterations only, so one iteration can
	// run past it.
	TimeLimit time.Duration
	// Threads > 1 scores root moves concurrently.
	Threads int
	// TTableMemFraction sizes each transposition table.
	TTableMemFraction float64
}

func DefaultParams() Params {
	return Params{
		DepthLimit:        config.DefaultDepthLimit,
		TimeLimit:         config.DefaultTimeLimit,
		Threads:           config.DefaultThreads,
		TTableMemFraction: config.DefaultTTableMemFraction,
	}
}

func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		DepthLimit:        cfg.GetInt(config.ConfigDepthLimit),
		TimeLimit:         cfg.GetDuration(config.ConfigTimeLimit),
		Threads:           cfg.GetInt(config.ConfigThreads),
		TTableMemFraction: cfg.GetFloat64(config.ConfigTTableMemFraction),
	}
}

// ScoredMove is a root move and the minimax value found for it.
type ScoredMove struct {
	Col   int
	Score float64
}

func (m ScoredMove) String() string {
	return fmt.Sprintf("<col: %d score: %g>", m.Col, m.Score)
}

// Solver owns everything one search episode mutates: its copy of the
// position, the transposition table and the random source. A Solver must
// not be used from more than one goroutine at a time.
type Solver struct {
	dims    board.Dims
	params  Params
	eval    *heuristic.Evaluator
	zobrist *zobrist.Zobrist
	ttable  *TranspositionTable
	rng     RandSource
	clock   Clock

	pos         *board.Position
	perspective board.Player
	// one scratch move list per remaining depth, so recursion never
	// allocates.
	moveBufs [][]int
	nodes    uint64

	workers   []*Solver
	lastDepth int
}

// Init prepares the solver for boards of size d.
func (s *Solver) Init(d board.Dims, params Params) error {
	eval, err := heuristic.NewEvaluator(d)
	if err != nil {
		return err
	}
	if params.DepthLimit < 1 || params.DepthLimit > zobrist.MaxDepth {
		return fmt.Errorf("%w: depth limit %d", ErrBadParams, params.DepthLimit)
	}
	if params.TimeLimit < 0 {
		return fmt.Errorf("%w: time limit %v", ErrBadParams, params.TimeLimit)
	}
	if params.Threads < 1 {
		params.Threads = 1
	}
	s.dims = d
	s.params = params
	s.eval = eval
	if s.clock == nil {
		s.clock = wallClock{}
	}
	s.ttable = &TranspositionTable{}
	if params.Threads > 1 {
		// Root workers own the real tables. The parent only searches
		// when a single root move is left, so it gets the minimum.
		s.ttable.Reset(0)
	} else {
		s.ttable.Reset(params.TTableMemFraction)
	}
	s.moveBufs = make([][]int, params.DepthLimit+1)
	for i := range s.moveBufs {
		s.moveBufs[i] = make([]int, 0, d.Columns)
	}
	if s.rng == nil {
		s.rng = NewRandSource(0)
	}
	s.SetRandSource(s.rng)
	return nil
}

// SetRandSource replaces the move-ordering randomness. Zobrist keys and the
// sources of any root workers are redrawn from it, so a seeded source makes
// the whole search reproducible.
func (s *Solver) SetRandSource(r RandSource) {
	s.rng = r
	s.zobrist = &zobrist.Zobrist{}
	s.zobrist.Initialize(s.dims, r)
	s.workers = nil
	if s.params.Threads <= 1 {
		return
	}
	wparams := s.params
	wparams.Threads = 1
	wparams.TTableMemFraction = s.params.TTableMemFraction / float64(s.params.Threads)
	for i := 0; i < s.params.Threads; i++ {
		w := &Solver{
			rng:   NewRandSource(r.Uint64n(math.MaxUint64) + 1),
			clock: s.clock,
		}
		// Init cannot fail here; the parameters were already validated.
		if err := w.Init(s.dims, wparams); err != nil {
			panic(err)
		}
		s.workers = append(s.workers, w)
	}
}

// SetSeed is SetRandSource(NewRandSource(seed)).
func (s *Solver) SetSeed(seed uint64) {
	s.SetRandSource(NewRandSource(seed))
}

func (s *Solver) SetClock(c Clock) {
	s.clock = c
	for _, w := range s.workers {
		w.clock = c
	}
}

func (s *Solver) Params() Params {
	return s.params
}

func (s *Solver) Dims() board.Dims {
	return s.dims
}

// LastDepth is the deepest iteration completed by the last search.
func (s *Solver) LastDepth() int {
	return s.lastDepth
}

// Nodes is the number of nodes visited by the last search.
func (s *Solver) Nodes() uint64 {
	return s.nodes
}

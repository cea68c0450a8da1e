package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/c4lab/connectx/board"
)

// SelectMove picks a column for player among legal. See Rank.
func (s *Solver) SelectMove(ctx context.Context, pos *board.Position, player board.Player,
	legal []int) (int, error) {

	ranking, err := s.Rank(ctx, pos, player, legal)
	if err != nil {
		return 0, err
	}
	return ranking[0].Col, nil
}

// Rank orders legal from best to worst for player using iterative
// deepening. Every iteration searches each root move one ply deeper than the
// last, on an empty transposition table, and re-sorts the moves; ties keep
// the previous order, which starts out shuffled. The loop ends after
// DepthLimit iterations or once TimeLimit has passed; the clock is only
// looked at between iterations, and the ranking of the last completed
// iteration is returned. A cancelled ctx also stops the loop between
// iterations.
//
// pos is not modified. Calling Rank with no legal moves is an error.
func (s *Solver) Rank(ctx context.Context, pos *board.Position, player board.Player,
	legal []int) ([]ScoredMove, error) {

	if len(legal) == 0 {
		return nil, ErrNoLegalMoves
	}
	if !player.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	if pos.Dims != s.dims {
		return nil, fmt.Errorf("%w: position is %v, solver is %v",
			board.ErrBadDimensions, pos.Dims, s.dims)
	}
	for _, col := range legal {
		if !pos.CanPlay(col) {
			return nil, fmt.Errorf("%w: column %d", ErrIllegalMove, col)
		}
	}

	tstart := s.clock.Now()
	s.pos = pos.Copy()
	s.perspective = player
	s.nodes = 0
	s.lastDepth = 0
	s.ttable.resetStats()
	for _, w := range s.workers {
		w.pos = pos.Copy()
		w.perspective = player
	}

	ranking := lo.Map(legal, func(col int, _ int) ScoredMove {
		return ScoredMove{Col: col}
	})
	s.rng.Shuffle(len(ranking), func(i, j int) {
		ranking[i], ranking[j] = ranking[j], ranking[i]
	})

	for depth := 1; depth <= s.params.DepthLimit; depth++ {
		if err := ctx.Err(); err != nil {
			if s.lastDepth == 0 {
				return nil, err
			}
			log.Info().Err(err).Int("completed-depth", s.lastDepth).Msg("search-cancelled")
			break
		}
		if len(s.workers) > 1 && len(ranking) > 1 {
			if err := s.scoreMovesParallel(ctx, ranking, depth); err != nil {
				return nil, err
			}
		} else {
			s.scoreMoves(ranking, depth, 0, 1)
		}
		// Sort our moves by value, so that the best one comes first; ties
		// keep the order of the previous iteration.
		sort.SliceStable(ranking, func(i, j int) bool {
			return ranking[i].Score > ranking[j].Score
		})
		s.lastDepth = depth

		elapsed := s.clock.Now().Sub(tstart)
		log.Debug().
			Int("depth", depth).
			Int("best-col", ranking[0].Col).
			Float64("best-score", ranking[0].Score).
			Uint64("nodes", s.nodes).
			Dur("elapsed", elapsed).
			Msg("deepening-iteratively")
		if elapsed > s.params.TimeLimit {
			break
		}
	}

	log.Info().
		Int("depth", s.lastDepth).
		Int("best-col", ranking[0].Col).
		Float64("best-score", ranking[0].Score).
		Uint64("nodes", s.nodes).
		Uint64("ttable-created", s.ttable.created).
		Uint64("ttable-lookups", s.ttable.lookups).
		Uint64("ttable-hits", s.ttable.hits).
		Uint64("ttable-t2collisions", s.ttable.t2collisions).
		Float64("time-elapsed-sec", s.clock.Now().Sub(tstart).Seconds()).
		Msg("rank-returning")
	return ranking, nil
}

// scoreMoves fills in the score of ranking[start], ranking[start+step], ...
// at the given depth, starting from an empty transposition table.
func (s *Solver) scoreMoves(ranking []ScoredMove, depth, start, step int) {
	s.ttable.Clear()
	rootKey := s.zobrist.Hash(s.pos.Board)
	for i := start; i < len(ranking); i += step {
		col := ranking[i].Col
		childKey := s.zobrist.AddMove(rootKey, s.pos.Heights[col], s.perspective)
		s.pos.Drop(col, s.perspective)
		ranking[i].Score = s.minimax(childKey, depth-1, false, math.Inf(-1), math.Inf(1))
		s.pos.Undo(col, s.perspective)
	}
}

// scoreMovesParallel splits the root moves across the workers. Each worker
// has its own position copy, transposition table and random source, and
// writes only its own slots of ranking.
func (s *Solver) scoreMovesParallel(ctx context.Context, ranking []ScoredMove, depth int) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(len(s.workers))
	for idx, w := range s.workers {
		idx, w := idx, w
		w.nodes = 0
		if idx >= len(ranking) {
			continue
		}
		g.Go(func() error {
			w.scoreMoves(ranking, depth, idx, len(s.workers))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, w := range s.workers {
		s.nodes += w.nodes
		s.ttable.created += w.ttable.created
		s.ttable.lookups += w.ttable.lookups
		s.ttable.hits += w.ttable.hits
		s.ttable.t2collisions += w.ttable.t2collisions
		w.ttable.resetStats()
	}
	return nil
}

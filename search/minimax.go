package search

import (
	"math"

	"github.com/c4lab/connectx/board"
)

// thanks Wikipedia:
/*
function alphabeta(node, depth, α, β, maximizingPlayer) is
    if depth == 0 or node is terminal then
        return the heuristic value of node
    if maximizingPlayer then
        value := −∞
        for each child of node do
            value := max(value, alphabeta(child, depth − 1, α, β, FALSE))
            α := max(α, value)
            if α ≥ β then
                break (* β cutoff *)
        return value
    else
        value := +∞
        for each child of node do
            value := min(value, alphabeta(child, depth − 1, α, β, TRUE))
            β := min(β, value)
            if α ≥ β then
                break (* α cutoff *)
        return value
**/

// minimax returns the value of s.pos searched depth plies deep. The
// heuristic is always taken from s.perspective; maximizing says whether
// s.perspective is the side to move. nodeKey is the zobrist key of s.pos.
// s.pos is back in its original state when minimax returns.
func (s *Solver) minimax(nodeKey uint64, depth int, maximizing bool, α, β float64) float64 {
	s.nodes++
	bb := s.pos.Board
	searchKey := s.zobrist.SearchKey(nodeKey, depth, maximizing)

	alphaOrig, betaOrig := α, β
	if ttEntry, ok := s.ttable.Lookup(searchKey, bb, depth, maximizing); ok {
		switch ttEntry.flag {
		case TTExact:
			return ttEntry.score
		case TTLower:
			α = max(α, ttEntry.score)
		case TTUpper:
			β = min(β, ttEntry.score)
		}
		if α >= β {
			return ttEntry.score
		}
	}

	if depth == 0 || board.IsTerminal(s.dims, bb) || board.IsDraw(s.dims, s.pos.Heights) {
		score := s.eval.Score(bb, s.perspective)
		s.ttable.Store(searchKey, bb, depth, maximizing, score, TTExact)
		return score
	}

	moves := s.moveBufs[depth][:0]
	for col := 0; col < s.dims.Columns; col++ {
		if !board.IsFull(s.dims, s.pos.Heights, col) {
			moves = append(moves, col)
		}
	}
	s.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})

	mover := s.perspective
	bestValue := math.Inf(-1)
	if !maximizing {
		mover = s.perspective.Opponent()
		bestValue = math.Inf(1)
	}
	for _, col := range moves {
		childKey := s.zobrist.AddMove(nodeKey, s.pos.Heights[col], mover)
		s.pos.Drop(col, mover)
		value := s.minimax(childKey, depth-1, !maximizing, α, β)
		s.pos.Undo(col, mover)
		if maximizing {
			bestValue = max(bestValue, value)
			α = max(α, bestValue)
		} else {
			bestValue = min(bestValue, value)
			β = min(β, bestValue)
		}
		if α >= β {
			break // cut-off
		}
	}

	// A cut-off value is only a bound on the true value.
	flag := uint8(TTExact)
	if bestValue <= alphaOrig {
		flag = TTUpper
	} else if bestValue >= betaOrig {
		flag = TTLower
	}
	s.ttable.Store(searchKey, bb, depth, maximizing, bestValue, flag)
	return bestValue
}

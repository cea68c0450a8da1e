// Package heuristic scores connection-game positions by counting the
// straight windows of InARow cells that each player owns or threatens.
package heuristic

import (
	"fmt"
	"math/bits"

	"github.com/c4lab/connectx/board"
	"github.com/c4lab/connectx/cache"
)

// Window weights. Each is three orders of magnitude above the next, so a
// stronger pattern always outweighs any realistic count of weaker ones.
const (
	OwnLineWeight   = 1e9
	OppLineWeight   = 1e6
	OwnThreatWeight = 1e3
	OppThreatWeight = 1e0
)

// Counts are the window tallies behind a score, from one player's point
// of view.
type Counts struct {
	OwnLines   int // all InARow cells ours
	OppLines   int // all InARow cells theirs
	OwnThreats int // InARow-1 ours, the rest empty
	OppThreats int // InARow-1 theirs, the rest empty
}

// Score combines the counts with the fixed weights.
func (c Counts) Score() float64 {
	return OwnLineWeight*float64(c.OwnLines) -
		OppLineWeight*float64(c.OppLines) +
		OwnThreatWeight*float64(c.OwnThreats) -
		OppThreatWeight*float64(c.OppThreats)
}

// Evaluator holds the window masks for one board size.
type Evaluator struct {
	dims    board.Dims
	windows []uint64
}

// NewEvaluator returns an evaluator for d. Window tables are shared by all
// evaluators of the same size.
func NewEvaluator(d board.Dims) (*Evaluator, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	windows, err := cache.Load("windows:"+d.String(), func() ([]uint64, error) {
		return windowMasks(d), nil
	})
	if err != nil {
		return nil, err
	}
	return &Evaluator{dims: d, windows: windows}, nil
}

// NumWindows is the number of straight windows on the board; 69 for 6x7.
func (e *Evaluator) NumWindows() int {
	return len(e.windows)
}

// Count tallies the windows of bb from p's point of view.
func (e *Evaluator) Count(bb board.Bitboard, p board.Player) Counts {
	var c Counts
	own, opp := bb.Mask(p), bb.Mask(p.Opponent())
	n := e.dims.InARow
	for _, w := range e.windows {
		o := bits.OnesCount64(own & w)
		t := bits.OnesCount64(opp & w)
		switch {
		case o == n:
			c.OwnLines++
		case t == n:
			c.OppLines++
		case o == n-1 && t == 0:
			c.OwnThreats++
		case t == n-1 && o == 0:
			c.OppThreats++
		}
	}
	return c
}

// Score is the heuristic value of bb for p.
func (e *Evaluator) Score(bb board.Bitboard, p board.Player) float64 {
	return e.Count(bb, p).Score()
}

// Score is a convenience wrapper that builds (or fetches) the evaluator
// for d. Search code keeps its own Evaluator instead.
func Score(d board.Dims, bb board.Bitboard, p board.Player) (float64, error) {
	e, err := NewEvaluator(d)
	if err != nil {
		return 0, err
	}
	return e.Score(bb, p), nil
}

// windowMasks enumerates every horizontal, vertical and diagonal line of
// InARow cells as a bit mask.
func windowMasks(d board.Dims) []uint64 {
	dirs := [4][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal "\"
		{-1, 1}, // diagonal "/"
	}
	var masks []uint64
	for _, dir := range dirs {
		for row := 0; row < d.Rows; row++ {
			for col := 0; col < d.Columns; col++ {
				endRow := row + dir[0]*(d.InARow-1)
				endCol := col + dir[1]*(d.InARow-1)
				if endRow < 0 || endRow >= d.Rows || endCol >= d.Columns {
					continue
				}
				var m uint64
				for i := 0; i < d.InARow; i++ {
					m |= 1 << d.Bit(row+dir[0]*i, col+dir[1]*i)
				}
				masks = append(masks, m)
			}
		}
	}
	if len(masks) == 0 {
		panic(fmt.Sprintf("no windows for board %v", d))
	}
	return masks
}

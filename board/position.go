package board

import (
	"math/bits"

	"github.com/samber/lo"
)

// Position bundles a bitboard with its column heights. Search mutates it in
// place with Drop/Undo.
type Position struct {
	Dims    Dims
	Board   Bitboard
	Heights Heights
}

// NewPosition returns the empty position.
func NewPosition(d Dims) *Position {
	return &Position{Dims: d, Heights: NewHeights(d)}
}

// PositionFromGrid encodes g. Heights come from the grid.
func PositionFromGrid(d Dims, g Grid) (*Position, error) {
	bb, err := Encode(d, g)
	if err != nil {
		return nil, err
	}
	return &Position{Dims: d, Board: bb, Heights: ColumnHeights(d, g)}, nil
}

func (p *Position) Copy() *Position {
	return &Position{Dims: p.Dims, Board: p.Board, Heights: p.Heights.Copy()}
}

func (p *Position) Drop(col int, pl Player) {
	Drop(&p.Board, p.Heights, col, pl)
}

func (p *Position) Undo(col int, pl Player) {
	Undo(&p.Board, p.Heights, col, pl)
}

// CanPlay returns true if col is on the board and not full.
func (p *Position) CanPlay(col int) bool {
	return col >= 0 && col < p.Dims.Columns && !IsFull(p.Dims, p.Heights, col)
}

// LegalMoves lists the columns that are not full, left to right.
func (p *Position) LegalMoves() []int {
	return lo.Filter(lo.Range(p.Dims.Columns), func(col int, _ int) bool {
		return !IsFull(p.Dims, p.Heights, col)
	})
}

func (p *Position) IsTerminal() bool {
	return IsTerminal(p.Dims, p.Board)
}

func (p *Position) IsDraw() bool {
	return IsDraw(p.Dims, p.Heights)
}

func (p *Position) Winner() Player {
	return Winner(p.Dims, p.Board)
}

// NumPieces is the number of pieces on the board.
func (p *Position) NumPieces() int {
	return bits.OnesCount64(p.Board.Occupied())
}

// PlayerOnTurn infers whose move it is from the piece counts, assuming
// PlayerOne moved first.
func (p *Position) PlayerOnTurn() Player {
	if bits.OnesCount64(p.Board[0]) > bits.OnesCount64(p.Board[1]) {
		return PlayerTwo
	}
	return PlayerOne
}

func (p *Position) Grid() Grid {
	return Decode(p.Dims, p.Board)
}

package board

import "fmt"

// Player is the value held by a grid cell. Empty doubles as "no player".
type Player int8

const (
	Empty Player = iota
	PlayerOne
	PlayerTwo
)

// Opponent returns the other player. It must not be called on Empty.
func (p Player) Opponent() Player {
	return 3 - p
}

// Valid returns true for PlayerOne and PlayerTwo.
func (p Player) Valid() bool {
	return p == PlayerOne || p == PlayerTwo
}

func (p Player) String() string {
	switch p {
	case PlayerOne:
		return "x"
	case PlayerTwo:
		return "o"
	}
	return "."
}

// Bitboard has one occupancy mask per player; index 0 is PlayerOne.
// The two masks never share a set bit. A Bitboard is comparable and is
// used directly as a cache key.
type Bitboard [2]uint64

// Mask returns the occupancy mask of p.
func (b Bitboard) Mask(p Player) uint64 {
	return b[p-1]
}

// Occupied returns the union of both masks.
func (b Bitboard) Occupied() uint64 {
	return b[0] | b[1]
}

// Heights holds, per column, the index of the next free bit of that column.
// An empty column c starts at c*Stride; it is full at c*Stride+Rows.
type Heights []int

// NewHeights returns the heights of an empty board.
func NewHeights(d Dims) Heights {
	h := make(Heights, d.Columns)
	for col := range h {
		h[col] = col * d.Stride()
	}
	return h
}

func (h Heights) Copy() Heights {
	c := make(Heights, len(h))
	copy(c, h)
	return c
}

// Drop sets bit h[col] in p's mask and bumps the column height.
// The column must not be full; this is not checked.
func Drop(bb *Bitboard, h Heights, col int, p Player) {
	bb[p-1] ^= 1 << uint(h[col])
	h[col]++
}

// Undo is the exact inverse of Drop. It must be called with the same col
// and player as the matching Drop, in LIFO order.
func Undo(bb *Bitboard, h Heights, col int, p Player) {
	h[col]--
	bb[p-1] ^= 1 << uint(h[col])
}

// IsFull returns true if col has no free cell.
func IsFull(d Dims, h Heights, col int) bool {
	return h[col] == col*d.Stride()+d.Rows
}

// IsDraw returns true if every column is full.
func IsDraw(d Dims, h Heights) bool {
	for col := range h {
		if !IsFull(d, h, col) {
			return false
		}
	}
	return true
}

// CheckGravity returns ErrFloatingPiece if some column of bb has an empty
// cell under an occupied one. Heights and Drop assume the occupied cells of
// a column are contiguous from the bottom.
func CheckGravity(d Dims, bb Bitboard) error {
	occ := bb.Occupied()
	colMask := uint64(1)<<uint(d.Rows) - 1
	for col := 0; col < d.Columns; col++ {
		c := (occ >> uint(col*d.Stride())) & colMask
		if c&(c+1) != 0 {
			return fmt.Errorf("%w: column %d", ErrFloatingPiece, col)
		}
	}
	return nil
}

// connected returns the bits of m that start a run of n set bits going in
// the direction given by shift.
func connected(m uint64, shift uint, n int) uint64 {
	r := m
	for i := 1; i < n && r != 0; i++ {
		r &= m >> (shift * uint(i))
	}
	return r
}

// HasFour returns true if m contains d.InARow set bits in a line. Shifts
// are 1 (vertical), Stride (horizontal), Stride-1 (diagonal "\") and
// Stride+1 (diagonal "/"); the padding bit on top of each column keeps
// lines from wrapping across columns.
func HasFour(d Dims, m uint64) bool {
	s := uint(d.Stride())
	return connected(m, 1, d.InARow) != 0 ||
		connected(m, s, d.InARow) != 0 ||
		connected(m, s-1, d.InARow) != 0 ||
		connected(m, s+1, d.InARow) != 0
}

// IsTerminal returns true if either player has a winning line.
func IsTerminal(d Dims, bb Bitboard) bool {
	return HasFour(d, bb[0]) || HasFour(d, bb[1])
}

// Winner returns the player holding a winning line, or Empty.
func Winner(d Dims, bb Bitboard) Player {
	switch {
	case HasFour(d, bb[0]):
		return PlayerOne
	case HasFour(d, bb[1]):
		return PlayerTwo
	}
	return Empty
}

package board

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/matryer/is"
)

const sampleGrid = `
.......
.......
...o...
..xo...
..xox..
.xxoox.
`

func randomPosition(r *rand.Rand, d Dims, plies int) (*Position, []int) {
	pos := NewPosition(d)
	var moves []int
	turn := PlayerOne
	for i := 0; i < plies; i++ {
		legal := pos.LegalMoves()
		if len(legal) == 0 {
			break
		}
		col := legal[r.Intn(len(legal))]
		pos.Drop(col, turn)
		moves = append(moves, col)
		turn = turn.Opponent()
	}
	return pos, moves
}

func TestDefaultDims(t *testing.T) {
	is := is.New(t)
	is.NoErr(DefaultDims.Validate())
	is.Equal(DefaultDims.Stride(), 7)
	// bottom-left is bit 0, top-left bit 5, bottom of column 1 is bit 7.
	is.Equal(DefaultDims.Bit(5, 0), uint(0))
	is.Equal(DefaultDims.Bit(0, 0), uint(5))
	is.Equal(DefaultDims.Bit(5, 1), uint(7))
	is.Equal(DefaultDims.Bit(0, 6), uint(47))
}

func TestValidateDims(t *testing.T) {
	is := is.New(t)
	for _, d := range []Dims{
		{Rows: 0, Columns: 7, InARow: 4},
		{Rows: 6, Columns: 7, InARow: 1},
		{Rows: 3, Columns: 3, InARow: 4},
		{Rows: 8, Columns: 8, InARow: 4},
	} {
		is.True(errors.Is(d.Validate(), ErrBadDimensions))
	}
	is.NoErr(Dims{Rows: 7, Columns: 8, InARow: 5}.Validate())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	is := is.New(t)
	g, err := ParseGrid(DefaultDims, sampleGrid)
	is.NoErr(err)
	bb, err := Encode(DefaultDims, g)
	is.NoErr(err)
	is.Equal(Decode(DefaultDims, bb), g)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		pos, _ := randomPosition(r, DefaultDims, r.Intn(DefaultDims.Cells()+1))
		g := Decode(DefaultDims, pos.Board)
		bb, err := Encode(DefaultDims, g)
		is.NoErr(err)
		is.Equal(bb, pos.Board)
		is.Equal(Decode(DefaultDims, bb), g)
		is.Equal(ColumnHeights(DefaultDims, g), pos.Heights)
	}
}

func TestEncodeInvalidCell(t *testing.T) {
	is := is.New(t)
	g := NewGrid(DefaultDims)
	g[2][3] = Player(3)
	_, err := Encode(DefaultDims, g)
	is.True(errors.Is(err, ErrInvalidCellValue))

	cells := make([]int, DefaultDims.Cells())
	cells[10] = -1
	_, err = GridFromFlat(DefaultDims, cells)
	is.True(errors.Is(err, ErrInvalidCellValue))

	_, err = GridFromFlat(DefaultDims, cells[:12])
	is.True(errors.Is(err, ErrBadDimensions))

	_, err = ParseGrid(DefaultDims, "..z....\n")
	is.True(errors.Is(err, ErrInvalidCellValue))
}

func TestDecodeOverlapPanics(t *testing.T) {
	is := is.New(t)
	defer func() {
		is.True(recover() != nil)
	}()
	Decode(DefaultDims, Bitboard{0b11, 0b10})
}

func TestFlat(t *testing.T) {
	is := is.New(t)
	g, err := ParseGrid(DefaultDims, sampleGrid)
	is.NoErr(err)
	flat := g.Flat()
	is.Equal(len(flat), 42)
	g2, err := GridFromFlat(DefaultDims, flat)
	is.NoErr(err)
	is.Equal(g2, g)
	is.Equal(flat[5*7+1], 1)
	is.Equal(flat[2*7+3], 2)
}

func TestCheckGravity(t *testing.T) {
	is := is.New(t)
	g, err := ParseGrid(DefaultDims, sampleGrid)
	is.NoErr(err)
	bb, err := Encode(DefaultDims, g)
	is.NoErr(err)
	is.NoErr(CheckGravity(DefaultDims, bb))
	is.NoErr(CheckGravity(DefaultDims, Bitboard{}))

	// o on the top row of column 0 over an empty cell, x on the bottom.
	floating := NewGrid(DefaultDims)
	floating[0][0] = PlayerTwo
	floating[5][0] = PlayerOne
	bb, err = Encode(DefaultDims, floating)
	is.NoErr(err)
	is.True(errors.Is(CheckGravity(DefaultDims, bb), ErrFloatingPiece))

	// a gap in the last column only.
	floating = NewGrid(DefaultDims)
	floating[3][6] = PlayerOne
	bb, err = Encode(DefaultDims, floating)
	is.NoErr(err)
	is.True(errors.Is(CheckGravity(DefaultDims, bb), ErrFloatingPiece))

	// a full column is fine.
	pos := NewPosition(DefaultDims)
	for i := 0; i < DefaultDims.Rows; i++ {
		pos.Drop(2, PlayerOne+Player(i%2))
	}
	is.NoErr(CheckGravity(DefaultDims, pos.Board))
}

func TestHeights(t *testing.T) {
	is := is.New(t)
	g, err := ParseGrid(DefaultDims, sampleGrid)
	is.NoErr(err)
	is.Equal(ColumnHeights(DefaultDims, g), Heights{0, 8, 17, 25, 30, 36, 42})
	is.Equal(NewHeights(DefaultDims), Heights{0, 7, 14, 21, 28, 35, 42})
}

func TestDropUndoInverse(t *testing.T) {
	is := is.New(t)
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		pos, _ := randomPosition(r, DefaultDims, r.Intn(DefaultDims.Cells()))
		legal := pos.LegalMoves()
		if len(legal) == 0 {
			continue
		}
		before := pos.Copy()
		col := legal[r.Intn(len(legal))]
		p := pos.PlayerOnTurn()
		pos.Drop(col, p)
		is.True(pos.Board != before.Board)
		pos.Undo(col, p)
		is.Equal(pos.Board, before.Board)
		is.Equal(pos.Heights, before.Heights)
	}
}

func TestDisjointAfterBalancedSequence(t *testing.T) {
	is := is.New(t)
	r := rand.New(rand.NewSource(99))
	for i := 0; i < 100; i++ {
		pos, moves := randomPosition(r, DefaultDims, DefaultDims.Cells())
		is.Equal(pos.Board[0]&pos.Board[1], uint64(0))
		is.True(pos.IsDraw())
		// unwind everything, checking disjointness on the way.
		turn := PlayerOne
		if len(moves)%2 == 0 {
			turn = PlayerTwo
		}
		for j := len(moves) - 1; j >= 0; j-- {
			pos.Undo(moves[j], turn)
			is.Equal(pos.Board[0]&pos.Board[1], uint64(0))
			turn = turn.Opponent()
		}
		is.Equal(pos.Board, Bitboard{})
		is.Equal(pos.Heights, NewHeights(DefaultDims))
	}
}

func TestTerminalDetection(t *testing.T) {
	is := is.New(t)
	type testcase struct {
		name     string
		grid     string
		terminal bool
		winner   Player
	}
	cases := []testcase{
		{"horizontal", `
.......
.......
.......
.......
.......
.xxxx..`, true, PlayerOne},
		{"vertical", `
.......
.......
..o....
..o....
..o....
.xox.x.`, true, PlayerTwo},
		{"diagonal up", `
.......
.......
....x..
...xo..
..xoo..
.xoox..`, true, PlayerOne},
		{"diagonal down", `
.......
.......
o......
xo.....
xxo....
xxxo...`, true, PlayerTwo},
		{"three with gap", `
.......
.......
.......
.......
.......
xx.x...`, false, Empty},
		{"three vertical", `
.......
.......
.......
x......
x......
x......`, false, Empty},
		{"no wrap across columns", `
x......
.......
.......
.......
......x
.....xx`, false, Empty},
	}
	for _, tc := range cases {
		g, err := ParseGrid(DefaultDims, tc.grid)
		is.NoErr(err)
		bb, err := Encode(DefaultDims, g)
		is.NoErr(err)
		is.Equal(IsTerminal(DefaultDims, bb), tc.terminal) // terminal mismatch
		is.Equal(Winner(DefaultDims, bb), tc.winner)
	}
}

func TestDefaultShiftsMatchClassicLayout(t *testing.T) {
	is := is.New(t)
	// the classic 6x7 board checks lines with shifts 1, 7, 6 and 8.
	var vertical, horizontal, down, up uint64
	for i := 0; i < 4; i++ {
		vertical |= 1 << uint(i)
		horizontal |= 1 << uint(7*i)
		down |= 1 << uint(3+6*i)
		up |= 1 << uint(8*i)
	}
	for _, m := range []uint64{vertical, horizontal, down, up} {
		is.True(HasFour(DefaultDims, m))
		is.True(!HasFour(DefaultDims, m&(m-1)))
	}
}

func TestIsDraw(t *testing.T) {
	is := is.New(t)
	h := NewHeights(DefaultDims)
	is.True(!IsDraw(DefaultDims, h))
	for col := range h {
		h[col] += DefaultDims.Rows
	}
	is.True(IsDraw(DefaultDims, h))
	h[3]--
	is.True(!IsDraw(DefaultDims, h))
	is.True(IsFull(DefaultDims, h, 2))
	is.True(!IsFull(DefaultDims, h, 3))
}

func TestLegalMovesAndTurn(t *testing.T) {
	is := is.New(t)
	g, err := ParseGrid(DefaultDims, `
x......
o......
x......
o......
x......
o......`)
	is.NoErr(err)
	pos, err := PositionFromGrid(DefaultDims, g)
	is.NoErr(err)
	is.Equal(pos.LegalMoves(), []int{1, 2, 3, 4, 5, 6})
	is.True(!pos.CanPlay(0))
	is.True(!pos.CanPlay(7))
	is.True(pos.CanPlay(6))
	is.Equal(pos.PlayerOnTurn(), PlayerOne)
	is.Equal(pos.NumPieces(), 6)
}

func TestOtherDimensions(t *testing.T) {
	is := is.New(t)
	d := Dims{Rows: 5, Columns: 9, InARow: 5}
	is.NoErr(d.Validate())
	pos := NewPosition(d)
	for col := 2; col < 6; col++ {
		pos.Drop(col, PlayerOne)
	}
	is.True(!pos.IsTerminal())
	pos.Drop(6, PlayerOne)
	is.Equal(pos.Winner(), PlayerOne)
	g := pos.Grid()
	is.Equal(g[4], []Player{0, 0, 1, 1, 1, 1, 1, 0, 0})
}

func TestDisplayText(t *testing.T) {
	is := is.New(t)
	g, err := ParseGrid(DefaultDims, sampleGrid)
	is.NoErr(err)
	txt := g.ToDisplayText(nil)
	is.Equal(txt, `| . . . . . . . |
| . . . . . . . |
| . . . o . . . |
| . . x o . . . |
| . . x o x . . |
| . x x o o x . |
  0 1 2 3 4 5 6
`)
	is.Equal(g.String(), `.......
.......
...o...
..xo...
..xox..
.xxoox.
`)
}

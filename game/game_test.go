package game

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/c4lab/connectx/board"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func playAll(t *testing.T, g *Game, cols ...int) {
	t.Helper()
	for _, c := range cols {
		if err := g.Play(c); err != nil {
			t.Fatalf("play %d: %v", c, err)
		}
	}
}

func TestNewGame(t *testing.T) {
	is := is.New(t)
	g, err := NewGame(board.DefaultDims)
	is.NoErr(err)
	is.Equal(g.PlayerOnTurn(), board.PlayerOne)
	is.Equal(g.Playing(), PlayStatePlaying)
	is.Equal(g.Winner(), board.Empty)
	is.Equal(g.LegalMoves(), []int{0, 1, 2, 3, 4, 5, 6})
	is.Equal(g.Turn(), 0)

	_, err = NewGame(board.Dims{Rows: 10, Columns: 10, InARow: 4})
	is.True(errors.Is(err, board.ErrBadDimensions))
}

func TestVerticalWin(t *testing.T) {
	is := is.New(t)
	g, _ := NewGame(board.DefaultDims)
	playAll(t, g, 3, 4, 3, 4, 3, 4)
	is.Equal(g.Playing(), PlayStatePlaying)
	is.NoErr(g.Play(3))
	is.Equal(g.Playing(), PlayStateWon)
	is.Equal(g.Winner(), board.PlayerOne)
	is.Equal(g.LegalMoves(), nil)
	is.True(errors.Is(g.Play(0), ErrGameOver))
}

func TestHorizontalWinForSecondPlayer(t *testing.T) {
	is := is.New(t)
	g, _ := NewGame(board.DefaultDims)
	playAll(t, g, 0, 1, 0, 2, 0, 3, 6, 4)
	is.Equal(g.Winner(), board.PlayerTwo)
	is.Equal(g.Playing(), PlayStateWon)
}

func TestPlayErrors(t *testing.T) {
	is := is.New(t)
	g, _ := NewGame(board.DefaultDims)
	is.True(errors.Is(g.Play(-1), ErrInvalidColumn))
	is.True(errors.Is(g.Play(7), ErrInvalidColumn))
	// fill column 0 without anyone connecting.
	playAll(t, g, 0, 0, 0, 0, 0, 0)
	is.True(errors.Is(g.Play(0), ErrColumnFull))
	is.Equal(g.Turn(), 6)
}

func TestUndo(t *testing.T) {
	is := is.New(t)
	g, _ := NewGame(board.DefaultDims)
	is.True(errors.Is(g.Undo(), ErrNothingToUndo))

	playAll(t, g, 3, 4, 3, 4, 3, 4, 3)
	is.Equal(g.Playing(), PlayStateWon)
	is.NoErr(g.Undo())
	is.Equal(g.Playing(), PlayStatePlaying)
	is.Equal(g.Winner(), board.Empty)
	is.Equal(g.PlayerOnTurn(), board.PlayerOne)
	is.Equal(len(g.History()), 6)

	for g.Turn() > 0 {
		is.NoErr(g.Undo())
	}
	is.Equal(g.Position().Board, board.Bitboard{})
}

func TestDraw(t *testing.T) {
	is := is.New(t)
	// 2x2 connect-2 can't be drawn, but 2x3 connect-3 can.
	d := board.Dims{Rows: 2, Columns: 3, InARow: 3}
	g, err := NewGame(d)
	is.NoErr(err)
	playAll(t, g, 0, 1, 2, 0, 1, 2)
	is.Equal(g.Playing(), PlayStateDrawn)
	is.Equal(g.Winner(), board.Empty)
	is.True(errors.Is(g.Play(0), ErrGameOver))
}

func TestFromPosition(t *testing.T) {
	is := is.New(t)
	grid, err := board.ParseGrid(board.DefaultDims, `
.......
.......
.......
.......
oo.....
xxx...o
`)
	is.NoErr(err)
	pos, err := board.PositionFromGrid(board.DefaultDims, grid)
	is.NoErr(err)
	g, err := FromPosition(pos)
	is.NoErr(err)
	is.Equal(g.PlayerOnTurn(), board.PlayerOne)
	is.NoErr(g.Play(3))
	is.Equal(g.Winner(), board.PlayerOne)

	// reset goes back to the loaded position, not the empty board.
	g.Reset()
	is.Equal(g.Position().Board, pos.Board)
	is.True(errors.Is(g.Undo(), ErrNothingToUndo))

	bad := board.NewPosition(board.DefaultDims)
	bad.Drop(0, board.PlayerTwo)
	_, err = FromPosition(bad)
	is.True(errors.Is(err, ErrBadPosition))
}

func TestFromPositionFloatingPiece(t *testing.T) {
	is := is.New(t)
	grid := board.NewGrid(board.DefaultDims)
	grid[0][0] = board.PlayerTwo
	grid[5][0] = board.PlayerOne
	pos, err := board.PositionFromGrid(board.DefaultDims, grid)
	is.NoErr(err)
	g, err := FromPosition(pos)
	is.True(errors.Is(err, ErrBadPosition))
	is.True(errors.Is(err, board.ErrFloatingPiece))
	is.True(g == nil)
}

func TestHistoryIsACopy(t *testing.T) {
	g, _ := NewGame(board.DefaultDims)
	playAll(t, g, 2, 5)
	h := g.History()
	h[0].Col = 6
	assert.Equal(t, []Turn{{board.PlayerOne, 2}, {board.PlayerTwo, 5}}, g.History())
}

func TestDisplayText(t *testing.T) {
	g, _ := NewGame(board.DefaultDims)
	playAll(t, g, 3, 2)
	txt := g.ToDisplayText(nil)
	assert.True(t, strings.Contains(txt, "Turn 3: x to move"))
	assert.True(t, strings.Contains(txt, "Moves: x3 o2"))

	playAll(t, g, 3, 2, 3, 2, 3)
	assert.True(t, strings.Contains(g.ToDisplayText(nil), "Game over: x wins"))
}

// Package game holds the state of a single match: whose turn it is, the
// moves played so far and whether it is over.
// Note: a Game doesn't care how it is played. The engine, the shell and the
// self-play runner all drive it from outside.
package game

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/rs/zerolog/log"

	"github.com/c4lab/connectx/board"
)

var (
	ErrGameOver      = errors.New("game is over")
	ErrInvalidColumn = errors.New("invalid column")
	ErrColumnFull    = errors.New("column is full")
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrBadPosition   = errors.New("position cannot arise in a game")
)

type PlayState int

const (
	PlayStatePlaying PlayState = iota
	PlayStateWon
	PlayStateDrawn
)

func (s PlayState) String() string {
	switch s {
	case PlayStatePlaying:
		return "playing"
	case PlayStateWon:
		return "won"
	case PlayStateDrawn:
		return "drawn"
	}
	return fmt.Sprintf("PlayState(%d)", int(s))
}

// Turn is one piece dropped.
type Turn struct {
	Player board.Player `yaml:"player" json:"player"`
	Col    int          `yaml:"col" json:"col"`
}

type Game struct {
	dims    board.Dims
	pos     *board.Position
	initial *board.Position

	onturn  board.Player
	playing PlayState
	winner  board.Player
	// history only has the turns played since the starting position.
	history []Turn
}

// NewGame starts an empty board with PlayerOne to move.
func NewGame(d board.Dims) (*Game, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	g := &Game{dims: d, initial: board.NewPosition(d)}
	g.Reset()
	return g, nil
}

// FromPosition starts a game from an arbitrary position. PlayerOne is
// assumed to have moved first, so the piece counts decide who is on turn.
func FromPosition(pos *board.Position) (*Game, error) {
	if err := pos.Dims.Validate(); err != nil {
		return nil, err
	}
	if err := board.CheckGravity(pos.Dims, pos.Board); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPosition, err)
	}
	ones := bits.OnesCount64(pos.Board[0])
	twos := bits.OnesCount64(pos.Board[1])
	if ones != twos && ones != twos+1 {
		return nil, fmt.Errorf("%w: %d pieces for %v and %d for %v",
			ErrBadPosition, ones, board.PlayerOne, twos, board.PlayerTwo)
	}
	if board.HasFour(pos.Dims, pos.Board[0]) && board.HasFour(pos.Dims, pos.Board[1]) {
		return nil, fmt.Errorf("%w: both players have won", ErrBadPosition)
	}
	g := &Game{dims: pos.Dims, initial: pos.Copy()}
	g.Reset()
	return g, nil
}

// Reset goes back to the starting position.
func (g *Game) Reset() {
	g.pos = g.initial.Copy()
	g.onturn = g.pos.PlayerOnTurn()
	g.history = nil
	g.updatePlayState()
}

func (g *Game) updatePlayState() {
	g.winner = g.pos.Winner()
	switch {
	case g.winner != board.Empty:
		g.playing = PlayStateWon
	case g.pos.IsDraw():
		g.playing = PlayStateDrawn
	default:
		g.playing = PlayStatePlaying
	}
}

// Play drops a piece for the player on turn.
func (g *Game) Play(col int) error {
	if g.playing != PlayStatePlaying {
		return ErrGameOver
	}
	if col < 0 || col >= g.dims.Columns {
		return fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	if !g.pos.CanPlay(col) {
		return fmt.Errorf("%w: %d", ErrColumnFull, col)
	}
	g.pos.Drop(col, g.onturn)
	g.history = append(g.history, Turn{Player: g.onturn, Col: col})
	g.updatePlayState()
	log.Debug().Str("player", g.onturn.String()).Int("col", col).
		Str("state", g.playing.String()).Msg("played")
	g.onturn = g.onturn.Opponent()
	return nil
}

// Undo takes back the last turn played.
func (g *Game) Undo() error {
	if len(g.history) == 0 {
		return ErrNothingToUndo
	}
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]
	g.pos.Undo(last.Col, last.Player)
	g.onturn = last.Player
	g.updatePlayState()
	return nil
}

func (g *Game) Dims() board.Dims {
	return g.dims
}

// Position returns a copy of the current position.
func (g *Game) Position() *board.Position {
	return g.pos.Copy()
}

func (g *Game) Grid() board.Grid {
	return g.pos.Grid()
}

func (g *Game) PlayerOnTurn() board.Player {
	return g.onturn
}

func (g *Game) Playing() PlayState {
	return g.playing
}

// Winner is Empty unless the game was won.
func (g *Game) Winner() board.Player {
	return g.winner
}

func (g *Game) LegalMoves() []int {
	if g.playing != PlayStatePlaying {
		return nil
	}
	return g.pos.LegalMoves()
}

// History returns a copy of the turns played so far.
func (g *Game) History() []Turn {
	return append([]Turn(nil), g.history...)
}

// Turn is the number of turns played since the starting position.
func (g *Game) Turn() int {
	return len(g.history)
}

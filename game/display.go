package game

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
)

// ToDisplayText turns the current state of the game into a displayable
// string. w only decides whether pieces are coloured; see
// board.Grid.ToDisplayText.
func (g *Game) ToDisplayText(w io.Writer) string {
	var sb strings.Builder
	sb.WriteString(g.Grid().ToDisplayText(w))
	sb.WriteString("\n")
	switch g.playing {
	case PlayStatePlaying:
		fmt.Fprintf(&sb, "Turn %d: %v to move\n", g.Turn()+1, g.onturn)
	case PlayStateWon:
		fmt.Fprintf(&sb, "Game over: %v wins\n", g.winner)
	case PlayStateDrawn:
		sb.WriteString("Game over: draw\n")
	}
	if len(g.history) > 0 {
		moves := lo.Map(g.history, func(t Turn, _ int) string {
			return fmt.Sprintf("%v%d", t.Player, t.Col)
		})
		fmt.Fprintf(&sb, "Moves: %s\n", strings.Join(moves, " "))
	}
	return sb.String()
}

package board

import (
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
)

var pieceColors = map[Player]string{
	PlayerOne: "1", // red
	PlayerTwo: "3", // yellow
}

// ToDisplayText draws the grid with column numbers underneath, colouring the
// pieces for whatever the terminal behind w supports. Pass a nil writer to
// get plain text.
func (g Grid) ToDisplayText(w io.Writer) string {
	var out *termenv.Output
	if w != nil {
		out = termenv.NewOutput(w)
	}
	var sb strings.Builder
	for _, row := range g {
		sb.WriteString("|")
		for _, v := range row {
			sb.WriteString(" ")
			cell := v.String()
			if out != nil && v != Empty {
				cell = out.String(cell).Foreground(out.Color(pieceColors[v])).Bold().String()
			}
			sb.WriteString(cell)
		}
		sb.WriteString(" |\n")
	}
	if len(g) > 0 {
		sb.WriteString(" ")
		for col := range g[0] {
			sb.WriteString(" ")
			sb.WriteString(strconv.Itoa(col % 10))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

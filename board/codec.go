package board

import (
	"fmt"
	"strings"
)

// Grid is a Rows x Columns matrix of cells, row 0 at the top. It is only
// used at the boundary; search works on Bitboards.
type Grid [][]Player

// NewGrid returns an empty grid.
func NewGrid(d Dims) Grid {
	g := make(Grid, d.Rows)
	for r := range g {
		g[r] = make([]Player, d.Columns)
	}
	return g
}

func (g Grid) checkShape(d Dims) error {
	if len(g) != d.Rows {
		return fmt.Errorf("%w: grid has %d rows, expected %d", ErrBadDimensions, len(g), d.Rows)
	}
	for r, row := range g {
		if len(row) != d.Columns {
			return fmt.Errorf("%w: row %d has %d columns, expected %d",
				ErrBadDimensions, r, len(row), d.Columns)
		}
	}
	return nil
}

// Encode converts a grid into a bitboard.
func Encode(d Dims, g Grid) (Bitboard, error) {
	var bb Bitboard
	if err := g.checkShape(d); err != nil {
		return bb, err
	}
	for row := 0; row < d.Rows; row++ {
		for col := 0; col < d.Columns; col++ {
			v := g[row][col]
			if v == Empty {
				continue
			}
			if !v.Valid() {
				return Bitboard{}, fmt.Errorf("%w: %d at row %d col %d",
					ErrInvalidCellValue, v, row, col)
			}
			bb[v-1] |= 1 << d.Bit(row, col)
		}
	}
	return bb, nil
}

// Decode converts a bitboard back into a grid. It panics if the two masks
// overlap, since no legal sequence of drops can produce that.
func Decode(d Dims, bb Bitboard) Grid {
	if bb[0]&bb[1] != 0 {
		panic(fmt.Sprintf("overlapping player masks: %#x & %#x", bb[0], bb[1]))
	}
	g := NewGrid(d)
	for row := 0; row < d.Rows; row++ {
		for col := 0; col < d.Columns; col++ {
			bit := uint64(1) << d.Bit(row, col)
			if bb[0]&bit != 0 {
				g[row][col] = PlayerOne
			} else if bb[1]&bit != 0 {
				g[row][col] = PlayerTwo
			}
		}
	}
	return g
}

// ColumnHeights counts the occupied cells of every column, offset by
// col*Stride. It looks only at the grid, not at any bitboard.
func ColumnHeights(d Dims, g Grid) Heights {
	h := NewHeights(d)
	for row := 0; row < d.Rows && row < len(g); row++ {
		for col := 0; col < d.Columns && col < len(g[row]); col++ {
			if g[row][col] != Empty {
				h[col]++
			}
		}
	}
	return h
}

// GridFromFlat builds a grid from row-major cell values.
func GridFromFlat(d Dims, cells []int) (Grid, error) {
	if len(cells) != d.Cells() {
		return nil, fmt.Errorf("%w: got %d cells, expected %d",
			ErrBadDimensions, len(cells), d.Cells())
	}
	g := NewGrid(d)
	for i, v := range cells {
		if v < 0 || v > int(PlayerTwo) {
			return nil, fmt.Errorf("%w: %d at index %d", ErrInvalidCellValue, v, i)
		}
		g[i/d.Columns][i%d.Columns] = Player(v)
	}
	return g, nil
}

// Flat returns the cells of g in row-major order.
func (g Grid) Flat() []int {
	var cells []int
	for _, row := range g {
		for _, v := range row {
			cells = append(cells, int(v))
		}
	}
	return cells
}

// ParseGrid reads a grid drawn as text, one line per row, top row first.
// '.', '-', '_' and '0' are empty; 'x', 'X' and '1' are PlayerOne; 'o', 'O'
// and '2' are PlayerTwo. Spaces and '|' are ignored.
func ParseGrid(d Dims, s string) (Grid, error) {
	g := NewGrid(d)
	row := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if row >= d.Rows {
			return nil, fmt.Errorf("%w: more than %d rows", ErrBadDimensions, d.Rows)
		}
		col := 0
		for _, c := range line {
			var p Player
			switch c {
			case ' ', '\t', '|':
				continue
			case '.', '-', '_', '0':
				p = Empty
			case 'x', 'X', '1':
				p = PlayerOne
			case 'o', 'O', '2':
				p = PlayerTwo
			default:
				return nil, fmt.Errorf("%w: %q in row %d", ErrInvalidCellValue, c, row)
			}
			if col >= d.Columns {
				return nil, fmt.Errorf("%w: row %d has more than %d columns",
					ErrBadDimensions, row, d.Columns)
			}
			g[row][col] = p
			col++
		}
		if col != d.Columns {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d",
				ErrBadDimensions, row, col, d.Columns)
		}
		row++
	}
	if row != d.Rows {
		return nil, fmt.Errorf("%w: got %d rows, expected %d", ErrBadDimensions, row, d.Rows)
	}
	return g, nil
}

// String draws the grid in the format accepted by ParseGrid.
func (g Grid) String() string {
	var sb strings.Builder
	for _, row := range g {
		for _, v := range row {
			sb.WriteString(v.String())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

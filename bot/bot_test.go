package bot

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/c4lab/connectx/board"
	"github.com/c4lab/connectx/config"
	"github.com/c4lab/connectx/search"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testAgent(t *testing.T) *Agent {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigDepthLimit, 4)
	cfg.Set(config.ConfigTTableMemFraction, 0.0)
	cfg.Set(config.ConfigSeed, uint64(17))
	a, err := NewAgent(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// P2 to move; column 5 stops the bottom row.
var mustBlock = []int{
	0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 2, 0, 0, 0,
	0, 0, 2, 1, 0, 0, 0,
	0, 2, 1, 1, 1, 0, 0,
}

func TestMoveBlocks(t *testing.T) {
	is := is.New(t)
	a := testAgent(t)
	col, err := a.Move(context.Background(), Observation{Board: mustBlock, Mark: 2})
	is.NoErr(err)
	is.Equal(col, 5)
}

func TestMoveFromGridText(t *testing.T) {
	is := is.New(t)
	a := testAgent(t)
	obs := Observation{Mark: 1, Grid: `
.......
.......
.......
.......
oo.....
xxx...o
`}
	col, err := a.Move(context.Background(), obs)
	is.NoErr(err)
	is.Equal(col, 3)
}

func TestMoveIsLegal(t *testing.T) {
	is := is.New(t)
	a := testAgent(t)
	cells := make([]int, board.DefaultDims.Cells())
	// fill every column but 4.
	for row := 0; row < board.DefaultRows; row++ {
		for col := 0; col < board.DefaultColumns; col++ {
			if col == 4 {
				continue
			}
			// columns alternate in pairs so nothing connects.
			cells[row*board.DefaultColumns+col] = 1 + (row+col/2)%2
		}
	}
	ranking, err := a.Rank(context.Background(), Observation{Board: cells, Mark: 1})
	is.NoErr(err)
	is.Equal(len(ranking), 1)
	is.Equal(ranking[0].Col, 4)
}

func TestObservationErrors(t *testing.T) {
	is := is.New(t)
	a := testAgent(t)
	ctx := context.Background()
	empty := make([]int, board.DefaultDims.Cells())

	_, err := a.Move(ctx, Observation{Board: empty, Mark: 0})
	is.True(errors.Is(err, ErrInvalidMark))
	_, err = a.Move(ctx, Observation{Board: empty, Mark: 3})
	is.True(errors.Is(err, ErrInvalidMark))

	bad := append([]int(nil), empty...)
	bad[10] = 5
	_, err = a.Move(ctx, Observation{Board: bad, Mark: 1})
	is.True(errors.Is(err, board.ErrInvalidCellValue))

	_, err = a.Move(ctx, Observation{Board: empty[:20], Mark: 1})
	is.True(errors.Is(err, board.ErrBadDimensions))

	_, err = a.Move(ctx, Observation{Mark: 1})
	is.True(errors.Is(err, ErrNoBoard))

	floating := append([]int(nil), empty...)
	floating[0] = 2
	floating[5*board.DefaultColumns] = 1
	_, err = a.Move(ctx, Observation{Board: floating, Mark: 1})
	is.True(errors.Is(err, board.ErrFloatingPiece))
	_, _, err = Observation{Mark: 1, Grid: "...x...\n.......\n.......\n.......\n.......\n......."}.Position(board.DefaultDims)
	is.True(errors.Is(err, board.ErrFloatingPiece))

	full := make([]int, board.DefaultDims.Cells())
	for i := range full {
		full[i] = 1 + (i/board.DefaultColumns+(i%board.DefaultColumns)/2)%2
	}
	_, err = a.Move(ctx, Observation{Board: full, Mark: 1})
	is.True(errors.Is(err, search.ErrNoLegalMoves))
}

func TestLoadObservation(t *testing.T) {
	obs, err := LoadObservation(strings.NewReader(`
mark: 2
grid: |
  .......
  .......
  .......
  .......
  .......
  ...x...
`))
	assert.NoError(t, err)
	assert.Equal(t, 2, obs.Mark)
	assert.Contains(t, obs.Grid, "...x...")

	obs, err = LoadObservation(strings.NewReader(`{"board": [0, 1, 2], "mark": 1}`))
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, obs.Board)
	assert.Equal(t, 1, obs.Mark)

	_, err = LoadObservation(strings.NewReader("mark: [1"))
	assert.Error(t, err)
}

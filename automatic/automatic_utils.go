package automatic

// Data collection for automatic games: engine vs engine, many at a time.

import (
	"bufio"
	"context"
	"errors"
	"expvar"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/c4lab/connectx/board"
	"github.com/c4lab/connectx/config"
	"github.com/c4lab/connectx/game"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// LogHeader is the first line of a turn log.
const LogHeader = "player,gameID,turn,col,score,depth,nodes,result\n"

// Results tallies finished games.
type Results struct {
	Games         int
	PlayerOneWins int
	PlayerTwoWins int
	Draws         int
	Turns         int
}

func (r *Results) add(g *game.Game) {
	r.Games++
	r.Turns += g.Turn()
	switch g.Winner() {
	case board.PlayerOne:
		r.PlayerOneWins++
	case board.PlayerTwo:
		r.PlayerTwoWins++
	default:
		r.Draws++
	}
}

func (r *Results) merge(o Results) {
	r.Games += o.Games
	r.PlayerOneWins += o.PlayerOneWins
	r.PlayerTwoWins += o.PlayerTwoWins
	r.Draws += o.Draws
	r.Turns += o.Turns
}

func (r Results) String() string {
	avg := 0.0
	if r.Games > 0 {
		avg = float64(r.Turns) / float64(r.Games)
	}
	return fmt.Sprintf("Games: %d, %v wins: %d, %v wins: %d, draws: %d, avg turns: %.2f",
		r.Games, board.PlayerOne, r.PlayerOneWins, board.PlayerTwo, r.PlayerTwoWins,
		r.Draws, avg)
}

// PlayGames plays numGames engine vs engine games on threads goroutines. If
// logchan is not nil every turn is sent to it as a CSV line (see
// LogHeader). When ctx is cancelled the games finished so far are returned
// along with the error.
func PlayGames(ctx context.Context, cfg *config.Config, numGames, threads int,
	logchan chan string) (Results, error) {

	if IsPlaying.Value() > 0 {
		return Results{}, ErrAlreadyPlaying
	}
	threads = max(1, min(threads, numGames))
	log.Debug().Msgf("Starting %v games, %v threads", numGames, threads)

	seed := cfg.GetUint64(config.ConfigSeed)
	CVCCounter.Set(0)
	jobs := make(chan int)
	perThread := make([]Results, threads)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 1; i <= numGames; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				log.Info().Msg("got-stop-signal")
				return ctx.Err()
			}
			if i%1000 == 0 {
				log.Info().Int("queued", i).Msg("queueing-games")
			}
		}
		return nil
	})

	for t := 0; t < threads; t++ {
		t := t
		g.Go(func() error {
			var tseed uint64
			if seed != 0 {
				// each runner seeds two solvers.
				tseed = seed + 2*uint64(t)
			}
			r, err := NewGameRunner(logchan, cfg, tseed)
			if err != nil {
				return err
			}
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for id := range jobs {
				r.gameID = id
				if err := r.playFull(ctx); err != nil {
					return err
				}
				perThread[t].add(r.game)
				CVCCounter.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	var res Results
	for _, r := range perThread {
		res.merge(r)
	}
	log.Info().Int("games", res.Games).Int("p1-wins", res.PlayerOneWins).
		Int("p2-wins", res.PlayerTwoWins).Int("draws", res.Draws).Msg("games-finished")
	return res, err
}

// PlayGamesToFile is PlayGames with every turn logged to outputFilename.
func PlayGamesToFile(ctx context.Context, cfg *config.Config, numGames, threads int,
	outputFilename string) (Results, error) {

	logfile, err := os.Create(outputFilename)
	if err != nil {
		return Results{}, err
	}
	defer logfile.Close()

	logChan := make(chan string, 100)
	done := make(chan error)
	go func() {
		w := bufio.NewWriter(logfile)
		w.WriteString(LogHeader)
		for msg := range logChan {
			w.WriteString(msg)
		}
		done <- w.Flush()
	}()

	res, err := PlayGames(ctx, cfg, numGames, threads, logChan)
	close(logChan)
	if ferr := <-done; err == nil {
		err = ferr
	}
	return res, err
}

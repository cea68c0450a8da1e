package automatic

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	minGamesForHistogram = 10
	histogramBins        = 10
	histogramWidth       = 40
)

type playerStats struct {
	depths []float64
	nodes  []float64
	wins   int
}

// AnalyzeLogFile analyzes the given turn log and spits out a bunch of
// statistics.
func AnalyzeLogFile(filepath string) (string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return analyzeLog(file)
}

func analyzeLog(in io.Reader) (string, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = strings.Count(LogHeader, ",") + 1

	// Record looks like:
	// player,gameID,turn,col,score,depth,nodes,result
	players := map[string]*playerStats{}
	var gameLengths []float64
	draws := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "player" {
			// this is the header line
			continue
		}
		ps := players[record[0]]
		if ps == nil {
			ps = &playerStats{}
			players[record[0]] = ps
		}
		turn, err := strconv.Atoi(record[2])
		if err != nil {
			return "", err
		}
		depth, err := strconv.Atoi(record[5])
		if err != nil {
			return "", err
		}
		nodes, err := strconv.ParseUint(record[6], 10, 64)
		if err != nil {
			return "", err
		}
		ps.depths = append(ps.depths, float64(depth))
		ps.nodes = append(ps.nodes, float64(nodes))
		switch record[7] {
		case "win":
			ps.wins++
			gameLengths = append(gameLengths, float64(turn))
		case "draw":
			draws++
			gameLengths = append(gameLengths, float64(turn))
		}
	}

	// build stats string
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", len(gameLengths))
	if len(gameLengths) > 0 {
		mean, std := stat.MeanStdDev(gameLengths, nil)
		fmt.Fprintf(&sb, "Game length: %.2f ± %.2f turns\n", mean, std)
	}
	fmt.Fprintf(&sb, "Draws: %d\n", draws)
	names := make([]string, 0, len(players))
	for name := range players {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ps := players[name]
		fmt.Fprintf(&sb, "Player %s: wins: %d, moves: %d, avg depth: %.2f, avg nodes: %.0f\n",
			name, ps.wins, len(ps.depths), stat.Mean(ps.depths, nil), stat.Mean(ps.nodes, nil))
	}
	// the histogram needs a spread of lengths to bin.
	if len(gameLengths) >= minGamesForHistogram && floats.Max(gameLengths) > floats.Min(gameLengths) {
		sb.WriteString("Game length histogram:\n")
		hist := histogram.Hist(histogramBins, gameLengths)
		if err := histogram.Fprint(&sb, hist, histogram.Linear(histogramWidth)); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

package search

import (
	"math"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/c4lab/connectx/board"
)

const (
	TTExact = 0x01
	TTLower = 0x02
	TTUpper = 0x03
)

const entrySize = 32

const (
	minSizePowerOf2 = 16
	maxSizePowerOf2 = 24
)

// 32 bytes (entrySize)
type TableEntry struct {
	// The full position is kept, not just a hash, so a hit is always the
	// exact position asked for.
	board      board.Bitboard
	score      float64
	generation uint32
	depth      uint8
	flag       uint8
	maximizing bool
}

func (t TableEntry) Score() float64 {
	return t.score
}

func (t TableEntry) Flag() uint8 {
	return t.flag
}

// TranspositionTable caches search scores keyed by position, remaining
// depth and side. It belongs to a single searcher and is not safe for
// concurrent use.
type TranspositionTable struct {
	table        []TableEntry
	sizePowerOf2 int
	sizeMask     uint64
	// Entries from an older generation are dead. Bumping the generation
	// empties the table without touching memory.
	generation uint32

	created uint64
	lookups uint64
	hits    uint64
	// "type 2" collisions: a live entry for a different key sat in the
	// bucket we looked at.
	t2collisions uint64
}

// Reset sizes the table to roughly fractionOfMemory of system memory,
// rounded down to a power of two and kept between 2^16 and 2^24 entries,
// and empties it.
func (t *TranspositionTable) Reset(fractionOfMemory float64) {
	totalMem := memory.TotalMemory()
	desiredNElems := fractionOfMemory * (float64(totalMem) / float64(entrySize))
	// find biggest power of 2 lower than desired.
	t.sizePowerOf2 = minSizePowerOf2
	if desiredNElems > 1 {
		t.sizePowerOf2 = int(math.Log2(desiredNElems))
	}
	t.sizePowerOf2 = max(minSizePowerOf2, min(maxSizePowerOf2, t.sizePowerOf2))

	numElems := 1 << t.sizePowerOf2
	t.sizeMask = uint64(numElems - 1)
	reset := false
	if t.table != nil && len(t.table) == numElems {
		reset = true
		clear(t.table)
	} else {
		t.table = make([]TableEntry, numElems)
	}
	t.generation = 1

	log.Debug().Int("num-elems", numElems).
		Float64("desired-num-elems", desiredNElems).
		Int("estimated-total-memory-bytes", numElems*entrySize).
		Uint64("total-system-memory-bytes", totalMem).
		Bool("reset", reset).
		Msg("transposition-table-size")

	t.resetStats()
}

func (t *TranspositionTable) resetStats() {
	t.created = 0
	t.lookups = 0
	t.hits = 0
	t.t2collisions = 0
}

// Clear forgets every entry.
func (t *TranspositionTable) Clear() {
	t.generation++
	if t.generation == 0 {
		// wrapped around; old stamps would come back to life.
		clear(t.table)
		t.generation = 1
	}
}

// Lookup returns the entry stored for the exact (position, depth, side)
// key. zval is the zobrist search key of the same triple.
func (t *TranspositionTable) Lookup(zval uint64, bb board.Bitboard, depth int,
	maximizing bool) (TableEntry, bool) {

	t.lookups++
	e := t.table[zval&t.sizeMask]
	if e.generation != t.generation {
		return TableEntry{}, false
	}
	if e.board != bb || int(e.depth) != depth || e.maximizing != maximizing {
		t.t2collisions++
		return TableEntry{}, false
	}
	t.hits++
	return e, true
}

// Store records score with its bound type, overwriting whatever shares the
// bucket.
func (t *TranspositionTable) Store(zval uint64, bb board.Bitboard, depth int,
	maximizing bool, score float64, flag uint8) {

	t.table[zval&t.sizeMask] = TableEntry{
		board:      bb,
		score:      score,
		generation: t.generation,
		depth:      uint8(depth),
		flag:       flag,
		maximizing: maximizing,
	}
	t.created++
}

// Size is the number of buckets.
func (t *TranspositionTable) Size() int {
	return len(t.table)
}

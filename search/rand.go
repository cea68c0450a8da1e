package search

import (
	"encoding/binary"

	"lukechampine.com/frand"
)

// RandSource orders candidate moves and draws zobrist keys. *frand.RNG
// satisfies it. A source belongs to a single searcher.
type RandSource interface {
	Shuffle(n int, swap func(i, j int))
	Uint64n(n uint64) uint64
}

// NewRandSource returns a deterministic generator for seed. A zero seed
// returns a generator seeded from the OS entropy pool instead.
func NewRandSource(seed uint64) *frand.RNG {
	if seed == 0 {
		return frand.New()
	}
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:], seed)
	return frand.NewCustom(b[:], 1024, 12)
}

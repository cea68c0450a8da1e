package zobrist

import (
	"math/bits"

	"lukechampine.com/frand"

	"github.com/c4lab/connectx/board"
)

const bignum = 1<<63 - 2

// MaxDepth bounds the remaining-depth component of a search key. No search
// can go deeper than the number of cells, and boards have at most 64 bits.
const MaxDepth = board.MaxBits

// RandSource produces the random keys. *frand.RNG satisfies it.
type RandSource interface {
	Uint64n(n uint64) uint64
}

type globalSource struct{}

func (globalSource) Uint64n(n uint64) uint64 { return frand.Uint64n(n) }

// generate a zobrist hash for a connection game position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	minimizing uint64

	posTable   [][2]uint64
	depthTable [MaxDepth + 1]uint64

	dims board.Dims
}

// Initialize draws fresh keys for a board of size d. A nil src uses the
// process-wide frand generator; pass a seeded source for reproducible keys.
func (z *Zobrist) Initialize(d board.Dims, src RandSource) {
	if src == nil {
		src = globalSource{}
	}
	z.dims = d
	z.posTable = make([][2]uint64, d.Stride()*d.Columns)
	for i := range z.posTable {
		z.posTable[i][0] = src.Uint64n(bignum) + 1
		z.posTable[i][1] = src.Uint64n(bignum) + 1
	}
	for i := range z.depthTable {
		z.depthTable[i] = src.Uint64n(bignum) + 1
	}
	z.minimizing = src.Uint64n(bignum) + 1
}

func (z *Zobrist) Dims() board.Dims {
	return z.dims
}

// Hash computes the key of a position from scratch.
func (z *Zobrist) Hash(bb board.Bitboard) uint64 {
	key := uint64(0)
	for p := 0; p < 2; p++ {
		m := bb[p]
		for m != 0 {
			bit := bits.TrailingZeros64(m)
			key ^= z.posTable[bit][p]
			m &= m - 1
		}
	}
	return key
}

// AddMove updates key for a piece of player p dropped onto bit. Removing the
// piece again is the same operation.
func (z *Zobrist) AddMove(key uint64, bit int, p board.Player) uint64 {
	return key ^ z.posTable[bit][p-1]
}

// SearchKey mixes the remaining depth and the side to move into a position
// key, so a score searched to one depth never answers for another.
func (z *Zobrist) SearchKey(key uint64, depth int, maximizing bool) uint64 {
	key ^= z.depthTable[depth]
	if !maximizing {
		key ^= z.minimizing
	}
	return key
}

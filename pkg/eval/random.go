package eval

import (
	"math/rand"

	"github.com/wyvern-chess/wyvern/pkg/board"
)

// Random adds a small amount of noise to evaluations, used to give a fixed-depth engine some
// variety between games. Limit is the width of the noise range in centipawns,
// [-limit/2, limit/2]; the zero value never perturbs anything.
type Random struct {
	rand  *rand.Rand
	limit int
}

// NewRandom returns a Random that samples in [-limit/2, limit/2] from the given seed.
func NewRandom(limit int, seed int64) Random {
	return Random{
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

// Sample draws one centipawn noise value. Safe to call on the zero value.
func (n Random) Sample() board.Score {
	if n.limit <= 0 || n.rand == nil {
		return 0
	}
	return board.Score(n.rand.Intn(n.limit) - n.limit/2)
}

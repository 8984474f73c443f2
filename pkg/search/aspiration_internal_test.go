package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/board/fen"
	"github.com/wyvern-chess/wyvern/pkg/eval"
)

// TestAspirationMatchesFullWindow verifies P6: searching at a fixed depth with an aspiration
// window (delta = 16, widening on every fail) must find the same score as searching the same
// depth with the full (-inf, +inf) window, since aspiration only narrows the *first* probe --
// any fail-low/fail-high re-search widens until the true score is back inside the window.
func TestAspirationMatchesFullWindow(t *testing.T) {
	ctx := context.Background()

	tests := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}

	const depth = 5

	for _, f := range tests {
		pos, _, _, _, err := fen.Decode(f)
		require.NoError(t, err, f)
		b := board.NewBoard(pos)

		e := NewEngine(eval.NewEngine(), nil)
		e.signals = NewSignals()
		e.limits = Limits{Depth: depth}

		// Seed PrevScore from a depth-1-shallower full-window search, exactly as
		// BeginIteration would carry it over from the previous iterative-deepening pass --
		// aspirate only narrows the window when PrevScore looks like a real prior score.
		seed := NewRootMoves(b.Position(), nil)
		require.NotEmpty(t, seed)
		prevScore := e.searchRoot(ctx, b.Fork(), append(RootMoves(nil), seed...), depth-1, eval.NegInfScore, eval.InfScore)

		rootFull := NewRootMoves(b.Position(), nil)
		e.history.Clear()
		fullWindowScore := e.searchRoot(ctx, b.Fork(), rootFull, depth, eval.NegInfScore, eval.InfScore)

		rootAspirated := NewRootMoves(b.Position(), nil)
		for i := range rootAspirated {
			rootAspirated[i].PrevScore = prevScore
		}
		e.history.Clear()
		aspiratedScore := e.aspirate(ctx, b.Fork(), rootAspirated, depth, nil)

		assert.Equal(t, fullWindowScore, aspiratedScore, "fen: %v", f)
	}
}

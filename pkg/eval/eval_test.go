package eval_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/board/fen"
	"github.com/wyvern-chess/wyvern/pkg/eval"
)

// TestEvaluateSymmetric checks that the evaluator is relative to the side to move: a position
// and its color-reversed mirror (ranks flipped, piece colors swapped, turn swapped) describe
// the same position from the opposite perspective and so must score identically.
func TestEvaluateSymmetric(t *testing.T) {
	ctx := context.Background()
	e := eval.NewEngine()

	tests := []struct {
		pos, mirror string
	}{
		{fen.Initial, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1"},
		{
			"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
			"rnbqkb1r/pppp1ppp/5n2/4p3/4P3/2N5/PPPP1PPP/R1BQKBNR b KQkq - 2 3",
		},
	}

	for _, tt := range tests {
		pos, _, _, _, err := fen.Decode(tt.pos)
		require.NoError(t, err)
		mirror, _, _, _, err := fen.Decode(tt.mirror)
		require.NoError(t, err)

		assert.Equal(t, e.Evaluate(ctx, pos), e.Evaluate(ctx, mirror), "pos: %v", tt.pos)
	}
}

// TestEvaluateMaterialAdvantage checks the coarse sign of the material term: a side up a
// whole rook for nothing must score strictly positive from its own perspective.
func TestEvaluateMaterialAdvantage(t *testing.T) {
	ctx := context.Background()
	e := eval.NewEngine()

	pos, _, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	assert.Greater(t, e.Evaluate(ctx, pos), board.Score(0))
}

// TestProbeEndgameKRK checks the KRK corner-driving endgame table: a bare
// king-plus-rook-vs-king signature must be recognized, scored White-relative favoring the
// rook's side, and must not fire on a position lacking the signature.
func TestProbeEndgameKRK(t *testing.T) {
	pos, _, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	score, ok := eval.ProbeEndgame(pos)
	require.True(t, ok)
	assert.Greater(t, score, board.Score(0), "white (strong side) should be favored")
}

func TestProbeEndgameNoSignature(t *testing.T) {
	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	_, ok := eval.ProbeEndgame(pos)
	assert.False(t, ok)
}

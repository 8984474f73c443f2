package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/board/fen"
)

// TestInsufficientMaterialDraws: bare kings and king-plus-single-minor against a bare king
// are dead draws; a single pawn or any major piece keeps the game alive.
func TestInsufficientMaterialDraws(t *testing.T) {
	tests := []struct {
		fen  string
		draw bool
	}{
		{"4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/2B1K3 w - - 0 1", true},
		{"4k3/8/8/8/8/8/8/1N2K3 w - - 0 1", true},
		{"2b1k3/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"4k3/8/8/8/8/4P3/8/4K3 w - - 0 1", false},
		{"4k3/8/8/8/8/8/8/R3K3 w - - 0 1", false},
		{"3qk3/8/8/8/8/8/8/4K3 w - - 0 1", false},
		{"2b1k3/8/8/8/8/8/8/1N2K3 w - - 0 1", false}, // minor each side: mate still constructible
	}

	for _, tt := range tests {
		pos, _, _, _, err := fen.Decode(tt.fen)
		require.NoError(t, err, tt.fen)

		assert.Equal(t, tt.draw, pos.IsDraw(true), tt.fen)
	}
}

// TestRepetitionDraw shuffles knights back and forth until the starting position recurs
// and requires the board to adjudicate the repetition. A single recurrence is enough for
// the engine's purposes: repeating once already proves neither side is making progress.
func TestRepetitionDraw(t *testing.T) {
	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	b := board.NewBoard(pos)

	shuffle := []string{
		"g1f3", "g8f6", "f3g1", "f6g8",
		"g1f3", "g8f6", "f3g1", "f6g8",
	}
	for i, uci := range shuffle {
		from, to, _, err := board.ParseMove(uci)
		require.NoError(t, err)

		played := false
		for _, m := range b.Position().GenerateMoves(board.Legal, nil) {
			if m.From() == from && m.To() == to {
				require.True(t, b.PushMove(m))
				played = true
				break
			}
		}
		require.True(t, played, "move %v (%v) not playable", i, uci)
	}

	result := b.Result()
	assert.Equal(t, board.Draw, result.Outcome)
	assert.Equal(t, board.Repetition3, result.Reason)
}

// TestFiftyMoveCounterResets: a pawn move or capture zeroes the half-move clock, anything
// else advances it.
func TestFiftyMoveCounterResets(t *testing.T) {
	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)
	b := board.NewBoard(pos)

	push := func(uci string) {
		from, to, _, err := board.ParseMove(uci)
		require.NoError(t, err)
		for _, m := range b.Position().GenerateMoves(board.Legal, nil) {
			if m.From() == from && m.To() == to {
				require.True(t, b.PushMove(m))
				return
			}
		}
		t.Fatalf("move %v not playable", uci)
	}

	push("g1f3")
	assert.Equal(t, 1, b.NoProgress())
	push("g8f6")
	assert.Equal(t, 2, b.NoProgress())
	push("e2e4")
	assert.Equal(t, 0, b.NoProgress(), "pawn move must reset the clock")
	push("f6e4")
	assert.Equal(t, 0, b.NoProgress(), "capture must reset the clock")
}

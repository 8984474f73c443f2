package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/board/fen"
)

func findCaptureTo(t *testing.T, pos *board.Position, from, to board.Square) board.Move {
	t.Helper()
	for _, m := range pos.GenerateMoves(board.Legal, nil) {
		if m.From() == from && m.To() == to {
			return m
		}
	}
	t.Fatalf("no legal move %v%v", from, to)
	return board.NoMove
}

func TestSee(t *testing.T) {
	t.Run("queen takes defended pawn loses", func(t *testing.T) {
		// Qe2xe5: the pawn on e5 is defended by the pawn on d6, which wins the exchange
		// for black by a full queen against a pawn.
		pos, _, _, _, err := fen.Decode("4k3/8/3p4/4p3/8/8/4Q3/4K3 w - - 0 1")
		require.NoError(t, err)

		m := findCaptureTo(t, pos, board.E2, board.E5)
		assert.Less(t, pos.See(m), 0)
		assert.Equal(t, -1, pos.SeeSign(m))
	})

	t.Run("pawn takes undefended queen wins", func(t *testing.T) {
		pos, _, _, _, err := fen.Decode("4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
		require.NoError(t, err)

		m := findCaptureTo(t, pos, board.E4, board.D5)
		assert.Greater(t, pos.See(m), 0)
		assert.Equal(t, 1, pos.SeeSign(m))
	})

	t.Run("victim at least as valuable as attacker never negative", func(t *testing.T) {
		tests := []struct {
			fen      string
			from, to board.Square
		}{
			// Rook takes rook, even if defended.
			{"4k3/4r3/8/8/8/8/4R3/4K3 w - - 0 1", board.E2, board.E7},
			// Pawn takes knight, defended by a pawn.
			{"4k3/8/4p3/3n4/4P3/8/8/4K3 w - - 0 1", board.E4, board.D5},
		}

		for _, tt := range tests {
			pos, _, _, _, err := fen.Decode(tt.fen)
			require.NoError(t, err, tt.fen)

			m := findCaptureTo(t, pos, tt.from, tt.to)
			assert.GreaterOrEqual(t, pos.SeeSign(m), 0, tt.fen)
		}
	})

	t.Run("xray recapture counts", func(t *testing.T) {
		// Rd2xd5 wins a pawn only because the doubled rook on d1 is uncovered once d2
		// vacates: it answers the d8-rook's recapture. Without the x-ray the swap would
		// lose rook for pawn.
		pos, _, _, _, err := fen.Decode("3rk3/8/8/3p4/8/8/3R4/3RK3 w - - 0 1")
		require.NoError(t, err)

		m := findCaptureTo(t, pos, board.D2, board.D5)
		assert.Greater(t, pos.See(m), 0)
	})
}

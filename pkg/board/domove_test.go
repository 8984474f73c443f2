package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/board/fen"
)

// fenCorpus spans the piece-movement special cases: castling rights in both directions,
// en passant, promotions (plain and capturing), checks and a sparse endgame.
var fenCorpus = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
}

// TestDoUndoRoundTrip plays every legal move (and, one ply deeper, every legal reply) and
// undoes it again, requiring all three Zobrist keys and the canonical FEN to come back
// bit-for-bit. This is the make/unmake contract everything above the board relies on.
func TestDoUndoRoundTrip(t *testing.T) {
	for _, f := range fenCorpus {
		pos, turn, np, fm, err := fen.Decode(f)
		require.NoError(t, err, f)

		roundTrip(t, pos, turn, np, fm, 2)
	}
}

func roundTrip(t *testing.T, pos *board.Position, turn board.Color, np, fm, depth int) {
	t.Helper()
	if depth == 0 {
		return
	}

	before := snapshot(pos, turn, np, fm)
	for _, m := range pos.GenerateMoves(board.Legal, nil) {
		pos.DoMove(m)
		roundTrip(t, pos, pos.Turn(), pos.HalfmoveClock(), pos.FullmoveNumber(), depth-1)
		pos.UndoMove(m)

		after := snapshot(pos, turn, np, fm)
		if !assert.Equal(t, before, after, "undo(%v) did not restore", m) {
			return // one broken move floods the log; the first is enough
		}
	}
}

type positionSnapshot struct {
	fen                            string
	fullKey, pawnKey, materialKey  board.ZobristHash
	checkers, whitePins, blackPins board.Bitboard
}

func snapshot(pos *board.Position, turn board.Color, np, fm int) positionSnapshot {
	return positionSnapshot{
		fen:         fen.Encode(pos, turn, np, fm),
		fullKey:     pos.FullKey(),
		pawnKey:     pos.PawnKey(),
		materialKey: pos.MaterialKey(),
		checkers:    pos.Checkers(),
		whitePins:   pos.Pinned(board.White),
		blackPins:   pos.Pinned(board.Black),
	}
}

// TestFenRoundTrip re-decodes each corpus position's encoding and requires identical keys
// and identical re-encoding.
func TestFenRoundTrip(t *testing.T) {
	for _, f := range fenCorpus {
		pos, turn, np, fm, err := fen.Decode(f)
		require.NoError(t, err, f)

		encoded := fen.Encode(pos, turn, np, fm)
		assert.Equal(t, f, encoded)

		again, turn2, np2, fm2, err := fen.Decode(encoded)
		require.NoError(t, err, encoded)
		assert.Equal(t, pos.FullKey(), again.FullKey(), f)
		assert.Equal(t, pos.PawnKey(), again.PawnKey(), f)
		assert.Equal(t, pos.MaterialKey(), again.MaterialKey(), f)
		assert.Equal(t, encoded, fen.Encode(again, turn2, np2, fm2))
	}
}

// TestZobristTransposition: two move orders reaching the same position hash identically,
// and positions differing only in side to move, castling rights or en passant hash apart.
func TestZobristTransposition(t *testing.T) {
	keyAfter := func(moves ...string) board.ZobristHash {
		pos, _, _, _, err := fen.Decode(fen.Initial)
		require.NoError(t, err)
		b := board.NewBoard(pos)
		for _, uci := range moves {
			from, to, _, err := board.ParseMove(uci)
			require.NoError(t, err)

			played := false
			for _, m := range pos.GenerateMoves(board.Legal, nil) {
				if m.From() == from && m.To() == to {
					require.True(t, b.PushMove(m), "%v not legal", uci)
					played = true
					break
				}
			}
			require.True(t, played, "%v not found", uci)
		}
		return b.Hash()
	}

	assert.Equal(t,
		keyAfter("g1f3", "d7d5", "d2d4"),
		keyAfter("d2d4", "d7d5", "g1f3"),
		"transposed move orders must hash identically")

	decodeKey := func(f string) board.ZobristHash {
		pos, _, _, _, err := fen.Decode(f)
		require.NoError(t, err)
		return pos.FullKey()
	}

	base := "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2"
	assert.NotEqual(t, decodeKey(base),
		decodeKey("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 2"),
		"side to move must affect the key")
	assert.NotEqual(t, decodeKey(base),
		decodeKey("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w Kkq - 0 2"),
		"castling rights must affect the key")
	assert.NotEqual(t, decodeKey(base),
		decodeKey("rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2"),
		"en passant must affect the key")
}

package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/board/fen"
	"github.com/wyvern-chess/wyvern/pkg/eval"
	"github.com/wyvern-chess/wyvern/pkg/search"
)

// TestThinkFindsMate exercises P5: a fixed mate-in-1 (Scholar's mate pattern) must be found
// within a small depth cap and the reported bestmove must be the mating move.
func TestThinkFindsMate(t *testing.T) {
	ctx := context.Background()

	pos, _, _, _, err := fen.Decode("r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4")
	require.NoError(t, err)

	b := board.NewBoard(pos)
	e := search.NewEngine(eval.NewEngine(), nil)

	best, _, pv := e.Think(ctx, b, search.Limits{Depth: 4}, search.NewSignals(), nil)

	if d, mate := pv.Score.MateDistance(); assert.True(t, mate, "expected a mate score, got %v", pv.Score) {
		assert.Equal(t, 1, d)
	}

	// Confirm the reported bestmove actually delivers mate: playing it must leave the
	// opponent in check with no legal reply.
	require.True(t, b.PushMove(best), "bestmove %v not legal", best)
	moves := b.Position().GenerateMoves(board.Legal, nil)
	assert.Empty(t, moves, "bestmove %v does not leave opponent with no legal replies", best)
	assert.True(t, b.Position().IsChecked(b.Position().Turn()), "bestmove %v is not check", best)
}

// TestThinkRespectsSearchMoves confirms the root-move restriction (UCI "searchmoves") is
// honored: the engine must never return a move outside the supplied list.
func TestThinkRespectsSearchMoves(t *testing.T) {
	ctx := context.Background()

	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	b := board.NewBoard(pos)
	allowed := []board.Move{
		board.NewMove(board.E2, board.E4, board.NormalFlag, board.NoPiece),
		board.NewMove(board.D2, board.D4, board.NormalFlag, board.NoPiece),
	}

	e := search.NewEngine(eval.NewEngine(), nil)
	best, _, _ := e.Think(ctx, b, search.Limits{Depth: 3, SearchMoves: allowed}, search.NewSignals(), nil)

	found := false
	for _, m := range allowed {
		if m == best {
			found = true
		}
	}
	assert.True(t, found, "bestmove %v not among searchmoves", best)
}

// TestThinkEmptyRootMoveList: a checkmated or stalemated position has no legal replies, so
// Think must return immediately with the NoMove sentinel rather than looping or panicking.
// The driver is responsible for turning that into "info depth 0 ..." plus "bestmove 0000".
func TestThinkEmptyRootMoveList(t *testing.T) {
	ctx := context.Background()

	// Fool's mate: white, to move, has no legal reply and is in check.
	pos, _, _, _, err := fen.Decode("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)

	b := board.NewBoard(pos)
	e := search.NewEngine(eval.NewEngine(), nil)
	best, ponder, pv := e.Think(ctx, b, search.Limits{Depth: 4}, search.NewSignals(), nil)

	assert.Equal(t, board.NoMove, best)
	assert.Equal(t, board.NoMove, ponder)
	assert.Equal(t, 0, pv.Depth)
}

// TestThinkStopSignal exercises P8's stop semantics: Think clears the signals when it starts,
// so Stop is raised from the first iteration's report; Think must then return that
// iteration's best move rather than keep deepening towards depth 10.
func TestThinkStopSignal(t *testing.T) {
	ctx := context.Background()

	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	b := board.NewBoard(pos)
	e := search.NewEngine(eval.NewEngine(), nil)

	signals := search.NewSignals()

	best, _, _ := e.Think(ctx, b, search.Limits{Depth: 10}, signals, func(search.PV) {
		signals.Stop.Store(true)
	})
	assert.NotEqual(t, board.NoMove, best)
}

// TestThinkDepthIncreasesNodes is a coarse sanity check that iterative deepening actually
// deepens: depth 4 must not visit fewer nodes than depth 2 on the same position.
func TestThinkDepthIncreasesNodes(t *testing.T) {
	ctx := context.Background()

	pos, _, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	b := board.NewBoard(pos)
	e := search.NewEngine(eval.NewEngine(), nil)
	e.Think(ctx, b.Fork(), search.Limits{Depth: 2}, search.NewSignals(), nil)
	shallow := e.Nodes()

	e.Think(ctx, b.Fork(), search.Limits{Depth: 4}, search.NewSignals(), nil)
	deep := e.Nodes()

	assert.Greater(t, deep, shallow)
}

package search

import (
	"context"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/eval"
)

// quiescence searches only "loud" moves -- captures, promotions and check evasions -- past
// the main-depth horizon until the position is quiet enough to stand on its static eval.
// depth may go negative; it only ever affects generation, never a stop condition by itself.
func (e *Engine) quiescence(ctx context.Context, b *board.Board, ply, depth int, alpha, beta eval.Score) eval.Score {
	e.nodes++
	e.stack[ply].pv = nil
	if ply > e.seldepth {
		e.seldepth = ply
	}
	if e.checkStop(ctx) {
		return eval.ZeroScore
	}
	if b.Result().Outcome == board.Draw {
		return eval.ZeroScore
	}
	if ply >= MaxPly {
		return e.staticEval(b)
	}

	pos := b.Position()
	inCheck := pos.Checkers() != 0

	var bestScore eval.Score
	if !inCheck {
		bestScore = e.staticEval(b)
		if bestScore >= beta {
			return bestScore // stand-pat fail-high
		}
		if alpha < bestScore {
			alpha = bestScore
		}
	} else {
		bestScore = eval.MatedIn(ply)
	}

	typ := board.NonEvasions
	if inCheck {
		typ = board.Evasions
	}
	moves := pos.GenerateMoves(typ, nil)
	list := board.NewMoveList(moves, Picker(pos, e.history))

	hasLegalMove := false
	for {
		m, ok := list.Next()
		if !ok {
			break
		}
		if !inCheck && !isCapture(pos, m) && !m.IsPromotion() {
			continue // only loud moves past the horizon
		}
		if !inCheck && isCapture(pos, m) && pos.SeeSign(m) < 0 {
			continue // losing captures are not worth resolving
		}

		if !b.PushMove(m) {
			continue
		}
		hasLegalMove = true

		score := e.quiescence(ctx, b, ply+1, depth-1, beta.Negate(), alpha.Negate()).Negate()

		b.PopMove()

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			break
		}
	}

	if inCheck && !hasLegalMove {
		return eval.MatedIn(ply)
	}
	return bestScore
}

// staticEval widens the board evaluator's centipawn score into a search Score, relative to
// the side to move.
func (e *Engine) staticEval(b *board.Board) eval.Score {
	return eval.HeuristicScore(e.Eval.Evaluate(context.Background(), b.Position()))
}

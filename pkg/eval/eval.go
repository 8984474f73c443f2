// Package eval implements static position evaluation: material, piece-square tables,
// mobility, pawn structure (via a pawn cache), king safety, passed pawns and a small
// endgame table of well-known mates, combined through a middlegame/endgame phase blend.
package eval

import (
	"context"

	"github.com/wyvern-chess/wyvern/pkg/board"
)

// Evaluator is a static position evaluator. Evaluate returns a centipawn score relative to
// the side to move.
type Evaluator interface {
	Evaluate(ctx context.Context, pos *board.Position) board.Score
}

// NominalValue is the absolute nominal value in centipawns of a piece kind, used by move
// ordering (MVV/LVA) and the material term.
func NominalValue(p board.Piece) board.Score {
	switch p {
	case board.Pawn:
		return 100
	case board.Knight:
		return 320
	case board.Bishop:
		return 330
	case board.Rook:
		return 500
	case board.Queen:
		return 900
	case board.King:
		return 20000
	default:
		return 0
	}
}

// NominalValueGain is the nominal material gain for making move m, used by MVV/LVA.
func NominalValueGain(pos *board.Position, m board.Move) board.Score {
	if m.IsEnPassant() {
		return NominalValue(board.Pawn)
	}
	gain := board.Score(0)
	if _, captured, ok := pos.Square(m.To()); ok {
		gain = NominalValue(captured)
	}
	if m.IsPromotion() {
		gain += NominalValue(m.Promotion()) - NominalValue(board.Pawn)
	}
	return gain
}

// Engine is the default evaluator: material/imbalance, PSQT, pawn structure (cached),
// mobility, king safety, passed pawns and a phase blend. One Engine should be owned per
// search worker: its pawn cache is not safe for concurrent use.
type Engine struct {
	Pawns *PawnCache
	Noise Random
	Tempo board.Score // bonus for the side to move; zero unless configured
}

// NewEngine returns a ready-to-use evaluator with its own pawn cache.
func NewEngine() *Engine {
	return &Engine{Pawns: NewPawnCache()}
}

// Evaluate returns the centipawn score of pos relative to the side to move.
func (e *Engine) Evaluate(ctx context.Context, pos *board.Position) board.Score {
	turn := pos.Turn()

	if score, ok := ProbeEndgame(pos); ok {
		return relativeTo(turn, score)
	}

	var total Pair
	total += materialAndImbalance(pos)
	total += psqt(pos)
	total += e.pawnStructure(pos)
	total += mobilityAndPieces(pos)
	total += kingSafety(pos)
	total += passedPawns(pos, e.Pawns)

	score := interpolate(pos, total)
	if turn == board.White {
		score += e.Tempo
	} else {
		score -= e.Tempo
	}

	score = relativeTo(turn, score)
	score += e.Noise.Sample()
	return score
}

func relativeTo(turn board.Color, whiteScore board.Score) board.Score {
	if turn == board.Black {
		return -whiteScore
	}
	return whiteScore
}

// The phase is ((total_npm - endgameLimit) * 128) / (midgameLimit - endgameLimit), clamped
// to [0,128]; 128 is fully middlegame, 0 fully endgame. The limits share pieceValueMg's
// scale, since that is what nonPawnMaterial sums.
const (
	endgameLimit = 3915  // about a rook and a bishop of material left per side
	midgameLimit = 15258 // both sides still carrying most of their pieces
)

func nonPawnMaterial(pos *board.Position) int {
	total := 0
	for c := board.ZeroColor; c < board.NumColors; c++ {
		for _, p := range board.QueenRookKnightBishopPawn {
			if p == board.Pawn {
				continue
			}
			total += pos.Piece(c, p).PopCount() * int(pieceValueMg[p])
		}
	}
	return total
}

func interpolate(pos *board.Position, total Pair) board.Score {
	npm := nonPawnMaterial(pos)
	phase := ((npm - endgameLimit) * 128) / (midgameLimit - endgameLimit)
	if phase > 128 {
		phase = 128
	}
	if phase < 0 {
		phase = 0
	}
	mg, eg := int(total.Mg()), int(total.Eg())
	return board.Score((mg*phase + eg*(128-phase)) / 128)
}

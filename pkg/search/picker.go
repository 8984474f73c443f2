package search

import (
	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/eval"
)

// Move-ordering bands: captures with a non-negative SEE sort above quiets, quiets
// with positive history sort above quiets with non-positive history, and captures that lose
// material (negative SEE) sort last of all -- "bad captures". Bands are wide enough that no
// in-band score (MVV/LVA, up to +-HistoryMax) can spill into a neighboring band.
const (
	goodCaptureBand = 20000
	goodQuietBand   = 10000
	quietBand       = 0
	badCaptureBand  = -20000
)

// mvvlva scores a capture by "most valuable victim, least valuable attacker":
// victim value (including any promotion surplus) dominates, the attacker's piece kind breaks
// ties against it.
func mvvlva(pos *board.Position, m board.Move) int32 {
	victim := int32(eval.NominalValueGain(pos, m))
	attacker := int32(movingPiece(pos, m))
	return victim - attacker
}

func movingPiece(pos *board.Position, m board.Move) board.Piece {
	_, pc, _ := pos.Square(m.From())
	return pc
}

func isCapture(pos *board.Position, m board.Move) bool {
	return m.IsEnPassant() || !pos.IsEmpty(m.To())
}

// Picker returns a board.MovePriorityFn ordering pseudo-legal moves good/equal captures
// first by MVV/LVA, then history-sorted quiets (positive history ahead of non-positive),
// then losing captures last, still in MVV/LVA order among themselves. Evasions use the same
// banding: once captures and quiets are scored by SEE and history, losing captures sink and
// winning captures rise exactly as a dedicated evasion stage would order them.
func Picker(pos *board.Position, history *HistoryTable) board.MovePriorityFn {
	return func(m board.Move) board.MovePriority {
		if isCapture(pos, m) {
			if pos.SeeSign(m) >= 0 {
				return board.MovePriority(goodCaptureBand + clampPriority(mvvlva(pos, m)))
			}
			return board.MovePriority(badCaptureBand + clampPriority(mvvlva(pos, m)))
		}

		h := history.Score(movingPiece(pos, m), m.To())
		if h > 0 {
			return board.MovePriority(goodQuietBand + h)
		}
		return board.MovePriority(quietBand + h)
	}
}

func clampPriority(v int32) int32 {
	if v > 2000 {
		return 2000
	}
	if v < -2000 {
		return -2000
	}
	return v
}

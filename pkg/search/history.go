package search

import "github.com/wyvern-chess/wyvern/pkg/board"

// HistoryMax clamps the magnitude of any history-table entry.
const HistoryMax = 256

// HistoryTable maps (moved piece, destination square) to a fail-high bonus, used to order
// quiet moves after the captures have been tried. One instance is owned per search worker
// and lives for the duration of one think.
type HistoryTable struct {
	score [board.NumPieces][board.NumSquares]int32
}

// NewHistoryTable returns an empty table.
func NewHistoryTable() *HistoryTable {
	return &HistoryTable{}
}

// Score returns the current history value for (piece, to), in [-HistoryMax, HistoryMax].
func (h *HistoryTable) Score(piece board.Piece, to board.Square) int32 {
	return h.score[piece][to]
}

// Update adds depth^2 to (piece, to) on a fail-high quiet move at the given depth, clamping
// to HistoryMax.
func (h *HistoryTable) Update(piece board.Piece, to board.Square, depth int) {
	bonus := int32(depth * depth)
	v := h.score[piece][to] + bonus
	if v > HistoryMax {
		v = HistoryMax
	}
	h.score[piece][to] = v
}

// Penalize is the mirror of Update for quiets that were tried and failed to raise alpha,
// used to keep the table from saturating every entry to +HistoryMax over a long search.
func (h *HistoryTable) Penalize(piece board.Piece, to board.Square, depth int) {
	bonus := int32(depth * depth)
	v := h.score[piece][to] - bonus
	if v < -HistoryMax {
		v = -HistoryMax
	}
	h.score[piece][to] = v
}

func (h *HistoryTable) Clear() {
	*h = HistoryTable{}
}

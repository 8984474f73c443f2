package search

import (
	"sort"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/eval"
)

// RootMove is one candidate root move together with its current and previous-iteration
// score and the principal variation beginning with it.
type RootMove struct {
	Move      board.Move
	Score     eval.Score
	PrevScore eval.Score
	PV        []board.Move
}

// RootMoves is the root move vector the iterative-deepening loop narrows and re-sorts every
// depth. A move not yet searched at the current depth sits at NegInfScore so a stable sort
// pushes it to the end.
type RootMoves []RootMove

// NewRootMoves builds the initial root-move vector from the legal moves of pos, restricted
// to allowed (the SearchMoves option) when non-empty.
func NewRootMoves(pos *board.Position, allowed []board.Move) RootMoves {
	legal := pos.GenerateMoves(board.Legal, nil)
	board.SortByPriority(legal, Picker(pos, NewHistoryTable()))

	var restrict map[board.Move]bool
	if len(allowed) > 0 {
		restrict = make(map[board.Move]bool, len(allowed))
		for _, m := range allowed {
			restrict[m] = true
		}
	}

	moves := make(RootMoves, 0, len(legal))
	for _, m := range legal {
		if restrict != nil && !restrict[m] {
			continue
		}
		moves = append(moves, RootMove{Move: m, Score: eval.NegInfScore, PrevScore: eval.NegInfScore})
	}
	return moves
}

// Find returns the index of m, or -1.
func (r RootMoves) Find(m board.Move) int {
	for i := range r {
		if r[i].Move.Equals(m) {
			return i
		}
	}
	return -1
}

// StableSortByScore re-sorts the vector by current score, descending, preserving relative
// order of ties.
func (r RootMoves) StableSortByScore() {
	sort.SliceStable(r, func(i, j int) bool {
		return r[j].Score.Less(r[i].Score)
	})
}

// BeginIteration copies each root move's current score into PrevScore ahead of a new depth,
// so the next aspiration window can center on it.
func (r RootMoves) BeginIteration() {
	for i := range r {
		r[i].PrevScore = r[i].Score
		r[i].Score = eval.NegInfScore
	}
}

// Best returns the top-scoring root move's move and, if present, its second PV move as the
// ponder candidate.
func (r RootMoves) Best() (best, ponder board.Move, pv []board.Move, ok bool) {
	if len(r) == 0 {
		return board.NoMove, board.NoMove, nil, false
	}
	best = r[0].Move
	pv = r[0].PV
	if len(pv) > 1 {
		ponder = pv[1]
	}
	return best, ponder, pv, true
}

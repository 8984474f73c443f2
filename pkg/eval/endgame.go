package eval

import "github.com/wyvern-chess/wyvern/pkg/board"

// endgameKind tags the specialized scorers the material-key table dispatches to.
type endgameKind uint8

const (
	kqk endgameKind = iota // king + queen vs. bare king
	krk                    // king + rook vs. bare king
	kpk                    // king + pawn vs. bare king
)

type endgameEntry struct {
	kind   endgameKind
	strong board.Color
}

// endgames maps a position's material key to its specialized scorer. Both color
// assignments of every known configuration are registered, so a single key lookup decides
// both whether a scorer applies and which side is the strong one.
var endgames = buildEndgameTable()

// buildEndgameTable synthesizes one canonical position per (configuration, strong side)
// and records its material key. The material key depends only on piece counts, so any
// position with the same material matches regardless of where the pieces stand.
func buildEndgameTable() map[board.ZobristHash]endgameEntry {
	table := make(map[board.ZobristHash]endgameEntry)
	register := func(kind endgameKind, extra board.Piece) {
		for _, strong := range [2]board.Color{board.White, board.Black} {
			placements := []board.Placement{
				{Square: board.E1, Color: board.White, Piece: board.King},
				{Square: board.E8, Color: board.Black, Piece: board.King},
				{Square: board.A4, Color: strong, Piece: extra},
			}
			pos, err := board.NewPosition(placements, board.White, 0, board.NoEnPassant)
			if err != nil {
				panic(err)
			}
			table[pos.MaterialKey()] = endgameEntry{kind: kind, strong: strong}
		}
	}
	register(kqk, board.Queen)
	register(krk, board.Rook)
	register(kpk, board.Pawn)
	return table
}

// ProbeEndgame recognizes a handful of known material signatures (KQK, KRK, KPK) where the
// general evaluation terms are unreliable, and returns a specialized White-relative score
// for them. The second return is false when pos doesn't match a registered signature, and
// also for KPK, whose probe is a stub; in either case the caller should fall back to the
// general evaluation.
func ProbeEndgame(pos *board.Position) (board.Score, bool) {
	e, ok := endgames[pos.MaterialKey()]
	if !ok {
		return 0, false
	}

	switch e.kind {
	case kqk:
		return mateTheCornerScore(pos, e.strong, e.strong.Opponent(), 1600), true
	case krk:
		return mateTheCornerScore(pos, e.strong, e.strong.Opponent(), 1200), true
	case kpk:
		return probeKPK(pos)
	default:
		return 0, false
	}
}

// mateTheCornerScore drives the losing king toward a corner and the two kings together,
// returning a large White-relative score favoring the strong side.
func mateTheCornerScore(pos *board.Position, strong, weak board.Color, base board.Score) board.Score {
	weakKing := pos.King(weak)
	strongKing := pos.King(strong)

	cornerDist := centerManhattanDistance(weakKing)
	kingDist := board.Distance(weakKing, strongKing)

	score := base + board.Score(16*cornerDist) + board.Score(8*(14-kingDist))
	if strong == board.Black {
		return -score
	}
	return score
}

func centerManhattanDistance(sq board.Square) int {
	f, r := int(sq.File()), int(sq.Rank())
	df, dr := f-4, r-4
	if df < 0 {
		df = -df - 1
	}
	if dr < 0 {
		dr = -dr - 1
	}
	return df + dr
}

// probeKPK is a stub: the precise win/draw classification for king-and-pawn endings is left
// to search depth rather than a bitbase lookup, so this never overrides the general
// evaluation terms.
//
// TODO(endgame): replace with a precomputed win/draw bitbase keyed by the canonical
// 5-man KPK index (both kings, pawn square, side to move).
func probeKPK(pos *board.Position) (board.Score, bool) {
	return 0, false
}

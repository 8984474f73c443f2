package eval

import "github.com/wyvern-chess/wyvern/pkg/board"

// pawnEntry caches one side's pawn-structure facts for a single pawn-Zobrist key.
type pawnEntry struct {
	key     board.ZobristHash
	passed  [board.NumColors]board.Bitboard
	attacks [board.NumColors]board.Bitboard
	score   Pair // White's perspective
}

// The cache is 2^14 entries, direct-mapped, silently overwritten on collision.
const pawnCacheBits = 14
const pawnCacheSize = 1 << pawnCacheBits
const pawnCacheMask = pawnCacheSize - 1

// PawnCache is a direct-mapped cache of pawnEntry keyed by the pawn-only Zobrist key. Not
// safe for concurrent use; one instance is owned per search worker.
type PawnCache struct {
	table []pawnEntry
}

// NewPawnCache returns an empty pawn cache.
func NewPawnCache() *PawnCache {
	return &PawnCache{table: make([]pawnEntry, pawnCacheSize)}
}

// probe returns the pawn-structure entry for pos, recomputing and caching on a miss.
func (c *PawnCache) probe(pos *board.Position) *pawnEntry {
	key := pos.PawnKey()
	idx := uint64(key) & pawnCacheMask
	e := &c.table[idx]
	if e.key == key {
		return e
	}

	*e = pawnEntry{key: key}
	for side := board.ZeroColor; side < board.NumColors; side++ {
		e.attacks[side] = pawnAttackSet(pos, side)
	}
	for side := board.ZeroColor; side < board.NumColors; side++ {
		e.passed[side] = passedPawnSet(pos, side, e.attacks[side.Opponent()])
	}
	e.score = pawnStructureScore(pos, e)
	return e
}

func pawnAttackSet(pos *board.Position, side board.Color) board.Bitboard {
	return board.PawnCaptureboard(side, pos.Piece(side, board.Pawn))
}

// passedPawnSet returns side's passed pawns: no opponent pawn on this file or an adjacent
// file on the squares ahead.
func passedPawnSet(pos *board.Position, side board.Color, _ board.Bitboard) board.Bitboard {
	own := pos.Piece(side, board.Pawn)
	opp := pos.Piece(side.Opponent(), board.Pawn)

	var passed board.Bitboard
	for _, sq := range own.ToSquares() {
		span := board.InFrontOfRank(side, sq.Rank()) & board.AdjacentFiles(sq.File())
		span |= board.InFrontOfRank(side, sq.Rank()) & board.BitFile(sq.File())
		if span&opp == 0 {
			passed |= board.BitMask(sq)
		}
	}
	return passed
}

// isOpposed reports whether an opponent pawn blocks sq's file somewhere ahead of it.
func isOpposed(pos *board.Position, side board.Color, sq board.Square) bool {
	opp := pos.Piece(side.Opponent(), board.Pawn)
	return board.InFrontOfRank(side, sq.Rank())&board.BitFile(sq.File())&opp != 0
}

func pawnStructureScore(pos *board.Position, e *pawnEntry) Pair {
	var total Pair
	for side := board.ZeroColor; side < board.NumColors; side++ {
		sign := int16(1)
		if side == board.Black {
			sign = -1
		}

		own := pos.Piece(side, board.Pawn)
		opp := pos.Piece(side.Opponent(), board.Pawn)
		oppAttacks := e.attacks[side.Opponent()]

		for _, sq := range own.ToSquares() {
			file := sq.File()
			sameFile := board.BitFile(file) & own
			doubled := sameFile.PopCount() > 1

			adjacent := board.AdjacentFiles(file) & own
			isolated := adjacent == 0

			supported := board.PawnCaptureboard(side.Opponent(), board.BitMask(sq)) & own
			opposed := isOpposed(pos, side, sq)

			var mg, eg int16
			switch {
			case doubled:
				mg, eg = -11, -51
			case isolated:
				if opposed {
					mg, eg = -3, -10
				} else {
					mg, eg = -7, -14
				}
			}

			if supported != 0 {
				mg, eg = mg+5, eg+10
			} else if !isolated {
				// Backward: the stop square ahead of the pawn is attacked and undefended,
				// and the pawn has no defender of its own. Both conditions must hold.
				stop := stepForward(side, sq)
				if stop.IsValid() && oppAttacks.IsSet(stop) && board.PawnCaptureboard(side.Opponent(), board.BitMask(stop))&own == 0 {
					mg, eg = mg-9, eg-24
				}
			}

			if adjacent&board.BitRank(sq.Rank()) != 0 {
				mg, eg = mg+5, eg+5 // phalanx (connected, same rank)
			}

			if board.PawnCaptureboard(side, board.BitMask(sq))&opp != 0 {
				mg, eg = mg+8, eg+10 // lever: attacks an opponent pawn
			}

			total += MakePair(sign*mg, sign*eg)
		}
	}
	return total
}

// stepForward returns the square one rank ahead of sq for side, or an invalid square if sq
// is already on the side's last rank.
func stepForward(side board.Color, sq board.Square) board.Square {
	if side == board.White {
		if sq.Rank() == board.Rank(7) {
			return board.NumSquares
		}
		return board.NewSquare(sq.File(), sq.Rank()+1)
	}
	if sq.Rank() == board.Rank(0) {
		return board.NumSquares
	}
	return board.NewSquare(sq.File(), sq.Rank()-1)
}

func (e *Engine) pawnStructure(pos *board.Position) Pair {
	return e.Pawns.probe(pos).score
}

// passedRankBonus[relative rank] is the (mg, eg) bonus for a passed pawn on that rank,
// relative ranks 0 and 7 (own back rank, promotion rank) never hold a pawn, so they are zero.
var passedRankBonus = [8]psqtEntry{
	{}, {10, 28}, {17, 33}, {15, 41}, {62, 72}, {168, 177}, {276, 260}, {},
}

// passedPawns scores passed pawns: a rank-indexed bonus, boosted when the pawn's advance
// square is empty and not attacked by an opponent pawn, and further in the endgame when the
// opponent's king is at least two steps farther from the queening square than the pawn's own
// king (a simplified "square of the pawn" rule).
func passedPawns(pos *board.Position, cache *PawnCache) Pair {
	e := cache.probe(pos)
	var total Pair
	for side := board.ZeroColor; side < board.NumColors; side++ {
		sign := int16(1)
		if side == board.Black {
			sign = -1
		}
		opp := side.Opponent()
		for _, sq := range e.passed[side].ToSquares() {
			rel := sq.Rank().Relative(side)
			bonus := passedRankBonus[rel]
			mg, eg := bonus.mg, bonus.eg

			stop := stepForward(side, sq)
			if stop.IsValid() && !e.attacks[opp].IsSet(stop) && !pos.Occupied().IsSet(stop) {
				mg += bonus.mg / 4
				eg += bonus.eg / 2
			}

			queeningSquare := board.NewSquare(sq.File(), board.Rank(7).Relative(side))
			ourDist := board.Distance(pos.King(side), queeningSquare)
			theirDist := board.Distance(pos.King(opp), queeningSquare)
			if theirDist > ourDist+1 {
				eg += 20
			}

			total += MakePair(sign*mg, sign*eg)
		}
	}
	return total
}

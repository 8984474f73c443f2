package eval

import "github.com/wyvern-chess/wyvern/pkg/board"

// kingDangerPenalty converts an attack-unit tally into a middlegame centipawn penalty, following the
// familiar steeply-increasing curve: harmless until a handful of attackers gang up, then
// punishing. Indexed by clamped attack units (0..99).
func kingDangerPenalty(units int) int16 {
	if units < 0 {
		units = 0
	}
	if units > 99 {
		units = 99
	}
	return int16((units * units) / 32)
}

// attackWeight is the attack-unit contribution of one attacker of the given kind landing in
// the king ring.
func attackWeight(p board.Piece) int {
	switch p {
	case board.Knight:
		return 20
	case board.Bishop:
		return 20
	case board.Rook:
		return 40
	case board.Queen:
		return 80
	default:
		return 0
	}
}

// kingRing is the king's own square plus the squares it attacks. The rank beyond those
// squares is not included.
func kingRing(pos *board.Position, side board.Color) board.Bitboard {
	ksq := pos.King(side)
	ring := board.KingAttackboard(ksq) | board.BitMask(ksq)
	return ring
}

func kingSafety(pos *board.Position) Pair {
	var total Pair
	occ := pos.Occupied()

	for side := board.ZeroColor; side < board.NumColors; side++ {
		sign := int16(1)
		if side == board.Black {
			sign = -1
		}
		opp := side.Opponent()
		ring := kingRing(pos, side)

		units := 0
		attackerCount := 0
		for _, p := range []board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
			for _, sq := range pos.Piece(opp, p).ToSquares() {
				var attacks board.Bitboard
				switch p {
				case board.Knight:
					attacks = board.KnightAttackboard(sq)
				case board.Bishop:
					attacks = board.BishopAttacks(sq, occ)
				case board.Rook:
					attacks = board.RookAttacks(sq, occ)
				case board.Queen:
					attacks = board.QueenAttacks(sq, occ)
				}
				if attacks&ring != 0 {
					units += attackWeight(p)
					attackerCount++
				}
			}
		}

		// Pawn shield: count own pawns on the three files around the king, on any rank in
		// front of it. A missing shield pawn adds to the danger tally.
		ksq := pos.King(side)
		shieldFiles := board.AdjacentFiles(ksq.File()) | board.BitFile(ksq.File())
		shieldZone := shieldFiles & (board.InFrontOfRank(side, ksq.Rank()))
		shieldPawns := (shieldZone & pos.Piece(side, board.Pawn)).PopCount()
		missing := 3 - shieldPawns
		if missing > 0 {
			units += missing * 10
		}

		if attackerCount == 0 {
			continue
		}

		penalty := kingDangerPenalty(units)
		total += MakePair(sign*-penalty, sign*-penalty/2)
	}
	return total
}

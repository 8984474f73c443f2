package eval

import "github.com/wyvern-chess/wyvern/pkg/board"

// knightMobility, bishopMobility, rookMobility and queenMobility[count] are the (mg, eg) bonus for a piece seeing count squares in its
// mobility area, indexed by popcount of attacks-within-area, capped at the table width.
var knightMobility = [9]psqtEntry{
	{-62, -81}, {-53, -56}, {-12, -31}, {-4, -16}, {3, 5}, {13, 11}, {22, 17}, {28, 20}, {33, 25},
}

var bishopMobility = [14]psqtEntry{
	{-48, -59}, {-20, -23}, {16, -3}, {26, 13}, {38, 24}, {51, 42}, {55, 54},
	{63, 57}, {63, 65}, {68, 73}, {81, 78}, {81, 86}, {91, 88}, {98, 97},
}

var rookMobility = [15]psqtEntry{
	{-60, -78}, {-20, -17}, {2, 23}, {3, 39}, {3, 70}, {11, 99}, {22, 103}, {31, 121},
	{40, 134}, {40, 139}, {41, 158}, {48, 164}, {57, 168}, {57, 169}, {62, 172},
}

var queenMobility = [28]psqtEntry{
	{-30, -48}, {-12, -30}, {-8, -7}, {-9, 19}, {20, 40}, {23, 55}, {23, 59}, {35, 75},
	{38, 78}, {53, 96}, {64, 96}, {65, 100}, {65, 121}, {66, 127}, {67, 131}, {67, 133},
	{72, 136}, {72, 141}, {77, 147}, {79, 150}, {93, 151}, {108, 168}, {108, 168}, {108, 171},
	{110, 173}, {114, 179}, {114, 179}, {116, 184},
}

func mobilityAndPieces(pos *board.Position) Pair {
	var total Pair
	occ := pos.Occupied()

	for side := board.ZeroColor; side < board.NumColors; side++ {
		sign := int16(1)
		if side == board.Black {
			sign = -1
		}
		opp := side.Opponent()
		king := pos.King(side)
		pinned := pos.Pinned(side)
		oppPawnAttacks := board.PawnCaptureboard(opp, pos.Piece(opp, board.Pawn))

		// Mobility area excludes our own king's square and any square an enemy pawn attacks.
		// A pinned piece only counts squares along its pin ray: anywhere else is illegal.
		area := ^(pos.Piece(side, board.King) | oppPawnAttacks)
		restrict := func(sq board.Square, attacks board.Bitboard) board.Bitboard {
			if pinned.IsSet(sq) {
				return attacks & board.Line(king, sq)
			}
			return attacks
		}

		for _, sq := range pos.Piece(side, board.Knight).ToSquares() {
			n := (restrict(sq, board.KnightAttackboard(sq)) & area).PopCount()
			if n >= len(knightMobility) {
				n = len(knightMobility) - 1
			}
			e := knightMobility[n]
			total += MakePair(sign*e.mg, sign*e.eg)
		}
		for _, sq := range pos.Piece(side, board.Bishop).ToSquares() {
			n := (restrict(sq, board.BishopAttacks(sq, occ)) & area).PopCount()
			if n >= len(bishopMobility) {
				n = len(bishopMobility) - 1
			}
			e := bishopMobility[n]
			total += MakePair(sign*e.mg, sign*e.eg)
		}
		for _, sq := range pos.Piece(side, board.Rook).ToSquares() {
			n := (restrict(sq, board.RookAttacks(sq, occ)) & area).PopCount()
			if n >= len(rookMobility) {
				n = len(rookMobility) - 1
			}
			e := rookMobility[n]
			total += MakePair(sign*e.mg, sign*e.eg)

			// Rook on an open or semi-open file.
			file := board.BitFile(sq.File())
			if file&pos.Piece(side, board.Pawn) == 0 {
				if file&pos.Piece(opp, board.Pawn) == 0 {
					total += MakePair(sign*25, sign*16) // fully open
				} else {
					total += MakePair(sign*10, sign*8) // semi-open
				}
			}

			// Rook on the 7th rank cutting off the enemy king on the 8th.
			seventh := board.Rank(6).Relative(side)
			eighth := board.Rank(7).Relative(side)
			if sq.Rank() == seventh && pos.King(opp).Rank() == eighth {
				total += MakePair(sign*20, sign*40)
			}
		}
		for _, sq := range pos.Piece(side, board.Queen).ToSquares() {
			n := (restrict(sq, board.QueenAttacks(sq, occ)) & area).PopCount()
			if n >= len(queenMobility) {
				n = len(queenMobility) - 1
			}
			e := queenMobility[n]
			total += MakePair(sign*e.mg, sign*e.eg)
		}

		// A piece parked on a square an enemy pawn attacks is either about to move again
		// or about to be traded down; either way it is worth less where it stands.
		harassed := (pos.Piece(side, board.Knight) | pos.Piece(side, board.Bishop) |
			pos.Piece(side, board.Rook) | pos.Piece(side, board.Queen)) & oppPawnAttacks
		if n := int16(harassed.PopCount()); n > 0 {
			total += MakePair(sign*-16*n, sign*-22*n)
		}
	}
	return total
}

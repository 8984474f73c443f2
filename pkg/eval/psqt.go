package eval

import "github.com/wyvern-chess/wyvern/pkg/board"

// psqtEntry is a squeezed (mg, eg) bonus for one piece kind on one square, from White's
// perspective with A1 at the table's bottom-left (rank 1) like the board itself.
type psqtEntry struct{ mg, eg int16 }

// rankFileTable expands an 8-rank-by-4-file table (file-mirrored: file index 0 is the
// a/h-file pair, 3 is the d/e-file pair) into a full 64-square table, matching the classic
// PSQT layout used by bitboard engines descended from Stockfish's tables.
func rankFileTable(byRank [8][4]psqtEntry) [64]psqtEntry {
	var out [64]psqtEntry
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			col := file
			if col > 3 {
				col = 7 - col
			}
			out[rank*8+file] = byRank[rank][col]
		}
	}
	return out
}

var pawnTable = rankFileTable([8][4]psqtEntry{
	{}, {}, // rank 1 never holds a pawn; rank 2 carries no bonus
	{{-3, 4}, {7, -6}, {-2, -14}, {-4, -7}},
	{{-6, -3}, {1, -10}, {2, -10}, {17, 1}},
	{{2, 10}, {13, 8}, {26, -1}, {34, -9}},
	{{9, 39}, {26, 28}, {44, 3}, {51, -9}},
	{{-11, 97}, {-4, 103}, {23, 69}, {31, 48}},
	{}, // rank 8 unused
})

var knightTable = rankFileTable([8][4]psqtEntry{
	{{-175, -96}, {-92, -65}, {-74, -49}, {-73, -21}},
	{{-77, -67}, {-41, -54}, {-27, -18}, {-15, 8}},
	{{-61, -40}, {-17, -27}, {6, -8}, {12, 29}},
	{{-35, -35}, {8, -2}, {40, 13}, {49, 28}},
	{{-34, -45}, {13, -16}, {44, 9}, {51, 39}},
	{{-9, -51}, {22, -44}, {58, -16}, {53, 17}},
	{{-67, -69}, {-27, -50}, {4, -51}, {37, 12}},
	{{-201, -100}, {-83, -88}, {-56, -56}, {-26, -17}},
})

var bishopTable = rankFileTable([8][4]psqtEntry{
	{{-53, -57}, {-5, -30}, {-8, -37}, {-23, -12}},
	{{-15, -37}, {8, -13}, {19, -17}, {4, 1}},
	{{-7, -16}, {21, -1}, {-5, -2}, {17, 10}},
	{{-3, -9}, {9, -13}, {12, -7}, {27, 22}},
	{{-13, -8}, {10, 3}, {-1, -3}, {28, 13}},
	{{-30, -12}, {6, -3}, {4, 8}, {5, 10}},
	{{-25, -24}, {-14, -18}, {-1, -7}, {4, 0}},
	{{-55, -44}, {-6, -16}, {-22, -17}, {-32, -9}},
})

var rookTable = rankFileTable([8][4]psqtEntry{
	{{-31, -9}, {-20, -13}, {-14, -10}, {-5, -9}},
	{{-21, -12}, {-13, -9}, {-8, -1}, {6, -2}},
	{{-25, 6}, {-11, -8}, {-1, -2}, {3, -6}},
	{{-13, -6}, {-5, 1}, {-4, -9}, {-6, 7}},
	{{-27, -5}, {-15, 8}, {-4, 7}, {3, -6}},
	{{-22, 6}, {-2, 1}, {6, -7}, {12, 10}},
	{{-2, 4}, {12, 5}, {16, 20}, {18, -5}},
	{{-17, 18}, {-19, 0}, {-1, 19}, {9, 13}},
})

var queenTable = rankFileTable([8][4]psqtEntry{
	{{3, -69}, {-5, -57}, {-5, -47}, {4, -26}},
	{{-3, -54}, {5, -31}, {8, -22}, {12, -4}},
	{{-3, -39}, {6, -18}, {13, -9}, {7, 3}},
	{{4, -23}, {5, -3}, {9, 13}, {8, 24}},
	{{0, -29}, {14, -6}, {12, 9}, {5, 21}},
	{{-4, -38}, {10, -18}, {6, -11}, {8, 1}},
	{{-5, -50}, {6, -27}, {10, -24}, {8, -8}},
	{{-2, -74}, {-2, -52}, {1, -43}, {-2, -34}},
})

var kingTable = rankFileTable([8][4]psqtEntry{
	{{271, 1}, {327, 45}, {271, 85}, {198, 76}},
	{{278, 53}, {303, 100}, {234, 133}, {179, 135}},
	{{195, 88}, {258, 130}, {169, 169}, {120, 175}},
	{{164, 103}, {190, 156}, {138, 172}, {98, 172}},
	{{154, 96}, {179, 166}, {105, 199}, {70, 199}},
	{{123, 92}, {145, 172}, {81, 184}, {31, 191}},
	{{88, 47}, {120, 121}, {65, 116}, {33, 131}},
	{{59, 11}, {89, 59}, {45, 73}, {-1, 78}},
})

func tableFor(p board.Piece) *[64]psqtEntry {
	switch p {
	case board.Pawn:
		return &pawnTable
	case board.Knight:
		return &knightTable
	case board.Bishop:
		return &bishopTable
	case board.Rook:
		return &rookTable
	case board.Queen:
		return &queenTable
	case board.King:
		return &kingTable
	default:
		return nil
	}
}

// flipVertical mirrors a square across the board's horizontal midline (rank r -> rank 7-r),
// giving Black's view of White's piece-square tables.
func flipVertical(sq board.Square) board.Square {
	return sq ^ 56
}

func psqt(pos *board.Position) Pair {
	var total Pair
	for c := board.ZeroColor; c < board.NumColors; c++ {
		sign := int16(1)
		if c == board.Black {
			sign = -1
		}
		for p := board.Pawn; p < board.NumPieces; p++ {
			tbl := tableFor(p)
			for _, sq := range pos.Piece(c, p).ToSquares() {
				at := sq
				if c == board.Black {
					at = flipVertical(sq)
				}
				e := tbl[at]
				total += MakePair(sign*e.mg, sign*e.eg)
			}
		}
	}
	return total
}

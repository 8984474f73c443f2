package eval

import "github.com/wyvern-chess/wyvern/pkg/board"

// pieceValueMg/pieceValueEg are the per-piece material terms (centipawns), indexed by
// board.Piece. King carries no material value; its presence is an invariant, not a term.
var pieceValueMg = [board.NumPieces]int16{
	board.Pawn:   126,
	board.Knight: 781,
	board.Bishop: 825,
	board.Rook:   1276,
	board.Queen:  2538,
}

var pieceValueEg = [board.NumPieces]int16{
	board.Pawn:   208,
	board.Knight: 854,
	board.Bishop: 915,
	board.Rook:   1380,
	board.Queen:  2682,
}

// imbalance is a small quadratic term in same-side piece counts: each pair of different kinds
// a side owns adds the product of their counts times the table weight. Indexed
// [ownKind][ownKind] in imbalanceKinds order; the diagonal is zero, so several of one kind add
// nothing here (the bishop pair is scored separately). The summed product is scaled down by
// 16 to keep the term small against the linear one.
var imbalanceOwn = [5][5]int{
	// Bishop, Knight,Rook, Queen, Pawn (diagonal unused)
	{0, 0, 0, 0, 0},
	{16, 0, 0, 0, 0},
	{36, 4, 0, 0, 0},
	{-4, 5, 10, 0, 0},
	{2, 4, 7, 5, 0},
}

var imbalanceKinds = []board.Piece{board.Bishop, board.Knight, board.Rook, board.Queen, board.Pawn}

func materialAndImbalance(pos *board.Position) Pair {
	var total Pair
	for c := board.ZeroColor; c < board.NumColors; c++ {
		sign := int16(1)
		if c == board.Black {
			sign = -1
		}
		for p := board.Pawn; p < board.NumPieces; p++ {
			n := int16(pos.Piece(c, p).PopCount())
			total += MakePair(sign*n*pieceValueMg[p], sign*n*pieceValueEg[p])
		}

		if pos.Piece(c, board.Bishop).PopCount() >= 2 {
			total += MakePair(sign*30, sign*50) // bishop pair
		}

		imb := 0
		for i, ik := range imbalanceKinds {
			ni := pos.Piece(c, ik).PopCount()
			if ni == 0 {
				continue
			}
			for j := 0; j <= i; j++ {
				nj := pos.Piece(c, imbalanceKinds[j]).PopCount()
				if j == i {
					nj--
				}
				if nj <= 0 {
					continue
				}
				imb += ni * nj * imbalanceOwn[i][j]
			}
		}
		imb /= 16
		total += MakePair(sign*int16(imb), sign*int16(imb))
	}
	return total
}

package board

// Piece represents a chess piece (King, Pawn, etc) with no color. 3 bits.
type Piece uint8

const (
	NoPiece Piece = iota
	Pawn
	Bishop
	Knight
	Rook
	Queen
	King
)

const (
	ZeroPiece Piece = NoPiece
	NumPieces Piece = King + 1
)

// KingQueenRookKnightBishop enumerates the non-pawn, non-king-exclusive pieces in the
// order most move-generation and attack-probing loops want them tried.
var KingQueenRookKnightBishop = []Piece{King, Queen, Rook, Knight, Bishop}

// QueenRookKnightBishopPawn enumerates the non-king pieces, heaviest first; used by
// material-counting evaluators that exclude the king from the sum.
var QueenRookKnightBishopPawn = []Piece{Queen, Rook, Knight, Bishop, Pawn}

// PromotionKinds is the fixed order promotion pieces encode in bits 12-13 of a packed Move:
// 0=Knight, 1=Bishop, 2=Rook, 3=Queen.
var PromotionKinds = []Piece{Knight, Bishop, Rook, Queen}

// PromotionIndex returns the 2-bit encoding for a promotion piece kind.
func PromotionIndex(p Piece) uint16 {
	switch p {
	case Knight:
		return 0
	case Bishop:
		return 1
	case Rook:
		return 2
	default:
		return 3
	}
}

// PromotionFromIndex decodes a 2-bit promotion encoding back into a piece kind.
func PromotionFromIndex(idx uint16) Piece {
	return PromotionKinds[idx&0x3]
}

func ParsePiece(r rune) (Piece, bool) {
	switch r {
	case 'p', 'P':
		return Pawn, true
	case 'b', 'B':
		return Bishop, true
	case 'n', 'N':
		return Knight, true
	case 'r', 'R':
		return Rook, true
	case 'q', 'Q':
		return Queen, true
	case 'k', 'K':
		return King, true
	default:
		return NoPiece, false
	}
}

func (p Piece) IsValid() bool {
	return Pawn <= p && p <= King
}

func (p Piece) String() string {
	switch p {
	case NoPiece:
		return " "
	case Pawn:
		return "p"
	case Bishop:
		return "b"
	case Knight:
		return "n"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return "?"
	}
}

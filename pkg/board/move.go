package board

import (
	"fmt"
	"strings"
)

// MoveFlag is the 2-bit move kind encoded in bits 14-15 of a packed Move.
type MoveFlag uint16

const (
	NormalFlag MoveFlag = iota
	EnPassantFlag
	CastlingFlag
	PromotionFlag
)

// Move is a 16-bit packed move: bits 0-5 origin, 6-11 destination, 12-13 promotion kind
// (0=knight, 1=bishop, 2=rook, 3=queen), 14-15 flag. Castling is encoded as the king's
// square moving to the castling rook's square (Chess960-friendly); String/UCI decode this
// back to the king's actual destination on the wire (e1g1, e1c1, e8g8, e8c8).
type Move uint16

const (
	originMask     = 0x003F
	destShift      = 6
	destMask       = 0x0FC0
	promotionShift = 12
	promotionMask  = 0x3000
	flagShift      = 14
	flagMask       = 0xC000
)

// NoMove is the zero-value sentinel: origin == destination == A1.
const NoMove Move = 0

// NullMove is the sentinel for a "pass" move: origin == destination == A2.
var NullMove = NewMove(A2, A2, NormalFlag, Knight)

// NewMove packs a move. promotion is ignored unless flag == PromotionFlag.
func NewMove(from, to Square, flag MoveFlag, promotion Piece) Move {
	return Move(uint16(from)&0x3F) |
		Move((uint16(to)&0x3F)<<destShift) |
		Move((PromotionIndex(promotion)&0x3)<<promotionShift) |
		Move((uint16(flag) & 0x3) << flagShift)
}

func (m Move) From() Square {
	return Square(m & originMask)
}

func (m Move) To() Square {
	return Square((m & destMask) >> destShift)
}

func (m Move) Flag() MoveFlag {
	return MoveFlag((m & flagMask) >> flagShift)
}

func (m Move) Promotion() Piece {
	return PromotionFromIndex(uint16((m & promotionMask) >> promotionShift))
}

func (m Move) IsPromotion() bool {
	return m.Flag() == PromotionFlag
}

func (m Move) IsEnPassant() bool {
	return m.Flag() == EnPassantFlag
}

func (m Move) IsCastling() bool {
	return m.Flag() == CastlingFlag
}

// Equals reports whether two moves are identical.
func (m Move) Equals(o Move) bool {
	return m == o
}

// CastlingKingDestination returns the square the king actually lands on for a castling
// move, decoding the internal "king square -> rook square" encoding into the wire square.
func (m Move) CastlingKingDestination() Square {
	switch m.To() {
	case H1: // white O-O
		return G1
	case A1: // white O-O-O
		return C1
	case H8: // black O-O
		return G8
	case A8: // black O-O-O
		return C8
	default:
		return m.To()
	}
}

// CastlingRookSquares returns the rook's origin and destination for a castling move.
func (m Move) CastlingRookSquares() (from, to Square) {
	switch m.To() {
	case H1:
		return H1, F1
	case A1:
		return A1, D1
	case H8:
		return H8, F8
	case A8:
		return A8, D8
	default:
		return m.To(), m.To()
	}
}

// String renders the move in long-algebraic notation as emitted over UCI: castling uses
// the king's actual destination, not the internal king-to-rook encoding.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	dest := m.To()
	if m.IsCastling() {
		dest = m.CastlingKingDestination()
	}

	var sb strings.Builder
	sb.WriteString(m.From().String())
	sb.WriteString(dest.String())
	if m.IsPromotion() {
		sb.WriteString(m.Promotion().String())
	}
	return sb.String()
}

// ParseMove parses the from/to/promotion triple of a long-algebraic move as accepted over
// UCI, e.g. "e2e4" or "e7e8q". The caller resolves the triple against a legal move list to
// recover the flag (castling/en-passant/normal), since the wire format does not distinguish
// them.
func ParseMove(str string) (from, to Square, promotion Piece, err error) {
	str = strings.TrimSpace(str)
	if len(str) != 4 && len(str) != 5 {
		return 0, 0, NoPiece, fmt.Errorf("invalid move: %q", str)
	}

	from, err = ParseSquareStr(str[0:2])
	if err != nil {
		return 0, 0, NoPiece, fmt.Errorf("invalid move: %q: %w", str, err)
	}
	to, err = ParseSquareStr(str[2:4])
	if err != nil {
		return 0, 0, NoPiece, fmt.Errorf("invalid move: %q: %w", str, err)
	}

	promotion = NoPiece
	if len(str) == 5 {
		p, ok := ParsePiece(rune(str[4]))
		if !ok {
			return 0, 0, NoPiece, fmt.Errorf("invalid promotion: %q", str)
		}
		promotion = p
	}
	return from, to, promotion, nil
}

// FormatMoves renders a list of moves space-separated, using fn for each element.
func FormatMoves(moves []Move, fn func(Move) string) string {
	var sb strings.Builder
	for i, m := range moves {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fn(m))
	}
	return sb.String()
}

// PrintMoves renders a list of moves space-separated in long-algebraic notation.
func PrintMoves(moves []Move) string {
	return FormatMoves(moves, Move.String)
}

package eval

import "github.com/wyvern-chess/wyvern/pkg/board"

// Pair packs a middlegame/endgame centipawn score pair into a single int32: mg in the high
// 16 bits, eg in the low 16 bits, so the two halves accumulate with one addition and are
// split apart only once, at the end, when the phase blend needs them separately.
type Pair int32

// MakePair packs a (mg, eg) centipawn pair.
func MakePair(mg, eg int16) Pair {
	return Pair(int32(mg)<<16 + int32(eg))
}

// Mg returns the middlegame half. The rounding term undoes the borrow a negative eg half
// takes from the high bits.
func (p Pair) Mg() int16 {
	return int16((int32(p) + 0x8000) >> 16)
}

// Eg returns the endgame half.
func (p Pair) Eg() int16 {
	return int16(uint32(p) & 0xFFFF)
}

// Negate flips both halves, e.g. to swap a term from White's perspective to Black's.
func (p Pair) Negate() Pair {
	return MakePair(-p.Mg(), -p.Eg())
}

func (p Pair) String() string {
	return "(" + board.Score(p.Mg()).String() + "," + board.Score(p.Eg()).String() + ")"
}

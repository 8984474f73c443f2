package eval

import (
	"fmt"

	"github.com/wyvern-chess/wyvern/pkg/board"
)

// Score is a signed search score in centipawns, wide enough to additionally encode mate
// distance near its extremes. Positive favors the side to move at the node the score was
// produced for; Negate flips perspective for the parent node one ply up the tree.
type Score int32

const (
	ZeroScore Score = 0

	// MateScore is the score of delivering mate on the current move; MateIn/MatedIn count
	// plies down from/up to it. Comfortably above anything board.Score (+-30000) can widen
	// into, so a mate score is never confused with an ordinary heuristic one.
	MateScore Score = 32000

	// InfScore/NegInfScore are the default alpha-beta window bounds: strictly outside any
	// score (mate or not) a search can produce, so the first real score always narrows them.
	InfScore    Score = MateScore + 1000
	NegInfScore Score = -InfScore

	// InvalidScore marks "no score set" distinctly from the infinities above.
	InvalidScore Score = -(InfScore + 1)

	MinScore Score = NegInfScore
	MaxScore Score = InfScore

	mateBound Score = 1000
)

func (s Score) String() string {
	if d, ok := s.MateDistance(); ok {
		if d >= 0 {
			return fmt.Sprintf("#%v", d)
		}
		return fmt.Sprintf("#-%v", -d)
	}
	return fmt.Sprintf("%.2f", float64(s)/100)
}

// IsInvalid reports whether s is the InvalidScore sentinel.
func (s Score) IsInvalid() bool {
	return s == InvalidScore
}

// Negate flips the score's perspective, leaving the invalid sentinel untouched.
func (s Score) Negate() Score {
	if s.IsInvalid() {
		return s
	}
	return -s
}

// Less orders scores the way alpha-beta comparisons expect.
func (s Score) Less(t Score) bool {
	return s < t
}

// MateDistance reports the number of plies to mate if s encodes one: positive when the side
// to move at this node delivers mate, negative when it is mated. ok is false otherwise.
func (s Score) MateDistance() (int, bool) {
	switch {
	case s > MateScore-mateBound:
		return int(MateScore - s), true
	case s < -MateScore+mateBound:
		return -int(MateScore + s), true
	default:
		return 0, false
	}
}

// MateIn is the score for delivering mate in ply plies (ply == 0: mate on this move).
func MateIn(ply int) Score {
	return MateScore - Score(ply)
}

// MatedIn is the score for being mated in ply plies.
func MatedIn(ply int) Score {
	return -MateScore + Score(ply)
}

// HeuristicScore widens a static centipawn evaluation into a full search Score.
func HeuristicScore(s board.Score) Score {
	return Score(s)
}

// Unit returns the signed unit for the color: 1 for White, -1 for Black.
func Unit(c board.Color) Score {
	if c == board.White {
		return 1
	}
	return -1
}

// Max returns the larger of two scores.
func Max(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min returns the smaller of two scores.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}

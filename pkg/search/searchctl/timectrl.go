package searchctl

import (
	"fmt"
	"math"
	"time"

	"github.com/wyvern-chess/wyvern/pkg/board"
)

// moveImportance is the skew-logistic weight assigned to game ply: moves deep into the
// middlegame matter most, while very early moves (book-ish, cheap to get slightly wrong)
// and very late ones (fewer pieces, sharper but shorter horizon) matter less. Uniformly
// bounded below, so no move's share of the clock ever collapses to zero.
func moveImportance(ply int) float64 {
	const (
		xscale = 9.3
		xshift = 59.8
		skew   = 0.172
	)
	if ply < 0 {
		ply = 0
	}
	return math.Pow(1+math.Exp((float64(ply)-xshift)/xscale), -skew)
}

const (
	// maxMoveHorizon caps how far ahead the budget looks when apportioning the clock; a
	// sudden-death game rarely runs past this many more moves by the time budgeting matters.
	maxMoveHorizon = 50

	// minThinkingTime floors both budgets: below this the engine cannot even complete a
	// shallow iteration, so spending less buys nothing.
	minThinkingTime = 20 * time.Millisecond

	// moveOverhead is the per-move allowance for I/O and GUI latency, subtracted from the
	// clock before it is divided up.
	moveOverhead = 30 * time.Millisecond

	// maxRatio amplifies the current move's claim when computing the hard ceiling;
	// stealRatio is how much of the later moves' time the ceiling may raid.
	maxRatio   = 7.0
	stealRatio = 0.33

	ponderBudgetBump = 1.25
)

// TimeControl mirrors the UCI "go" clock sub-options: remaining time and increment per side
// and, for a non-sudden-death control, the number of moves left until the next time control
// (0 meaning sudden death).
type TimeControl struct {
	WhiteTime, BlackTime time.Duration
	WhiteInc, BlackInc   time.Duration
	MovesToGo            int
}

func (t TimeControl) String() string {
	if t.MovesToGo == 0 {
		return fmt.Sprintf("%.1f<>%.1f", t.WhiteTime.Seconds(), t.BlackTime.Seconds())
	}
	return fmt.Sprintf("%.1f<>%.1f[moves=%v]", t.WhiteTime.Seconds(), t.BlackTime.Seconds(), t.MovesToGo)
}

// budgetShare apportions hyp across the next movesToGo moves and returns this move's slice:
// its importance relative to the summed importance of the moves that follow (each two plies
// later, since only this side's moves draw on this clock). ratio amplifies this move's
// claim; steal lets it raid a fraction of the remainder. Both ratios are capped so the
// share can never exceed the whole.
func budgetShare(hyp time.Duration, movesToGo, ply int, ratio, steal float64) time.Duration {
	this := moveImportance(ply)
	others := 0.0
	for j := 1; j < movesToGo; j++ {
		others += moveImportance(ply + 2*j)
	}

	r1 := (ratio * this) / (ratio*this + others)
	r2 := (this + steal*others) / (this + others)
	return time.Duration(float64(hyp) * math.Min(r1, r2))
}

// Budget computes the optimal and maximum think time for the move about to be searched.
// It considers every hypothetical "game ends in i more moves" horizon up to the actual
// moves-to-go (or maxMoveHorizon under sudden death), budgets the clock-plus-increments for
// each, and keeps the stingiest answer, so running a late time control low can never bank
// on increments that a short horizon would not deliver. optimal is the point past which
// deepening should stop under a stable root; maximum is the hard ceiling enforced
// regardless of what the search is doing.
func Budget(tc TimeControl, turn board.Color, fullmoves int) (optimal, maximum time.Duration) {
	remaining, inc := tc.WhiteTime, tc.WhiteInc
	if turn == board.Black {
		remaining, inc = tc.BlackTime, tc.BlackInc
	}
	if remaining <= 0 {
		return 0, 0
	}

	ply := 2 * (fullmoves - 1)
	if turn == board.Black {
		ply++
	}

	horizon := maxMoveHorizon
	if tc.MovesToGo > 0 && tc.MovesToGo < horizon {
		horizon = tc.MovesToGo
	}

	optimal, maximum = remaining, remaining
	for i := 1; i <= horizon; i++ {
		overhead := time.Duration(2+min(i, 40)) * moveOverhead
		hyp := remaining + time.Duration(i-1)*inc - overhead
		if hyp < 0 {
			hyp = 0
		}

		o := minThinkingTime + budgetShare(hyp, i, ply, 1, 0)
		m := minThinkingTime + budgetShare(hyp, i, ply, maxRatio, stealRatio)
		if o < optimal {
			optimal = o
		}
		if m < maximum {
			maximum = m
		}
	}

	if optimal < minThinkingTime {
		optimal = minThinkingTime
	}
	if maximum < optimal {
		maximum = optimal
	}
	return optimal, maximum
}

// PonderBudget inflates optimal by the fixed bump applied when the search starts in ponder
// mode: the opponent's clock runs while the engine ponders, so it can afford to spend
// longer once the expected move lands than a cold budget would allow.
func PonderBudget(optimal time.Duration) time.Duration {
	return time.Duration(float64(optimal) * ponderBudgetBump)
}

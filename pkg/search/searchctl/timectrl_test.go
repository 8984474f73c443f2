package searchctl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wyvern-chess/wyvern/pkg/board"
)

// TestBudgetMonotoneInRemainingTime: with ply and increment fixed, more clock must never
// produce a smaller optimal budget.
func TestBudgetMonotoneInRemainingTime(t *testing.T) {
	prev := time.Duration(0)
	for _, remaining := range []time.Duration{
		500 * time.Millisecond,
		time.Second,
		5 * time.Second,
		30 * time.Second,
		time.Minute,
		5 * time.Minute,
		time.Hour,
	} {
		tc := TimeControl{WhiteTime: remaining, WhiteInc: time.Second}
		optimal, maximum := Budget(tc, board.White, 20)

		assert.GreaterOrEqual(t, optimal, prev, "optimal shrank when clock grew to %v", remaining)
		assert.GreaterOrEqual(t, maximum, optimal, "maximum below optimal at %v", remaining)
		prev = optimal
	}
}

// TestBudgetMonotoneInMovesToGo: with the clock fixed, having to stretch it over more moves
// must never produce a larger per-move budget.
func TestBudgetMonotoneInMovesToGo(t *testing.T) {
	prev := time.Duration(1 << 62)
	for mtg := 1; mtg <= 40; mtg++ {
		tc := TimeControl{BlackTime: 2 * time.Minute, MovesToGo: mtg}
		optimal, _ := Budget(tc, board.Black, 15)

		assert.LessOrEqual(t, optimal, prev, "optimal grew at movestogo=%v", mtg)
		prev = optimal
	}
}

// TestBudgetFloorsAndOrdering: even a nearly-exhausted clock gets the minimum thinking
// time, and optimal never exceeds maximum.
func TestBudgetFloorsAndOrdering(t *testing.T) {
	tc := TimeControl{WhiteTime: 50 * time.Millisecond}
	optimal, maximum := Budget(tc, board.White, 60)

	assert.GreaterOrEqual(t, optimal, minThinkingTime)
	assert.GreaterOrEqual(t, maximum, optimal)
}

// TestBudgetNoClock: a side with no time on the clock gets a zero budget rather than a
// floored one, so the caller can tell "no time control" apart from "tiny time control".
func TestBudgetNoClock(t *testing.T) {
	optimal, maximum := Budget(TimeControl{}, board.White, 10)
	assert.Equal(t, time.Duration(0), optimal)
	assert.Equal(t, time.Duration(0), maximum)
}

// TestPonderBudgetBump: pondering inflates the optimal budget by a quarter.
func TestPonderBudgetBump(t *testing.T) {
	assert.Equal(t, 125*time.Millisecond, PonderBudget(100*time.Millisecond))
}

// TestMoveImportanceDecays: the skew-logistic weight decays for late plies but stays
// strictly positive, so every move keeps a non-zero claim on the clock.
func TestMoveImportanceDecays(t *testing.T) {
	assert.Greater(t, moveImportance(10), moveImportance(80))
	assert.Greater(t, moveImportance(200), 0.0)
}

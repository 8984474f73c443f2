package search

import (
	"time"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"go.uber.org/atomic"
)

// Limits bundles the external constraints on one search, translated directly from the UCI
// "go" command's sub-options: clocks and increments, moves-to-go, an explicit
// move time, node/depth/mate caps, the infinite/ponder flags and a root-move restriction.
type Limits struct {
	WhiteTime, BlackTime time.Duration
	WhiteInc, BlackInc   time.Duration
	MovesToGo            int // 0 == sudden death

	MoveTime time.Duration // explicit per-move budget; overrides the time manager when set
	Depth    int           // ply cap; 0 == unbounded
	Nodes    uint64        // node cap; 0 == unbounded
	Mate     int           // search for a mate in this many full moves; 0 == not mate-searching
	Infinite bool
	Ponder   bool

	SearchMoves []board.Move // restrict the root to these moves, if non-empty
}

// UsesTimeManager reports whether the time manager should derive a budget from the
// clock, as opposed to an explicit move time or no time constraint at all.
func (l Limits) UsesTimeManager() bool {
	return l.MoveTime == 0 && !l.Infinite && (l.WhiteTime > 0 || l.BlackTime > 0)
}

// Signals are the shared, lock-free-observed search flags: Stop is the only one ever
// written by the timer goroutine; the rest are main-thread-owned and timer-read.
type Signals struct {
	Stop            atomic.Bool
	StopOnPonderHit atomic.Bool
	FailedLowAtRoot atomic.Bool
	FirstRootMove   atomic.Bool
}

// NewSignals returns a Signals with every flag clear. Think resets them when a search starts,
// which also raises FirstRootMove.
func NewSignals() *Signals {
	return &Signals{}
}

func (s *Signals) reset() {
	s.Stop.Store(false)
	s.StopOnPonderHit.Store(false)
	s.FailedLowAtRoot.Store(false)
	s.FirstRootMove.Store(true)
}

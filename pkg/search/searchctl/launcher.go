// Package searchctl contains the harness that drives a search.Engine think to completion:
// the time manager and the goroutine pair -- worker plus timer -- that can halt it early.
package searchctl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seekerror/stdlib/pkg/lang"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/search"
)

// Options hold the dynamic search options a UI or protocol driver may change per search:
// either a hard depth limit or a time control to budget from, plus the remaining "go"
// sub-options (move time, node cap, mate-search distance, infinite/ponder flags, root-move
// restriction). Unlike search.Limits, these are the user-facing knobs rather than the
// fully-resolved values the engine searches with; Launch copies the other fields into a
// search.Limits and turns TimeControl, via Budget, into the soft and hard budgets its timer
// goroutine enforces.
type Options struct {
	DepthLimit  lang.Optional[uint]
	TimeControl lang.Optional[TimeControl]
	MoveTime    lang.Optional[time.Duration]
	NodeLimit   lang.Optional[uint64]
	Mate        lang.Optional[uint]
	Infinite    bool
	Ponder      bool
	SearchMoves []board.Move
}

func (o Options) String() string {
	var ret []string
	if v, ok := o.DepthLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := o.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", v))
	}
	if v, ok := o.MoveTime.V(); ok {
		ret = append(ret, fmt.Sprintf("movetime=%v", v))
	}
	if v, ok := o.NodeLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("nodes=%v", v))
	}
	if v, ok := o.Mate.V(); ok {
		ret = append(ret, fmt.Sprintf("mate=%v", v))
	}
	if o.Infinite {
		ret = append(ret, "infinite")
	}
	if o.Ponder {
		ret = append(ret, "ponder")
	}
	if len(o.SearchMoves) > 0 {
		ret = append(ret, fmt.Sprintf("searchmoves=%v", o.SearchMoves))
	}
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Launcher manages searches against a position.
type Launcher interface {
	// Launch starts a new search from the given exclusive (forked) board against engine and
	// returns a Handle to control it plus a channel of iterative-deepening PVs, closed once
	// the search halts.
	Launch(ctx context.Context, b *board.Board, engine *search.Engine, opt Options) (Handle, <-chan search.PV)
}

// Handle lets the caller manage an in-flight search: halt it and recover its last completed
// PV, or tell it the pondered move was played. The caller is expected to spin off searches
// with forked boards and abandon them when no longer needed; this keeps stopping conditions
// and re-synchronization trivial.
type Handle interface {
	// Halt halts the search, if running, and returns its last completed PV. Idempotent.
	Halt() search.PV

	// PonderHit reports that the opponent played the pondered move: time enforcement
	// starts, and a search that already ran out of work stops immediately.
	PonderHit()
}

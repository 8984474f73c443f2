package searchctl

import (
	"context"
	"sync"
	"time"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/search"
)

// pollPeriod is how often the timer goroutine re-checks the clock against the budgets:
// coarse enough to cost nothing, fine enough that a move-time overrun is never visible on
// the board's own clock.
const pollPeriod = 5 * time.Millisecond

// availableFraction and instabilitySlack turn the optimal budget into the soft stopping
// point consulted between polls: the base fraction of optimal, widened a little because a
// root whose best move is still shifting deserves the extra look.
const (
	availableFraction = 0.71
	instabilitySlack  = 1.2
)

// Iterative is the Launcher that drives a search.Engine's Think to completion or until
// halted. The worker goroutine runs Think directly -- Think already owns the
// iterative-deepening loop -- while a timer goroutine, started only when a time limit
// applies, polls the clock and raises Signals.Stop once the search has run past its soft
// budget with a settled root, past its hard budget regardless, or past an explicit move
// time. While the search is pondering, the timer holds fire; a ponder hit starts the clock.
type Iterative struct{}

func (Iterative) Launch(ctx context.Context, b *board.Board, engine *search.Engine, opt Options) (Handle, <-chan search.PV) {
	out := make(chan search.PV, 1)
	h := &handle{
		init:    iox.NewAsyncCloser(),
		quit:    iox.NewAsyncCloser(),
		signals: search.NewSignals(),
	}
	h.ponder.Store(opt.Ponder)
	go h.process(ctx, engine, b, opt, out)
	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser
	signals    *search.Signals
	ponder     atomic.Bool

	pv search.PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, engine *search.Engine, b *board.Board, opt Options, out chan search.PV) {
	defer h.init.Close()
	defer close(out)

	limits := search.Limits{
		Infinite:    opt.Infinite,
		Ponder:      opt.Ponder,
		SearchMoves: opt.SearchMoves,
	}
	if v, ok := opt.DepthLimit.V(); ok {
		limits.Depth = int(v)
	}
	if v, ok := opt.NodeLimit.V(); ok {
		limits.Nodes = v
	}
	if v, ok := opt.Mate.V(); ok {
		limits.Mate = int(v)
	}
	if v, ok := opt.MoveTime.V(); ok {
		limits.MoveTime = v
	}

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	var available, maximum time.Duration
	if tc, ok := opt.TimeControl.V(); ok && !opt.Infinite {
		optimal, hard := Budget(tc, b.Turn(), b.FullMoves())
		if opt.Ponder {
			optimal = PonderBudget(optimal)
			if optimal > hard {
				optimal = hard
			}
		}
		available = time.Duration(float64(optimal) * availableFraction * instabilitySlack)
		maximum = hard
		logw.Debugf(ctx, "Time budget for %v: optimal=%v available=%v maximum=%v", tc, optimal, available, maximum)
	}
	if maximum > 0 || limits.MoveTime > 0 {
		go h.enforceTimeLimits(wctx, available, maximum, limits.MoveTime)
	}

	_, _, pv := engine.Think(wctx, b, limits, h.signals, func(pv search.PV) {
		// Bound-annotated reports from unresolved aspiration re-searches are forwarded for
		// display but never become the "last completed" PV a Halt hands back.
		if pv.Bound == search.ExactBound {
			h.mu.Lock()
			h.pv = pv
			h.mu.Unlock()
		}

		select {
		case <-out:
		default:
		}
		out <- pv

		h.init.Close()
	})

	// The search ran out of work while still pondering: the driver may not move until the
	// opponent does, so remember that the ponder hit should stop immediately.
	if h.ponder.Load() {
		h.signals.StopOnPonderHit.Store(true)
	}

	logw.Debugf(ctx, "Searched %v: %v", b.Position(), pv)
}

// enforceTimeLimits is the timer goroutine: every pollPeriod it checks the elapsed time
// against the move-time and the two budgets, and raises Stop on the first breach. The soft
// budget only fires while the root is settled on its first move and not failing low; the
// hard budget fires unconditionally, backed off by two poll periods so the stop lands
// before the clock does. Pondering suspends all three checks.
func (h *handle) enforceTimeLimits(ctx context.Context, available, maximum, movetime time.Duration) {
	started := time.Now()
	ticker := time.NewTicker(pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.quit.Closed():
			return
		case <-ticker.C:
			if h.ponder.Load() {
				continue
			}
			elapsed := time.Since(started)

			stop := movetime > 0 && elapsed >= movetime
			if maximum > 0 {
				if h.signals.FirstRootMove.Load() && !h.signals.FailedLowAtRoot.Load() &&
					elapsed > available*3/4 {
					stop = true
				}
				if elapsed > maximum-2*pollPeriod {
					stop = true
				}
			}
			if stop {
				h.signals.Stop.Store(true)
				return
			}
		}
	}
}

func (h *handle) PonderHit() {
	if h.signals.StopOnPonderHit.Load() {
		h.signals.Stop.Store(true)
	}
	h.ponder.Store(false)
}

func (h *handle) Halt() search.PV {
	<-h.init.Closed()
	h.signals.Stop.Store(true)
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pv
}

// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/board/fen"
	"github.com/wyvern-chess/wyvern/pkg/engine"
	"github.com/wyvern-chess/wyvern/pkg/search"
	"github.com/wyvern-chess/wyvern/pkg/search/searchctl"
)

const ProtocolName = "uci"

// Option is an UCI driver option.
type Option func(*options)

type options struct {
	useBook bool
	book    engine.Book
	rand    *rand.Rand
}

// UseBook instructs the driver to use the given opening book.
func UseBook(book engine.Book, seed int64) Option {
	return func(opt *options) {
		opt.useBook = true
		opt.book = book
		opt.rand = rand.New(rand.NewSource(seed))
	}
}

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	e   *engine.Engine
	opt options

	out chan<- string

	active       atomic.Bool    // user is waiting for engine to move
	ponder       chan search.PV // chan for intermediate search information
	lastPosition string         // last position line (empty if no last position)

	smu       sync.Mutex // guards the ponder-search state below
	pondering bool       // a "go ponder" search is running; hold bestmove until ponderhit/stop
	pending   *search.PV // final PV of a ponder search that finished before the hit arrived

	quit   chan struct{}
	closed atomic.Bool
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string, opts ...Option) (*Driver, <-chan string) {
	var opt options
	for _, fn := range opts {
		fn(&opt)
	}

	out := make(chan string, 100)
	d := &Driver{
		e:      e,
		opt:    opt,
		out:    out,
		ponder: make(chan search.PV, 400),
		quit:   make(chan struct{}),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())

	if d.opt.book != nil {
		d.out <- fmt.Sprintf("option name OwnBook type check default %v", d.opt.useBook)
	}
	d.out <- "option name Ponder type check default true"
	opts := d.e.Options()
	d.out <- fmt.Sprintf("option name Hash type spin default %v min 0 max 4096", opts.Hash)
	d.out <- fmt.Sprintf("option name Noise type spin default %v min 0 max 100", opts.Noise)

	d.out <- "uciok"

cmdLoop:
	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Split(strings.TrimSpace(line), " ")
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "isready":
				d.out <- "readyok"

			case "debug":
				// Not supported: no extra "info string" traffic is emitted.

			case "setoption":
				var name, value string
				if len(args) > 1 {
					name = args[1]
				}
				if len(args) > 3 {
					value = args[3]
				}

				switch name {
				case "Ponder":
					// Accepted so GUIs can negotiate pondering; the driver ponders
					// whenever a "go ponder" arrives regardless.
				case "OwnBook":
					d.opt.useBook, _ = strconv.ParseBool(value)
				case "Hash":
					if n, err := strconv.Atoi(value); err == nil {
						d.e.SetHash(uint(n))
					}
				case "Noise":
					if n, err := strconv.Atoi(value); err == nil {
						d.e.SetNoise(uint(n))
					}
				}

			case "register":
				// No registration requirement.

			case "ucinewgame":
				d.ensureInactive(ctx)
				d.lastPosition = ""
				if err := d.e.Reset(ctx, fen.Initial); err != nil {
					logw.Errorf(ctx, "Reset failed: %v", err)
				}

			case "position":
				d.ensureInactive(ctx)

				if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
					// Continuation of game.

					moves := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
					for _, arg := range strings.Split(moves, " ") {
						if arg == "" || arg == "moves" {
							continue
						}

						if err := d.e.Move(ctx, arg); err != nil {
							// Stop applying further moves at the first illegal token; the
							// position reflects whatever was successfully applied so far.
							logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
							break
						}
					}

					d.lastPosition = line
					break
				}

				// New position.

				position := fen.Initial
				if len(args) >= 7 && args[0] == "fen" {
					position = strings.Join(args[1:7], " ")
				}

				if err := d.e.Reset(ctx, position); err != nil {
					// Malformed FEN: report and ignore the whole command, per the driver's
					// error-handling contract -- the previous position stands.
					logw.Errorf(ctx, "Invalid position: %v", line)
					break
				}

				move := false
				for _, arg := range args {
					if arg == "moves" {
						move = true
						continue
					}
					if !move {
						continue
					}

					if err := d.e.Move(ctx, arg); err != nil {
						// Stop applying further moves at the first illegal token; the
						// position reflects whatever was successfully applied so far.
						logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
						break
					}
				}
				d.lastPosition = line

			case "go":
				d.ensureInactive(ctx)

				var opt searchctl.Options
				var tc searchctl.TimeControl
				hasTC := false
				infinite := false
				var searchMoves []string

				for i := 0; i < len(args); i++ {
					cmd := args[i]
					switch cmd {
					case "wtime", "btime", "winc", "binc", "movestogo", "depth", "movetime", "nodes", "mate":
						i++
						if i == len(args) {
							logw.Errorf(ctx, "No argument for %v: %v", cmd, line)
							continue cmdLoop
						}
						n, err := strconv.Atoi(args[i])
						if err != nil {
							logw.Errorf(ctx, "Invalid argument for %v: %v", line, err)
							continue cmdLoop
						}

						switch cmd {
						case "depth":
							opt.DepthLimit = lang.Some(uint(n))
						case "wtime":
							tc.WhiteTime = time.Millisecond * time.Duration(n)
							hasTC = true
						case "btime":
							tc.BlackTime = time.Millisecond * time.Duration(n)
							hasTC = true
						case "winc":
							tc.WhiteInc = time.Millisecond * time.Duration(n)
							hasTC = true
						case "binc":
							tc.BlackInc = time.Millisecond * time.Duration(n)
							hasTC = true
						case "movestogo":
							tc.MovesToGo = n
							hasTC = true
						case "movetime":
							opt.MoveTime = lang.Some(time.Millisecond * time.Duration(n))
						case "nodes":
							opt.NodeLimit = lang.Some(uint64(n))
						case "mate":
							opt.Mate = lang.Some(uint(n))
						}

					case "searchmoves":
						for i+1 < len(args) {
							i++
							searchMoves = append(searchMoves, args[i])
						}

					case "infinite":
						infinite = true

					case "ponder":
						opt.Ponder = true

					default:
						// Silently ignore anything not handled.
					}
				}
				if hasTC {
					opt.TimeControl = lang.Some(tc)
				}
				opt.Infinite = infinite

				if len(searchMoves) > 0 {
					legal := d.e.Board().Position().GenerateMoves(board.Legal, nil)
					for _, arg := range searchMoves {
						from, to, promo, err := board.ParseMove(arg)
						if err != nil {
							logw.Errorf(ctx, "Invalid searchmoves entry '%v': %v: %v", arg, line, err)
							continue
						}
						for _, m := range legal {
							if m.From() == from && m.To() == to && (promo == board.NoPiece || m.Promotion() == promo) {
								opt.SearchMoves = append(opt.SearchMoves, m)
								break
							}
						}
					}
				}

				if d.opt.useBook && d.opt.book != nil && !opt.Ponder {
					moves, err := d.opt.book.Find(ctx, d.e.Position())
					if err != nil {
						logw.Errorf(ctx, "Failed to find book move for %v: %v", d.e.Position(), err)
						continue cmdLoop
					}

					if len(moves) > 0 {
						winner := moves[d.opt.rand.Intn(len(moves))]
						pv := search.PV{Moves: []board.Move{winner}}

						d.active.Store(true)
						d.searchCompleted(ctx, pv)
						break
					}
				}

				out, err := d.e.Analyze(ctx, opt)
				if err != nil {
					logw.Errorf(ctx, "Analyze failed: %v", err)
					continue cmdLoop
				}
				d.active.Store(true)
				d.smu.Lock()
				d.pondering = opt.Ponder
				d.pending = nil
				d.smu.Unlock()

				go func() {
					var last search.PV
					for pv := range out {
						if pv.Bound == search.ExactBound {
							last = pv
						}
						d.ponder <- pv
					}

					// A ponder search may not answer until the hit (or a stop) arrives;
					// park the result for the ponderhit handler instead.
					d.smu.Lock()
					if d.pondering {
						d.pending = &last
						d.smu.Unlock()
						return
					}
					d.smu.Unlock()

					if !infinite {
						d.searchCompleted(ctx, last)
					}
				}()

			case "stop":
				d.smu.Lock()
				d.pondering = false
				pending := d.pending
				d.pending = nil
				d.smu.Unlock()

				pv, err := d.e.Halt(ctx)
				switch {
				case err == nil:
					d.searchCompleted(ctx, pv)
				case pending != nil:
					d.searchCompleted(ctx, *pending)
				}

			case "ponderhit":
				// The opponent played the expected move: release any parked result, or let
				// the still-running search continue with its clock now live.
				d.smu.Lock()
				d.pondering = false
				pending := d.pending
				d.pending = nil
				d.smu.Unlock()

				d.e.PonderHit(ctx)
				if pending != nil {
					d.searchCompleted(ctx, *pending)
				}

			case "quit":
				return

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case pv := <-d.ponder:
			if d.active.Load() {
				d.out <- printPV(pv)
			}

		case <-d.quit:
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	d.smu.Lock()
	d.pondering = false
	d.pending = nil
	d.smu.Unlock()
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if d.active.CAS(true, false) {
		if len(pv.Moves) > 0 {
			d.out <- printPV(pv)
			if len(pv.Moves) > 1 {
				d.out <- fmt.Sprintf("bestmove %v ponder %v", pv.Moves[0], pv.Moves[1])
			} else {
				d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
			}
		} else {
			// No PV: the position is checkmate or stalemate. Report the terminal score
			// and the null move.
			b := d.e.Board()
			if b.Position().IsChecked(b.Position().Turn()) {
				d.out <- "info depth 0 score mate 0"
			} else {
				d.out <- "info depth 0 score cp 0"
			}
			d.out <- "bestmove 0000"
		}
	} // else: stale or duplicate result
}

func printPV(pv search.PV) string {
	// "info depth 2 seldepth 6 multipv 1 score cp 214 nodes 2124 time 1242 nps 1710 pv e2e4 e7e5 g1f3"

	parts := []string{"info"}
	parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	if pv.Seldepth > 0 {
		parts = append(parts, fmt.Sprintf("seldepth %v", pv.Seldepth))
	}
	parts = append(parts, "multipv 1")
	if d, ok := pv.Score.MateDistance(); ok {
		parts = append(parts, fmt.Sprintf("score mate %v", mateInFullMoves(d)))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}
	switch pv.Bound {
	case search.LowerBound:
		parts = append(parts, "lowerbound")
	case search.UpperBound:
		parts = append(parts, "upperbound")
	}
	if pv.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	}
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	}
	if pv.Nodes > 0 && pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv")
		parts = append(parts, board.PrintMoves(pv.Moves))
	}

	return strings.Join(parts, " ")
}

// mateInFullMoves converts a mate distance in plies (positive: delivering, negative: being
// mated) into the full-move count UCI's "score mate" field expects, keeping the sign.
func mateInFullMoves(plies int) int {
	if plies >= 0 {
		return (plies + 1) / 2
	}
	return -((-plies + 1) / 2)
}

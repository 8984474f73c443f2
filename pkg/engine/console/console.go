package console

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/board/fen"
	"github.com/wyvern-chess/wyvern/pkg/engine"
	"github.com/wyvern-chess/wyvern/pkg/eval"
	"github.com/wyvern-chess/wyvern/pkg/pgn"
	"github.com/wyvern-chess/wyvern/pkg/search"
	"github.com/wyvern-chess/wyvern/pkg/search/searchctl"
)

const ProtocolName = "console"

// Driver implements a console driver for debugging.
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	active atomic.Bool // user is waiting for engine to move
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard(ctx)

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
			case "reset", "r":
				// reset [<fenstring>] moves ...

				d.ensureInactive(ctx)

				pos := fen.Initial
				if len(args) >= 6 && args[0] != "moves" {
					pos = strings.Join(args[0:6], " ")
				}
				if err := d.e.Reset(ctx, pos); err != nil {
					d.out <- fmt.Sprintf("invalid position: '%v'", line)
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
						d.out <- fmt.Sprintf("invalid move: '%v'", arg)
						break
					}
				}
				d.printBoard(ctx)

			case "undo", "u":
				d.ensureInactive(ctx)

				_ = d.e.TakeBack(ctx)
				d.printBoard(ctx)

			case "print", "p", "disp":
				d.printBoard(ctx)

			case "threats", "t":
				d.printThreats()

			case "analyze", "a":
				d.ensureInactive(ctx)

				var opt searchctl.Options
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					opt.DepthLimit = lang.Some(uint(depth))
				}

				out, err := d.e.Analyze(ctx, opt)
				if err != nil {
					d.out <- fmt.Sprintf("analyze failed: %v", err)
					break
				}
				d.active.Store(true)

				go func() {
					var last search.PV
					for pv := range out {
						last = pv
						d.out <- pv.String()
					}
					d.searchCompleted(ctx, last)
				}()

			case "depth", "d":
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					d.e.SetDepth(uint(depth))
				}

			case "hash": // size in MB
				if len(args) > 0 {
					hash, _ := strconv.Atoi(args[0])
					d.e.SetHash(uint(hash))
				}

			case "nohash":
				d.e.SetHash(0)

			case "noise": // evaluation randomness in milli-pawns
				if len(args) > 0 {
					noise, _ := strconv.Atoi(args[0])
					d.e.SetNoise(uint(noise))
				}

			case "nonoise":
				d.e.SetNoise(0)

			case "book", "b":
				moves, err := d.e.Book(ctx)
				if err != nil {
					d.out <- fmt.Sprintf("book lookup failed: %v", err)
					break
				}
				if len(moves) == 0 {
					d.out <- "book: (no moves)"
				} else {
					d.out <- fmt.Sprintf("book: %v", board.PrintMoves(moves))
				}

			case "halt", "stop":
				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(ctx, pv)
				}

			case "save":
				name := "game.pgn"
				if len(args) > 0 {
					name = args[0]
				}
				if err := d.save(name); err != nil {
					d.out <- fmt.Sprintf("save failed: %v", err)
				} else {
					d.out <- fmt.Sprintf("saved %v", name)
				}

			case "quit", "exit", "q":
				d.ensureInactive(ctx)
				return

			case "":
				// ignore empty command

			default:
				// Assume move if not a recognized command.

				d.ensureInactive(ctx)
				if err := d.e.Move(ctx, cmd); err != nil {
					d.out <- fmt.Sprintf("invalid move: '%v'", cmd)
				} else {
					d.printBoard(ctx)
				}
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) save(path string) error {
	game := pgn.Encode(d.e.Board(), pgn.Tags{Event: "Console Session", White: d.e.Name(), Black: "opponent"})
	return os.WriteFile(path, []byte(game+"\n"), 0644)
}

// printThreats lists the pins against each king and the side-to-move pieces that stand
// en prise: attacked by something cheaper, or attacked and not defended at all.
func (d *Driver) printThreats() {
	p := d.e.Board().Position()

	found := false
	for side := board.ZeroColor; side < board.NumColors; side++ {
		for _, pin := range eval.FindPins(p, side, board.King) {
			d.out <- fmt.Sprintf("pin:     %v@%v held by %v@%v", side, pin.Pinned, side.Opponent(), pin.Attacker)
			found = true
		}
	}

	turn := p.Turn()
	for _, sq := range p.Color(turn).ToSquares() {
		_, piece, _ := p.Square(sq)
		if piece == board.King {
			continue
		}

		attackers := eval.SortByNominalValue(eval.FindCapture(p, turn.Opponent(), sq))
		if len(attackers) == 0 {
			continue
		}
		defended := len(eval.FindCapture(p, turn, sq)) > 0
		if eval.NominalValue(attackers[0].Piece) < eval.NominalValue(piece) || !defended {
			d.out <- fmt.Sprintf("hanging: %v@%v to %v", piece, sq, attackers[0])
			found = true
		}
	}

	if !found {
		d.out <- "no threats"
	}
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if d.active.CompareAndSwap(true, false) {
		// Search complete

		if len(pv.Moves) > 0 {
			d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
		}

		// Ponder each legal move for a score breakdown: one blocking, depth-limited,
		// no-table, no-noise search restricted to that single root move.

		b := d.e.Board()

		var sub []result
		for _, move := range b.Position().GenerateMoves(board.Legal, nil) {
			line := d.e.AnalyzeMove(ctx, pv.Depth, move)

			moves := line.Moves
			if len(moves) > 0 {
				moves = moves[1:] // skip the forced root move in the pv breakdown
			}
			sub = append(sub, result{m: move, s: line.Score, n: line.Nodes, pv: moves})
		}
		sort.Sort(byScore(sub))

		d.out <- fmt.Sprintf("Search, depth=%v", pv.Depth)
		for i := 0; i < len(sub); i++ {
			d.out <- fmt.Sprintf(" %2d. %v\t%v\t\t(%v nodes\tpv %v)", i+1, sub[i].m, sub[i].s, sub[i].n, board.PrintMoves(sub[i].pv))
		}
	} // else: stale or duplicate result
}

const (
	files      = "    a   b   c   d   e   f   g   h"
	horizontal = "  ---------------------------------"
	vertical   = " | "
)

func (d *Driver) printBoard(ctx context.Context) {
	b := d.e.Board()
	p := b.Position()

	d.out <- ""
	d.out <- files
	d.out <- horizontal
	for r := int(board.NumRanks) - 1; r >= 0; r-- {
		var sb strings.Builder
		sb.WriteString(board.Rank(r).String() + vertical)
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			sq := board.NewSquare(f, board.Rank(r))
			if color, piece, ok := p.Square(sq); ok {
				sb.WriteString(printPiece(color, piece))
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(vertical)
		}
		d.out <- sb.String()
		d.out <- horizontal
	}
	d.out <- files
	d.out <- ""
	d.out <- fmt.Sprintf("fen:    %v", d.e.Position())
	d.out <- fmt.Sprintf("eval:   %v (side to move)", eval.NewEngine().Evaluate(ctx, p))
	d.out <- fmt.Sprintf("result: %v, ply: %v, hash: 0x%x", b.Result(), b.Ply(), uint64(b.Hash()))
	d.out <- ""
}

func printPiece(c board.Color, p board.Piece) string {
	if c == board.White {
		return strings.ToUpper(p.String())
	}
	return strings.ToLower(p.String())
}

type result struct {
	m  board.Move
	s  eval.Score
	n  uint64
	pv []board.Move
}

// byScore is a sort order by score.
type byScore []result

func (b byScore) Len() int {
	return len(b)
}

func (b byScore) Less(i, j int) bool {
	return b[j].s.Less(b[i].s)
}

func (b byScore) Swap(i, j int) {
	b[i], b[j] = b[j], b[i]
}

// Package engine ties together position state, the book, the evaluator and the search
// harness into the single stateful object a protocol driver (UCI or the console) drives.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/board/fen"
	"github.com/wyvern-chess/wyvern/pkg/eval"
	"github.com/wyvern-chess/wyvern/pkg/search"
	"github.com/wyvern-chess/wyvern/pkg/search/searchctl"
)

var version = build.NewVersion(0, 89, 3)

// Options are search creation options.
type Options struct {
	// Depth is the search depth limit. If zero, there is no limit. Overridden by search
	// options if provided.
	Depth uint
	// Hash is the transposition table size in MB. If zero, the engine will not use
	// a transposition table.
	Hash uint
	// Noise adds some millipawn randomness to the leaf evaluations.
	Noise uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, noise=%v}", o.Depth, o.Hash, o.Noise)
}

// Engine encapsulates game-playing logic, search and evaluation.
type Engine struct {
	name, author string

	launcher searchctl.Launcher
	factory  search.TranspositionTableFactory
	book     Book
	seed     int64
	opts     Options

	b      *board.Board
	ev     *eval.Engine
	search *search.Engine
	active searchctl.Handle
	mu     sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithTable configures the engine to use the given transposition table factory.
func WithTable(factory search.TranspositionTableFactory) Option {
	return func(e *Engine) {
		e.factory = factory
	}
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithBook configures the engine's opening book. Defaults to NoBook.
func WithBook(book Book) Option {
	return func(e *Engine) {
		e.book = book
	}
}

// WithSeed configures the random seed used for leaf-evaluation noise, instead of the
// default seed of zero.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		launcher: searchctl.Iterative{},
		factory:  search.NewAtomicTable,
		book:     NoBook,
	}
	for _, fn := range opts {
		fn(e)
	}

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
}

func (e *Engine) SetNoise(millipawns uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Noise = millipawns
	if e.ev != nil {
		e.ev.Noise = noiseFor(millipawns, e.seed)
	}
}

// Board returns a forked board.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, depth=%v, TT=%vMB, noise=%vcp", position, e.opts.Depth, e.opts.Hash, e.opts.Noise/10)

	_, _ = e.haltSearchIfActive(ctx)

	pos, _, _, _, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.b = board.NewBoard(pos)

	var tt search.TranspositionTable = search.NoTranspositionTable{}
	if e.opts.Hash > 0 {
		tt = e.factory(ctx, uint64(e.opts.Hash)<<20)
	}

	e.ev = eval.NewEngine()
	e.ev.Noise = noiseFor(e.opts.Noise, e.seed)
	e.search = search.NewEngine(e.ev, tt)

	logw.Infof(ctx, "New board: %v", e.b)
	return nil
}

func noiseFor(millipawns uint, seed int64) eval.Random {
	if millipawns == 0 {
		return eval.Random{}
	}
	return eval.NewRandom(int(millipawns)/10, seed)
}

// Move selects the given move, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Move %v", move)

	from, to, promotion, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	_, _ = e.haltSearchIfActive(ctx)

	legal := e.b.Position().GenerateMoves(board.Legal, nil)
	for _, m := range legal {
		if m.From() != from || m.To() != to || m.Promotion() != promotion {
			continue
		}

		if !e.b.PushMove(m) {
			return fmt.Errorf("illegal move: %v", m)
		}

		logw.Infof(ctx, "Move %v: %v", m, e.b)
		return nil
	}
	return fmt.Errorf("invalid move: %v", move)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	m, ok := e.b.PopMove()
	if !ok {
		return fmt.Errorf("no move to take back")
	}

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Book returns the book moves, if any, for the current position.
func (e *Engine) Book(ctx context.Context) ([]board.Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	position := fen.Encode(e.b.Position(), e.b.Turn(), e.b.NoProgress(), e.b.FullMoves())
	return e.book.Find(ctx, position)
}

// Analyze analyzes the current position.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.b, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	handle, out := e.launcher.Launch(ctx, e.b.Fork(), e.search, opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Halt")

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

// PonderHit tells the active search that the opponent played the move it was pondering:
// the clock starts running against the search's budget from this point.
func (e *Engine) PonderHit(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Ponder hit")

	if e.active != nil {
		e.active.PonderHit()
	}
}

// AnalyzeMove runs a blocking, depth-limited search restricted to the given root move and
// returns its principal variation. Used for the per-move score breakdown in the console
// driver; does not touch the engine's active search state.
func (e *Engine) AnalyzeMove(ctx context.Context, depth int, move board.Move) search.PV {
	e.mu.Lock()
	b := e.b.Fork()
	ev := eval.NewEngine()
	eng := search.NewEngine(ev, search.NoTranspositionTable{})
	e.mu.Unlock()

	limits := search.Limits{Depth: depth, SearchMoves: []board.Move{move}}
	_, _, pv := eng.Think(ctx, b, limits, search.NewSignals(), nil)
	return pv
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.b, pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}

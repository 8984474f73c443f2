package search

import (
	"context"
	"time"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/eval"
)

// MaxPly bounds both recursion depth and the stack-frame arrays below; no legal line in
// chess approaches it, so it only ever matters as a hard safety valve.
const MaxPly = 128

// frame holds the per-ply state the search needs to look back across recursive calls:
// the static eval two plies up (for the "improving" heuristic) and the PV collected below
// this node, spliced onto the move that reached it.
type frame struct {
	staticEval eval.Score
	pv         []board.Move
}

// reportAfter is how long a search must have been running before intermediate
// fail-low/fail-high reports are worth emitting; re-searches earlier than this resolve
// too fast for the report to be anything but noise.
const reportAfter = 3 * time.Second

// Engine is a fixed search algorithm: iterative deepening with aspiration windows over a
// principal-variation search, late-move reductions, checking extensions and quiescence at
// the leaves. One Engine is reused across a game; the TranspositionTable persists between
// thinks, while the history table is cleared at the start of each Think.
type Engine struct {
	Eval eval.Evaluator
	TT   TranspositionTable

	history  *HistoryTable
	nodes    uint64
	seldepth int
	signals  *Signals
	limits   Limits
	started  time.Time
	stack    [MaxPly + 4]frame
}

// NewEngine constructs an Engine around the given evaluator and transposition table. A nil
// table installs NoTranspositionTable.
func NewEngine(e eval.Evaluator, tt TranspositionTable) *Engine {
	if tt == nil {
		tt = NoTranspositionTable{}
	}
	return &Engine{Eval: e, TT: tt, history: NewHistoryTable()}
}

// Nodes returns the number of nodes visited by the most recent Think call.
func (e *Engine) Nodes() uint64 {
	return e.nodes
}

// Think runs iterative deepening from b's current position, reporting each completed
// depth's PV to onIteration (e.g. to emit a UCI "info" line), and returns the best move and
// ponder candidate once signals.Stop is set or a limit in limits is reached. onIteration may
// be nil.
func (e *Engine) Think(ctx context.Context, b *board.Board, limits Limits, signals *Signals, onIteration func(PV)) (best, ponder board.Move, final PV) {
	e.nodes = 0
	e.seldepth = 0
	e.history.Clear()
	e.signals = signals
	e.signals.reset()
	e.limits = limits
	e.started = time.Now()
	for i := range e.stack {
		e.stack[i] = frame{staticEval: eval.InvalidScore}
	}

	root := NewRootMoves(b.Position(), limits.SearchMoves)
	if len(root) == 0 {
		return board.NoMove, board.NoMove, PV{}
	}

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	for depth := 1; depth <= maxDepth; depth++ {
		root.BeginIteration()

		score := e.aspirate(ctx, b, root, depth, onIteration)
		if e.signals.Stop.Load() && depth > 1 {
			break
		}

		root.StableSortByScore()
		bestMove, ponderMove, pv, ok := root.Best()
		if !ok {
			break
		}

		final = PV{
			Depth:    depth,
			Seldepth: e.seldepth,
			Moves:    pv,
			Score:    score,
			Nodes:    e.nodes,
			Time:     time.Since(e.started),
			Hash:     e.TT.Used(),
		}
		if onIteration != nil {
			onIteration(final)
		}
		best, ponder = bestMove, ponderMove

		if e.signals.Stop.Load() {
			break
		}
		if d, mate := score.MateDistance(); mate && limits.Mate > 0 && d > 0 && d <= 2*limits.Mate {
			break
		}
		if limits.Nodes > 0 && e.nodes >= limits.Nodes {
			break
		}
	}

	return best, ponder, final
}

// aspirate searches depth with a window centered on the previous iteration's score, widening
// geometrically on either side whenever the result falls outside it. Shallow depths (below
// 5) and the first iteration always use the full window: there is no prior score worth
// trusting yet. Long-running fail-lows and fail-highs are reported to onIteration with the
// matching bound so the driver can surface them.
func (e *Engine) aspirate(ctx context.Context, b *board.Board, root RootMoves, depth int, onIteration func(PV)) eval.Score {
	alpha, beta := eval.NegInfScore, eval.InfScore
	delta := eval.Score(16)

	prev := root[0].PrevScore
	if depth >= 5 && !prev.IsInvalid() && prev > eval.NegInfScore {
		alpha = eval.Max(prev-delta, eval.NegInfScore)
		beta = eval.Min(prev+delta, eval.InfScore)
	}

	for {
		score := e.searchRoot(ctx, b, root, depth, alpha, beta)
		if e.signals.Stop.Load() {
			return score
		}

		var bound Bound
		switch {
		case score <= alpha:
			beta = eval.Score((int64(alpha) + int64(beta)) / 2)
			alpha = eval.Max(score-delta, eval.NegInfScore)
			e.signals.FailedLowAtRoot.Store(true)
			bound = UpperBound
		case score >= beta:
			beta = eval.Min(score+delta, eval.InfScore)
			bound = LowerBound
		default:
			return score
		}

		if onIteration != nil && time.Since(e.started) >= reportAfter {
			onIteration(PV{
				Depth:    depth,
				Seldepth: e.seldepth,
				Moves:    root[0].PV,
				Score:    score,
				Bound:    bound,
				Nodes:    e.nodes,
				Time:     time.Since(e.started),
				Hash:     e.TT.Used(),
			})
		}
		delta += delta / 2
	}
}

// searchRoot searches every root move at depth, full window for the first (always treated
// as the incumbent PV move) and a null-window probe with re-search for the rest.
func (e *Engine) searchRoot(ctx context.Context, b *board.Board, root RootMoves, depth int, alpha, beta eval.Score) eval.Score {
	pos := b.Position()
	best := eval.NegInfScore

	for i := range root {
		m := root[i].Move
		e.signals.FirstRootMove.Store(i == 0)

		givesCheck := pos.GivesCheck(m)
		newDepth := depth - 1
		if givesCheck && pos.SeeSign(m) >= 0 {
			newDepth++ // checking extension
		}
		if !b.PushMove(m) {
			continue
		}

		var score eval.Score
		if i == 0 {
			score = e.pvSearch(ctx, b, 1, newDepth, beta.Negate(), alpha.Negate(), true, false).Negate()
		} else {
			score = e.pvSearch(ctx, b, 1, newDepth, alpha.Negate()-1, alpha.Negate(), false, true).Negate()
			if score > alpha && score < beta {
				score = e.pvSearch(ctx, b, 1, newDepth, beta.Negate(), alpha.Negate(), true, false).Negate()
			}
		}

		b.PopMove()

		if e.signals.Stop.Load() {
			return best
		}

		root[i].Score = score
		if score > best {
			best = score
			root[i].PV = append([]board.Move{m}, e.stack[1].pv...)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// pvSearch is the recursive principal-variation search: a transposition-table probe,
// late-move-reduced null-window tries beyond the first move at each node, re-searched on a
// fail-high, and a quiescence call once depth is exhausted. Mate scores encode the distance
// from the root (MateIn/MatedIn take the absolute ply), so scores pass through the unwind
// unchanged.
func (e *Engine) pvSearch(ctx context.Context, b *board.Board, ply, depth int, alpha, beta eval.Score, pvNode, cutNode bool) eval.Score {
	e.nodes++
	e.stack[ply].pv = nil
	if ply > e.seldepth {
		e.seldepth = ply
	}
	if e.checkStop(ctx) {
		return eval.ZeroScore
	}

	if b.Result().Outcome == board.Draw {
		return eval.ZeroScore
	}
	alpha = eval.Max(alpha, eval.MatedIn(ply))
	beta = eval.Min(beta, eval.MateIn(ply+1))
	if alpha >= beta {
		return alpha // mate-distance pruning
	}

	if depth <= 0 {
		return e.quiescence(ctx, b, ply, 0, alpha, beta)
	}
	if ply >= MaxPly {
		return e.staticEval(b)
	}

	pos := b.Position()
	inCheck := pos.Checkers() != 0

	hash := b.Hash()
	ttMove := board.NoMove
	if bound, ttDepth, ttScore, m, ok := e.TT.Read(hash); ok {
		ttMove = m
		if !pvNode && ttDepth >= depth {
			switch bound {
			case ExactBound:
				return ttScore
			case LowerBound:
				if ttScore >= beta {
					return ttScore
				}
			case UpperBound:
				if ttScore <= alpha {
					return ttScore
				}
			}
		}
	}

	static := e.staticEval(b)
	if inCheck {
		static = eval.InvalidScore
	}
	e.stack[ply].staticEval = static

	improving := false
	if !inCheck && ply >= 2 && !e.stack[ply-2].staticEval.IsInvalid() {
		improving = static >= e.stack[ply-2].staticEval
	}

	typ := board.NonEvasions
	if inCheck {
		typ = board.Evasions
	}
	moves := pos.GenerateMoves(typ, nil)
	prio := Picker(pos, e.history)
	if ttMove != board.NoMove {
		prio = board.First(ttMove, prio)
	}
	list := board.NewMoveList(moves, prio)

	alphaOrig := alpha
	best := eval.NegInfScore
	bestMove := board.NoMove
	moveCount, legalCount := 0, 0
	var pv []board.Move

	for {
		m, ok := list.Next()
		if !ok {
			break
		}
		moveCount++
		mover := movingPiece(pos, m)
		isQuiet := !isCapture(pos, m) && !m.IsPromotion()
		givesCheck := pos.GivesCheck(m)
		historyScore := e.history.Score(mover, m.To())

		newDepth := depth - 1
		extended := false
		if givesCheck && pos.SeeSign(m) >= 0 {
			newDepth++ // checking extension
			extended = true
		}

		// Shallow pruning: a quiet late move whose post-reduction depth would land below 4
		// plies is not worth trying when it also loses material on the spot.
		if !pvNode && moveCount > 1 && isQuiet && !inCheck && !givesCheck &&
			best > eval.MatedIn(MaxPly) && depth >= 3 {
			predicted := newDepth - lmrReduction(false, improving, depth, moveCount, cutNode, historyScore, false)
			if predicted < 4 && pos.SeeSign(m) < 0 {
				continue
			}
		}

		evades := isQuiet && evadesCapture(pos, m)

		if !b.PushMove(m) {
			continue
		}
		legalCount++

		var score eval.Score
		fullSearch := true
		if depth >= 3 && moveCount > 1 && isQuiet && !inCheck && !extended && newDepth > 0 {
			r := lmrReduction(pvNode, improving, depth, moveCount, cutNode, historyScore, evades)
			if r > 0 {
				reduced := newDepth - r
				if reduced < 1 {
					reduced = 1
				}
				score = e.pvSearch(ctx, b, ply+1, reduced, alpha.Negate()-1, alpha.Negate(), false, true).Negate()
				fullSearch = score > alpha && reduced < newDepth

				// A deep reduction that still beat alpha earns one intermediate re-search
				// before committing to the full depth.
				if fullSearch && r >= 4 {
					reduced = newDepth - 2
					if reduced < 1 {
						reduced = 1
					}
					score = e.pvSearch(ctx, b, ply+1, reduced, alpha.Negate()-1, alpha.Negate(), false, true).Negate()
					fullSearch = score > alpha && reduced < newDepth
				}
			}
		}

		if fullSearch {
			if legalCount == 1 {
				score = e.pvSearch(ctx, b, ply+1, newDepth, beta.Negate(), alpha.Negate(), pvNode, false).Negate()
			} else {
				score = e.pvSearch(ctx, b, ply+1, newDepth, alpha.Negate()-1, alpha.Negate(), false, !cutNode).Negate()
				if pvNode && score > alpha && score < beta {
					score = e.pvSearch(ctx, b, ply+1, newDepth, beta.Negate(), alpha.Negate(), true, false).Negate()
				}
			}
		}

		b.PopMove()

		if e.signals.Stop.Load() {
			return eval.ZeroScore
		}

		if score > best {
			best = score
			bestMove = m
			if pvNode {
				pv = append([]board.Move{m}, e.stack[ply+1].pv...)
			}
			if score > alpha {
				alpha = score
			}
		} else if isQuiet {
			e.history.Penalize(mover, m.To(), depth)
		}
		if alpha >= beta {
			if isQuiet {
				e.history.Update(mover, m.To(), depth)
			}
			break
		}
	}

	if legalCount == 0 {
		if inCheck {
			return eval.MatedIn(ply)
		}
		return eval.ZeroScore
	}

	e.stack[ply].pv = pv

	bound := ExactBound
	switch {
	case best >= beta:
		bound = LowerBound
	case best <= alphaOrig:
		bound = UpperBound
	}
	e.TT.Write(hash, bound, ply, depth, best, bestMove)

	return best
}

// evadesCapture reports whether m moves a piece off a square where a cheaper enemy piece
// attacks it -- the move escapes a losing capture and deserves a smaller reduction.
func evadesCapture(pos *board.Position, m board.Move) bool {
	mover := movingPiece(pos, m)
	if mover == board.NoPiece || mover == board.King {
		return false
	}
	attackers := board.AttackersTo(pos, m.From(), pos.Occupied()) & pos.Color(pos.Turn().Opponent())
	for _, sq := range attackers.ToSquares() {
		if _, kind, ok := pos.Square(sq); ok && seeLess(kind, mover) {
			return true
		}
	}
	return false
}

func seeLess(a, b board.Piece) bool {
	return eval.NominalValue(a) < eval.NominalValue(b)
}

// checkStop reports whether the search should halt now: an externally requested stop, a
// cancelled context, or a node-count limit reached. It latches Signals.Stop so every
// subsequent call anywhere in the tree short-circuits just as cheaply.
func (e *Engine) checkStop(ctx context.Context) bool {
	if e.signals.Stop.Load() {
		return true
	}
	if ctx.Err() != nil {
		e.signals.Stop.Store(true)
		return true
	}
	if e.limits.Nodes > 0 && e.nodes > e.limits.Nodes {
		e.signals.Stop.Store(true)
		return true
	}
	return false
}

package board

import "fmt"

// Board wraps a Position with the played-move history needed to adjudicate a game: it
// tracks castling-done flags and renders results (checkmate/stalemate/draw) on top of the
// Position's own draw detection (IsDraw already walks the Position's own state stack for
// repetition and the fifty-move rule; Board adds nothing to that, it only remembers moves
// played so a "takeback" or a PGN dump has something to show).
type Board struct {
	pos    *Position
	played []Move
	result Result
}

// NewBoard wraps pos (already at turn/noprogress/fullmoves, e.g. via fen.Decode) into a Board.
func NewBoard(pos *Position) *Board {
	return &Board{pos: pos}
}

// Fork returns an independent copy of the board: the copy may be mutated (PushMove/PopMove)
// without affecting the original. Used by the engine to hand an exclusive board to a search
// goroutine while continuing to serve reads/writes against the game-playing board.
func (b *Board) Fork() *Board {
	cp := *b.pos
	cp.stack = append([]stateInfo(nil), b.pos.stack...)

	played := append([]Move(nil), b.played...)
	return &Board{pos: &cp, played: played, result: b.result}
}

func (b *Board) Position() *Position {
	return b.pos
}

func (b *Board) Turn() Color {
	return b.pos.Turn()
}

func (b *Board) NoProgress() int {
	return b.pos.HalfmoveClock()
}

func (b *Board) FullMoves() int {
	return b.pos.FullmoveNumber()
}

func (b *Board) Result() Result {
	return b.result
}

// Hash returns the Zobrist key of the current position, used to key the transposition table.
func (b *Board) Hash() ZobristHash {
	return b.pos.FullKey()
}

// Ply returns the number of moves played on this board since it was created (or forked),
// i.e. the search ply relative to this board's root.
func (b *Board) Ply() int {
	return len(b.played)
}

// PushMove attempts to make a pseudo-legal move. Returns true iff legal. A king move
// into check, a pinned piece sliding off its pin ray, or an en-passant capture that would
// expose the king are all rejected without mutating the position.
func (b *Board) PushMove(m Move) bool {
	if b.result.Reason == Checkmate || b.result.Reason == Stalemate {
		return false // no legal moves exist in a terminal position
	}

	pinned := b.pos.Pinned(b.pos.Turn())
	if !b.pos.Legal(m, pinned) {
		return false
	}

	b.pos.DoMove(m)
	b.played = append(b.played, m)

	// The fifty-move rule may not release a mate delivered on the hundredth half-move, so
	// the draw claim at exactly 100 needs to know whether a legal reply exists at all.
	legalExists := true
	if b.pos.halfmove == 100 {
		legalExists = len(b.pos.GenerateMoves(Legal, nil)) > 0
	}

	if b.pos.IsDraw(legalExists) {
		b.result = Result{Outcome: Draw, Reason: drawReason(b.pos)}
	} else {
		b.result = Result{}
	}
	return true
}

// PopMove undoes the most recently played move, if any.
func (b *Board) PopMove() (Move, bool) {
	if len(b.played) == 0 {
		return NoMove, false
	}

	n := len(b.played) - 1
	m := b.played[n]
	b.played = b.played[:n]

	b.pos.UndoMove(m)
	b.result = Result{}
	return m, true
}

// AdjudicateNoLegalMoves adjudicates the position assuming no legal moves exist: checkmate
// if the side to move is in check, stalemate otherwise.
func (b *Board) AdjudicateNoLegalMoves() Result {
	result := Result{Outcome: Draw, Reason: Stalemate}
	if b.pos.IsChecked(b.pos.Turn()) {
		result = Result{Outcome: Loss(b.pos.Turn()), Reason: Checkmate}
	}
	b.result = result
	return result
}

// Adjudicate sets the result explicitly, e.g. on resignation or agreement.
func (b *Board) Adjudicate(result Result) {
	b.result = result
}

// LastMove returns the last move played, if any.
func (b *Board) LastMove() (Move, bool) {
	if len(b.played) == 0 {
		return NoMove, false
	}
	return b.played[len(b.played)-1], true
}

// HasCastled returns true iff the color has castled in the played history.
func (b *Board) HasCastled(c Color) bool {
	turn := b.pos.Turn()
	for i := len(b.played) - 1; i >= 0; i-- {
		turn = turn.Opponent()
		if turn == c && b.played[i].IsCastling() {
			return true
		}
	}
	return false
}

// History returns the moves played on this board since it was created, in order.
func (b *Board) History() []Move {
	return append([]Move(nil), b.played...)
}

func (b *Board) String() string {
	return fmt.Sprintf("board{pos=%v, result=%v, played=%v}", b.pos, b.result, len(b.played))
}

func drawReason(p *Position) Reason {
	if p.isInsufficientMaterial() {
		return InsufficientMaterial
	}
	if p.halfmove >= 100 {
		return NoProgress
	}
	return Repetition3
}

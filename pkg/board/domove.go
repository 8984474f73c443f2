package board

// DoMove mutates the position by playing m, which must be pseudo-legal in the current
// position (as produced by the move generator). Pushes a stateInfo snapshot so UndoMove can
// invert the mutation. All three Zobrist keys are maintained incrementally.
func (p *Position) DoMove(m Move) {
	turn := p.turn
	opp := turn.Opponent()
	from, to := m.From(), m.To()
	moving := p.board[from]

	st := stateInfo{
		castling:       p.castling,
		ep:             p.ep,
		halfmove:       p.halfmove,
		fullKey:        p.fullKey,
		pawnKey:        p.pawnKey,
		materialKey:    p.materialKey,
		capturedPiece:  NoPiece,
		capturedSquare: to,
	}

	newHalfmove := p.halfmove + 1
	if moving == Pawn {
		newHalfmove = 0
	}

	if m.IsEnPassant() {
		capturedSq := NewSquare(to.File(), from.Rank())
		st.capturedPiece = Pawn
		st.capturedSquare = capturedSq
		p.removePiece(opp, Pawn, capturedSq)
		newHalfmove = 0
	} else if !m.IsCastling() && p.board[to] != NoPiece {
		st.capturedPiece = p.board[to]
		st.capturedSquare = to
		p.removePiece(opp, st.capturedPiece, to)
		newHalfmove = 0
	}

	if p.ep != NoEnPassant {
		p.fullKey ^= enPassantKey(p.ep.File())
	}
	newEP := NoEnPassant

	switch {
	case m.IsCastling():
		kingDest := m.CastlingKingDestination()
		p.movePiece(turn, King, from, kingDest)
		rFrom, rTo := m.CastlingRookSquares()
		p.movePiece(turn, Rook, rFrom, rTo)
	case m.IsPromotion():
		p.removePiece(turn, Pawn, from)
		p.addPiece(turn, m.Promotion(), to)
	default:
		p.movePiece(turn, moving, from, to)
		if moving == Pawn && Distance(from, to) == 2 && from.File() == to.File() {
			candidate := Square((int(from) + int(to)) / 2)
			if pawnAttacks[turn][candidate]&p.pieces[opp][Pawn] != 0 {
				newEP = candidate
			}
		}
	}

	p.castling = p.castling.Without(RightsClearedBy(from)).Without(RightsClearedBy(to))

	p.fullKey ^= castlingKey(st.castling)
	p.fullKey ^= castlingKey(p.castling)
	if newEP != NoEnPassant {
		p.fullKey ^= enPassantKey(newEP.File())
	}
	p.ep = newEP
	p.fullKey ^= sideKey()

	p.halfmove = newHalfmove
	if turn == Black {
		p.fullmove++
	}
	p.turn = opp

	p.stack = append(p.stack, st)

	if debugEnabled {
		debugAssert(p.checkConsistent(), "inconsistent position after %v: %v", m, p)
	}
}

// UndoMove inverts the most recent DoMove. m must be the same move just played.
func (p *Position) UndoMove(m Move) {
	n := len(p.stack) - 1
	st := p.stack[n]
	p.stack = p.stack[:n]

	p.turn = p.turn.Opponent()
	turn := p.turn
	opp := turn.Opponent()
	from, to := m.From(), m.To()

	if turn == Black {
		p.fullmove--
	}

	switch {
	case m.IsCastling():
		kingDest := m.CastlingKingDestination()
		p.movePiece(turn, King, kingDest, from)
		rFrom, rTo := m.CastlingRookSquares()
		p.movePiece(turn, Rook, rTo, rFrom)
	case m.IsPromotion():
		p.removePiece(turn, m.Promotion(), to)
		p.addPiece(turn, Pawn, from)
	default:
		moving := p.board[to]
		p.movePiece(turn, moving, to, from)
	}

	if st.capturedPiece != NoPiece {
		p.addPiece(opp, st.capturedPiece, st.capturedSquare)
	}

	p.castling = st.castling
	p.ep = st.ep
	p.halfmove = st.halfmove
	p.fullKey = st.fullKey
	p.pawnKey = st.pawnKey
	p.materialKey = st.materialKey

	if debugEnabled {
		debugAssert(p.checkConsistent(), "inconsistent position after undoing %v: %v", m, p)
	}
}

// DoNullMove and UndoNullMove flip the side to move without playing a move; present for
// completeness with the Signals/search plumbing, though this engine does not perform
// null-move pruning (see the Open Questions in DESIGN.md).
func (p *Position) DoNullMove() Square {
	prevEP := p.ep
	if p.ep != NoEnPassant {
		p.fullKey ^= enPassantKey(p.ep.File())
		p.ep = NoEnPassant
	}
	p.fullKey ^= sideKey()
	p.turn = p.turn.Opponent()
	return prevEP
}

func (p *Position) UndoNullMove(prevEP Square) {
	p.turn = p.turn.Opponent()
	p.fullKey ^= sideKey()
	if prevEP != NoEnPassant {
		p.fullKey ^= enPassantKey(prevEP.File())
	}
	p.ep = prevEP
}

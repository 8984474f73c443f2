package board

// GenerationType selects which category of pseudo-legal moves to enumerate, matching the
// six categories of the move generator component: non-evasions, evasions, captures,
// non-captures, quiet-checks and legal (which filters on top of the other two).
type GenerationType int

const (
	NonEvasions GenerationType = iota
	Evasions
	Captures
	NonCaptures
	QuietChecks
	Legal
)

// GenerateMoves appends pseudo-legal (or, for Legal, fully legal) moves of the given category
// onto moves and returns the extended slice.
func (p *Position) GenerateMoves(typ GenerationType, moves []Move) []Move {
	checkers := p.Checkers()

	switch typ {
	case Legal:
		pinned := p.Pinned(p.turn)
		start := len(moves)
		if checkers != 0 {
			moves = p.generateEvasions(moves)
		} else {
			moves = p.generateNonEvasions(moves)
		}
		// In-place swap-with-last filtering keeps the legality pass O(N).
		n := len(moves)
		for i := start; i < n; {
			if p.Legal(moves[i], pinned) {
				i++
				continue
			}
			n--
			moves[i] = moves[n]
		}
		return moves[:n]
	case Evasions:
		return p.generateEvasions(moves)
	case NonEvasions:
		return p.generateNonEvasions(moves)
	case Captures:
		return p.generateByFilter(moves, true, false)
	case NonCaptures:
		return p.generateByFilter(moves, false, true)
	case QuietChecks:
		return p.generateQuietChecks(moves)
	default:
		return moves
	}
}

func (p *Position) isCapture(m Move) bool {
	return m.IsEnPassant() || p.board[m.To()] != NoPiece
}

func (p *Position) generateByFilter(moves []Move, captures, quiets bool) []Move {
	checkers := p.Checkers()
	var all []Move
	if checkers != 0 {
		all = p.generateEvasions(nil)
	} else {
		all = p.generateNonEvasions(nil)
	}
	for _, m := range all {
		if p.isCapture(m) {
			if captures {
				moves = append(moves, m)
			}
		} else if quiets {
			moves = append(moves, m)
		}
	}
	return moves
}

func (p *Position) generateNonEvasions(moves []Move) []Move {
	occ := p.Occupied()
	own := p.pieces[p.turn][NoPiece]

	moves = p.generatePawnMoves(moves, ^own)
	moves = p.generatePieceMoves(moves, Knight, ^own, occ)
	moves = p.generatePieceMoves(moves, Bishop, ^own, occ)
	moves = p.generatePieceMoves(moves, Rook, ^own, occ)
	moves = p.generatePieceMoves(moves, Queen, ^own, occ)
	moves = p.generatePieceMoves(moves, King, ^own, occ)
	moves = p.generateCastling(moves)
	return moves
}

// generateEvasions generates moves when the side to move is in check: double check restricts
// to king moves, single check restricts non-king moves to captures of the checker or blocks
// on the between-squares.
func (p *Position) generateEvasions(moves []Move) []Move {
	turn := p.turn
	checkers := p.Checkers()
	kingSq := p.King(turn)
	occ := p.Occupied()
	own := p.pieces[turn][NoPiece]

	// King moves are always considered. Attacks are tested against the occupancy with the king
	// already lifted off its origin square, so a slider checking through the king's own square
	// is not mistaken for safe.
	kingTargets := kingAttacks[kingSq] &^ own
	occWithoutKing := occ &^ BitMask(kingSq)
	for _, to := range kingTargets.ToSquares() {
		if AttackersTo(p, to, occWithoutKing)&p.pieces[turn.Opponent()][NoPiece] != 0 {
			continue
		}
		moves = append(moves, NewMove(kingSq, to, NormalFlag, NoPiece))
	}

	if checkers.PopCount() > 1 {
		return moves // double check: king moves only.
	}

	checkerSq := checkers.LastPopSquare()
	target := Between(kingSq, checkerSq) | checkers

	moves = p.generatePawnMoves(moves, target)
	moves = p.generatePieceMoves(moves, Knight, target, occ)
	moves = p.generatePieceMoves(moves, Bishop, target, occ)
	moves = p.generatePieceMoves(moves, Rook, target, occ)
	moves = p.generatePieceMoves(moves, Queen, target, occ)
	return moves
}

func (p *Position) generatePieceMoves(moves []Move, kind Piece, targetMask Bitboard, occ Bitboard) []Move {
	turn := p.turn
	bb := p.pieces[turn][kind]
	for _, from := range bb.ToSquares() {
		attacks := Attackboard(occ, from, kind) & targetMask
		for _, to := range attacks.ToSquares() {
			moves = append(moves, NewMove(from, to, NormalFlag, NoPiece))
		}
	}
	return moves
}

func (p *Position) generatePawnMoves(moves []Move, targetMask Bitboard) []Move {
	turn := p.turn
	occ := p.Occupied()
	pawns := p.pieces[turn][Pawn]
	enemy := p.pieces[turn.Opponent()][NoPiece]

	promoRank := PawnPromotionRank(turn)

	for _, from := range pawns.ToSquares() {
		// Pushes.
		push := PawnMoveboard(occ, turn, BitMask(from))
		if push != 0 {
			to := push.LastPopSquare()
			if targetMask.IsSet(to) {
				moves = appendPawnMove(moves, from, to, promoRank)
			}
			if PawnHomeRank(turn).IsSet(from) {
				dbl := PawnMoveboard(occ, turn, push)
				if dbl != 0 {
					to2 := dbl.LastPopSquare()
					if targetMask.IsSet(to2) {
						moves = append(moves, NewMove(from, to2, NormalFlag, NoPiece))
					}
				}
			}
		}

		// Captures.
		caps := PawnAttackboardFrom(turn, from) & enemy & targetMask
		for _, to := range caps.ToSquares() {
			moves = appendPawnMove(moves, from, to, promoRank)
		}

		// En passant.
		if ep, ok := p.EnPassant(); ok {
			if PawnAttackboardFrom(turn, from).IsSet(ep) {
				if targetMask.IsSet(ep) || targetMask.IsSet(NewSquare(ep.File(), from.Rank())) {
					moves = append(moves, NewMove(from, ep, EnPassantFlag, NoPiece))
				}
			}
		}
	}
	return moves
}

func appendPawnMove(moves []Move, from, to Square, promoRank Bitboard) []Move {
	if promoRank.IsSet(to) {
		for _, promo := range PromotionKinds {
			moves = append(moves, NewMove(from, to, PromotionFlag, promo))
		}
		return moves
	}
	return append(moves, NewMove(from, to, NormalFlag, NoPiece))
}

func (p *Position) generateCastling(moves []Move) []Move {
	turn := p.turn
	occ := p.Occupied()
	opp := turn.Opponent()

	type right struct {
		mask            Castling
		kingFrom, rook  Square
		pathEmpty       Bitboard
		kingPathSquares []Square
	}

	var rights []right
	if turn == White {
		rights = []right{
			{WhiteKingSideCastle, E1, H1, BitMask(F1) | BitMask(G1), []Square{E1, F1, G1}},
			{WhiteQueenSideCastle, E1, A1, BitMask(B1) | BitMask(C1) | BitMask(D1), []Square{E1, D1, C1}},
		}
	} else {
		rights = []right{
			{BlackKingSideCastle, E8, H8, BitMask(F8) | BitMask(G8), []Square{E8, F8, G8}},
			{BlackQueenSideCastle, E8, A8, BitMask(B8) | BitMask(C8) | BitMask(D8), []Square{E8, D8, C8}},
		}
	}

	for _, r := range rights {
		if !p.castling.IsAllowed(r.mask) {
			continue
		}
		if occ&r.pathEmpty != 0 {
			continue
		}
		attacked := false
		for _, sq := range r.kingPathSquares {
			if p.IsAttacked(opp, sq) {
				attacked = true
				break
			}
		}
		if attacked {
			continue
		}
		moves = append(moves, NewMove(r.kingFrom, r.rook, CastlingFlag, NoPiece))
	}
	return moves
}

// generateQuietChecks generates non-capturing moves that give check: direct-attack
// destinations against the opponent king, castling when the rook's destination gives check,
// and pawn moves landing on pawn-attack or knight-underpromotion squares of the enemy king.
func (p *Position) generateQuietChecks(moves []Move) []Move {
	empty := ^p.Occupied()

	for _, m := range p.generateNonEvasions(nil) {
		if p.isCapture(m) {
			continue
		}
		if m.IsPromotion() && m.Promotion() != Knight {
			continue // of the promotions, only the knight can check quietly
		}
		if !empty.IsSet(m.To()) && !m.IsCastling() {
			continue
		}
		if p.GivesCheck(m) {
			moves = append(moves, m)
		}
	}
	return moves
}

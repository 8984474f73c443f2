// Package pgn writes a finished game to a single PGN game record: the seven-tag roster
// followed by movetext. It does not parse PGN -- only a console "save" debug command
// consumes it, and that never needs to read a third-party PGN corpus back in.
package pgn

import (
	"fmt"
	"strings"

	"github.com/wyvern-chess/wyvern/pkg/board"
)

// Tags holds the seven-tag roster every PGN game record requires, plus the computed
// Result tag that Encode fills in from the played game.
type Tags struct {
	Event, Site, Date, Round, White, Black string
}

func (t Tags) orDefault() Tags {
	if t.Event == "" {
		t.Event = "?"
	}
	if t.Site == "" {
		t.Site = "?"
	}
	if t.Date == "" {
		t.Date = "????.??.??"
	}
	if t.Round == "" {
		t.Round = "?"
	}
	if t.White == "" {
		t.White = "?"
	}
	if t.Black == "" {
		t.Black = "?"
	}
	return t
}

// Encode replays the moves recorded in a finished board.Board from the starting position
// implied by its first position and renders the game as a single PGN record: tag pairs
// followed by movetext with move numbers and a trailing result token.
func Encode(b *board.Board, tags Tags) string {
	tags = tags.orDefault()

	result := b.Result().Outcome.String()

	var sb strings.Builder
	writeTag(&sb, "Event", tags.Event)
	writeTag(&sb, "Site", tags.Site)
	writeTag(&sb, "Date", tags.Date)
	writeTag(&sb, "Round", tags.Round)
	writeTag(&sb, "White", tags.White)
	writeTag(&sb, "Black", tags.Black)
	writeTag(&sb, "Result", result)
	sb.WriteString("\n")

	sb.WriteString(movetext(b, result))
	return sb.String()
}

func writeTag(sb *strings.Builder, name, value string) {
	fmt.Fprintf(sb, "[%v \"%v\"]\n", name, value)
}

// movetext replays History() against a fresh board built from scratch so each move's SAN
// can be computed against the position it was actually played from.
func movetext(b *board.Board, result string) string {
	history := b.History()
	if len(history) == 0 {
		return result
	}

	replay := board.NewBoard(startingPosition(b, len(history)))

	var parts []string
	for i, m := range history {
		if i%2 == 0 {
			parts = append(parts, fmt.Sprintf("%v.", i/2+1))
		}
		parts = append(parts, san(replay.Position(), m))
		replay.PushMove(m)
	}
	parts = append(parts, result)

	return wrap(parts, 80)
}

// startingPosition reconstructs the position the game began from by undoing every played
// move on a fork, leaving b itself untouched.
func startingPosition(b *board.Board, numMoves int) *board.Position {
	replay := b.Fork()
	for i := 0; i < numMoves; i++ {
		replay.PopMove()
	}
	return replay.Position()
}

// san renders m in (simplified) standard algebraic notation against pos, the position it
// is played from. Disambiguates by file, then rank, then both, among same-kind pieces that
// can also reach the destination; does not append a check/checkmate suffix, since that
// requires looking at the position after the move, which the caller does not retain here.
func san(pos *board.Position, m board.Move) string {
	if m.IsCastling() {
		if m.To().File() > m.From().File() {
			return "O-O"
		}
		return "O-O-O"
	}

	_, piece, _ := pos.Square(m.From())
	capture := m.IsEnPassant() || !pos.IsEmpty(m.To())

	if piece == board.Pawn {
		var sb strings.Builder
		if capture {
			sb.WriteString(m.From().File().String())
			sb.WriteString("x")
		}
		sb.WriteString(m.To().String())
		if m.IsPromotion() {
			sb.WriteString("=")
			sb.WriteString(strings.ToUpper(m.Promotion().String()))
		}
		return sb.String()
	}

	var sb strings.Builder
	sb.WriteString(strings.ToUpper(piece.String()))
	sb.WriteString(disambiguate(pos, m, piece))
	if capture {
		sb.WriteString("x")
	}
	sb.WriteString(m.To().String())
	return sb.String()
}

func disambiguate(pos *board.Position, m board.Move, piece board.Piece) string {
	turn, _, _ := pos.Square(m.From())

	sameFile, sameRank, ambiguous := false, false, false
	for _, other := range pos.GenerateMoves(board.Legal, nil) {
		if other.Equals(m) || other.To() != m.To() {
			continue
		}
		c, pc, ok := pos.Square(other.From())
		if !ok || pc != piece || c != turn {
			continue
		}
		ambiguous = true
		if other.From().File() == m.From().File() {
			sameFile = true
		}
		if other.From().Rank() == m.From().Rank() {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return m.From().File().String()
	case !sameRank:
		return m.From().Rank().String()
	default:
		return m.From().String()
	}
}

// wrap joins movetext tokens with spaces, wrapping at roughly width characters per line as
// conventional PGN does.
func wrap(parts []string, width int) string {
	var lines []string
	var line strings.Builder

	for _, p := range parts {
		if line.Len() > 0 && line.Len()+1+len(p) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(p)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

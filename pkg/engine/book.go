package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wyvern-chess/wyvern/pkg/board"
	"github.com/wyvern-chess/wyvern/pkg/board/fen"
)

// Book represents an opening book.
type Book interface {
	// Find returns a list -- potentially empty -- of moves given a position. Once an empty
	// list is returned, the book should not be consulted again for the game.
	Find(ctx context.Context, fen string) ([]board.Move, error)
}

// Line represents an opening line: e2e4 d7d5.
type Line []string

func (l Line) String() string {
	return strings.Join(l, " ")
}

// NoBook is an empty opening book.
var NoBook Book = &book{moves: map[string][]board.Move{}}

// NewBook creates an opening book from a set of opening lines, each given in long-algebraic
// notation from the starting position. Lines are validated against the legal move generator
// as they are added: a line that plays through an illegal or ambiguous move is rejected.
func NewBook(lines []Line) (Book, error) {
	m := map[string]map[board.Move]bool{}
	for _, line := range lines {
		key := fen.Initial
		for _, str := range line {
			from, to, promotion, err := board.ParseMove(str)
			if err != nil {
				return nil, fmt.Errorf("invalid line '%v': %v", line, err)
			}

			pos, _, _, _, err := fen.Decode(key)
			if err != nil {
				return nil, fmt.Errorf("invalid line '%v': %v", line, err)
			}

			var candidate board.Move
			found := false
			for _, cm := range pos.GenerateMoves(board.Legal, nil) {
				if cm.From() == from && cm.To() == to && cm.Promotion() == promotion {
					candidate, found = cm, true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("invalid line '%v': move %v not found", line, str)
			}

			if m[fenKey(key)] == nil {
				m[fenKey(key)] = map[board.Move]bool{}
			}
			m[fenKey(key)][candidate] = true

			b := board.NewBoard(pos)
			if !b.PushMove(candidate) {
				return nil, fmt.Errorf("invalid line '%v': move %v not legal", line, candidate)
			}
			key = fen.Encode(b.Position(), b.Turn(), b.NoProgress(), b.FullMoves())
		}
	}

	dedup := map[string][]board.Move{}
	for k, v := range m {
		list := make([]board.Move, 0, len(v))
		for move := range v {
			list = append(list, move)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		dedup[k] = list
	}
	return &book{moves: dedup}, nil
}

type book struct {
	moves map[string][]board.Move // cropped fen -> []move
}

func (b *book) Find(ctx context.Context, fen string) ([]board.Move, error) {
	return b.moves[fenKey(fen)], nil
}

// fenKey crops a FEN string to the first four fields (position, side to move, castling
// rights, en passant), ignoring the halfmove/fullmove counters so a book line matches
// regardless of how it was reached.
func fenKey(pos string) string {
	parts := strings.Split(pos, " ")
	return strings.Join(parts[:4], " ")
}

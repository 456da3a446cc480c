package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
)

// Book represents an opening book: a set of known-good replies for a given
// position, consulted before the engine falls back to searching.
type Book interface {
	// Find returns a list -- potentially empty -- of moves for the position
	// given in FEN. Engine.Go consults the book before every search and
	// searches whenever the list is empty.
	Find(ctx context.Context, position string) ([]board.Move, error)
}

// Line is a sequence of moves in coordinate notation, e.g. "e2e4 e7e5".
type Line []string

func (l Line) String() string { return strings.Join(l, " ") }

// NoBook is an empty opening book, the default when no book is configured.
var NoBook Book = &book{moves: map[string][]board.Move{}}

// NewBook builds an opening book from a set of lines, replayed from the
// standard starting position to validate legality and to key each resulting
// position by its cropped FEN (placement, turn, castling, en passant only --
// halfmove/fullmove counters are excluded so transpositions share entries).
func NewBook(lines []Line) (Book, error) {
	seen := map[string]map[board.Move]bool{}

	for _, line := range lines {
		pos, err := fen.Parse(fen.StartPos, false)
		if err != nil {
			return nil, fmt.Errorf("book: %w", err)
		}
		key := cropKey(fen.Format(pos, 1))

		for _, token := range line {
			match, err := pos.ParseMove(token)
			if err != nil {
				return nil, fmt.Errorf("book: move %q not legal in line %q: %w", token, line, err)
			}

			if seen[key] == nil {
				seen[key] = map[board.Move]bool{}
			}
			seen[key][match] = true

			pos.DoMove(match, pos.GivesCheck(match))
			key = cropKey(fen.Format(pos, 1))
		}
	}

	out := map[string][]board.Move{}
	for key, set := range seen {
		var moves []board.Move
		for m := range set {
			moves = append(moves, m)
		}
		sort.Slice(moves, func(i, j int) bool { return moves[i] < moves[j] })
		out[key] = moves
	}
	return &book{moves: out}, nil
}

type book struct {
	moves map[string][]board.Move
}

func (b *book) Find(_ context.Context, position string) ([]board.Move, error) {
	return b.moves[cropKey(position)], nil
}

func cropKey(position string) string {
	parts := strings.Fields(position)
	if len(parts) < 4 {
		return position
	}
	return strings.Join(parts[:4], " ")
}

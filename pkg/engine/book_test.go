package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
	"github.com/umer-fa/morlock-don/pkg/engine"
)

func TestBook(t *testing.T) {
	ctx := context.Background()

	book, err := engine.NewBook([]engine.Line{
		{"e2e4", "d7d5", "d2d4"},
		{"e2e4", "d7d6"},
		{"d2d4", "d7d6"},
	})
	require.NoError(t, err)

	afterD4, err := fen.Parse(fen.StartPos, false)
	require.NoError(t, err)
	from, to, _, err := board.ParseCoordinateMove("d2d4")
	require.NoError(t, err)
	playLegal(t, afterD4, from, to)

	tests := []struct {
		name     string
		position string
		want     []string
	}{
		{"start position offers both e4 and d4", fen.StartPos, []string{"d2d4", "e2e4"}},
		{"after 1.d4 only d7d6 is booked", fen.Format(afterD4, 1), []string{"d7d6"}},
	}

	for _, tt := range tests {
		list, err := book.Find(ctx, tt.position)
		assert.NoError(t, err)
		assert.ElementsMatch(t, tt.want, stringify(list))
	}

	unbooked, err := fen.Parse("8/8/8/8/8/8/8/K6k w - - 0 1", false)
	require.NoError(t, err)
	list, err := book.Find(ctx, fen.Format(unbooked, 1))
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func playLegal(t *testing.T, pos *board.Position, from, to board.Square) {
	t.Helper()
	for _, m := range pos.GenerateLegal(nil) {
		if m.From() == from && m.To() == to {
			pos.DoMove(m, pos.GivesCheck(m))
			return
		}
	}
	t.Fatalf("no legal move %v-%v", from, to)
}

func stringify(moves []board.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}

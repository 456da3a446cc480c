package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
)

func TestSAN(t *testing.T) {
	tests := []struct {
		name     string
		position string
		move     string
		want     string
	}{
		{"pawn push", fen.StartPos, "e2e4", "e4"},
		{"knight development", fen.StartPos, "g1f3", "Nf3"},
		{
			"pawn capture includes origin file",
			"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2",
			"e4d5", "exd5",
		},
		{
			"kingside castle",
			"r1bqk2r/pppp1ppp/2n2n2/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4",
			"e1g1", "O-O",
		},
		{
			"promotion with capture",
			"rnbq1bnr/ppppkP1p/6p1/8/8/8/PPPP1PPP/RNBQKBNR w KQ - 1 5",
			"f7g8q", "fxg8=Q",
		},
		{
			"file disambiguation between knights",
			"4k3/8/8/8/8/8/8/N1N1K3 w - - 0 1",
			"a1b3", "Nab3",
		},
		{
			"checkmate suffix",
			"7k/8/6K1/8/8/8/8/R7 w - - 0 1",
			"a1a8", "Ra8#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := fen.Parse(tt.position, false)
			require.NoError(t, err)
			m, err := pos.ParseMove(tt.move)
			require.NoError(t, err)

			before := fen.Format(pos, 1)
			assert.Equal(t, tt.want, board.SAN(pos, m))
			assert.Equal(t, before, fen.Format(pos, 1), "SAN must leave the position untouched")
		})
	}
}

package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
)

// perft is the standard move-generator correctness check: count leaf nodes
// reachable in exactly depth plies. See https://www.chessprogramming.org/Perft_Results.
func perft(pos *board.Position, depth int) int64 {
	if depth == 0 {
		return 1
	}
	var nodes int64
	for _, m := range pos.GenerateLegal(nil) {
		pos.DoMove(m, pos.GivesCheck(m))
		nodes += perft(pos, depth-1)
		pos.UndoMove(m)
	}
	return nodes
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name     string
		position string
		chess960 bool
		counts   []int64 // counts[i] is perft(i+1)
	}{
		{
			name:     "startpos",
			position: fen.StartPos,
			counts:   []int64{20, 400, 8902, 197281, 4865609, 119060324},
		},
		{
			// Kiwipete: the standard stress position for castling, en
			// passant and promotion interactions.
			name:     "kiwipete",
			position: "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
			counts:   []int64{48, 2039, 97862, 4085603, 193690690},
		},
		{
			// Position 3: a rook-and-pawn endgame exercising en passant
			// discovered-check edge cases.
			name:     "endgame-ep",
			position: "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
			counts:   []int64{14, 191, 2812, 43238, 674624, 11030083},
		},
		{
			// Position 5: promotions and castling-rights loss by rook capture.
			name:     "promotions",
			position: "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
			counts:   []int64{44, 1486, 62379, 2103487},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := fen.Parse(tt.position, tt.chess960)
			require.NoError(t, err)

			for i, want := range tt.counts {
				got := perft(pos, i+1)
				assert.Equal(t, want, got, "perft(%d) from %v", i+1, tt.position)
			}
		})
	}
}

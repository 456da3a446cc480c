package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
)

// TestPseudoLegalAcceptsGeneratedMoves checks the contract the move picker
// relies on: every move the generator produces is pseudo-legal, in several
// positions covering castling, en passant, promotions and checks.
func TestPseudoLegalAcceptsGeneratedMoves(t *testing.T) {
	positions := []string{
		fen.StartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 b - - 0 1",
	}

	for _, position := range positions {
		pos, err := fen.Parse(position, false)
		require.NoError(t, err)

		for _, m := range pos.Generate(board.GenAll, nil) {
			assert.True(t, pos.PseudoLegal(m), "generated move %v must be pseudo-legal in %v", m, position)
		}
	}
}

// TestPseudoLegalRejectsArbitraryMoves sweeps every (from, to) pair: any
// move the generator does not produce must be rejected, the filter that
// protects the search from torn transposition-table reads.
func TestPseudoLegalRejectsArbitraryMoves(t *testing.T) {
	pos, err := fen.Parse("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", false)
	require.NoError(t, err)

	generated := map[board.Move]bool{}
	for _, m := range pos.Generate(board.GenAll, nil) {
		generated[m] = true
	}

	for from := board.ZeroSquare; from < board.NumSquares; from++ {
		for to := board.ZeroSquare; to < board.NumSquares; to++ {
			m := board.NewMove(from, to)
			if generated[m] {
				continue
			}
			assert.False(t, pos.PseudoLegal(m), "move %v is not generated and must not be pseudo-legal", m)
		}
	}
}

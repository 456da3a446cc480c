package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board/fen"
	"github.com/umer-fa/morlock-don/pkg/eval"
)

// TestEvaluateColorSymmetry checks that flipping a position (ranks
// reversed, piece colors and side to move swapped) negates the score as
// seen from White. Evaluate reports the side to move's view, so each result
// is turned to White's view before comparing.
func TestEvaluateColorSymmetry(t *testing.T) {
	positions := []string{
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"8/5k2/8/3R4/8/3r4/5K2/8 w - - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"2rq1rk1/pp1bppbp/3p1np1/8/3NP3/1BN1BP2/PPPQ2PP/2KR3R w - - 0 1",
	}

	for _, position := range positions {
		t.Run(position, func(t *testing.T) {
			pos, err := fen.Parse(position, false)
			require.NoError(t, err)
			flip, err := fen.Parse(fen.Flip(position), false)
			require.NoError(t, err)

			assert.Equal(t, eval.Evaluate(pos)*pos.Turn().Unit(), -eval.Evaluate(flip)*flip.Turn().Unit())
		})
	}
}

func TestEvaluateStartposIsNearZero(t *testing.T) {
	pos, err := fen.Parse(fen.StartPos, false)
	require.NoError(t, err)

	// The only asymmetry at the start position is the side-to-move tempo
	// bonus, so the score should be small in magnitude.
	assert.InDelta(t, 0, eval.Evaluate(pos), 50)
}

func TestEvaluatePrefersMaterial(t *testing.T) {
	up, err := fen.Parse("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKB1R b KQkq - 0 1", false)
	require.NoError(t, err)

	// Black to move, White missing a knight: the side to move is ahead.
	assert.Greater(t, eval.Evaluate(up), 200)
}

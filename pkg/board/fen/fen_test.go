package fen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board/fen"
)

func TestParseFormatRoundTrip(t *testing.T) {
	fens := []string{
		fen.StartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
	}

	for _, s := range fens {
		pos, err := fen.Parse(s, false)
		require.NoError(t, err)
		assert.Equal(t, s, fen.Format(pos, 1))
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",             // 7 ranks
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",    // bad color
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1",   // bad ep square
		"rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",   // 9 files
		"znbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",    // bad piece letter
		"rnbq1bnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQ1BNR w - - 0 1",       // missing kings
	}

	for _, s := range bad {
		_, err := fen.Parse(s, false)
		assert.Error(t, err, "FEN %q must be rejected", s)
	}
}

func TestFlipIsAnInvolution(t *testing.T) {
	fens := []string{
		fen.StartPos,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2",
		"8/5k2/8/3R4/8/3r4/5K2/8 w - - 0 1",
	}

	for _, s := range fens {
		flipped := fen.Flip(s)
		assert.NotEqual(t, s, flipped, "flipping must change the side to move at least")
		assert.Equal(t, s, fen.Flip(flipped), "flip is its own inverse for %v", s)

		_, err := fen.Parse(flipped, false)
		assert.NoError(t, err, "flipped FEN %q must stay parseable", flipped)
	}
}

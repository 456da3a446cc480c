package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
)

func findMove(t *testing.T, pos *board.Position, uci string) board.Move {
	t.Helper()
	from, to, promo, err := board.ParseCoordinateMove(uci)
	require.NoError(t, err)
	for _, m := range pos.GenerateLegal(nil) {
		if m.From() == from && m.To() == to && (m.Type() != board.Promote || m.PromotionType() == promo) {
			return m
		}
	}
	t.Fatalf("no legal move %v in %v", uci, fen.Format(pos, 1))
	return board.NoMove
}

func TestSEE(t *testing.T) {
	tests := []struct {
		name      string
		position  string
		move      string
		threshold int
		winning   bool
	}{
		{
			name:      "pawn takes undefended knight",
			position:  "4k3/8/8/3n4/4P3/8/8/4K3 w - - 0 1",
			move:      "e4d5",
			threshold: 0,
			winning:   true,
		},
		{
			name:      "rook takes pawn defended by rook loses the exchange",
			position:  "3rk3/8/8/3p4/8/8/8/3RK3 w - - 0 1",
			move:      "d1d5",
			threshold: 0,
			winning:   false,
		},
		{
			name:      "queen takes pawn defended by queen loses material",
			position:  "3qk3/8/8/3p4/8/8/8/3QK3 w - - 0 1",
			move:      "d1d5",
			threshold: 0,
			winning:   false,
		},
		{
			// The classic exchange-chain position: NxN, NxN, RxN, BxR, QxB
			// leaves White ahead, so the capture clears a zero threshold.
			name:      "knight takes knight with favorable exchange chain",
			position:  "1k1r4/1ppn3p/p4b2/4n3/8/P2N2P1/1PP1R1BP/2K1Q3 w - - 0 1",
			move:      "d3e5",
			threshold: 0,
			winning:   true,
		},
		{
			// Same chain with a black queen lurking on h8 behind the f6
			// bishop: the x-ray defender keeps the capture from clearing a
			// material-winning threshold.
			name:      "x-ray queen behind bishop caps the exchange gain",
			position:  "1k1r3q/1ppn3p/p4b2/4n3/8/P2N2P1/1PP1R1BP/2K1Q3 w - - 0 1",
			move:      "d3e5",
			threshold: 100,
			winning:   false,
		},
		{
			// Without the x-ray queen the same 100cp threshold is met.
			name:      "without the x-ray queen the threshold is met",
			position:  "1k1r4/1ppn3p/p4b2/4n3/8/P2N2P1/1PP1R1BP/2K1Q3 w - - 0 1",
			move:      "d3e5",
			threshold: 100,
			winning:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, err := fen.Parse(tt.position, false)
			require.NoError(t, err)

			m := findMove(t, pos, tt.move)
			assert.Equal(t, tt.winning, pos.SEE(m, tt.threshold))
		})
	}
}

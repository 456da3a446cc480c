package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
)

// TestZobristRoundTrip checks that Key is a pure function of position state:
// undoing a move restores the exact key it had before, and the
// incrementally-maintained key after a sequence of moves matches a
// from-scratch key computed by re-parsing the resulting FEN.
func TestZobristRoundTrip(t *testing.T) {
	pos, err := fen.Parse(fen.StartPos, false)
	require.NoError(t, err)
	start := pos.Key()

	moves := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6"}
	var played []board.Move
	for _, mv := range moves {
		from, to, _, err := board.ParseCoordinateMove(mv)
		require.NoError(t, err)

		var match board.Move
		found := false
		for _, cand := range pos.GenerateLegal(nil) {
			if cand.From() == from && cand.To() == to {
				match, found = cand, true
				break
			}
		}
		require.True(t, found, "move %v must be legal", mv)
		pos.DoMove(match, pos.GivesCheck(match))
		played = append(played, match)
	}

	replayed, err := fen.Parse(fen.Format(pos, 1), false)
	require.NoError(t, err)
	assert.Equal(t, replayed.Key(), pos.Key(), "key after moves must match a from-scratch parse of the resulting FEN")

	for i := len(played) - 1; i >= 0; i-- {
		pos.UndoMove(played[i])
	}
	assert.Equal(t, start, pos.Key(), "undoing every move must restore the original key")
}

func TestNullMoveRoundTrip(t *testing.T) {
	pos, err := fen.Parse(fen.StartPos, false)
	require.NoError(t, err)
	start := pos.Key()

	pos.DoNull()
	assert.NotEqual(t, start, pos.Key(), "a null move still flips the turn key")
	pos.UndoNull()
	assert.Equal(t, start, pos.Key())
}

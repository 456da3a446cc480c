package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
)

func TestMateInOne(t *testing.T) {
	// Lone black king cornered at h8: the white king on g6 covers g7/h7/g8,
	// and the rook checks along the whole 8th rank with no black piece left
	// to interpose, so Ra1-a8 is an unescapable, unblockable mate.
	pos, err := fen.Parse("7k/8/6K1/8/8/8/8/R7 w - - 0 1", false)
	require.NoError(t, err)

	var mate board.Move
	for _, m := range pos.GenerateLegal(nil) {
		if m.From() == board.A1 && m.To() == board.A8 {
			mate = m
		}
	}
	require.True(t, mate.IsValid(), "Ra8 must be a legal move")

	pos.DoMove(mate, pos.GivesCheck(mate))
	assert.True(t, pos.InCheck())
	assert.Empty(t, pos.GenerateLegal(nil), "black has no legal replies to Ra8#")
}

func TestStalemate(t *testing.T) {
	// Classic stalemate: black king in the corner, not in check, no legal moves.
	pos, err := fen.Parse("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", false)
	require.NoError(t, err)

	assert.False(t, pos.InCheck())
	assert.Empty(t, pos.GenerateLegal(nil))
}

func TestEnPassantPinnedDiscoveredCheck(t *testing.T) {
	// White king on e3, white pawn on e5, black rook on e8: a black pawn just
	// played ...d7-d5, and capturing en passant (exd6) would expose the white
	// king along the e-file. The capture must not be generated as legal.
	pos, err := fen.Parse("k3r3/8/8/3pP3/8/4K3/8/8 w - d6 0 1", false)
	require.NoError(t, err)

	for _, m := range pos.GenerateLegal(nil) {
		assert.NotEqual(t, board.EnPassant, m.Type(), "en passant must not be legal: exposes king to Re8")
	}
}

func TestRepetition(t *testing.T) {
	pos, err := fen.Parse(fen.StartPos, false)
	require.NoError(t, err)

	knightShuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8"}
	var played []board.Move
	for _, mv := range knightShuffle {
		from, to, _, err := board.ParseCoordinateMove(mv)
		require.NoError(t, err)

		var match board.Move
		for _, cand := range pos.GenerateLegal(nil) {
			if cand.From() == from && cand.To() == to {
				match = cand
				break
			}
		}
		require.True(t, match.IsValid(), "move %v must be legal", mv)
		pos.DoMove(match, pos.GivesCheck(match))
		played = append(played, match)
	}

	// The final position is the second recurrence, so it draws even when
	// judged from the game root (ply 0).
	assert.True(t, pos.Draw(0), "threefold repetition of the starting position must be a draw")

	for i := len(played) - 1; i >= 0; i-- {
		pos.UndoMove(played[i])
	}
	assert.Equal(t, fen.StartPos, fen.Format(pos, 1))
}

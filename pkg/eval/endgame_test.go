package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
)

func TestInsufficientMaterialIsDrawn(t *testing.T) {
	positions := []string{
		"8/8/4k3/8/8/3K4/8/8 w - - 0 1",       // KK
		"8/8/4k3/8/8/3KN3/8/8 w - - 0 1",      // KNK
		"8/8/4k3/8/8/3KB3/8/8 b - - 0 1",      // KBK
		"8/8/4k3/8/8/2NKN3/8/8 w - - 0 1",     // KNNK
		"8/3b4/4k3/8/8/3KN3/8/8 w - - 0 1",    // KNKB, no pawns
	}

	e := NewEvaluator()
	for _, position := range positions {
		pos, err := fen.Parse(position, false)
		require.NoError(t, err)
		assert.Equal(t, 0, e.Evaluate(pos), "bare-minor ending %v must evaluate as drawn", position)
	}
}

func TestKXKDrivesDefenderToTheCorner(t *testing.T) {
	e := NewEvaluator()

	center, err := fen.Parse("8/8/8/3k4/8/3K4/8/Q7 w - - 0 1", false)
	require.NoError(t, err)
	corner, err := fen.Parse("7k/8/8/8/8/3K4/8/1Q6 w - - 0 1", false)
	require.NoError(t, err)

	vCenter := e.Evaluate(center)
	vCorner := e.Evaluate(corner)

	assert.Greater(t, vCenter, 5000, "KQK is decisively winning")
	assert.Greater(t, vCorner, vCenter, "a cornered defender is closer to mate than a centralized one")
}

func TestKXKSignFollowsSideToMove(t *testing.T) {
	e := NewEvaluator()

	pos, err := fen.Parse("7k/8/8/8/8/3K4/8/Q7 b - - 0 1", false)
	require.NoError(t, err)
	assert.Less(t, e.Evaluate(pos), -5000, "from the lone king's view the position is lost")
}

func TestClassifyKXKRequiresMatingMaterial(t *testing.T) {
	pos, err := fen.Parse("8/8/4k3/8/8/3KN3/8/8 w - - 0 1", false)
	require.NoError(t, err)
	special, _ := classifyMaterial(pos)
	assert.Equal(t, specialDraw, special, "a lone knight cannot mate")

	pos, err = fen.Parse("8/8/4k3/8/8/3K4/8/R7 w - - 0 1", false)
	require.NoError(t, err)
	special, strong := classifyMaterial(pos)
	assert.Equal(t, specialKXK, special)
	assert.Equal(t, board.White, strong)
}

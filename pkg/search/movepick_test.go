package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
	"github.com/umer-fa/morlock-don/pkg/tt"
)

func newTestWorker(t *testing.T, position string) *Worker {
	t.Helper()
	pos, err := fen.Parse(position, false)
	require.NoError(t, err)
	return NewWorker(0, pos, NewSharedState(tt.NewTable(1)))
}

func drain(p *Picker) []board.Move {
	var out []board.Move
	for m := p.Next(); m != board.NoMove; m = p.Next() {
		out = append(out, m)
	}
	return out
}

func TestPickerEmitsTTMoveFirst(t *testing.T) {
	w := newTestWorker(t, fen.StartPos)
	ttMove, err := w.Pos.ParseMove("d2d4")
	require.NoError(t, err)

	p := w.NewPicker(w.Pos, ttMove, 0, 4)
	moves := drain(p)

	require.NotEmpty(t, moves)
	assert.Equal(t, ttMove, moves[0])
	assert.Equal(t, 1, countOf(moves, ttMove), "the TT move must not be emitted twice")
	assert.Len(t, moves, 20, "every legal opening move appears exactly once")
}

func TestPickerYieldsWinningCapturesBeforeQuiets(t *testing.T) {
	// The e4-pawn can take the queen on d5; every quiet move must come
	// after it.
	w := newTestWorker(t, "rnb1kbnr/ppp1pppp/8/3q4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 3")

	p := w.NewPicker(w.Pos, board.NoMove, 0, 4)
	moves := drain(p)
	require.NotEmpty(t, moves)

	capture, err := w.Pos.ParseMove("e4d5")
	require.NoError(t, err)
	assert.Equal(t, capture, moves[0], "the queen capture is the clear first candidate")
}

func TestPickerDefersLosingCapturesToTheEnd(t *testing.T) {
	// Rook takes a pawn defended by a rook: SEE-losing, so it must come
	// after the quiet moves.
	w := newTestWorker(t, "3rk3/8/8/3p4/8/8/8/3RK3 w - - 0 1")

	losing, err := w.Pos.ParseMove("d1d5")
	require.NoError(t, err)

	p := w.NewPicker(w.Pos, board.NoMove, 0, 4)
	moves := drain(p)
	require.NotEmpty(t, moves)

	idx := indexOf(moves, losing)
	require.GreaterOrEqual(t, idx, 0, "the losing capture is still emitted")
	for _, m := range moves[idx+1:] {
		assert.True(t, isCapture(w.Pos, m) || m == losing,
			"no quiet move may follow the SEE-losing capture, got %v", m)
	}
}

func TestPickerEvasionsWhenInCheck(t *testing.T) {
	// White king on e1 checked by the rook on e8: every yielded move must
	// be a legal check evasion.
	w := newTestWorker(t, "4r2k/8/8/8/8/8/3P1P2/4K3 w - - 0 1")
	require.True(t, w.Pos.InCheck())

	p := w.NewPicker(w.Pos, board.NoMove, 0, 4)
	moves := drain(p)
	require.NotEmpty(t, moves)

	legal := w.Pos.GenerateLegal(nil)
	for _, m := range moves {
		if w.Pos.Legal(m) {
			assert.True(t, containsMove(legal, m))
		}
	}
}

func TestProbCutPickerOnlyYieldsThresholdCaptures(t *testing.T) {
	w := newTestWorker(t, "rnb1kbnr/ppp1pppp/8/3q4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 3")

	p := w.NewProbCutPicker(w.Pos, board.NoMove, 0, 500)
	for m := p.Next(); m != board.NoMove; m = p.Next() {
		assert.True(t, isCapture(w.Pos, m))
		assert.True(t, w.Pos.SEE(m, 500), "%v must clear the ProbCut threshold", m)
	}
}

func countOf(moves []board.Move, m board.Move) int {
	n := 0
	for _, c := range moves {
		if c == m {
			n++
		}
	}
	return n
}

func indexOf(moves []board.Move, m board.Move) int {
	for i, c := range moves {
		if c == m {
			return i
		}
	}
	return -1
}

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/search"
)

func TestTimeManagerMoveTime(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(search.Limits{MoveTime: 1000}, board.White, 0, 50)

	assert.Equal(t, 950*time.Millisecond, tm.Optimum())
	assert.Equal(t, tm.Optimum(), tm.Maximum())
}

func TestTimeManagerSuddenDeath(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(search.Limits{WhiteTime: 60_000, WhiteInc: 1000}, board.White, 20, 50)

	assert.Greater(t, tm.Optimum(), time.Duration(0))
	assert.GreaterOrEqual(t, tm.Maximum(), tm.Optimum(),
		"the hard ceiling is never below the optimum")
	assert.Less(t, tm.Maximum(), 60*time.Second,
		"a single move never gets the whole clock")
}

func TestTimeManagerMovesToGoUsesMoreTimePerMove(t *testing.T) {
	few := NewTimeManager()
	few.Init(search.Limits{WhiteTime: 60_000, MovesToGo: 5}, board.White, 40, 50)

	many := NewTimeManager()
	many.Init(search.Limits{WhiteTime: 60_000, MovesToGo: 40}, board.White, 40, 50)

	assert.Greater(t, few.Optimum(), many.Optimum(),
		"fewer moves to the time control means more time per move")
}

func TestTimeManagerNoClockMeansNoLimit(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(search.Limits{Depth: 10}, board.Black, 0, 50)

	assert.Equal(t, time.Duration(0), tm.Maximum())
	assert.False(t, tm.ShouldStop(false))
}

func TestMoveImportanceDecreasesWithPly(t *testing.T) {
	assert.Greater(t, moveImportance(20), moveImportance(100))
	assert.Greater(t, moveImportance(200), 0.0, "importance never reaches zero")
}

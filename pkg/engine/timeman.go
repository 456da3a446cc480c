package engine

import (
	"math"
	"time"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/search"
)

// TimeManager converts UCI "go" time controls into an optimum (the time we
// would like to spend on this move) and a maximum (a hard ceiling) budget.
//
// The allocation distributes the remaining clock over every hypothetical
// number of moves left in the game, weighting the current move by a
// logistic "importance" curve over game ply, and takes the most pessimistic
// answer. The optimum variant gives the current move no extra weight; the
// maximum variant lets it claim a large step of the remaining time plus a
// fraction stolen from future moves.
type TimeManager struct {
	start            time.Time
	optimum, maximum time.Duration
}

const (
	moveHorizon     = 50 // never plan further ahead than this many moves
	maxStepRatio    = 7.09
	maxStealRatio   = 0.35
	minThinkingTime = 20 * time.Millisecond
)

// moveImportance weights a move by game ply: early middlegame moves matter
// most, and the curve flattens to a small positive floor so late moves are
// never starved entirely.
func moveImportance(ply int) float64 {
	const (
		xShift = 58.4
		xScale = 7.64
		skew   = 0.183
	)
	w := math.Pow(1+math.Exp((float64(ply)-xShift)/xScale), -skew)
	return math.Max(w, 1e-9)
}

// remaining computes the slice of myTime to use now, assuming movesToGo
// moves remain from game ply onward. stepRatio/stealRatio distinguish the
// optimum (1.0 / 0.0) and maximum (7.09 / 0.35) variants.
func remaining(myTime time.Duration, movesToGo, ply int, stepRatio, stealRatio float64) time.Duration {
	thisMove := moveImportance(ply)
	otherMoves := 0.0
	for i := 1; i < movesToGo; i++ {
		otherMoves += moveImportance(ply + 2*i)
	}

	ratio1 := stepRatio * thisMove / (stepRatio*thisMove + otherMoves)
	ratio2 := (thisMove + stealRatio*otherMoves) / (thisMove + otherMoves)

	return time.Duration(float64(myTime) * math.Min(ratio1, ratio2))
}

func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init computes optimum/maximum from limits for the side to move us, whose
// game has been going on for ply half-moves. A zero result for both budgets
// means "no time-based limit" (depth/nodes/infinite searches).
func (tm *TimeManager) Init(limits search.Limits, us board.Color, ply int, overheadMs int) {
	tm.start = time.Now()
	overhead := time.Duration(overheadMs) * time.Millisecond

	if limits.MoveTime > 0 {
		budget := time.Duration(limits.MoveTime)*time.Millisecond - overhead
		if budget < time.Millisecond {
			budget = time.Millisecond
		}
		tm.optimum, tm.maximum = budget, budget
		return
	}

	var myTime, myInc int64
	if us == board.White {
		myTime, myInc = limits.WhiteTime, limits.WhiteInc
	} else {
		myTime, myInc = limits.BlackTime, limits.BlackInc
	}
	if myTime == 0 {
		tm.optimum, tm.maximum = 0, 0
		return
	}

	maxMTG := moveHorizon
	if limits.MovesToGo > 0 && limits.MovesToGo < moveHorizon {
		maxMTG = limits.MovesToGo
	}

	total := time.Duration(myTime) * time.Millisecond
	inc := time.Duration(myInc) * time.Millisecond

	optimum := total
	maximum := total
	for hypMTG := 1; hypMTG <= maxMTG; hypMTG++ {
		hypTime := total + inc*time.Duration(hypMTG-1) - overhead*time.Duration(2+min(hypMTG, 40))
		if hypTime < 0 {
			hypTime = 0
		}

		t1 := minThinkingTime + remaining(hypTime, hypMTG, ply, 1.0, 0.0)
		t2 := minThinkingTime + remaining(hypTime, hypMTG, ply, maxStepRatio, maxStealRatio)
		if t1 < optimum {
			optimum = t1
		}
		if t2 < maximum {
			maximum = t2
		}
	}

	if maximum < optimum {
		maximum = optimum
	}
	tm.optimum, tm.maximum = optimum, maximum
}

// Elapsed returns wall-clock time spent since Init.
func (tm *TimeManager) Elapsed() time.Duration { return time.Since(tm.start) }

// Optimum/Maximum expose the computed budget; zero means "no time-based limit".
func (tm *TimeManager) Optimum() time.Duration { return tm.optimum }
func (tm *TimeManager) Maximum() time.Duration { return tm.maximum }

// ShouldStop reports whether the search should be abandoned given the time
// spent so far. An unstable search (the best move keeps flipping between
// iterations) is granted the maximum rather than the optimum budget.
func (tm *TimeManager) ShouldStop(unstable bool) bool {
	if tm.maximum == 0 {
		return false
	}
	budget := tm.optimum
	if unstable {
		budget = tm.maximum
	}
	return tm.Elapsed() >= budget
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

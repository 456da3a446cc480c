// Package report formats search progress as UCI "info" lines, separating
// that formatting concern from both the search core (which only knows about
// search.PV) and the protocol driver (which only knows about I/O).
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/search"
)

// Info formats one "info" line for a completed iterative-deepening
// iteration, following the UCI fields: depth, seldepth, score (cp or mate),
// nodes, nps, time and pv.
func Info(pv search.PV, elapsed time.Duration) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d", pv.Depth)
	if pv.SelDepth > 0 {
		fmt.Fprintf(&sb, " seldepth %d", pv.SelDepth)
	}
	if pv.MultiPVIndex > 1 {
		fmt.Fprintf(&sb, " multipv %d", pv.MultiPVIndex)
	}
	fmt.Fprintf(&sb, " score %s", scoreToken(pv.Score))

	ms := elapsed.Milliseconds()
	fmt.Fprintf(&sb, " nodes %d time %d", pv.Nodes, ms)
	if ms > 0 {
		nps := pv.Nodes * 1000 / uint64(ms)
		fmt.Fprintf(&sb, " nps %d", nps)
	}
	if pv.HashFull > 0 {
		fmt.Fprintf(&sb, " hashfull %d", pv.HashFull)
	}
	if len(pv.Moves) > 0 {
		sb.WriteString(" pv")
		for _, m := range pv.Moves {
			sb.WriteByte(' ')
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}

func scoreToken(cp int) string {
	if search.IsMateScore(cp) {
		mateIn := search.MateScore - abs(cp)
		if cp < 0 {
			mateIn = -mateIn
		}
		return fmt.Sprintf("mate %d", (mateIn+1)/2)
	}
	return fmt.Sprintf("cp %d", cp)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// BestMove formats the final "bestmove" line, including a ponder move when
// the PV is at least two moves deep.
func BestMove(pv search.PV, chess960 bool) string {
	if len(pv.Moves) == 0 {
		return "bestmove 0000"
	}
	s := fmt.Sprintf("bestmove %s", board.FormatMove(pv.Moves[0], chess960))
	if len(pv.Moves) > 1 {
		s += fmt.Sprintf(" ponder %s", board.FormatMove(pv.Moves[1], chess960))
	}
	return s
}

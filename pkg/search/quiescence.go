package search

import (
	"context"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/tt"
)

// qsFutilityMargin pads the stand-pat + captured-piece bound used to skip
// futile captures.
const qsFutilityMargin = 150

// quiescence extends the search along capture/evasion sequences only, until
// a quiet position is reached, avoiding the horizon effect at the leaves of
// the main search. depth is <= 0 and only distinguishes the transposition
// depth (0 for the first quiescence ply or while in check, -1 below), the
// quiet checks the picker adds at depth 0, and the recapture-only
// restriction far from the horizon.
func (w *Worker) quiescence(ctx context.Context, depth, alpha, beta, ply int) int {
	pos := w.Pos
	ss := &w.stack[ply]
	ss.PV = nil

	if ply > w.selDepth {
		w.selDepth = ply
	}

	w.checkLimits(ctx)
	if w.shared.Stop.Load() {
		return 0
	}

	if pos.Draw(ply) || pos.Cycled(ply) {
		return 0
	}
	inCheck := pos.InCheck()
	if ply >= MaxPly {
		if inCheck {
			return 0
		}
		return w.Eval(pos)
	}

	ttDepth := -1
	if inCheck || depth >= 0 {
		ttDepth = 0
	}

	key := pos.Key()
	entry, ttHit := w.shared.TT.Probe(key)
	var ttMove board.Move
	if ttHit {
		ttMove = entry.Move
		if ttMove != board.NoMove && (!pos.PseudoLegal(ttMove) || !pos.Legal(ttMove)) {
			ttMove = board.NoMove
		}
		ttValue := valueFromTT(int(entry.Score), ply)
		if int(entry.Depth) >= ttDepth && ttCutoff(entry.Bound, ttValue, alpha, beta) {
			return ttValue
		}
	}

	best := -Infinite
	staticEval := 0
	if !inCheck {
		if ttHit && entry.Eval != 0 {
			staticEval = int(entry.Eval)
		} else {
			staticEval = w.Eval(pos)
		}
		best = staticEval
		if best >= beta {
			if !ttHit {
				w.shared.TT.Store(key, board.NoMove, valueToTT(best, ply), int16(staticEval), int8(ttDepth), tt.BoundLower, false)
			}
			return best
		}
		if best > alpha {
			alpha = best
		}
	}
	ss.StaticEval = staticEval

	// Far below the horizon, restrict generation to recaptures on the
	// square the previous capture landed on.
	recapture := board.NoSquare
	if !inCheck && depth <= -3 && ply > 0 && w.stack[ply-1].Capture {
		recapture = w.stack[ply-1].ContTo
	}

	pk := w.NewQuiescencePicker(pos, ttMove, ply, depth, recapture)

	moveCount := 0
	var bestMove board.Move

	for m := pk.Next(); m != board.NoMove; m = pk.Next() {
		if !pos.Legal(m) {
			continue
		}
		moveCount++
		givesCheck := pos.GivesCheck(m)

		if !inCheck && !givesCheck {
			// Futility: if even winning the victim outright cannot reach
			// alpha, the capture is pointless.
			if m.Type() != board.Promote &&
				staticEval+capturedValueEG(pos, m)+qsFutilityMargin <= alpha {
				continue
			}
			if !pos.SEE(m, 0) {
				continue
			}
		}

		ss.Move = m
		ss.Capture = isCapture(pos, m)
		ss.ContPiece = pos.PieceOn(m.From())
		ss.ContTo = m.To()
		ss.ContHist = &w.contHist[ss.ContPiece][m.To()]

		pos.DoMove(m, givesCheck)
		w.shared.Nodes.Inc()
		score := -w.quiescence(ctx, depth-1, -beta, -alpha, ply+1)
		pos.UndoMove(m)

		if score > best {
			best = score
			if score > alpha {
				bestMove = m
				ss.PV = append([]board.Move{m}, w.stack[ply+1].PV...)
				if score < beta {
					alpha = score
				} else {
					break
				}
			}
		}
	}

	if inCheck && moveCount == 0 {
		return MatedIn(ply)
	}

	bound := tt.BoundUpper
	if best >= beta {
		bound = tt.BoundLower
	}
	w.shared.TT.Store(key, bestMove, valueToTT(best, ply), int16(staticEval), int8(ttDepth), bound, false)

	return best
}

// capturedValueEG is the endgame value of the piece m captures (a pawn for
// en passant, nothing for a plain push that merely gives check).
func capturedValueEG(pos *board.Position, m board.Move) int {
	if m.Type() == board.EnPassant {
		return int(board.NominalValue[board.Pawn].EG)
	}
	if cap := pos.PieceOn(m.To()); cap != board.NoPiece {
		_, pt, _ := cap.Split()
		return int(board.NominalValue[pt].EG)
	}
	return 0
}

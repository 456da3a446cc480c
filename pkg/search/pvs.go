package search

import (
	"context"
	"math"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/tt"
)

// lmrTable[depth][moveCount] is the base late-move-reduction amount in
// plies, built once at init following the classical log(depth)*log(mc)
// shape so reductions grow gently with both depth and move index.
var lmrTable [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrTable[d][m] = int(0.2 + math.Log(float64(d))*math.Log(float64(m))/2.1)
		}
	}
}

// futilityMoveCount bounds how many quiets are worth trying at shallow
// depth before the rest are skipped outright.
func futilityMoveCount(depth int, improving bool) int {
	if improving {
		return 5 + depth*depth
	}
	return (5 + depth*depth) / 2
}

const (
	razorMarginPerDepth    = 150
	futilityMarginPerDepth = 85
	probCutMargin          = 200
)

// pvSearch is the negamax recursion. isPV selects a full versus null window;
// cutNode marks nodes expected to fail high, which are reduced more
// aggressively. ply is the distance from the search root.
func (w *Worker) pvSearch(ctx context.Context, depth, alpha, beta, ply int, isPV, cutNode bool) int {
	if depth <= 0 {
		return w.quiescence(ctx, depth, alpha, beta, ply)
	}

	pos := w.Pos
	ss := &w.stack[ply]
	ss.PV = nil
	ss.MoveCount = 0

	if ply > w.selDepth {
		w.selDepth = ply
	}

	w.checkLimits(ctx)
	if w.shared.Stop.Load() {
		return 0
	}
	if ply >= MaxPly {
		if pos.InCheck() {
			return 0
		}
		return w.Eval(pos)
	}

	if pos.Draw(ply) || pos.Cycled(ply) {
		return 0
	}

	// Mate-distance pruning: no line can beat being mated next ply or
	// deliver mate faster than this ply, so tighten the window accordingly.
	alpha = max(alpha, MatedIn(ply))
	beta = min(beta, MateIn(ply+1))
	if alpha >= beta {
		return alpha
	}

	inCheck := pos.InCheck()
	excluded := ss.Excluded

	key := pos.Key()
	var ttEntry tt.Entry
	var ttHit bool
	var ttMove board.Move
	ttValue := -Infinite
	if excluded == board.NoMove {
		ttEntry, ttHit = w.shared.TT.Probe(key)
		if ttHit {
			ttValue = valueFromTT(int(ttEntry.Score), ply)
			ttMove = ttEntry.Move
			// A torn or aliased entry can carry an arbitrary 16-bit move;
			// only a pseudo-legal, legal move is worth anything here.
			if ttMove != board.NoMove && (!pos.PseudoLegal(ttMove) || !pos.Legal(ttMove)) {
				ttMove = board.NoMove
			}
		}
	}

	if !isPV && ttHit && int(ttEntry.Depth) >= depth && ttCutoff(ttEntry.Bound, ttValue, alpha, beta) {
		// The cutoff tells us how good the stored quiet move really was;
		// feed that back into the ordering heuristics on the way out.
		if ttMove != board.NoMove && !isCapture(pos, ttMove) {
			if ttValue >= beta {
				w.updateQuietStats(pos, ply, ttMove, statBonus(depth))
			} else {
				w.addHistory(pos.Turn(), ttMove.From(), ttMove.To(), -statBonus(depth))
			}
		}
		return ttValue
	}

	staticEval := 0
	improving := false
	if !inCheck {
		if ttHit && ttEntry.Eval != 0 {
			staticEval = int(ttEntry.Eval)
		} else {
			staticEval = w.Eval(pos)
		}
		ss.StaticEval = staticEval
		improving = ply < 2 || staticEval > w.stack[ply-2].StaticEval
	} else {
		ss.StaticEval = 0
	}

	// Razoring: a static eval far below alpha with little depth left can
	// only be saved by tactics quiescence search would already find.
	if !isPV && !inCheck && depth <= 3 && staticEval+razorMarginPerDepth*depth < alpha {
		q := w.quiescence(ctx, 0, alpha-1, alpha, ply)
		if q < alpha {
			return q
		}
	}

	// Futility pruning: deep enough into a winning-looking quiet node, skip
	// the remaining search and trust the static margin.
	if !isPV && !inCheck && depth <= 6 &&
		staticEval-futilityMarginPerDepth*(depth-b2i(improving)) >= beta &&
		staticEval < MateScore-MaxPly {
		return staticEval
	}

	// Null-move pruning: if skipping our move still fails high, this
	// position is so good a single tempo is unlikely to matter.
	if !isPV && !inCheck && excluded == board.NoMove &&
		(ply == 0 || w.stack[ply-1].Move != board.NullMove) &&
		staticEval >= beta && pos.NonPawnMaterial(pos.Turn()) > 0 &&
		(w.nmpMinPly == 0 || ply >= w.nmpMinPly) {
		r := (67*depth+823)/256 + min((staticEval-beta)/int(board.NominalValue[board.Pawn].MG), 3)

		ss.Move = board.NullMove
		ss.ContPiece = board.NoPiece
		ss.ContHist = nil
		ss.Capture = false
		pos.DoNull()
		score := -w.pvSearch(ctx, depth-r, -beta, -beta+1, ply+1, false, !cutNode)
		pos.UndoNull()

		if score >= beta {
			if IsMateScore(score) {
				score = beta
			}
			if depth < 12 || w.nmpMinPly != 0 {
				return score
			}
			// Deep null cutoffs get a verification search with null moves
			// disabled over the first part of the remaining tree.
			w.nmpMinPly = ply + 3*(depth-r)/4
			v := w.pvSearch(ctx, depth-r, beta-1, beta, ply, false, false)
			w.nmpMinPly = 0
			if v >= beta {
				return score
			}
		}
	}

	// ProbCut: a capture that already beats beta by a margin at shallow
	// depth almost certainly beats it at full depth too.
	if !isPV && depth > 4 && excluded == board.NoMove && !IsMateScore(beta) {
		raised := beta + probCutMargin
		pk := w.NewProbCutPicker(pos, ttMove, ply, raised-staticEval)
		for m := pk.Next(); m != board.NoMove; m = pk.Next() {
			if !pos.Legal(m) {
				continue
			}
			givesCheck := pos.GivesCheck(m)
			ss.Move = m
			ss.Capture = true
			ss.ContPiece = pos.PieceOn(m.From())
			ss.ContTo = m.To()
			ss.ContHist = &w.contHist[ss.ContPiece][m.To()]

			pos.DoMove(m, givesCheck)
			w.shared.Nodes.Inc()
			v := -w.quiescence(ctx, 0, -raised, -raised+1, ply+1)
			if v >= raised {
				v = -w.pvSearch(ctx, depth-4, -raised, -raised+1, ply+1, false, !cutNode)
			}
			pos.UndoMove(m)
			if v >= raised {
				return v
			}
		}
	}

	// Internal iterative deepening: a node this deep with no stored move is
	// worth a cheap preliminary search just to seed the ordering.
	if ttMove == board.NoMove && depth >= 7 && (isPV || staticEval+128 >= beta) {
		w.pvSearch(ctx, depth-7, alpha, beta, ply, isPV, cutNode)
		ss.PV = nil
		ss.MoveCount = 0
		if e, ok := w.shared.TT.Probe(key); ok {
			ttMove = e.Move
			if ttMove != board.NoMove && (!pos.PseudoLegal(ttMove) || !pos.Legal(ttMove)) {
				ttMove = board.NoMove
			}
		}
	}

	pk := w.NewPicker(pos, ttMove, ply, depth)

	best := -Infinite
	var bestMove board.Move
	moveCount := 0
	var quietsTried []board.Move

	for m := pk.Next(); m != board.NoMove; m = pk.Next() {
		if m == excluded {
			continue
		}
		if !pos.Legal(m) {
			continue
		}
		moveCount++
		ss.MoveCount = moveCount

		givesCheck := pos.GivesCheck(m)
		capture := isCapture(pos, m)
		quiet := !capture && m.Type() != board.Promote
		movingPiece := pos.PieceOn(m.From())
		histScore := int32(0)
		if quiet {
			histScore = w.quietScore(pos, m, ply)
		}

		// Shallow-depth pruning, once at least one move has been searched.
		if best > -MateScore+MaxPly && pos.NonPawnMaterial(pos.Turn()) > 0 {
			if quiet && !givesCheck {
				if moveCount >= futilityMoveCount(depth, improving) {
					continue
				}
				lmrDepth := max(depth-lmrTable[min(depth, 63)][min(moveCount, 63)], 0)
				if depth <= 4 && w.contHistNegative(ply, movingPiece, m.To()) {
					continue
				}
				if !inCheck && lmrDepth <= 6 && staticEval+120+130*lmrDepth <= alpha {
					continue
				}
				if !pos.SEE(m, -20*lmrDepth*lmrDepth) {
					continue
				}
			} else if depth <= 6 && !pos.SEE(m, -200*depth) {
				continue
			}
		}

		extension := 0
		switch {
		case m == ttMove && excluded == board.NoMove && depth >= 8 && ttHit &&
			!IsMateScore(ttValue) && int(ttEntry.Depth) >= depth-3 &&
			(ttEntry.Bound == tt.BoundLower || ttEntry.Bound == tt.BoundExact):
			// Singular extension: if every sibling fails well below the
			// stored value, the TT move is the position's only try and
			// deserves an extra ply.
			singularBeta := ttValue - 2*depth
			ss.Excluded = m
			v := w.pvSearch(ctx, (depth-1)/2, singularBeta-1, singularBeta, ply, false, cutNode)
			ss.Excluded = board.NoMove
			ss.PV = nil
			ss.MoveCount = moveCount
			if v < singularBeta {
				extension = 1
			} else if singularBeta >= beta {
				// Multi-cut: even with the best move excluded this node
				// fails high, so it will with it included too.
				return singularBeta
			}

		case givesCheck && pos.SEE(m, 0):
			extension = 1
		}

		ss.Move = m
		ss.Capture = capture
		ss.ContPiece = movingPiece
		ss.ContTo = m.To()
		ss.ContHist = &w.contHist[movingPiece][m.To()]

		pos.DoMove(m, givesCheck)
		w.shared.Nodes.Inc()

		newDepth := depth - 1 + extension

		var score int
		if moveCount == 1 {
			score = -w.pvSearch(ctx, newDepth, -beta, -alpha, ply+1, isPV, false)
		} else {
			r := 0
			if depth >= 3 && moveCount >= 3 && quiet && !inCheck {
				r = lmrTable[min(depth, 63)][min(moveCount, 63)]
				if cutNode {
					r += 2
				}
				if isPV {
					r--
				}
				// A move that steps out of a capture (moving back would
				// lose material) is less likely to be bad.
				if m.Type() == board.Simple && !pos.SEE(board.NewMove(m.To(), m.From()), 0) {
					r--
				}
				if histScore > 0 {
					r--
				} else if histScore < 0 {
					r++
				}
				r -= int(histScore / 20000)
				if r < 0 {
					r = 0
				}
				if r > newDepth-1 {
					r = newDepth - 1
				}
			}
			score = -w.pvSearch(ctx, newDepth-r, -alpha-1, -alpha, ply+1, false, true)
			if score > alpha && r > 0 {
				score = -w.pvSearch(ctx, newDepth, -alpha-1, -alpha, ply+1, false, !cutNode)
			}
			if isPV && score > alpha && score < beta {
				score = -w.pvSearch(ctx, newDepth, -beta, -alpha, ply+1, true, false)
			}
		}
		pos.UndoMove(m)

		if w.shared.Stop.Load() {
			return 0
		}

		if score > best {
			best = score
			if score > alpha {
				bestMove = m
				if isPV {
					ss.PV = append([]board.Move{m}, w.stack[ply+1].PV...)
				}
				if score < beta {
					alpha = score
				} else {
					break
				}
			}
		}
		if quiet && m != bestMove && len(quietsTried) < 64 {
			quietsTried = append(quietsTried, m)
		}
	}

	if moveCount == 0 {
		if excluded != board.NoMove {
			return alpha
		}
		if inCheck {
			return MatedIn(ply)
		}
		return 0
	}

	if best >= beta && bestMove != board.NoMove && !isCapture(pos, bestMove) && bestMove.Type() != board.Promote {
		bonus := statBonus(depth)
		w.updateQuietStats(pos, ply, bestMove, bonus)
		for _, q := range quietsTried {
			w.addHistory(pos.Turn(), q.From(), q.To(), -bonus)
			w.updateContHistories(ply, pos.PieceOn(q.From()), q.To(), -bonus)
		}
	} else if bestMove == board.NoMove && depth >= 3 && ply > 0 {
		// Fail low: the previous move refuted everything we had, so give
		// its continuation entry a nudge.
		if prev := &w.stack[ply-1]; !prev.Capture && prev.ContPiece != board.NoPiece {
			w.updateContHistories(ply-1, prev.ContPiece, prev.ContTo, statBonus(depth))
		}
	}

	if excluded == board.NoMove {
		bound := tt.BoundUpper
		if best >= beta {
			bound = tt.BoundLower
		} else if isPV && bestMove != board.NoMove {
			bound = tt.BoundExact
		}
		w.shared.TT.Store(key, bestMove, valueToTT(best, ply), int16(ss.StaticEval), int8(min(depth, 127)), bound, isPV)
	}

	return best
}

// contHistNegative reports whether both recent continuation histories score
// (pc, to) below zero, the counter-move-history pruning condition.
func (w *Worker) contHistNegative(ply int, pc board.Piece, to board.Square) bool {
	for _, back := range [2]int{1, 2} {
		if ply < back {
			return false
		}
		prev := &w.stack[ply-back]
		if prev.ContHist == nil || prev.ContHist[pc][to] >= 0 {
			return false
		}
	}
	return true
}

func ttCutoff(bound tt.Bound, value, alpha, beta int) bool {
	switch bound {
	case tt.BoundExact:
		return true
	case tt.BoundLower:
		return value >= beta
	case tt.BoundUpper:
		return value <= alpha
	default:
		return false
	}
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}

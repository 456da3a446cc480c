// Package search implements the alpha-beta/PVS search core: iterative
// deepening with aspiration windows, quiescence search, the standard
// pruning/extension/reduction family (null move, futility, razoring, late
// move reductions, singular/check extensions, ProbCut), and staged move
// ordering backed by history/killer/counter-move/continuation heuristics.
// A Worker owns one goroutine's worth of search state; pkg/engine
// coordinates a pool of them.
package search

import (
	"context"
	"sort"

	"go.uber.org/atomic"

	"github.com/seekerror/stdlib/pkg/util/contextx"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/eval"
	"github.com/umer-fa/morlock-don/pkg/tt"
)

// Mate/Infinite scores bound the search's score range; MateIn/MatedIn convert
// a ply-relative mate to a score the UCI layer reports as "mate N".
const (
	Infinite  = 32000
	MateScore = 31000
	MaxPly    = 128
)

func MateIn(ply int) int  { return MateScore - ply }
func MatedIn(ply int) int { return -MateScore + ply }

// IsMateScore reports whether s represents a forced mate, for UCI formatting.
func IsMateScore(s int) bool {
	return s >= MateScore-MaxPly || s <= -MateScore+MaxPly
}

// valueToTT/valueFromTT shift mate scores between root-relative (search) and
// node-relative (transposition table) form, so a mate found via one path
// reads back with the right distance when probed from another.
func valueToTT(v, ply int) int16 {
	if v >= MateScore-MaxPly {
		v += ply
	} else if v <= -MateScore+MaxPly {
		v -= ply
	}
	return int16(v)
}

func valueFromTT(v, ply int) int {
	if v >= MateScore-MaxPly {
		v -= ply
	} else if v <= -MateScore+MaxPly {
		v += ply
	}
	return v
}

// Limits mirrors the UCI "go" parameters that bound a search.
type Limits struct {
	Depth    int
	Nodes    uint64
	MoveTime int64 // milliseconds, 0 = unset

	WhiteTime, BlackTime, WhiteInc, BlackInc int64

	MovesToGo int
	Infinite  bool
	Ponder    bool
	Mate      int // stop once a mate in <= Mate moves is proven

	// SearchMoves restricts the root to the listed moves when non-empty.
	SearchMoves []board.Move

	// MultiPV requests that many best root lines be searched and reported,
	// each excluding the root moves already claimed by a better-ranked
	// line. 0 behaves as 1.
	MultiPV int
}

// PV is one principal variation: its move sequence and score. MultiPVIndex
// is the 1-based rank of this line when Limits.MultiPV > 1 (always 1
// otherwise), matching UCI's "multipv" info field.
type PV struct {
	Moves        []board.Move
	Score        int
	Depth        int
	SelDepth     int
	Nodes        uint64
	HashFull     int
	MultiPVIndex int
}

// PieceToHistory is one continuation-history slice: the score of playing
// (piece, to) given some earlier (piece, to) pair, indexed by board.Piece.
type PieceToHistory [16][64]int16

// Stack is the per-ply search frame threaded down the recursion, holding
// what each ply needs from its ancestors: the move played to reach the next
// ply (plus its piece/destination and continuation-history slice, read by
// move ordering and pruning one and two plies below and updated from one,
// two and four plies below), the frame's static
// evaluation, killer moves, and an excluded move during singular-extension
// verification.
type Stack struct {
	Move       board.Move
	ContPiece  board.Piece
	ContTo     board.Square
	ContHist   *PieceToHistory
	Capture    bool
	StaticEval int
	Killers    [2]board.Move
	Excluded   board.Move
	PV         []board.Move
	MoveCount  int
}

// SharedState is the data every worker in a pool reads and writes
// concurrently: the transposition table (racy by contract), the stop flag
// and the node counter. Per-thread history tables live on Worker, not here.
type SharedState struct {
	TT    *tt.Table
	Stop  atomic.Bool
	Nodes atomic.Uint64

	// CheckTime, when set, is polled by the main worker every 4096 nodes;
	// returning true raises the stop flag. pkg/engine installs the time
	// manager's budget check here.
	CheckTime func() bool
}

func NewSharedState(table *tt.Table) *SharedState {
	return &SharedState{TT: table}
}

type rootMove struct {
	move      board.Move
	value     int
	prevValue int
	pv        []board.Move
}

// Worker runs one thread's search over its own copy of Position. id 0 is the
// "main" thread whose PV is reported and which polls the clock; ids > 0
// apply a Lazy-SMP-style half-density depth skip so threads diversify
// instead of duplicating each other's work.
//
// History, counter-move and continuation-history tables are per-worker, so
// their updates need no synchronization and each thread develops its own
// move-ordering bias.
type Worker struct {
	ID   int
	Pos  *board.Position
	Eval func(*board.Position) int

	shared *SharedState
	limits Limits

	stack [MaxPly + 8]Stack

	history      [board.NumColors][64][64]int32
	counterMoves [16][64]board.Move
	contHist     [16][64]PieceToHistory

	rootMoves []rootMove
	selDepth  int
	nmpMinPly int

	// CompletedDepth and BestValue feed best-thread election in pkg/engine.
	CompletedDepth int
	BestValue      int
}

func NewWorker(id int, pos *board.Position, shared *SharedState) *Worker {
	// Each worker owns its evaluator: the pawn and material hash tables
	// inside it are thread-local by design.
	ev := eval.NewEvaluator()
	return &Worker{ID: id, Pos: pos, Eval: ev.Evaluate, shared: shared, BestValue: -Infinite}
}

// checkLimits polls the abort conditions every 4096 nodes: context
// cancellation, the node limit, and (main worker only) the time budget.
func (w *Worker) checkLimits(ctx context.Context) {
	if w.shared.Nodes.Load()&4095 != 0 {
		return
	}
	if contextx.IsCancelled(ctx) {
		w.shared.Stop.Store(true)
		return
	}
	if n := w.limits.Nodes; n > 0 && w.shared.Nodes.Load() >= n {
		w.shared.Stop.Store(true)
		return
	}
	if w.ID == 0 && w.shared.CheckTime != nil && w.shared.CheckTime() {
		w.shared.Stop.Store(true)
	}
}

// Run performs iterative deepening from depth 1 to limits.Depth (or until
// ctx is cancelled / the shared Stop flag is set), reporting each completed
// depth's PVs via report.
func (w *Worker) Run(ctx context.Context, limits Limits, report func(PV)) PV {
	w.limits = limits
	w.initRootMoves(limits.SearchMoves)
	if len(w.rootMoves) == 0 {
		return PV{}
	}

	maxDepth := limits.Depth
	if maxDepth == 0 || maxDepth > MaxPly {
		maxDepth = MaxPly
	}

	multiPV := limits.MultiPV
	if multiPV < 1 {
		multiPV = 1
	}
	if multiPV > len(w.rootMoves) {
		multiPV = len(w.rootMoves)
	}

	var best PV
	score := 0
	for depth := 1; depth <= maxDepth; depth++ {
		if w.ID > 0 && skipDepth(w.ID, depth) {
			continue
		}
		if w.shared.Stop.Load() || ctx.Err() != nil {
			break
		}

		for i := range w.rootMoves {
			w.rootMoves[i].prevValue = w.rootMoves[i].value
			w.rootMoves[i].value = -Infinite
		}

		excluded := map[board.Move]bool{}
		var lines []PV

		for slot := 1; slot <= multiPV; slot++ {
			w.selDepth = 0
			s, pv := w.aspirationSearch(ctx, depth, score, excluded)
			if w.shared.Stop.Load() && depth > 1 {
				// An interrupted iteration's value cannot be trusted; keep
				// the previous depth's result instead.
				break
			}
			if len(pv) == 0 {
				break
			}
			excluded[pv[0]] = true

			lines = append(lines, PV{
				Moves:        pv,
				Score:        s,
				Depth:        depth,
				SelDepth:     w.selDepth,
				Nodes:        w.shared.Nodes.Load(),
				HashFull:     w.shared.TT.HashFull(),
				MultiPVIndex: slot,
			})
			if slot == 1 {
				score = s
			}
			if w.shared.Stop.Load() || ctx.Err() != nil {
				break
			}
		}
		if len(lines) == 0 {
			break
		}

		best = lines[0]
		w.CompletedDepth = depth
		w.BestValue = best.Score
		if w.ID == 0 && report != nil {
			for _, pv := range lines {
				report(pv)
			}
		}

		if IsMateScore(best.Score) && mateDistanceMoves(best.Score) <= mateLimitMoves(limits) {
			break
		}
	}
	return best
}

func mateDistanceMoves(score int) int {
	d := MateScore - score
	if score < 0 {
		d = MateScore + score
	}
	return (d + 1) / 2
}

func mateLimitMoves(limits Limits) int {
	if limits.Mate > 0 {
		return limits.Mate
	}
	return MaxPly
}

func (w *Worker) initRootMoves(searchMoves []board.Move) {
	w.rootMoves = w.rootMoves[:0]
	for _, m := range w.Pos.GenerateLegal(nil) {
		if len(searchMoves) > 0 && !containsMove(searchMoves, m) {
			continue
		}
		w.rootMoves = append(w.rootMoves, rootMove{move: m, value: -Infinite, prevValue: -Infinite})
	}
}

func containsMove(moves []board.Move, m board.Move) bool {
	for _, c := range moves {
		if c == m {
			return true
		}
	}
	return false
}

// skipDepth implements the half-density work-diversification pattern: helper
// thread id searches a pseudo-random subset of depths so the pool explores
// different parts of the tree instead of lock-stepping the main thread.
func skipDepth(id, depth int) bool {
	return (depth+id)%((id%4)+2) == 0
}

// aspirationSearch wraps searchRoot in the classical aspiration window:
// start narrow around the previous iteration's score, widen asymmetrically
// on a fail, and grow the half-width by 25% plus a constant per failure.
func (w *Worker) aspirationSearch(ctx context.Context, depth, prevScore int, excluded map[board.Move]bool) (int, []board.Move) {
	if depth < 5 {
		return w.searchRoot(ctx, depth, -Infinite, Infinite, excluded)
	}

	delta := 18
	alpha := max(prevScore-delta, -Infinite)
	beta := min(prevScore+delta, Infinite)

	for {
		score, pv := w.searchRoot(ctx, depth, alpha, beta, excluded)
		if w.shared.Stop.Load() || ctx.Err() != nil {
			return score, pv
		}
		if score <= alpha {
			beta = (alpha + beta) / 2
			alpha = max(score-delta, -Infinite)
		} else if score >= beta {
			beta = min(score+delta, Infinite)
		} else {
			return score, pv
		}
		delta += delta/4 + 5
	}
}

// searchRoot runs one full-width pass over the root moves (minus the slots
// already claimed by better MultiPV lines), stable-sorts them by the values
// found, and returns the best score and PV of this pass.
func (w *Worker) searchRoot(ctx context.Context, depth, alpha, beta int, excluded map[board.Move]bool) (int, []board.Move) {
	ss := &w.stack[0]
	ss.PV = nil

	best := -Infinite
	var bestPV []board.Move
	searched := 0

	for i := range w.rootMoves {
		rm := &w.rootMoves[i]
		if excluded[rm.move] {
			continue
		}
		if w.shared.Stop.Load() || contextx.IsCancelled(ctx) {
			break
		}
		m := rm.move

		givesCheck := w.Pos.GivesCheck(m)
		ss.Move = m
		ss.Capture = w.Pos.PieceOn(m.To()) != board.NoPiece || m.Type() == board.EnPassant
		ss.ContPiece = w.Pos.PieceOn(m.From())
		ss.ContTo = m.To()
		ss.ContHist = &w.contHist[ss.ContPiece][m.To()]

		w.Pos.DoMove(m, givesCheck)
		w.shared.Nodes.Inc()

		var score int
		if searched == 0 {
			score = -w.pvSearch(ctx, depth-1, -beta, -alpha, 1, true, false)
		} else {
			score = -w.pvSearch(ctx, depth-1, -alpha-1, -alpha, 1, false, true)
			if score > alpha && score < beta {
				score = -w.pvSearch(ctx, depth-1, -beta, -alpha, 1, true, false)
			}
		}
		w.Pos.UndoMove(m)
		searched++

		if w.shared.Stop.Load() {
			break
		}

		rm.value = score
		rm.pv = append([]board.Move{m}, w.stack[1].PV...)

		if score > best {
			best = score
			bestPV = rm.pv
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}

	// Moves this pass never reached (aborted iteration, beta cutoff at the
	// root) sort by their previous iteration's value instead.
	sort.SliceStable(w.rootMoves, func(i, j int) bool {
		a, b := &w.rootMoves[i], &w.rootMoves[j]
		if a.value != b.value {
			return a.value > b.value
		}
		return a.prevValue > b.prevValue
	})

	if len(bestPV) > 0 {
		bound := tt.BoundExact
		if best >= beta {
			bound = tt.BoundLower
		}
		w.shared.TT.Store(w.Pos.Key(), bestPV[0], valueToTT(best, 0), int16(0), int8(min(depth, 127)), bound, true)
	}
	return best, bestPV
}

// --- history bookkeeping (all per-worker, no synchronization) ---

// statBonus is the history adjustment magnitude at a given depth.
func statBonus(depth int) int32 {
	return int32(depth*(depth+2) - 2)
}

// addHistory applies the standard gravity update, pulling the score toward
// +/-16384 so recent results dominate without unbounded growth.
func (w *Worker) addHistory(c board.Color, from, to board.Square, bonus int32) {
	h := &w.history[c][from][to]
	*h += bonus - *h*abs32(bonus)/16384
}

// updateContHistories applies bonus to the continuation-history slices one,
// two and four plies above ply for the given (piece, to) pair.
func (w *Worker) updateContHistories(ply int, pc board.Piece, to board.Square, bonus int32) {
	for _, back := range [3]int{1, 2, 4} {
		if ply < back {
			continue
		}
		prev := &w.stack[ply-back]
		if prev.ContHist == nil {
			continue
		}
		v := &prev.ContHist[pc][to]
		*v += int16(bonus - int32(*v)*abs32(bonus)/16384)
	}
}

// updateQuietStats records a quiet move that caused a beta cutoff: killer
// slot, counter move for the previous move, butterfly history and the
// continuation histories.
func (w *Worker) updateQuietStats(pos *board.Position, ply int, m board.Move, bonus int32) {
	ss := &w.stack[ply]
	if ss.Killers[0] != m {
		ss.Killers[1] = ss.Killers[0]
		ss.Killers[0] = m
	}
	if ply > 0 {
		if prev := &w.stack[ply-1]; prev.ContPiece != board.NoPiece {
			w.counterMoves[prev.ContPiece][prev.ContTo] = m
		}
	}
	w.addHistory(pos.Turn(), m.From(), m.To(), bonus)
	w.updateContHistories(ply, pos.PieceOn(m.From()), m.To(), bonus)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

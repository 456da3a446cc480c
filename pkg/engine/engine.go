// Package engine ties the board, eval, search and tt packages together into
// a playable chess engine: option handling, a worker-thread pool with a time
// manager, opening-book lookup and the position/move bookkeeping a protocol
// driver (pkg/uci) needs.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
	"github.com/umer-fa/morlock-don/pkg/search"
	"github.com/umer-fa/morlock-don/pkg/tt"
)

var version = build.NewVersion(0, 1, 0)

// Options are the runtime-tunable UCI options this engine exposes.
type Options struct {
	Hash         uint // transposition table size, MB
	Threads      uint // worker-thread pool size
	MoveOverhead uint // ms shaved off every time budget
	MultiPV      uint // number of root lines to search and report
	Chess960     bool
}

func (o Options) String() string {
	return fmt.Sprintf("{hash=%vMB, threads=%v, overhead=%vms, multipv=%v, chess960=%v}", o.Hash, o.Threads, o.MoveOverhead, o.MultiPV, o.Chess960)
}

func defaultOptions() Options {
	return Options{Hash: 16, Threads: 1, MoveOverhead: 50, MultiPV: 1}
}

// Engine encapsulates game-playing logic: a current Position, the shared
// transposition table, the worker pool and an optional opening Book.
type Engine struct {
	name, author string

	mu   sync.Mutex
	opts Options
	pos  *board.Position
	book Book

	table  *tt.Table
	shared *search.SharedState

	pondering atomic.Bool

	cancelActive context.CancelFunc
	activeDone   chan struct{}
}

// Option is an engine construction option.
type Option func(*Engine)

func WithOptions(opts Options) Option {
	return func(e *Engine) { e.opts = opts }
}

func WithBook(b Book) Option {
	return func(e *Engine) { e.book = b }
}

func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:   name,
		author: author,
		opts:   defaultOptions(),
		book:   NoBook,
	}
	for _, fn := range opts {
		fn(e)
	}
	e.table = tt.NewTable(int(e.opts.Hash))
	e.shared = search.NewSharedState(e.table)

	_ = e.Reset(ctx, fen.StartPos)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

func (e *Engine) Name() string   { return fmt.Sprintf("%v %v", e.name, version) }
func (e *Engine) Author() string { return e.author }

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

func (e *Engine) SetHash(sizeMB uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.haltActiveLocked()
	e.opts.Hash = sizeMB
	e.table.Resize(int(sizeMB))
}

func (e *Engine) SetThreads(n uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n == 0 {
		n = 1
	}
	e.opts.Threads = n
}

func (e *Engine) SetMoveOverhead(ms uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.MoveOverhead = ms
}

func (e *Engine) SetMultiPV(n uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if n == 0 {
		n = 1
	}
	e.opts.MultiPV = n
}

func (e *Engine) SetChess960(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Chess960 = v
}

// Position returns the current position in FEN.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fen.Format(e.pos, 1+e.pos.Ply()/2)
}

// Reset sets the engine to the given FEN position, discarding move history.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltActiveLocked()

	pos, err := fen.Parse(position, e.opts.Chess960)
	if err != nil {
		return err
	}
	e.pos = pos
	logw.Infof(ctx, "Reset to %v", position)
	return nil
}

// Push applies move (coordinate notation) as if played by either side,
// usually to record the opponent's reply.
func (e *Engine) Push(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.haltActiveLocked()

	m, err := e.pos.ParseMove(move)
	if err != nil {
		return err
	}
	san := board.SAN(e.pos, m)
	e.pos.DoMove(m, e.pos.GivesCheck(m))
	logw.Debugf(ctx, "Push %v (%v)", m, san)
	return nil
}

// ClearHash clears the transposition table, split across the configured
// number of worker threads for large tables.
func (e *Engine) ClearHash() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearHashLocked()
}

func (e *Engine) clearHashLocked() {
	threads := int(e.opts.Threads)
	n := e.table.NumClusters()
	if threads <= 1 || n < 1<<16 {
		e.table.Clear()
		return
	}
	var g errgroup.Group
	span := (n + threads - 1) / threads
	for lo := 0; lo < n; lo += span {
		lo := lo
		g.Go(func() error {
			e.table.ClearRange(lo, lo+span)
			return nil
		})
	}
	_ = g.Wait()
}

// Go launches a search from the current position with the given limits. It
// returns a channel of incrementally-deeper PVs from the main thread only;
// the channel is closed once the search halts (by Stop, time control, or
// reaching a limit). The final value on the channel is the elected best
// line across all worker threads.
func (e *Engine) Go(ctx context.Context, limits search.Limits) (<-chan search.PV, error) {
	e.mu.Lock()
	if e.activeDone != nil {
		select {
		case <-e.activeDone:
			// The previous search already finished on its own; reap it.
			e.cancelActive()
			e.cancelActive = nil
			e.activeDone = nil
		default:
			e.mu.Unlock()
			return nil, fmt.Errorf("search already active")
		}
	}

	if book, err := e.book.Find(ctx, fen.Format(e.pos, 1)); err == nil && len(book) > 0 {
		out := make(chan search.PV, 1)
		out <- search.PV{Moves: []board.Move{book[0]}, Depth: 0}
		close(out)
		e.mu.Unlock()
		return out, nil
	}

	if limits.MultiPV < 1 {
		limits.MultiPV = int(e.opts.MultiPV)
	}

	e.table.NewSearch()
	e.shared.Stop.Store(false)
	e.pondering.Store(limits.Ponder)

	tm := NewTimeManager()
	tm.Init(limits, e.pos.Turn(), e.pos.Ply(), int(e.opts.MoveOverhead))

	// Best-move stability feeds the time manager: a search whose best move
	// flipped in the last couple of iterations earns the maximum budget.
	var stabMu sync.Mutex
	var lastBest board.Move
	var lastChangeDepth, lastDepth int

	e.shared.CheckTime = func() bool {
		if limits.Infinite || e.pondering.Load() || tm.Maximum() == 0 {
			return false
		}
		if tm.Elapsed() >= tm.Maximum() {
			return true
		}
		stabMu.Lock()
		unstable := lastDepth-lastChangeDepth < 2
		stabMu.Unlock()
		return tm.ShouldStop(unstable)
	}

	searchCtx, cancel := context.WithCancel(ctx)

	done := make(chan struct{})
	e.cancelActive = cancel
	e.activeDone = done

	out := make(chan search.PV, 64)
	threads := int(e.opts.Threads)
	if threads < 1 {
		threads = 1
	}
	pos := e.pos
	shared := e.shared
	e.mu.Unlock()

	go func() {
		defer close(out)
		defer close(done)
		defer cancel()

		report := func(pv search.PV) {
			if len(pv.Moves) > 0 && pv.MultiPVIndex <= 1 {
				stabMu.Lock()
				if pv.Moves[0] != lastBest {
					lastBest = pv.Moves[0]
					lastChangeDepth = pv.Depth
				}
				lastDepth = pv.Depth
				stabMu.Unlock()
			}
			select {
			case out <- pv:
			default:
			}
		}

		workers := make([]*search.Worker, threads)
		results := make([]search.PV, threads)

		g, gctx := errgroup.WithContext(searchCtx)
		for i := 0; i < threads; i++ {
			id := i
			g.Go(func() error {
				w := search.NewWorker(id, clonePosition(pos), shared)
				workers[id] = w
				var cb func(search.PV)
				if id == 0 {
					cb = report
				}
				results[id] = w.Run(gctx, limits, cb)
				// The first worker to finish (time-out, mate, node limit)
				// releases the rest.
				shared.Stop.Store(true)
				return nil
			})
		}
		_ = g.Wait()

		// The elected line must reach the consumer even if the buffer is
		// full of stale progress reports; drop the oldest to make room
		// rather than block (Stop waits on this goroutine finishing).
		final := bestThread(workers, results)
		for {
			select {
			case out <- final:
				return
			default:
				select {
				case <-out:
				default:
				}
			}
		}
	}()

	return out, nil
}

// bestThread elects the final line across the pool: deepest completed
// iteration wins, ties broken by the better root value, with the main
// thread's result as the baseline.
func bestThread(workers []*search.Worker, results []search.PV) search.PV {
	best := results[0]
	bestWorker := workers[0]
	for i := 1; i < len(results); i++ {
		if len(results[i].Moves) == 0 {
			continue
		}
		w := workers[i]
		if len(best.Moves) == 0 ||
			w.CompletedDepth > bestWorker.CompletedDepth ||
			(w.CompletedDepth == bestWorker.CompletedDepth && w.BestValue > bestWorker.BestValue) {
			best = results[i]
			bestWorker = w
		}
	}
	return best
}

// PonderHit switches a pondering search to normal time control: the move we
// were pondering on was played, so the clock is now ours.
func (e *Engine) PonderHit() {
	e.pondering.Store(false)
}

// Stop halts any active search.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.haltActiveLocked()
}

func (e *Engine) haltActiveLocked() {
	if e.cancelActive != nil {
		e.pondering.Store(false)
		e.shared.Stop.Store(true)
		e.cancelActive()
		<-e.activeDone
		e.shared.Stop.Store(false)
		e.cancelActive = nil
		e.activeDone = nil
	}
}

// clonePosition builds an independent Position at the same FEN, since
// Position is mutated in place and each worker thread needs its own copy to
// walk the tree concurrently.
func clonePosition(pos *board.Position) *board.Position {
	p, err := fen.Parse(fen.Format(pos, 1), false)
	if err != nil {
		panic(err) // pos was already valid, so re-parsing its own FEN cannot fail
	}
	return p
}

// Package uci contains a driver for running the engine under the Universal
// Chess Interface protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seekerror/logw"
	"go.uber.org/atomic"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
	"github.com/umer-fa/morlock-don/pkg/engine"
	"github.com/umer-fa/morlock-don/pkg/report"
	"github.com/umer-fa/morlock-don/pkg/search"
)

const ProtocolName = "uci"

// Driver reads UCI command lines from in and writes protocol responses to
// the channel it returns, driving a single engine.Engine instance.
type Driver struct {
	e *engine.Engine

	out chan<- string

	active    atomic.Bool
	closed    atomic.Bool
	pondering atomic.Bool
	quit      chan struct{}

	// ponderRelease unblocks the bestmove emission once the GUI resolves a
	// ponder search with ponderhit or stop.
	ponderRelease chan struct{}

	startTime time.Time
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 256)
	d := &Driver{e: e, out: out, quit: make(chan struct{}), ponderRelease: make(chan struct{}, 1)}
	go d.process(ctx, in)
	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} { return d.quit }

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	for {
		select {
		case line, ok := <-in:
			if !ok {
				return
			}
			if d.handle(ctx, line) {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handle processes one command line and returns true if the driver should quit.
func (d *Driver) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "uci":
		d.out <- fmt.Sprintf("id name %v", d.e.Name())
		d.out <- fmt.Sprintf("id author %v", d.e.Author())
		d.out <- "option name Hash type spin default 16 min 1 max 65536"
		d.out <- "option name Threads type spin default 1 min 1 max 512"
		d.out <- "option name Move Overhead type spin default 50 min 0 max 5000"
		d.out <- "option name MultiPV type spin default 1 min 1 max 218"
		d.out <- "option name Ponder type check default false"
		d.out <- "option name UCI_Chess960 type check default false"
		d.out <- "option name Clear Hash type button"
		d.out <- "uciok"

	case "isready":
		d.out <- "readyok"

	case "ucinewgame":
		d.e.ClearHash()
		_ = d.e.Reset(ctx, fen.StartPos)

	case "setoption":
		d.handleSetOption(fields[1:])

	case "position":
		d.handlePosition(ctx, fields[1:])

	case "go":
		d.handleGo(ctx, fields[1:])

	case "stop":
		d.releasePonder()
		d.e.Stop()

	case "ponderhit":
		// The pondered-on move was played: keep searching, but on our own
		// clock from here.
		d.releasePonder()
		d.e.PonderHit()

	case "quit":
		d.releasePonder()
		d.e.Stop()
		return true

	default:
		logw.Debugf(ctx, "ignoring unknown command: %v", line)
	}
	return false
}

func (d *Driver) handleSetOption(fields []string) {
	// setoption name <id> [value <x>]
	joined := strings.Join(fields, " ")
	const nameTok, valueTok = "name ", " value "
	idx := strings.Index(joined, nameTok)
	if idx != 0 {
		return
	}
	rest := joined[len(nameTok):]
	name, value := rest, ""
	if vi := strings.Index(rest, valueTok); vi >= 0 {
		name = rest[:vi]
		value = rest[vi+len(valueTok):]
	}
	name = strings.TrimSpace(name)

	switch strings.ToLower(name) {
	case "hash":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetHash(uint(n))
		}
	case "threads":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetThreads(uint(n))
		}
	case "move overhead":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetMoveOverhead(uint(n))
		}
	case "multipv":
		if n, err := strconv.Atoi(value); err == nil {
			d.e.SetMultiPV(uint(n))
		}
	case "uci_chess960":
		d.e.SetChess960(value == "true")
	case "ponder":
		// Pondering is driven entirely by "go ponder"/"ponderhit"; the
		// option only tells the GUI we support it.
	case "clear hash":
		d.e.ClearHash()
	}
}

func (d *Driver) handlePosition(ctx context.Context, fields []string) {
	if len(fields) == 0 {
		return
	}

	var position string
	var rest []string
	switch fields[0] {
	case "startpos":
		position = fen.StartPos
		rest = fields[1:]
	case "fen":
		i := 1
		for i < len(fields) && fields[i] != "moves" {
			i++
		}
		position = strings.Join(fields[1:i], " ")
		rest = fields[i:]
	default:
		return
	}

	if err := d.e.Reset(ctx, position); err != nil {
		logw.Errorf(ctx, "position: %v", err)
		return
	}

	if len(rest) > 0 && rest[0] == "moves" {
		for _, mv := range rest[1:] {
			if err := d.e.Push(ctx, mv); err != nil {
				logw.Errorf(ctx, "position move %v: %v", mv, err)
				return
			}
		}
	}
}

func (d *Driver) handleGo(ctx context.Context, fields []string) {
	if !d.active.CAS(false, true) {
		return
	}

	limits := search.Limits{}
	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			i++
			limits.Depth = atoiDefault(fields, i)
		case "nodes":
			i++
			limits.Nodes = uint64(atoiDefault(fields, i))
		case "movetime":
			i++
			limits.MoveTime = int64(atoiDefault(fields, i))
		case "wtime":
			i++
			limits.WhiteTime = int64(atoiDefault(fields, i))
		case "btime":
			i++
			limits.BlackTime = int64(atoiDefault(fields, i))
		case "winc":
			i++
			limits.WhiteInc = int64(atoiDefault(fields, i))
		case "binc":
			i++
			limits.BlackInc = int64(atoiDefault(fields, i))
		case "movestogo":
			i++
			limits.MovesToGo = atoiDefault(fields, i)
		case "mate":
			i++
			limits.Mate = atoiDefault(fields, i)
		case "infinite":
			limits.Infinite = true
		case "ponder":
			limits.Ponder = true
		case "searchmoves":
			for ; i+1 < len(fields); i++ {
				m, err := d.parseMove(ctx, fields[i+1])
				if err != nil {
					break
				}
				limits.SearchMoves = append(limits.SearchMoves, m)
			}
		}
	}

	d.startTime = time.Now()
	if limits.Ponder {
		d.pondering.Store(true)
		// Drain any release left over from an earlier race.
		select {
		case <-d.ponderRelease:
		default:
		}
	}

	out, err := d.e.Go(ctx, limits)
	if err != nil {
		logw.Errorf(ctx, "go: %v", err)
		d.pondering.Store(false)
		d.active.Store(false)
		return
	}

	go func() {
		defer d.active.Store(false)

		var last search.PV
		for pv := range out {
			last = pv
			d.out <- report.Info(pv, time.Since(d.startTime))
		}
		// A finished ponder search must hold its answer until the GUI
		// resolves the ponder with ponderhit or stop.
		if d.pondering.Load() {
			select {
			case <-d.ponderRelease:
			case <-d.quit:
			}
		}
		d.out <- report.BestMove(last, d.e.Options().Chess960)
	}()
}

func (d *Driver) releasePonder() {
	if d.pondering.CAS(true, false) {
		select {
		case d.ponderRelease <- struct{}{}:
		default:
		}
	}
}

// parseMove resolves a coordinate move against the engine's current
// position, for "go searchmoves".
func (d *Driver) parseMove(ctx context.Context, s string) (board.Move, error) {
	pos, err := fen.Parse(d.e.Position(), d.e.Options().Chess960)
	if err != nil {
		return board.NoMove, err
	}
	m, err := pos.ParseMove(s)
	if err != nil {
		logw.Debugf(ctx, "searchmoves: %v", err)
		return board.NoMove, err
	}
	return m, nil
}

func atoiDefault(fields []string, i int) int {
	if i < 0 || i >= len(fields) {
		return 0
	}
	n, _ := strconv.Atoi(fields[i])
	return n
}

// livechess-uci is an adaptor for using a DGT EBoard via LiveChess as a UCI
// engine. It lets chess GUIs (e.g. CuteChess) drive a physical board by
// pretending the board itself is the engine: "go" blocks until the human
// plays a legal reply on the board, which is then reported as bestmove.
package main

import (
	"context"
	"flag"
	"strings"
	"sync/atomic"

	"github.com/herohde/livechess-go/pkg/livechess"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
	"github.com/umer-fa/morlock-don/pkg/engine"
	"github.com/umer-fa/morlock-don/pkg/uci"
)

var (
	serial = flag.String("serial", "auto", "Board selection by serial number (default: auto)")
	flip   = flag.Bool("flip", false, "Flip board")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	id := livechess.EBoardSerial(*serial)
	if id == "auto" {
		auto, err := livechess.AutoDetect(ctx, livechess.DefaultClient)
		if err != nil {
			logw.Exitf(ctx, "watch failed to autodetect board: %v", err)
		}
		id = auto
	}

	client, events, err := livechess.NewFeed(ctx, id)
	if err != nil {
		logw.Exitf(ctx, "feed for %v failed: %v", id, err)
	}
	if *flip {
		if err := client.Flip(ctx, true); err != nil {
			logw.Exitf(ctx, "flip board %v failed: %v", id, err)
		}
	}
	if err := client.Setup(ctx, fen.StartPos); err != nil {
		logw.Exitf(ctx, "setup board %v failed: %v", id, err)
	}

	a := newAdaptor(ctx, events)
	e := engine.New(ctx, "livechess-uci", "umer-fa")

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver := newBoardDriver(ctx, e, a, in)
		go engine.WriteStdoutLines(ctx, driver.out)
		<-driver.quit

	default:
		logw.Exitf(ctx, "protocol not supported")
	}
}

// adaptor tracks the board's reported FEN placement field so waitForMove can
// match it against the candidate legal moves of the engine's own position.
type adaptor struct {
	last  atomic.Pointer[livechess.EBoardEventResponse]
	pulse *iox.Pulse
}

func newAdaptor(ctx context.Context, events <-chan livechess.EBoardEventResponse) *adaptor {
	a := &adaptor{pulse: iox.NewPulse()}
	go a.process(ctx, events)
	return a
}

func (a *adaptor) process(ctx context.Context, events <-chan livechess.EBoardEventResponse) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if len(event.San) > 0 {
				a.last.Store(&event)
				a.pulse.Emit()
			}
		case <-ctx.Done():
			return
		}
	}
}

// waitForMove blocks until the physical board's reported placement matches
// one of pos's legal moves, then returns that move.
func (a *adaptor) waitForMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	candidates := map[string]board.Move{}
	for _, m := range pos.GenerateLegal(nil) {
		pos.DoMove(m, pos.GivesCheck(m))
		placement := strings.Fields(fen.Format(pos, 1))[0]
		candidates[placement] = m
		pos.UndoMove(m)
	}

	for {
		if last := a.last.Load(); last != nil {
			if m, ok := candidates[last.Board]; ok {
				return m, nil
			}
		}
		select {
		case <-a.pulse.Chan():
		case <-ctx.Done():
			return board.NoMove, ctx.Err()
		}
	}
}

// boardDriver is a minimal hand-rolled UCI command loop: it reuses the
// standard protocol's id/option/isready/position handshake but answers "go"
// from the physical board instead of pkg/search.
type boardDriver struct {
	e   *engine.Engine
	a   *adaptor
	out chan string
	quit chan struct{}
}

func newBoardDriver(ctx context.Context, e *engine.Engine, a *adaptor, in <-chan string) *boardDriver {
	d := &boardDriver{e: e, a: a, out: make(chan string, 64), quit: make(chan struct{})}
	go d.run(ctx, in)
	return d
}

func (d *boardDriver) run(ctx context.Context, in <-chan string) {
	defer close(d.quit)
	defer close(d.out)

	for line := range in {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "uci":
			d.out <- "id name " + d.e.Name()
			d.out <- "id author " + d.e.Author()
			d.out <- "uciok"
		case "isready":
			d.out <- "readyok"
		case "ucinewgame":
			_ = d.e.Reset(ctx, fen.StartPos)
		case "position":
			d.handlePosition(ctx, fields[1:])
		case "go":
			d.handleGo(ctx)
		case "quit":
			return
		}
	}
}

func (d *boardDriver) handlePosition(ctx context.Context, fields []string) {
	if len(fields) == 0 {
		return
	}
	var position string
	var rest []string
	switch fields[0] {
	case "startpos":
		position, rest = fen.StartPos, fields[1:]
	case "fen":
		i := 1
		for i < len(fields) && fields[i] != "moves" {
			i++
		}
		position, rest = strings.Join(fields[1:i], " "), fields[i:]
	default:
		return
	}
	if err := d.e.Reset(ctx, position); err != nil {
		logw.Errorf(ctx, "position: %v", err)
		return
	}
	if len(rest) > 0 && rest[0] == "moves" {
		for _, mv := range rest[1:] {
			_ = d.e.Push(ctx, mv)
		}
	}
}

func (d *boardDriver) handleGo(ctx context.Context) {
	pos, err := fen.Parse(d.e.Position(), false)
	if err != nil {
		logw.Errorf(ctx, "go: %v", err)
		return
	}
	m, err := d.a.waitForMove(ctx, pos)
	if err != nil {
		return
	}
	_ = d.e.Push(ctx, m.String())
	d.out <- "bestmove " + m.String()
}

package uci_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/engine"
	"github.com/umer-fa/morlock-don/pkg/uci"
)

// collect reads driver output until a line satisfying stop arrives, or the
// channel closes, or the timeout expires.
func collect(t *testing.T, out <-chan string, stop func(string) bool) []string {
	t.Helper()
	var lines []string
	deadline := time.After(30 * time.Second)
	for {
		select {
		case line, ok := <-out:
			if !ok {
				return lines
			}
			lines = append(lines, line)
			if stop(line) {
				return lines
			}
		case <-deadline:
			t.Fatalf("timed out waiting for driver output, got %v", lines)
		}
	}
}

func TestDriverHandshake(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "morlock", "test")

	in := make(chan string, 16)
	_, out := uci.NewDriver(ctx, e, in)

	in <- "uci"
	lines := collect(t, out, func(s string) bool { return s == "uciok" })

	assert.True(t, strings.HasPrefix(lines[0], "id name "))
	assert.Contains(t, lines, "uciok")

	var options int
	for _, l := range lines {
		if strings.HasPrefix(l, "option name ") {
			options++
		}
	}
	assert.GreaterOrEqual(t, options, 5, "Hash/Threads/MultiPV/Ponder/Chess960 must be advertised")

	in <- "isready"
	lines = collect(t, out, func(s string) bool { return s == "readyok" })
	assert.Contains(t, lines, "readyok")
}

func TestDriverSearchesAndReportsBestMove(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "morlock", "test")

	in := make(chan string, 16)
	_, out := uci.NewDriver(ctx, e, in)

	in <- "position fen 7k/8/6K1/8/8/8/8/R7 w - - 0 1"
	in <- "go depth 4"

	lines := collect(t, out, func(s string) bool { return strings.HasPrefix(s, "bestmove ") })
	require.NotEmpty(t, lines)

	last := lines[len(lines)-1]
	assert.Equal(t, "bestmove a1a8", last)

	var sawInfo bool
	for _, l := range lines {
		if strings.HasPrefix(l, "info depth ") {
			sawInfo = true
			assert.Contains(t, l, " score ")
			assert.Contains(t, l, " pv ")
		}
	}
	assert.True(t, sawInfo, "at least one info line precedes bestmove")
}

func TestDriverAppliesPositionMoves(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "morlock", "test")

	in := make(chan string, 16)
	_, out := uci.NewDriver(ctx, e, in)

	in <- "position startpos moves e2e4 e7e5"
	in <- "isready"
	collect(t, out, func(s string) bool { return s == "readyok" })

	assert.Contains(t, e.Position(), "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w")
}

func TestDriverQuitCloses(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "morlock", "test")

	in := make(chan string, 16)
	d, out := uci.NewDriver(ctx, e, in)

	in <- "quit"
	select {
	case <-d.Closed():
	case <-time.After(10 * time.Second):
		t.Fatal("driver did not close on quit")
	}
	for range out {
	}
}

package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/board/fen"
	"github.com/umer-fa/morlock-don/pkg/engine"
	"github.com/umer-fa/morlock-don/pkg/search"
)

func TestEngineFindsMateInOne(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "test", "test")

	require.NoError(t, e.Reset(ctx, "7k/8/6K1/8/8/8/8/R7 w - - 0 1"))

	out, err := e.Go(ctx, search.Limits{Depth: 4})
	require.NoError(t, err)

	var last search.PV
	for pv := range out {
		last = pv
	}
	require.NotEmpty(t, last.Moves)
	assert.Equal(t, "a1a8", last.Moves[0].String())
	assert.True(t, search.IsMateScore(last.Score))
}

func TestEngineSearchMovesRestrictsRoot(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "test", "test")

	m, err := parseAt(e, "a2a3")
	require.NoError(t, err)

	out, err := e.Go(ctx, search.Limits{Depth: 2, SearchMoves: []board.Move{m}})
	require.NoError(t, err)

	var last search.PV
	for pv := range out {
		last = pv
	}
	require.NotEmpty(t, last.Moves)
	assert.Equal(t, "a2a3", last.Moves[0].String())
}

func TestEngineStopHaltsSearch(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "test", "test")

	out, err := e.Go(ctx, search.Limits{Infinite: true})
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		e.Stop()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range out {
		}
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("search did not halt after Stop")
	}
}

func TestEngineRejectsConcurrentSearches(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "test", "test")

	out, err := e.Go(ctx, search.Limits{Infinite: true})
	require.NoError(t, err)

	_, err = e.Go(ctx, search.Limits{Depth: 1})
	assert.Error(t, err)

	e.Stop()
	for range out {
	}
}

func parseAt(e *engine.Engine, move string) (board.Move, error) {
	pos, err := fen.Parse(e.Position(), false)
	if err != nil {
		return board.NoMove, err
	}
	return pos.ParseMove(move)
}

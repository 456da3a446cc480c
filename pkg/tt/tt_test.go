package tt_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umer-fa/morlock-don/pkg/board"
	"github.com/umer-fa/morlock-don/pkg/tt"
)

func TestStoreProbeRoundTrip(t *testing.T) {
	table := tt.NewTable(1)

	key := board.Key(0x0123456789abcdef)
	table.Store(key, board.NewMove(board.E2, board.E4), 123, -45, 7, tt.BoundExact, true)

	e, ok := table.Probe(key)
	require.True(t, ok)
	assert.Equal(t, int16(123), e.Score)
	assert.Equal(t, int16(-45), e.Eval)
	assert.Equal(t, int8(7), e.Depth)
	assert.Equal(t, tt.BoundExact, e.Bound)
	assert.True(t, e.PV)
	assert.Equal(t, board.NewMove(board.E2, board.E4), e.Move)
}

func TestProbeMissReportsNotFound(t *testing.T) {
	table := tt.NewTable(1)
	_, ok := table.Probe(board.Key(0xdeadbeef))
	assert.False(t, ok)
}

func TestStorePreservesMoveWhenOmitted(t *testing.T) {
	table := tt.NewTable(1)
	key := board.Key(42)

	m := board.NewMove(board.D2, board.D4)
	table.Store(key, m, 10, 0, 3, tt.BoundLower, false)
	// A later bound-only update (e.g. from a fail-low re-probe) with
	// NoMove must not clobber the previously-stored best move.
	table.Store(key, board.NoMove, 10, 0, 3, tt.BoundUpper, false)

	e, ok := table.Probe(key)
	require.True(t, ok)
	assert.Equal(t, m, e.Move)
}

func TestNewSearchAdvancesGenerationAffectsHashFull(t *testing.T) {
	table := tt.NewTable(1)
	table.Store(board.Key(1), board.NoMove, 0, 0, 1, tt.BoundExact, false)

	full := table.HashFull()
	assert.Greater(t, full, 0)

	table.NewSearch()
	// The stored entry now carries a stale generation, so a fresh sample
	// no longer counts it as "full" for the new search.
	assert.Less(t, table.HashFull(), full+1)
}

// TestConcurrentAccess exercises the table's no-lock contract: many
// goroutines racing Store/Probe against overlapping keys must never panic
// or return a torn Bound value, even though individual fields may be stale.
func TestConcurrentAccess(t *testing.T) {
	table := tt.NewTable(1)

	const goroutines = 32
	const opsPerGoroutine = 2000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < opsPerGoroutine; i++ {
				key := board.Key(seed*opsPerGoroutine + i)
				table.Store(key, board.NoMove, int16(i), int16(-i), int8(i%64), tt.BoundExact, i%2 == 0)
				if e, ok := table.Probe(key); ok {
					assert.True(t, e.Bound == tt.BoundExact || e.Bound == tt.BoundNone || e.Bound == tt.BoundLower || e.Bound == tt.BoundUpper)
				}
			}
		}(g)
	}
	wg.Wait()
}

func TestClearRangeEmptiesOnlyItsSpan(t *testing.T) {
	table := tt.NewTable(1)
	n := table.NumClusters()
	require.Greater(t, n, 1)

	for i := 0; i < n; i++ {
		table.Store(board.Key(uint64(i)), board.NoMove, 0, 0, 1, tt.BoundExact, false)
	}

	table.ClearRange(0, n/2)
	_, ok := table.Probe(board.Key(uint64(n - 1)))
	assert.True(t, ok, "clusters past the cleared span keep their entries")
	_, ok = table.Probe(board.Key(0))
	assert.False(t, ok, "clusters inside the cleared span are empty")

	table.ClearRange(n/2, n)
	assert.Equal(t, 0, table.HashFull())
}

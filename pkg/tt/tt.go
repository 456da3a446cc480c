// Package tt implements the shared, lock-free transposition table: a flat
// array of fixed-size clusters that every search worker probes and stores
// into concurrently without locking. Torn reads are possible by design and
// are caught downstream by the caller's key-signature and move-legality
// checks rather than prevented by synchronization.
package tt

import (
	"math/bits"

	"go.uber.org/atomic"

	"github.com/umer-fa/morlock-don/pkg/board"
)

// Bound records whether Score is exact, or only a lower/upper bound, per the
// alpha-beta node type that produced the entry.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundExact
	BoundLower
	BoundUpper
)

const entriesPerCluster = 3

// entry is one transposition slot, split across two atomically accessed
// words. A concurrent reader can observe data from one store paired with
// meta from another; that torn pairing is tolerated, not prevented -- the
// signature check filters out almost all of it, and the caller's
// pseudo-legality/legality validation of the returned move catches the rest.
//
// data word:
//
//	bits 0-15:  key signature (top 16 bits of the full 64-bit Zobrist key)
//	bits 16-31: best/refutation move
//	bits 32-47: search score (int16)
//	bits 48-63: static evaluation (int16)
//
// meta word:
//
//	bits 0-7:   depth (int8; quiescence stores 0 or -1)
//	bits 8-9:   bound
//	bit  10:    pv flag
//	bits 11-15: generation
type entry struct {
	data atomic.Uint64
	meta atomic.Uint64
}

func packData(sig uint16, move board.Move, score, eval int16) uint64 {
	return uint64(sig) |
		uint64(move)<<16 |
		uint64(uint16(score))<<32 |
		uint64(uint16(eval))<<48
}

func unpackData(w uint64) (sig uint16, move board.Move, score, eval int16) {
	return uint16(w), board.Move(w >> 16), int16(w >> 32), int16(w >> 48)
}

func packMeta(depth int8, bound Bound, pv bool, gen uint8) uint64 {
	w := uint64(uint8(depth)) | uint64(bound)<<8 | uint64(gen&0x1f)<<11
	if pv {
		w |= 1 << 10
	}
	return w
}

func unpackMeta(w uint64) (depth int8, bound Bound, pv bool, gen uint8) {
	return int8(w), Bound((w >> 8) & 0x3), (w>>10)&1 != 0, uint8((w >> 11) & 0x1f)
}

type cluster struct {
	entries [entriesPerCluster]entry
	_       [16]byte // pad 3 two-word entries up to a full 64-byte cache line
}

// Table is the shared transposition table. All exported methods are safe for
// concurrent use by multiple search workers without external locking.
type Table struct {
	clusters []cluster
	mask     uint64
	gen      atomic.Uint32 // advances by one per NewSearch; stored as 5 bits
}

// Entry is the caller-facing decoded probe result.
type Entry struct {
	Move  board.Move
	Score int16
	Eval  int16 // static evaluation cached alongside the search score
	Depth int8
	Bound Bound
	PV    bool
}

// NewTable allocates a table of approximately sizeMB megabytes, rounded down
// to a power-of-two cluster count so probing can mask instead of mod. The
// cluster array is one contiguous allocation, never a slice of pointers, so
// a large table stays TLB-friendly.
func NewTable(sizeMB int) *Table {
	if sizeMB < 1 {
		sizeMB = 1
	}
	bytes := uint64(sizeMB) * 1024 * 1024
	numClusters := roundDownPow2(bytes / 64)
	if numClusters == 0 {
		numClusters = 1
	}
	return &Table{
		clusters: make([]cluster, numClusters),
		mask:     numClusters - 1,
	}
}

func roundDownPow2(v uint64) uint64 {
	if v == 0 {
		return 0
	}
	return uint64(1) << (bits.Len64(v) - 1)
}

// Resize reallocates the table to approximately sizeMB, dropping all
// existing entries.
func (t *Table) Resize(sizeMB int) {
	n := NewTable(sizeMB)
	t.clusters = n.clusters
	t.mask = n.mask
	t.gen.Store(0)
}

// Clear zeroes every entry; callers on the search-worker pool may split this
// across goroutines via ClearRange (see pkg/engine) for large tables.
func (t *Table) Clear() {
	t.ClearRange(0, len(t.clusters))
}

// ClearRange zeroes clusters [lo, hi), used to split Clear across workers.
func (t *Table) ClearRange(lo, hi int) {
	for i := lo; i < hi && i < len(t.clusters); i++ {
		for j := range t.clusters[i].entries {
			t.clusters[i].entries[j].data.Store(0)
			t.clusters[i].entries[j].meta.Store(0)
		}
	}
}

func (t *Table) NumClusters() int { return len(t.clusters) }

// NewSearch advances the generation counter, called once per root search so
// replacement can prefer fresher entries over stale ones without an explicit
// sweep.
func (t *Table) NewSearch() {
	t.gen.Add(1)
}

func (t *Table) generation() uint8 {
	return uint8(t.gen.Load() & 0x1f)
}

func signatureOf(key board.Key) uint16 {
	return uint16(key >> 48)
}

func (t *Table) clusterFor(key board.Key) *cluster {
	return &t.clusters[uint64(key)&t.mask]
}

// Probe looks up key and reports whether a matching entry was found. A
// caller must still validate Entry.Move is pseudo-legal/legal in the current
// position before trusting it, since a racy read can return a torn entry
// that happens to match the signature by chance.
func (t *Table) Probe(key board.Key) (Entry, bool) {
	sig := signatureOf(key)
	c := t.clusterFor(key)
	for i := range c.entries {
		s, move, score, eval := unpackData(c.entries[i].data.Load())
		depth, bound, pv, _ := unpackMeta(c.entries[i].meta.Load())
		if s == sig && bound != BoundNone {
			return Entry{Move: move, Score: score, Eval: eval, Depth: depth, Bound: bound, PV: pv}, true
		}
	}
	return Entry{}, false
}

// Store writes an entry for key. Within the cluster, an existing entry for
// the same key is refreshed in place: its move is preserved when the new
// move is NoMove, and its remaining fields are kept when the new data is
// more than three plies shallower and carries a non-exact bound. Otherwise the slot with the
// lowest depth - 2*age priority is replaced, per the classical aging scheme.
func (t *Table) Store(key board.Key, move board.Move, score, eval int16, depth int8, bound Bound, pv bool) {
	sig := signatureOf(key)
	gen := t.generation()
	c := t.clusterFor(key)

	replace := 0
	var worst int32 = 1 << 30
	for i := range c.entries {
		s, existingMove, existingScore, existingEval := unpackData(c.entries[i].data.Load())
		existingDepth, existingBound, existingPV, existingGen := unpackMeta(c.entries[i].meta.Load())
		if existingBound == BoundNone {
			replace = i
			break
		}
		if s == sig {
			if move == board.NoMove {
				move = existingMove
			}
			if bound != BoundExact && depth < existingDepth-3 {
				// Shallower non-exact data would only degrade the entry;
				// refresh its move and generation and keep the rest.
				c.entries[i].data.Store(packData(sig, move, existingScore, existingEval))
				c.entries[i].meta.Store(packMeta(existingDepth, existingBound, existingPV, gen))
				return
			}
			replace = i
			break
		}
		ageDiff := int32(gen) - int32(existingGen)
		if ageDiff < 0 {
			ageDiff += 32
		}
		priority := int32(existingDepth) - 2*ageDiff
		if priority < worst {
			worst = priority
			replace = i
		}
	}

	c.entries[replace].data.Store(packData(sig, move, score, eval))
	c.entries[replace].meta.Store(packMeta(depth, bound, pv, gen))
}

// HashFull estimates, in permille, how full the table is, by sampling the
// first 1000 clusters' first slot -- matching the UCI "hashfull" info field.
func (t *Table) HashFull() int {
	n := len(t.clusters)
	if n > 1000 {
		n = 1000
	}
	if n == 0 {
		return 0
	}
	used := 0
	for i := 0; i < n; i++ {
		_, bound, _, gen := unpackMeta(t.clusters[i].entries[0].meta.Load())
		if bound != BoundNone && gen == t.generation() {
			used++
		}
	}
	return used * 1000 / n
}

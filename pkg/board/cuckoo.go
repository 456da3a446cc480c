package board

// Cuckoo table: a hash table of reversible (non-pawn, non-capture) moves
// used to detect, in O(1) expected time, whether a position might be only
// one reversible move away from repeating a position already on the search
// path (an "upcoming repetition"). Ported from the
// two-hash open-addressing scheme in Stockfish-family engines' Cuckoo.h.
const cuckooSize = 8192

var (
	cuckooKeys  [cuckooSize]Key
	cuckooMoves [cuckooSize]Move
)

func h1(k Key) uint32 { return uint32(k) & (cuckooSize - 1) }
func h2(k Key) uint32 { return uint32(k>>16) & (cuckooSize - 1) }

// init populates the Cuckoo table once at process start from the same
// Zobrist constants used elsewhere, so the table is fully deterministic.
func init() {
	count := 0
	for c := ZeroColor; c < NumColors; c++ {
		for _, pt := range []PieceType{Knight, Bishop, Rook, Queen, King} {
			for s1 := ZeroSquare; s1 < NumSquares; s1++ {
				for s2 := s1 + 1; s2 < NumSquares; s2++ {
					if Attacks(pt, s1, 0)&BitMask(s2) == 0 {
						continue
					}
					move := NewMove(s1, s2)
					key := pieceSquareKey(c, pt, s1) ^ pieceSquareKey(c, pt, s2) ^ turnKey()

					i := h1(key)
					for {
						cuckooKeys[i], key = key, cuckooKeys[i]
						cuckooMoves[i], move = move, cuckooMoves[i]
						if move == NoMove {
							break
						}
						if i == h1(key) {
							i = h2(key)
						} else {
							i = h1(key)
						}
					}
					count++
				}
			}
		}
	}
}

// HasGameCycle reports whether the side to move could, with one reversible
// move, repeat a position already on the game/search path. ply is the
// distance from the search root: cycles closing strictly inside the search
// tree count immediately, while cycles reaching at or behind the root
// additionally require the earlier position to itself be a repetition (so
// the root is not scored as a draw off a single prior occurrence).
func HasGameCycle(p *Position, ply int) bool {
	st := p.st()
	end := st.HalfmoveClock
	if st.NullPly < end {
		end = st.NullPly
	}
	if end < 3 {
		return false
	}

	occ := p.Occupied()
	for d := 3; d <= end; d += 2 {
		other := p.stateAt(d)
		if other == nil {
			break
		}
		diff := st.Key ^ other.Key

		i := h1(diff)
		if cuckooKeys[i] != diff {
			i = h2(diff)
			if cuckooKeys[i] != diff {
				continue
			}
		}
		move := cuckooMoves[i]
		from, to := move.From(), move.To()
		if Between(from, to)&occ != 0 {
			continue
		}
		if p.PieceOn(from) == NoPiece {
			from, to = to, from
		}
		if ply > d {
			return true
		}
		// At or behind the root the cycling move must be ours, and the
		// earlier position must itself already be a repetition.
		if c, _, ok := p.PieceOn(from).Split(); !ok || c != p.turn {
			continue
		}
		if other.Repetition != 0 {
			return true
		}
	}
	return false
}

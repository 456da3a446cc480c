package eval

import (
	"github.com/umer-fa/morlock-don/pkg/board"
)

// pawnEntry caches everything derivable from the pawn skeleton alone, keyed
// by Position.PawnKey: the structural score, per-color passed-pawn and
// attack bitboards, semi-open files, and a memo of the king-shelter
// evaluation for the king square it was last asked about. The pawn skeleton
// changes far less often than the rest of the position, so this table hits
// constantly. Each Evaluator (one per search thread) owns its own table, so
// no locking is needed.
type pawnEntry struct {
	key board.Key

	score score // structural terms, White POV

	passed      [board.NumColors]board.Bitboard
	attacks     [board.NumColors]board.Bitboard
	attackSpan  [board.NumColors]board.Bitboard
	semiopen    [board.NumColors]board.Bitboard // files (as full-file masks) with no own pawn

	shelterKing  [board.NumColors]board.Square
	shelterScore [board.NumColors]int32
}

const pawnTableSize = 1 << 14

type pawnTable [pawnTableSize]pawnEntry

func (t *pawnTable) probe(pos *board.Position) *pawnEntry {
	key := pos.PawnKey()
	e := &t[uint64(key)&(pawnTableSize-1)]
	if e.key == key {
		return e
	}
	*e = pawnEntry{key: key}
	for c := board.ZeroColor; c < board.NumColors; c++ {
		e.shelterKing[c] = board.NoSquare
	}
	computePawns(pos, e)
	return e
}

// Structural pawn bonuses/penalties, (MG, EG).
var (
	isolatedPenalty    = score{5, 15}
	backwardPenalty    = score{9, 24}
	doubledPenalty     = score{11, 56}
	unsupportedPenalty = score{9, 12}

	// connectedSeed[relRank] scales the connected-pawn bonus by rank;
	// phalanx pawns (side by side) count half a rank more.
	connectedSeed = [board.NumRanks]int32{0, 7, 8, 12, 29, 48, 86, 0}
)

func computePawns(pos *board.Position, e *pawnEntry) {
	for c := board.ZeroColor; c < board.NumColors; c++ {
		them := c.Opponent()
		ours := pos.PiecesOf(c, board.Pawn)
		theirs := pos.PiecesOf(them, board.Pawn)
		unit := int32(c.Unit())

		e.attacks[c] = board.PawnAttacksFrom(c, ours)
		e.semiopen[c] = board.FullBitboard
		for f := board.FileA; f < board.NumFiles; f++ {
			if ours&board.BitFile(f) != 0 {
				e.semiopen[c] &^= board.BitFile(f)
			}
		}

		for bb := ours; bb != 0; {
			var sq board.Square
			sq, bb = bb.PopLSB()
			f, r := sq.File(), sq.Rank()
			rr := sq.RelativeRank(c)

			neighbours := ours & board.AdjacentFiles(f)
			phalanx := neighbours & board.BitRank(r)
			supported := neighbours & board.BitRank(backRank(c, r))
			doubled := ours & board.BitFile(f) & board.FrontRanks(c, r)
			opposed := theirs & board.BitFile(f) & board.FrontRanks(c, r)

			// Attack span: every square this pawn can ever attack as it
			// advances.
			e.attackSpan[c] |= board.PawnAttacksFrom(c, board.BitMask(sq)|forwardFill(c, sq))

			leverPush := theirs & board.PawnAttacks(c, pushSquare(c, sq))
			backward := neighbours&board.FrontRanks(them, pushRank(c, r)) == 0 && (leverPush != 0 || opposed != 0)

			switch {
			case supported != 0 || phalanx != 0:
				v := connectedSeed[rr]
				if phalanx != 0 {
					v += connectedSeed[rr] / 2
				}
				if opposed != 0 {
					v -= v / 3
				}
				v += 8 * int32(supported.PopCount())
				e.score.MG += unit * v
				e.score.EG += unit * v * int32(rr) / 4
			case neighbours == 0:
				e.score.MG -= unit * isolatedPenalty.MG
				e.score.EG -= unit * isolatedPenalty.EG
			case backward:
				e.score.MG -= unit * backwardPenalty.MG
				e.score.EG -= unit * backwardPenalty.EG
			default:
				e.score.MG -= unit * unsupportedPenalty.MG
				e.score.EG -= unit * unsupportedPenalty.EG
			}

			if doubled != 0 && supported == 0 {
				e.score.MG -= unit * doubledPenalty.MG
				e.score.EG -= unit * doubledPenalty.EG
			}

			if isPassed(sq, c, theirs) && doubled == 0 {
				e.passed[c] |= board.BitMask(sq)
			}
		}
	}
}

// isPassed reports whether a pawn of color c on sq has no enemy pawn ahead
// of it on its own or an adjacent file.
func isPassed(sq board.Square, c board.Color, enemyPawns board.Bitboard) bool {
	front := board.FrontRanks(c, sq.Rank())
	span := front & (board.BitFile(sq.File()) | board.AdjacentFiles(sq.File()))
	return span&enemyPawns == 0
}

// shelter returns the cached king-shelter/storm score for color c's king on
// ksq, recomputing when the king has moved since the entry was built.
func (e *pawnEntry) shelter(pos *board.Position, c board.Color, ksq board.Square) int32 {
	if e.shelterKing[c] == ksq {
		return e.shelterScore[c]
	}

	s := shelterStorm(pos, c, ksq)
	// A side that can still castle may soon enjoy the better shelter of the
	// castled king square; judge it by its best option.
	if pos.CastleRights().Has(board.CastleRightOf(c, board.KingSide)) {
		if v := shelterStorm(pos, c, board.NewSquare(board.FileG, ksq.Rank())); v > s {
			s = v
		}
	}
	if pos.CastleRights().Has(board.CastleRightOf(c, board.QueenSide)) {
		if v := shelterStorm(pos, c, board.NewSquare(board.FileC, ksq.Rank())); v > s {
			s = v
		}
	}

	e.shelterKing[c] = ksq
	e.shelterScore[c] = s
	return s
}

// shelterRank[relRank] scores an own shield pawn by its rank as seen from its
// own side; stormRank an enemy storming pawn by its advancement.
var (
	shelterRank = [board.NumRanks]int32{-6, 40, 30, 12, 6, 0, -6, -10}
	stormRank   = [board.NumRanks]int32{0, 0, -55, -25, -10, -5, 0, 0}
)

func shelterStorm(pos *board.Position, c board.Color, ksq board.Square) int32 {
	them := c.Opponent()
	ours := pos.PiecesOf(c, board.Pawn)
	theirs := pos.PiecesOf(them, board.Pawn)

	center := ksq.File()
	if center == board.FileA {
		center = board.FileB
	} else if center == board.FileH {
		center = board.FileG
	}

	var v int32
	ahead := board.FrontRanks(c, ksq.Rank()) | board.BitRank(ksq.Rank())
	for f := center - 1; f <= center+1; f++ {
		fileMask := board.BitFile(f) & ahead

		if shield := ours & fileMask; shield != 0 {
			v += shelterRank[nearestRank(c, shield, ksq)]
		} else {
			v -= 15 // open file in front of the king
		}
		if storm := theirs & fileMask; storm != 0 {
			r := nearestRank(them, storm, ksq)
			v += stormRank[7-r]
		}
	}
	return v
}

// nearestRank returns the relative rank (from c's side) of the pawn in bb
// closest to the king.
func nearestRank(c board.Color, bb board.Bitboard, ksq board.Square) board.Rank {
	bestDist := 9
	best := board.Rank1
	for bb != 0 {
		var sq board.Square
		sq, bb = bb.PopLSB()
		if d := board.SquareDistance(sq, ksq); d < bestDist {
			bestDist = d
			best = sq.RelativeRank(c)
		}
	}
	return best
}

func backRank(c board.Color, r board.Rank) board.Rank {
	if c == board.White {
		if r == board.Rank1 {
			return board.Rank1
		}
		return r - 1
	}
	if r == board.Rank8 {
		return board.Rank8
	}
	return r + 1
}

func pushRank(c board.Color, r board.Rank) board.Rank {
	if c == board.White {
		if r == board.Rank8 {
			return board.Rank8
		}
		return r + 1
	}
	if r == board.Rank1 {
		return board.Rank1
	}
	return r - 1
}

func pushSquare(c board.Color, sq board.Square) board.Square {
	if c == board.White {
		if sq.Rank() == board.Rank8 {
			return sq
		}
		return sq + 8
	}
	if sq.Rank() == board.Rank1 {
		return sq
	}
	return sq - 8
}

// forwardFill returns every square strictly ahead of sq on its own file.
func forwardFill(c board.Color, sq board.Square) board.Bitboard {
	return board.BitFile(sq.File()) & board.FrontRanks(c, sq.Rank())
}

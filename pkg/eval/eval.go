// Package eval implements the classical tapered evaluator: incremental
// material+piece-square score maintained on board.Position, plus pawn
// structure, piece activity, king safety, threats, passed pawns, space and
// an initiative correction, interpolated by game phase and compressed by an
// endgame scale factor. Material signatures with a known result (bare-minor
// draws, lone-king mates) bypass the general pipeline entirely.
package eval

import "github.com/umer-fa/morlock-don/pkg/board"

// lazyThreshold is the margin (centipawns) beyond which the cheap
// material+PSQ score alone is trusted without computing the expensive terms,
// mirroring the "lazy eval" cutoff used throughout the classical-evaluator
// family of engines.
const lazyThreshold = 1500

// Evaluator carries the per-thread pawn and material hash tables. Each
// search worker owns one; none of its state is safe for concurrent use.
type Evaluator struct {
	pawns    pawnTable
	material materialTable
}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns a centipawn score from the position's side-to-move point
// of view: positive favors the side to move.
func (e *Evaluator) Evaluate(pos *board.Position) int {
	me := e.material.probe(pos)
	switch me.special {
	case specialDraw:
		return 0
	case specialKXK:
		return evaluateKXK(pos, me.strong)
	}

	phase := me.phase
	psq := pos.PSQScore()

	if v := psq.Interpolate(phase); abs32(v) > lazyThreshold {
		return (int(v) + tempo(pos)) * pos.Turn().Unit()
	}

	pe := e.pawns.probe(pos)

	var ei evalInfo
	ei.init(pos, pe)

	total := score{psq.MG, psq.EG}
	total = total.add(pe.score)
	total = total.add(ei.pieces(board.White)).sub(ei.pieces(board.Black))
	total = total.add(ei.king(board.White)).sub(ei.king(board.Black))
	total = total.add(ei.threats(board.White)).sub(ei.threats(board.Black))
	total = total.add(ei.passed(board.White)).sub(ei.passed(board.Black))
	total = total.add(ei.space(board.White)).sub(ei.space(board.Black))

	total.EG += initiative(pos, pe, total.EG)

	sf := scaleFactor(pos, total.EG)
	v := interpolate(total, phase, sf)
	v += int32(tempo(pos))

	return int(v) * pos.Turn().Unit()
}

// Evaluate is the package-level convenience for tests and tools; it uses a
// private Evaluator and is not safe for concurrent use. Search workers each
// construct their own Evaluator instead.
func Evaluate(pos *board.Position) int {
	return defaultEvaluator.Evaluate(pos)
}

var defaultEvaluator = NewEvaluator()

// tempo rewards the side to move a small bonus, matching the convention that
// the side on move typically holds a slight initiative.
func tempo(pos *board.Position) int {
	const bonus = 18
	if pos.Turn() == board.White {
		return bonus
	}
	return -bonus
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// score is a tapered (middlegame, endgame) accumulator in centipawns,
// White's point of view.
type score struct{ MG, EG int32 }

func (s score) add(o score) score { return score{s.MG + o.MG, s.EG + o.EG} }
func (s score) sub(o score) score { return score{s.MG - o.MG, s.EG - o.EG} }

// interpolate blends MG/EG by phase (0 = endgame .. 128 = opening), with the
// endgame component compressed by the scale factor sf (0..64, 64 = full).
func interpolate(s score, phase int, sf int32) int32 {
	if phase > 128 {
		phase = 128
	}
	if phase < 0 {
		phase = 0
	}
	eg := s.EG * sf / 64
	return (s.MG*int32(phase) + eg*int32(128-phase)) / 128
}

// initiative is the second-order correction of the endgame score: with kings
// far apart, pawns on both flanks and plenty of pawns left, the side ahead
// has real winning chances; a cramped, pawnless position drifts drawward.
func initiative(pos *board.Position, pe *pawnEntry, eg int32) int32 {
	wk := pos.KingSquare(board.White)
	bk := pos.KingSquare(board.Black)

	outflanking := fileDistance(wk.File(), bk.File()) - rankDistance(wk.Rank(), bk.Rank())
	pawns := pos.TypeBB(board.Pawn)
	pawnCount := int32(pawns.PopCount())

	queenside := pawns & (board.BitFile(board.FileA) | board.BitFile(board.FileB) | board.BitFile(board.FileC) | board.BitFile(board.FileD))
	bothFlanks := queenside != 0 && pawns&^queenside != 0

	complexity := 8*pawnCount + 9*int32(outflanking) - 110
	if bothFlanks {
		complexity += 18
	}
	if pos.NonPawnMaterial(board.White)+pos.NonPawnMaterial(board.Black) == 0 {
		complexity += 50 // pure pawn endings are won or lost, rarely drawn quietly
	}

	// Never flip the sign of the evaluation, only damp or boost it.
	switch {
	case eg > 0:
		return max32(complexity, -eg)
	case eg < 0:
		return -max32(complexity, eg)
	default:
		return 0
	}
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// scaleFactor compresses the endgame component in drawish material
// configurations: opposite-colored bishops with little else, or a leading
// side short of pawns.
func scaleFactor(pos *board.Position, eg int32) int32 {
	strong := board.White
	if eg < 0 {
		strong = board.Black
	}

	if hasOppositeColoredBishops(pos) {
		if pos.NonPawnMaterial(board.White) == int(board.NominalValue[board.Bishop].MG) &&
			pos.NonPawnMaterial(board.Black) == int(board.NominalValue[board.Bishop].MG) {
			return 16 // pure OCB: very drawish
		}
		return 46
	}

	strongPawns := pos.PiecesOf(strong, board.Pawn).PopCount()
	if strongPawns <= 2 && pos.NonPawnMaterial(strong) <= pos.NonPawnMaterial(strong.Opponent())+int(board.NominalValue[board.Bishop].MG) {
		return int32(36 + 7*strongPawns)
	}
	return 64
}

func hasOppositeColoredBishops(pos *board.Position) bool {
	wb := pos.PiecesOf(board.White, board.Bishop)
	bb := pos.PiecesOf(board.Black, board.Bishop)
	if wb.PopCount() != 1 || bb.PopCount() != 1 {
		return false
	}
	darkSquares := board.Bitboard(0xAA55AA55AA55AA55)
	return (wb&darkSquares != 0) != (bb&darkSquares != 0)
}

func fileDistance(a, b board.File) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

func rankDistance(a, b board.Rank) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

package eval

import (
	"github.com/umer-fa/morlock-don/pkg/board"
)

// materialEntry caches per-material-signature facts keyed by
// Position.MaterialKey: the game phase, and whether a specialized endgame
// evaluation replaces the general one. Like the pawn table, each Evaluator
// owns its own copy.
type materialEntry struct {
	key     board.Key
	phase   int
	special specialEval
	strong  board.Color // for specials that need to know who is winning
}

type specialEval uint8

const (
	specialNone specialEval = iota
	specialDraw             // insufficient mating material: KK, KNK, KBK, KNNK
	specialKXK              // lone king versus mating material
)

const materialTableSize = 1 << 13

type materialTable [materialTableSize]materialEntry

func (t *materialTable) probe(pos *board.Position) *materialEntry {
	key := pos.MaterialKey()
	e := &t[uint64(key)&(materialTableSize-1)]
	if e.key == key {
		return e
	}
	*e = materialEntry{key: key, phase: pos.Phase()}
	e.special, e.strong = classifyMaterial(pos)
	return e
}

func classifyMaterial(pos *board.Position) (specialEval, board.Color) {
	wMinors := pos.PiecesOf(board.White, board.Knight) | pos.PiecesOf(board.White, board.Bishop)
	bMinors := pos.PiecesOf(board.Black, board.Knight) | pos.PiecesOf(board.Black, board.Bishop)
	wNpm := pos.NonPawnMaterial(board.White)
	bNpm := pos.NonPawnMaterial(board.Black)
	wPawns := pos.PiecesOf(board.White, board.Pawn)
	bPawns := pos.PiecesOf(board.Black, board.Pawn)

	if wPawns == 0 && bPawns == 0 {
		// Bare-minors endings that cannot be won against any defense.
		if insufficientSide(wNpm, wMinors, pos, board.White) && insufficientSide(bNpm, bMinors, pos, board.Black) {
			return specialDraw, board.White
		}
	}

	if bNpm == 0 && bPawns == 0 && canForceMate(pos, board.White) {
		return specialKXK, board.White
	}
	if wNpm == 0 && wPawns == 0 && canForceMate(pos, board.Black) {
		return specialKXK, board.Black
	}
	return specialNone, board.White
}

// insufficientSide reports whether a side without pawns lacks mating
// material: a bare king, a single minor, or two knights.
func insufficientSide(npm int, minors board.Bitboard, pos *board.Position, c board.Color) bool {
	if npm == 0 {
		return true
	}
	if npm <= int(board.NominalValue[board.Bishop].MG) && minors.PopCount() == 1 {
		return true
	}
	knights := pos.PiecesOf(c, board.Knight)
	return minors == knights && knights.PopCount() == 2
}

// canForceMate reports whether c's material suffices to mate a lone king: a
// rook or queen, two bishops on opposite colors, a bishop and knight, or a
// pawn (which promotes).
func canForceMate(pos *board.Position, c board.Color) bool {
	if pos.PiecesOf(c, board.Rook)|pos.PiecesOf(c, board.Queen) != 0 {
		return true
	}
	if pos.PiecesOf(c, board.Pawn) != 0 {
		return true
	}
	bishops := pos.PiecesOf(c, board.Bishop)
	knights := pos.PiecesOf(c, board.Knight)
	dark := board.Bitboard(0xAA55AA55AA55AA55)
	if bishops&dark != 0 && bishops&^dark != 0 {
		return true
	}
	return bishops != 0 && knights != 0
}

// evaluateKXK drives the lone king to a corner and the strong king next to
// it, the standard mate-helper shape for trivially won endings. The score is
// built from the strong side's point of view and returned from the side to
// move's, negated when the weak side is to move.
func evaluateKXK(pos *board.Position, strong board.Color) int {
	weak := strong.Opponent()
	weakKsq := pos.KingSquare(weak)
	strongKsq := pos.KingSquare(strong)

	v := pos.NonPawnMaterial(strong) +
		pos.PiecesOf(strong, board.Pawn).PopCount()*int(board.NominalValue[board.Pawn].EG) +
		pushToEdge(weakKsq) +
		pushClose(strongKsq, weakKsq)

	// Comfortably winning: report it as nearly decisive so the search
	// prefers lines that make progress over shuffling.
	v += 8000
	if pos.Turn() != strong {
		v = -v
	}
	return v
}

// pushToEdge grows as sq approaches any board edge or corner.
func pushToEdge(sq board.Square) int {
	fd := int(sq.File())
	if fd > 7-fd {
		fd = 7 - fd
	}
	rd := int(sq.Rank())
	if rd > 7-rd {
		rd = 7 - rd
	}
	return 90 - (7*fd*fd/2 + 7*rd*rd/2)
}

// pushClose rewards the two kings being near each other.
func pushClose(a, b board.Square) int {
	return 140 - 20*board.SquareDistance(a, b)
}

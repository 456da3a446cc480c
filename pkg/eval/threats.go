package eval

import "github.com/umer-fa/morlock-don/pkg/board"

// Threat bonuses indexed by the attacked piece type.
var (
	threatByMinor = [board.NumPieceTypes]score{
		board.Pawn: {0, 31}, board.Knight: {39, 42}, board.Bishop: {57, 44},
		board.Rook: {68, 112}, board.Queen: {47, 120},
	}
	threatByRook = [board.NumPieceTypes]score{
		board.Pawn: {2, 44}, board.Knight: {36, 71}, board.Bishop: {36, 61},
		board.Rook: {0, 38}, board.Queen: {51, 38},
	}
	hangingBonus       = score{62, 34}
	threatByKing       = score{24, 76}
	threatByPawnPush   = score{45, 36}
	threatBySafePawn   = score{165, 133}
	sliderOnQueen      = score{59, 18}
	knightOnQueen      = score{16, 12}
	restrictedPenalty  = score{7, 6}
)

// threats scores c's pressure on enemy pieces: attacks by minors and rooks
// on valuable targets, hanging pieces, safe pawn attacks, pawn-push threats,
// and slider/knight alignment against the enemy queen.
func (ei *evalInfo) threats(c board.Color) score {
	pos := ei.pos
	them := c.Opponent()
	var s score

	nonPawnEnemies := pos.ColorBB(them) &^ pos.PiecesOf(them, board.Pawn)

	// Enemies not defended by a pawn and under attack are structurally
	// weak; enemies defended strictly less often than attacked hang.
	stronglyProtected := ei.attackedBy[them][board.Pawn] |
		(ei.attackedBy2[them] & ^ei.attackedBy2[c])
	weak := pos.ColorBB(them) & ^stronglyProtected & ei.attackedByAll[c]

	defended := nonPawnEnemies & stronglyProtected
	if defended|weak != 0 {
		for bb := (defended | weak) & (ei.attackedBy[c][board.Knight] | ei.attackedBy[c][board.Bishop]); bb != 0; {
			var sq board.Square
			sq, bb = bb.PopLSB()
			_, pt, _ := pos.PieceOn(sq).Split()
			s = s.add(threatByMinor[pt])
		}
		for bb := weak & ei.attackedBy[c][board.Rook]; bb != 0; {
			var sq board.Square
			sq, bb = bb.PopLSB()
			_, pt, _ := pos.PieceOn(sq).Split()
			s = s.add(threatByRook[pt])
		}
		if weak&ei.attackedBy[c][board.King] != 0 {
			s = s.add(threatByKing)
		}

		hanging := weak & (^ei.attackedByAll[them] | (nonPawnEnemies & ei.attackedBy2[c]))
		n := int32(hanging.PopCount())
		s.MG += n * hangingBonus.MG
		s.EG += n * hangingBonus.EG
	}

	// Enemy moves cramped by our attacks on otherwise-defended squares.
	restricted := ei.attackedByAll[them] & ^stronglyProtected & ei.attackedByAll[c]
	rn := int32(restricted.PopCount())
	s.MG += rn * restrictedPenalty.MG
	s.EG += rn * restrictedPenalty.EG

	// Our pawns, standing or after a safe push, attacking non-pawn enemies.
	safe := ^ei.attackedByAll[them] | ei.attackedByAll[c]
	safePawns := pos.PiecesOf(c, board.Pawn) & safe
	pn := int32((board.PawnAttacksFrom(c, safePawns) & nonPawnEnemies).PopCount())
	s.MG += pn * threatBySafePawn.MG
	s.EG += pn * threatBySafePawn.EG

	pushes := board.PawnPush(c, pos.PiecesOf(c, board.Pawn)) &^ pos.Occupied()
	pushes |= board.PawnPush(c, pushes&relRankMask(c, board.Rank3)) &^ pos.Occupied()
	pushes &= ^ei.attackedBy[them][board.Pawn] & safe
	tn := int32((board.PawnAttacksFrom(c, pushes) & nonPawnEnemies).PopCount())
	s.MG += tn * threatByPawnPush.MG
	s.EG += tn * threatByPawnPush.EG

	// Pins and skewers brewing against the enemy queen.
	if queens := pos.PiecesOf(them, board.Queen); queens.PopCount() == 1 {
		qsq := queens.LSB()
		occ := pos.Occupied()
		safeSpots := ei.mobilityArea[c] & ^stronglyProtected

		knightSpots := board.KnightAttacks(qsq) & ei.attackedBy[c][board.Knight] & safeSpots
		kn := int32(knightSpots.PopCount())
		s.MG += kn * knightOnQueen.MG
		s.EG += kn * knightOnQueen.EG

		sliderSpots := ((board.BishopAttacks(qsq, occ) & ei.attackedBy[c][board.Bishop]) |
			(board.RookAttacks(qsq, occ) & ei.attackedBy[c][board.Rook])) &
			safeSpots & ei.attackedBy2[c]
		sn := int32(sliderSpots.PopCount())
		s.MG += sn * sliderOnQueen.MG
		s.EG += sn * sliderOnQueen.EG
	}

	return s
}

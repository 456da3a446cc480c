package eval

import "github.com/umer-fa/morlock-don/pkg/board"

// kingAttackWeight[pt] is the per-attacker contribution to the king-danger
// index. The lopsided ordering (knight heaviest, queen lightest) is not a
// typo: the queen's threat is captured separately by the safe-check and
// attack-count terms, while a minor parked next to the king is pure danger.
var kingAttackWeight = [board.NumPieceTypes]int32{
	board.Knight: 78, board.Bishop: 56, board.Rook: 45, board.Queen: 11,
}

// Safe-check bonuses per checking piece type.
var safeCheckBonus = [board.NumPieceTypes]int32{
	board.Knight: 790, board.Bishop: 635, board.Rook: 880, board.Queen: 780,
}

const kingFlankAttackPenalty = 8 // per attacked flank square, middlegame

// king scores the safety of c's king: pawn shelter and storm, the danger
// index built from attacker count/weight/ring attacks and safe checks, the
// enemy grip on the king's flank, and relief when the enemy queen is gone.
// The danger index is squared and divided by 4096 so isolated nuisances stay
// cheap while a coordinated attack explodes.
func (ei *evalInfo) king(c board.Color) score {
	pos := ei.pos
	them := c.Opponent()
	ksq := pos.KingSquare(c)
	occ := pos.Occupied()
	var s score

	shelter := ei.pe.shelter(pos, c, ksq)
	s.MG += shelter

	// Squares from which each piece type would check the king, that the
	// enemy actually attacks, and where we could not simply capture or
	// defend: "safe checks".
	safe := ^pos.ColorBB(them) & (^ei.attackedByAll[c] | (ei.attackedBy2[them] & ^ei.attackedBy2[c] & ^ei.attackedBy[c][board.Pawn]))

	rookChecks := board.RookAttacks(ksq, occ)
	bishopChecks := board.BishopAttacks(ksq, occ)

	var checks int32
	if rookChecks&safe&ei.attackedBy[them][board.Rook] != 0 {
		checks += safeCheckBonus[board.Rook]
	}
	if (rookChecks|bishopChecks)&safe&ei.attackedBy[them][board.Queen] != 0 {
		checks += safeCheckBonus[board.Queen]
	}
	if bishopChecks&safe&ei.attackedBy[them][board.Bishop] != 0 {
		checks += safeCheckBonus[board.Bishop]
	}
	if board.KnightAttacks(ksq)&safe&ei.attackedBy[them][board.Knight] != 0 {
		checks += safeCheckBonus[board.Knight]
	}

	flank := kingFlank(ksq.File()) & campOf(c)
	flankAttacks := int32((flank & ei.attackedByAll[them]).PopCount() +
		(flank & ei.attackedBy2[them]).PopCount())

	danger := ei.kingAttackersCount[c]*ei.kingAttackersWeight[c] +
		69*ei.kingAttacksCount[c] +
		checks +
		3*flankAttacks/2 -
		shelter*4/3 -
		10
	if pos.PiecesOf(them, board.Queen) == 0 {
		danger -= 870
	}

	if danger > 0 {
		s.MG -= danger * danger / 4096
		s.EG -= danger / 16
	}

	s.MG -= kingFlankAttackPenalty * flankAttacks

	return s
}

// kingFlank is the three-to-four file band the king lives on.
func kingFlank(f board.File) board.Bitboard {
	switch {
	case f <= board.FileC:
		return board.BitFile(board.FileA) | board.BitFile(board.FileB) | board.BitFile(board.FileC) | board.BitFile(board.FileD)
	case f >= board.FileF:
		return board.BitFile(board.FileE) | board.BitFile(board.FileF) | board.BitFile(board.FileG) | board.BitFile(board.FileH)
	default:
		return board.BitFile(f-1) | board.BitFile(f) | board.BitFile(f+1)
	}
}

// campOf is the half of the board color c's king normally lives in (their
// back three ranks plus the middle).
func campOf(c board.Color) board.Bitboard {
	if c == board.White {
		return board.BitRank(board.Rank1) | board.BitRank(board.Rank2) | board.BitRank(board.Rank3) |
			board.BitRank(board.Rank4) | board.BitRank(board.Rank5)
	}
	return board.BitRank(board.Rank8) | board.BitRank(board.Rank7) | board.BitRank(board.Rank6) |
		board.BitRank(board.Rank5) | board.BitRank(board.Rank4)
}

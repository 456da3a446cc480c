package eval

import "github.com/umer-fa/morlock-don/pkg/board"

// passedBonus[relRank] is the base (MG, EG) bonus for a passed pawn on the
// given rank as seen from its own side, rank 0 = home rank.
var passedBonus = [board.NumRanks]score{
	{0, 0}, {10, 28}, {17, 33}, {15, 41}, {62, 72}, {168, 177}, {276, 260}, {0, 0},
}

// passedFilePenalty nudges edge passers down: the defending king covers them
// more easily.
var passedFilePenalty = score{11, 8}

// passed scores c's passed pawns (detected by the pawn-structure cache):
// rank-scaled base bonus, king proximity of both kings to the path, and
// whether the advance square and the full promotion path are free or
// covered.
func (ei *evalInfo) passed(c board.Color) score {
	pos := ei.pos
	them := c.Opponent()
	occ := pos.Occupied()
	var s score

	for bb := ei.pe.passed[c]; bb != 0; {
		var sq board.Square
		sq, bb = bb.PopLSB()
		rr := int32(sq.RelativeRank(c))

		b := passedBonus[rr]

		if rr > 2 {
			w := (rr - 2) * (rr - 2) + 2
			block := pushSquare(c, sq)

			// The kings: the closer ours and the farther theirs from the
			// square in front, the better -- endgame only.
			b.EG += int32(5*board.SquareDistance(pos.KingSquare(them), block)-
				2*board.SquareDistance(pos.KingSquare(c), block)) * w

			if block.Rank() != board.PawnPromotionRank(c) {
				b.EG -= int32(board.SquareDistance(pos.KingSquare(c), pushSquare(c, block))) * w
			}

			if !occ.IsSet(block) {
				path := forwardFill(c, sq)
				attacked := path & ei.attackedByAll[them]
				defendedPath := path & ei.attackedByAll[c]

				var k int32
				switch {
				case attacked == 0:
					k = 35
				case !attacked.IsSet(block):
					k = 20
				default:
					k = 9
				}
				if defendedPath == path {
					k += 6
				}
				b.MG += k * w
				b.EG += k * w
			}
		}

		f := sq.File()
		edge := int32(min(int(f), int(board.FileH-f)))
		b.MG -= passedFilePenalty.MG * (3 - edge)
		b.EG -= passedFilePenalty.EG * (3 - edge)

		s = s.add(b)
	}
	return s
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

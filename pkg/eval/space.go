package eval

import "github.com/umer-fa/morlock-don/pkg/board"

// space rewards safe central squares behind or on the pawn chain, weighted
// quadratically by piece count: space only matters while there are pieces
// to use it. Skipped in open positions (low non-pawn material) where it
// would just be noise.
func (ei *evalInfo) space(c board.Color) score {
	pos := ei.pos
	if pos.NonPawnMaterial(board.White)+pos.NonPawnMaterial(board.Black) < 3*int(board.NominalValue[board.Knight].MG) {
		return score{}
	}
	them := c.Opponent()

	central := board.BitFile(board.FileC) | board.BitFile(board.FileD) | board.BitFile(board.FileE) | board.BitFile(board.FileF)
	zone := central & (relRankMask(c, board.Rank2) | relRankMask(c, board.Rank3) | relRankMask(c, board.Rank4))

	safe := zone &^ pos.PiecesOf(c, board.Pawn) &^ ei.pe.attacks[them]

	// Squares behind own pawns count double.
	behind := pos.PiecesOf(c, board.Pawn)
	behind |= board.PawnPush(them, behind)
	behind |= board.PawnPush(them, board.PawnPush(them, behind))

	bonus := int32(safe.PopCount() + (safe & behind).PopCount())
	weight := int32((pos.ColorBB(c) &^ pos.PiecesOf(c, board.Pawn)).PopCount())

	return score{MG: bonus * weight * weight / 16, EG: 0}
}

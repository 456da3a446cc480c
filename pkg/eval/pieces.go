package eval

import "github.com/umer-fa/morlock-don/pkg/board"

// mobilityBonus[pt][count] is the (MG, EG) bonus for a piece of type pt
// seeing count squares in its mobility area, indexed 0..27 (queen's max).
// Values follow the shape of the classical mobility tables widely used in
// open-source engines: roughly linear with a flattening tail.
var mobilityBonus = [board.NumPieceTypes][28]score{
	board.Knight: {{-62, -81}, {-53, -56}, {-12, -31}, {-4, -16}, {3, 5}, {13, 11},
		{22, 17}, {28, 20}, {33, 25}},
	board.Bishop: {{-48, -59}, {-20, -23}, {16, -3}, {26, 13}, {38, 24}, {51, 42},
		{55, 54}, {63, 57}, {63, 65}, {68, 73}, {81, 78}, {81, 86}, {91, 88}, {98, 97}},
	board.Rook: {{-58, -76}, {-27, -18}, {-15, 28}, {-10, 55}, {-5, 69}, {-2, 82},
		{9, 112}, {16, 118}, {30, 132}, {29, 142}, {32, 155}, {38, 165}, {46, 166}, {48, 169}, {58, 171}},
	board.Queen: {{-39, -36}, {-21, -15}, {3, 8}, {3, 18}, {14, 34}, {22, 54},
		{28, 61}, {41, 73}, {43, 79}, {48, 92}, {56, 94}, {60, 104}, {60, 113}, {66, 120},
		{67, 123}, {70, 126}, {71, 133}, {73, 136}, {79, 140}, {88, 143}, {88, 148},
		{99, 166}, {102, 170}, {102, 175}, {106, 184}, {109, 191}, {113, 206}, {116, 212}},
}

var (
	outpostBonus       = [2]score{{22, 6}, {36, 12}} // [bishop, knight]
	minorBehindPawn    = score{9, 3}
	bishopLongDiagonal = score{22, 0}
	bishopPawnsPenalty = score{3, 7} // per own pawn on the bishop's square color
	rookOnFile         = [2]score{{18, 7}, {44, 20}} // [semi-open, open]
	rookTrappedPenalty = score{47, 4}
	queenPinPenalty    = score{49, 15}
	kingProtectorDist  = score{7, 8} // per square of distance from own king, minors
)

// pieces scores c's knights, bishops, rooks and queens: mobility in the
// restricted area, outposts, files, diagonals and the piece-specific
// patterns, while accumulating attack info for the king-safety and threat
// terms.
func (ei *evalInfo) pieces(c board.Color) score {
	pos := ei.pos
	them := c.Opponent()
	occ := pos.Occupied()
	ksq := pos.KingSquare(c)
	var s score

	for _, pt := range [4]board.PieceType{board.Knight, board.Bishop, board.Rook, board.Queen} {
		for bb := pos.PiecesOf(c, pt); bb != 0; {
			var sq board.Square
			sq, bb = bb.PopLSB()

			var att board.Bitboard
			switch pt {
			case board.Knight:
				att = board.KnightAttacks(sq)
			case board.Bishop:
				// X-ray through own queen: batteries count in full.
				att = board.BishopAttacks(sq, occ&^pos.PiecesOf(c, board.Queen))
			case board.Rook:
				att = board.RookAttacks(sq, occ&^pos.PiecesOf(c, board.Queen)&^pos.PiecesOf(c, board.Rook))
			case board.Queen:
				att = board.Attacks(board.Queen, sq, occ)
			}
			if pos.Pinned(c, sq) {
				att &= board.Line(ksq, sq)
			}
			ei.markAttacks(c, pt, att)

			mob := (att & ei.mobilityArea[c]).PopCount()
			if mob >= len(mobilityBonus[pt]) {
				mob = len(mobilityBonus[pt]) - 1
			}
			s = s.add(mobilityBonus[pt][mob])

			switch pt {
			case board.Knight, board.Bishop:
				if outpostSquares(ei, c).IsSet(sq) {
					idx := 0
					if pt == board.Knight {
						idx = 1
					}
					s = s.add(outpostBonus[idx])
				}
				if board.PawnPush(them, pos.PiecesOf(c, board.Pawn)).IsSet(sq) {
					s = s.add(minorBehindPawn)
				}
				d := int32(board.SquareDistance(sq, ksq))
				s.MG -= d * kingProtectorDist.MG
				s.EG -= d * kingProtectorDist.EG

				if pt == board.Bishop {
					if longDiagonal().IsSet(sq) && att&longDiagonal()&centerSquares() != 0 {
						s = s.add(bishopLongDiagonal)
					}
					n := int32((pos.PiecesOf(c, board.Pawn) & sameColorSquares(sq)).PopCount())
					s.MG -= n * bishopPawnsPenalty.MG
					s.EG -= n * bishopPawnsPenalty.EG
				}

			case board.Rook:
				file := board.BitFile(sq.File())
				switch {
				case ei.pe.semiopen[c]&ei.pe.semiopen[them]&file != 0:
					s = s.add(rookOnFile[1])
				case ei.pe.semiopen[c]&file != 0:
					s = s.add(rookOnFile[0])
				default:
					// Closed file: a rook boxed in by its own king with no
					// mobility to speak of is close to a spectator.
					if mob <= 3 {
						kf := ksq.File()
						if (kf < board.FileE) == (sq.File() < kf) {
							s = s.sub(rookTrappedPenalty)
						}
					}
				}

			case board.Queen:
				snipers := pos.PiecesOf(them, board.Bishop) | pos.PiecesOf(them, board.Rook)
				if pos.SliderBlockers(snipers, sq) != 0 {
					s = s.sub(queenPinPenalty)
				}
			}
		}
	}
	return s
}

// outpostSquares is the set of squares in enemy territory that are defended
// by an own pawn and can never be attacked by an enemy pawn.
func outpostSquares(ei *evalInfo, c board.Color) board.Bitboard {
	them := c.Opponent()
	territory := relRankMask(c, board.Rank4) | relRankMask(c, board.Rank5) | relRankMask(c, board.Rank6)
	return territory & ei.pe.attacks[c] &^ ei.pe.attackSpan[them]
}

func longDiagonal() board.Bitboard {
	return board.Bitboard(0x8040201008040201 | 0x0102040810204080)
}

func centerSquares() board.Bitboard {
	return board.BitMask(board.D4) | board.BitMask(board.E4) | board.BitMask(board.D5) | board.BitMask(board.E5)
}

func sameColorSquares(sq board.Square) board.Bitboard {
	dark := board.Bitboard(0xAA55AA55AA55AA55)
	if dark.IsSet(sq) {
		return dark
	}
	return ^dark
}

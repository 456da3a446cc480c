package board

// GenKind selects which subset of pseudo-legal moves Generate produces,
// matching the staged move generation the move picker (pkg/search) needs.
type GenKind uint8

const (
	GenCaptures    GenKind = iota // captures (all capture-promotions) and queen/knight push promotions
	GenQuiets                     // non-captures, including rook/bishop push promotions
	GenEvasions                   // any move while in check
	GenQuietChecks                // non-captures that give check
	GenAll                        // captures + quiets, not legality-filtered
)

// Generate appends pseudo-legal moves of the given kind to moves and returns
// the extended slice. Pass nil to allocate a fresh slice.
func (p *Position) Generate(kind GenKind, moves []Move) []Move {
	us := p.turn
	occ := p.Occupied()
	target := ^p.byColor[us]

	if kind == GenEvasions {
		return p.generateEvasions(moves)
	}
	if kind == GenQuietChecks {
		for _, m := range p.Generate(GenQuiets, nil) {
			if p.GivesCheck(m) {
				moves = append(moves, m)
			}
		}
		return moves
	}

	switch kind {
	case GenCaptures:
		target &= p.byColor[us.Opponent()]
	case GenQuiets:
		target &^= p.byColor[us.Opponent()]
	}

	moves = p.generatePawnMoves(moves, kind)
	moves = p.generatePieceMoves(Knight, moves, occ, target)
	moves = p.generatePieceMoves(Bishop, moves, occ, target)
	moves = p.generatePieceMoves(Rook, moves, occ, target)
	moves = p.generatePieceMoves(Queen, moves, occ, target)
	moves = p.generateKingMoves(moves, occ, target)

	if kind != GenCaptures {
		moves = p.generateCastles(moves)
	}
	return moves
}

// GenerateLegal appends every legal move to moves, filtering Generate's
// pseudo-legal output through InCheck-aware evasion generation and Legal.
func (p *Position) GenerateLegal(moves []Move) []Move {
	var pseudo []Move
	if p.InCheck() {
		pseudo = p.Generate(GenEvasions, nil)
	} else {
		pseudo = p.Generate(GenAll, nil)
	}
	for _, m := range pseudo {
		if p.Legal(m) {
			moves = append(moves, m)
		}
	}
	return moves
}

func (p *Position) generatePieceMoves(pt PieceType, moves []Move, occ, target Bitboard) []Move {
	us := p.turn
	for bb := p.PiecesOf(us, pt); bb != 0; {
		var from Square
		from, bb = bb.PopLSB()
		for att := Attacks(pt, from, occ) & target; att != 0; {
			var to Square
			to, att = att.PopLSB()
			moves = append(moves, NewMove(from, to))
		}
	}
	return moves
}

func (p *Position) generateKingMoves(moves []Move, occ, target Bitboard) []Move {
	us := p.turn
	from := p.kingFrom[us]
	for att := KingAttacks(from) & target; att != 0; {
		var to Square
		to, att = att.PopLSB()
		moves = append(moves, NewMove(from, to))
	}
	return moves
}

func (p *Position) generateCastles(moves []Move) []Move {
	us := p.turn
	for side := CastleSide(0); side < NumCastleSides; side++ {
		if p.CanCastle(us, side) {
			moves = append(moves, NewCastle(p.kingFrom[us], p.castleRookFrom[us][side]))
		}
	}
	return moves
}

func (p *Position) generatePawnMoves(moves []Move, kind GenKind) []Move {
	us := p.turn
	them := us.Opponent()
	occ := p.Occupied()
	pawns := p.PiecesOf(us, Pawn)
	promoRank := PawnPromotionRank(us)

	single := PawnPush(us, pawns) &^ occ
	promoters := single & BitRank(promoRank)
	single &^= BitRank(promoRank)

	if kind != GenCaptures {
		for bb := single; bb != 0; {
			var to Square
			to, bb = bb.PopLSB()
			from := back(us, to)
			moves = append(moves, NewMove(from, to))
		}
		double := PawnPush(us, single) &^ occ & BitRank(PawnJumpRank(us))
		for bb := double; bb != 0; {
			var to Square
			to, bb = bb.PopLSB()
			from := back(us, back(us, to))
			moves = append(moves, NewMove(from, to))
		}
	}
	// Push promotions: queen and knight go with the captures, rook and bishop
	// with the quiets, and GenAll takes all four.
	for bb := promoters; bb != 0; {
		var to Square
		to, bb = bb.PopLSB()
		from := back(us, to)
		for _, pt := range promoPieces {
			tactical := pt == Queen || pt == Knight
			if kind == GenAll || (kind == GenCaptures) == tactical {
				moves = append(moves, NewPromotion(from, to, pt))
			}
		}
	}

	if kind != GenQuiets {
		for _, dir := range [2]func(Color, Bitboard) Bitboard{
			func(c Color, bb Bitboard) Bitboard { return shiftCaptureWest(c, bb) },
			func(c Color, bb Bitboard) Bitboard { return shiftCaptureEast(c, bb) },
		} {
			caps := dir(us, pawns) & p.byColor[them]
			promoters := caps & BitRank(promoRank)
			caps &^= BitRank(promoRank)
			for bb := caps; bb != 0; {
				var to Square
				to, bb = bb.PopLSB()
				from := captureBack(us, to, dir)
				moves = append(moves, NewMove(from, to))
			}
			for bb := promoters; bb != 0; {
				var to Square
				to, bb = bb.PopLSB()
				from := captureBack(us, to, dir)
				for _, pt := range promoPieces {
					moves = append(moves, NewPromotion(from, to, pt))
				}
			}
		}
		if ep := p.EPSquare(); ep.IsValid() {
			for att := PawnAttacks(them, ep) & pawns; att != 0; {
				var from Square
				from, att = att.PopLSB()
				moves = append(moves, NewEnPassant(from, ep))
			}
		}
	}
	return moves
}

func back(c Color, sq Square) Square {
	if c == White {
		return sq - 8
	}
	return sq + 8
}

func shiftCaptureWest(c Color, bb Bitboard) Bitboard {
	if c == White {
		return shiftNorthWest(bb)
	}
	return shiftSouthWest(bb)
}

func shiftCaptureEast(c Color, bb Bitboard) Bitboard {
	if c == White {
		return shiftNorthEast(bb)
	}
	return shiftSouthEast(bb)
}

func captureBack(c Color, to Square, dir func(Color, Bitboard) Bitboard) Square {
	// Re-derive the origin by testing both diagonal offsets; cheap given the
	// tiny fixed set of candidates and avoids a second shift-direction table.
	for _, delta := range [2]int{7, 9} {
		var from int
		if c == White {
			from = int(to) - delta
		} else {
			from = int(to) + delta
		}
		if from < 0 || from >= 64 {
			continue
		}
		if SquareDistance(Square(from), to) == 1 && dir(c, BitMask(Square(from))) == BitMask(to) {
			return Square(from)
		}
	}
	return to
}

// generateEvasions generates moves while the side to move is in check:
// king moves off the attacked squares, and (for a single checker) captures
// of the checker or interpositions on the line between it and the king.
func (p *Position) generateEvasions(moves []Move) []Move {
	us := p.turn
	occ := p.Occupied()
	ksq := p.kingFrom[us]
	checkers := p.Checkers()

	kingOcc := occ &^ BitMask(ksq)
	for att := KingAttacks(ksq) &^ p.byColor[us]; att != 0; {
		var to Square
		to, att = att.PopLSB()
		if p.attackersTo(to, kingOcc)&p.byColor[us.Opponent()] == 0 {
			moves = append(moves, NewMove(ksq, to))
		}
	}

	if checkers.PopCount() > 1 {
		return moves // double check: only king moves are legal
	}

	checkerSq := checkers.LSB()
	target := checkers | Between(ksq, checkerSq)

	moves = p.generatePawnEvasions(moves, target)
	moves = p.generatePieceMoves(Knight, moves, occ, target&^p.byColor[us])
	moves = p.generatePieceMoves(Bishop, moves, occ, target&^p.byColor[us])
	moves = p.generatePieceMoves(Rook, moves, occ, target&^p.byColor[us])
	moves = p.generatePieceMoves(Queen, moves, occ, target&^p.byColor[us])
	return moves
}

func (p *Position) generatePawnEvasions(moves []Move, target Bitboard) []Move {
	all := p.Generate(GenAll, nil)
	for _, m := range all {
		_, pt, _ := p.board[m.From()].Split()
		if pt != Pawn {
			continue
		}
		if m.Type() == EnPassant {
			capSq := NewSquare(m.To().File(), m.From().Rank())
			if target.IsSet(m.To()) || target.IsSet(capSq) {
				moves = append(moves, m)
			}
			continue
		}
		if target.IsSet(m.To()) {
			moves = append(moves, m)
		}
	}
	return moves
}

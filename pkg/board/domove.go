package board

// removePiece/placePiece/movePiece mutate the square-centric and bitboard
// representations only; callers are responsible for Zobrist/PSQ bookkeeping.
func (p *Position) removePiece(c Color, pt PieceType, sq Square) {
	p.board[sq] = NoPiece
	p.byColor[c] &^= BitMask(sq)
	p.byType[pt] &^= BitMask(sq)
	p.pieceCount[c][pt]--
}

func (p *Position) placePiece(c Color, pt PieceType, sq Square) {
	p.board[sq] = MakePiece(c, pt)
	p.byColor[c] |= BitMask(sq)
	p.byType[pt] |= BitMask(sq)
	p.pieceCount[c][pt]++
	if pt == King {
		p.kingFrom[c] = sq
	}
}

func (p *Position) movePiece(c Color, pt PieceType, from, to Square) {
	mask := BitMask(from) | BitMask(to)
	p.byColor[c] ^= mask
	p.byType[pt] ^= mask
	p.board[to] = p.board[from]
	p.board[from] = NoPiece
	if pt == King {
		p.kingFrom[c] = to
	}
}

// DoMove applies pseudo-legal move m, assumed already known to be Legal, and
// pushes a new StateInfo recording everything needed for UndoMove. givesCheck
// is the caller's GivesCheck(m); DoMove does not read it, since the new
// state's check info is recomputed by updateCheckInfo either way.
func (p *Position) DoMove(m Move, givesCheck bool) {
	prev := p.st()
	us, them := p.turn, p.turn.Opponent()
	from, to := m.From(), m.To()
	pc := p.board[from]
	_, pt, _ := pc.Split()

	next := StateInfo{
		Key:           prev.Key,
		CastleRights:  prev.CastleRights,
		HalfmoveClock: prev.HalfmoveClock + 1,
		NullPly:       prev.NullPly + 1,
		CapturedType:  NoPieceType,
		EPSquare:      NoSquare,
	}
	next.PawnKey = prev.PawnKey
	next.MaterialKey = prev.MaterialKey

	next.Key ^= turnKey()
	if prev.EPSquare.IsValid() {
		next.Key ^= enPassantKey(prev.EPSquare.File())
	}

	if pt == Pawn || (m.Type() != Castle && p.board[to] != NoPiece) {
		next.HalfmoveClock = 0
	}

	switch m.Type() {
	case Castle:
		rookFrom := to
		side := KingSide
		if rookFrom.File() < from.File() {
			side = QueenSide
		}
		kingTo := NewSquare(FileG, from.Rank())
		rookTo := NewSquare(FileF, from.Rank())
		if side == QueenSide {
			kingTo = NewSquare(FileC, from.Rank())
			rookTo = NewSquare(FileD, from.Rank())
		}
		p.psq = p.psq.Sub(PSQValue(us, King, from)).Add(PSQValue(us, King, kingTo))
		p.psq = p.psq.Sub(PSQValue(us, Rook, rookFrom)).Add(PSQValue(us, Rook, rookTo))
		next.Key ^= pieceSquareKey(us, King, from) ^ pieceSquareKey(us, King, kingTo)
		next.Key ^= pieceSquareKey(us, Rook, rookFrom) ^ pieceSquareKey(us, Rook, rookTo)

		p.removePiece(us, King, from)
		p.removePiece(us, Rook, rookFrom)
		p.placePiece(us, King, kingTo)
		p.placePiece(us, Rook, rookTo)

	case EnPassant:
		capSq := NewSquare(to.File(), from.Rank())
		next.CapturedType = Pawn
		p.psq = p.psq.Sub(PSQValue(them, Pawn, capSq))
		next.Key ^= pieceSquareKey(them, Pawn, capSq)
		next.PawnKey ^= pieceSquareKey(them, Pawn, capSq)
		p.removePiece(them, Pawn, capSq)

		p.psq = p.psq.Sub(PSQValue(us, Pawn, from)).Add(PSQValue(us, Pawn, to))
		next.Key ^= pieceSquareKey(us, Pawn, from) ^ pieceSquareKey(us, Pawn, to)
		next.PawnKey ^= pieceSquareKey(us, Pawn, from) ^ pieceSquareKey(us, Pawn, to)
		p.movePiece(us, Pawn, from, to)

	case Promote:
		promo := m.PromotionType()
		if cap := p.board[to]; cap != NoPiece {
			_, capType, _ := cap.Split()
			next.CapturedType = capType
			p.psq = p.psq.Sub(PSQValue(them, capType, to))
			next.Key ^= pieceSquareKey(them, capType, to)
			p.removePiece(them, capType, to)
		}
		next.Promoted = true
		p.psq = p.psq.Sub(PSQValue(us, Pawn, from)).Add(PSQValue(us, promo, to))
		next.Key ^= pieceSquareKey(us, Pawn, from) ^ pieceSquareKey(us, promo, to)
		next.PawnKey ^= pieceSquareKey(us, Pawn, from)
		p.removePiece(us, Pawn, from)
		p.placePiece(us, promo, to)

	default: // Simple
		if cap := p.board[to]; cap != NoPiece {
			_, capType, _ := cap.Split()
			next.CapturedType = capType
			p.psq = p.psq.Sub(PSQValue(them, capType, to))
			next.Key ^= pieceSquareKey(them, capType, to)
			if capType == Pawn {
				next.PawnKey ^= pieceSquareKey(them, Pawn, to)
			}
			p.removePiece(them, capType, to)
		}
		p.psq = p.psq.Sub(PSQValue(us, pt, from)).Add(PSQValue(us, pt, to))
		next.Key ^= pieceSquareKey(us, pt, from) ^ pieceSquareKey(us, pt, to)
		if pt == Pawn {
			next.PawnKey ^= pieceSquareKey(us, Pawn, from) ^ pieceSquareKey(us, Pawn, to)
			if to == from+16 || from == to+16 {
				epSq := Square((int(from) + int(to)) / 2)
				if PawnAttacks(us, epSq)&p.PiecesOf(them, Pawn) != 0 {
					next.EPSquare = epSq
					next.Key ^= enPassantKey(epSq.File())
				}
			}
		}
		p.movePiece(us, pt, from, to)
	}

	if next.CapturedType != NoPieceType || next.Promoted {
		next.MaterialKey = p.computeMaterialKeyFromScratch()
	}

	next.CastleRights &^= p.castleRightsMask[from] | p.castleRightsMask[to]
	if next.CastleRights != prev.CastleRights {
		next.Key ^= castlingKey(prev.CastleRights) ^ castlingKey(next.CastleRights)
	}

	p.turn = them
	p.ply++
	p.states = append(p.states, next)

	p.updateCheckInfo()
	p.updateRepetition()
}

// UndoMove reverses the effect of the most recent DoMove(m, ...).
func (p *Position) UndoMove(m Move) {
	p.turn = p.turn.Opponent()
	p.ply--
	us, them := p.turn, p.turn.Opponent()
	from, to := m.From(), m.To()

	switch m.Type() {
	case Castle:
		rookFrom := to
		side := KingSide
		if rookFrom.File() < from.File() {
			side = QueenSide
		}
		kingTo := NewSquare(FileG, from.Rank())
		rookTo := NewSquare(FileF, from.Rank())
		if side == QueenSide {
			kingTo = NewSquare(FileC, from.Rank())
			rookTo = NewSquare(FileD, from.Rank())
		}
		p.removePiece(us, King, kingTo)
		p.removePiece(us, Rook, rookTo)
		p.placePiece(us, King, from)
		p.placePiece(us, Rook, rookFrom)
		p.psq = p.psq.Add(PSQValue(us, King, from)).Sub(PSQValue(us, King, kingTo))
		p.psq = p.psq.Add(PSQValue(us, Rook, rookFrom)).Sub(PSQValue(us, Rook, rookTo))

	case EnPassant:
		capSq := NewSquare(to.File(), from.Rank())
		p.movePiece(us, Pawn, to, from)
		p.placePiece(them, Pawn, capSq)
		p.psq = p.psq.Add(PSQValue(us, Pawn, from)).Sub(PSQValue(us, Pawn, to))
		p.psq = p.psq.Add(PSQValue(them, Pawn, capSq))

	case Promote:
		promo := m.PromotionType()
		p.removePiece(us, promo, to)
		p.placePiece(us, Pawn, from)
		p.psq = p.psq.Add(PSQValue(us, Pawn, from)).Sub(PSQValue(us, promo, to))
		if capType := p.st().CapturedType; capType != NoPieceType {
			p.placePiece(them, capType, to)
			p.psq = p.psq.Add(PSQValue(them, capType, to))
		}

	default:
		_, pt, _ := p.board[to].Split()
		p.movePiece(us, pt, to, from)
		p.psq = p.psq.Add(PSQValue(us, pt, from)).Sub(PSQValue(us, pt, to))
		if capType := p.st().CapturedType; capType != NoPieceType {
			p.placePiece(them, capType, to)
			p.psq = p.psq.Add(PSQValue(them, capType, to))
		}
	}

	p.states = p.states[:len(p.states)-1]
}

// DoNull applies the null move used by null-move pruning: flips the side to
// move without moving a piece. EPSquare is cleared per the rules (a pawn
// capturable en passant stops being so once the opponent fails to take it
// immediately).
func (p *Position) DoNull() {
	prev := p.st()
	next := StateInfo{
		Key:           prev.Key ^ turnKey(),
		PawnKey:       prev.PawnKey,
		MaterialKey:   prev.MaterialKey,
		CastleRights:  prev.CastleRights,
		EPSquare:      NoSquare,
		HalfmoveClock: prev.HalfmoveClock + 1,
		NullPly:       0,
		CapturedType:  NoPieceType,
	}
	if prev.EPSquare.IsValid() {
		next.Key ^= enPassantKey(prev.EPSquare.File())
	}
	p.turn = p.turn.Opponent()
	p.ply++
	p.states = append(p.states, next)
	p.updateCheckInfo()
}

func (p *Position) UndoNull() {
	p.turn = p.turn.Opponent()
	p.ply--
	p.states = p.states[:len(p.states)-1]
}

// stateAt returns the state record d plies behind the current one, or nil if
// the undo stack does not reach that far back (the search root's setup moves
// were applied through this same stack, so usually it does).
func (p *Position) stateAt(d int) *StateInfo {
	i := len(p.states) - 1 - d
	if i < 0 {
		return nil
	}
	return &p.states[i]
}

// updateRepetition walks back through the undo stack (bounded by the
// halfmove clock, since a repetition cannot span an irreversible move) to
// classify the current position as described on StateInfo.Repetition.
func (p *Position) updateRepetition() {
	st := p.st()
	st.Repetition = 0

	end := st.HalfmoveClock
	if st.NullPly < end {
		end = st.NullPly
	}
	if end < 4 {
		return
	}

	for i := 4; i <= end; i += 2 {
		cur := p.stateAt(i)
		if cur == nil {
			return
		}
		if cur.Key == st.Key {
			if cur.Repetition != 0 {
				st.Repetition = -i
			} else {
				st.Repetition = i
			}
			return
		}
	}
}

// Draw reports whether the position is a draw by the fifty-move rule or by
// repetition. ply is the distance from the search root: a single repetition
// inside the search tree (closer than ply) is scored as a draw immediately,
// while a repetition spanning the root requires the second recurrence, per
// the usual twofold/threefold search convention.
func (p *Position) Draw(ply int) bool {
	st := p.st()
	if st.HalfmoveClock >= 100 && (st.Checkers == 0 || p.hasLegalMove()) {
		return true
	}
	return st.Repetition != 0 && st.Repetition < ply
}

// Cycled reports whether the side to move has a reversible move that would
// repeat a position already on the game/search path (see HasGameCycle; ply
// is the distance from the search root), used by search to detect upcoming
// repetitions cheaply via the Cuckoo table without a full Draw check.
func (p *Position) Cycled(ply int) bool {
	return HasGameCycle(p, ply)
}

func (p *Position) hasLegalMove() bool {
	moves := p.GenerateLegal(nil)
	return len(moves) > 0
}

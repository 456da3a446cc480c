package board

import "fmt"

// Position owns the full mutable board state needed for move generation and
// search: piece placement (both square-centric and bitboard forms), castling
// and en passant bookkeeping, incrementally maintained Zobrist/material/PSQ
// state, and the state-record undo stack (see StateInfo). Per the data
// model's lifecycle, a Position is constructed once (via Parse, in the fen
// package) and then mutated in place by DoMove/UndoMove; it is never copied --
// callers that need an independent position construct a second Position.
type Position struct {
	board [NumSquares]Piece

	byColor [NumColors]Bitboard
	byType  [NumPieceTypes]Bitboard // byType[pt] ignores color

	pieceCount [NumColors][NumPieceTypes]int

	turn Color
	ply  int // half-moves since game start

	psq PSQ // incremental material+piece-square score, White POV

	castleRookFrom [NumColors][NumCastleSides]Square // NoSquare if never available
	kingFrom       [NumColors]Square
	// castlePath is the set of squares (other than the king/rook origin) that
	// must be empty for the castle to be pseudo-legal, and castleKingPath is
	// the set of squares the king must not be attacked on while castling
	// (including its origin and destination).
	castlePath     [NumColors][NumCastleSides]Bitboard
	castleKingPath [NumColors][NumCastleSides]Bitboard
	// castleRightsMask[sq] is the set of castling rights lost when a piece
	// moves from or to sq (king/rook origin squares); zero elsewhere.
	castleRightsMask [NumSquares]CastleRight

	states []StateInfo // undo stack; states[len-1] is the current state
}

// NewEmptyPosition returns a Position with no pieces placed, default (no)
// castling rights and White to move. Used by the FEN parser to build up a
// position before calling Init.
func NewEmptyPosition() *Position {
	p := &Position{}
	for c := ZeroColor; c < NumColors; c++ {
		for side := CastleSide(0); side < NumCastleSides; side++ {
			p.castleRookFrom[c][side] = NoSquare
		}
		p.kingFrom[c] = NoSquare
	}
	return p
}

// Put places a piece on sq during initial setup. Must not be called after Init.
func (p *Position) Put(c Color, pt PieceType, sq Square) {
	p.board[sq] = MakePiece(c, pt)
	p.byColor[c] |= BitMask(sq)
	p.byType[pt] |= BitMask(sq)
	p.pieceCount[c][pt]++
	if pt == King {
		p.kingFrom[c] = sq
	}
	p.psq = p.psq.Add(PSQValue(c, pt, sq))
}

func (p *Position) SetTurn(c Color) { p.turn = c }

// SetCastleRight records that color c may castle on side with the rook
// starting on rookFrom, and computes the path masks used by move generation.
func (p *Position) SetCastleRight(c Color, side CastleSide, rookFrom Square) {
	p.castleRookFrom[c][side] = rookFrom
	kf := p.kingFrom[c]

	kingTo := NewSquare(FileG, kf.Rank())
	if side == QueenSide {
		kingTo = NewSquare(FileC, kf.Rank())
	}
	rookTo := NewSquare(FileF, kf.Rank())
	if side == QueenSide {
		rookTo = NewSquare(FileD, kf.Rank())
	}

	var path Bitboard
	path |= Between(kf, rookFrom)
	path |= Between(kf, kingTo) | BitMask(kingTo)
	path |= Between(rookFrom, rookTo) | BitMask(rookTo)
	path &^= BitMask(kf) | BitMask(rookFrom)
	p.castlePath[c][side] = path

	p.castleKingPath[c][side] = Between(kf, kingTo) | BitMask(kf) | BitMask(kingTo)

	p.castleRightsMask[kf] |= CastleRightOf(c, KingSide) | CastleRightOf(c, QueenSide)
	p.castleRightsMask[rookFrom] |= CastleRightOf(c, side)
}

// Init finalizes position setup after pieces/turn/castling/ep have been
// assigned via Put/SetTurn/SetCastleRight, computing the initial StateInfo
// (Zobrist/material/pawn keys and halfmove/ep/castle bookkeeping) from
// scratch and the cached check info. rights/ep/halfmove come from the FEN
// fields.
func (p *Position) Init(rights CastleRight, ep Square, halfmove int) error {
	if p.pieceCount[White][King] != 1 || p.pieceCount[Black][King] != 1 {
		return fmt.Errorf("board: position must have exactly one king per side")
	}
	if KingAttacks(p.kingFrom[White]).IsSet(p.kingFrom[Black]) {
		return fmt.Errorf("board: kings cannot be adjacent")
	}
	if p.byType[Pawn]&(BitRank(Rank1)|BitRank(Rank8)) != 0 {
		return fmt.Errorf("board: pawns cannot stand on the first or last rank")
	}

	st := StateInfo{
		CastleRights:  rights,
		EPSquare:      ep,
		HalfmoveClock: halfmove,
		CapturedType:  NoPieceType,
	}
	st.Key = p.computeKeyFromScratch(rights, ep)
	st.PawnKey = p.computePawnKeyFromScratch()
	st.MaterialKey = p.computeMaterialKeyFromScratch()
	p.states = []StateInfo{st}

	p.updateCheckInfo()

	if p.IsChecked(p.turn.Opponent()) {
		return fmt.Errorf("board: side not to move is in check")
	}
	return nil
}

func (p *Position) computeKeyFromScratch(rights CastleRight, ep Square) Key {
	var k Key
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		if pc := p.board[sq]; pc != NoPiece {
			c, pt, _ := pc.Split()
			k ^= pieceSquareKey(c, pt, sq)
		}
	}
	k ^= castlingKey(rights)
	if ep.IsValid() {
		k ^= enPassantKey(ep.File())
	}
	if p.turn == Black {
		k ^= turnKey()
	}
	return k
}

func (p *Position) computePawnKeyFromScratch() Key {
	var k Key
	bb := p.byType[Pawn]
	for bb != 0 {
		var sq Square
		sq, bb = bb.PopLSB()
		c, _, _ := p.board[sq].Split()
		k ^= pieceSquareKey(c, Pawn, sq)
	}
	return k
}

func (p *Position) computeMaterialKeyFromScratch() Key {
	var k Key
	for c := ZeroColor; c < NumColors; c++ {
		for _, pt := range AllPieceTypes {
			for n := 0; n < p.pieceCount[c][pt]; n++ {
				k ^= Key(n+1) * pieceSquareKey(c, pt, Square(pt)*7+Square(n))
			}
		}
	}
	return k
}

// --- basic accessors ---

func (p *Position) Turn() Color  { return p.turn }
func (p *Position) Ply() int     { return p.ply }
func (p *Position) PSQScore() PSQ { return p.psq }

func (p *Position) st() *StateInfo { return &p.states[len(p.states)-1] }

func (p *Position) Key() Key                { return p.st().Key }
func (p *Position) PawnKey() Key            { return p.st().PawnKey }
func (p *Position) MaterialKey() Key        { return p.st().MaterialKey }
func (p *Position) CastleRights() CastleRight { return p.st().CastleRights }
func (p *Position) EPSquare() Square         { return p.st().EPSquare }
func (p *Position) HalfmoveClock() int       { return p.st().HalfmoveClock }
func (p *Position) Checkers() Bitboard       { return p.st().Checkers }
func (p *Position) Repetition() int          { return p.st().Repetition }

func (p *Position) PieceOn(sq Square) Piece { return p.board[sq] }
func (p *Position) IsEmpty(sq Square) bool  { return p.board[sq] == NoPiece }

func (p *Position) Occupied() Bitboard       { return p.byColor[White] | p.byColor[Black] }
func (p *Position) ColorBB(c Color) Bitboard { return p.byColor[c] }
func (p *Position) TypeBB(pt PieceType) Bitboard { return p.byType[pt] }
func (p *Position) PiecesOf(c Color, pt PieceType) Bitboard {
	return p.byColor[c] & p.byType[pt]
}
func (p *Position) KingSquare(c Color) Square { return p.kingFrom[c] }

func (p *Position) NonPawnMaterial(c Color) int {
	var total int32
	for _, pt := range []PieceType{Knight, Bishop, Rook, Queen} {
		total += int32(p.pieceCount[c][pt]) * NominalValue[pt].MG
	}
	return int(total)
}

// Phase returns the 0 (endgame) .. 128 (opening) game-phase metric derived
// from remaining non-pawn material.
func (p *Position) Phase() int {
	phase := 0
	for c := ZeroColor; c < NumColors; c++ {
		for _, pt := range []PieceType{Knight, Bishop, Rook, Queen} {
			phase += p.pieceCount[c][pt] * PhaseWeight[pt]
		}
	}
	if phase > TotalPhase {
		phase = TotalPhase
	}
	return (phase*128 + TotalPhase/2) / TotalPhase
}

func (p *Position) CastleRookFrom(c Color, side CastleSide) Square { return p.castleRookFrom[c][side] }

// CanCastle returns true iff color c still has the right to castle on side,
// the intervening squares are empty, and the king's path is unattacked.
func (p *Position) CanCastle(c Color, side CastleSide) bool {
	if !p.CastleRights().Has(CastleRightOf(c, side)) {
		return false
	}
	if p.castlePath[c][side]&p.Occupied() != 0 {
		return false
	}
	path := p.castleKingPath[c][side]
	opp := c.Opponent()
	for path != 0 {
		var sq Square
		sq, path = path.PopLSB()
		if p.isAttackedBy(opp, sq) {
			return false
		}
	}
	return true
}

// ParseMove resolves a coordinate-notation move string ("e2e4", "a7a8q")
// against the current position's legal moves. Castling is accepted in both
// the conventional king-destination form (e1g1) and the king-takes-rook form
// used under the Chess960 option.
func (p *Position) ParseMove(s string) (Move, error) {
	from, to, promo, err := ParseCoordinateMove(s)
	if err != nil {
		return NoMove, err
	}
	for _, m := range p.GenerateLegal(nil) {
		if m.From() != from {
			continue
		}
		if m.Type() == Castle {
			if to == m.To() || to == castleKingDestination(m.From(), m.To()) {
				return m, nil
			}
			continue
		}
		if m.To() != to {
			continue
		}
		if m.Type() == Promote && m.PromotionType() != promo {
			continue
		}
		return m, nil
	}
	return NoMove, fmt.Errorf("board: illegal move %q", s)
}

func (p *Position) String() string {
	var out [9 * 8]byte
	idx := 0
	for r := Rank8; ; r-- {
		for f := FileA; f < NumFiles; f++ {
			out[idx] = byte(p.board[NewSquare(f, r)].String()[0])
			idx++
		}
		if r == Rank1 {
			break
		}
		out[idx] = '/'
		idx++
	}
	return fmt.Sprintf("%s %v %v ep=%v", out[:idx], p.turn, p.CastleRights(), p.EPSquare())
}

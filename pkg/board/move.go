package board

import "fmt"

// MoveType distinguishes the four move encodings:
// a plain move (incl. ordinary capture, single/double pawn push), a castle
// (encoded as "king captures its own rook" -- the rook's square identifies
// which side), an en passant capture, and a promotion.
type MoveType uint8

const (
	Simple MoveType = iota
	Castle
	EnPassant
	Promote
)

// promoPiece/pieceFromPromo map the 2-bit promotion-type field to/from the
// 4 promotable piece types.
var promoPieces = [4]PieceType{Knight, Bishop, Rook, Queen}

func promoIndex(pt PieceType) uint16 {
	for i, p := range promoPieces {
		if p == pt {
			return uint16(i)
		}
	}
	return 0
}

// Move is a 16-bit encoding of a (possibly pseudo-legal) move:
//
//	bits 0-5:   origin square
//	bits 6-11:  destination square
//	bits 12-13: promotion piece type (Knight=0 .. Queen=3), meaningful iff Type()==Promote
//	bits 14-15: MoveType
//
// Move carries no information about captures or the piece that moved -- that
// is read from the Position at the time the move is made and recorded on the
// state-record undo stack, keeping Move cheap enough to store directly in a
// transposition-table entry.
type Move uint16

const (
	// NoMove is the zero value, used as a sentinel for "no move" (e.g. an
	// empty transposition-table slot). a1a1 is never a legal move.
	NoMove Move = 0
	// NullMove is reserved to represent the null move used by null-move
	// pruning (see pkg/search). h8h8 is never a legal move.
	NullMove Move = Move(H8) | Move(H8)<<6
)

func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

func NewCastle(kingFrom, rookFrom Square) Move {
	return Move(kingFrom) | Move(rookFrom)<<6 | Move(Castle)<<14
}

func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(EnPassant)<<14
}

func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(promoIndex(promo))<<12 | Move(Promote)<<14
}

func (m Move) From() Square {
	return Square(m & 0x3f)
}

func (m Move) To() Square {
	return Square((m >> 6) & 0x3f)
}

func (m Move) Type() MoveType {
	return MoveType((m >> 14) & 0x3)
}

func (m Move) PromotionType() PieceType {
	return promoPieces[(m>>12)&0x3]
}

func (m Move) IsValid() bool {
	return m != NoMove && m != NullMove
}

// String formats the move in pure coordinate notation: "e2e4", "a7a8q". The
// Chess-variant (Chess960) option formats castles as king-from/rook-to instead
// of king-from/king-to; FormatMove honors that when requested.
func (m Move) String() string {
	return FormatMove(m, false)
}

// FormatMove formats m. When chess960 is true, castling is printed as
// king-from rook-to (matching the FEN castling rights under that option);
// otherwise it is printed as the conventional king-from king-to (e1g1).
func FormatMove(m Move, chess960 bool) string {
	if !m.IsValid() {
		return "0000"
	}
	from, to := m.From(), m.To()
	if m.Type() == Castle && !chess960 {
		to = castleKingDestination(from, to)
	}
	s := fmt.Sprintf("%v%v", from, to)
	if m.Type() == Promote {
		s += m.PromotionType().String()
	}
	return s
}

// castleKingDestination converts a king-captures-rook encoding into the
// conventional king destination square (g1/c1/g8/c8).
func castleKingDestination(kingFrom, rookFrom Square) Square {
	side := KingSide
	if rookFrom.File() < kingFrom.File() {
		side = QueenSide
	}
	rank := kingFrom.Rank()
	if side == KingSide {
		return NewSquare(FileG, rank)
	}
	return NewSquare(FileC, rank)
}

// ParseCoordinateMove parses pure coordinate notation into a from/to/promotion
// triple. It does not know about castling/en passant context -- the caller
// (Position.ParseMove) resolves those against the current position.
func ParseCoordinateMove(s string) (from, to Square, promo PieceType, err error) {
	if len(s) < 4 || len(s) > 5 {
		return 0, 0, 0, fmt.Errorf("board: invalid move %q", s)
	}
	from, err = ParseSquare(s[0:2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("board: invalid move %q: %w", s, err)
	}
	to, err = ParseSquare(s[2:4])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("board: invalid move %q: %w", s, err)
	}
	if len(s) == 5 {
		pt, ok := ParsePieceType(rune(s[4]))
		if !ok || pt == Pawn || pt == King {
			return 0, 0, 0, fmt.Errorf("board: invalid promotion in move %q", s)
		}
		promo = pt
	}
	return from, to, promo, nil
}

package board

// PieceType represents a chess piece type without color.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

const (
	ZeroPieceType PieceType = 1 // Pawn
	NumPieceTypes PieceType = 7
)

// AllPieceTypes enumerates the 6 real piece types, in nominal-value order.
var AllPieceTypes = [6]PieceType{Pawn, Knight, Bishop, Rook, Queen, King}

func ParsePieceType(r rune) (PieceType, bool) {
	switch r {
	case 'p', 'P':
		return Pawn, true
	case 'n', 'N':
		return Knight, true
	case 'b', 'B':
		return Bishop, true
	case 'r', 'R':
		return Rook, true
	case 'q', 'Q':
		return Queen, true
	case 'k', 'K':
		return King, true
	default:
		return NoPieceType, false
	}
}

func (p PieceType) IsValid() bool {
	return Pawn <= p && p <= King
}

func (p PieceType) String() string {
	switch p {
	case NoPieceType:
		return "."
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return "?"
	}
}

// Piece is a (Color, PieceType) pair packed for use as a square-indexed array value.
type Piece uint8

const NoPiece Piece = 0

func MakePiece(c Color, pt PieceType) Piece {
	return (Piece(pt)<<1 | Piece(c)) + 1
}

func (p Piece) Split() (Color, PieceType, bool) {
	if p == NoPiece {
		return 0, 0, false
	}
	v := p - 1
	return Color(v & 1), PieceType(v >> 1), true
}

func (p Piece) String() string {
	c, pt, ok := p.Split()
	if !ok {
		return "."
	}
	if c == White {
		return upper(pt.String())
	}
	return pt.String()
}

func upper(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

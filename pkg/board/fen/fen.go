// Package fen parses and formats Forsyth-Edwards Notation, the positional
// building block of the UCI "position" command.
package fen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/umer-fa/morlock-don/pkg/board"
)

// StartPos is the FEN of the standard chess starting position.
const StartPos = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Parse builds a Position from a FEN string. When chess960 is true, castling
// letters other than KQkq are interpreted as the Chess960 Shredder-FEN
// convention (the file letter of the castling rook), per the "variant
// castling notation" option.
func Parse(s string, chess960 bool) (*board.Position, error) {
	fields := strings.Fields(s)
	if len(fields) < 4 {
		return nil, fmt.Errorf("fen: need at least 4 fields, got %d", len(fields))
	}

	p := board.NewEmptyPosition()
	if err := parsePlacement(p, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		p.SetTurn(board.White)
	case "b":
		p.SetTurn(board.Black)
	default:
		return nil, fmt.Errorf("fen: invalid side to move %q", fields[1])
	}

	rights, err := parseCastling(p, fields[2], chess960)
	if err != nil {
		return nil, err
	}

	ep := board.NoSquare
	if fields[3] != "-" {
		ep, err = board.ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("fen: invalid en passant square %q: %w", fields[3], err)
		}
	}

	halfmove := 0
	if len(fields) > 4 {
		halfmove, _ = strconv.Atoi(fields[4])
	}

	if err := p.Init(rights, ep, halfmove); err != nil {
		return nil, err
	}
	return p, nil
}

func parsePlacement(p *board.Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("fen: piece placement must have 8 ranks, got %d", len(ranks))
	}
	for i, row := range ranks {
		r := board.Rank(7 - i)
		f := board.FileA
		for _, ch := range row {
			if ch >= '1' && ch <= '8' {
				f += board.File(ch - '0')
				continue
			}
			pt, ok := board.ParsePieceType(ch)
			if !ok {
				return fmt.Errorf("fen: invalid piece letter %q", ch)
			}
			if f >= board.NumFiles {
				return fmt.Errorf("fen: rank %q overflows 8 files", row)
			}
			c := board.Black
			if ch >= 'A' && ch <= 'Z' {
				c = board.White
			}
			p.Put(c, pt, board.NewSquare(f, r))
			f++
		}
	}
	return nil
}

func parseCastling(p *board.Position, field string, chess960 bool) (board.CastleRight, error) {
	var rights board.CastleRight
	if field == "-" {
		return rights, nil
	}
	for _, ch := range field {
		var c board.Color
		if ch >= 'A' && ch <= 'Z' {
			c = board.White
		} else {
			c = board.Black
		}
		kf := p.KingSquare(c)
		upper := ch
		if upper >= 'a' && upper <= 'z' {
			upper -= 'a' - 'A'
		}

		var side board.CastleSide
		var rookFrom board.Square
		switch {
		case upper == 'K' && !chess960:
			side = board.KingSide
			rookFrom = findRookFrom(p, c, kf, true)
		case upper == 'Q' && !chess960:
			side = board.QueenSide
			rookFrom = findRookFrom(p, c, kf, false)
		default:
			// Chess960 Shredder-FEN: the letter is the rook's file.
			f := board.File(upper - 'A')
			rookFrom = board.NewSquare(f, kf.Rank())
			if f > kf.File() {
				side = board.KingSide
			} else {
				side = board.QueenSide
			}
		}
		if !rookFrom.IsValid() {
			return 0, fmt.Errorf("fen: no rook found for castling letter %q", ch)
		}
		p.SetCastleRight(c, side, rookFrom)
		rights |= board.CastleRightOf(c, side)
	}
	return rights, nil
}

// findRookFrom locates the outermost rook on the king's rank toward (or away
// from) the h-file, used to resolve the standard KQkq castling letters
// against a possibly-Chess960 starting placement.
func findRookFrom(p *board.Position, c board.Color, kingFrom board.Square, kingSide bool) board.Square {
	rank := kingFrom.Rank()
	start, end, step := board.FileH, kingFrom.File(), -1
	if !kingSide {
		start, end, step = board.FileA, kingFrom.File(), 1
	}
	for f := start; ; f += board.File(step) {
		sq := board.NewSquare(f, rank)
		if pc := p.PieceOn(sq); pc != board.NoPiece {
			if pcColor, pt, _ := pc.Split(); pcColor == c && pt == board.Rook {
				return sq
			}
		}
		if f == end {
			break
		}
	}
	return board.NoSquare
}

// Flip mirrors a FEN vertically: ranks reversed, piece colors swapped, and
// the side to move, castling rights and en passant square adjusted to match.
// Flipping twice returns the original string. A color-symmetric evaluator
// scores a flipped position as the exact negation of the original from
// White's view, which is the same value from the side to move's view.
func Flip(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 4 {
		return s
	}

	ranks := strings.Split(fields[0], "/")
	flipped := make([]string, len(ranks))
	for i, r := range ranks {
		flipped[len(ranks)-1-i] = swapCase(r)
	}
	fields[0] = strings.Join(flipped, "/")

	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}

	if fields[2] != "-" {
		fields[2] = sortCastling(swapCase(fields[2]))
	}

	if fields[3] != "-" {
		f := fields[3][0]
		r := fields[3][1]
		fields[3] = string([]byte{f, '1' + '8' - r})
	}

	return strings.Join(fields, " ")
}

func swapCase(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z':
			b[i] = c - 'a' + 'A'
		case c >= 'A' && c <= 'Z':
			b[i] = c - 'A' + 'a'
		}
	}
	return string(b)
}

// sortCastling restores the conventional KQkq ordering after a case swap.
func sortCastling(s string) string {
	var sb strings.Builder
	for _, c := range "KQkq" {
		if strings.ContainsRune(s, c) {
			sb.WriteRune(c)
		}
	}
	if sb.Len() == 0 {
		return s
	}
	return sb.String()
}

// Format renders pos as a FEN string. fullmove is the caller-tracked full
// move counter (Position itself only tracks the half-move ply of its undo
// stack).
func Format(pos *board.Position, fullmove int) string {
	var sb strings.Builder
	for r := board.Rank8; ; r-- {
		empty := 0
		for f := board.FileA; f < board.NumFiles; f++ {
			pc := pos.PieceOn(board.NewSquare(f, r))
			if pc == board.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r == board.Rank1 {
			break
		}
		sb.WriteByte('/')
	}

	sb.WriteByte(' ')
	if pos.Turn() == board.White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(pos.CastleRights().String())

	sb.WriteByte(' ')
	if pos.EPSquare().IsValid() {
		sb.WriteString(pos.EPSquare().String())
	} else {
		sb.WriteByte('-')
	}

	fmt.Fprintf(&sb, " %d %d", pos.HalfmoveClock(), fullmove)
	return sb.String()
}

package board

import "strings"

// SAN renders legal move m in standard algebraic notation for pos, which
// must be the position before the move is played. It is a logging/debugging
// convenience; the engine protocol itself always speaks pure coordinate
// notation. pos is restored before returning (the check/mate suffix needs a
// do/undo round trip).
func SAN(pos *Position, m Move) string {
	var sb strings.Builder

	from, to := m.From(), m.To()
	_, pt, _ := pos.PieceOn(from).Split()

	switch {
	case m.Type() == Castle:
		if castleKingDestination(from, to).File() == FileG {
			sb.WriteString("O-O")
		} else {
			sb.WriteString("O-O-O")
		}

	case pt == Pawn:
		capture := m.Type() == EnPassant || pos.PieceOn(to) != NoPiece
		if capture {
			sb.WriteString(from.File().String())
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.Type() == Promote {
			sb.WriteByte('=')
			sb.WriteString(strings.ToUpper(m.PromotionType().String()))
		}

	default:
		sb.WriteString(strings.ToUpper(pt.String()))
		sb.WriteString(sanDisambiguation(pos, m, pt))
		if pos.PieceOn(to) != NoPiece {
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
	}

	pos.DoMove(m, pos.GivesCheck(m))
	if pos.InCheck() {
		if len(pos.GenerateLegal(nil)) == 0 {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('+')
		}
	}
	pos.UndoMove(m)

	return sb.String()
}

// sanDisambiguation returns the minimal origin qualifier (file, rank, or
// both) needed when more than one piece of the same type can legally reach
// the destination.
func sanDisambiguation(pos *Position, m Move, pt PieceType) string {
	from, to := m.From(), m.To()

	var others Bitboard
	for _, cand := range pos.GenerateLegal(nil) {
		if cand.To() != to || cand.From() == from {
			continue
		}
		if _, candType, _ := pos.PieceOn(cand.From()).Split(); candType == pt {
			others |= BitMask(cand.From())
		}
	}
	if others == 0 {
		return ""
	}
	if others&BitFile(from.File()) == 0 {
		return from.File().String()
	}
	if others&BitRank(from.Rank()) == 0 {
		return from.Rank().String()
	}
	return from.String()
}

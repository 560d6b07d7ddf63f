package board

import (
	"fmt"
	"strings"
)

const sanLetters = "PNBRQK"

// ToSAN renders m in standard algebraic notation for pos, where m must be
// legal. pos is left unchanged.
func (m Move) ToSAN(pos *Position) string {
	if m == NoMove {
		return "-"
	}
	var sb strings.Builder

	switch m.Flag() {
	case KingCastle:
		sb.WriteString("O-O")
	case QueenCastle:
		sb.WriteString("O-O-O")
	default:
		from, to := m.From(), m.To()
		pt := pos.Board[from].Type()
		if pt != Pawn {
			sb.WriteByte(sanLetters[pt])
			sb.WriteString(disambiguation(pos, m, pt))
		}
		if m.IsCapture() {
			if pt == Pawn {
				sb.WriteByte(byte('a' + from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte(sanLetters[m.Promotion()])
		}
	}

	u := pos.MakeMove(m)
	switch pos.Outcome() {
	case Checkmate:
		sb.WriteByte('#')
	default:
		if pos.InCheck() {
			sb.WriteByte('+')
		}
	}
	u.Restore()
	return sb.String()
}

// disambiguation returns the file, rank or square needed to tell m apart
// from other legal moves of the same piece type to the same square.
func disambiguation(pos *Position, m Move, pt PieceType) string {
	from, to := m.From(), m.To()
	var ml MoveList
	pos.GenerateLegal(&ml)

	ambiguous, sameFile, sameRank := false, false, false
	for _, o := range ml.Slice() {
		if o.To() != to || o.From() == from || pos.Board[o.From()].Type() != pt {
			continue
		}
		ambiguous = true
		sameFile = sameFile || o.From().File() == from.File()
		sameRank = sameRank || o.From().Rank() == from.Rank()
	}
	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	default:
		return from.String()
	}
}

// ParseSAN resolves a standard algebraic move against the legal moves of pos.
func ParseSAN(s string, pos *Position) (Move, error) {
	text := strings.TrimRight(strings.TrimSpace(s), "+#!?")
	var ml MoveList
	pos.GenerateLegal(&ml)

	switch text {
	case "O-O", "0-0":
		return findFlag(&ml, KingCastle, s)
	case "O-O-O", "0-0-0":
		return findFlag(&ml, QueenCastle, s)
	}

	promo := NoPieceType
	if i := strings.IndexByte(text, '='); i >= 0 {
		if i+1 >= len(text) {
			return NoMove, fmt.Errorf("parse san %q: missing promotion piece", s)
		}
		idx := strings.IndexByte(sanLetters[1:5], text[i+1])
		if idx < 0 {
			return NoMove, fmt.Errorf("parse san %q: bad promotion piece", s)
		}
		promo = Knight + PieceType(idx)
		text = text[:i]
	}

	capture := strings.Contains(text, "x")
	text = strings.ReplaceAll(text, "x", "")

	pt := Pawn
	if text != "" {
		if idx := strings.IndexByte(sanLetters[1:], text[0]); idx >= 0 {
			pt = Knight + PieceType(idx)
			text = text[1:]
		}
	}
	if len(text) < 2 {
		return NoMove, fmt.Errorf("parse san %q: missing destination", s)
	}
	to, err := ParseSquare(text[len(text)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("parse san %q: %w", s, err)
	}
	fileHint, rankHint := -1, -1
	for _, c := range text[:len(text)-2] {
		switch {
		case c >= 'a' && c <= 'h':
			fileHint = int(c - 'a')
		case c >= '1' && c <= '8':
			rankHint = int(c - '1')
		}
	}

	for _, m := range ml.Slice() {
		from := m.From()
		if m.To() != to || pos.Board[from].Type() != pt || m.Promotion() != promo {
			continue
		}
		if (fileHint >= 0 && from.File() != fileHint) || (rankHint >= 0 && from.Rank() != rankHint) {
			continue
		}
		if capture && !m.IsCapture() || pt == Pawn && !capture && m.IsCapture() {
			continue
		}
		return m, nil
	}
	return NoMove, fmt.Errorf("parse san %q: %w", s, ErrIllegalMove)
}

func findFlag(ml *MoveList, flag MoveFlag, s string) (Move, error) {
	for _, m := range ml.Slice() {
		if m.Flag() == flag {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("parse san %q: %w", s, ErrIllegalMove)
}

// MovesToSAN renders a line of moves played in sequence from pos.
func MovesToSAN(pos *Position, moves []Move) []string {
	out := make([]string, len(moves))
	p := pos.Clone()
	for i, m := range moves {
		out[i] = m.ToSAN(p)
		p.ApplyMove(m)
	}
	return out
}

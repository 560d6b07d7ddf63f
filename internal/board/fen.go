package board

import (
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a new position from an import string.
func ParseFEN(fen string) (*Position, error) {
	p := &Position{}
	if err := p.Import(fen); err != nil {
		return nil, err
	}
	return p, nil
}

// Import replaces the position with the one described by text. The position
// is reset before parsing, so on error it is left empty rather than half
// imported. The halfmove and fullmove fields are optional.
func (p *Position) Import(text string) error {
	p.reset()
	if err := p.parse(text); err != nil {
		p.reset()
		return err
	}
	p.Hash = p.ComputeHash()
	return nil
}

func (p *Position) parse(text string) error {
	fields := strings.Fields(text)
	if len(fields) < 4 || len(fields) > 6 {
		return &FormatError{Field: "record", Value: text, Reason: "need 4 to 6 space-separated fields, got " + strconv.Itoa(len(fields))}
	}

	if err := p.parsePlacement(fields[0]); err != nil {
		return err
	}

	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
	default:
		return &FormatError{Field: "side", Value: fields[1], Reason: "want w or b"}
	}

	if err := p.parseCastling(fields[2]); err != nil {
		return err
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return &FormatError{Field: "enpassant", Value: fields[3], Reason: "not a square"}
		}
		want := 5
		if p.SideToMove == Black {
			want = 2
		}
		if sq.Rank() != want {
			return &FormatError{Field: "enpassant", Value: fields[3], Reason: "target must be on rank 6 with white to move, rank 3 with black"}
		}
		p.EnPassant = FileMask[sq.File()]
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return &FormatError{Field: "halfmove", Value: fields[4], Reason: "want a non-negative integer"}
		}
		p.HalfMoveClock = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return &FormatError{Field: "fullmove", Value: fields[5], Reason: "want a positive integer"}
		}
		p.FullMoveNumber = n
	}
	return nil
}

func (p *Position) parsePlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return &FormatError{Field: "placement", Value: placement, Reason: "need 8 ranks, got " + strconv.Itoa(len(ranks))}
	}

	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				if file > 8 {
					return overlongRank(row, rank)
				}
				continue
			}
			pc := PieceFromChar(c)
			if pc == NoPiece {
				return &FormatError{Field: "placement", Value: string(c), Reason: "unknown piece letter"}
			}
			if file > 7 {
				return overlongRank(row, rank)
			}
			p.putPiece(pc, NewSquare(file, rank))
			file++
		}
		if file != 8 {
			return &FormatError{Field: "placement", Value: row, Reason: "rank " + strconv.Itoa(rank+1) + " does not describe 8 squares"}
		}
	}

	for c := White; c <= Black; c++ {
		if n := p.Pieces[c][King].Count(); n != 1 {
			return &FormatError{Field: "placement", Value: placement, Reason: c.String() + " must have exactly one king"}
		}
	}
	return nil
}

func overlongRank(row string, rank int) error {
	return &FormatError{Field: "placement", Value: row, Reason: "rank " + strconv.Itoa(rank+1) + " has more than 8 squares"}
}

func (p *Position) parseCastling(field string) error {
	if field == "-" {
		return nil
	}
	for i := 0; i < len(field); i++ {
		idx := strings.IndexByte("KQkq", field[i])
		if idx < 0 {
			return &FormatError{Field: "castling", Value: field, Reason: "want a subset of KQkq or -"}
		}
		p.CastlingRights |= 1 << idx
	}
	return nil
}

// ToFEN exports the position in the import format; Import(p.ToFEN())
// reproduces it exactly.
func (p *Position) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.Board[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	if p.SideToMove == White {
		sb.WriteString(" w ")
	} else {
		sb.WriteString(" b ")
	}
	sb.WriteString(p.CastlingRights.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassantSquare().String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))
	return sb.String()
}

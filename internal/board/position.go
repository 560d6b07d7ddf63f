package board

import (
	"fmt"
	"strings"
)

// CastlingRights is the set of remaining castling options, one bit each.
type CastlingRights uint8

const (
	WhiteKingSide  CastlingRights = 1 << iota // K
	WhiteQueenSide                            // Q
	BlackKingSide                             // k
	BlackQueenSide                            // q

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// String returns the import-format castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// Has reports whether every right in r is present.
func (cr CastlingRights) Has(r CastlingRights) bool {
	return cr&r == r
}

// sideRights returns both castling rights belonging to c.
func sideRights(c Color) CastlingRights {
	if c == White {
		return WhiteKingSide | WhiteQueenSide
	}
	return BlackKingSide | BlackQueenSide
}

// MaxPly bounds search depth and the history stack.
const MaxPly = 64

// state is one history record, pushed by MakeMove before any mutation.
type state struct {
	move          Move
	captured      Piece
	castling      CastlingRights
	enPassant     Bitboard
	halfMoveClock int
	hash          uint64
}

// Position is the mutable game state. The twelve piece masks are the source
// of truth; Occupied, AllOccupied and Board are caches kept in sync by every
// mutation.
type Position struct {
	Pieces      [2][6]Bitboard // [Color][PieceType]
	Occupied    [2]Bitboard
	AllOccupied Bitboard
	Board       [64]Piece

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Bitboard // file mask of the last double push, 0 if none
	HalfMoveClock  int
	FullMoveNumber int

	Hash uint64

	history []state
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	p := &Position{}
	if err := p.Import(StartFEN); err != nil {
		panic(err)
	}
	return p
}

// reset empties the board and drops all history.
func (p *Position) reset() {
	h := p.history[:0]
	*p = Position{FullMoveNumber: 1, history: h}
	for sq := range p.Board {
		p.Board[sq] = NoPiece
	}
}

// Clone returns a deep copy, history included.
func (p *Position) Clone() *Position {
	c := *p
	c.history = make([]state, len(p.history), max(cap(p.history), MaxPly))
	copy(c.history, p.history)
	return &c
}

// Equal reports whether two positions hold the same board state. History is
// not compared.
func (p *Position) Equal(o *Position) bool {
	return p.Pieces == o.Pieces &&
		p.Occupied == o.Occupied &&
		p.AllOccupied == o.AllOccupied &&
		p.Board == o.Board &&
		p.SideToMove == o.SideToMove &&
		p.CastlingRights == o.CastlingRights &&
		p.EnPassant == o.EnPassant &&
		p.HalfMoveClock == o.HalfMoveClock &&
		p.FullMoveNumber == o.FullMoveNumber &&
		p.Hash == o.Hash
}

// Ply returns the number of moves on the search history stack.
func (p *Position) Ply() int {
	return len(p.history)
}

// PieceAt returns the occupant of sq, NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	mustSquare(sq)
	return p.Board[sq]
}

// KingSquare returns c's king square, NoSquare if it has none.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[c][King].LSB()
}

// InCheck reports whether the side to move is attacked.
func (p *Position) InCheck() bool {
	ksq := p.KingSquare(p.SideToMove)
	return ksq != NoSquare && p.IsSquareAttacked(ksq, p.SideToMove.Other())
}

// Checkers returns the enemy pieces giving check to the side to move.
func (p *Position) Checkers() Bitboard {
	ksq := p.KingSquare(p.SideToMove)
	if ksq == NoSquare {
		return 0
	}
	return p.AttackersByColor(ksq, p.SideToMove.Other(), p.AllOccupied)
}

// EnPassantSquare returns the capture target behind the last double push,
// NoSquare if none.
func (p *Position) EnPassantSquare() Square {
	if p.EnPassant == 0 {
		return NoSquare
	}
	rank := 5
	if p.SideToMove == Black {
		rank = 2
	}
	return NewSquare(p.EnPassant.LSB().File(), rank)
}

func (p *Position) putPiece(pc Piece, sq Square) {
	bb := SquareBB(sq)
	c := pc.Color()
	p.Pieces[c][pc.Type()] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.Board[sq] = pc
	p.Hash ^= zobristPiece[pc][sq]
}

func (p *Position) removePiece(sq Square) Piece {
	pc := p.Board[sq]
	bb := SquareBB(sq)
	c := pc.Color()
	p.Pieces[c][pc.Type()] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.Board[sq] = NoPiece
	p.Hash ^= zobristPiece[pc][sq]
	return pc
}

func (p *Position) movePiece(from, to Square) {
	pc := p.Board[from]
	fromTo := SquareBB(from) | SquareBB(to)
	c := pc.Color()
	p.Pieces[c][pc.Type()] ^= fromTo
	p.Occupied[c] ^= fromTo
	p.AllOccupied ^= fromTo
	p.Board[from] = NoPiece
	p.Board[to] = pc
	p.Hash ^= zobristPiece[pc][from] ^ zobristPiece[pc][to]
}

// CheckInvariants verifies that the aggregate masks and the identity cache
// agree with the piece masks and that each side has exactly one king.
func (p *Position) CheckInvariants() error {
	var all Bitboard
	for c := White; c <= Black; c++ {
		var union Bitboard
		for pt := Pawn; pt <= King; pt++ {
			union |= p.Pieces[c][pt]
		}
		if union != p.Occupied[c] {
			return fmt.Errorf("%s occupancy %#x != union of piece masks %#x", c, uint64(p.Occupied[c]), uint64(union))
		}
		all |= union
		if n := p.Pieces[c][King].Count(); n != 1 {
			return fmt.Errorf("%s has %d kings", c, n)
		}
	}
	if p.Occupied[White]&p.Occupied[Black] != 0 {
		return fmt.Errorf("squares %#x occupied by both sides", uint64(p.Occupied[White]&p.Occupied[Black]))
	}
	if all != p.AllOccupied {
		return fmt.Errorf("all-pieces mask %#x != white|black %#x", uint64(p.AllOccupied), uint64(all))
	}
	for sq := A1; sq <= H8; sq++ {
		owner := NoPiece
		for pc := WhitePawn; pc <= BlackKing; pc++ {
			if !p.Pieces[pc.Color()][pc.Type()].Has(sq) {
				continue
			}
			if owner != NoPiece {
				return fmt.Errorf("%s held by both %s and %s", sq, owner, pc)
			}
			owner = pc
		}
		if p.Board[sq] != owner {
			return fmt.Errorf("identity cache at %s says %s, masks say %s", sq, p.Board[sq], owner)
		}
	}
	if p.EnPassant != 0 && (p.EnPassant.Count() != 8 || p.EnPassant != FileMask[p.EnPassant.LSB().File()]) {
		return fmt.Errorf("en passant mask %#x is not a single file", uint64(p.EnPassant))
	}
	if h := p.ComputeHash(); h != p.Hash {
		return fmt.Errorf("hash %#x != recomputed %#x", p.Hash, h)
	}
	return nil
}

// String draws the board with rank 8 on top, followed by the export string.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			sb.WriteString(p.Board[NewSquare(file, rank)].String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	sb.WriteString(p.ToFEN())
	sb.WriteByte('\n')
	return sb.String()
}

package board

// AttackTables holds the precomputed attack sets. It is built once and only
// read afterwards, so one instance is shared by every Position.
type AttackTables struct {
	knight [64]Bitboard
	king   [64]Bitboard
	pawn   [2][64]Bitboard // [Color][Square]

	rookMagics   [64]Magic
	bishopMagics [64]Magic
	rook         [64][]Bitboard
	bishop       [64][]Bitboard
}

// tables is the process-wide instance, built during package initialization.
var tables = NewAttackTables()

// Tables returns the shared attack tables.
func Tables() *AttackTables {
	return tables
}

// NewAttackTables computes every lookup table from scratch.
func NewAttackTables() *AttackTables {
	t := &AttackTables{}
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		t.knight[sq] = (bb<<17)&NotFileA | (bb<<15)&NotFileH |
			(bb>>17)&NotFileH | (bb>>15)&NotFileA |
			(bb<<10)&NotFileAB | (bb<<6)&NotFileGH |
			(bb>>10)&NotFileGH | (bb>>6)&NotFileAB

		t.king[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()

		t.pawn[White][sq] = bb.NorthEast() | bb.NorthWest()
		t.pawn[Black][sq] = bb.SouthEast() | bb.SouthWest()
	}
	t.initMagics()
	return t
}

// Knight returns the knight attack set from sq.
func (t *AttackTables) Knight(sq Square) Bitboard { return t.knight[sq] }

// King returns the king attack set from sq.
func (t *AttackTables) King(sq Square) Bitboard { return t.king[sq] }

// Pawn returns the squares a pawn of color c on sq attacks.
func (t *AttackTables) Pawn(sq Square, c Color) Bitboard { return t.pawn[c][sq] }

// Rook returns the rook attack set from sq for the given occupancy.
func (t *AttackTables) Rook(sq Square, occupied Bitboard) Bitboard {
	m := &t.rookMagics[sq]
	return t.rook[sq][m.index(occupied)]
}

// Bishop returns the bishop attack set from sq for the given occupancy.
func (t *AttackTables) Bishop(sq Square, occupied Bitboard) Bitboard {
	m := &t.bishopMagics[sq]
	return t.bishop[sq][m.index(occupied)]
}

// KnightAttacks returns the knight attack set from sq.
func KnightAttacks(sq Square) Bitboard {
	return tables.knight[sq]
}

// KingAttacks returns the king attack set from sq.
func KingAttacks(sq Square) Bitboard {
	return tables.king[sq]
}

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(sq Square, c Color) Bitboard {
	return tables.pawn[c][sq]
}

// RookAttacks returns rook attacks from sq through the given occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return tables.Rook(sq, occupied)
}

// BishopAttacks returns bishop attacks from sq through the given occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return tables.Bishop(sq, occupied)
}

// QueenAttacks is the union of the rook and bishop patterns on sq.
func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return tables.Rook(sq, occupied) | tables.Bishop(sq, occupied)
}

// AttackersByColor returns the pieces of color c that attack sq, sliders
// being blocked by occupied.
func (p *Position) AttackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	mine := &p.Pieces[c]
	return tables.pawn[c.Other()][sq]&mine[Pawn] |
		tables.knight[sq]&mine[Knight] |
		tables.king[sq]&mine[King] |
		tables.Bishop(sq, occupied)&(mine[Bishop]|mine[Queen]) |
		tables.Rook(sq, occupied)&(mine[Rook]|mine[Queen])
}

// IsSquareAttacked reports whether any piece of color by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	mustSquare(sq)
	mine := &p.Pieces[by]
	if tables.pawn[by.Other()][sq]&mine[Pawn] != 0 ||
		tables.knight[sq]&mine[Knight] != 0 ||
		tables.king[sq]&mine[King] != 0 {
		return true
	}
	if tables.Bishop(sq, p.AllOccupied)&(mine[Bishop]|mine[Queen]) != 0 {
		return true
	}
	return tables.Rook(sq, p.AllOccupied)&(mine[Rook]|mine[Queen]) != 0
}

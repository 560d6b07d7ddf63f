package board

import "fmt"

// castlingKeep[sq] is ANDed into the rights whenever a move leaves or lands
// on sq. Only the king and rook home squares clear anything.
var castlingKeep = func() [64]CastlingRights {
	var keep [64]CastlingRights
	for sq := range keep {
		keep[sq] = AllCastling
	}
	keep[A1] &^= WhiteQueenSide
	keep[H1] &^= WhiteKingSide
	keep[E1] &^= WhiteKingSide | WhiteQueenSide
	keep[A8] &^= BlackQueenSide
	keep[H8] &^= BlackKingSide
	keep[E8] &^= BlackKingSide | BlackQueenSide
	return keep
}()

// castleRookSquares returns the rook's from and to squares for a castling
// move landing the king on kingTo.
func castleRookSquares(kingTo Square) (Square, Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default:
		return A8, D8
	}
}

// epVictim returns the square of the pawn removed by an en passant capture
// landing on to, which is one rank behind the destination.
func epVictim(to Square, us Color) Square {
	if us == White {
		return to - 8
	}
	return to + 8
}

// ApplyMove plays a known-legal move without recording history. This is the
// gameplay path; the move cannot be unmade.
func (p *Position) ApplyMove(m Move) {
	p.doMove(m)
}

// doMove performs the mutation shared by ApplyMove and MakeMove and returns
// the captured piece.
func (p *Position) doMove(m Move) Piece {
	us := p.SideToMove
	from, to, flag := m.From(), m.To(), m.Flag()
	mustSquare(from)
	moving := p.Board[from]
	if moving == NoPiece || moving.Color() != us {
		panic(InvariantViolation(fmt.Sprintf("move %s: no %s piece on %s", m, us, from)))
	}

	p.Hash ^= zobristCastling[p.CastlingRights] ^ epKey(p.EnPassant)

	captured := NoPiece
	switch {
	case flag == EPCapture:
		captured = p.removePiece(epVictim(to, us))
	case m.IsCapture():
		captured = p.removePiece(to)
	}

	p.movePiece(from, to)

	if m.IsPromotion() {
		p.removePiece(to)
		p.putPiece(NewPiece(m.Promotion(), us), to)
	} else if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(to)
		p.movePiece(rookFrom, rookTo)
	}

	if moving.Type() == King {
		p.CastlingRights &^= sideRights(us)
	}
	p.CastlingRights &= castlingKeep[from] & castlingKeep[to]

	p.EnPassant = 0
	if flag == DoublePush {
		p.EnPassant = FileMask[from.File()]
	}

	if moving.Type() == Pawn || captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = us.Other()
	p.Hash ^= zobristCastling[p.CastlingRights] ^ epKey(p.EnPassant) ^ zobristSideToMove
	return captured
}

// Undo is the scoped token returned by MakeMove. Restore must be called
// exactly once, after every token issued later has been restored.
type Undo struct {
	pos   *Position
	move  Move
	depth int
}

// Restore unmakes the move the token was issued for. It panics with
// InvariantViolation if a later MakeMove is still outstanding.
func (u Undo) Restore() {
	if u.pos == nil || len(u.pos.history) != u.depth {
		panic(InvariantViolation(fmt.Sprintf("undo of %s restored out of order", u.move)))
	}
	u.pos.UnmakeMove(u.move)
}

// MakeMove plays m on the search path, pushing the record UnmakeMove needs
// to restore the exact prior state.
func (p *Position) MakeMove(m Move) Undo {
	if p.history == nil {
		p.history = make([]state, 0, MaxPly)
	}
	p.history = append(p.history, state{
		move:          m,
		castling:      p.CastlingRights,
		enPassant:     p.EnPassant,
		halfMoveClock: p.HalfMoveClock,
		hash:          p.Hash,
	})
	top := len(p.history) - 1
	p.history[top].captured = p.doMove(m)
	return Undo{pos: p, move: m, depth: len(p.history)}
}

// UnmakeMove reverses the most recent MakeMove, which must have been m.
func (p *Position) UnmakeMove(m Move) {
	n := len(p.history)
	if n == 0 {
		panic(InvariantViolation("unmake " + m.String() + " with empty history"))
	}
	st := p.history[n-1]
	if st.move != m {
		panic(InvariantViolation(fmt.Sprintf("unmake %s but last made move was %s", m, st.move)))
	}
	p.history = p.history[:n-1]

	them := p.SideToMove
	us := them.Other()
	from, to := m.From(), m.To()

	if m.IsCastle() {
		rookFrom, rookTo := castleRookSquares(to)
		p.movePiece(rookTo, rookFrom)
	}
	if m.IsPromotion() {
		p.removePiece(to)
		p.putPiece(NewPiece(Pawn, us), from)
	} else {
		p.movePiece(to, from)
	}
	if st.captured != NoPiece {
		capSq := to
		if m.Flag() == EPCapture {
			capSq = epVictim(to, us)
		}
		p.putPiece(st.captured, capSq)
	}

	p.SideToMove = us
	p.CastlingRights = st.castling
	p.EnPassant = st.enPassant
	p.HalfMoveClock = st.halfMoveClock
	if us == Black {
		p.FullMoveNumber--
	}
	p.Hash = st.hash
}

// Apply makes m and returns a function that unmakes it, for use with defer.
func (p *Position) Apply(m Move) func() {
	return p.MakeMove(m).Restore
}

package board

// Outcome classifies a position by its legal move list.
type Outcome uint8

const (
	Playing Outcome = iota
	Checkmate
	Stalemate
)

func (o Outcome) String() string {
	switch o {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	default:
		return "playing"
	}
}

// IsLegal reports whether the pseudo-legal move m leaves the mover's king
// safe. Castling additionally fails when the king starts on or crosses an
// attacked square. The position is unchanged on return.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()

	if m.IsCastle() {
		from := m.From()
		cross := from + 1
		if m.Flag() == QueenCastle {
			cross = from - 1
		}
		if p.IsSquareAttacked(from, them) || p.IsSquareAttacked(cross, them) {
			return false
		}
	}

	u := p.MakeMove(m)
	safe := !p.IsSquareAttacked(p.KingSquare(us), them)
	u.Restore()
	return safe
}

// GenerateLegal fills ml with the legal moves for the side to move.
func (p *Position) GenerateLegal(ml *MoveList) {
	ml.Clear()
	p.GeneratePseudoLegal(ml)
	p.filterLegal(ml)
}

// GenerateLegalCaptures fills ml with the legal captures for the side to move.
func (p *Position) GenerateLegalCaptures(ml *MoveList) {
	ml.Clear()
	p.GenerateCaptures(ml)
	p.filterLegal(ml)
}

// filterLegal compacts ml in place, keeping order.
func (p *Position) filterLegal(ml *MoveList) {
	n := 0
	for i := 0; i < ml.count; i++ {
		if m := ml.moves[i]; p.IsLegal(m) {
			ml.moves[n] = m
			n++
		}
	}
	ml.count = n
}

// LegalMoves returns a fresh list of legal moves.
func (p *Position) LegalMoves() *MoveList {
	ml := NewMoveList()
	p.GenerateLegal(ml)
	return ml
}

// Outcome reports checkmate or stalemate when the side to move has no legal
// move, Playing otherwise.
func (p *Position) Outcome() Outcome {
	var ml MoveList
	p.GenerateLegal(&ml)
	return p.OutcomeOf(&ml)
}

// OutcomeOf classifies the position given its already generated legal list.
func (p *Position) OutcomeOf(legal *MoveList) Outcome {
	if legal.Len() > 0 {
		return Playing
	}
	if p.InCheck() {
		return Checkmate
	}
	return Stalemate
}

// FindMove returns the legal move matching from, to and promo. promo is
// NoPieceType for non-promotions; it is required for promotions.
func (p *Position) FindMove(from, to Square, promo PieceType) (Move, bool) {
	var ml MoveList
	p.GenerateLegal(&ml)
	return MatchMove(&ml, from, to, promo)
}

// MatchMove finds the move in ml with the given squares and promotion piece.
func MatchMove(ml *MoveList, from, to Square, promo PieceType) (Move, bool) {
	for _, m := range ml.Slice() {
		if m.From() == from && m.To() == to && m.Promotion() == promo {
			return m, true
		}
	}
	return NoMove, false
}

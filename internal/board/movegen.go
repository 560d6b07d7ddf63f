package board

// GeneratePseudoLegal appends every structurally valid move for the side to
// move. Moves may leave the mover's king attacked; castling is gated only by
// rights and empty between-squares.
func (p *Position) GeneratePseudoLegal(ml *MoveList) {
	us := p.SideToMove
	targets := ^p.Occupied[us]

	p.generatePawnMoves(ml, us, false)
	p.generatePieceMoves(ml, us, targets)
	p.generateCastling(ml, us)
}

// GenerateCaptures appends captures only: ordinary captures, capture
// promotions and en passant. Quiet promotions are left out.
func (p *Position) GenerateCaptures(ml *MoveList) {
	us := p.SideToMove
	p.generatePawnMoves(ml, us, true)
	p.generatePieceMoves(ml, us, p.Occupied[us.Other()])
}

// generatePieceMoves handles knights, sliders and the king, restricted to
// the target squares.
func (p *Position) generatePieceMoves(ml *MoveList, us Color, targets Bitboard) {
	occupied := p.AllOccupied
	enemies := p.Occupied[us.Other()]
	own := &p.Pieces[us]

	for pt := Knight; pt <= King; pt++ {
		pieces := own[pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			var attacks Bitboard
			switch pt {
			case Knight:
				attacks = tables.knight[from]
			case Bishop:
				attacks = tables.Bishop(from, occupied)
			case Rook:
				attacks = tables.Rook(from, occupied)
			case Queen:
				attacks = tables.Rook(from, occupied) | tables.Bishop(from, occupied)
			case King:
				attacks = tables.king[from]
			}
			addTargets(ml, from, attacks&targets, enemies)
		}
	}
}

func addTargets(ml *MoveList, from Square, targets, enemies Bitboard) {
	for targets != 0 {
		to := targets.PopLSB()
		if enemies.Has(to) {
			ml.Add(NewMove(from, to, Capture))
		} else {
			ml.Add(NewMove(from, to, Quiet))
		}
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, us Color, capturesOnly bool) {
	pawns := p.Pieces[us][Pawn]
	if pawns == 0 {
		return
	}
	enemies := p.Occupied[us.Other()]
	empty := ^p.AllOccupied

	var push1, push2 Bitboard
	var up int
	var lastRank Bitboard
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		up, lastRank = 8, Rank8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		up, lastRank = -8, Rank1
	}

	if !capturesOnly {
		quiet := push1 &^ lastRank
		for quiet != 0 {
			to := quiet.PopLSB()
			ml.Add(NewMove(Square(int(to)-up), to, Quiet))
		}
		promos := push1 & lastRank
		for promos != 0 {
			to := promos.PopLSB()
			addPromotions(ml, Square(int(to)-up), to, false)
		}
		for push2 != 0 {
			to := push2.PopLSB()
			ml.Add(NewMove(Square(int(to)-2*up), to, DoublePush))
		}
	}

	for bb := pawns; bb != 0; {
		from := bb.PopLSB()
		hits := tables.pawn[us][from] & enemies
		for hits != 0 {
			to := hits.PopLSB()
			if lastRank.Has(to) {
				addPromotions(ml, from, to, true)
			} else {
				ml.Add(NewMove(from, to, Capture))
			}
		}
	}

	if p.EnPassant != 0 {
		target := p.EnPassantSquare()
		if p.Board[epVictim(target, us)] != NewPiece(Pawn, us.Other()) {
			return
		}
		// A pawn attacks the target iff an enemy pawn on the target would
		// attack it.
		attackers := tables.pawn[us.Other()][target] & pawns
		for attackers != 0 {
			ml.Add(NewMove(attackers.PopLSB(), target, EPCapture))
		}
	}
}

func addPromotions(ml *MoveList, from, to Square, capture bool) {
	for pt := Queen; pt >= Knight; pt-- {
		ml.Add(NewMove(from, to, promoFlag(pt, capture)))
	}
}

// castleSpec describes one castling move: required right, king path and the
// squares that must be empty.
type castleSpec struct {
	right    CastlingRights
	kingFrom Square
	kingTo   Square
	rook     Square
	between  Bitboard
	flag     MoveFlag
}

var castles = [2][2]castleSpec{
	White: {
		{WhiteKingSide, E1, G1, H1, SquareBB(F1) | SquareBB(G1), KingCastle},
		{WhiteQueenSide, E1, C1, A1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), QueenCastle},
	},
	Black: {
		{BlackKingSide, E8, G8, H8, SquareBB(F8) | SquareBB(G8), KingCastle},
		{BlackQueenSide, E8, C8, A8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), QueenCastle},
	},
}

func (p *Position) generateCastling(ml *MoveList, us Color) {
	king := NewPiece(King, us)
	rook := NewPiece(Rook, us)
	for _, cs := range castles[us] {
		if !p.CastlingRights.Has(cs.right) || p.AllOccupied&cs.between != 0 {
			continue
		}
		// Rights imported for a displaced king or rook are ignored.
		if p.Board[cs.kingFrom] != king || p.Board[cs.rook] != rook {
			continue
		}
		ml.Add(NewMove(cs.kingFrom, cs.kingTo, cs.flag))
	}
}

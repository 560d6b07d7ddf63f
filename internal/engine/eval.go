// Package engine implements the move search: negamax with alpha-beta
// pruning, quiescence and capture ordering, over a pluggable evaluator.
package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Evaluator scores a position statically in centipawns, positive when the
// side to move stands better.
type Evaluator interface {
	Evaluate(pos *board.Position) int
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(pos *board.Position) int

func (f EvaluatorFunc) Evaluate(pos *board.Position) int { return f(pos) }

// Material counts piece values only, from the side to move's view.
var Material = EvaluatorFunc(func(pos *board.Position) int {
	score := 0
	for pt := board.Pawn; pt < board.King; pt++ {
		score += pieceValues[pt] * (pos.Pieces[board.White][pt].Count() - pos.Pieces[board.Black][pt].Count())
	}
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
})

// Evaluation weights
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
)

var pieceValues = [6]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0}

// Indexed by the pawn's rank counted from its own side (0 = first rank).
var passedPawnBonus = [8]int{0, 10, 15, 25, 45, 75, 120, 0}

var (
	mobilityMg = [6]int{0, 4, 5, 2, 1, 0}
	mobilityEg = [6]int{0, 3, 4, 4, 2, 0}
)

const (
	bishopPairMg = 25
	bishopPairEg = 50

	rookOpenFile     = 20
	rookSemiOpenFile = 10

	doubledPawnMg  = -15
	doubledPawnEg  = -20
	isolatedPawnMg = -20
	isolatedPawnEg = -25

	tempo = 10

	// knight, bishop = 1, rook = 2, queen = 4; 24 with all pieces on.
	maxPhase = 24
)

var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

// Piece-square tables from White's point of view with a8 first, so a white
// piece on sq reads index sq.Mirror() and a black piece reads sq.
var (
	pawnPST = [64]int{
		0, 0, 0, 0, 0, 0, 0, 0,
		50, 50, 50, 50, 50, 50, 50, 50,
		10, 10, 20, 30, 30, 20, 10, 10,
		5, 5, 10, 25, 25, 10, 5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, -5, -10, 0, 0, -10, -5, 5,
		5, 10, 10, -20, -20, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	knightPST = [64]int{
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	}
	bishopPST = [64]int{
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	}
	rookPST = [64]int{
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, 10, 10, 10, 10, 5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		0, 0, 0, 5, 5, 0, 0, 0,
	}
	queenPST = [64]int{
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-5, 0, 5, 5, 5, 5, 0, -5,
		0, 0, 5, 5, 5, 5, 0, -5,
		-10, 5, 5, 5, 5, 5, 0, -10,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	}
	kingMgPST = [64]int{
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		20, 20, 0, 0, 0, 0, 20, 20,
		20, 30, 10, 0, 0, 10, 30, 20,
	}
	kingEgPST = [64]int{
		-50, -40, -30, -20, -20, -30, -40, -50,
		-30, -20, -10, 0, 0, -10, -20, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 30, 40, 40, 30, -10, -30,
		-30, -10, 20, 30, 30, 20, -10, -30,
		-30, -30, 0, 0, 0, 0, -30, -30,
		-50, -30, -30, -30, -30, -30, -30, -50,
	}
	psts = [5]*[64]int{&pawnPST, &knightPST, &bishopPST, &rookPST, &queenPST}
)

// Classical is the default evaluator: material, piece-square tables, pawn
// structure, mobility and a few piece terms, tapered between middlegame and
// endgame by the remaining non-pawn material.
type Classical struct{}

func (Classical) Evaluate(pos *board.Position) int {
	var mg, eg [2]int
	phase := 0

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			for bb := pos.Pieces[c][pt]; bb != 0; {
				sq := bb.PopLSB()
				idx := sq
				if c == board.White {
					idx = sq.Mirror()
				}
				if pt == board.King {
					mg[c] += kingMgPST[idx]
					eg[c] += kingEgPST[idx]
					continue
				}
				v := pieceValues[pt] + psts[pt][idx]
				mg[c] += v
				eg[c] += v
				phase += phaseWeight[pt]
			}
		}

		pm, pe := pawnStructure(pos, c)
		mg[c] += pm
		eg[c] += pe

		mm, me := mobility(pos, c)
		mg[c] += mm
		eg[c] += me

		if pos.Pieces[c][board.Bishop].Count() >= 2 {
			mg[c] += bishopPairMg
			eg[c] += bishopPairEg
		}

		r := rookFiles(pos, c)
		mg[c] += r
		eg[c] += r
	}

	if phase > maxPhase {
		phase = maxPhase
	}
	mgScore := mg[board.White] - mg[board.Black]
	egScore := eg[board.White] - eg[board.Black]
	score := (mgScore*phase + egScore*(maxPhase-phase)) / maxPhase

	if pos.SideToMove == board.Black {
		score = -score
	}
	return score + tempo
}

// forwardFiles returns the squares strictly ahead of sq for color c on the
// files in mask.
func forwardFiles(sq board.Square, c board.Color, mask board.Bitboard) board.Bitboard {
	var ahead board.Bitboard
	if c == board.White {
		for r := sq.Rank() + 1; r < 8; r++ {
			ahead |= board.RankMask[r]
		}
	} else {
		for r := sq.Rank() - 1; r >= 0; r-- {
			ahead |= board.RankMask[r]
		}
	}
	return ahead & mask
}

func adjacentFiles(file int) board.Bitboard {
	var m board.Bitboard
	if file > 0 {
		m |= board.FileMask[file-1]
	}
	if file < 7 {
		m |= board.FileMask[file+1]
	}
	return m
}

func pawnStructure(pos *board.Position, c board.Color) (mg, eg int) {
	own := pos.Pieces[c][board.Pawn]
	enemy := pos.Pieces[c.Other()][board.Pawn]

	for file := 0; file < 8; file++ {
		n := (own & board.FileMask[file]).Count()
		if n == 0 {
			continue
		}
		if n > 1 {
			mg += doubledPawnMg * (n - 1)
			eg += doubledPawnEg * (n - 1)
		}
		if own&adjacentFiles(file) == 0 {
			mg += isolatedPawnMg * n
			eg += isolatedPawnEg * n
		}
	}

	for bb := own; bb != 0; {
		sq := bb.PopLSB()
		span := board.FileMask[sq.File()] | adjacentFiles(sq.File())
		if forwardFiles(sq, c, span)&enemy != 0 {
			continue
		}
		rank := sq.Rank()
		if c == board.Black {
			rank = 7 - rank
		}
		mg += passedPawnBonus[rank] / 2
		eg += passedPawnBonus[rank]
	}
	return mg, eg
}

func mobility(pos *board.Position, c board.Color) (mg, eg int) {
	occ := pos.AllOccupied
	avail := ^pos.Occupied[c]
	for pt := board.Knight; pt <= board.Queen; pt++ {
		for bb := pos.Pieces[c][pt]; bb != 0; {
			sq := bb.PopLSB()
			var att board.Bitboard
			switch pt {
			case board.Knight:
				att = board.KnightAttacks(sq)
			case board.Bishop:
				att = board.BishopAttacks(sq, occ)
			case board.Rook:
				att = board.RookAttacks(sq, occ)
			case board.Queen:
				att = board.QueenAttacks(sq, occ)
			}
			n := (att & avail).Count()
			mg += n * mobilityMg[pt]
			eg += n * mobilityEg[pt]
		}
	}
	return mg, eg
}

func rookFiles(pos *board.Position, c board.Color) int {
	own := pos.Pieces[c][board.Pawn]
	enemy := pos.Pieces[c.Other()][board.Pawn]
	score := 0
	for bb := pos.Pieces[c][board.Rook]; bb != 0; {
		file := board.FileMask[bb.PopLSB().File()]
		switch {
		case file&(own|enemy) == 0:
			score += rookOpenFile
		case file&own == 0:
			score += rookSemiOpenFile
		}
	}
	return score
}

package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Move ordering offsets. Every capture outranks every quiet move, and every
// promotion outranks every non-promoting capture.
const (
	CaptureBase   = 10000
	PromotionBase = 20000
)

// ScoreMove returns the ordering key of m in pos. Captures use MVV-LVA
// (victim value x10 minus attacker value); promotions add the value of the
// new piece on top of any capture score.
func ScoreMove(pos *board.Position, m board.Move) int {
	score := 0
	if m.IsCapture() {
		attacker := pos.Board[m.From()]
		victim := board.PieceValue[board.Pawn]
		if m.Flag() != board.EPCapture {
			victim = pos.Board[m.To()].Value()
		}
		score = CaptureBase + victim*10 - attacker.Value()
	}
	if m.IsPromotion() {
		score += PromotionBase + board.PieceValue[m.Promotion()]
	}
	return score
}

// scoreMoves fills scores for every move in ml.
func scoreMoves(pos *board.Position, ml *board.MoveList, scores *[256]int32) {
	for i := 0; i < ml.Len(); i++ {
		scores[i] = int32(ScoreMove(pos, ml.Get(i)))
	}
}

// pickMove moves the best remaining move into slot i and returns it
// (selection sort, one step per call).
func pickMove(ml *board.MoveList, scores *[256]int32, i int) board.Move {
	best := i
	for j := i + 1; j < ml.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != i {
		ml.Swap(i, best)
		scores[i], scores[best] = scores[best], scores[i]
	}
	return ml.Get(i)
}

// OrderMoves sorts ml in place, highest ordering key first.
func OrderMoves(pos *board.Position, ml *board.MoveList) {
	var scores [256]int32
	scoreMoves(pos, ml, &scores)
	for i := 0; i < ml.Len(); i++ {
		pickMove(ml, &scores, i)
	}
}

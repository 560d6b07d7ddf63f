package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Search constants
const (
	MateScore = 50000
	Infinity  = MateScore + 1
	MaxDepth  = board.MaxPly

	// Quiescence and check evasion can run past the nominal depth; beyond
	// this ply the static evaluation is returned.
	maxPly = 2 * MaxDepth
)

// Searcher runs one search at a time. Its per-ply move lists and ordering
// keys are reused across calls; a Searcher must not be shared between
// goroutines.
type Searcher struct {
	eval   Evaluator
	pos    *board.Position
	nodes  uint64
	lists  [maxPly]board.MoveList
	scores [maxPly][256]int32
}

// NewSearcher returns a searcher using eval, or Classical when eval is nil.
func NewSearcher(eval Evaluator) *Searcher {
	if eval == nil {
		eval = Classical{}
	}
	return &Searcher{eval: eval}
}

// Nodes returns the node count of the last search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// ClampDepth bounds a requested depth to [1, MaxDepth].
func ClampDepth(depth int) int {
	return min(max(depth, 1), MaxDepth)
}

// FindBestMove searches pos to the given depth and returns the best move
// with its score from the side to move's view. It returns NoMove when the
// game is already over. pos is restored before returning.
func FindBestMove(pos *board.Position, depth int) (board.Move, int) {
	return NewSearcher(nil).FindBestMove(pos, depth)
}

// FindBestMove is the searcher-bound form of the package function.
func (s *Searcher) FindBestMove(pos *board.Position, depth int) (board.Move, int) {
	depth = ClampDepth(depth)
	s.pos = pos
	s.nodes = 0

	ml := &s.lists[0]
	pos.GenerateLegal(ml)
	if ml.Len() == 0 {
		if pos.InCheck() {
			return board.NoMove, -MateScore
		}
		return board.NoMove, 0
	}

	scores := &s.scores[0]
	scoreMoves(pos, ml, scores)

	best := board.NoMove
	alpha := -Infinity
	for i := 0; i < ml.Len(); i++ {
		m := pickMove(ml, scores, i)
		u := pos.MakeMove(m)
		score := -s.negamax(depth-1, 1, -Infinity, -alpha)
		u.Restore()
		if score > alpha {
			alpha = score
			best = m
		}
	}
	return best, alpha
}

// negamax returns the score of the current position from the side to move's
// view, failing hard: the result is clamped to [alpha, beta].
func (s *Searcher) negamax(depth, ply, alpha, beta int) int {
	pos := s.pos
	s.nodes++

	ml := &s.lists[ply]
	pos.GenerateLegal(ml)
	inCheck := pos.InCheck()
	if ml.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}
	if ply >= maxPly-1 {
		return s.eval.Evaluate(pos)
	}
	// At the horizon a quiet position goes to quiescence. A side in check
	// has no stand-pat option, so all of its evasions are searched instead.
	if depth <= 0 && !inCheck {
		return s.quiescence(ply, alpha, beta)
	}

	scores := &s.scores[ply]
	scoreMoves(pos, ml, scores)
	for i := 0; i < ml.Len(); i++ {
		m := pickMove(ml, scores, i)
		pos.MakeMove(m)
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)
		pos.UnmakeMove(m)
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// quiescence extends the search through captures until the position is
// quiet, using the static evaluation as a lower bound (stand pat).
func (s *Searcher) quiescence(ply, alpha, beta int) int {
	pos := s.pos
	if pos.InCheck() {
		return s.negamax(0, ply, alpha, beta)
	}
	s.nodes++

	standPat := s.eval.Evaluate(pos)
	if ply >= maxPly-1 {
		return standPat
	}
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	ml := &s.lists[ply]
	pos.GenerateLegalCaptures(ml)
	scores := &s.scores[ply]
	scoreMoves(pos, ml, scores)
	for i := 0; i < ml.Len(); i++ {
		m := pickMove(ml, scores, i)
		pos.MakeMove(m)
		score := -s.quiescence(ply+1, -beta, -alpha)
		pos.UnmakeMove(m)
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return score > MateScore-maxPly || score < -MateScore+maxPly
}

package engine

import (
	"strconv"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// SearchInfo reports one completed iteration.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	Move  board.Move
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Hard:
		return "hard"
	default:
		return "medium"
	}
}

// ParseDifficulty maps "easy", "medium" or "hard" to a Difficulty.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch s {
	case "easy":
		return Easy, true
	case "medium":
		return Medium, true
	case "hard":
		return Hard, true
	}
	return Medium, false
}

// DifficultyDepth maps difficulty to search depth.
var DifficultyDepth = map[Difficulty]int{
	Easy:   2,
	Medium: 3,
	Hard:   4,
}

// Depth range offered to players.
const (
	MinUserDepth = 1
	MaxUserDepth = 6
)

// Engine wraps a Searcher with a configured depth and progress reporting.
type Engine struct {
	searcher *Searcher
	depth    int

	// OnInfo, if set, is called after each iteration of a search.
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine at Medium difficulty. A nil evaluator
// selects Classical.
func NewEngine(eval Evaluator) *Engine {
	return &Engine{
		searcher: NewSearcher(eval),
		depth:    DifficultyDepth[Medium],
	}
}

// SetDifficulty sets the depth from a preset.
func (e *Engine) SetDifficulty(d Difficulty) {
	if depth, ok := DifficultyDepth[d]; ok {
		e.depth = depth
	}
}

// SetDepth sets the depth, clamped to the player-facing range.
func (e *Engine) SetDepth(depth int) {
	e.depth = min(max(depth, MinUserDepth), MaxUserDepth)
}

// Depth returns the configured search depth.
func (e *Engine) Depth() int {
	return e.depth
}

// Nodes returns the node count of the last search iteration.
func (e *Engine) Nodes() uint64 {
	return e.searcher.Nodes()
}

// Search finds the best move at the configured depth.
func (e *Engine) Search(pos *board.Position) board.Move {
	m, _ := e.SearchDepth(pos, e.depth)
	return m
}

// SearchDepth searches depths 1..depth in turn, reporting each through
// OnInfo, and returns the result of the last. Each iteration is a full
// fixed-depth search, so every report equals FindBestMove at that depth. A
// mate found early ends the loop.
func (e *Engine) SearchDepth(pos *board.Position, depth int) (board.Move, int) {
	depth = ClampDepth(depth)
	start := time.Now()

	var best board.Move
	var score int
	var total uint64
	for d := 1; d <= depth; d++ {
		best, score = e.searcher.FindBestMove(pos, d)
		total += e.searcher.Nodes()
		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth: d,
				Score: score,
				Nodes: total,
				Time:  time.Since(start),
				Move:  best,
			})
		}
		if best == board.NoMove || score > MateScore-maxPly {
			break
		}
	}
	return best, score
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.searcher.eval.Evaluate(pos)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-maxPly {
		return "Mate in " + strconv.Itoa((MateScore-score+1)/2)
	}
	if score < -MateScore+maxPly {
		return "Mated in " + strconv.Itoa((MateScore+score+1)/2)
	}
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	cp := strconv.Itoa(score % 100)
	if len(cp) == 1 {
		cp = "0" + cp
	}
	return sign + strconv.Itoa(score/100) + "." + cp
}

// Package match plays engine-vs-engine games and tallies the results.
package match

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/storage"
)

// DefaultMaxPlies ends a game as a draw when neither side has won by then.
const DefaultMaxPlies = 400

// Player is one side's engine configuration.
type Player struct {
	Name  string
	Depth int
	Eval  engine.Evaluator // nil selects the classical evaluator
}

// Recorder receives each finished game. *storage.Storage satisfies it.
type Recorder interface {
	RecordGame(storage.GameResult) (*storage.MatchStats, error)
}

// Config describes a match.
type Config struct {
	Games    int
	MaxPlies int
	// Openings are cycled through, one per game. Empty means the standard
	// starting position.
	Openings []string
	First    Player
	Second   Player
	// Alternate swaps colors every game so First plays White in even games.
	Alternate bool

	Recorder Recorder
	Logger   *log.Logger
}

// Runner plays the games of one match.
type Runner struct {
	cfg    Config
	first  *engine.Engine
	second *engine.Engine
	last   uint64 // cumulative nodes of the search in progress
	stats  storage.MatchStats
}

// NewRunner validates cfg and builds one engine per player.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Games <= 0 {
		return nil, fmt.Errorf("match: games must be positive, got %d", cfg.Games)
	}
	if cfg.MaxPlies <= 0 {
		cfg.MaxPlies = DefaultMaxPlies
	}
	if len(cfg.Openings) == 0 {
		cfg.Openings = []string{board.StartFEN}
	}
	for i, fen := range cfg.Openings {
		if _, err := board.ParseFEN(fen); err != nil {
			return nil, fmt.Errorf("match: opening %d: %w", i, err)
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	r := &Runner{
		cfg:    cfg,
		first:  newPlayerEngine(cfg.First),
		second: newPlayerEngine(cfg.Second),
	}
	count := func(si engine.SearchInfo) { r.last = si.Nodes }
	r.first.OnInfo = count
	r.second.OnInfo = count
	return r, nil
}

func newPlayerEngine(p Player) *engine.Engine {
	e := engine.NewEngine(p.Eval)
	if p.Depth > 0 {
		e.SetDepth(p.Depth)
	}
	return e
}

// Stats returns the totals of the games played so far.
func (r *Runner) Stats() storage.MatchStats {
	return r.stats
}

// Run plays every game of the match. It stops early, returning ctx.Err(),
// when ctx is cancelled; the stats then cover the finished games.
func (r *Runner) Run(ctx context.Context) (storage.MatchStats, error) {
	r.cfg.Logger.Printf("match: %d games, %s vs %s", r.cfg.Games, r.name(r.cfg.First, "first"), r.name(r.cfg.Second, "second"))

	for i := 0; i < r.cfg.Games; i++ {
		white, black := r.first, r.second
		if r.cfg.Alternate && i%2 == 1 {
			white, black = black, white
		}
		fen := r.cfg.Openings[i%len(r.cfg.Openings)]

		res, err := r.PlayGame(ctx, fen, white, black)
		if err != nil {
			return r.stats, err
		}
		r.stats.Add(res)

		if r.cfg.Recorder != nil {
			if _, err := r.cfg.Recorder.RecordGame(res); err != nil {
				return r.stats, err
			}
		}
		r.cfg.Logger.Printf("Game %d finished %s in %d plies | %s", r.stats.GamesPlayed, res.Result, res.Plies, &r.stats)
	}

	r.cfg.Logger.Printf("FINAL RESULTS %d finished | %s", r.stats.GamesPlayed, &r.stats)
	return r.stats, nil
}

func (r *Runner) name(p Player, fallback string) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("%s (depth %d)", fallback, max(p.Depth, 0))
}

// PlayGame plays one game from fen and returns its result. The game is a
// draw when it reaches the ply cap or the fifty-move limit.
func (r *Runner) PlayGame(ctx context.Context, fen string, white, black *engine.Engine) (storage.GameResult, error) {
	g, err := game.FromFEN(fen)
	if err != nil {
		return storage.GameResult{}, err
	}

	start := time.Now()
	result := storage.GameResult{Result: storage.Draw}
	ended := false
	g.OnGameEnd(func(ev game.EndEvent) {
		ended = true
		if w, ok := ev.Winner(); ok {
			result.Result = storage.WhiteWin
			if w == board.Black {
				result.Result = storage.BlackWin
			}
		}
	})

	if g.Outcome() != board.Playing {
		return storage.GameResult{}, errors.New("match: opening position is already decided")
	}

	for !ended && g.Plies() < r.cfg.MaxPlies {
		if err := ctx.Err(); err != nil {
			return storage.GameResult{}, err
		}
		pos := g.Position()
		if pos.HalfMoveClock >= 100 {
			break
		}
		eng := white
		if pos.SideToMove == board.Black {
			eng = black
		}
		r.last = 0
		m := eng.Search(pos)
		result.Nodes += r.last
		if _, err := g.TryMove(m.From(), m.To(), m.Promotion()); err != nil {
			return storage.GameResult{}, fmt.Errorf("match: engine chose %v: %w", m, err)
		}
	}

	result.Plies = g.Plies()
	result.Duration = time.Since(start)
	return result, nil
}

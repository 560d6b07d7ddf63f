// Package game is the surface a front end drives: it holds one position with
// its legal move list, accepts moves by square, and reports the end of play.
package game

import (
	"errors"
	"fmt"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

var (
	ErrGameOver     = errors.New("game over")
	ErrGameNotFound = errors.New("game not found")
)

// EndEvent describes how a game finished.
type EndEvent struct {
	Outcome    board.Outcome
	SideToMove board.Color // the side left without a move
	Plies      int
}

// Winner returns the side that delivered mate. ok is false for a stalemate.
func (e EndEvent) Winner() (c board.Color, ok bool) {
	if e.Outcome != board.Checkmate {
		return board.White, false
	}
	return e.SideToMove.Other(), true
}

// Game owns a position and the legal moves available in it. It is not safe
// for concurrent use.
type Game struct {
	pos       *board.Position
	start     string
	legal     board.MoveList
	moves     []board.Move
	engine    *engine.Engine
	eval      engine.Evaluator
	listeners []func(EndEvent)
}

// New returns a game at the standard starting position.
func New() *Game {
	g, err := FromFEN(board.StartFEN)
	if err != nil {
		panic(err)
	}
	return g
}

// FromFEN returns a game starting from fen.
func FromFEN(fen string) (*Game, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	g := &Game{pos: pos, start: pos.ToFEN()}
	g.refresh()
	return g, nil
}

// Import replaces the position. On error the game is left as it was.
func (g *Game) Import(fen string) error {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	g.pos = pos
	g.start = pos.ToFEN()
	g.moves = g.moves[:0]
	g.refresh()
	return nil
}

// SetEvaluator selects the evaluator used by engine moves. nil restores the
// default.
func (g *Game) SetEvaluator(ev engine.Evaluator) {
	g.eval = ev
	g.engine = nil
}

func (g *Game) refresh() {
	g.pos.GenerateLegal(&g.legal)
}

// PieceAt returns the piece on sq.
func (g *Game) PieceAt(sq board.Square) board.Piece {
	return g.pos.PieceAt(sq)
}

// LegalMoves returns a copy of the current legal move list.
func (g *Game) LegalMoves() []board.Move {
	return append([]board.Move(nil), g.legal.Slice()...)
}

// LegalTargets returns the destination squares of legal moves from sq.
func (g *Game) LegalTargets(from board.Square) board.Bitboard {
	var bb board.Bitboard
	for _, m := range g.legal.Slice() {
		if m.From() == from {
			bb |= board.SquareBB(m.To())
		}
	}
	return bb
}

func (g *Game) SideToMove() board.Color { return g.pos.SideToMove }

// FEN returns the current position in FEN.
func (g *Game) FEN() string { return g.pos.ToFEN() }

// StartFEN returns the position the game was started or imported from.
func (g *Game) StartFEN() string { return g.start }

// Moves returns the moves played since the start position.
func (g *Game) Moves() []board.Move {
	return append([]board.Move(nil), g.moves...)
}

// Plies returns the number of moves played.
func (g *Game) Plies() int { return len(g.moves) }

func (g *Game) Outcome() board.Outcome {
	return g.pos.OutcomeOf(&g.legal)
}

func (g *Game) InCheck() bool { return g.pos.InCheck() }

// Position returns a copy of the current position.
func (g *Game) Position() *board.Position {
	return g.pos.Clone()
}

// IsPromotionMove reports whether a legal move from -> to promotes a pawn,
// in which case RequestMove needs a promotion piece.
func (g *Game) IsPromotionMove(from, to board.Square) bool {
	for _, m := range g.legal.Slice() {
		if m.From() == from && m.To() == to && m.IsPromotion() {
			return true
		}
	}
	return false
}

// RequestMove plays the legal move matching from, to and promo. It returns
// false, leaving the game unchanged, when no such move exists.
func (g *Game) RequestMove(from, to board.Square, promo board.PieceType) bool {
	_, err := g.TryMove(from, to, promo)
	return err == nil
}

// TryMove is RequestMove with the reason for a rejection. The error wraps
// board.ErrIllegalMove.
func (g *Game) TryMove(from, to board.Square, promo board.PieceType) (board.Move, error) {
	m, ok := board.MatchMove(&g.legal, from, to, promo)
	if !ok {
		return board.NoMove, fmt.Errorf("move %v%v: %w", from, to, board.ErrIllegalMove)
	}
	g.play(m)
	return m, nil
}

// PlayUCI plays a move in coordinate notation such as "e7e8q".
func (g *Game) PlayUCI(s string) (board.Move, error) {
	m, err := board.ParseMove(s, g.pos)
	if err != nil {
		return board.NoMove, err
	}
	g.play(m)
	return m, nil
}

// PlayMove plays a move written either in coordinate notation or in SAN.
func (g *Game) PlayMove(s string) (board.Move, error) {
	m, err := board.ParseMove(s, g.pos)
	if err != nil {
		var sanErr error
		if m, sanErr = board.ParseSAN(s, g.pos); sanErr != nil {
			return board.NoMove, sanErr
		}
	}
	g.play(m)
	return m, nil
}

func (g *Game) play(m board.Move) {
	g.pos.ApplyMove(m)
	g.moves = append(g.moves, m)
	g.refresh()
	if g.legal.Len() > 0 {
		return
	}
	ev := EndEvent{
		Outcome:    g.Outcome(),
		SideToMove: g.pos.SideToMove,
		Plies:      len(g.moves),
	}
	for _, fn := range g.listeners {
		fn(ev)
	}
}

// OnGameEnd registers fn to run right after a move leaves the side to move
// without a legal reply.
func (g *Game) OnGameEnd(fn func(EndEvent)) {
	g.listeners = append(g.listeners, fn)
}

// Engine returns the engine used for computer moves, creating it on first use.
func (g *Game) Engine() *engine.Engine {
	if g.engine == nil {
		g.engine = engine.NewEngine(g.eval)
	}
	return g.engine
}

// BestMove searches the current position without playing the result.
func (g *Game) BestMove(depth int) (board.Move, int) {
	e := g.Engine()
	e.SetDepth(depth)
	return e.SearchDepth(g.pos, e.Depth())
}

// PlayEngineMove searches to depth and plays the best move found.
func (g *Game) PlayEngineMove(depth int) (board.Move, error) {
	if g.legal.Len() == 0 {
		return board.NoMove, ErrGameOver
	}
	m, _ := g.BestMove(depth)
	g.play(m)
	return m, nil
}

// SAN returns the moves played so far in standard algebraic notation.
func (g *Game) SAN() []string {
	start, err := board.ParseFEN(g.start)
	if err != nil {
		panic(board.InvariantViolation("stored start position does not parse: " + err.Error()))
	}
	return board.MovesToSAN(start, g.moves)
}

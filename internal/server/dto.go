package server

import (
	"strings"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/game"
)

// Moves travel as square names, with the promotion piece as a lowercase
// letter ("q", "r", "b", "n") when present.
type MoveDTO struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	UCI       string `json:"uci"`
}

func moveToDTO(m board.Move) MoveDTO {
	s := m.String()
	dto := MoveDTO{From: m.From().String(), To: m.To().String(), UCI: s}
	if m.IsPromotion() {
		dto.Promotion = s[4:]
	}
	return dto
}

func movesToDTO(ms []board.Move) []MoveDTO {
	out := make([]MoveDTO, len(ms))
	for i, m := range ms {
		out[i] = moveToDTO(m)
	}
	return out
}

// NewGameRequest optionally starts from a FEN instead of the initial position.
type NewGameRequest struct {
	FEN string `json:"fen,omitempty"`
}

// GameRequest addresses an existing game.
type GameRequest struct {
	GameID string `json:"game_id"`
}

// StateResponse is the full view of a game a client needs to draw it.
type StateResponse struct {
	GameID     string            `json:"game_id"`
	FEN        string            `json:"fen"`
	ToMove     string            `json:"to_move"`
	Pieces     map[string]string `json:"pieces"`
	LegalMoves []MoveDTO         `json:"legal_moves"`
	Status     string            `json:"status"`
	InCheck    bool              `json:"in_check"`
	Plies      int               `json:"plies"`
	History    []string          `json:"history"`
	Moves      []string          `json:"moves"`
}

func uciMoves(ms []board.Move) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.String()
	}
	return out
}

func stateOf(id string, g *game.Game) StateResponse {
	pieces := make(map[string]string)
	for sq := board.A1; sq < board.NoSquare; sq++ {
		if pc := g.PieceAt(sq); pc != board.NoPiece {
			pieces[sq.String()] = pc.String()
		}
	}
	return StateResponse{
		GameID:     id,
		FEN:        g.FEN(),
		ToMove:     strings.ToLower(g.SideToMove().String()),
		Pieces:     pieces,
		LegalMoves: movesToDTO(g.LegalMoves()),
		Status:     g.Outcome().String(),
		InCheck:    g.InCheck(),
		Plies:      g.Plies(),
		History:    g.SAN(),
		Moves:      uciMoves(g.Moves()),
	}
}

// MovesRequest asks for the legal destinations of the piece on From.
type MovesRequest struct {
	GameID string `json:"game_id"`
	From   string `json:"from"`
}

type MovesResponse struct {
	From    string   `json:"from"`
	Targets []string `json:"targets"`
}

// PlayRequest submits a move by squares, or as text in Move ("e2e4" or
// "Nf3"), which takes precedence when set.
type PlayRequest struct {
	GameID    string `json:"game_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	Move      string `json:"move,omitempty"`
}

// PromotionRequest asks whether From -> To needs a promotion choice.
type PromotionRequest struct {
	GameID string `json:"game_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type PromotionResponse struct {
	Promotion bool     `json:"promotion"`
	Choices   []string `json:"choices,omitempty"`
}

// AiMoveRequest asks the engine to move in the game. Depth 0 uses the
// server's default depth.
type AiMoveRequest struct {
	GameID string `json:"game_id"`
	Depth  int    `json:"depth,omitempty"`
}

type AiMoveResponse struct {
	Move      MoveDTO       `json:"move"`
	Score     int           `json:"score"`
	ScoreText string        `json:"score_text"`
	Depth     int           `json:"depth"`
	Nodes     uint64        `json:"nodes"`
	TimeMs    int64         `json:"time_ms"`
	State     StateResponse `json:"state"`
}

func parsePromotion(s string) (board.PieceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return board.NoPieceType, true
	case "q", "queen":
		return board.Queen, true
	case "r", "rook":
		return board.Rook, true
	case "b", "bishop":
		return board.Bishop, true
	case "n", "knight":
		return board.Knight, true
	default:
		return board.NoPieceType, false
	}
}

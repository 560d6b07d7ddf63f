package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
)

var errBadRequest = errors.New("bad request")

func parseSquare(field, s string) (board.Square, error) {
	sq, err := board.ParseSquare(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return board.NoSquare, fmt.Errorf("%w: %s: %v", errBadRequest, field, err)
	}
	return sq, nil
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if !s.decode(w, r, &req) {
		return
	}

	g := game.New()
	if req.FEN != "" {
		var err error
		if g, err = game.FromFEN(req.FEN); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	g.SetEvaluator(s.cfg.Eval)

	var id string
	g.OnGameEnd(func(ev game.EndEvent) {
		s.log.Printf("game %s: %s after %d plies, %s to move", id, ev.Outcome, ev.Plies, ev.SideToMove)
	})
	id = s.games.NewGame(g).ID

	var resp StateResponse
	err := s.games.View(id, func(g *game.Game) error {
		resp = stateOf(id, g)
		return nil
	})
	if err != nil {
		s.gameError(w, err)
		return
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var req GameRequest
	if !s.decode(w, r, &req) {
		return
	}
	var resp StateResponse
	err := s.games.View(req.GameID, func(g *game.Game) error {
		resp = stateOf(req.GameID, g)
		return nil
	})
	if err != nil {
		s.gameError(w, err)
		return
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	var req MovesRequest
	if !s.decode(w, r, &req) {
		return
	}
	from, err := parseSquare("from", req.From)
	if err != nil {
		s.gameError(w, err)
		return
	}

	resp := MovesResponse{From: from.String(), Targets: []string{}}
	err = s.games.View(req.GameID, func(g *game.Game) error {
		for bb := g.LegalTargets(from); bb != 0; {
			resp.Targets = append(resp.Targets, bb.PopLSB().String())
		}
		return nil
	})
	if err != nil {
		s.gameError(w, err)
		return
	}
	s.writeJSON(w, resp)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if !s.decode(w, r, &req) {
		return
	}

	var play func(g *game.Game) error
	if req.Move != "" {
		play = func(g *game.Game) error {
			if _, err := g.PlayMove(strings.TrimSpace(req.Move)); err != nil {
				return fmt.Errorf("%w: %w", errBadRequest, err)
			}
			return nil
		}
	} else {
		from, err := parseSquare("from", req.From)
		if err != nil {
			s.gameError(w, err)
			return
		}
		to, err := parseSquare("to", req.To)
		if err != nil {
			s.gameError(w, err)
			return
		}
		promo, ok := parsePromotion(req.Promotion)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "invalid promotion choice")
			return
		}
		play = func(g *game.Game) error {
			if promo == board.NoPieceType && g.IsPromotionMove(from, to) {
				return fmt.Errorf("%w: promotion piece required", errBadRequest)
			}
			_, err := g.TryMove(from, to, promo)
			return err
		}
	}

	var resp StateResponse
	err := s.games.Update(req.GameID, func(g *game.Game) error {
		if g.Outcome() != board.Playing {
			return game.ErrGameOver
		}
		if err := play(g); err != nil {
			return err
		}
		resp = stateOf(req.GameID, g)
		return nil
	})
	if err != nil {
		s.gameError(w, err)
		return
	}
	s.writeJSON(w, resp)
}

func (s *Server) handlePromotion(w http.ResponseWriter, r *http.Request) {
	var req PromotionRequest
	if !s.decode(w, r, &req) {
		return
	}
	from, err := parseSquare("from", req.From)
	if err != nil {
		s.gameError(w, err)
		return
	}
	to, err := parseSquare("to", req.To)
	if err != nil {
		s.gameError(w, err)
		return
	}

	var resp PromotionResponse
	err = s.games.View(req.GameID, func(g *game.Game) error {
		if g.IsPromotionMove(from, to) {
			resp = PromotionResponse{Promotion: true, Choices: []string{"q", "r", "b", "n"}}
		}
		return nil
	})
	if err != nil {
		s.gameError(w, err)
		return
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleAiMove(w http.ResponseWriter, r *http.Request) {
	var req AiMoveRequest
	if !s.decode(w, r, &req) {
		return
	}
	depth := req.Depth
	if depth <= 0 {
		depth = s.cfg.Depth
	}

	var resp AiMoveResponse
	err := s.games.Update(req.GameID, func(g *game.Game) error {
		var last engine.SearchInfo
		eng := g.Engine()
		eng.OnInfo = func(si engine.SearchInfo) { last = si }
		defer func() { eng.OnInfo = nil }()

		start := time.Now()
		m, err := g.PlayEngineMove(depth)
		if err != nil {
			return err
		}
		resp = AiMoveResponse{
			Move:      moveToDTO(m),
			Score:     last.Score,
			ScoreText: engine.ScoreToString(last.Score),
			Depth:     last.Depth,
			Nodes:     last.Nodes,
			TimeMs:    time.Since(start).Milliseconds(),
			State:     stateOf(req.GameID, g),
		}
		return nil
	})
	if err != nil {
		s.gameError(w, err)
		return
	}
	s.writeJSON(w, resp)
}

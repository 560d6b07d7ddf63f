// Package server exposes games over HTTP with JSON request and response
// bodies.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
)

const maxJSONBodyBytes int64 = 1 << 20

// Config holds server settings.
type Config struct {
	Addr string
	// Depth is the engine depth for ai_move requests that give none.
	Depth int
	// Eval selects the evaluator for engine moves; nil is the classical one.
	Eval engine.Evaluator
	// IdleTimeout prunes games not touched for this long. Zero keeps them.
	IdleTimeout time.Duration
	Logger      *log.Logger
}

// Server wires the HTTP layer to the game manager.
type Server struct {
	cfg   Config
	games *game.Manager
	log   *log.Logger

	srvMu sync.Mutex
	srv   *http.Server
}

// New builds a Server around games. A nil manager gets a fresh one.
func New(cfg Config, games *game.Manager) *Server {
	if games == nil {
		games = game.NewManager()
	}
	if cfg.Depth <= 0 {
		cfg.Depth = engine.DifficultyDepth[engine.Medium]
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{cfg: cfg, games: games, log: cfg.Logger}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Listen starts the HTTP server and blocks until it stops.
func (s *Server) Listen() error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	if s.cfg.IdleTimeout > 0 {
		stop := make(chan struct{})
		defer close(stop)
		go s.pruneLoop(stop)
	}

	s.log.Printf("HTTP listening on %s", s.cfg.Addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) pruneLoop(stop <-chan struct{}) {
	t := time.NewTicker(s.cfg.IdleTimeout / 2)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if n := s.games.Prune(s.cfg.IdleTimeout); n > 0 {
				s.log.Printf("pruned %d idle games", n)
			}
		}
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/new_game", s.withJSON(s.handleNewGame))
	mux.HandleFunc("POST /api/state", s.withJSON(s.handleState))
	mux.HandleFunc("POST /api/moves", s.withJSON(s.handleMoves))
	mux.HandleFunc("POST /api/play", s.withJSON(s.handlePlay))
	mux.HandleFunc("POST /api/promotion", s.withJSON(s.handlePromotion))
	mux.HandleFunc("POST /api/ai_move", s.withJSON(s.handleAiMove))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ---- JSON helpers ----

func (s *Server) withJSON(h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Body != nil && r.Body != http.NoBody {
			r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		}
		h(w, r)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.log.Printf("writeJSON: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	s.writeJSON(w, map[string]string{"error": msg})
}

// decode reads a JSON body into v, writing the error response itself when
// it fails. An empty body leaves v at its zero value.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.writeError(w, http.StatusRequestEntityTooLarge, "request too large")
		return false
	}
	s.writeError(w, http.StatusBadRequest, "invalid json")
	return false
}

// gameError maps manager and game errors to HTTP statuses.
func (s *Server) gameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, board.ErrIllegalMove), errors.Is(err, game.ErrGameOver), errors.Is(err, errBadRequest):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Printf("internal error: %v", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

package game

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

func mustFEN(t *testing.T, fen string) *Game {
	t.Helper()
	g, err := FromFEN(fen)
	if err != nil {
		t.Fatalf("FromFEN(%q): %v", fen, err)
	}
	return g
}

func TestNewGame(t *testing.T) {
	g := New()
	if g.FEN() != board.StartFEN {
		t.Errorf("FEN() = %q", g.FEN())
	}
	if n := len(g.LegalMoves()); n != 20 {
		t.Errorf("legal moves = %d, want 20", n)
	}
	if g.SideToMove() != board.White {
		t.Error("white should move first")
	}
	if g.PieceAt(board.E1) != board.WhiteKing || g.PieceAt(board.D8) != board.BlackQueen {
		t.Error("PieceAt disagrees with the start position")
	}
	if g.Outcome() != board.Playing {
		t.Errorf("Outcome() = %v", g.Outcome())
	}
}

func TestLegalTargets(t *testing.T) {
	g := New()
	want := board.SquareBB(board.E3) | board.SquareBB(board.E4)
	if got := g.LegalTargets(board.E2); got != want {
		t.Errorf("targets from e2 = %v, want %v", got, want)
	}
	want = board.SquareBB(board.A3) | board.SquareBB(board.C3)
	if got := g.LegalTargets(board.B1); got != want {
		t.Errorf("targets from b1 = %v, want %v", got, want)
	}
	if got := g.LegalTargets(board.E7); got != 0 {
		t.Errorf("black piece has targets on white's turn: %v", got)
	}
}

func TestRequestMoveRejectsIllegal(t *testing.T) {
	g := New()
	before := g.FEN()
	if g.RequestMove(board.E2, board.E5, board.NoPieceType) {
		t.Fatal("e2e5 accepted")
	}
	if g.FEN() != before || g.Plies() != 0 {
		t.Error("rejected move changed the game")
	}
	_, err := g.TryMove(board.E7, board.E5, board.NoPieceType)
	if !errors.Is(err, board.ErrIllegalMove) {
		t.Errorf("TryMove error = %v, want ErrIllegalMove", err)
	}
}

func TestRequestMoveRefreshesLegalList(t *testing.T) {
	g := New()
	if !g.RequestMove(board.E2, board.E4, board.NoPieceType) {
		t.Fatal("e2e4 rejected")
	}
	if g.SideToMove() != board.Black {
		t.Error("side to move did not flip")
	}
	if g.PieceAt(board.E4) != board.WhitePawn || g.PieceAt(board.E2) != board.NoPiece {
		t.Error("pawn not moved")
	}
	for _, m := range g.LegalMoves() {
		if g.PieceAt(m.From()).Color() != board.Black {
			t.Fatalf("legal list still holds %v", m)
		}
	}
}

func TestPromotionRequiresPiece(t *testing.T) {
	g := mustFEN(t, "1n5k/P7/8/8/8/8/8/7K w - - 0 1")
	if !g.IsPromotionMove(board.A7, board.A8) || !g.IsPromotionMove(board.A7, board.B8) {
		t.Fatal("a7 pawn moves should be promotions")
	}
	if g.IsPromotionMove(board.H1, board.H2) {
		t.Error("king move reported as promotion")
	}
	if g.RequestMove(board.A7, board.A8, board.NoPieceType) {
		t.Fatal("promotion accepted without a piece")
	}
	if !g.RequestMove(board.A7, board.B8, board.Knight) {
		t.Fatal("a7xb8=N rejected")
	}
	if g.PieceAt(board.B8) != board.WhiteKnight {
		t.Errorf("b8 holds %v", g.PieceAt(board.B8))
	}
}

func TestGameEndCheckmate(t *testing.T) {
	g := New()
	var events []EndEvent
	g.OnGameEnd(func(ev EndEvent) { events = append(events, ev) })

	for _, s := range []string{"f2f3", "e7e5", "g2g4"} {
		if _, err := g.PlayUCI(s); err != nil {
			t.Fatal(err)
		}
	}
	if len(events) != 0 {
		t.Fatal("end event before the game ended")
	}
	if _, err := g.PlayUCI("d8h4"); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d end events, want 1", len(events))
	}
	ev := events[0]
	if ev.Outcome != board.Checkmate || ev.SideToMove != board.White || ev.Plies != 4 {
		t.Errorf("event = %+v", ev)
	}
	if w, ok := ev.Winner(); !ok || w != board.Black {
		t.Errorf("Winner() = %v %v", w, ok)
	}
	if _, err := g.PlayEngineMove(2); !errors.Is(err, ErrGameOver) {
		t.Errorf("PlayEngineMove after mate: %v", err)
	}
	want := []string{"f3", "e5", "g4", "Qh4#"}
	if got := g.SAN(); !reflect.DeepEqual(got, want) {
		t.Errorf("SAN() = %v, want %v", got, want)
	}
}

func TestGameEndStalemate(t *testing.T) {
	g := mustFEN(t, "7k/5Q2/5K2/8/8/8/8/8 w - - 0 1")
	var got *EndEvent
	g.OnGameEnd(func(ev EndEvent) { got = &ev })
	if !g.RequestMove(board.F6, board.G6, board.NoPieceType) {
		t.Fatal("Kg6 rejected")
	}
	if got == nil {
		t.Fatal("no end event")
	}
	if got.Outcome != board.Stalemate || got.SideToMove != board.Black {
		t.Errorf("event = %+v", *got)
	}
	if _, ok := got.Winner(); ok {
		t.Error("stalemate has no winner")
	}
}

func TestEngineMoveDeliversMate(t *testing.T) {
	g := mustFEN(t, "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1")
	ended := false
	g.OnGameEnd(func(EndEvent) { ended = true })
	m, err := g.PlayEngineMove(2)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != "d1d8" || !ended || g.Outcome() != board.Checkmate {
		t.Errorf("played %v, ended=%v outcome=%v", m, ended, g.Outcome())
	}
}

func TestImportKeepsGameOnError(t *testing.T) {
	g := New()
	g.PlayUCI("e2e4")
	before := g.FEN()
	if err := g.Import("not a fen"); err == nil {
		t.Fatal("bad FEN accepted")
	}
	if g.FEN() != before || g.Plies() != 1 {
		t.Error("failed import changed the game")
	}
	if err := g.Import("4k3/8/8/8/8/8/8/4K3 b - - 0 1"); err != nil {
		t.Fatal(err)
	}
	if g.Plies() != 0 || g.SideToMove() != board.Black || g.StartFEN() != g.FEN() {
		t.Error("import did not reset the game")
	}
}

func TestManager(t *testing.T) {
	m := NewManager()
	s := m.NewGame(nil)
	if s.ID == "" || m.Len() != 1 {
		t.Fatalf("NewGame: id=%q len=%d", s.ID, m.Len())
	}

	err := m.Update(s.ID, func(g *Game) error {
		_, err := g.PlayUCI("e2e4")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	var fen string
	m.View(s.ID, func(g *Game) error {
		fen = g.FEN()
		return nil
	})
	if fen != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" {
		t.Errorf("FEN after update = %q", fen)
	}

	err = m.Update(s.ID, func(g *Game) error {
		_, err := g.PlayUCI("e2e4")
		return err
	})
	if !errors.Is(err, board.ErrIllegalMove) {
		t.Errorf("Update error = %v", err)
	}
	if err := m.View("missing", func(*Game) error { return nil }); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("View(missing) = %v", err)
	}
	if err := m.Delete(s.ID); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(s.ID); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("second Delete = %v", err)
	}
}

func TestManagerPrune(t *testing.T) {
	m := NewManager()
	old := m.NewGame(nil)
	old.UpdatedAt = time.Now().Add(-time.Hour)
	fresh := m.NewGame(nil)

	if n := m.Prune(time.Minute); n != 1 {
		t.Fatalf("Prune removed %d, want 1", n)
	}
	if err := m.View(fresh.ID, func(*Game) error { return nil }); err != nil {
		t.Error("fresh game pruned")
	}
	if err := m.View(old.ID, func(*Game) error { return nil }); !errors.Is(err, ErrGameNotFound) {
		t.Error("stale game kept")
	}
}

func TestPruneLeavesOtherGamesReachable(t *testing.T) {
	m := NewManager()
	busy := m.NewGame(nil)
	other := m.NewGame(nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	updated := make(chan error, 1)
	go func() {
		updated <- m.Update(busy.ID, func(*Game) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	pruned := make(chan int, 1)
	go func() { pruned <- m.Prune(time.Hour) }()
	time.Sleep(50 * time.Millisecond) // let Prune reach the busy session

	viewed := make(chan error, 1)
	go func() { viewed <- m.View(other.ID, func(*Game) error { return nil }) }()
	select {
	case err := <-viewed:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("View blocked while Prune waited on a busy game")
	}

	close(release)
	if err := <-updated; err != nil {
		t.Fatal(err)
	}
	if n := <-pruned; n != 0 {
		t.Errorf("Prune removed %d fresh games", n)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
}

func TestManagerConcurrentUpdates(t *testing.T) {
	m := NewManager()
	ids := make([]string, 4)
	for i := range ids {
		ids[i] = m.NewGame(nil).ID
	}
	var wg sync.WaitGroup
	for _, id := range ids {
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Update(id, func(g *Game) error {
					_, err := g.PlayEngineMove(1)
					return err
				})
			}()
		}
	}
	wg.Wait()
	for _, id := range ids {
		m.View(id, func(g *Game) error {
			if g.Plies() != 2 {
				t.Errorf("game %s has %d plies, want 2", id, g.Plies())
			}
			return nil
		})
	}
}

func TestPlayMoveAcceptsBothNotations(t *testing.T) {
	g := New()
	for _, s := range []string{"e2e4", "e5", "Nf3", "b8c6", "Bb5"} {
		if _, err := g.PlayMove(s); err != nil {
			t.Fatalf("PlayMove(%q): %v", s, err)
		}
	}
	var got []string
	for _, m := range g.Moves() {
		got = append(got, m.String())
	}
	if want := "e2e4 e7e5 g1f3 b8c6 f1b5"; strings.Join(got, " ") != want {
		t.Errorf("Moves() = %v, want %s", got, want)
	}

	if _, err := g.PlayMove("Ke2"); !errors.Is(err, board.ErrIllegalMove) {
		t.Errorf("PlayMove(Ke2) error = %v, want ErrIllegalMove", err)
	}
	if g.Plies() != 5 {
		t.Errorf("rejected move changed the game: %d plies", g.Plies())
	}
}

package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

func openTemp(t *testing.T) (*Storage, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "db")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, dir
}

func TestMatchStats(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		var s MatchStats
		if s.AveragePlies() != 0 || s.AverageNodes() != 0 {
			t.Error("averages of no games should be 0")
		}
	})

	t.Run("Add", func(t *testing.T) {
		var s MatchStats
		s.Add(GameResult{Result: WhiteWin, Plies: 40, Nodes: 1000})
		s.Add(GameResult{Result: BlackWin, Plies: 60, Nodes: 3000})
		s.Add(GameResult{Result: Draw, Plies: 80, Nodes: 2000})
		if s.GamesPlayed != 3 || s.WhiteWins != 1 || s.BlackWins != 1 || s.Draws != 1 {
			t.Errorf("tallies = %+v", s)
		}
		if s.AveragePlies() != 60 {
			t.Errorf("AveragePlies = %v, want 60", s.AveragePlies())
		}
		if s.AverageNodes() != 2000 {
			t.Errorf("AverageNodes = %v, want 2000", s.AverageNodes())
		}
		if got := s.String(); got != "W:1 B:1 D:1 | Avg plies: 60.0 | Avg nodes: 2000" {
			t.Errorf("String() = %q", got)
		}
	})
}

func TestRecordGamePersists(t *testing.T) {
	s, dir := openTemp(t)

	if _, err := s.RecordGame(GameResult{Result: WhiteWin, Plies: 31, Nodes: 500, Duration: time.Second}); err != nil {
		t.Fatal(err)
	}
	stats, err := s.RecordGame(GameResult{Result: Draw, Plies: 11, Nodes: 100})
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 2 || stats.TotalPlies != 42 {
		t.Errorf("totals = %+v", stats)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	loaded, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *stats {
		t.Errorf("reloaded %+v, want %+v", loaded, stats)
	}

	if err := s.ResetStats(); err != nil {
		t.Fatal(err)
	}
	loaded, err = s.LoadStats()
	if err != nil || loaded.GamesPlayed != 0 {
		t.Errorf("after reset: %+v %v", loaded, err)
	}
}

func TestPerftCache(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	pos := board.NewPosition()
	if _, ok, err := s.GetPerft(pos.Hash, 3); ok || err != nil {
		t.Fatalf("empty cache hit: %v %v", ok, err)
	}

	nodes, cached, err := s.Perft(pos, 3)
	if err != nil || cached || nodes != 8902 {
		t.Fatalf("first Perft = %d cached=%v err=%v", nodes, cached, err)
	}
	nodes, cached, err = s.Perft(pos, 3)
	if err != nil || !cached || nodes != 8902 {
		t.Fatalf("second Perft = %d cached=%v err=%v", nodes, cached, err)
	}
	if _, ok, _ := s.GetPerft(pos.Hash, 2); ok {
		t.Error("depth is not part of the key")
	}

	if err := s.PutPerft(pos.Hash, 2, 400); err != nil {
		t.Fatal(err)
	}
	if n, err := s.PerftEntries(); err != nil || n != 2 {
		t.Errorf("PerftEntries = %d %v, want 2", n, err)
	}
	if err := s.ClearPerft(); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.PerftEntries(); n != 0 {
		t.Errorf("%d entries after ClearPerft", n)
	}
}

func TestDataDirOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv(EnvDataDir, dir)

	got, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if got != dir {
		t.Errorf("GetDataDir = %q, want %q", got, dir)
	}
	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		t.Errorf("database directory was not created: %s", dbDir)
	}
}

func TestSaveStatsSeedsTotals(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	seed := &MatchStats{GamesPlayed: 4, WhiteWins: 3, Draws: 1, TotalPlies: 200, TotalNodes: 9000}
	if err := s.SaveStats(seed); err != nil {
		t.Fatal(err)
	}
	stats, err := s.RecordGame(GameResult{Result: BlackWin, Plies: 50, Nodes: 1000})
	if err != nil {
		t.Fatal(err)
	}
	want := MatchStats{GamesPlayed: 5, WhiteWins: 3, BlackWins: 1, Draws: 1, TotalPlies: 250, TotalNodes: 10000}
	if *stats != want {
		t.Errorf("totals = %+v, want %+v", stats, want)
	}
}

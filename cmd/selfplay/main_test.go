package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hailam/chesscore/internal/storage"
)

func TestRunAccumulatesAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "db")
	openings := filepath.Join(dir, "openings.txt")
	data := "# back-rank mates\n6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1\n\n3r2k1/8/8/8/8/8/5PPP/6K1 b - - 0 1\n"
	if err := os.WriteFile(openings, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	args := []string{"-games", "2", "-depth1", "1", "-depth2", "1", "-openings", openings, "-db", db}

	if err := run(args); err != nil {
		t.Fatal(err)
	}
	if err := run(args); err != nil {
		t.Fatalf("second run: %v", err)
	}
	stats := loadStats(t, db)
	if stats.GamesPlayed != 4 || stats.WhiteWins != 2 || stats.BlackWins != 2 {
		t.Errorf("totals after two runs = %+v", stats)
	}

	if err := run(append(args, "-reset")); err != nil {
		t.Fatal(err)
	}
	if stats := loadStats(t, db); stats.GamesPlayed != 2 {
		t.Errorf("totals after reset = %+v", stats)
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	for _, args := range [][]string{
		{"-games", "0", "-no-store"},
		{"-openings", filepath.Join(t.TempDir(), "missing.txt"), "-no-store"},
		{"-bogus"},
	} {
		if err := run(args); err == nil {
			t.Errorf("run(%q) succeeded", args)
		}
	}
}

func loadStats(t *testing.T, db string) *storage.MatchStats {
	t.Helper()
	st, err := storage.Open(db)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	stats, err := st.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	return stats
}

package match

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/storage"
)

const (
	whiteMatesInOne = "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1"
	blackMatesInOne = "3r2k1/8/8/8/8/8/5PPP/6K1 b - - 0 1"
)

type fakeRecorder struct {
	results []storage.GameResult
	err     error
}

func (f *fakeRecorder) RecordGame(r storage.GameResult) (*storage.MatchStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.results = append(f.results, r)
	return &storage.MatchStats{}, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRunTalliesResults(t *testing.T) {
	rec := &fakeRecorder{}
	r, err := NewRunner(Config{
		Games:    4,
		Openings: []string{whiteMatesInOne, blackMatesInOne},
		First:    Player{Depth: 1},
		Second:   Player{Depth: 1},
		Recorder: rec,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.GamesPlayed != 4 || stats.WhiteWins != 2 || stats.BlackWins != 2 || stats.Draws != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.TotalPlies != 4 {
		t.Errorf("TotalPlies = %d, want 4", stats.TotalPlies)
	}
	if stats.TotalNodes == 0 {
		t.Error("no nodes counted")
	}
	if len(rec.results) != 4 {
		t.Fatalf("recorded %d games, want 4", len(rec.results))
	}
	if rec.results[0].Result != storage.WhiteWin || rec.results[1].Result != storage.BlackWin {
		t.Errorf("results = %+v", rec.results)
	}
	if r.Stats() != stats {
		t.Error("Stats() disagrees with Run")
	}
}

func TestPlyCapIsDraw(t *testing.T) {
	r, err := NewRunner(Config{
		Games:     2,
		MaxPlies:  6,
		First:     Player{Depth: 1},
		Second:    Player{Depth: 2},
		Alternate: true,
		Logger:    quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	stats, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Draws != 2 || stats.TotalPlies != 12 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AveragePlies() != 6 {
		t.Errorf("AveragePlies = %v", stats.AveragePlies())
	}
}

func TestFiftyMoveRuleIsDraw(t *testing.T) {
	r, err := NewRunner(Config{Games: 1, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	res, err := r.PlayGame(context.Background(), "4k3/8/8/8/8/8/8/R3K3 w - - 100 80", r.first, r.second)
	if err != nil {
		t.Fatal(err)
	}
	if res.Result != storage.Draw || res.Plies != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r, err := NewRunner(Config{Games: 3, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err := r.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if stats.GamesPlayed != 0 {
		t.Errorf("played %d games after cancel", stats.GamesPlayed)
	}
}

func TestRecorderErrorStopsMatch(t *testing.T) {
	boom := errors.New("disk full")
	r, err := NewRunner(Config{
		Games:    2,
		Openings: []string{whiteMatesInOne},
		Recorder: &fakeRecorder{err: boom},
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestNewRunnerValidates(t *testing.T) {
	if _, err := NewRunner(Config{Games: 0}); err == nil {
		t.Error("zero games accepted")
	}
	_, err := NewRunner(Config{Games: 1, Openings: []string{"8/8/8/8/8/8/8/8 w - - 0 1"}})
	var fe *board.FormatError
	if !errors.As(err, &fe) {
		t.Errorf("err = %v, want a FormatError", err)
	}
}

func TestRecordsIntoStorage(t *testing.T) {
	st, err := storage.Open("")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	r, err := NewRunner(Config{
		Games:    2,
		Openings: []string{blackMatesInOne},
		Recorder: st,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	saved, err := st.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	if saved.GamesPlayed != 2 || saved.BlackWins != 2 {
		t.Errorf("saved stats = %+v", saved)
	}
}

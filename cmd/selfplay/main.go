// Command selfplay runs engine-vs-engine games and keeps running totals in
// the data directory.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/match"
	"github.com/hailam/chesscore/internal/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			log.Print(err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("selfplay", flag.ContinueOnError)
	games := fs.Int("games", 10, "number of games to play")
	firstDepth := fs.Int("depth1", 2, "search depth of the first player")
	secondDepth := fs.Int("depth2", 2, "search depth of the second player")
	material := fs.Bool("material2", false, "second player evaluates by material only")
	maxPlies := fs.Int("max-plies", match.DefaultMaxPlies, "adjudicate a draw after this many plies")
	alternate := fs.Bool("alternate", true, "swap colors every game")
	openings := fs.String("openings", "", "file with one FEN per line to cycle through")
	dbDir := fs.String("db", "", "database directory (default: the data directory)")
	noStore := fs.Bool("no-store", false, "do not record results")
	reset := fs.Bool("reset", false, "clear recorded totals before playing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := match.Config{
		Games:     *games,
		MaxPlies:  *maxPlies,
		First:     match.Player{Name: fmt.Sprintf("classical (depth %d)", *firstDepth), Depth: *firstDepth},
		Second:    match.Player{Name: fmt.Sprintf("classical (depth %d)", *secondDepth), Depth: *secondDepth},
		Alternate: *alternate,
	}
	if *material {
		cfg.Second.Name = fmt.Sprintf("material (depth %d)", *secondDepth)
		cfg.Second.Eval = engine.Material
	}
	if *openings != "" {
		fens, err := readLines(*openings)
		if err != nil {
			return fmt.Errorf("openings: %w", err)
		}
		cfg.Openings = fens
	}

	var st *storage.Storage
	if !*noStore {
		var err error
		if *dbDir != "" {
			st, err = storage.Open(*dbDir)
		} else {
			st, err = storage.NewStorage()
		}
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer st.Close()
		if *reset {
			if err := st.ResetStats(); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
		}
		cfg.Recorder = st
	}

	runner, err := match.NewRunner(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if _, err := runner.Run(ctx); err != nil {
		log.Printf("match stopped: %v", err)
	}

	if st != nil {
		total, err := st.LoadStats()
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		log.Printf("All recorded games: %d | %s", total.GamesPlayed, total)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// Command perft counts move-generation leaf nodes for a position, optionally
// split by root move, with results cached in the data directory.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/storage"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			log.Print(err)
		}
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("perft", flag.ContinueOnError)
	fen := fs.String("fen", board.StartFEN, "position to count from")
	depth := fs.Int("depth", 5, "perft depth")
	divide := fs.Bool("divide", false, "print the count under each root move")
	noCache := fs.Bool("no-cache", false, "skip the persistent perft cache")
	dbDir := fs.String("db", "", "database directory (default: the data directory)")
	clearCache := fs.Bool("clear-cache", false, "drop cached perft results and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", *depth)
	}
	pos, err := board.ParseFEN(*fen)
	if err != nil {
		return fmt.Errorf("bad -fen: %w", err)
	}
	if *clearCache && *noCache {
		return errors.New("-clear-cache needs the cache")
	}

	var st *storage.Storage
	if !*noCache {
		if *dbDir != "" {
			st, err = storage.Open(*dbDir)
		} else {
			st, err = storage.NewStorage()
		}
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer st.Close()
	}
	if *clearCache {
		if err := st.ClearPerft(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		log.Print("perft cache cleared")
		return nil
	}

	start := time.Now()
	var nodes uint64
	cached := false
	switch {
	case *divide:
		for _, e := range pos.Divide(*depth) {
			fmt.Fprintf(out, "%s: %d\n", e.Move, e.Nodes)
			nodes += e.Nodes
		}
		fmt.Fprintln(out)
		if st != nil {
			if err := st.PutPerft(pos.Hash, *depth, nodes); err != nil {
				log.Printf("cache write: %v", err)
			}
		}
	case st != nil:
		nodes, cached, err = st.Perft(pos, *depth)
		if err != nil {
			return fmt.Errorf("perft: %w", err)
		}
	default:
		nodes = pos.Perft(*depth)
	}
	elapsed := time.Since(start)

	fmt.Fprintf(out, "Nodes searched: %d\n", nodes)
	if cached {
		fmt.Fprintln(out, "(from cache)")
		return nil
	}
	fmt.Fprintf(out, "Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(out, "NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
	return nil
}

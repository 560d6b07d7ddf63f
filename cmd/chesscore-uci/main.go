package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	depth      = flag.Int("depth", 0, "default search depth (0 uses the difficulty preset)")
	difficulty = flag.String("difficulty", "medium", "easy, medium or hard")
	material   = flag.Bool("material", false, "evaluate by material only")
	perftCache = flag.Bool("perft-cache", false, "cache perft counts in the data directory")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	d, ok := engine.ParseDifficulty(*difficulty)
	if !ok {
		log.Fatalf("unknown difficulty %q", *difficulty)
	}

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	var ev engine.Evaluator
	if *material {
		ev = engine.Material
	}
	eng := engine.NewEngine(ev)
	eng.SetDifficulty(d)
	if *depth > 0 {
		eng.SetDepth(*depth)
	}

	protocol := uci.New(eng, os.Stdin, os.Stdout)

	if *perftCache {
		st, err := storage.NewStorage()
		if err != nil {
			log.Printf("Warning: perft cache unavailable: %v", err)
		} else {
			defer st.Close()
			protocol.SetPerftCache(st)
		}
	}

	if err := protocol.Run(); err != nil {
		log.Printf("uci: %v", err)
	}
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/server"
)

func main() {
	// Flags with env fallbacks.
	addr := flag.String("addr", getenv("CHESSCORE_ADDR", ":8080"), "listen address")
	depth := flag.Int("depth", getenvInt("CHESSCORE_DEPTH", engine.DifficultyDepth[engine.Medium]), "default engine depth for ai_move")
	idle := flag.Duration("idle", 2*time.Hour, "drop games idle for this long (0 keeps them)")
	material := flag.Bool("material", false, "evaluate by material only")
	flag.Parse()

	cfg := server.Config{
		Addr:        *addr,
		Depth:       min(max(*depth, engine.MinUserDepth), engine.MaxUserDepth),
		IdleTimeout: *idle,
	}
	if *material {
		cfg.Eval = engine.Material
	}
	srv := server.New(cfg, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(shutdown); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := srv.Listen(); err != nil {
		log.Fatal(err)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("ignoring %s=%q: not an integer", key, v)
	}
	return def
}

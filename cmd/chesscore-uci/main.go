package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/profile"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/perft"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to this directory")
	hashMB     = flag.Int("hash", 64, "in-memory perft hash size in MB")
	useCache   = flag.Bool("cache", false, "use the persistent perft cache")
	debug      = flag.Bool("debug", false, "log invariant violations from every apply and undo")
)

func main() {
	flag.Parse()
	board.DebugMoveValidation = *debug

	if err := run(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func run() error {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(profilePath)).Stop()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	r := &perft.Runner{Workers: 1}
	if *hashMB > 0 {
		r.Table = perft.NewHashTable(*hashMB)
	}
	if *useCache {
		cache, err := storage.OpenDefault()
		if err != nil {
			return fmt.Errorf("could not open perft cache: %w", err)
		}
		defer cache.Close()
		r.Cache = cache
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	protocol := uci.New(r, os.Stdout)
	if err := protocol.Run(ctx, os.Stdin); err != nil {
		return fmt.Errorf("uci: %w", err)
	}
	return nil
}

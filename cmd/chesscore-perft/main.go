package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/profile"
	"golang.org/x/exp/maps"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/perft"
	"github.com/hailam/chesscore/internal/storage"
)

var (
	fen        = flag.String("fen", board.StartFEN, "position to count from")
	depth      = flag.Int("depth", 5, "plies to count")
	divide     = flag.Bool("divide", false, "print the count below each root move")
	useCache   = flag.Bool("cache", false, "read and write the persistent perft cache")
	cacheDir   = flag.String("cachedir", "", "perft cache directory (default: application data dir)")
	hashMB     = flag.Int("hash", 64, "in-memory hash table size in MB, 0 to disable")
	workers    = flag.Int("workers", runtime.NumCPU(), "root moves walked in parallel")
	verify     = flag.Bool("verify", false, "check every invariant after each move (slow)")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to this directory")
	debug      = flag.Bool("debug", false, "log invariant violations from every apply and undo")
	history    = flag.Bool("history", false, "list previous runs stored in the cache and exit")
)

func main() {
	flag.Parse()
	board.DebugMoveValidation = *debug

	// run returns before exiting so its deferred profile and cache shutdown happen
	if err := run(); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func run() error {
	if *cpuprofile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuprofile)).Stop()
		log.Printf("CPU profiling enabled, writing to %s", *cpuprofile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tables := board.DefaultTables()
	log.Printf("attack tables: %s", bytesize.ByteSize(tables.Attacks.SizeBytes()))

	pos, err := tables.ParseFEN(*fen)
	if err != nil {
		return err
	}

	r := &perft.Runner{Workers: *workers, Verify: *verify}
	if *hashMB > 0 {
		r.Table = perft.NewHashTable(*hashMB)
		log.Printf("hash table: %s", bytesize.ByteSize(r.Table.SizeBytes()))
	}

	var cache *storage.PerftCache
	if *useCache || *history {
		cache, err = openCache()
		if err != nil {
			return err
		}
		defer cache.Close()
		r.Cache = cache
	}

	if *history {
		return printHistory(cache)
	}

	fmt.Print(pos)

	start := time.Now()
	var nodes uint64
	if *divide {
		nodes, err = printDivide(ctx, r, pos)
	} else {
		nodes, err = r.Count(ctx, pos, *depth)
	}
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	rec := storage.RunRecord{FEN: pos.ToFEN(), Depth: *depth, Nodes: nodes, Elapsed: elapsed}
	fmt.Printf("\nperft(%d) = %d  (%v, %.0f nps)\n", *depth, nodes, elapsed.Round(time.Millisecond), rec.NodesPerSecond())
	if r.Table != nil {
		fmt.Printf("hash hit rate: %.1f%%\n", r.Table.HitRate())
	}

	if cache != nil {
		if err := cache.SaveRun(rec); err != nil {
			return err
		}
		lsm, vlog := cache.Size()
		log.Printf("cache size: %s", bytesize.ByteSize(lsm+vlog))
	}
	return nil
}

func openCache() (*storage.PerftCache, error) {
	if *cacheDir != "" {
		return storage.Open(*cacheDir)
	}
	return storage.OpenDefault()
}

func printDivide(ctx context.Context, r *perft.Runner, pos *board.Position) (uint64, error) {
	div, err := r.Divide(ctx, pos, *depth)
	if err != nil {
		return 0, err
	}

	actions := maps.Keys(div)
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].String() < actions[j].String()
	})

	var total uint64
	for _, a := range actions {
		fmt.Printf("%s: %d\n", a, div[a])
		total += div[a]
	}
	fmt.Printf("\nMoves: %d\n", len(actions))
	return total, nil
}

func printHistory(cache *storage.PerftCache) error {
	runs, err := cache.Runs()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  depth %d  %12d nodes  %10v  %s\n",
			r.Finished.Format(time.DateTime), r.Depth, r.Nodes, r.Elapsed.Round(time.Millisecond), r.FEN)
	}
	return nil
}

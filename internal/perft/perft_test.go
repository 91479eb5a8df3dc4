package perft

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/movesource"
	"github.com/hailam/chesscore/internal/storage"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

type perftCase struct {
	depth    int
	expected uint64
}

func runPerft(t *testing.T, r *Runner, fen string, tests []perftCase) {
	t.Helper()
	pos := mustFEN(t, fen)
	want := pos.ToFEN()
	for _, tc := range tests {
		if testing.Short() && tc.expected > 100000 {
			continue
		}
		got, err := r.Count(context.Background(), pos, tc.depth)
		if err != nil {
			t.Fatalf("perft(%d): %v", tc.depth, err)
		}
		if got != tc.expected {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
		if pos.ToFEN() != want || pos.Depth() != 0 {
			t.Fatalf("position changed by perft(%d): %s", tc.depth, pos.ToFEN())
		}
	}
}

// TestPerftStartingPosition checks Apply against the mirror from the starting
// position at every node down to depth 3.
func TestPerftStartingPosition(t *testing.T) {
	runPerft(t, &Runner{Verify: true}, board.StartFEN, []perftCase{
		{1, 20},
		{2, 400},
		{3, 8902},
	})
	runPerft(t, &Runner{Workers: 4}, board.StartFEN, []perftCase{
		{4, 197281},
	})
}

// TestPerftKiwipete tests the famous Kiwipete position with many edge cases.
func TestPerftKiwipete(t *testing.T) {
	runPerft(t, &Runner{Verify: true}, kiwipete, []perftCase{
		{1, 48},
		{2, 2039},
	})
	runPerft(t, &Runner{Workers: 4}, kiwipete, []perftCase{
		{3, 97862},
	})
}

// TestPerftPosition3 tests en passant and rook endgame edge cases.
func TestPerftPosition3(t *testing.T) {
	runPerft(t, &Runner{Verify: true}, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []perftCase{
		{1, 14},
		{2, 191},
		{3, 2812},
	})
	runPerft(t, &Runner{Workers: 2}, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", []perftCase{
		{4, 43238},
	})
}

// TestPerftPosition4 covers promotions and castling under attack.
func TestPerftPosition4(t *testing.T) {
	runPerft(t, &Runner{Verify: true}, "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []perftCase{
		{1, 6},
		{2, 264},
		{3, 9467},
	})
}

// TestPerftEnPassantPin tests the horizontal pin that forbids an en passant capture.
func TestPerftEnPassantPin(t *testing.T) {
	runPerft(t, &Runner{Verify: true}, "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", []perftCase{
		{1, 6},
		{2, 94},
	})
}

func TestVerifyCatchesMirrorMismatch(t *testing.T) {
	const fen = "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"
	pos := mustFEN(t, fen)
	m, err := movesource.NewMirror(pos)
	if err != nil {
		t.Fatal(err)
	}
	// Drop the rights on the position only. Both sides still produce the
	// same moves, so only the comparison can notice.
	pos.CastlingRights = board.NoCastling
	pos.Hash = pos.ComputeHash()
	want := pos.ToFEN()

	r := &Runner{Verify: true}
	if _, err := r.walk(context.Background(), pos, m, 2); !errors.Is(err, movesource.ErrMismatch) {
		t.Fatalf("err = %v, want ErrMismatch", err)
	}
	if pos.ToFEN() != want || pos.Depth() != 0 {
		t.Errorf("position not restored: %s depth %d", pos.ToFEN(), pos.Depth())
	}

	r.Verify = false
	if _, err := r.walk(context.Background(), mustFEN(t, fen), m, 2); err != nil {
		t.Errorf("unverified walk: %v", err)
	}
}

func TestDivideSumsToCount(t *testing.T) {
	pos := mustFEN(t, kiwipete)
	r := &Runner{Workers: 3}

	div, err := r.Divide(context.Background(), pos, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(div) != 48 {
		t.Fatalf("divide has %d root moves, want 48", len(div))
	}
	var sum uint64
	for _, n := range div {
		sum += n
	}
	if sum != 2039 {
		t.Errorf("divide sums to %d, want 2039", sum)
	}
	if n := div[board.NewCastle(board.E1, board.G1)]; n == 0 {
		t.Error("no entry for e1g1 castle")
	}

	if _, err := r.Divide(context.Background(), pos, 0); !errors.Is(err, ErrDepth) {
		t.Errorf("Divide depth 0 err = %v, want ErrDepth", err)
	}
}

func TestPerftWithCaches(t *testing.T) {
	cache, err := storage.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	r := &Runner{Cache: cache, Table: NewHashTable(1), Workers: 2}
	pos := board.NewPosition()

	for pass := 0; pass < 2; pass++ {
		got, err := r.Count(context.Background(), pos, 3)
		if err != nil {
			t.Fatal(err)
		}
		if got != 8902 {
			t.Errorf("pass %d: perft(3) = %d, want 8902", pass, got)
		}
	}

	nodes, ok, err := cache.Get(pos.Hash, 3)
	if err != nil || !ok || nodes != 8902 {
		t.Errorf("cache holds %d, %v, %v for the root", nodes, ok, err)
	}
	if n, _ := cache.Len(); n != 21 {
		t.Errorf("cache has %d entries, want 21 (root and 20 children)", n)
	}
}

func TestPerftCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{}
	_, err := r.Count(ctx, board.NewPosition(), 5)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// TestRandomWalkHashConsistency plays random legal games and checks the
// incremental hash against a full recomputation after every move, then
// unwinds the whole game.
func TestRandomWalkHashConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	starts := []string{board.StartFEN, kiwipete, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"}

	for _, fen := range starts {
		for game := 0; game < 8; game++ {
			pos := mustFEN(t, fen)
			initial := pos.ToFEN()
			initialHash := pos.Hash
			var played []board.Action

			for ply := 0; ply < 80; ply++ {
				actions, err := movesource.LegalActions(pos)
				if err != nil {
					t.Fatal(err)
				}
				if len(actions) == 0 {
					break
				}
				a := actions[rng.Intn(len(actions))]
				prevRights := pos.CastlingRights
				pos.Apply(a)
				played = append(played, a)

				if err := pos.CheckInvariants(); err != nil {
					t.Fatalf("%s after %v: %v", fen, played, err)
				}
				if gained := pos.CastlingRights &^ prevRights; gained != 0 {
					t.Fatalf("%s gained castling rights %s", a, gained)
				}
			}

			for i := len(played) - 1; i >= 0; i-- {
				pos.Undo(played[i])
			}
			if pos.ToFEN() != initial || pos.Hash != initialHash || pos.Depth() != 0 {
				t.Fatalf("unwinding %d moves from %q left %q", len(played), initial, pos.ToFEN())
			}
		}
	}
}

func TestHashTable(t *testing.T) {
	tt := NewHashTable(1)
	if tt.Size() == 0 || tt.Size()&(tt.Size()-1) != 0 {
		t.Fatalf("size %d is not a power of two", tt.Size())
	}

	if _, ok := tt.Probe(99, 3); ok {
		t.Error("hit on empty table")
	}
	tt.Store(99, 3, 8902)
	if n, ok := tt.Probe(99, 3); !ok || n != 8902 {
		t.Errorf("Probe = %d, %v", n, ok)
	}
	if _, ok := tt.Probe(99, 2); ok {
		t.Error("hit at the wrong depth")
	}

	// A shallower entry for a colliding key does not evict a deeper one.
	collide := 99 + tt.Size()
	tt.Store(collide, 2, 400)
	if _, ok := tt.Probe(99, 3); !ok {
		t.Error("deeper entry evicted by a shallower one")
	}

	if tt.HitRate() <= 0 {
		t.Error("hit rate not tracked")
	}
	tt.Clear()
	if _, ok := tt.Probe(99, 3); ok {
		t.Error("entry survived Clear")
	}
}

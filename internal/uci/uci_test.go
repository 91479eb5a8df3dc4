package uci

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hailam/chesscore/internal/perft"
)

func run(t *testing.T, script string) (*UCI, string) {
	t.Helper()
	var out bytes.Buffer
	u := New(&perft.Runner{}, &out)
	if err := u.Run(context.Background(), strings.NewReader(script)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return u, out.String()
}

func TestHandshake(t *testing.T) {
	_, out := run(t, "uci\nisready\nquit\n")
	if !strings.Contains(out, "uciok") || !strings.Contains(out, "readyok") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPositionWithMoves(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{
			"startpos",
			"position startpos moves e2e4 c7c5 g1f3\n",
			"rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2",
		},
		{
			"castle and en passant",
			"position fen r3k2r/8/8/8/3p4/8/4P3/R3K2R w KQkq - 0 1 moves e1g1 e8c8 e2e4 d4e3\n",
			"2kr3r/8/8/8/8/4p3/8/R4RK1 w - - 0 3",
		},
		{
			"promotion",
			"position fen 4k3/P7/8/8/8/8/8/4K3 w - - 0 1 moves a7a8n\n",
			"N3k3/8/8/8/8/8/8/4K3 b - - 0 1",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, out := run(t, tc.script)
			if got := u.Position().ToFEN(); got != tc.want {
				t.Errorf("FEN = %q, want %q\n%s", got, tc.want, out)
			}
		})
	}
}

func TestBadMoveStopsSetup(t *testing.T) {
	u, out := run(t, "position startpos moves e2e4 e2e4 d7d5\n")
	if !strings.Contains(out, "invalid move e2e4") {
		t.Errorf("missing error:\n%s", out)
	}
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if got := u.Position().ToFEN(); got != want {
		t.Errorf("FEN = %q, want %q", got, want)
	}
}

func TestBadFENKeepsPosition(t *testing.T) {
	// d6 is occupied, so it cannot be an en passant target
	u, out := run(t, "position fen 4k3/8/3p4/3pP3/8/8/8/4K3 w - d6 0 2 moves e5d6\n")
	if !strings.Contains(out, "invalid FEN") {
		t.Errorf("missing error:\n%s", out)
	}
	if got := u.Position().ToFEN(); got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" {
		t.Errorf("FEN = %q", got)
	}
	if err := u.Position().CheckInvariants(); err != nil {
		t.Error(err)
	}
}

func TestUndo(t *testing.T) {
	u, out := run(t, "position startpos moves e2e4 e7e5\nundo\nundo\nundo\n")
	if got := u.Position().ToFEN(); got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1" {
		t.Errorf("FEN after undo = %q", got)
	}
	if !strings.Contains(out, "nothing to undo") {
		t.Errorf("third undo not reported:\n%s", out)
	}
}

func TestPerftCommands(t *testing.T) {
	_, out := run(t, "position startpos\nperft 2\ngo perft 3\nisready\nucinewgame\n")
	if !strings.Contains(out, "Nodes: 400\n") {
		t.Errorf("perft 2 missing:\n%s", out)
	}
	if !strings.Contains(out, "Nodes: 8902\n") {
		t.Errorf("go perft 3 missing:\n%s", out)
	}

	_, out = run(t, "position fen 4k3/P7/8/8/8/8/8/4K3 w - - 0 1\ndivide 1\n")
	for _, line := range []string{"a7a8q: 1", "a7a8n: 1", "e1d2: 1", "Nodes: 9"} {
		if !strings.Contains(out, line) {
			t.Errorf("divide output missing %q:\n%s", line, out)
		}
	}
}

func TestGoWithoutPerft(t *testing.T) {
	_, out := run(t, "go depth 10\n")
	if !strings.Contains(out, "only \"go perft <depth>\"") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

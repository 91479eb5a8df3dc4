package movesource

import (
	"errors"
	"testing"

	"github.com/dylhunn/dragontoothmg"

	"github.com/hailam/chesscore/internal/board"
)

func kinds(actions []board.Action) map[board.ActionKind]int {
	n := make(map[board.ActionKind]int)
	for _, a := range actions {
		n[a.Kind()]++
	}
	return n
}

func TestLegalActionCounts(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		total     int
		castles   int
		enPassant int
		promos    int
	}{
		{"start", board.StartFEN, 20, 0, 0, 0},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 48, 2, 0, 0},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2", 7, 0, 1, 0},
		{"promotion", "4k3/P7/8/8/8/8/8/4K3 w - - 0 1", 9, 0, 0, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := board.ParseFEN(tc.fen)
			if err != nil {
				t.Fatal(err)
			}
			actions, err := LegalActions(pos)
			if err != nil {
				t.Fatal(err)
			}
			if len(actions) != tc.total {
				t.Errorf("got %d actions, want %d: %v", len(actions), tc.total, actions)
			}
			k := kinds(actions)
			if k[board.KindCastle] != tc.castles {
				t.Errorf("castles = %d, want %d", k[board.KindCastle], tc.castles)
			}
			if k[board.KindEnPassant] != tc.enPassant {
				t.Errorf("en passant = %d, want %d", k[board.KindEnPassant], tc.enPassant)
			}
			if k[board.KindPromotion] != tc.promos {
				t.Errorf("promotions = %d, want %d", k[board.KindPromotion], tc.promos)
			}
		})
	}
}

func TestActionsApplyCleanly(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	actions, err := LegalActions(pos)
	if err != nil {
		t.Fatal(err)
	}
	want := pos.ToFEN()
	for _, a := range actions {
		if err := pos.TryApply(a); err != nil {
			t.Fatalf("%s: %v", a, err)
		}
		if err := pos.CheckInvariants(); err != nil {
			t.Fatalf("after %s: %v", a, err)
		}
		pos.Undo(a)
		if got := pos.ToFEN(); got != want {
			t.Fatalf("undo %s: %q, want %q", a, got, want)
		}
	}
}

func TestMirrorTracksPosition(t *testing.T) {
	pos := board.NewPosition()
	m, err := NewMirror(pos)
	if err != nil {
		t.Fatal(err)
	}

	moves := m.Moves()
	mv := moves[0]
	a := Translate(pos, mv)
	pos.Apply(a)
	m.Push(mv)

	if got := len(m.Moves()); got != 20 {
		t.Errorf("reply count = %d, want 20", got)
	}

	m.Pop()
	pos.Undo(a)
	if got := len(m.Moves()); got != 20 {
		t.Errorf("after pop: %d moves, want 20", got)
	}
}

func TestMirrorCompare(t *testing.T) {
	pos, err := board.ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMirror(pos)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Compare(pos); err != nil {
		t.Fatalf("fresh mirror: %v", err)
	}

	var castle dragontoothmg.Move
	for _, mv := range m.Moves() {
		if Translate(pos, mv) == board.NewCastle(board.E1, board.G1) {
			castle = mv
		}
	}
	if castle == 0 {
		t.Fatal("no e1g1 castle generated")
	}

	tests := []struct {
		name string
		a    board.Action
		ok   bool
	}{
		{"castle", board.NewCastle(board.E1, board.G1), true},
		{"king walks without the rook", board.NewNormal(board.E1, board.G1), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos.Apply(tc.a)
			m.Push(castle)
			defer func() {
				m.Pop()
				pos.Undo(tc.a)
			}()

			err := m.Compare(pos)
			if tc.ok && err != nil {
				t.Errorf("Compare: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrMismatch) {
				t.Errorf("Compare err = %v, want ErrMismatch", err)
			}
		})
	}
}

func TestMirrorPopEmptyPanics(t *testing.T) {
	m, err := NewMirror(board.NewPosition())
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("Pop on fresh mirror did not panic")
		}
	}()
	m.Pop()
}

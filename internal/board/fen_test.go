package board

import (
	"errors"
	"testing"
)

func TestFENRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3",
		"4k3/8/8/8/3Pp3/8/8/4K3 b - d3 0 40",
		"r3k2r/8/8/8/8/8/8/R3K2R b Kq - 12 77",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Errorf("ParseFEN(%q): %v", fen, err)
			continue
		}
		if got := pos.ToFEN(); got != fen {
			t.Errorf("round trip:\n got %q\nwant %q", got, fen)
		}
		if err := pos.CheckInvariants(); err != nil {
			t.Errorf("%q: %v", fen, err)
		}
	}
}

func TestParseFENDefaults(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/8/8/8/K6k w - -")
	if err != nil {
		t.Fatal(err)
	}
	if pos.HalfMoveClock != 0 || pos.FullMoveNumber != 1 {
		t.Errorf("clocks %d/%d, want 0/1", pos.HalfMoveClock, pos.FullMoveNumber)
	}
}

func TestParseFENStartPlacement(t *testing.T) {
	pos := NewPosition()
	if pos.Occupancy(White) != Rank1|Rank2 || pos.Occupancy(Black) != Rank7|Rank8 {
		t.Errorf("occupancy white %v black %v", pos.Occupancy(White).Squares(), pos.Occupancy(Black).Squares())
	}
	if pos.PieceAt(E1) != WhiteKing || pos.PieceAt(D8) != BlackQueen {
		t.Errorf("e1=%s d8=%s", pos.PieceAt(E1), pos.PieceAt(D8))
	}
	if pos.CastlingRights != AllCastling || pos.EnPassant != NoSquare {
		t.Errorf("rights %s ep %s", pos.CastlingRights, pos.EnPassant)
	}
}

func TestParseFENErrors(t *testing.T) {
	bad := []string{
		"",
		"8/8/8/8/8/8/8 w - -",
		"8/8/8/8/8/8/8/9 w - -",
		"8/8/8/8/8/8/8/7 w - -",
		"8/8/8/8/8/8/8/7X w - -",
		"8/8/8/8/8/8/8/8 x - -",
		"8/8/8/8/8/8/8/8 w KX -",
		"8/8/8/8/8/8/8/8 w - e4",
		"8/8/8/8/8/8/8/8 w - z9",
		"8/8/8/8/8/8/8/8 w - - -1 1",
		"8/8/8/8/8/8/8/8 w - - 0 zero",
		"4k3/8/8/8/8/8/8/4K2\u0150 w - - 0 1",
		"4k3/8/8/8/8/8/8/4K2\u00e9 w - - 0 1",
		// bad en passant fields
		"4k3/8/3p4/3pP3/8/8/8/4K3 w - d6 0 2",
		"4k3/8/8/4P3/8/8/8/4K3 w - d6 0 2",
		"4k3/8/8/8/3Pp3/8/8/4K3 w - d3 0 2",
		"4k3/8/8/3pP3/8/8/8/4K3 b - d6 0 2",
	}
	for _, fen := range bad {
		if _, err := ParseFEN(fen); !errors.Is(err, ErrInvalidFEN) {
			t.Errorf("ParseFEN(%q) err = %v, want ErrInvalidFEN", fen, err)
		}
	}
}

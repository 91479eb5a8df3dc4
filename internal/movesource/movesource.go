// Package movesource supplies legal moves for a board.Position by running an
// independent generator (dragontoothmg) on a mirror of the position and
// translating its moves into board.Action values.
package movesource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dylhunn/dragontoothmg"

	"github.com/hailam/chesscore/internal/board"
)

// ErrMismatch is returned by Mirror.Compare when the position and the
// mirror disagree.
var ErrMismatch = errors.New("movesource: position differs from mirror")

// LegalActions returns the legal actions of pos. Each call rebuilds the
// mirror board from the position's FEN.
func LegalActions(pos *board.Position) ([]board.Action, error) {
	m, err := NewMirror(pos)
	if err != nil {
		return nil, err
	}
	return m.Actions(pos), nil
}

// Mirror is a dragontoothmg board kept in step with a board.Position.
// Push and Pop must be paired with Apply and Undo on the position.
type Mirror struct {
	b    dragontoothmg.Board
	undo []func()
}

// NewMirror builds a mirror of pos.
func NewMirror(pos *board.Position) (m *Mirror, err error) {
	fen := pos.ToFEN()
	defer func() {
		// dragontoothmg panics on input it cannot read
		if r := recover(); r != nil {
			err = fmt.Errorf("mirror %q: %v", fen, r)
		}
	}()
	return &Mirror{b: dragontoothmg.ParseFen(fen)}, nil
}

// Moves returns the mirror's legal moves in generator order.
func (m *Mirror) Moves() []dragontoothmg.Move {
	return m.b.GenerateLegalMoves()
}

// Actions returns the legal moves translated against pos.
func (m *Mirror) Actions(pos *board.Position) []board.Action {
	moves := m.Moves()
	actions := make([]board.Action, len(moves))
	for i, mv := range moves {
		actions[i] = Translate(pos, mv)
	}
	return actions
}

// Push plays mv on the mirror.
func (m *Mirror) Push(mv dragontoothmg.Move) {
	m.undo = append(m.undo, m.b.Apply(mv))
}

// Pop takes back the last pushed move.
func (m *Mirror) Pop() {
	n := len(m.undo)
	if n == 0 {
		panic("movesource: pop with nothing pushed")
	}
	m.undo[n-1]()
	m.undo = m.undo[:n-1]
}

// FEN returns the mirror's current position.
func (m *Mirror) FEN() string {
	return m.b.ToFen()
}

// Compare checks pos against the mirror: every piece board, the side to move,
// the castling rights and the en passant square.
func (m *Mirror) Compare(pos *board.Position) error {
	sides := []struct {
		c  board.Color
		bb *dragontoothmg.Bitboards
	}{
		{board.White, &m.b.White},
		{board.Black, &m.b.Black},
	}
	for _, s := range sides {
		want := [...]struct {
			t  board.PieceType
			bb uint64
		}{
			{board.Pawn, s.bb.Pawns},
			{board.Knight, s.bb.Knights},
			{board.Bishop, s.bb.Bishops},
			{board.Rook, s.bb.Rooks},
			{board.Queen, s.bb.Queens},
			{board.King, s.bb.Kings},
		}
		for _, w := range want {
			pc := board.NewPiece(w.t, s.c)
			if got := pos.Pieces(pc); uint64(got) != w.bb {
				return fmt.Errorf("%w: %s on %v, mirror has %v",
					ErrMismatch, pc, got.Squares(), board.Bitboard(w.bb).Squares())
			}
		}
	}
	if (pos.SideToMove == board.White) != m.b.Wtomove {
		return fmt.Errorf("%w: %s to move", ErrMismatch, pos.SideToMove)
	}

	// castling and en passant are only exported through the FEN
	got, want := strings.Fields(pos.ToFEN()), strings.Fields(m.FEN())
	if len(want) < 4 || got[2] != want[2] || got[3] != want[3] {
		return fmt.Errorf("%w: %q, mirror %q", ErrMismatch, pos.ToFEN(), m.FEN())
	}
	return nil
}

// Translate classifies mv against pos, which must be the position mv was
// generated for: a king moving two files castles, a pawn landing on the en
// passant square captures en passant.
func Translate(pos *board.Position, mv dragontoothmg.Move) board.Action {
	from, to := board.Square(mv.From()), board.Square(mv.To())

	if promo := mv.Promote(); promo != dragontoothmg.Nothing {
		return board.NewPromotion(from, to, promotionOf(promo))
	}

	switch pos.PieceAt(from).Type() {
	case board.King:
		if d := to.File() - from.File(); d == 2 || d == -2 {
			return board.NewCastle(from, to)
		}
	case board.Pawn:
		if to == pos.EnPassant {
			return board.NewEnPassant(from, to)
		}
	}
	return board.NewNormal(from, to)
}

func promotionOf(p dragontoothmg.Piece) board.Promotion {
	switch p {
	case dragontoothmg.Knight:
		return board.PromoKnight
	case dragontoothmg.Bishop:
		return board.PromoBishop
	case dragontoothmg.Rook:
		return board.PromoRook
	default:
		return board.PromoQueen
	}
}

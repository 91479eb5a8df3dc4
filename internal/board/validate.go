package board

import (
	"errors"
	"fmt"
)

// Errors returned by TryApply. Each is wrapped with the offending action.
var (
	ErrNoPiece      = errors.New("no piece on source square")
	ErrWrongSide    = errors.New("piece belongs to the side not on move")
	ErrBadCastle    = errors.New("not a castle")
	ErrNoEnPassant  = errors.New("no en passant capture available")
	ErrBadPromotion = errors.New("not a promotion")
)

// TryApply checks that a is well formed for the current position and then
// applies it. It does not test legality (checks, pins, castling through
// attack); it only rejects actions Apply would panic on or silently corrupt
// the position with.
func (p *Position) TryApply(a Action) error {
	if err := p.checkAction(a); err != nil {
		return fmt.Errorf("apply %s: %w", a, err)
	}
	p.Apply(a)
	return nil
}

func (p *Position) checkAction(a Action) error {
	from, to := a.From(), a.To()
	us := p.SideToMove
	mover := p.Mailbox[from]
	if mover == NoPiece {
		return fmt.Errorf("%w (%s)", ErrNoPiece, from)
	}
	if mover.Color() != us {
		return fmt.Errorf("%w (%s on %s)", ErrWrongSide, mover, from)
	}
	if from == to {
		return fmt.Errorf("%w (source equals destination)", ErrNoPiece)
	}
	target := p.Mailbox[to]
	if target != NoPiece && target.Color() == us {
		return fmt.Errorf("%w (%s captures own %s)", ErrWrongSide, mover, target)
	}

	switch a.Kind() {
	case KindNormal:
		if mover.Type() == Pawn && isLastRank(to, us) {
			return fmt.Errorf("%w (pawn reaches %s without promoting)", ErrBadPromotion, to)
		}

	case KindPromotion:
		if mover.Type() != Pawn {
			return fmt.Errorf("%w (%s on %s)", ErrBadPromotion, mover, from)
		}
		if !isLastRank(to, us) {
			return fmt.Errorf("%w (%s is not the last rank)", ErrBadPromotion, to)
		}

	case KindCastle:
		if mover.Type() != King {
			return fmt.Errorf("%w (%s on %s)", ErrBadCastle, mover, from)
		}
		rookFrom, rookTo, ok := castleRoute(to, us)
		if !ok {
			return fmt.Errorf("%w (%s for %s)", ErrBadCastle, to, us)
		}
		if p.Mailbox[rookFrom] != NewPiece(Rook, us) {
			return fmt.Errorf("%w (no rook on %s)", ErrBadCastle, rookFrom)
		}
		if target != NoPiece || (rookTo != from && p.Mailbox[rookTo] != NoPiece) {
			return fmt.Errorf("%w (path blocked)", ErrBadCastle)
		}

	case KindEnPassant:
		if mover.Type() != Pawn {
			return fmt.Errorf("%w (%s on %s)", ErrNoEnPassant, mover, from)
		}
		if p.EnPassant == NoSquare || to != p.EnPassant {
			return fmt.Errorf("%w (target %s)", ErrNoEnPassant, p.EnPassant)
		}
		if target != NoPiece {
			return fmt.Errorf("%w (%s occupied by %s)", ErrNoEnPassant, to, target)
		}
		if p.Mailbox[behind(to, us)] != NewPiece(Pawn, us.Other()) {
			return fmt.Errorf("%w (no pawn on %s)", ErrNoEnPassant, behind(to, us))
		}
	}
	return nil
}

func isLastRank(sq Square, us Color) bool {
	if us == White {
		return sq.Rank() == 7
	}
	return sq.Rank() == 0
}

// castleRoute is the non-panicking form of castleRookSquares.
func castleRoute(kingTo Square, us Color) (rookFrom, rookTo Square, ok bool) {
	switch {
	case kingTo == G1 && us == White:
		return H1, F1, true
	case kingTo == C1 && us == White:
		return A1, D1, true
	case kingTo == G8 && us == Black:
		return H8, F8, true
	case kingTo == C8 && us == Black:
		return A8, D8, true
	}
	return NoSquare, NoSquare, false
}

package board

import (
	"fmt"
	"strings"
)

// Action encodes a move in 16 bits:
// bits 0-5:   from square
// bits 6-11:  to square
// bits 12-13: kind (0=normal, 1=castle, 2=promotion, 3=en passant)
// bits 14-15: promotion piece (0=queen, 1=knight, 2=bishop, 3=rook), read only for promotions
//
// Encoding does no validation; legality is the move source's job.
type Action uint16

// ActionKind selects how Apply interprets an Action.
type ActionKind uint8

const (
	KindNormal ActionKind = iota
	KindCastle
	KindPromotion
	KindEnPassant
)

func (k ActionKind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindCastle:
		return "castle"
	case KindPromotion:
		return "promotion"
	case KindEnPassant:
		return "en-passant"
	default:
		return fmt.Sprintf("ActionKind(%d)", uint8(k))
	}
}

// Promotion is the 2-bit promotion piece field.
type Promotion uint8

const (
	PromoQueen Promotion = iota
	PromoKnight
	PromoBishop
	PromoRook
)

// PieceType returns the piece kind a pawn becomes.
func (pr Promotion) PieceType() PieceType {
	switch pr {
	case PromoQueen:
		return Queen
	case PromoKnight:
		return Knight
	case PromoBishop:
		return Bishop
	case PromoRook:
		return Rook
	default:
		panic(fmt.Sprintf("board: invalid promotion field %d", uint8(pr)))
	}
}

// PromotionFor maps a piece kind to its promotion field.
func PromotionFor(pt PieceType) (Promotion, bool) {
	switch pt {
	case Queen:
		return PromoQueen, true
	case Knight:
		return PromoKnight, true
	case Bishop:
		return PromoBishop, true
	case Rook:
		return PromoRook, true
	}
	return 0, false
}

const (
	squareMask = 0x3F
	fieldMask  = 0x3
)

// NoAction is the zero Action (a1a1, normal); it never occurs as a real move.
const NoAction Action = 0

// NewAction packs the four fields, truncating each to its width.
func NewAction(from, to Square, kind ActionKind, promo Promotion) Action {
	return Action(from&squareMask) |
		Action(to&squareMask)<<6 |
		Action(kind&fieldMask)<<12 |
		Action(promo&fieldMask)<<14
}

func NewNormal(from, to Square) Action {
	return NewAction(from, to, KindNormal, 0)
}

func NewCastle(from, to Square) Action {
	return NewAction(from, to, KindCastle, 0)
}

func NewPromotion(from, to Square, promo Promotion) Action {
	return NewAction(from, to, KindPromotion, promo)
}

func NewEnPassant(from, to Square) Action {
	return NewAction(from, to, KindEnPassant, 0)
}

func (a Action) From() Square {
	return Square(a & squareMask)
}

func (a Action) To() Square {
	return Square((a >> 6) & squareMask)
}

func (a Action) Kind() ActionKind {
	return ActionKind((a >> 12) & fieldMask)
}

// Promotion returns the promotion field; only meaningful for KindPromotion.
func (a Action) Promotion() Promotion {
	return Promotion((a >> 14) & fieldMask)
}

// String returns UCI notation, e.g. "e2e4" or "e7e8q".
func (a Action) String() string {
	s := a.From().String() + a.To().String()
	if a.Kind() == KindPromotion {
		s += string("qnbr"[a.Promotion()])
	}
	return s
}

// ParseAction reads a UCI move and classifies it against pos: a king hopping
// two files is a castle, a pawn landing on the en passant square is an en
// passant capture.
func ParseAction(s string, pos *Position) (Action, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) != 4 && len(s) != 5 {
		return NoAction, fmt.Errorf("invalid move string: %q", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoAction, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoAction, err
	}

	if len(s) == 5 {
		var promo Promotion
		switch s[4] {
		case 'q':
			promo = PromoQueen
		case 'n':
			promo = PromoKnight
		case 'b':
			promo = PromoBishop
		case 'r':
			promo = PromoRook
		default:
			return NoAction, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo), nil
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoAction, fmt.Errorf("%w at %s", ErrNoPiece, from)
	}

	switch piece.Type() {
	case King:
		if abs(to.File()-from.File()) == 2 {
			return NewCastle(from, to), nil
		}
	case Pawn:
		if to == pos.EnPassant {
			return NewEnPassant(from, to), nil
		}
	}
	return NewNormal(from, to), nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

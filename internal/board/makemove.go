package board

import (
	"fmt"
	"log"
)

// DebugMoveValidation makes Apply and Undo verify every invariant after each
// call and log the first violation. Expensive; off by default.
var DebugMoveValidation = false

// savedState is what Apply records so Undo can restore the position exactly.
type savedState struct {
	captured       Piece
	enPassant      Square
	castlingRights CastlingRights
	halfMoveClock  int
	fullMoveNumber int
	hash           uint64
}

// castleRookSquares maps a king's castle destination to its rook's journey.
func castleRookSquares(kingTo Square, us Color) (rookFrom, rookTo Square) {
	rookFrom, rookTo, ok := castleRoute(kingTo, us)
	if !ok {
		panic(fmt.Sprintf("board: castle: %s is not a castle destination for %s", kingTo, us))
	}
	return rookFrom, rookTo
}

// rookHomeRight returns the castling right tied to a rook's starting corner.
func rookHomeRight(sq Square) CastlingRights {
	switch sq {
	case A1:
		return WhiteQueenSideCastle
	case H1:
		return WhiteKingSideCastle
	case A8:
		return BlackQueenSideCastle
	case H8:
		return BlackKingSideCastle
	}
	return NoCastling
}

// behind returns the square one rank toward us from sq: where a pawn that
// just double-pushed past sq actually stands.
func behind(sq Square, us Color) Square {
	if us == White {
		return sq - 8
	}
	return sq + 8
}

// Apply plays a on the position and pushes the state needed to undo it.
// a must be legal in the current position; malformed input panics.
func (p *Position) Apply(a Action) {
	from, to := a.From(), a.To()
	mustSquare("apply", from)
	mustSquare("apply", to)

	us := p.SideToMove
	z := p.tables.Zobrist
	mover := p.Mailbox[from]
	if mover == NoPiece || mover.Color() != us {
		panic(fmt.Sprintf("board: apply %s: no %s piece on %s", a, us, from))
	}

	st := savedState{
		captured:       NoPiece,
		enPassant:      p.EnPassant,
		castlingRights: p.CastlingRights,
		halfMoveClock:  p.HalfMoveClock,
		fullMoveNumber: p.FullMoveNumber,
		hash:           p.Hash,
	}

	prevEP := p.EnPassant
	if prevEP != NoSquare {
		p.Hash ^= z.EnPassantFile(prevEP.File())
	}
	p.EnPassant = NoSquare
	p.Hash ^= z.Castling(p.CastlingRights)
	p.HalfMoveClock++

	switch a.Kind() {
	case KindNormal:
		if p.Mailbox[to] != NoPiece {
			st.captured = p.removePiece(to)
			p.CastlingRights &^= rookHomeRight(to)
			p.HalfMoveClock = 0
		}
		p.movePiece(from, to)

		switch mover.Type() {
		case Pawn:
			p.HalfMoveClock = 0
			if abs(int(to)-int(from)) == 16 {
				p.EnPassant = Square((int(from) + int(to)) / 2)
				p.Hash ^= z.EnPassantFile(p.EnPassant.File())
			}
		case King:
			p.CastlingRights &^= castlingFor(us)
		case Rook:
			p.CastlingRights &^= rookHomeRight(from)
		}

	case KindPromotion:
		if mover.Type() != Pawn {
			panic(fmt.Sprintf("board: apply %s: promoting a %s", a, mover.Type()))
		}
		p.removePiece(from)
		if p.Mailbox[to] != NoPiece {
			st.captured = p.removePiece(to)
			p.CastlingRights &^= rookHomeRight(to)
		}
		p.setPiece(NewPiece(a.Promotion().PieceType(), us), to)
		p.HalfMoveClock = 0

	case KindCastle:
		if mover.Type() != King {
			panic(fmt.Sprintf("board: apply %s: castling with a %s", a, mover.Type()))
		}
		rookFrom, rookTo := castleRookSquares(to, us)
		p.movePiece(from, to)
		p.movePiece(rookFrom, rookTo)
		p.CastlingRights &^= castlingFor(us)

	case KindEnPassant:
		if prevEP == NoSquare || to != prevEP {
			panic(fmt.Sprintf("board: apply %s: en passant target is %s", a, prevEP))
		}
		st.captured = p.removePiece(behind(to, us))
		p.movePiece(from, to)
		p.HalfMoveClock = 0

	default:
		panic(fmt.Sprintf("board: apply %s: unknown kind %s", a, a.Kind()))
	}

	p.Hash ^= z.Castling(p.CastlingRights)
	if us == Black {
		p.FullMoveNumber++
	}
	p.history = append(p.history, st)
	p.SideToMove = us.Other()
	p.Hash ^= z.SideToMove()

	if DebugMoveValidation {
		if err := p.CheckInvariants(); err != nil {
			log.Printf("APPLY %s: %v hash=%016x", a, err, p.Hash)
		}
	}
}

// Undo takes back a, which must be the most recently applied action.
// Undo with nothing applied panics: it means the caller lost track of its moves.
func (p *Position) Undo(a Action) {
	n := len(p.history)
	if n == 0 {
		panic(fmt.Sprintf("board: undo %s: empty history", a))
	}
	st := p.history[n-1]
	p.history = p.history[:n-1]

	// The mover is the side that is not on move now.
	p.SideToMove = p.SideToMove.Other()
	us := p.SideToMove
	from, to := a.From(), a.To()

	switch a.Kind() {
	case KindNormal:
		p.movePiece(to, from)
		if st.captured != NoPiece {
			p.setPiece(st.captured, to)
		}

	case KindPromotion:
		p.removePiece(to)
		p.setPiece(NewPiece(Pawn, us), from)
		if st.captured != NoPiece {
			p.setPiece(st.captured, to)
		}

	case KindCastle:
		rookFrom, rookTo := castleRookSquares(to, us)
		p.movePiece(rookTo, rookFrom)
		p.movePiece(to, from)

	case KindEnPassant:
		p.movePiece(to, from)
		p.setPiece(st.captured, behind(to, us))

	default:
		panic(fmt.Sprintf("board: undo %s: unknown kind %s", a, a.Kind()))
	}

	p.EnPassant = st.enPassant
	p.CastlingRights = st.castlingRights
	p.HalfMoveClock = st.halfMoveClock
	p.FullMoveNumber = st.fullMoveNumber
	p.Hash = st.hash

	if DebugMoveValidation {
		if err := p.CheckInvariants(); err != nil {
			log.Printf("UNDO %s: %v hash=%016x", a, err, p.Hash)
		}
	}
}

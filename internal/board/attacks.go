package board

import "unsafe"

// AttackTables holds precomputed attack sets for every piece kind.
// Build it with NewAttackTables; it is read-only afterwards.
type AttackTables struct {
	knight      [64]Bitboard
	king        [64]Bitboard
	pawnPush    [2][64]Bitboard // [Color][Square], single push target
	pawnCapture [2][64]Bitboard // [Color][Square]

	rookMasks   [64]Bitboard
	bishopMasks [64]Bitboard
	rookBits    [64]uint8
	bishopBits  [64]uint8

	rook   [64][4096]Bitboard
	bishop [64][512]Bitboard
}

// NewAttackTables computes every leaper and slider table.
func NewAttackTables() *AttackTables {
	t := new(AttackTables)
	for sq := A1; sq <= H8; sq++ {
		t.knight[sq] = knightMovesFrom(sq)
		t.king[sq] = kingMovesFrom(sq)
		for c := White; c <= Black; c++ {
			t.pawnPush[c][sq] = pawnPushFrom(sq, c)
			t.pawnCapture[c][sq] = pawnCapturesFrom(sq, c)
		}
	}
	t.initMagics()
	return t
}

func knightMovesFrom(sq Square) Bitboard {
	bb := SquareBB(sq)
	return bb.NorthWest().West() |
		bb.SouthWest().West() |
		bb.NorthEast().East() |
		bb.SouthEast().East() |
		bb.NorthEast().North() |
		bb.NorthWest().North() |
		bb.SouthEast().South() |
		bb.SouthWest().South()
}

func kingMovesFrom(sq Square) Bitboard {
	bb := SquareBB(sq)
	return bb.North() | bb.NorthEast() | bb.East() | bb.SouthEast() |
		bb.South() | bb.SouthWest() | bb.West() | bb.NorthWest()
}

func pawnPushFrom(sq Square, c Color) Bitboard {
	bb := SquareBB(sq)
	if c == White {
		return bb.North()
	}
	return bb.South()
}

func pawnCapturesFrom(sq Square, c Color) Bitboard {
	bb := SquareBB(sq)
	if c == White {
		return bb.NorthWest() | bb.NorthEast()
	}
	return bb.SouthWest() | bb.SouthEast()
}

// KnightAttacks returns the knight targets from sq.
func (t *AttackTables) KnightAttacks(sq Square) Bitboard {
	mustSquare("knight attacks", sq)
	return t.knight[sq]
}

// KingAttacks returns the king targets from sq.
func (t *AttackTables) KingAttacks(sq Square) Bitboard {
	mustSquare("king attacks", sq)
	return t.king[sq]
}

// PawnPushes returns the single-push target of a c pawn on sq.
func (t *AttackTables) PawnPushes(sq Square, c Color) Bitboard {
	mustSquare("pawn pushes", sq)
	return t.pawnPush[c&1][sq]
}

// PawnCaptures returns the squares a c pawn on sq attacks.
func (t *AttackTables) PawnCaptures(sq Square, c Color) Bitboard {
	mustSquare("pawn captures", sq)
	return t.pawnCapture[c&1][sq]
}

// QueenAttacks is the union of rook and bishop attacks.
func (t *AttackTables) QueenAttacks(occupied Bitboard, sq Square) Bitboard {
	return t.RookAttacks(occupied, sq) | t.BishopAttacks(occupied, sq)
}

// SizeBytes reports the memory held by the tables.
func (t *AttackTables) SizeBytes() uintptr {
	return unsafe.Sizeof(*t)
}

// AttackersByColor returns the pieces of color c that attack sq, given the
// current occupancy of p.
func (p *Position) AttackersByColor(sq Square, c Color) Bitboard {
	t := p.tables.Attacks
	occ := p.Occupied()
	queens := p.Pieces(NewPiece(Queen, c))
	return t.PawnCaptures(sq, c.Other())&p.Pieces(NewPiece(Pawn, c)) |
		t.KnightAttacks(sq)&p.Pieces(NewPiece(Knight, c)) |
		t.KingAttacks(sq)&p.Pieces(NewPiece(King, c)) |
		t.BishopAttacks(occ, sq)&(p.Pieces(NewPiece(Bishop, c))|queens) |
		t.RookAttacks(occ, sq)&(p.Pieces(NewPiece(Rook, c))|queens)
}

// IsSquareAttacked reports whether color by attacks sq.
func (p *Position) IsSquareAttacked(sq Square, by Color) bool {
	return p.AttackersByColor(sq, by) != 0
}

// InCheck reports whether the side to move has its king attacked.
func (p *Position) InCheck() bool {
	us := p.SideToMove
	kings := p.Pieces(NewPiece(King, us))
	if kings == 0 {
		return false
	}
	return p.IsSquareAttacked(kings.LSB(), us.Other())
}

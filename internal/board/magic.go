package board

// Plain magic multipliers. For each square, multiplying any subset of the
// blocker mask and keeping the top popcount(mask) bits never sends two subsets
// with different attack sets to the same slot.
var bishopMagicNumbers = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookMagicNumbers = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

func (t *AttackTables) initMagics() {
	for sq := A1; sq <= H8; sq++ {
		t.rookMasks[sq] = rookMask(sq)
		t.rookBits[sq] = uint8(t.rookMasks[sq].PopCount())
		t.bishopMasks[sq] = bishopMask(sq)
		t.bishopBits[sq] = uint8(t.bishopMasks[sq].PopCount())

		for i := 0; i < 1<<t.rookBits[sq]; i++ {
			occ := BlockerSubset(t.rookMasks[sq], i)
			idx := magicIndex(occ, rookMagicNumbers[sq], t.rookBits[sq])
			t.rook[sq][idx] = SlowRookAttacks(occ, sq)
		}
		for i := 0; i < 1<<t.bishopBits[sq]; i++ {
			occ := BlockerSubset(t.bishopMasks[sq], i)
			idx := magicIndex(occ, bishopMagicNumbers[sq], t.bishopBits[sq])
			t.bishop[sq][idx] = SlowBishopAttacks(occ, sq)
		}
	}
}

func magicIndex(occ Bitboard, magic uint64, bits uint8) uint64 {
	return (uint64(occ) * magic) >> (64 - bits)
}

// RookAttacks returns the rook attack set from sq given board occupancy.
func (t *AttackTables) RookAttacks(occupied Bitboard, sq Square) Bitboard {
	mustSquare("rook attacks", sq)
	idx := magicIndex(occupied&t.rookMasks[sq], rookMagicNumbers[sq], t.rookBits[sq])
	return t.rook[sq][idx]
}

// BishopAttacks returns the bishop attack set from sq given board occupancy.
func (t *AttackTables) BishopAttacks(occupied Bitboard, sq Square) Bitboard {
	mustSquare("bishop attacks", sq)
	idx := magicIndex(occupied&t.bishopMasks[sq], bishopMagicNumbers[sq], t.bishopBits[sq])
	return t.bishop[sq][idx]
}

// RookMask returns the relevant blocker squares for a rook on sq.
func (t *AttackTables) RookMask(sq Square) Bitboard {
	return t.rookMasks[sq]
}

// BishopMask returns the relevant blocker squares for a bishop on sq.
func (t *AttackTables) BishopMask(sq Square) Bitboard {
	return t.bishopMasks[sq]
}

// bishopMask drops the rim: nothing lies beyond a rim square to be blocked.
func bishopMask(sq Square) Bitboard {
	return SlowBishopAttacks(Empty, sq) &^ Edges
}

// rookMask is the rook's rank and file minus sq itself and the far end of each ray.
func rookMask(sq Square) Bitboard {
	file, rank := sq.File(), sq.Rank()
	var mask Bitboard
	for f := 1; f < 7; f++ {
		if f != file {
			mask |= SquareBB(NewSquare(f, rank))
		}
	}
	for r := 1; r < 7; r++ {
		if r != rank {
			mask |= SquareBB(NewSquare(file, r))
		}
	}
	return mask
}

// BlockerSubset returns the index-th subset of mask: bit i of index decides
// whether the i-th lowest square of mask is included.
func BlockerSubset(mask Bitboard, index int) Bitboard {
	var occ Bitboard
	for index != 0 && mask != 0 {
		sq := mask.PopLSB()
		if index&1 != 0 {
			occ |= SquareBB(sq)
		}
		index >>= 1
	}
	return occ
}

// slide ORs together successive shifts of from until the ray leaves the
// board or steps onto a blocker, which is included.
func slide(from, occupied Bitboard, step func(Bitboard) Bitboard) Bitboard {
	var attacks Bitboard
	for b := step(from); b != 0; b = step(b) {
		attacks |= b
		if b&occupied != 0 {
			break
		}
	}
	return attacks
}

// SlowRookAttacks ray-casts rook attacks. Used to fill and verify the magic tables.
func SlowRookAttacks(occupied Bitboard, sq Square) Bitboard {
	bb := SquareBB(sq)
	return slide(bb, occupied, Bitboard.North) |
		slide(bb, occupied, Bitboard.South) |
		slide(bb, occupied, Bitboard.East) |
		slide(bb, occupied, Bitboard.West)
}

// SlowBishopAttacks ray-casts bishop attacks.
func SlowBishopAttacks(occupied Bitboard, sq Square) Bitboard {
	bb := SquareBB(sq)
	return slide(bb, occupied, Bitboard.NorthEast) |
		slide(bb, occupied, Bitboard.NorthWest) |
		slide(bb, occupied, Bitboard.SouthEast) |
		slide(bb, occupied, Bitboard.SouthWest)
}

package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a 64-bit occupancy set. Bit 0 = A1, bit 7 = H1, bit 63 = H8.
type Bitboard uint64

// File masks
const (
	FileA Bitboard = 0x0101010101010101
	FileH Bitboard = 0x8080808080808080
)

// Rank masks
const (
	Rank1 Bitboard = 0x00000000000000FF
	Rank2 Bitboard = 0x000000000000FF00
	Rank7 Bitboard = 0x00FF000000000000
	Rank8 Bitboard = 0xFF00000000000000
)

const (
	Empty    Bitboard = 0
	Universe Bitboard = 0xFFFFFFFFFFFFFFFF

	NotFileA Bitboard = ^FileA
	NotFileH Bitboard = ^FileH

	// Edges is the board rim; rim squares never block a bishop ray.
	Edges Bitboard = FileA | FileH | Rank1 | Rank8
)

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	mustSquare("square bitboard", sq)
	return 1 << sq
}

// Set returns b with the bit for sq set.
func (b Bitboard) Set(sq Square) Bitboard {
	return b | SquareBB(sq)
}

// Clear returns b with the bit for sq cleared.
func (b Bitboard) Clear(sq Square) Bitboard {
	return b &^ SquareBB(sq)
}

// IsSet reports whether the bit for sq is set.
func (b Bitboard) IsSet(sq Square) bool {
	return b&SquareBB(sq) != 0
}

// PopCount returns the number of set bits.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the index of the least significant set bit.
// An empty board here means a piece the caller expected is missing, so it panics.
func (b Bitboard) LSB() Square {
	if b == 0 {
		panic("board: ls1b of empty bitboard")
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// MSB returns the index of the most significant set bit. Panics on an empty board.
func (b Bitboard) MSB() Square {
	if b == 0 {
		panic("board: ms1b of empty bitboard")
	}
	return Square(63 - bits.LeadingZeros64(uint64(b)))
}

// PopLSB clears the least significant set bit and returns its index.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// North shifts one rank toward rank 8.
func (b Bitboard) North() Bitboard {
	return b << 8
}

// South shifts one rank toward rank 1.
func (b Bitboard) South() Bitboard {
	return b >> 8
}

// East shifts one file toward the h-file; bits leaving the h-file are dropped.
func (b Bitboard) East() Bitboard {
	return (b << 1) & NotFileA
}

// West shifts one file toward the a-file; bits leaving the a-file are dropped.
func (b Bitboard) West() Bitboard {
	return (b >> 1) & NotFileH
}

func (b Bitboard) NorthEast() Bitboard {
	return (b << 9) & NotFileA
}

func (b Bitboard) NorthWest() Bitboard {
	return (b << 7) & NotFileH
}

func (b Bitboard) SouthEast() Bitboard {
	return (b >> 7) & NotFileA
}

func (b Bitboard) SouthWest() Bitboard {
	return (b >> 9) & NotFileH
}

// Squares returns the set squares in ascending order.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}

// String renders the bitboard as an 8x8 grid, rank 8 on top.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			if b.IsSet(NewSquare(file, rank)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}

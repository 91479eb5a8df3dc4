package board

import "fmt"

// Color is the side owning a piece or holding the move.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
}

// PieceType is a colorless piece kind.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Piece is one of the twelve colored pieces, or NoPiece.
// A valid Piece doubles as its slot in Position.Bitboards.
type Piece uint8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece
)

// Bitboard slots 12 and 13 hold the per-color aggregate occupancy.
const (
	whiteOccupancySlot = 12
	blackOccupancySlot = 13
	numBitboards       = 14
)

// OccupancySlot returns the Bitboards index holding all pieces of color c.
func OccupancySlot(c Color) int {
	if c == White {
		return whiteOccupancySlot
	}
	return blackOccupancySlot
}

// NewPiece combines a type and a color.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c > Black {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// Valid reports whether p is one of the twelve real pieces.
func (p Piece) Valid() bool {
	return p < NoPiece
}

// Slot returns the Bitboards index for p. Panics on NoPiece or garbage values.
func (p Piece) Slot() int {
	if !p.Valid() {
		panic(fmt.Sprintf("board: piece %d has no bitboard slot", uint8(p)))
	}
	return int(p)
}

// Type returns the colorless kind of p.
func (p Piece) Type() PieceType {
	if !p.Valid() {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the owner of p. The result is meaningless for NoPiece.
func (p Piece) Color() Color {
	return Color(p / 6)
}

// String returns the FEN letter: uppercase for White, lowercase for Black.
func (p Piece) String() string {
	if !p.Valid() {
		return "."
	}
	return string("PNBRQKpnbrqk"[p])
}

// PieceFromChar converts a FEN letter to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return NoPiece
	}
}

package board

import "fmt"

// DefaultZobristSeed seeds the table returned by DefaultTables.
const DefaultZobristSeed uint64 = 0x98F107A2BEEF1234

// ZobristTable holds the random keys used for incremental position hashing.
// It is never modified after NewZobristTable returns.
type ZobristTable struct {
	pieceSquare [12][64]uint64
	enPassant   [8]uint64
	castling    [16]uint64
	sideToMove  uint64
}

// prng is a xorshift64* generator owned by a single table build.
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	if seed == 0 {
		// xorshift never leaves the all-zero state
		seed = DefaultZobristSeed
	}
	return &prng{state: seed}
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// NewZobristTable builds a table from seed. Equal seeds give equal tables.
func NewZobristTable(seed uint64) *ZobristTable {
	rng := newPRNG(seed)
	z := &ZobristTable{}

	for p := WhitePawn; p < NoPiece; p++ {
		for sq := A1; sq <= H8; sq++ {
			z.pieceSquare[p][sq] = rng.next()
		}
	}
	for file := 0; file < 8; file++ {
		z.enPassant[file] = rng.next()
	}
	for i := 0; i < 16; i++ {
		z.castling[i] = rng.next()
	}
	z.sideToMove = rng.next()

	return z
}

// PieceSquare returns the key for piece p standing on sq.
func (z *ZobristTable) PieceSquare(p Piece, sq Square) uint64 {
	mustSquare("zobrist", sq)
	return z.pieceSquare[p.Slot()][sq]
}

// EnPassantFile returns the key for an en passant target on file (0-7).
func (z *ZobristTable) EnPassantFile(file int) uint64 {
	if file < 0 || file > 7 {
		panic(fmt.Sprintf("board: zobrist: en passant file %d out of range", file))
	}
	return z.enPassant[file]
}

// Castling returns the key for a full castling-rights mask.
func (z *ZobristTable) Castling(cr CastlingRights) uint64 {
	if cr > AllCastling {
		panic(fmt.Sprintf("board: zobrist: castling mask %#x out of range", uint8(cr)))
	}
	return z.castling[cr]
}

// SideToMove returns the key XORed in while Black is to move.
func (z *ZobristTable) SideToMove() uint64 {
	return z.sideToMove
}

// ComputeHash recomputes the Zobrist key of p from scratch. After every
// Apply and Undo it must equal p.Hash.
func (p *Position) ComputeHash() uint64 {
	z := p.tables.Zobrist
	var hash uint64

	for pc := WhitePawn; pc < NoPiece; pc++ {
		bb := p.Bitboards[pc]
		for bb != 0 {
			hash ^= z.pieceSquare[pc][bb.PopLSB()]
		}
	}
	if p.EnPassant != NoSquare {
		hash ^= z.EnPassantFile(p.EnPassant.File())
	}
	hash ^= z.Castling(p.CastlingRights)
	if p.SideToMove == Black {
		hash ^= z.sideToMove
	}

	return hash
}

package board

import (
	"errors"
	"fmt"
	"strings"
)

// CastlingRights is the 4-bit castling mask.
type CastlingRights uint8

const (
	BlackQueenSideCastle CastlingRights = 1 << iota // q
	BlackKingSideCastle                             // k
	WhiteQueenSideCastle                            // Q
	WhiteKingSideCastle                             // K
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// castlingFor returns both rights of color c.
func castlingFor(c Color) CastlingRights {
	if c == White {
		return WhiteKingSideCastle | WhiteQueenSideCastle
	}
	return BlackKingSideCastle | BlackQueenSideCastle
}

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// Position is the mutable board state. Bitboards and Mailbox are redundant
// views of the same placement and are kept in step by every mutation.
// A Position must not be mutated from more than one goroutine.
type Position struct {
	// Slots 0-11 are indexed by Piece; 12 and 13 are per-color occupancy.
	Bitboards [numBitboards]Bitboard
	Mailbox   [64]Piece

	SideToMove     Color
	EnPassant      Square // NoSquare if none
	CastlingRights CastlingRights
	HalfMoveClock  int
	FullMoveNumber int

	Hash uint64

	history []savedState
	tables  *Tables
}

// NewPosition returns the starting position using the shared default tables.
func NewPosition() *Position {
	return DefaultTables().NewPosition()
}

// NewPosition returns the starting position bound to t.
func (t *Tables) NewPosition() *Position {
	pos, err := t.ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// NewEmptyPosition returns an empty board bound to t, for callers that place
// pieces themselves before calling Resync.
func (t *Tables) NewEmptyPosition() *Position {
	p := &Position{tables: t}
	p.Clear()
	return p
}

// Tables returns the shared tables this position reads.
func (p *Position) Tables() *Tables {
	return p.tables
}

// Clear empties the board and history, keeping the table binding.
func (p *Position) Clear() {
	t := p.tables
	*p = Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
		tables:         t,
	}
	for sq := range p.Mailbox {
		p.Mailbox[sq] = NoPiece
	}
}

// Clone returns an independent copy, history included.
func (p *Position) Clone() *Position {
	c := *p
	c.history = append([]savedState(nil), p.history...)
	return &c
}

// Depth returns the number of applied moves not yet undone.
func (p *Position) Depth() int {
	return len(p.history)
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	mustSquare("piece at", sq)
	return p.Mailbox[sq]
}

// Pieces returns the bitboard of piece pc.
func (p *Position) Pieces(pc Piece) Bitboard {
	return p.Bitboards[pc.Slot()]
}

// Occupancy returns all squares holding a piece of color c.
func (p *Position) Occupancy(c Color) Bitboard {
	return p.Bitboards[OccupancySlot(c)]
}

// Occupied returns all occupied squares.
func (p *Position) Occupied() Bitboard {
	return p.Bitboards[whiteOccupancySlot] | p.Bitboards[blackOccupancySlot]
}

// setPiece puts pc on the empty square sq, updating hash and mailbox.
func (p *Position) setPiece(pc Piece, sq Square) {
	bb := SquareBB(sq)
	p.Bitboards[pc.Slot()] |= bb
	p.Bitboards[OccupancySlot(pc.Color())] |= bb
	p.Mailbox[sq] = pc
	p.Hash ^= p.tables.Zobrist.PieceSquare(pc, sq)
}

// removePiece lifts whatever stands on sq and returns it.
func (p *Position) removePiece(sq Square) Piece {
	pc := p.Mailbox[sq]
	if pc == NoPiece {
		panic(fmt.Sprintf("board: remove: square %s is empty", sq))
	}
	bb := SquareBB(sq)
	p.Bitboards[pc.Slot()] &^= bb
	p.Bitboards[OccupancySlot(pc.Color())] &^= bb
	p.Mailbox[sq] = NoPiece
	p.Hash ^= p.tables.Zobrist.PieceSquare(pc, sq)
	return pc
}

// movePiece relocates the piece on from to the empty square to.
func (p *Position) movePiece(from, to Square) Piece {
	pc := p.Mailbox[from]
	if pc == NoPiece {
		panic(fmt.Sprintf("board: move: square %s is empty", from))
	}
	moveBB := SquareBB(from) | SquareBB(to)
	p.Bitboards[pc.Slot()] ^= moveBB
	p.Bitboards[OccupancySlot(pc.Color())] ^= moveBB
	p.Mailbox[from] = NoPiece
	p.Mailbox[to] = pc
	z := p.tables.Zobrist
	p.Hash ^= z.PieceSquare(pc, from) ^ z.PieceSquare(pc, to)
	return pc
}

// Resync rebuilds the mailbox and the two occupancy boards from the twelve
// piece boards, then recomputes the hash. Used after building a position by
// hand and when debugging.
func (p *Position) Resync() {
	for sq := range p.Mailbox {
		p.Mailbox[sq] = NoPiece
	}
	p.Bitboards[whiteOccupancySlot] = Empty
	p.Bitboards[blackOccupancySlot] = Empty

	for pc := WhitePawn; pc < NoPiece; pc++ {
		bb := p.Bitboards[pc]
		p.Bitboards[OccupancySlot(pc.Color())] |= bb
		for bb != 0 {
			sq := bb.PopLSB()
			if p.Mailbox[sq] == NoPiece {
				p.Mailbox[sq] = pc
			}
		}
	}
	p.Hash = p.ComputeHash()
}

// Invariant violations reported by CheckInvariants.
var (
	ErrOverlap   = errors.New("board: two piece bitboards share a square")
	ErrMailbox   = errors.New("board: mailbox disagrees with bitboards")
	ErrOccupancy = errors.New("board: occupancy board is not the union of its pieces")
	ErrHashDrift = errors.New("board: incremental hash differs from recomputation")
	ErrEnPassant = errors.New("board: en passant square not on rank 3 or 6")
)

// CheckInvariants verifies the redundant parts of the position agree.
func (p *Position) CheckInvariants() error {
	var seen Bitboard
	var occ [2]Bitboard
	for pc := WhitePawn; pc < NoPiece; pc++ {
		bb := p.Bitboards[pc]
		if seen&bb != 0 {
			return fmt.Errorf("%w: %v", ErrOverlap, (seen & bb).Squares())
		}
		seen |= bb
		occ[pc.Color()] |= bb
	}
	if occ[White] != p.Occupancy(White) || occ[Black] != p.Occupancy(Black) {
		return ErrOccupancy
	}
	for sq := A1; sq <= H8; sq++ {
		pc := p.Mailbox[sq]
		if pc == NoPiece {
			if seen.IsSet(sq) {
				return fmt.Errorf("%w: %s empty in mailbox", ErrMailbox, sq)
			}
			continue
		}
		if !pc.Valid() || !p.Bitboards[pc].IsSet(sq) {
			return fmt.Errorf("%w: %s holds %v", ErrMailbox, sq, pc)
		}
	}
	if p.EnPassant != NoSquare {
		if r := p.EnPassant.Rank(); r != 2 && r != 5 {
			return fmt.Errorf("%w: %s", ErrEnPassant, p.EnPassant)
		}
	}
	if want := p.ComputeHash(); want != p.Hash {
		return fmt.Errorf("%w: have %016x want %016x", ErrHashDrift, p.Hash, want)
	}
	return nil
}

// String renders the board and state fields for debugging.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.Mailbox[NewSquare(file, rank)].String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash)
	return sb.String()
}

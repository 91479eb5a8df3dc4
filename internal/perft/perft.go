// Package perft counts the leaves of the legal move tree below a position.
// Moves come from a dragontoothmg mirror and every interior node is reached
// through board.Position Apply and Undo. With Runner.Verify set the position
// is compared with the mirror after every move.
package perft

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/movesource"
)

// ErrDepth is returned by Divide for depths below 1.
var ErrDepth = errors.New("perft: depth must be at least 1")

// Cache is a persistent store of subtree counts keyed by Zobrist key and depth.
// *storage.PerftCache implements it.
type Cache interface {
	Get(hash uint64, depth int) (uint64, bool, error)
	Put(hash uint64, depth int, nodes uint64) error
}

// Runner walks move trees. The zero value runs serially with no caching.
type Runner struct {
	// Cache, if set, is consulted for the root and for each root child.
	Cache Cache
	// Table, if set, caches interior subtrees in memory.
	Table *HashTable
	// Workers bounds how many root moves are walked at once.
	Workers int
	// Verify applies leaf moves too, checks every invariant after each Apply
	// and the hash after each Undo, and compares the placement, side,
	// castling rights and en passant square with the mirror. Slow.
	Verify bool
}

// Count returns the number of leaf positions depth plies below pos.
// pos is left as it was found.
func (r *Runner) Count(ctx context.Context, pos *board.Position, depth int) (uint64, error) {
	if depth <= 0 {
		return 1, nil
	}
	if n, ok, err := r.lookup(pos.Hash, depth); err != nil || ok {
		return n, err
	}

	div, err := r.Divide(ctx, pos, depth)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, n := range div {
		total += n
	}
	return total, r.store(pos.Hash, depth, total)
}

// Divide returns the leaf count below each legal root move.
func (r *Runner) Divide(ctx context.Context, pos *board.Position, depth int) (map[board.Action]uint64, error) {
	if depth < 1 {
		return nil, ErrDepth
	}
	root, err := movesource.NewMirror(pos)
	if err != nil {
		return nil, err
	}
	moves := root.Moves()

	type job struct {
		pos    *board.Position
		action board.Action
		mirror *movesource.Mirror
	}
	jobs := make([]job, len(moves))
	for i, mv := range moves {
		jobs[i] = job{pos: pos.Clone(), action: movesource.Translate(pos, mv)}
		if r.Verify {
			m, err := movesource.NewMirror(pos)
			if err != nil {
				return nil, err
			}
			m.Push(mv)
			jobs[i].mirror = m
		}
	}
	counts := make([]uint64, len(moves))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.Workers))
	for i := range jobs {
		i := i
		g.Go(func() error {
			p, a := jobs[i].pos, jobs[i].action
			if err := r.apply(p, a); err != nil {
				return err
			}
			if m := jobs[i].mirror; m != nil {
				if err := m.Compare(p); err != nil {
					return fmt.Errorf("apply %s: %w", a, err)
				}
			}
			n, err := r.child(ctx, p, depth-1)
			if err != nil {
				return fmt.Errorf("%s: %w", a, err)
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	div := make(map[board.Action]uint64, len(moves))
	for i, j := range jobs {
		div[j.action] = counts[i]
	}
	return div, nil
}

// child counts below a root child, going through the persistent cache.
func (r *Runner) child(ctx context.Context, pos *board.Position, depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}
	if n, ok, err := r.lookup(pos.Hash, depth); err != nil || ok {
		return n, err
	}
	m, err := movesource.NewMirror(pos)
	if err != nil {
		return 0, err
	}
	n, err := r.walk(ctx, pos, m, depth)
	if err != nil {
		return 0, err
	}
	return n, r.store(pos.Hash, depth, n)
}

func (r *Runner) walk(ctx context.Context, pos *board.Position, m *movesource.Mirror, depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}
	if depth >= 3 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
	if r.Table != nil && depth >= 2 {
		if n, ok := r.Table.Probe(pos.Hash, depth); ok {
			return n, nil
		}
	}

	moves := m.Moves()
	if depth == 1 && !r.Verify {
		return uint64(len(moves)), nil
	}

	var nodes uint64
	for _, mv := range moves {
		a := movesource.Translate(pos, mv)
		before := pos.Hash
		if err := r.apply(pos, a); err != nil {
			return 0, err
		}
		m.Push(mv)
		if r.Verify {
			if err := m.Compare(pos); err != nil {
				m.Pop()
				pos.Undo(a)
				return 0, fmt.Errorf("apply %s: %w", a, err)
			}
		}
		n, err := r.walk(ctx, pos, m, depth-1)
		m.Pop()
		pos.Undo(a)
		if err != nil {
			return 0, err
		}
		if r.Verify && pos.Hash != before {
			return 0, fmt.Errorf("undo %s: %w", a, board.ErrHashDrift)
		}
		nodes += n
	}

	if r.Table != nil && depth >= 2 {
		r.Table.Store(pos.Hash, depth, nodes)
	}
	return nodes, nil
}

func (r *Runner) apply(pos *board.Position, a board.Action) error {
	if !r.Verify {
		pos.Apply(a)
		return nil
	}
	if err := pos.TryApply(a); err != nil {
		return err
	}
	if err := pos.CheckInvariants(); err != nil {
		pos.Undo(a)
		return fmt.Errorf("apply %s: %w", a, err)
	}
	return nil
}

func (r *Runner) lookup(hash uint64, depth int) (uint64, bool, error) {
	if r.Cache == nil {
		return 0, false, nil
	}
	n, ok, err := r.Cache.Get(hash, depth)
	if err != nil {
		return 0, false, fmt.Errorf("perft cache: %w", err)
	}
	return n, ok, nil
}

func (r *Runner) store(hash uint64, depth int, nodes uint64) error {
	if r.Cache == nil {
		return nil
	}
	if err := r.Cache.Put(hash, depth, nodes); err != nil {
		return fmt.Errorf("perft cache: %w", err)
	}
	return nil
}

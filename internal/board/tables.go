package board

import "sync"

// Tables bundles the read-only lookup data a Position needs. One Tables
// value may back any number of positions across goroutines.
type Tables struct {
	Zobrist *ZobristTable
	Attacks *AttackTables
}

// NewTables builds fresh tables with the given Zobrist seed.
func NewTables(zobristSeed uint64) *Tables {
	return &Tables{
		Zobrist: NewZobristTable(zobristSeed),
		Attacks: NewAttackTables(),
	}
}

var (
	defaultTablesOnce sync.Once
	defaultTables     *Tables
)

// DefaultTables returns the process-wide tables, building them on first use.
func DefaultTables() *Tables {
	defaultTablesOnce.Do(func() {
		defaultTables = NewTables(DefaultZobristSeed)
	})
	return defaultTables
}

package perft

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Number of shards for table locking (power of 2 for fast modulo)
const tableShardCount = 256
const tableShardMask = tableShardCount - 1

// tableEntry holds the leaf count of one (position, depth) pair.
type tableEntry struct {
	Key   uint64 // Full 64-bit Zobrist key
	Nodes uint64
	Depth uint8 // 0 means empty; depth-0 counts are never stored
}

// HashTable is a fixed-size in-memory cache of subtree leaf counts.
// Uses sharded locking so parallel walkers can share one table.
type HashTable struct {
	entries []tableEntry
	shards  [tableShardCount]sync.RWMutex
	size    uint64
	mask    uint64

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewHashTable creates a table using about sizeMB megabytes.
func NewHashTable(sizeMB int) *HashTable {
	entrySize := uint64(unsafe.Sizeof(tableEntry{}))
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	numEntries = roundDownToPowerOf2(numEntries)
	if numEntries == 0 {
		numEntries = 1
	}

	return &HashTable{
		entries: make([]tableEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (t *HashTable) shardIndex(idx uint64) int {
	return int(idx & tableShardMask)
}

// Probe returns the stored count for hash at exactly depth.
func (t *HashTable) Probe(hash uint64, depth int) (uint64, bool) {
	t.probes.Add(1)

	idx := hash & t.mask
	shard := t.shardIndex(idx)

	t.shards[shard].RLock()
	entry := t.entries[idx]
	t.shards[shard].RUnlock()

	if entry.Key == hash && int(entry.Depth) == depth && depth > 0 {
		t.hits.Add(1)
		return entry.Nodes, true
	}
	return 0, false
}

// Store records a count. A deeper entry in the slot is kept: it stands for
// more work.
func (t *HashTable) Store(hash uint64, depth int, nodes uint64) {
	if depth <= 0 || depth > 255 {
		return
	}
	idx := hash & t.mask
	shard := t.shardIndex(idx)

	t.shards[shard].Lock()
	entry := &t.entries[idx]
	if depth >= int(entry.Depth) {
		entry.Key = hash
		entry.Nodes = nodes
		entry.Depth = uint8(depth)
	}
	t.shards[shard].Unlock()
}

// Clear empties the table and resets statistics.
func (t *HashTable) Clear() {
	for i := range t.entries {
		t.entries[i] = tableEntry{}
	}
	t.hits.Store(0)
	t.probes.Store(0)
}

// HitRate returns the cache hit rate as a percentage.
func (t *HashTable) HitRate() float64 {
	probes := t.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(t.hits.Load()) / float64(probes) * 100
}

// Size returns the number of entries in the table.
func (t *HashTable) Size() uint64 {
	return t.size
}

// SizeBytes returns the memory held by the entries.
func (t *HashTable) SizeBytes() uint64 {
	return t.size * uint64(unsafe.Sizeof(tableEntry{}))
}

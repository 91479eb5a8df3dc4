package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes. Node counts live under 'n', run records under 'r'.
const (
	prefixNodes = 'n'
	prefixRun   = 'r'
)

// RunRecord describes one completed perft invocation.
type RunRecord struct {
	FEN      string        `json:"fen"`
	Depth    int           `json:"depth"`
	Nodes    uint64        `json:"nodes"`
	Elapsed  time.Duration `json:"elapsed"`
	Finished time.Time     `json:"finished"`
}

// NodesPerSecond returns the throughput of the run, or 0 if it took no time.
func (r RunRecord) NodesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Nodes) / r.Elapsed.Seconds()
}

// PerftCache wraps BadgerDB and maps (Zobrist key, depth) to a leaf count.
// It is safe for concurrent use.
type PerftCache struct {
	db *badger.DB
}

// Open opens or creates a cache in dir.
func Open(dir string) (*PerftCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging
	return open(opts)
}

// OpenDefault opens the cache in the application data directory.
func OpenDefault() (*PerftCache, error) {
	dir, err := GetCacheDir()
	if err != nil {
		return nil, err
	}
	return Open(dir)
}

// OpenInMemory opens a cache that is discarded on Close.
func OpenInMemory() (*PerftCache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*PerftCache, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open perft cache: %w", err)
	}
	return &PerftCache{db: db}, nil
}

// Close closes the database
func (c *PerftCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// MaxDepth is the deepest count the cache keys can hold. Get misses and Put
// does nothing outside 1..MaxDepth, as with the in-memory table.
const MaxDepth = 255

func nodesKey(hash uint64, depth int) []byte {
	key := make([]byte, 10)
	key[0] = prefixNodes
	binary.BigEndian.PutUint64(key[1:9], hash)
	key[9] = byte(depth)
	return key
}

// Get returns the cached leaf count for a position and depth.
func (c *PerftCache) Get(hash uint64, depth int) (uint64, bool, error) {
	if depth < 1 || depth > MaxDepth {
		return 0, false, nil
	}
	var nodes uint64
	found := false

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodesKey(hash, depth))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 8 {
				return fmt.Errorf("perft cache: corrupt value of %d bytes", len(val))
			}
			nodes = binary.BigEndian.Uint64(val)
			found = true
			return nil
		})
	})

	return nodes, found, err
}

// Put stores the leaf count for a position and depth.
func (c *PerftCache) Put(hash uint64, depth int, nodes uint64) error {
	if depth < 1 || depth > MaxDepth {
		return nil
	}
	val := make([]byte, 8)
	binary.BigEndian.PutUint64(val, nodes)
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(nodesKey(hash, depth), val)
	})
}

// SaveRun appends a run record, keyed by its finish time.
func (c *PerftCache) SaveRun(r RunRecord) error {
	if r.Finished.IsZero() {
		r.Finished = time.Now()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	key := make([]byte, 9)
	key[0] = prefixRun
	binary.BigEndian.PutUint64(key[1:], uint64(r.Finished.UnixNano()))

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// Runs returns every stored run record, oldest first.
func (c *PerftCache) Runs() ([]RunRecord, error) {
	var runs []RunRecord

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixRun}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var r RunRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			})
			if err != nil {
				return err
			}
			runs = append(runs, r)
		}
		return nil
	})

	return runs, err
}

// Len returns the number of cached node counts.
func (c *PerftCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte{prefixNodes}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Size returns the on-disk size of the LSM tree and value log.
func (c *PerftCache) Size() (lsm, vlog int64) {
	return c.db.Size()
}

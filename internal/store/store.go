// Package store persists ledger snapshots in a goleveldb database.
//
// Every commit writes the JSON snapshot twice: once under the "latest" key and
// once under a height-indexed key. Height-indexed copies older than the
// retention window are pruned in the same batch.
package store

import (
	"encoding/binary"
	"fmt"
	"path/filepath"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"onchaintournament/internal/state"
)

const DefaultKeepRecent = 100

var (
	keyLatest      = []byte("state/latest")
	prefixByHeight = []byte("state/h/")
)

type Store struct {
	db         *leveldb.DB
	keepRecent int64
}

// Open opens (or creates) the database at <home>/data/app.db, recovering a
// corrupted manifest if needed.
func Open(home string, keepRecent int64) (*Store, error) {
	dbPath := filepath.Join(home, "data", "app.db")
	return OpenPath(dbPath, keepRecent)
}

func OpenPath(dbPath string, keepRecent int64) (*Store, error) {
	o := &opt.Options{
		OpenFilesCacheCapacity: 64,
		BlockCacheCapacity:     16 * opt.MiB,
		WriteBuffer:            8 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}
	db, err := leveldb.OpenFile(dbPath, o)
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(dbPath, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", dbPath, err)
	}
	if keepRecent <= 0 {
		keepRecent = DefaultKeepRecent
	}
	return &Store{db: db, keepRecent: keepRecent}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the latest committed state, or a fresh state when nothing has
// been committed yet.
func (s *Store) Load() (*state.State, error) {
	b, err := s.db.Get(keyLatest, nil)
	if err == errors.ErrNotFound {
		return state.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return state.Unmarshal(b)
}

// LoadHeight returns the snapshot committed at height.
func (s *Store) LoadHeight(height int64) (*state.State, error) {
	b, err := s.db.Get(heightKey(height), nil)
	if err == errors.ErrNotFound {
		return nil, fmt.Errorf("no snapshot at height %d", height)
	}
	if err != nil {
		return nil, fmt.Errorf("read state at height %d: %w", height, err)
	}
	return state.Unmarshal(b)
}

// Save writes st as the latest snapshot and as the snapshot for st.Height.
func (s *Store) Save(st *state.State) error {
	b, err := st.Marshal()
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put(keyLatest, b)
	batch.Put(heightKey(st.Height), b)

	if cutoff := st.Height - s.keepRecent; cutoff > 0 {
		iter := s.db.NewIterator(&util.Range{Start: heightKey(0), Limit: heightKey(cutoff + 1)}, nil)
		for iter.Next() {
			batch.Delete(append([]byte(nil), iter.Key()...))
		}
		iter.Release()
		if err := iter.Error(); err != nil {
			return fmt.Errorf("scan snapshots: %w", err)
		}
	}

	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Heights lists the heights with a retained snapshot, ascending.
func (s *Store) Heights() ([]int64, error) {
	iter := s.db.NewIterator(util.BytesPrefix(prefixByHeight), nil)
	defer iter.Release()

	var out []int64
	for iter.Next() {
		k := iter.Key()
		if len(k) != len(prefixByHeight)+8 {
			continue
		}
		out = append(out, int64(binary.BigEndian.Uint64(k[len(prefixByHeight):])))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}
	return out, nil
}

func heightKey(h int64) []byte {
	k := make([]byte, len(prefixByHeight)+8)
	copy(k, prefixByHeight)
	binary.BigEndian.PutUint64(k[len(prefixByHeight):], uint64(h))
	return k
}

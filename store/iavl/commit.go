package iavl

import (
	"sync"

	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore manages an iavl committed state. Writes go to the working
// tree and become persistent on Commit.
//
// The tree is not safe for concurrent use, so every access is serialized.
type CommitStore struct {
	mu   sync.Mutex
	db   dbm.DB
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = (*CommitStore)(nil)
var _ store.Batcher = (*CommitStore)(nil)

// NewCommitStore creates a store backed by given database and loads the
// latest persisted version.
func NewCommitStore(db dbm.DB, cacheSize int) (*CommitStore, error) {
	tree := iavl.NewMutableTree(db, cacheSize)
	if _, err := tree.Load(); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return &CommitStore{db: db, tree: tree}, nil
}

// OpenCommitStore opens a goleveldb backed tree in given directory.
func OpenCommitStore(name, dir string) (*CommitStore, error) {
	var db dbm.DB
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Wrapf(errors.ErrDatabase, "open %s: %v", name, r)
			}
		}()
		db = dbm.NewDB(name, dbm.GoLevelDBBackend, dir)
		return nil
	}()
	if err != nil {
		return nil, err
	}
	return NewCommitStore(db, DefaultCacheSize)
}

// Get returns the value from the working tree, nil iff key doesn't exist.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	if key == nil {
		return nil, errors.Wrap(errors.ErrHuman, "nil key")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, val := s.tree.Get(key)
	return val, nil
}

// Has checks if a key exists.
func (s *CommitStore) Has(key []byte) (bool, error) {
	if key == nil {
		return false, errors.Wrap(errors.ErrHuman, "nil key")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Has(key), nil
}

// Set adds a new value
func (s *CommitStore) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	s.mu.Lock()
	s.tree.Set(key, value)
	s.mu.Unlock()
	return nil
}

// Delete removes from the tree
func (s *CommitStore) Delete(key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	s.mu.Lock()
	s.tree.Remove(key)
	s.mu.Unlock()
	return nil
}

// WriteOps applies all operations to the working tree in one step.
func (s *CommitStore) WriteOps(ops []store.Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range ops {
		if op.Delete {
			s.tree.Remove(op.Key)
		} else {
			s.tree.Set(op.Key, op.Value)
		}
	}
	return nil
}

// Iterator returns a snapshot of the requested range of the working tree.
func (s *CommitStore) Iterator(start, end []byte) (store.Iterator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []store.Model
	s.tree.IterateRange(start, end, true, func(key, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(res), nil
}

// CacheWrap gives us a savepoint to perform actions
func (s *CommitStore) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(s)
}

// Commit the next version to disk, and returns info
func (s *CommitStore) Commit() (store.CommitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{Version: version, Hash: hash}, nil
}

// LatestVersion returns info on the latest version saved to disk
func (s *CommitStore) LatestVersion() store.CommitID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}
}

// Close releases the underlying database. The store must not be used
// afterwards.
func (s *CommitStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db.Close()
}

package store

import (
	"github.com/iov-one/custody/errors"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DBStore exposes a tendermint database as a KVStore. Batches are written
// with the database native batch, so they are atomic on disk.
type DBStore struct {
	db dbm.DB
}

var _ CacheableKVStore = (*DBStore)(nil)
var _ Batcher = (*DBStore)(nil)

// NewDBStore wraps given database.
func NewDBStore(db dbm.DB) *DBStore {
	return &DBStore{db: db}
}

// OpenDBStore opens a goleveldb database with given name in given directory.
func OpenDBStore(name, dir string) (*DBStore, error) {
	db, err := openDB(name, dir)
	if err != nil {
		return nil, err
	}
	return NewDBStore(db), nil
}

func openDB(name, dir string) (db dbm.DB, err error) {
	// tendermint panics when the database cannot be opened
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(errors.ErrDatabase, "open %s: %v", name, r)
		}
	}()
	return dbm.NewDB(name, dbm.GoLevelDBBackend, dir), nil
}

func (d *DBStore) Get(key []byte) ([]byte, error) {
	if key == nil {
		return nil, errors.Wrap(errors.ErrHuman, "nil key")
	}
	return d.db.Get(key), nil
}

func (d *DBStore) Has(key []byte) (bool, error) {
	if key == nil {
		return false, errors.Wrap(errors.ErrHuman, "nil key")
	}
	return d.db.Has(key), nil
}

func (d *DBStore) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	d.db.Set(key, value)
	return nil
}

func (d *DBStore) Delete(key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	d.db.Delete(key)
	return nil
}

func (d *DBStore) Iterator(start, end []byte) (Iterator, error) {
	return d.db.Iterator(start, end), nil
}

// WriteOps writes all operations in a single database batch.
func (d *DBStore) WriteOps(ops []Op) error {
	batch := d.db.NewBatch()
	for _, op := range ops {
		if op.Delete {
			batch.Delete(op.Key)
		} else {
			batch.Set(op.Key, op.Value)
		}
	}
	batch.Write()
	return nil
}

func (d *DBStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(d)
}

// Close releases the database.
func (d *DBStore) Close() {
	d.db.Close()
}

package store

import (
	"bytes"
	"sync"

	"github.com/google/btree"
	"github.com/iov-one/custody/errors"
)

const (
	// DefaultFreeListSize is the size we hold for free node in btree
	DefaultFreeListSize = btree.DefaultFreeListSize

	degree = 16
)

// item is stored in the btree. A deleted item shadows the value of the
// same key in the parent store.
type item struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = item{}

// Less returns true iff second argument is greater than first
func (i item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(item).key) < 0
}

func keyItem(key []byte) item {
	return item{key: key}
}

// ascend calls fn for every item in [start, end) range. Nil start or end
// means the range is open on that side.
func ascend(bt *btree.BTree, start, end []byte, fn btree.ItemIterator) {
	switch {
	case start == nil && end == nil:
		bt.Ascend(fn)
	case start == nil:
		bt.AscendLessThan(keyItem(end), fn)
	case end == nil:
		bt.AscendGreaterOrEqual(keyItem(start), fn)
	default:
		bt.AscendRange(keyItem(start), keyItem(end), fn)
	}
}

// MemStore returns a simple in-memory implementation. There is no
// persistence here, but it is safe for concurrent use and applies
// batches atomically.
func MemStore() CacheableKVStore {
	return &memStore{
		bt: btree.NewWithFreeList(degree, btree.NewFreeList(DefaultFreeListSize)),
	}
}

type memStore struct {
	mu sync.RWMutex
	bt *btree.BTree
}

var _ CacheableKVStore = (*memStore)(nil)
var _ Batcher = (*memStore)(nil)

func (m *memStore) Get(key []byte) ([]byte, error) {
	if key == nil {
		return nil, errors.Wrap(errors.ErrHuman, "nil key")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := m.bt.Get(keyItem(key))
	if res == nil {
		return nil, nil
	}
	return res.(item).value, nil
}

func (m *memStore) Has(key []byte) (bool, error) {
	val, err := m.Get(key)
	return val != nil, err
}

func (m *memStore) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	m.mu.Lock()
	m.bt.ReplaceOrInsert(item{key: key, value: value})
	m.mu.Unlock()
	return nil
}

func (m *memStore) Delete(key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	m.mu.Lock()
	m.bt.Delete(keyItem(key))
	m.mu.Unlock()
	return nil
}

// WriteOps applies all operations while holding the write lock.
func (m *memStore) WriteOps(ops []Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, op := range ops {
		if op.Delete {
			m.bt.Delete(keyItem(op.Key))
		} else {
			m.bt.ReplaceOrInsert(item{key: op.Key, value: op.Value})
		}
	}
	return nil
}

// Iterator returns a snapshot of the requested range. Writes done after
// this call are not visible through the returned iterator.
func (m *memStore) Iterator(start, end []byte) (Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []Model
	ascend(m.bt, start, end, func(i btree.Item) bool {
		it := i.(item)
		res = append(res, Model{Key: it.key, Value: it.value})
		return true
	})
	return NewSliceIterator(res), nil
}

func (m *memStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(m)
}

///////////////////////////////////////////////
// Actual CacheWrap implementation

// BTreeCacheWrap places a btree cache over a KVStore. All writes are kept
// in memory until Write is called. It is not safe for concurrent use, each
// operation should use its own cache wrap.
type BTreeCacheWrap struct {
	bt   *btree.BTree
	back KVStore
}

var _ KVCacheWrap = (*BTreeCacheWrap)(nil)
var _ Batcher = (*BTreeCacheWrap)(nil)

// NewBTreeCacheWrap initializes a BTree to cache around this kv store.
func NewBTreeCacheWrap(kv KVStore) *BTreeCacheWrap {
	return &BTreeCacheWrap{
		bt:   btree.New(degree),
		back: kv,
	}
}

// CacheWrap layers another BTree on top of this one.
func (b *BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b)
}

// Write flushes all cached writes to the underlying store and clears the
// cache. If the underlying store is a Batcher, the flush is atomic.
func (b *BTreeCacheWrap) Write() error {
	ops := make([]Op, 0, b.bt.Len())
	b.bt.Ascend(func(i btree.Item) bool {
		it := i.(item)
		ops = append(ops, Op{Key: it.key, Value: it.value, Delete: it.deleted})
		return true
	})
	b.Discard()
	if err := WriteOps(b.back, ops); err != nil {
		return errors.Wrap(err, "cannot write cache")
	}
	return nil
}

// WriteOps records given operations in the cache. It allows cache wraps
// to be stacked.
func (b *BTreeCacheWrap) WriteOps(ops []Op) error {
	for _, op := range ops {
		if err := op.Apply(b); err != nil {
			return err
		}
	}
	return nil
}

// Discard invalidates this CacheWrap and releases all data
func (b *BTreeCacheWrap) Discard() {
	b.bt = btree.New(degree)
}

// Set writes to the BTree
func (b *BTreeCacheWrap) Set(key, value []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	b.bt.ReplaceOrInsert(item{key: key, value: value})
	return nil
}

// Delete marks the key as deleted in the BTree
func (b *BTreeCacheWrap) Delete(key []byte) error {
	if key == nil {
		return errors.Wrap(errors.ErrHuman, "nil key")
	}
	b.bt.ReplaceOrInsert(item{key: key, deleted: true})
	return nil
}

// Get reads from btree if there, else backing store
func (b *BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if key == nil {
		return nil, errors.Wrap(errors.ErrHuman, "nil key")
	}
	if res := b.bt.Get(keyItem(key)); res != nil {
		it := res.(item)
		if it.deleted {
			return nil, nil
		}
		return it.value, nil
	}
	return b.back.Get(key)
}

// Has reads from btree if there, else backing store
func (b *BTreeCacheWrap) Has(key []byte) (bool, error) {
	val, err := b.Get(key)
	return val != nil, err
}

// Iterator over a domain of keys in ascending order.
// Combines results from btree and backing store
func (b *BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parentIter, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	parent := Collect(parentIter)

	var local []item
	ascend(b.bt, start, end, func(i btree.Item) bool {
		local = append(local, i.(item))
		return true
	})

	res := make([]Model, 0, len(parent)+len(local))
	for len(parent) > 0 || len(local) > 0 {
		var cmp int
		switch {
		case len(parent) == 0:
			cmp = 1
		case len(local) == 0:
			cmp = -1
		default:
			cmp = bytes.Compare(parent[0].Key, local[0].key)
		}

		if cmp < 0 {
			res = append(res, parent[0])
			parent = parent[1:]
			continue
		}
		// cached value shadows the parent value of the same key
		if cmp == 0 {
			parent = parent[1:]
		}
		if !local[0].deleted {
			res = append(res, Model{Key: local[0].key, Value: local[0].value})
		}
		local = local[1:]
	}
	return NewSliceIterator(res), nil
}

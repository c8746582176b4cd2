package store

import "github.com/iov-one/custody"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = custody.ReadOnlyKVStore
type KVStore = custody.KVStore
type Iterator = custody.Iterator
type CacheableKVStore = custody.CacheableKVStore
type KVCacheWrap = custody.KVCacheWrap
type CommitKVStore = custody.CommitKVStore
type CommitID = custody.CommitID

// Op is a single write operation. Delete set to true removes the key,
// otherwise Value is written.
type Op struct {
	Key    []byte
	Value  []byte
	Delete bool
}

// Apply performs the operation on given store.
func (o Op) Apply(out custody.SetDeleter) error {
	if o.Delete {
		return out.Delete(o.Key)
	}
	return out.Set(o.Key, o.Value)
}

// Batcher is implemented by stores that can apply a list of writes as a
// single atomic step. Readers never observe a partially applied list.
type Batcher interface {
	WriteOps(ops []Op) error
}

// WriteOps applies all operations to given store. If the store is a
// Batcher, all operations are applied atomically.
func WriteOps(out KVStore, ops []Op) error {
	if b, ok := out.(Batcher); ok {
		return b.WriteOps(ops)
	}
	for _, op := range ops {
		if err := op.Apply(out); err != nil {
			return err
		}
	}
	return nil
}

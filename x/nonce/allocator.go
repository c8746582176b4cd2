package nonce

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

const keyPrefix = "_nonce:"

// LockKey returns the name of the lock guarding the counter of given
// creator.
func LockKey(creator custody.Address) string {
	return "nonce/" + creator.String()
}

func counterKey(creator custody.Address) []byte {
	return append([]byte(keyPrefix), creator...)
}

// Allocator manages the per creator counters.
type Allocator struct {
	// strict requires a counter to be initialized with InitUserMsg
	// before it can be used.
	strict bool
}

// NewAllocator returns an allocator that lazily creates counters starting
// at zero.
func NewAllocator() Allocator {
	return Allocator{}
}

// NewStrictAllocator returns an allocator that refuses to use a counter
// that was not initialized first.
func NewStrictAllocator() Allocator {
	return Allocator{strict: true}
}

// NextID returns the current counter value of the creator and increments
// it for the next use.
func (a Allocator) NextID(db custody.KVStore, creator custody.Address) (uint64, error) {
	if err := creator.Validate(); err != nil {
		return 0, errors.Wrap(err, "creator")
	}
	key := counterKey(creator)
	raw, err := db.Get(key)
	if err != nil {
		return 0, errors.Wrap(err, "cannot load counter")
	}
	if raw == nil && a.strict {
		return 0, errors.Wrapf(errors.ErrNotFound, "counter of %s not initialized", creator)
	}
	cur, err := orm.DecodeSequence(raw)
	if err != nil {
		return 0, err
	}
	if cur+1 < cur {
		return 0, errors.Wrap(errors.ErrOverflow, "counter")
	}
	if err := db.Set(key, orm.EncodeSequence(cur+1)); err != nil {
		return 0, errors.Wrap(err, "cannot store counter")
	}
	return cur, nil
}

// Current returns the value the next NextID call would return, without
// modifying the counter.
func (a Allocator) Current(db custody.ReadOnlyKVStore, creator custody.Address) (uint64, error) {
	raw, err := db.Get(counterKey(creator))
	if err != nil {
		return 0, errors.Wrap(err, "cannot load counter")
	}
	return orm.DecodeSequence(raw)
}

// Exists returns true if the counter of given creator was created.
func (a Allocator) Exists(db custody.ReadOnlyKVStore, creator custody.Address) (bool, error) {
	ok, err := db.Has(counterKey(creator))
	if err != nil {
		return false, errors.Wrap(err, "cannot load counter")
	}
	return ok, nil
}

// Init creates a zero counter for given creator. It fails with
// ErrDuplicate if the counter already exists.
func (a Allocator) Init(db custody.KVStore, creator custody.Address) error {
	switch ok, err := a.Exists(db, creator); {
	case err != nil:
		return err
	case ok:
		return errors.Wrapf(errors.ErrDuplicate, "counter of %s", creator)
	}
	return db.Set(counterKey(creator), orm.EncodeSequence(0))
}

package group

import (
	"encoding/binary"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// MaxOwners is the largest number of owners a group can have.
const MaxOwners = 20

// Group is the persisted state of a custody group.
type Group struct {
	Creator   custody.Address   `json:"creator"`
	Owners    []custody.Address `json:"owners"`
	Threshold uint32            `json:"threshold"`
	ID        uint64            `json:"id"`
	// TxCount is the nonce of the next request created for this group.
	TxCount uint64 `json:"tx_count"`
}

var _ orm.Model = (*Group)(nil)

// Validate ensures the group is valid
func (g *Group) Validate() error {
	if err := g.Creator.Validate(); err != nil {
		return errors.Wrap(err, "creator")
	}
	return ValidateOwners(g.Owners, g.Threshold)
}

// Key returns the primary key of this group.
func (g *Group) Key() []byte {
	return Key(g.Creator, g.ID)
}

// Address returns the custody address of this group.
func (g *Group) Address() custody.Address {
	return Condition(g.Key()).Address()
}

// NextTxNonce returns the current transaction counter and increments it.
// The caller is responsible for persisting the group.
func (g *Group) NextTxNonce() (uint64, error) {
	n := g.TxCount
	if n+1 < n {
		return 0, errors.Wrap(errors.ErrOverflow, "tx count")
	}
	g.TxCount++
	return n, nil
}

// HasOwner returns true if given address is one of the owners.
func (g *Group) HasOwner(a custody.Address) bool {
	for _, o := range g.Owners {
		if o.Equals(a) {
			return true
		}
	}
	return false
}

// ValidateOwners checks the owner set and the threshold of a group.
func ValidateOwners(owners []custody.Address, threshold uint32) error {
	for i, a := range owners {
		if err := a.Validate(); err != nil {
			return errors.Wrapf(err, "owner %d", i)
		}
		for _, b := range owners[:i] {
			if a.Equals(b) {
				return errors.Wrapf(ErrDuplicateOwner, "%s", a)
			}
		}
	}
	if n := len(owners); n < 1 || n > MaxOwners {
		return errors.Wrapf(ErrInvalidOwnerCount, "%d owners, must be between 1 and %d", n, MaxOwners)
	}
	if threshold < 1 || int(threshold) > len(owners) {
		return errors.Wrapf(ErrInvalidThreshold, "%d of %d owners", threshold, len(owners))
	}
	return nil
}

// Key returns the primary key of the group created by given creator with
// given id.
func Key(creator custody.Address, id uint64) []byte {
	key := make([]byte, 0, len(creator)+8)
	key = append(key, creator...)
	return binary.BigEndian.AppendUint64(key, id)
}

// Condition returns the delegated signer condition of the group with given
// key.
func Condition(key []byte) custody.Condition {
	return custody.NewCondition("group", "id", key)
}

// LockKey returns the name of the lock guarding the group record.
func LockKey(key []byte) string {
	return "group/" + custody.HexBytes(key).String()
}

// Bucket stores groups.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing groups.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket("group", &Group{}),
	}
}

// GetGroup loads a group by its key.
func (b Bucket) GetGroup(db custody.ReadOnlyKVStore, key []byte) (*Group, error) {
	var g Group
	if err := b.One(db, key, &g); err != nil {
		return nil, errors.Wrapf(err, "group %X", key)
	}
	return &g, nil
}

// Save stores the group under its own key.
func (b Bucket) Save(db custody.KVStore, g *Group) error {
	return b.Put(db, g.Key(), g)
}

// ByCreator returns all groups created by given address.
func (b Bucket) ByCreator(db custody.ReadOnlyKVStore, creator custody.Address) ([]Group, error) {
	var groups []Group
	if _, err := b.PrefixScan(db, creator, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

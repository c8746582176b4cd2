package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// Wallet holds the native balance of a single address.
type Wallet struct {
	Balance uint64 `json:"balance"`
}

var _ orm.Model = (*Wallet)(nil)

// Validate is always successful, any balance is valid.
func (w *Wallet) Validate() error {
	return nil
}

// LockKey returns the name of the lock guarding the wallet of given
// address.
func LockKey(a custody.Address) string {
	return "wallet/" + a.String()
}

// Bucket stores wallets keyed by their address.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing wallets.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket("cash", &Wallet{}),
	}
}

// GetOrCreate returns the wallet of given address. A missing wallet is
// returned empty.
func (b Bucket) GetOrCreate(db custody.ReadOnlyKVStore, a custody.Address) (*Wallet, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "wallet address")
	}
	var w Wallet
	switch err := b.One(db, a, &w); {
	case err == nil:
		return &w, nil
	case errors.ErrNotFound.Is(err):
		return &Wallet{}, nil
	default:
		return nil, err
	}
}

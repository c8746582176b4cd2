package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis will parse initial account info from genesis
// and save it to the database
func (Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var wallets []struct {
		Address custody.Address `json:"address"`
		Balance uint64          `json:"balance"`
	}
	if err := opts.ReadOptions("cash", &wallets); err != nil {
		return err
	}
	ctrl := NewController(NewBucket())
	for i, w := range wallets {
		if err := w.Address.Validate(); err != nil {
			return errors.Wrapf(err, "wallet %d", i)
		}
		if err := ctrl.IssueCoins(db, w.Address, w.Balance); err != nil {
			return errors.Wrapf(err, "wallet %d", i)
		}
	}
	return nil
}

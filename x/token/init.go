package token

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ custody.Initializer = Initializer{}

// FromGenesis opens the genesis accounts in order of appearance, so the
// first one gets id 1.
func (Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var accounts []Account
	if err := opts.ReadOptions("token", &accounts); err != nil {
		return err
	}
	bucket := NewBucket()
	for i := range accounts {
		if _, err := bucket.Create(db, &accounts[i]); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}

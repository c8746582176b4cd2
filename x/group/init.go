package group

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/nonce"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct {
	Alloc nonce.Allocator
}

var _ custody.Initializer = (*Initializer)(nil)

// FromGenesis will parse initial group info from genesis and save it in
// the database. Ids are allocated in order of appearance.
func (i *Initializer) FromGenesis(opts custody.Options, db custody.KVStore) error {
	var groups []struct {
		Creator   custody.Address   `json:"creator"`
		Owners    []custody.Address `json:"owners"`
		Threshold uint32            `json:"threshold"`
	}
	if err := opts.ReadOptions("group", &groups); err != nil {
		return err
	}

	bucket := NewBucket()
	for j, g := range groups {
		if err := g.Creator.Validate(); err != nil {
			return errors.Wrapf(err, "group %d creator", j)
		}
		switch ok, err := i.Alloc.Exists(db, g.Creator); {
		case err != nil:
			return err
		case !ok:
			if err := i.Alloc.Init(db, g.Creator); err != nil {
				return errors.Wrapf(err, "group %d creator nonce", j)
			}
		}
		if _, err := Create(db, bucket, i.Alloc, g.Creator, g.Owners, g.Threshold); err != nil {
			return errors.Wrapf(err, "group %d", j)
		}
	}
	return nil
}

package token

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
)

// Controller moves tokens between accounts.
type Controller struct {
	bucket Bucket
}

// NewController returns a controller operating on given bucket.
func NewController(bucket Bucket) Controller {
	return Controller{bucket: bucket}
}

// Transfer moves amount of tokens from one account to another. The owner
// of the source account must be authenticated in the context. Both
// accounts must hold the same asset.
func (c Controller) Transfer(ctx custody.Context, db custody.KVStore, auth x.Authenticator, fromID, toID []byte, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if string(fromID) == string(toID) {
		return errors.Wrap(errors.ErrInput, "source and destination are the same")
	}
	from, err := c.bucket.GetAccount(db, fromID)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	to, err := c.bucket.GetAccount(db, toID)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if from.Asset != to.Asset {
		return errors.Wrapf(ErrAssetMismatch, "%s to %s", from.Asset, to.Asset)
	}
	if !auth.HasAddress(ctx, from.Owner) {
		return errors.Wrap(errors.ErrUnauthorized, "source owner must sign")
	}
	if from.Balance < amount {
		return errors.Wrapf(cash.ErrInsufficientBalance, "account %X has %d %s", fromID, from.Balance, from.Asset)
	}
	if to.Balance+amount < to.Balance {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}

	from.Balance -= amount
	to.Balance += amount
	if err := c.bucket.Put(db, fromID, from); err != nil {
		return err
	}
	return c.bucket.Put(db, toID, to)
}

package cash

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Balancer reads native balances.
type Balancer interface {
	Balance(db custody.ReadOnlyKVStore, a custody.Address) (uint64, error)
}

// CoinMover moves native funds between addresses.
type CoinMover interface {
	Balancer
	MoveCoins(db custody.KVStore, src, dest custody.Address, amount uint64) error
}

// CoinIssuer creates new native funds.
type CoinIssuer interface {
	IssueCoins(db custody.KVStore, dest custody.Address, amount uint64) error
}

// Controller is the full native ledger interface.
type Controller interface {
	CoinMover
	CoinIssuer
}

// BaseController is a simple implementation of controller
// wallet must return something that supports AsSet
type BaseController struct {
	bucket Bucket
}

var _ Controller = BaseController{}

// NewController returns a basic controller implementation
func NewController(bucket Bucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the native balance of given address. Unknown addresses
// have a zero balance.
func (c BaseController) Balance(db custody.ReadOnlyKVStore, a custody.Address) (uint64, error) {
	w, err := c.bucket.GetOrCreate(db, a)
	if err != nil {
		return 0, err
	}
	return w.Balance, nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't have sufficient funds, it fails with
// ErrInsufficientBalance.
func (c BaseController) MoveCoins(db custody.KVStore, src, dest custody.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if src.Equals(dest) {
		return errors.Wrap(errors.ErrInput, "source and destination are the same")
	}

	sender, err := c.bucket.GetOrCreate(db, src)
	if err != nil {
		return errors.Wrap(err, "sender")
	}
	if sender.Balance < amount {
		return errors.Wrapf(ErrInsufficientBalance, "%s has %d, need %d", src, sender.Balance, amount)
	}
	recipient, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return errors.Wrap(err, "recipient")
	}
	if recipient.Balance+amount < recipient.Balance {
		return errors.Wrap(errors.ErrOverflow, "recipient balance")
	}

	sender.Balance -= amount
	recipient.Balance += amount

	if err := c.bucket.Put(db, src, sender); err != nil {
		return err
	}
	return c.bucket.Put(db, dest, recipient)
}

// IssueCoins attempts to add the given amount of coins to
// the destination address. Fails if it overflows the wallet.
func (c BaseController) IssueCoins(db custody.KVStore, dest custody.Address, amount uint64) error {
	w, err := c.bucket.GetOrCreate(db, dest)
	if err != nil {
		return err
	}
	if w.Balance+amount < w.Balance {
		return errors.Wrap(errors.ErrOverflow, "balance")
	}
	w.Balance += amount
	return c.bucket.Put(db, dest, w)
}

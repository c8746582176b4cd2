package token

import (
	"regexp"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
)

// NativeTicker is the reserved asset identifier of the native currency.
// No token account can hold it.
const NativeTicker = "NATIVE"

var isTicker = regexp.MustCompile(`^[A-Z0-9]{2,12}$`).MatchString

// IsNative returns true if given asset identifier names the native
// currency.
func IsNative(asset string) bool {
	return asset == NativeTicker
}

// ValidateAsset returns an error if given asset identifier is not a valid
// token ticker.
func ValidateAsset(asset string) error {
	if !isTicker(asset) {
		return errors.Wrapf(ErrInvalidAsset, "invalid ticker %q", asset)
	}
	if IsNative(asset) {
		return errors.Wrap(ErrInvalidAsset, "native currency is not a token")
	}
	return nil
}

// Account holds the balance of one asset owned by one address.
type Account struct {
	Owner   custody.Address `json:"owner"`
	Asset   string          `json:"asset"`
	Balance uint64          `json:"balance"`
}

var _ orm.Model = (*Account)(nil)

// Validate ensures the account is valid
func (a *Account) Validate() error {
	if err := a.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return ValidateAsset(a.Asset)
}

// LockKey returns the name of the lock guarding the account with given id.
func LockKey(id []byte) string {
	return "account/" + custody.HexBytes(id).String()
}

// SequenceLockKey guards the account id sequence.
const SequenceLockKey = "seq/account"

// Bucket stores accounts under sequential ids.
type Bucket struct {
	orm.ModelBucket
	seq orm.Sequence
}

// NewBucket returns a bucket for managing token accounts.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket("token", &Account{}),
		seq:         orm.NewSequence("token", "id"),
	}
}

// Create stores a new account and returns its id.
func (b Bucket) Create(db custody.KVStore, a *Account) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	id, err := b.seq.NextVal(db)
	if err != nil {
		return nil, errors.Wrap(err, "cannot acquire id")
	}
	if err := b.Put(db, id, a); err != nil {
		return nil, err
	}
	return id, nil
}

// GetAccount loads an account by its id.
func (b Bucket) GetAccount(db custody.ReadOnlyKVStore, id []byte) (*Account, error) {
	var a Account
	if err := b.One(db, id, &a); err != nil {
		return nil, errors.Wrapf(err, "account %X", id)
	}
	return &a, nil
}

// AssetClass tells how an asset is transferred.
type AssetClass int32

const (
	// ClassNative assets move between cash wallets.
	ClassNative AssetClass = 1
	// ClassToken assets move between token accounts.
	ClassToken AssetClass = 2
)

// ClassOf returns the class of given asset identifier.
func ClassOf(asset string) AssetClass {
	if IsNative(asset) {
		return ClassNative
	}
	return ClassToken
}

func (c AssetClass) String() string {
	switch c {
	case ClassNative:
		return "native"
	case ClassToken:
		return "token"
	default:
		return "unknown"
	}
}

// Validate returns an error if the class is not one of the known values.
func (c AssetClass) Validate() error {
	switch c {
	case ClassNative, ClassToken:
		return nil
	default:
		return errors.Wrapf(errors.ErrState, "unknown asset class %d", c)
	}
}

package request

import (
	"encoding/binary"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/orm"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/token"
)

// Request is a single proposed transfer out of the custody of a group.
type Request struct {
	// Group is the key of the group that owns the funds.
	Group    []byte           `json:"group"`
	Creator  custody.Address  `json:"creator"`
	Receiver custody.Address  `json:"receiver"`
	Asset    string           `json:"asset"`
	Class    token.AssetClass `json:"class"`
	Amount   uint64           `json:"amount"`
	// Owners and Threshold are copied from the group at creation.
	Owners    []custody.Address `json:"owners"`
	Threshold uint32            `json:"threshold"`
	// Approvals has one entry per owner, in the same order.
	Approvals []bool `json:"approvals"`
	// ExpireAt zero means the request never expires.
	ExpireAt custody.UnixTime `json:"expire_at"`
	Status   Status           `json:"status"`
	Executed bool             `json:"executed"`
	// Nonce is the group transaction counter captured at creation.
	Nonce uint64 `json:"nonce"`
}

var _ orm.Model = (*Request)(nil)

// Validate ensures the request is valid
func (r *Request) Validate() error {
	if len(r.Group) == 0 {
		return errors.Wrap(errors.ErrEmpty, "group")
	}
	if err := r.Creator.Validate(); err != nil {
		return errors.Wrap(err, "creator")
	}
	if err := r.Receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	if err := validateAsset(r.Asset); err != nil {
		return err
	}
	if r.Class != token.ClassOf(r.Asset) {
		return errors.Wrapf(errors.ErrState, "asset %s is not of class %s", r.Asset, r.Class)
	}
	if r.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if err := group.ValidateOwners(r.Owners, r.Threshold); err != nil {
		return err
	}
	if len(r.Approvals) != len(r.Owners) {
		return errors.Wrapf(errors.ErrState, "%d approvals for %d owners", len(r.Approvals), len(r.Owners))
	}
	if r.ExpireAt < 0 {
		return errors.Wrap(ErrInvalidExpiry, "negative expiry")
	}
	if err := r.Status.Validate(); err != nil {
		return err
	}
	if r.Executed && r.Status != StatusCompleted {
		return errors.Wrapf(errors.ErrState, "executed request in %s status", r.Status)
	}
	return nil
}

// validateAsset accepts the native ticker and any valid token ticker.
func validateAsset(asset string) error {
	if token.IsNative(asset) {
		return nil
	}
	return token.ValidateAsset(asset)
}

// Key returns the primary key of this request.
func (r *Request) Key() []byte {
	return Key(r.Group, r.Nonce)
}

// Key returns the primary key of the request created by given group with
// given nonce.
func Key(groupKey []byte, nonce uint64) []byte {
	key := make([]byte, 0, len(groupKey)+8)
	key = append(key, groupKey...)
	return binary.BigEndian.AppendUint64(key, nonce)
}

// LockKey returns the name of the lock guarding the request record.
func LockKey(key []byte) string {
	return "request/" + custody.HexBytes(key).String()
}

// ApprovalCount returns the number of owners that approved the request.
func (r *Request) ApprovalCount() uint32 {
	var n uint32
	for _, ok := range r.Approvals {
		if ok {
			n++
		}
	}
	return n
}

// HasOwner returns true if given address is in the owner snapshot.
func (r *Request) HasOwner(a custody.Address) bool {
	return r.ownerIndex(a) >= 0
}

func (r *Request) ownerIndex(a custody.Address) int {
	for i, o := range r.Owners {
		if o.Equals(a) {
			return i
		}
	}
	return -1
}

// RefreshExpiry moves an active request past its expiry time to the
// Timeout status. It returns true if the status changed.
func (r *Request) RefreshExpiry(now custody.UnixTime) bool {
	if r.Status != StatusActive || r.ExpireAt <= 0 || r.ExpireAt > now {
		return false
	}
	r.Status = StatusTimeout
	return true
}

// Approve records the approval of given signer. Expiry is evaluated first.
// Approving a request that is not active is a no-op and returns false.
func (r *Request) Approve(signer custody.Address, now custody.UnixTime) (bool, error) {
	r.RefreshExpiry(now)
	return r.approve(signer)
}

func (r *Request) approve(signer custody.Address) (bool, error) {
	if r.Status != StatusActive {
		return false, nil
	}
	i := r.ownerIndex(signer)
	if i < 0 {
		return false, errors.Wrapf(ErrInvalidSigner, "%s is not an owner", signer)
	}
	if r.Approvals[i] {
		return false, errors.Wrapf(ErrDuplicateSignature, "%s already approved", signer)
	}
	r.Approvals[i] = true
	if r.ApprovalCount() >= r.Threshold {
		r.Status = StatusApproved
	}
	return true, nil
}

// Cancel moves the request to the Canceled status. Only the creator can
// cancel and an approved request cannot be canceled. Requests that are
// already Completed or Canceled are canceled again only if
// allowFinalized is true.
func (r *Request) Cancel(requester custody.Address, allowFinalized bool) error {
	if !requester.Equals(r.Creator) {
		return errors.Wrap(errors.ErrUnauthorized, "only the creator can cancel")
	}
	if r.Status == StatusApproved {
		return errors.Wrap(ErrCannotCancel, "request is approved")
	}
	if r.Status.Final() && !allowFinalized {
		return errors.Wrapf(ErrCannotCancel, "request is %s", r.Status)
	}
	r.Status = StatusCanceled
	return nil
}

// MarkExecuted finalizes an approved request. The executor must be one of
// the owners.
func (r *Request) MarkExecuted(executor custody.Address) error {
	if r.Status != StatusApproved {
		return errors.Wrapf(ErrNotApproved, "request is %s", r.Status)
	}
	if !r.HasOwner(executor) {
		return errors.Wrapf(ErrInvalidSigner, "%s is not an owner", executor)
	}
	r.Executed = true
	r.Status = StatusCompleted
	return nil
}

// Bucket stores requests.
type Bucket struct {
	orm.ModelBucket
}

// NewBucket returns a bucket for managing requests.
func NewBucket() Bucket {
	return Bucket{
		ModelBucket: orm.NewModelBucket("request", &Request{}),
	}
}

// GetRequest loads a request by its key.
func (b Bucket) GetRequest(db custody.ReadOnlyKVStore, key []byte) (*Request, error) {
	var r Request
	if err := b.One(db, key, &r); err != nil {
		return nil, errors.Wrapf(err, "request %X", key)
	}
	return &r, nil
}

// Save stores the request under its own key.
func (b Bucket) Save(db custody.KVStore, r *Request) error {
	return b.Put(db, r.Key(), r)
}

// ByGroup returns all requests of given group in creation order.
func (b Bucket) ByGroup(db custody.ReadOnlyKVStore, groupKey []byte) ([]Request, error) {
	var requests []Request
	if _, err := b.PrefixScan(db, groupKey, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

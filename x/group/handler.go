package group

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/nonce"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator, alloc nonce.Allocator) {
	r.Handle(&CreateMsg{}, CreateHandler{auth: auth, bucket: NewBucket(), alloc: alloc})
}

// CreateHandler registers new groups.
type CreateHandler struct {
	auth   x.Authenticator
	bucket Bucket
	alloc  nonce.Allocator
}

var _ custody.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

// Deliver allocates the group id from the creator nonce and stores the
// group. The group key is returned as the result data.
func (h CreateHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	g, err := Create(db, h.bucket, h.alloc, msg.Creator, msg.Owners, msg.Threshold)
	if err != nil {
		return nil, err
	}

	key := g.Key()
	custody.GetLogger(ctx).Debug("group created", "group", custody.HexBytes(key), "owners", len(g.Owners), "threshold", g.Threshold)

	ev := custody.NewEvent(ctx, custody.EventGroupCreated, g.Creator)
	ev.Group = key
	return &custody.DeliverResult{Data: key, Events: []custody.Event{ev}}, nil
}

func (h CreateHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*CreateMsg, error) {
	var msg CreateMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Creator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "creator must sign")
	}
	return &msg, nil
}

// Create validates and stores a new group. The id is taken from the
// creator nonce only after the owner set was accepted, so a rejected group
// leaves the nonce untouched.
func Create(db custody.KVStore, b Bucket, alloc nonce.Allocator, creator custody.Address, owners []custody.Address, threshold uint32) (*Group, error) {
	if err := ValidateOwners(owners, threshold); err != nil {
		return nil, err
	}
	id, err := alloc.NextID(db, creator)
	if err != nil {
		return nil, errors.Wrap(err, "cannot allocate group id")
	}
	g := &Group{
		Creator:   creator,
		Owners:    owners,
		Threshold: threshold,
		ID:        id,
	}
	if err := b.Save(db, g); err != nil {
		return nil, errors.Wrap(err, "cannot store group")
	}
	return g, nil
}

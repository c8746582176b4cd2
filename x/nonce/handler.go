package nonce

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator, alloc Allocator) {
	r.Handle(&InitUserMsg{}, InitUserHandler{auth: auth, alloc: alloc})
}

// InitUserHandler creates a counter for the signer.
type InitUserHandler struct {
	auth  x.Authenticator
	alloc Allocator
}

var _ custody.Handler = InitUserHandler{}

func (h InitUserHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h InitUserHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.alloc.Init(db, msg.Creator); err != nil {
		return nil, err
	}
	return &custody.DeliverResult{}, nil
}

func (h InitUserHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*InitUserMsg, error) {
	var msg InitUserMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Creator) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "creator must sign")
	}
	switch ok, err := h.alloc.Exists(db, msg.Creator); {
	case err != nil:
		return nil, err
	case ok:
		return nil, errors.Wrapf(errors.ErrDuplicate, "counter of %s", msg.Creator)
	}
	return &msg, nil
}

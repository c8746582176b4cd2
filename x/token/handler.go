package token

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry) {
	r.Handle(&OpenAccountMsg{}, OpenAccountHandler{bucket: NewBucket()})
}

// OpenAccountHandler creates empty token accounts.
type OpenAccountHandler struct {
	bucket Bucket
}

var _ custody.Handler = OpenAccountHandler{}

func (h OpenAccountHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	var msg OpenAccountMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	return &custody.CheckResult{}, nil
}

// Deliver returns the id of the new account as the result data.
func (h OpenAccountHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	var msg OpenAccountMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	id, err := h.bucket.Create(db, &Account{Owner: msg.Owner, Asset: msg.Asset})
	if err != nil {
		return nil, errors.Wrap(err, "cannot open account")
	}
	ev := custody.NewEvent(ctx, custody.EventAccountOpened, msg.Owner)
	ev.Asset = msg.Asset
	return &custody.DeliverResult{Data: id, Events: []custody.Event{ev}}, nil
}

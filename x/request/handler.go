package request

import (
	"time"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/token"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator) {
	requests := NewBucket()
	r.Handle(&CreateMsg{}, CreateHandler{auth: auth, groups: group.NewBucket(), requests: requests})
	r.Handle(&ApproveMsg{}, ApproveHandler{auth: auth, requests: requests})
	r.Handle(&CancelMsg{}, CancelHandler{auth: auth, requests: requests})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(confPkg, newConfiguration, auth))
}

func newConfiguration() gconf.OwnedConfig {
	return &Configuration{}
}

func blockTime(ctx custody.Context) (custody.UnixTime, error) {
	now, ok := custody.BlockTime(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrHuman, "block time not set")
	}
	return custody.AsUnixTime(now), nil
}

// CreateHandler creates new requests.
type CreateHandler struct {
	auth     x.Authenticator
	groups   group.Bucket
	requests Bucket
}

var _ custody.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

// Deliver stores the request together with the incremented group counter.
// The request key is returned as the result data.
func (h CreateHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	req, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.groups.Save(db, g); err != nil {
		return nil, errors.Wrap(err, "cannot store group")
	}
	if err := h.requests.Save(db, req); err != nil {
		return nil, errors.Wrap(err, "cannot store request")
	}

	key := req.Key()
	custody.GetLogger(ctx).Debug("request created", "request", custody.HexBytes(key), "status", req.Status)

	ev := custody.NewEvent(ctx, custody.EventRequestCreated, req.Creator)
	ev.Group = req.Group
	ev.Request = key
	ev.Asset = req.Asset
	ev.Amount = req.Amount
	ev.Class = req.Class.String()
	ev.ExpireAt = req.ExpireAt
	ev.Status = req.Status.String()
	return &custody.DeliverResult{Data: key, Events: []custody.Event{ev}}, nil
}

// validate builds the new request and returns it together with the group
// carrying the incremented counter. Nothing is written.
func (h CreateHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Request, *group.Group, error) {
	var msg CreateMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Creator) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "creator must sign")
	}
	g, err := h.groups.GetGroup(db, msg.Group)
	if err != nil {
		return nil, nil, err
	}
	req, err := New(g, &msg)
	if err != nil {
		return nil, nil, err
	}
	return req, g, nil
}

// New returns a request of given group built from the message. The
// creator approval is recorded and the transaction counter of the group is
// incremented. The caller is responsible for persisting both.
func New(g *group.Group, msg *CreateMsg) (*Request, error) {
	owners := make([]custody.Address, len(g.Owners))
	copy(owners, g.Owners)

	req := &Request{
		Group:     g.Key(),
		Creator:   msg.Creator,
		Receiver:  msg.Receiver,
		Asset:     msg.Asset,
		Class:     token.ClassOf(msg.Asset),
		Amount:    msg.Amount,
		Owners:    owners,
		Threshold: g.Threshold,
		Approvals: make([]bool, len(owners)),
		ExpireAt:  msg.ExpireAt,
		Status:    StatusActive,
	}
	if _, err := req.approve(msg.Creator); err != nil {
		return nil, errors.Wrap(err, "creator approval")
	}
	nonce, err := g.NextTxNonce()
	if err != nil {
		return nil, err
	}
	req.Nonce = nonce
	return req, nil
}

// ApproveHandler records owner approvals.
type ApproveHandler struct {
	auth     x.Authenticator
	requests Bucket
}

var _ custody.Handler = ApproveHandler{}

func (h ApproveHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

// Deliver persists the approval. A request found past its expiry is
// persisted in the Timeout status and the approval is skipped without an
// error.
func (h ApproveHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	req, msg, err := h.apply(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.requests.Save(db, req); err != nil {
		return nil, errors.Wrap(err, "cannot store request")
	}

	ev := custody.NewEvent(ctx, custody.EventApprovalRecorded, msg.Signer)
	ev.Group = req.Group
	ev.Request = msg.Request
	ev.Status = req.Status.String()
	return &custody.DeliverResult{Data: msg.Request, Events: []custody.Event{ev}}, nil
}

func (h ApproveHandler) apply(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Request, *ApproveMsg, error) {
	var msg ApproveMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Signer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "signer must sign")
	}
	now, err := blockTime(ctx)
	if err != nil {
		return nil, nil, err
	}
	req, err := h.requests.GetRequest(db, msg.Request)
	if err != nil {
		return nil, nil, err
	}
	recorded, err := req.Approve(msg.Signer, now)
	if err != nil {
		return nil, nil, err
	}
	if !recorded {
		custody.GetLogger(ctx).Debug("approval skipped",
			"request", custody.HexBytes(msg.Request),
			"status", req.Status,
			"expire_at", req.ExpireAt.Time().Format(time.RFC3339))
	}
	return req, &msg, nil
}

// CancelHandler cancels requests.
type CancelHandler struct {
	auth     x.Authenticator
	requests Bucket
}

var _ custody.Handler = CancelHandler{}

func (h CancelHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h CancelHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	req, msg, err := h.apply(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.requests.Save(db, req); err != nil {
		return nil, errors.Wrap(err, "cannot store request")
	}

	ev := custody.NewEvent(ctx, custody.EventRequestCanceled, msg.Requester)
	ev.Group = req.Group
	ev.Request = msg.Request
	ev.Status = req.Status.String()
	return &custody.DeliverResult{Data: msg.Request, Events: []custody.Event{ev}}, nil
}

func (h CancelHandler) apply(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*Request, *CancelMsg, error) {
	var msg CancelMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Requester) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "requester must sign")
	}
	conf, err := LoadConfiguration(db)
	if err != nil {
		return nil, nil, errors.Wrap(err, "configuration")
	}
	req, err := h.requests.GetRequest(db, msg.Request)
	if err != nil {
		return nil, nil, err
	}
	if err := req.Cancel(msg.Requester, conf.AllowFinalizedCancel()); err != nil {
		return nil, nil, err
	}
	return req, &msg, nil
}

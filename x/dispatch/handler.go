package dispatch

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/request"
	"github.com/iov-one/custody/x/token"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator, cashCtrl cash.CoinMover, tokenCtrl token.Controller) {
	r.Handle(&ExecuteMsg{}, ExecuteHandler{
		auth:     auth,
		requests: request.NewBucket(),
		accounts: token.NewBucket(),
		cash:     cashCtrl,
		tokens:   tokenCtrl,
	})
}

// ExecuteHandler pays out approved requests.
type ExecuteHandler struct {
	auth     x.Authenticator
	requests request.Bucket
	accounts token.Bucket
	cash     cash.CoinMover
	tokens   token.Controller
}

var _ custody.Handler = ExecuteHandler{}

func (h ExecuteHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

// Deliver moves the funds and stores the request as Completed.
func (h ExecuteHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	req, msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	groupAddr := group.Condition(req.Group).Address()
	switch req.Class {
	case token.ClassNative:
		err = h.cash.MoveCoins(db, groupAddr, req.Receiver, req.Amount)
	case token.ClassToken:
		// the group signs for its own vault, nothing else does
		gctx := withGroup(ctx, req.Group)
		err = h.tokens.Transfer(gctx, db, groupAuth{}, msg.Vault, msg.Destination, req.Amount)
	default:
		err = errors.Wrapf(errors.ErrState, "unknown asset class %d", req.Class)
	}
	if err != nil {
		return nil, errors.Wrap(err, "transfer")
	}
	if err := h.requests.Save(db, req); err != nil {
		return nil, errors.Wrap(err, "cannot store request")
	}

	custody.GetLogger(ctx).Info("request executed",
		"request", custody.HexBytes(msg.Request),
		"asset", req.Asset,
		"amount", req.Amount)

	ev := custody.NewEvent(ctx, custody.EventRequestExecuted, msg.Executor)
	ev.Group = req.Group
	ev.Request = msg.Request
	ev.Asset = req.Asset
	ev.Amount = req.Amount
	ev.Class = req.Class.String()
	ev.Status = req.Status.String()
	return &custody.DeliverResult{Data: msg.Request, Events: []custody.Event{ev}}, nil
}

// validate returns the request already marked as executed, if the payout
// can proceed.
func (h ExecuteHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*request.Request, *ExecuteMsg, error) {
	var msg ExecuteMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Executor) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "executor must sign")
	}
	req, err := h.requests.GetRequest(db, msg.Request)
	if err != nil {
		return nil, nil, err
	}
	if err := req.MarkExecuted(msg.Executor); err != nil {
		return nil, nil, err
	}

	switch req.Class {
	case token.ClassNative:
		err = h.checkNative(db, req, &msg)
	case token.ClassToken:
		err = h.checkToken(db, req, &msg)
	default:
		err = errors.Wrapf(errors.ErrState, "unknown asset class %d", req.Class)
	}
	if err != nil {
		return nil, nil, err
	}
	return req, &msg, nil
}

func (h ExecuteHandler) checkNative(db custody.KVStore, req *request.Request, msg *ExecuteMsg) error {
	if msg.isToken() {
		return errors.Wrap(errors.ErrInput, "native request takes no token accounts")
	}
	if !msg.Receiver.Equals(req.Receiver) {
		return errors.Wrap(token.ErrInvalidDestination, "receiver does not match the request")
	}
	balance, err := h.cash.Balance(db, group.Condition(req.Group).Address())
	if err != nil {
		return errors.Wrap(err, "custody balance")
	}
	if balance < req.Amount {
		return errors.Wrapf(ErrInsufficientCustodyBalance, "group holds %d, need %d", balance, req.Amount)
	}
	return nil
}

func (h ExecuteHandler) checkToken(db custody.KVStore, req *request.Request, msg *ExecuteMsg) error {
	if !msg.isToken() {
		return errors.Wrap(errors.ErrInput, "token request requires vault and destination")
	}
	vault, err := h.accounts.GetAccount(db, msg.Vault)
	if err != nil {
		return errors.Wrap(err, "vault")
	}
	dest, err := h.accounts.GetAccount(db, msg.Destination)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if vault.Asset != req.Asset || dest.Asset != req.Asset {
		return errors.Wrapf(token.ErrAssetMismatch, "request %s, vault %s, destination %s", req.Asset, vault.Asset, dest.Asset)
	}
	if !vault.Owner.Equals(group.Condition(req.Group).Address()) {
		return errors.Wrap(token.ErrInvalidVault, "vault is not owned by the group")
	}
	if !dest.Owner.Equals(req.Receiver) {
		return errors.Wrap(token.ErrInvalidDestination, "destination is not owned by the receiver")
	}
	if vault.Balance < req.Amount {
		return errors.Wrapf(ErrInsufficientCustodyBalance, "vault holds %d, need %d", vault.Balance, req.Amount)
	}
	return nil
}

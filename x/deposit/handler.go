package deposit

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/token"
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r custody.Registry, auth x.Authenticator, cashCtrl cash.CoinMover, tokenCtrl token.Controller) {
	groups := group.NewBucket()
	r.Handle(&NativeMsg{}, NativeHandler{auth: auth, groups: groups, cash: cashCtrl})
	r.Handle(&TokenMsg{}, TokenHandler{auth: auth, groups: groups, accounts: token.NewBucket(), tokens: tokenCtrl})
}

// NativeHandler deposits native currency.
type NativeHandler struct {
	auth   x.Authenticator
	groups group.Bucket
	cash   cash.CoinMover
}

var _ custody.Handler = NativeHandler{}

func (h NativeHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	msg, _, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	// MoveCoins checks it again in deliver
	balance, err := h.cash.Balance(db, msg.Payer)
	if err != nil {
		return nil, err
	}
	if balance < msg.Amount {
		return nil, errors.Wrapf(cash.ErrInsufficientBalance, "%s has %d, need %d", msg.Payer, balance, msg.Amount)
	}
	return &custody.CheckResult{}, nil
}

func (h NativeHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, g, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.cash.MoveCoins(db, msg.Payer, g.Address(), msg.Amount); err != nil {
		return nil, err
	}

	ev := custody.NewEvent(ctx, custody.EventDepositRecorded, msg.Payer)
	ev.Group = msg.Group
	ev.Asset = token.NativeTicker
	ev.Amount = msg.Amount
	ev.Class = token.ClassNative.String()
	return &custody.DeliverResult{Events: []custody.Event{ev}}, nil
}

func (h NativeHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*NativeMsg, *group.Group, error) {
	var msg NativeMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "payer must sign")
	}
	g, err := h.groups.GetGroup(db, msg.Group)
	if err != nil {
		return nil, nil, err
	}
	return &msg, g, nil
}

// TokenHandler deposits tokens into a group vault.
type TokenHandler struct {
	auth     x.Authenticator
	groups   group.Bucket
	accounts token.Bucket
	tokens   token.Controller
}

var _ custody.Handler = TokenHandler{}

func (h TokenHandler) Check(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &custody.CheckResult{}, nil
}

func (h TokenHandler) Deliver(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*custody.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.tokens.Transfer(ctx, db, h.auth, msg.Source, msg.Vault, msg.Amount); err != nil {
		return nil, errors.Wrap(err, "transfer")
	}

	ev := custody.NewEvent(ctx, custody.EventDepositRecorded, msg.Payer)
	ev.Group = msg.Group
	ev.Asset = msg.Asset
	ev.Amount = msg.Amount
	ev.Class = token.ClassToken.String()
	return &custody.DeliverResult{Events: []custody.Event{ev}}, nil
}

// validate checks the source asset first, then its balance and finally the
// vault ownership.
func (h TokenHandler) validate(ctx custody.Context, db custody.KVStore, tx custody.Tx) (*TokenMsg, error) {
	var msg TokenMsg
	if err := custody.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "payer must sign")
	}
	g, err := h.groups.GetGroup(db, msg.Group)
	if err != nil {
		return nil, err
	}

	source, err := h.accounts.GetAccount(db, msg.Source)
	if err != nil {
		return nil, errors.Wrap(err, "source")
	}
	if source.Asset != msg.Asset {
		return nil, errors.Wrapf(token.ErrInvalidAsset, "source account holds %s, not %s", source.Asset, msg.Asset)
	}
	if source.Balance < msg.Amount {
		return nil, errors.Wrapf(cash.ErrInsufficientBalance, "source account has %d %s", source.Balance, source.Asset)
	}

	vault, err := h.accounts.GetAccount(db, msg.Vault)
	if err != nil {
		return nil, errors.Wrap(err, "vault")
	}
	if !vault.Owner.Equals(g.Address()) {
		return nil, errors.Wrap(token.ErrInvalidVault, "vault is not owned by the group")
	}
	return &msg, nil
}

package deposit

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/token"
)

const (
	pathNativeMsg = "deposit/native"
	pathTokenMsg  = "deposit/token"
)

// NativeMsg moves native currency from the payer to the custody balance of
// a group.
type NativeMsg struct {
	Payer  custody.Address `json:"payer"`
	Group  []byte          `json:"group"`
	Amount uint64          `json:"amount"`
}

var _ custody.Msg = (*NativeMsg)(nil)
var _ custody.Exclusive = (*NativeMsg)(nil)

// Path fulfills custody.Msg interface to allow routing
func (NativeMsg) Path() string {
	return pathNativeMsg
}

// Validate makes sure that this is sensible
func (m *NativeMsg) Validate() error {
	if err := m.Payer.Validate(); err != nil {
		return errors.Wrap(err, "payer")
	}
	if len(m.Group) == 0 {
		return errors.Wrap(errors.ErrEmpty, "group")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	return nil
}

// LockKeys returns the payer and the group wallets.
func (m *NativeMsg) LockKeys() []string {
	return []string{
		cash.LockKey(m.Payer),
		cash.LockKey(group.Condition(m.Group).Address()),
	}
}

// TokenMsg moves tokens from an account of the payer to a vault owned by
// the group.
type TokenMsg struct {
	Payer  custody.Address `json:"payer"`
	Group  []byte          `json:"group"`
	Asset  string          `json:"asset"`
	Amount uint64          `json:"amount"`
	Source []byte          `json:"source"`
	Vault  []byte          `json:"vault"`
}

var _ custody.Msg = (*TokenMsg)(nil)
var _ custody.Exclusive = (*TokenMsg)(nil)

// Path fulfills custody.Msg interface to allow routing
func (TokenMsg) Path() string {
	return pathTokenMsg
}

// Validate makes sure that this is sensible
func (m *TokenMsg) Validate() error {
	if err := m.Payer.Validate(); err != nil {
		return errors.Wrap(err, "payer")
	}
	if len(m.Group) == 0 {
		return errors.Wrap(errors.ErrEmpty, "group")
	}
	if err := token.ValidateAsset(m.Asset); err != nil {
		return err
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if len(m.Source) == 0 {
		return errors.Wrap(errors.ErrEmpty, "source account")
	}
	if len(m.Vault) == 0 {
		return errors.Wrap(errors.ErrEmpty, "vault account")
	}
	return nil
}

// LockKeys returns both accounts.
func (m *TokenMsg) LockKeys() []string {
	return []string{token.LockKey(m.Source), token.LockKey(m.Vault)}
}

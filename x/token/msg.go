package token

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const pathOpenAccountMsg = "token/open"

// OpenAccountMsg opens an empty account for given owner and asset. Anyone
// can open an account for anyone, this is how a group gets its vaults.
type OpenAccountMsg struct {
	Owner custody.Address `json:"owner"`
	Asset string          `json:"asset"`
}

var _ custody.Msg = (*OpenAccountMsg)(nil)
var _ custody.Exclusive = (*OpenAccountMsg)(nil)

// Path fulfills custody.Msg interface to allow routing
func (OpenAccountMsg) Path() string {
	return pathOpenAccountMsg
}

// Validate makes sure that this is sensible
func (m *OpenAccountMsg) Validate() error {
	if err := m.Owner.Validate(); err != nil {
		return errors.Wrap(err, "owner")
	}
	return ValidateAsset(m.Asset)
}

func (m *OpenAccountMsg) LockKeys() []string {
	return []string{SequenceLockKey}
}

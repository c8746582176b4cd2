package group

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/nonce"
)

const pathCreateMsg = "group/create"

// CreateMsg registers a new group. The creator must sign the transaction.
type CreateMsg struct {
	Creator   custody.Address   `json:"creator"`
	Owners    []custody.Address `json:"owners"`
	Threshold uint32            `json:"threshold"`
}

var _ custody.Msg = (*CreateMsg)(nil)
var _ custody.Exclusive = (*CreateMsg)(nil)

// Path fulfills custody.Msg interface to allow routing
func (CreateMsg) Path() string {
	return pathCreateMsg
}

// Validate makes sure that this is sensible
func (m *CreateMsg) Validate() error {
	if err := m.Creator.Validate(); err != nil {
		return errors.Wrap(err, "creator")
	}
	return ValidateOwners(m.Owners, m.Threshold)
}

// LockKeys returns the creator nonce, the new group key is derived from it.
func (m *CreateMsg) LockKeys() []string {
	return []string{nonce.LockKey(m.Creator)}
}

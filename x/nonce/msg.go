package nonce

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

const pathInitUserMsg = "nonce/init"

// InitUserMsg creates the counter of the creator.
type InitUserMsg struct {
	Creator custody.Address `json:"creator"`
}

var _ custody.Msg = (*InitUserMsg)(nil)
var _ custody.Exclusive = (*InitUserMsg)(nil)

// Path fulfills custody.Msg interface to allow routing
func (InitUserMsg) Path() string {
	return pathInitUserMsg
}

// Validate makes sure that this is sensible
func (m *InitUserMsg) Validate() error {
	if err := m.Creator.Validate(); err != nil {
		return errors.Wrap(err, "creator")
	}
	return nil
}

// LockKeys returns the counter touched by this message.
func (m *InitUserMsg) LockKeys() []string {
	return []string{LockKey(m.Creator)}
}

package dispatch

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/request"
	"github.com/iov-one/custody/x/token"
)

const pathExecuteMsg = "request/execute"

// ExecuteMsg pays out an approved request. Native requests name the
// receiver, token requests name the vault and the destination account.
type ExecuteMsg struct {
	Executor custody.Address `json:"executor"`
	Request  []byte          `json:"request"`
	// Receiver of a native transfer, must match the request.
	Receiver custody.Address `json:"receiver,omitempty"`
	// Vault and Destination accounts of a token transfer.
	Vault       []byte `json:"vault,omitempty"`
	Destination []byte `json:"destination,omitempty"`
}

var _ custody.Msg = (*ExecuteMsg)(nil)
var _ custody.Exclusive = (*ExecuteMsg)(nil)

// Path fulfills custody.Msg interface to allow routing
func (ExecuteMsg) Path() string {
	return pathExecuteMsg
}

// Validate makes sure that this is sensible
func (m *ExecuteMsg) Validate() error {
	if err := m.Executor.Validate(); err != nil {
		return errors.Wrap(err, "executor")
	}
	if len(m.Request) <= 8 {
		return errors.Wrap(errors.ErrInput, "malformed request key")
	}
	if m.isToken() {
		if len(m.Vault) == 0 {
			return errors.Wrap(errors.ErrEmpty, "vault")
		}
		if len(m.Destination) == 0 {
			return errors.Wrap(errors.ErrEmpty, "destination")
		}
		return nil
	}
	if err := m.Receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	return nil
}

func (m *ExecuteMsg) isToken() bool {
	return len(m.Vault) != 0 || len(m.Destination) != 0
}

// groupKey is the request key without the trailing nonce.
func (m *ExecuteMsg) groupKey() []byte {
	return m.Request[:len(m.Request)-8]
}

// LockKeys returns the request and the balances the payout touches.
func (m *ExecuteMsg) LockKeys() []string {
	keys := []string{request.LockKey(m.Request)}
	if m.isToken() {
		return append(keys, token.LockKey(m.Vault), token.LockKey(m.Destination))
	}
	return append(keys,
		cash.LockKey(group.Condition(m.groupKey()).Address()),
		cash.LockKey(m.Receiver),
	)
}

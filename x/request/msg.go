package request

import (
	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/gconf"
	"github.com/iov-one/custody/x/group"
)

const (
	pathCreateMsg              = "request/create"
	pathApproveMsg             = "request/approve"
	pathCancelMsg              = "request/cancel"
	pathUpdateConfigurationMsg = "request/update_config"
)

// CreateMsg proposes a transfer out of the custody of a group. The creator
// must be one of the group owners and approves the request implicitly.
// A request of a threshold 1 group is therefore Approved when created.
type CreateMsg struct {
	Creator  custody.Address `json:"creator"`
	Group    []byte          `json:"group"`
	Receiver custody.Address `json:"receiver"`
	// Asset is either the native ticker or a token ticker.
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`
	// ExpireAt zero means the request never expires.
	ExpireAt custody.UnixTime `json:"expire_at"`
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
	if len(m.Group) == 0 {
		return errors.Wrap(errors.ErrEmpty, "group")
	}
	if err := m.Receiver.Validate(); err != nil {
		return errors.Wrap(err, "receiver")
	}
	if err := validateAsset(m.Asset); err != nil {
		return err
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "non-positive amount")
	}
	if m.ExpireAt < 0 {
		return errors.Wrap(ErrInvalidExpiry, "negative expiry")
	}
	return nil
}

// LockKeys returns the group, its transaction counter names the new
// request.
func (m *CreateMsg) LockKeys() []string {
	return []string{group.LockKey(m.Group)}
}

// ApproveMsg records the approval of one owner.
type ApproveMsg struct {
	Signer  custody.Address `json:"signer"`
	Request []byte          `json:"request"`
}

var _ custody.Msg = (*ApproveMsg)(nil)
var _ custody.Exclusive = (*ApproveMsg)(nil)

// Path fulfills custody.Msg interface to allow routing
func (ApproveMsg) Path() string {
	return pathApproveMsg
}

// Validate makes sure that this is sensible
func (m *ApproveMsg) Validate() error {
	if err := m.Signer.Validate(); err != nil {
		return errors.Wrap(err, "signer")
	}
	if len(m.Request) == 0 {
		return errors.Wrap(errors.ErrEmpty, "request")
	}
	return nil
}

func (m *ApproveMsg) LockKeys() []string {
	return []string{LockKey(m.Request)}
}

// CancelMsg withdraws a request. Only the creator can cancel.
type CancelMsg struct {
	Requester custody.Address `json:"requester"`
	Request   []byte          `json:"request"`
}

var _ custody.Msg = (*CancelMsg)(nil)
var _ custody.Exclusive = (*CancelMsg)(nil)

// Path fulfills custody.Msg interface to allow routing
func (CancelMsg) Path() string {
	return pathCancelMsg
}

// Validate makes sure that this is sensible
func (m *CancelMsg) Validate() error {
	if err := m.Requester.Validate(); err != nil {
		return errors.Wrap(err, "requester")
	}
	if len(m.Request) == 0 {
		return errors.Wrap(errors.ErrEmpty, "request")
	}
	return nil
}

func (m *CancelMsg) LockKeys() []string {
	return []string{LockKey(m.Request)}
}

// UpdateConfigurationMsg patches the configuration. Zero fields of the
// patch keep their current value.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

var _ custody.Msg = (*UpdateConfigurationMsg)(nil)

// Path fulfills custody.Msg interface to allow routing
func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

// Validate makes sure that this is sensible
func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Wrap(errors.ErrEmpty, "patch")
	}
	return m.Patch.Validate()
}

// ConfigPatch returns the patch as gconf expects it.
func (m *UpdateConfigurationMsg) ConfigPatch() gconf.OwnedConfig {
	return m.Patch
}

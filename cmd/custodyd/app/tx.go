package app

import (
	"encoding/json"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/deposit"
	"github.com/iov-one/custody/x/dispatch"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/nonce"
	"github.com/iov-one/custody/x/request"
	"github.com/iov-one/custody/x/sigs"
	"github.com/iov-one/custody/x/token"
	"golang.org/x/crypto/ed25519"
)

// messages maps every routed path to a constructor of its message.
var messages = map[string]func() custody.Msg{}

func init() {
	for _, fn := range []func() custody.Msg{
		func() custody.Msg { return &nonce.InitUserMsg{} },
		func() custody.Msg { return &group.CreateMsg{} },
		func() custody.Msg { return &token.OpenAccountMsg{} },
		func() custody.Msg { return &deposit.NativeMsg{} },
		func() custody.Msg { return &deposit.TokenMsg{} },
		func() custody.Msg { return &request.CreateMsg{} },
		func() custody.Msg { return &request.ApproveMsg{} },
		func() custody.Msg { return &request.CancelMsg{} },
		func() custody.Msg { return &request.UpdateConfigurationMsg{} },
		func() custody.Msg { return &dispatch.ExecuteMsg{} },
	} {
		messages[fn().Path()] = fn
	}
}

// Tx is the JSON envelope of a transaction. Signers are the ed25519 public
// keys whose signatures were verified before the transaction was handed
// over.
type Tx struct {
	Signers []custody.HexBytes `json:"signers"`
	Path    string             `json:"path"`
	Msg     json.RawMessage    `json:"msg"`

	msg custody.Msg
}

var _ sigs.SignedTx = (*Tx)(nil)

// NewTx wraps a message into an envelope signed by given public keys.
func NewTx(msg custody.Msg, signers ...ed25519.PublicKey) (*Tx, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	tx := &Tx{Path: msg.Path(), Msg: raw, msg: msg}
	for _, s := range signers {
		tx.Signers = append(tx.Signers, custody.HexBytes(s))
	}
	return tx, nil
}

// DecodeTx parses a JSON envelope. The message is decoded according to its
// path, unknown paths are rejected.
func DecodeTx(raw []byte) (*Tx, error) {
	var tx Tx
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot parse tx: %s", err)
	}
	newMsg, ok := messages[tx.Path]
	if !ok {
		return nil, errors.Wrapf(errors.ErrMsg, "unknown path %q", tx.Path)
	}
	msg := newMsg()
	if err := json.Unmarshal(tx.Msg, msg); err != nil {
		return nil, errors.Wrapf(errors.ErrMsg, "cannot parse %s: %s", tx.Path, err)
	}
	for i, s := range tx.Signers {
		if len(s) != ed25519.PublicKeySize {
			return nil, errors.Wrapf(errors.ErrInput, "signer %d: invalid public key length", i)
		}
	}
	tx.msg = msg
	return &tx, nil
}

// GetMsg returns the decoded message.
func (tx *Tx) GetMsg() (custody.Msg, error) {
	if tx.msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "tx not decoded")
	}
	return tx.msg, nil
}

// GetSigners returns the conditions of all signing keys.
func (tx *Tx) GetSigners() []custody.Condition {
	conds := make([]custody.Condition, 0, len(tx.Signers))
	for _, s := range tx.Signers {
		conds = append(conds, custody.PubKeyCondition(s))
	}
	return conds
}

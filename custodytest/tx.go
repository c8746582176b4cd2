package custodytest

import "github.com/iov-one/custody"

// Tx represents a custody transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg custody.Msg
	// Signers are the conditions that authorized this transaction.
	Signers []custody.Condition
	// Err if set is returned by any method call.
	Err error
}

var _ custody.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (custody.Msg, error) {
	return tx.Msg, tx.Err
}

func (tx *Tx) GetSigners() []custody.Condition {
	return tx.Signers
}

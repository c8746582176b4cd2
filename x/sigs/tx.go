package sigs

import "github.com/iov-one/custody"

// SignedTx represents a transaction that carries the identities of its
// signers. Signatures are verified before a transaction reaches the
// engine, so only the resulting conditions are passed along.
type SignedTx interface {
	custody.Tx

	GetSigners() []custody.Condition
}

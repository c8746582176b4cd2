package custodytest

import (
	"crypto/rand"

	"github.com/iov-one/custody"
	"golang.org/x/crypto/ed25519"
)

// Key is an ed25519 key pair. Only the public part is used to derive
// identities, custody never verifies signatures itself.
type Key struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// NewKey generates a random key.
func NewKey() Key {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return Key{Public: pub, Private: priv}
}

// Condition returns the signature condition of the public key.
func (k Key) Condition() custody.Condition {
	return custody.PubKeyCondition(k.Public)
}

// NewCondition returns the condition of a freshly generated key.
func NewCondition() custody.Condition {
	return NewKey().Condition()
}

// RandomAddr returns the address of a freshly generated key.
func RandomAddr() custody.Address {
	return NewCondition().Address()
}

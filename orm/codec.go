package orm

import (
	"github.com/iov-one/custody/errors"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	Validate() error
}

// Marshal serializes given model. Models are validated before
// serialization, so invalid state never reaches the store.
func Marshal(m Model) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	bz, err := cdc.MarshalBinaryBare(m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return bz, nil
}

// Unmarshal loads serialized data into given model. Destination must be
// a pointer.
func Unmarshal(bz []byte, dest Model) error {
	if err := cdc.UnmarshalBinaryBare(bz, dest); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	return nil
}

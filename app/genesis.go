package app

import (
	"encoding/json"
	"os"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Genesis is the initial state of the engine.
type Genesis struct {
	ChainID    string          `json:"chain_id"`
	AppOptions custody.Options `json:"app_options"`
}

// LoadGenesis reads a genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	var gen Genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot parse genesis: %s", err)
	}
	if gen.ChainID == "" {
		return nil, errors.Wrap(errors.ErrEmpty, "chain id")
	}
	return &gen, nil
}

var chainIDKey = []byte("_app:chain_id")

func loadChainID(db custody.ReadOnlyKVStore) (string, error) {
	raw, err := db.Get(chainIDKey)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func saveChainID(db custody.KVStore, chainID string) error {
	return db.Set(chainIDKey, []byte(chainID))
}

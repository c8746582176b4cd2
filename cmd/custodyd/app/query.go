package app

import (
	"encoding/hex"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/x/cash"
	"github.com/iov-one/custody/x/group"
	"github.com/iov-one/custody/x/request"
	"github.com/iov-one/custody/x/token"
)

// Query returns the state found under given path. Addresses are accepted
// in any format understood by custody.ParseAddress, record keys are hex
// encoded.
//
//	wallet/<address>     native balance
//	account/<id>         token account
//	group/<key>          custody group
//	groups/<address>     groups created by the address
//	request/<key>        transaction request
//	requests/<key>       all requests of a group
//	config/request       request extension configuration
func Query(db custody.ReadOnlyKVStore, path, arg string) (interface{}, error) {
	switch path {
	case "wallet":
		addr, err := custody.ParseAddress(arg)
		if err != nil {
			return nil, err
		}
		balance, err := cash.NewController(cash.NewBucket()).Balance(db, addr)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"address": addr, "balance": balance}, nil
	case "account":
		id, err := decodeKey(arg)
		if err != nil {
			return nil, err
		}
		return token.NewBucket().GetAccount(db, id)
	case "group":
		key, err := decodeKey(arg)
		if err != nil {
			return nil, err
		}
		g, err := group.NewBucket().GetGroup(db, key)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"group": g, "address": g.Address()}, nil
	case "groups":
		addr, err := custody.ParseAddress(arg)
		if err != nil {
			return nil, err
		}
		return group.NewBucket().ByCreator(db, addr)
	case "request":
		key, err := decodeKey(arg)
		if err != nil {
			return nil, err
		}
		return request.NewBucket().GetRequest(db, key)
	case "requests":
		key, err := decodeKey(arg)
		if err != nil {
			return nil, err
		}
		return request.NewBucket().ByGroup(db, key)
	case "config":
		if arg != "request" {
			return nil, errors.Wrapf(errors.ErrNotFound, "no configuration for %q", arg)
		}
		return request.LoadConfiguration(db)
	default:
		return nil, errors.Wrapf(errors.ErrNotFound, "unknown query path %q", path)
	}
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "key must be hex encoded")
	}
	if len(key) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "key")
	}
	return key, nil
}

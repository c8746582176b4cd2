package token

import "github.com/iov-one/custody/errors"

// token takes 1030-1039
var (
	ErrInvalidAsset       = errors.SetKind(errors.Register(1030, "invalid asset"), errors.KindValidation)
	ErrInvalidVault       = errors.SetKind(errors.Register(1031, "invalid vault"), errors.KindState)
	ErrAssetMismatch      = errors.SetKind(errors.Register(1032, "asset mismatch"), errors.KindState)
	ErrInvalidDestination = errors.SetKind(errors.Register(1033, "invalid destination"), errors.KindState)
)

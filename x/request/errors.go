package request

import "github.com/iov-one/custody/errors"

// request takes 1010-1019
var (
	ErrInvalidExpiry      = errors.SetKind(errors.Register(1010, "invalid expiry"), errors.KindValidation)
	ErrInvalidSigner      = errors.SetKind(errors.Register(1011, "invalid signer"), errors.KindAuthorization)
	ErrDuplicateSignature = errors.SetKind(errors.Register(1012, "duplicate signature"), errors.KindAuthorization)
	ErrNotApproved        = errors.SetKind(errors.Register(1013, "not approved"), errors.KindState)
	ErrCannotCancel       = errors.SetKind(errors.Register(1014, "cannot cancel"), errors.KindState)
)

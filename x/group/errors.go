package group

import "github.com/iov-one/custody/errors"

// group takes 1001-1009
var (
	ErrDuplicateOwner    = errors.SetKind(errors.Register(1001, "duplicate owner"), errors.KindValidation)
	ErrInvalidOwnerCount = errors.SetKind(errors.Register(1002, "invalid owner count"), errors.KindValidation)
	ErrInvalidThreshold  = errors.SetKind(errors.Register(1003, "invalid threshold"), errors.KindValidation)
)

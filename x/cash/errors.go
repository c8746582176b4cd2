package cash

import "github.com/iov-one/custody/errors"

// cash takes 1020-1029
var (
	ErrInsufficientBalance = errors.SetKind(errors.Register(1020, "insufficient balance"), errors.KindResource)
)

package dispatch

import "github.com/iov-one/custody/errors"

// dispatch takes 1040-1049
var (
	ErrInsufficientCustodyBalance = errors.SetKind(errors.Register(1040, "insufficient custody balance"), errors.KindResource)
)

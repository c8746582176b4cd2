package custodytest

import (
	"context"
	"time"

	"github.com/iov-one/custody"
)

// Now is the fixed block time used by Ctx.
var Now = time.Date(2021, 3, 14, 15, 9, 26, 0, time.UTC)

// Ctx returns a context with the block time set to Now.
func Ctx() custody.Context {
	return CtxAt(Now)
}

// CtxAt returns a context with the block time set to given value.
func CtxAt(t time.Time) custody.Context {
	return custody.WithBlockTime(context.Background(), t)
}

package dispatch

import (
	"context"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/x"
	"github.com/iov-one/custody/x/group"
)

type contextKey int // local to the dispatch module

const (
	contextKeyGroup contextKey = iota
)

// withGroup is a private method, as only this module
// can act on behalf of a group
func withGroup(ctx custody.Context, key []byte) custody.Context {
	return context.WithValue(ctx, contextKeyGroup, group.Condition(key))
}

// groupAuth authenticates the group set by withGroup.
type groupAuth struct{}

var _ x.Authenticator = groupAuth{}

// GetConditions returns the group condition previously set on this context
func (groupAuth) GetConditions(ctx custody.Context) []custody.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeyGroup).(custody.Condition)
	if val == nil {
		return nil
	}
	return []custody.Condition{val}
}

// HasAddress returns true iff this address is in GetConditions
func (a groupAuth) HasAddress(ctx custody.Context, addr custody.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

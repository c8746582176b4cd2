/*
Package custody defines the common interfaces that tie together the
multi-signature custody engine, as well as the simple value types shared by
all extensions (addresses, conditions, time).

A custody group is a set of owners plus an approval threshold. Funds are
deposited into the group's custody balance (native currency) or into token
vaults owned by the group. Any outbound transfer is first proposed as a
request, collects owner approvals and is executed exactly once when the
threshold is reached.

We pass context through context.Context between the engine, decorators and
handlers. Every value stored in the context comes with a pair of functions:

	WithXYZ(Context, T) Context
	GetXYZ(Context) (val T, ok bool)

WithXYZ panics if the value was previously set to avoid lower-level modules
overwriting the value (eg. block time, chain id).
*/
package custody

/*
Package request implements the transfer request state machine.

A request is created by one of the group owners. It snapshots the owner
set and the threshold of the group, so later changes of the group never
affect requests already in flight. The creator approves the request
implicitly. Every other owner approves with a separate message. Once the
number of approvals reaches the threshold the request is Approved and can
be executed by the dispatch extension.

Expiry is not scheduled. It is evaluated when an approval arrives, so a
request past its expiry time still reports Active until it is touched.

	Active   --expired on approve-->  Timeout
	Active   --threshold reached-->   Approved
	Active   --cancel-->              Canceled
	Timeout  --cancel-->              Canceled
	Approved --execute-->             Completed
	Approved --cancel-->              rejected
	Completed --cancel-->             Canceled, unless the configuration denies it
*/
package request

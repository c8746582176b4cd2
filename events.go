package custody

// EventKind names an audit record type.
type EventKind string

const (
	EventGroupCreated     EventKind = "group_created"
	EventDepositRecorded  EventKind = "deposit_recorded"
	EventRequestCreated   EventKind = "request_created"
	EventApprovalRecorded EventKind = "approval_recorded"
	EventRequestCanceled  EventKind = "request_canceled"
	EventRequestExecuted  EventKind = "request_executed"
	EventAccountOpened    EventKind = "account_opened"
)

// Event is an audit record describing a state transition. Not every
// attribute is relevant for every kind, unused ones are left empty.
type Event struct {
	Kind EventKind `json:"kind"`
	// Actor is the authenticated caller that triggered the transition.
	Actor Address `json:"actor,omitempty"`
	// Group is the key of the custody group involved.
	Group HexBytes `json:"group,omitempty"`
	// Request is the key of the transaction request involved.
	Request HexBytes `json:"request,omitempty"`
	Asset   string   `json:"asset,omitempty"`
	Amount  uint64   `json:"amount,omitempty"`
	// Class is either "native" or "token" for deposits and requests.
	Class    string   `json:"class,omitempty"`
	ExpireAt UnixTime `json:"expire_at,omitempty"`
	// Status is the state of the request after the transition.
	Status string   `json:"status,omitempty"`
	Time   UnixTime `json:"time"`
}

// EventSink receives audit records after the state change that produced them
// was written. A sink failure never rolls back that state change, the engine
// only logs it.
type EventSink interface {
	Publish(ctx Context, events []Event) error
}

// NewEvent returns an event of given kind timestamped with the block time
// of the context.
func NewEvent(ctx Context, kind EventKind, actor Address) Event {
	var ts UnixTime
	if now, ok := BlockTime(ctx); ok {
		ts = AsUnixTime(now)
	}
	return Event{Kind: kind, Actor: actor, Time: ts}
}

package request

import "github.com/iov-one/custody/errors"

// Status is the state of a request.
type Status int32

const (
	StatusActive    Status = 1
	StatusTimeout   Status = 2
	StatusApproved  Status = 3
	StatusCompleted Status = 4
	StatusCanceled  Status = 5
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusTimeout:
		return "timeout"
	case StatusApproved:
		return "approved"
	case StatusCompleted:
		return "completed"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Validate returns an error if the status is not one of the known values.
func (s Status) Validate() error {
	switch s {
	case StatusActive, StatusTimeout, StatusApproved, StatusCompleted, StatusCanceled:
		return nil
	default:
		return errors.Wrapf(errors.ErrState, "unknown status %d", s)
	}
}

// Final returns true if no further transition is expected from this
// status.
func (s Status) Final() bool {
	switch s {
	case StatusCompleted, StatusCanceled:
		return true
	case StatusActive, StatusTimeout, StatusApproved:
		return false
	default:
		panic("unknown request status")
	}
}

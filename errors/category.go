package errors

// Kind groups errors by how a caller is expected to react to them.
type Kind int

const (
	// KindInternal is anything not registered with a category. Usually a
	// storage failure or a programming error.
	KindInternal Kind = iota
	// KindValidation means the input was malformed. The caller must
	// resubmit corrected input.
	KindValidation
	// KindAuthorization means the caller is not allowed to perform the
	// operation or repeated an action that can happen only once.
	KindAuthorization
	// KindState means the operation is not valid for the current state of
	// the record.
	KindState
	// KindResource means there are not enough funds. The caller may retry
	// after funding.
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

var kinds = map[uint32]Kind{
	ErrUnauthorized.code: KindAuthorization,
	ErrNotFound.code:     KindState,
	ErrMsg.code:          KindValidation,
	ErrModel.code:        KindValidation,
	ErrDuplicate.code:    KindState,
	ErrEmpty.code:        KindValidation,
	ErrState.code:        KindState,
	ErrType.code:         KindValidation,
	ErrAmount.code:       KindValidation,
	ErrInput.code:        KindValidation,
	ErrExpired.code:      KindState,
	ErrOverflow.code:     KindValidation,
}

// SetKind declares the category of a registered root error. Like Register,
// it must be called only during program startup.
func SetKind(e *Error, k Kind) *Error {
	kinds[e.code] = k
	return e
}

// Category returns the kind of the root error wrapped by err.
func Category(err error) Kind {
	return kinds[Code(err)]
}

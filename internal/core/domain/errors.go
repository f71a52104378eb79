package domain

import "errors"

// Kind classifies an error for the transport layer.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a classified, user-facing error. Msg is safe to return to clients.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// Validation returns a KindValidation error with the given message.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

var (
	ErrEventNotFound      = &Error{Kind: KindNotFound, Msg: "event does not exist"}
	ErrUserNotFound       = &Error{Kind: KindNotFound, Msg: "user not found"}
	ErrUserNotRegistered  = &Error{Kind: KindForbidden, Msg: "user not registered, sign up before purchasing"}
	ErrAdminRequired      = &Error{Kind: KindForbidden, Msg: "only administrators can manage events"}
	ErrEventDisabled      = &Error{Kind: KindConflict, Msg: "event is disabled"}
	ErrTicketsUnavailable = &Error{Kind: KindConflict, Msg: "tickets unavailable"}
	ErrUserExists         = &Error{Kind: KindConflict, Msg: "user already exists"}
	ErrEventExists        = &Error{Kind: KindConflict, Msg: "event already exists"}
)

// ConflictCause names which commit-time condition rejected a purchase.
type ConflictCause string

const (
	CauseInventoryInsufficient ConflictCause = "inventory-insufficient"
	CauseEventDisabled         ConflictCause = "event-disabled"
	CauseEventMissing          ConflictCause = "event-missing"
	CauseDuplicateRegistration ConflictCause = "duplicate-registration"
	CauseUserMissing           ConflictCause = "user-missing"
	// CauseTransactionConflict is used when the store cannot tell which condition failed,
	// or when the transaction lost a write race.
	CauseTransactionConflict ConflictCause = "transaction-conflict"
)

// GenericConflictMessage is reported when causes are collapsed.
const GenericConflictMessage = "tickets unavailable or event disabled"

var causeMessages = map[ConflictCause]string{
	CauseInventoryInsufficient: "tickets unavailable",
	CauseEventDisabled:         "event is disabled",
	CauseEventMissing:          "event no longer exists",
	CauseDuplicateRegistration: "registration already exists",
	CauseUserMissing:           "user no longer exists",
	CauseTransactionConflict:   "purchase lost a concurrent update, try again",
}

// ConflictError is returned by a purchase store when the atomic commit is rejected.
type ConflictError struct {
	Cause ConflictCause
}

func (e *ConflictError) Error() string {
	return "purchase transaction rejected: " + string(e.Cause)
}

// Message returns the cause-specific user-facing message.
func (e *ConflictError) Message() string {
	if m, ok := causeMessages[e.Cause]; ok {
		return m
	}
	return GenericConflictMessage
}

// IsConflict reports whether err carries a *ConflictError.
func IsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	ok := errors.As(err, &ce)
	return ce, ok
}

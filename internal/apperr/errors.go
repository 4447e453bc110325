package apperr

import "errors"

// Error kinds. Callers match with errors.Is and map each kind to a transport status.
var (
	ErrValidation  = errors.New("validation failed")
	ErrConflict    = errors.New("conflict")
	ErrAuth        = errors.New("unauthorized")
	ErrNotFound    = errors.New("not found")
	ErrStorage     = errors.New("storage failure")
	ErrEmptyResult = errors.New("empty result")
)

// Error carries a message that is safe to show to the caller. The cause, when
// present, is only meant for server-side logs.
type Error struct {
	kind  error
	msg   string
	op    string
	cause error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Op names the operation that failed, if one was recorded.
func (e *Error) Op() string {
	return e.op
}

// Cause returns the underlying error for logging.
func (e *Error) Cause() error {
	return e.cause
}

func Validation(msg string) error {
	return &Error{kind: ErrValidation, msg: msg}
}

func Conflict(msg string) error {
	return &Error{kind: ErrConflict, msg: msg}
}

func Auth(msg string) error {
	return &Error{kind: ErrAuth, msg: msg}
}

func NotFound(msg string) error {
	return &Error{kind: ErrNotFound, msg: msg}
}

func EmptyResult(msg string) error {
	return &Error{kind: ErrEmptyResult, msg: msg}
}

// Storage wraps a backing-store failure. The message is always generic.
func Storage(op string, cause error) error {
	return &Error{kind: ErrStorage, msg: "storage error", op: op, cause: cause}
}

// Message returns the caller-safe message of err, falling back to def.
func Message(err error, def string) string {
	var e *Error
	if errors.As(err, &e) && e.msg != "" {
		return e.msg
	}
	return def
}

package services

import "fmt"

// ErrorCode identifies the business outcome of a rejected operation.
// Nothing here is fatal: every code is a normal, expected business result.
type ErrorCode string

const (
	CodeValidation         ErrorCode = "VALIDATION"
	CodeInvalidTransition  ErrorCode = "INVALID_TRANSITION"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeConflict           ErrorCode = "CONFLICT"
	CodeCapacityExceeded   ErrorCode = "CAPACITY_EXCEEDED"
	CodePreconditionFailed ErrorCode = "PRECONDITION_FAILED"
	CodeNotFound           ErrorCode = "NOT_FOUND"
)

// Error is a typed business error returned by the pipeline core.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the business code, or "" for technical errors.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

package core

// Stable protocol error codes, each with an HTTP-like status used for
// logging and metrics.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeBadRequest   = "BAD_REQUEST"
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "ERROR"
)

// Error is the domain error surfaced to clients through acknowledgements.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Unauthorized builds an UNAUTHORIZED error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Status: 401, Message: msg}
}

// BadRequest builds a BAD_REQUEST error.
func BadRequest(msg string) *Error {
	return &Error{Code: CodeBadRequest, Status: 400, Message: msg}
}

// NotFound builds a NOT_FOUND error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Status: 404, Message: msg}
}

// Forbidden builds a FORBIDDEN error.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Status: 403, Message: msg}
}

// Internal builds a generic ERROR for unexpected faults.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Status: 500, Message: msg}
}

// AsError returns err as a protocol *Error, converting unrecognized
// failures into a generic internal error so nothing escapes the handler
// boundary unshaped.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*Error); ok {
		return domainErr
	}
	return Internal("internal error")
}

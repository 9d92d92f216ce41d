package errors

import "net/http"

// Error codes shared by the transports.
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrConflict        = "CONFLICT"
	// ErrUpstream marks a failure reported by Xero or QuickBooks.
	ErrUpstream = "UPSTREAM"
)

var httpStatus = map[string]int{
	ErrInternal:        http.StatusInternalServerError,
	ErrNotFound:        http.StatusNotFound,
	ErrInvalidArgument: http.StatusBadRequest,
	ErrUnauthenticated: http.StatusUnauthorized,
	ErrConflict:        http.StatusConflict,
	ErrUpstream:        http.StatusBadGateway,
}

// ToHTTPStatus returns the response status for code. Unknown codes are 500.
func ToHTTPStatus(code string) int {
	if status, ok := httpStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

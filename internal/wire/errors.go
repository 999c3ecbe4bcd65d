package wire

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrResponseFormat marks a success response whose body is not valid JSON.
var ErrResponseFormat = errors.New("response format error")

// StatusError is returned for every non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return e.Message
}

func newStatusError(code int, serverMessage string) *StatusError {
	if serverMessage == "" {
		serverMessage = fmt.Sprintf("request failed: %d %s", code, http.StatusText(code))
	}
	return &StatusError{StatusCode: code, Message: serverMessage}
}

// IsStatus reports whether err carries a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

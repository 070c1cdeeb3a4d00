package api

import "errors"

// ErrInvalidRequest matches every rejection of caller input.
var ErrInvalidRequest = errors.New("invalid_request")

// invalidRequestError names the request field that was rejected.
type invalidRequestError struct {
	field string
	msg   string
}

func (e invalidRequestError) Error() string {
	return e.field + ": " + e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(field, msg string) error {
	return invalidRequestError{field: field, msg: msg}
}

// requestField reports which field err rejected, if any.
func requestField(err error) string {
	var reqErr invalidRequestError
	if errors.As(err, &reqErr) {
		return reqErr.field
	}
	return ""
}

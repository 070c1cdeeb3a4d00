package api

import (
	"net/http"
	"unicode"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
)

// maxSourceLen bounds the free-form label callers may attach to a report.
const maxSourceLen = 256

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
}

func writeBadRequest(c *echo.Context, err error) error {
	return writeJSON(c, http.StatusBadRequest, map[string]any{
		"error": ErrorBody{Message: err.Error(), Type: "invalid_request_error", Param: requestField(err)},
	})
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return writeJSON(c, status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType},
	})
}

// writeJSON encodes with go-json rather than the framework's encoder so
// reports serialise identically over HTTP and on the CLI.
func writeJSON(c *echo.Context, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res.WriteHeader(status)
	_, err = res.Write(append(body, '\n'))
	return err
}

func checkSource(source string) error {
	if len(source) > maxSourceLen {
		return newInvalidRequest("source", "longer than 256 bytes")
	}
	for _, r := range source {
		if unicode.IsControl(r) {
			return newInvalidRequest("source", "contains control characters")
		}
	}
	return nil
}

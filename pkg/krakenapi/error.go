package krakenapi

import (
	"fmt"
	"strings"

	"github.com/c9s/requestgen"
)

// APIError is returned when the exchange answers with HTTP 200 but a
// non-empty error list in the response envelope,
// e.g. ["EOrder:Insufficient funds"].
type APIError struct {
	Messages []string `json:"error"`
}

func (e *APIError) Error() string {
	return "kraken api error: " + strings.Join(e.Messages, ", ")
}

// ErrorResponse is returned when the exchange answers with a non-200 status
// code. The raw response is kept so that callers can inspect the body.
type ErrorResponse struct {
	Response *requestgen.Response
}

func (e *ErrorResponse) Error() string {
	req := e.Response.Response.Request
	return fmt.Sprintf("%s %s: unexpected status code %d: %s",
		req.Method,
		req.URL.String(),
		e.Response.StatusCode,
		string(e.Response.Body),
	)
}

// MissingFieldsError is returned by order submission when required fields are
// absent. No request is sent in that case.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

package httptesting

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

type RoundTripFunc func(req *http.Request) (*http.Response, error)

// MockTransport replays canned responses for registered method and path
// pairs. Requests to unregistered paths fail the round trip.
type MockTransport struct {
	getHandlers  map[string]RoundTripFunc
	postHandlers map[string]RoundTripFunc
}

func (transport *MockTransport) GET(path string, f RoundTripFunc) {
	if transport.getHandlers == nil {
		transport.getHandlers = make(map[string]RoundTripFunc)
	}

	transport.getHandlers[path] = f
}

func (transport *MockTransport) POST(path string, f RoundTripFunc) {
	if transport.postHandlers == nil {
		transport.postHandlers = make(map[string]RoundTripFunc)
	}

	transport.postHandlers[path] = f
}

func (transport *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var handlers map[string]RoundTripFunc

	switch strings.ToUpper(req.Method) {
	case "GET":
		handlers = transport.getHandlers
	case "POST":
		handlers = transport.postHandlers
	default:
		return nil, errors.Errorf("unsupported mock transport request method: %s", req.Method)
	}

	f, ok := handlers[req.URL.Path]
	if !ok {
		return nil, errors.Errorf("roundtrip mock to %s %s is not defined", req.Method, req.URL.Path)
	}

	return f(req)
}

func BuildResponse(code int, payload []byte) *http.Response {
	return &http.Response{
		StatusCode:    code,
		Body:          io.NopCloser(bytes.NewBuffer(payload)),
		ContentLength: int64(len(payload)),
		Header:        http.Header{},
	}
}

func BuildResponseString(code int, payload string) *http.Response {
	return BuildResponse(code, []byte(payload))
}

func BuildResponseJson(code int, payload interface{}) *http.Response {
	data, err := json.Marshal(payload)
	if err != nil {
		return BuildResponse(http.StatusInternalServerError, []byte(err.Error()))
	}

	resp := BuildResponse(code, data)
	SetHeader(resp, "Content-Type", "application/json")
	return resp
}

func SetHeader(resp *http.Response, key, value string) {
	resp.Header.Set(key, value)
}

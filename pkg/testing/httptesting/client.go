package httptesting

import (
	"encoding/json"
	"net/http"
	"os"
)

// EchoSave is a transport that replies with fixed content and, when asked,
// saves the outgoing *http.Request into a caller provided variable so that
// tests can verify headers and bodies.
type EchoSave struct {
	// Callers provide the address of a local variable, which is stored here.
	saveTo  **http.Request
	content string
	err     error
}

func (st *EchoSave) RoundTrip(req *http.Request) (*http.Response, error) {
	if st.saveTo != nil {
		*st.saveTo = req
	}

	if st.err != nil {
		return nil, st.err
	}

	resp := BuildResponseString(http.StatusOK, st.content)
	SetHeader(resp, "Content-Type", "application/json")
	resp.Request = req
	return resp, nil
}

func HttpClientFromFile(filename string) *http.Client {
	rawBytes, err := os.ReadFile(filename)
	transport := EchoSave{err: err, content: string(rawBytes)}
	return &http.Client{Transport: &transport}
}

func HttpClientWithContent(content string) *http.Client {
	transport := EchoSave{content: content}
	return &http.Client{Transport: &transport}
}

func HttpClientWithError(err error) *http.Client {
	transport := EchoSave{err: err}
	return &http.Client{Transport: &transport}
}

func HttpClientWithJson(jsonData interface{}) *http.Client {
	jsonBytes, err := json.Marshal(jsonData)
	transport := EchoSave{err: err, content: string(jsonBytes)}
	return &http.Client{Transport: &transport}
}

// "Saver" refers to saving the *http.Request in a local variable provided by the caller.
func HttpClientSaver(saved **http.Request, content string) *http.Client {
	transport := EchoSave{saveTo: saved, content: content}
	return &http.Client{Transport: &transport}
}

func HttpClientSaverFromFile(saved **http.Request, filename string) *http.Client {
	rawBytes, err := os.ReadFile(filename)
	transport := EchoSave{saveTo: saved, err: err, content: string(rawBytes)}
	return &http.Client{Transport: &transport}
}

package krakenapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/c9s/requestgen"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/tradeforge/krakenapi/pkg/nonce"
)

const (
	// RestBaseURL is the production REST API endpoint.
	RestBaseURL = "https://api.kraken.com"

	// DefaultAPIVersion is the versioned path segment used for all endpoints.
	DefaultAPIVersion = "0"

	UserAgent = "krakenapi/1.0"

	defaultHTTPTimeout = time.Second * 15
)

var logger = log.WithField("exchange", "kraken")

type RestClient struct {
	requestgen.BaseAPIClient

	// Authentication
	APIKey    string
	APISecret string

	// Version is the API version path segment, default "0"
	Version string

	nonce *nonce.MicrosecondNonce

	MarketDataService *MarketDataService
	AccountService    *AccountService
	TradeService      *TradeService
}

func NewClient() *RestClient {
	return NewClientWithBaseURL(RestBaseURL)
}

func NewClientWithBaseURL(baseURL string) *RestClient {
	u, err := url.Parse(baseURL)
	if err != nil {
		panic(err)
	}

	client := &RestClient{
		BaseAPIClient: requestgen.BaseAPIClient{
			BaseURL: u,
			HttpClient: &http.Client{
				Timeout: defaultHTTPTimeout,
			},
		},
		Version: DefaultAPIVersion,
		nonce:   nonce.NewMicrosecondNonce(time.Now()),
	}

	client.MarketDataService = &MarketDataService{client: client}
	client.AccountService = &AccountService{client: client}
	client.TradeService = &TradeService{client: client}
	return client
}

// Auth sets the api key and the base64-encoded api secret for requests that
// require authentication. Credentials are not validated here; an invalid
// secret surfaces when the first private request is signed.
func (c *RestClient) Auth(key, secret string) *RestClient {
	c.APIKey = key
	// pragma: allowlist nextline secret
	c.APISecret = secret
	return c
}

// Nonce returns the next strictly increasing nonce for this client instance.
func (c *RestClient) Nonce() uint64 {
	return c.nonce.GetUint64()
}

func (c *RestClient) publicPath(endpoint string) string {
	return "/" + c.Version + "/public/" + endpoint
}

func (c *RestClient) privatePath(endpoint string) string {
	return "/" + c.Version + "/private/" + endpoint
}

// NewPublicRequest creates an unauthenticated GET request to a public
// endpoint, with params encoded as the query string.
func (c *RestClient) NewPublicRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, c.publicPath(endpoint), params, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", UserAgent)
	return req, nil
}

// NewAuthenticatedRequest creates a signed POST request to a private endpoint.
//
// The nonce is injected into params, the params are form-encoded into the
// request body, and the API-Sign header is computed as
//
//	base64(HMAC-SHA512(path + SHA256(nonce + body), base64decode(secret)))
//
// which is the signature scheme the exchange documents for its REST API.
func (c *RestClient) NewAuthenticatedRequest(ctx context.Context, endpoint string, params url.Values) (*http.Request, error) {
	if len(c.APIKey) == 0 {
		return nil, errors.New("empty api key")
	}

	if len(c.APISecret) == 0 {
		return nil, errors.New("empty api secret")
	}

	secret, err := base64.StdEncoding.DecodeString(c.APISecret)
	if err != nil {
		return nil, errors.Wrap(err, "api secret is not valid base64")
	}

	if params == nil {
		params = url.Values{}
	}

	nonceStr := c.nonce.GetString()
	params.Set("nonce", nonceStr)

	path := c.privatePath(endpoint)
	body := params.Encode()

	rel, err := url.Parse(path)
	if err != nil {
		return nil, err
	}

	reqURL := c.BaseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("API-Key", c.APIKey)
	req.Header.Set("API-Sign", Sign(secret, path, nonceStr, body))
	return req, nil
}

// Sign computes the API-Sign header value for a private request.
// path is the versioned private endpoint path, e.g. "/0/private/AddOrder",
// and body is the form-encoded request body including the nonce.
func Sign(secret []byte, path, nonce, body string) string {
	sha := sha256.New()
	sha.Write([]byte(nonce + body))

	mac := hmac.New(sha512.New, secret)
	mac.Write([]byte(path))
	mac.Write(sha.Sum(nil))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// sendRequest sends the request and returns the wrapped response.
// A non-200 status is returned as an *ErrorResponse error together with the
// response, so that the caller can still inspect the raw body.
func (c *RestClient) sendRequest(req *http.Request) (*requestgen.Response, error) {
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request %s %s failed", req.Method, req.URL.Path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if err := resp.Body.Close(); err != nil {
		return nil, err
	}

	response := &requestgen.Response{Response: resp, Body: body}

	logger.Debugf("%s %s -> %d (%d bytes)", req.Method, req.URL.Path, resp.StatusCode, len(body))

	if resp.StatusCode != http.StatusOK {
		return response, &ErrorResponse{Response: response}
	}

	return response, nil
}

// APIResponse is the envelope every endpoint returns: a list of error
// messages, empty on success, and an endpoint-specific result payload.
type APIResponse struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

func (r *APIResponse) Validate() error {
	if len(r.Error) > 0 {
		return &APIError{Messages: r.Error}
	}
	return nil
}

// query issues the prepared request, validates the response envelope and
// decodes the result payload into result when it is non-nil.
func (c *RestClient) query(req *http.Request, result interface{}) error {
	response, err := c.sendRequest(req)
	if err != nil {
		return err
	}

	var apiResponse APIResponse
	if err := response.DecodeJSON(&apiResponse); err != nil {
		return errors.Wrapf(err, "failed to decode response: %s", response.String())
	}

	if err := apiResponse.Validate(); err != nil {
		return err
	}

	if result == nil {
		return nil
	}

	return json.Unmarshal(apiResponse.Result, result)
}

func (c *RestClient) queryPublic(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	req, err := c.NewPublicRequest(ctx, endpoint, params)
	if err != nil {
		return err
	}

	return c.query(req, result)
}

func (c *RestClient) queryPrivate(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	req, err := c.NewAuthenticatedRequest(ctx, endpoint, params)
	if err != nil {
		return err
	}

	return c.query(req, result)
}

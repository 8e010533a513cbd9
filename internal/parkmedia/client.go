package parkmedia

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultServerAddress is the vendor's evaluation server
	DefaultServerAddress = "eval.parkmedia.tv"

	// DefaultServerPort is the HTTPS port of the management service
	DefaultServerPort = 8123

	// DefaultBasePath prefixes every endpoint path
	DefaultBasePath = "/kmm/svc"
)

// Client exposes one method per remote operation. Each call performs one
// blocking round trip, records the response and the status code that would
// mean success, and returns the body either classified or raw.
//
// HTTP failures are not errors: check Success or LastResponse after a call.
// A Client is meant for one goroutine and one session.
type Client struct {
	transport *Transport
	session   *Session

	// BasePath is prepended to every path (trailing '/' removed)
	BasePath string

	// ParseResponse selects classified results (true) or raw bodies (false)
	ParseResponse bool

	successCode int
	response    *Envelope
	result      Result
}

// NewClient creates a client for host:port over HTTPS
func NewClient(host string, port int) *Client {
	return newClient(NewTransport(host, port, true, nil))
}

// NewClientWithURL creates a client with a full base URL
// (e.g. "https://eval.parkmedia.tv:8123")
func NewClientWithURL(baseURL string) *Client {
	return newClient(NewTransportWithURL(baseURL, nil))
}

func newClient(t *Transport) *Client {
	return &Client{
		transport:     t,
		session:       t.Session,
		BasePath:      DefaultBasePath,
		ParseResponse: true,
	}
}

// Transport returns the underlying transport for tuning (timeouts, body logging)
func (c *Client) Transport() *Transport {
	return c.transport
}

// Session returns the session shared with the transport
func (c *Client) Session() *Session {
	return c.session
}

// SetBasePath sets the path prefix. A trailing '/' is dropped; "" is allowed.
func (c *Client) SetBasePath(base string) {
	c.BasePath = strings.TrimSuffix(base, "/")
}

// SetTimeout sets the HTTP request timeout (0 disables it)
func (c *Client) SetTimeout(timeout time.Duration) {
	c.transport.SetTimeout(timeout)
}

// SetLogger sends the request trace to l
func (c *Client) SetLogger(l *zap.Logger) {
	c.transport.Logger = l
}

// Cookie returns the session cookie
func (c *Client) Cookie() string {
	return c.session.Cookie()
}

// SetCookie stores a cookie for subsequent requests; "" clears it
func (c *Client) SetCookie(cookie string) {
	if cookie == "" {
		c.transport.logger().Debug("Clearing cookie")
		c.session.Clear()
		return
	}
	c.transport.logger().Debug("Setting cookie", zap.String("cookie", RedactCookie(cookie)))
	c.session.SetCookie(cookie)
}

// LastResponse returns the envelope of the most recent call, nil if none
// or if it failed at the transport level.
func (c *Client) LastResponse() *Envelope {
	return c.response
}

// LastResult returns the classified body of the most recent call
func (c *Client) LastResult() Result {
	return c.result
}

// SuccessCode returns the status expected by the most recent call
// (204 for DELETE, 200 for GET and PUT, 201 for POST), 0 before any call.
func (c *Client) SuccessCode() int {
	return c.successCode
}

// Success compares the last response status with the expected success code.
// known is false when no call has been made or the call never got a response.
func (c *Client) Success() (ok bool, known bool) {
	if c.successCode == 0 || c.response == nil {
		return false, false
	}
	return c.response.StatusCode == c.successCode, true
}

func (c *Client) processPath(path string) string {
	return c.BasePath + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) clearResponse() {
	c.successCode = 0
	c.response = nil
	c.result = nil
}

func (c *Client) call(ctx context.Context, method, path string, body any, header http.Header, successCode int) (Result, error) {
	c.clearResponse()
	c.successCode = successCode

	env, err := c.transport.Do(ctx, method, c.processPath(path), body, header)
	if err != nil {
		return nil, err
	}
	c.response = env

	if !c.ParseResponse {
		c.result = RawResult{Body: env.Body}
		return c.result, nil
	}

	res, err := Classify(env)
	if err != nil {
		return nil, err
	}
	c.result = res
	return res, nil
}

func withContentType(header http.Header, contentType string, force bool) http.Header {
	header = header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if force || header.Get("Content-Type") == "" {
		header.Set("Content-Type", contentType)
	}
	return header
}

// Get executes a GET request below the base path
func (c *Client) Get(ctx context.Context, path string, header http.Header) (Result, error) {
	return c.call(ctx, http.MethodGet, path, nil, header, http.StatusOK)
}

// Delete executes a DELETE request below the base path
func (c *Client) Delete(ctx context.Context, path string, header http.Header) (Result, error) {
	return c.call(ctx, http.MethodDelete, path, nil, header, http.StatusNoContent)
}

// Post executes a POST request; body is encoded per the Content-Type header
func (c *Client) Post(ctx context.Context, path string, body any, header http.Header) (Result, error) {
	return c.call(ctx, http.MethodPost, path, body, header, http.StatusCreated)
}

// PostForm executes a form encoded POST request
func (c *Client) PostForm(ctx context.Context, path string, data *Payload, header http.Header) (Result, error) {
	return c.Post(ctx, path, data, withContentType(header, ContentTypeForm, true))
}

// PostJSON executes a JSON POST request
func (c *Client) PostJSON(ctx context.Context, path string, data any, header http.Header) (Result, error) {
	return c.Post(ctx, path, data, withContentType(header, ContentTypeJSON, false))
}

// Put executes a PUT request; body is encoded per the Content-Type header
func (c *Client) Put(ctx context.Context, path string, body any, header http.Header) (Result, error) {
	return c.call(ctx, http.MethodPut, path, body, header, http.StatusOK)
}

// PutJSON executes a JSON PUT request
func (c *Client) PutJSON(ctx context.Context, path string, data any, header http.Header) (Result, error) {
	return c.Put(ctx, path, data, withContentType(header, ContentTypeJSON, true))
}

// PutXML executes a PUT request with the payload written as kdata XML
func (c *Client) PutXML(ctx context.Context, path string, data *Payload, header http.Header, opts ...XMLOption) (Result, error) {
	return c.Put(ctx, path, EncodeXML(data, opts...), withContentType(header, ContentTypeXML, true))
}

package parkmedia

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/parkmedia/kmmctl/internal/logging"
)

// DefaultUserAgent must keep the Name/Version shape: the server rejects
// requests whose agent string does not contain a '/'.
const DefaultUserAgent = "kmmctl/1.0"

// Session holds the cookie captured at login. One Session is shared by the
// Client that writes it and the Transport that sends it. It is not safe for
// concurrent use.
type Session struct {
	cookie string
}

// NewSession returns a session seeded with cookie (may be empty)
func NewSession(cookie string) *Session {
	return &Session{cookie: cookie}
}

// Cookie returns the stored cookie, or "" when logged out
func (s *Session) Cookie() string {
	if s == nil {
		return ""
	}
	return s.cookie
}

// HasCookie reports whether a cookie is stored
func (s *Session) HasCookie() bool {
	return s.Cookie() != ""
}

// SetCookie replaces the stored cookie
func (s *Session) SetCookie(cookie string) {
	s.cookie = cookie
}

// Clear forgets the stored cookie
func (s *Session) Clear() {
	s.cookie = ""
}

// Transport sends requests to one server and returns raw Envelopes.
// It never interprets status codes and never retries.
type Transport struct {
	// BaseURL is scheme://host:port, without a path
	BaseURL string

	HTTPClient *http.Client
	UserAgent  string
	Session    *Session

	// Body logging switches for the debug trace
	LogRequestBody     bool
	LogResponseBody    bool
	LogPrettyPrintBody bool

	// Logger receives the trace; nil means the process-wide logger
	Logger *zap.Logger
}

// NewTransport creates a transport for host:port. TLS is used when useTLS is set.
func NewTransport(host string, port int, useTLS bool, session *Session) *Transport {
	scheme := "http"
	if useTLS {
		scheme = "https"
	}
	return NewTransportWithURL(fmt.Sprintf("%s://%s:%d", scheme, host, port), session)
}

// NewTransportWithURL creates a transport for a full base URL
// (e.g. "https://eval.parkmedia.tv:8123").
func NewTransportWithURL(baseURL string, session *Session) *Transport {
	if session == nil {
		session = NewSession("")
	}
	return &Transport{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		UserAgent:  DefaultUserAgent,
		Session:    session,
	}
}

// SetTimeout sets the HTTP request timeout (0 disables it)
func (t *Transport) SetTimeout(timeout time.Duration) {
	t.HTTPClient.Timeout = timeout
}

// SetInsecureSkipVerify disables server certificate verification
func (t *Transport) SetInsecureSkipVerify(skip bool) {
	tr, ok := t.HTTPClient.Transport.(*http.Transport)
	if !ok {
		return
	}
	if tr.TLSClientConfig == nil {
		tr.TLSClientConfig = &tls.Config{}
	}
	tr.TLSClientConfig.InsecureSkipVerify = skip
}

// String returns the connection information in URL form
func (t *Transport) String() string {
	return t.BaseURL
}

func (t *Transport) logger() *zap.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return logging.GetLogger()
}

// Get executes a GET request
func (t *Transport) Get(ctx context.Context, path string, header http.Header) (*Envelope, error) {
	return t.Do(ctx, http.MethodGet, path, nil, header)
}

// Delete executes a DELETE request
func (t *Transport) Delete(ctx context.Context, path string, header http.Header) (*Envelope, error) {
	return t.Do(ctx, http.MethodDelete, path, nil, header)
}

// Post executes a POST request; body is encoded per the Content-Type header
func (t *Transport) Post(ctx context.Context, path string, body any, header http.Header) (*Envelope, error) {
	return t.Do(ctx, http.MethodPost, path, body, header)
}

// Put executes a PUT request; body is encoded per the Content-Type header
func (t *Transport) Put(ctx context.Context, path string, body any, header http.Header) (*Envelope, error) {
	return t.Do(ctx, http.MethodPut, path, body, header)
}

// Do builds, traces and executes one request.
//
// For POST and PUT a missing Content-Type defaults to form encoding. Form
// bodies accept a *Payload or url.Values; JSON bodies serialize structured
// values and pass strings through; any other content type sends the body
// verbatim. GET and DELETE never carry a body.
func (t *Transport) Do(ctx context.Context, method, path string, body any, header http.Header) (*Envelope, error) {
	header = header.Clone()
	if header == nil {
		header = http.Header{}
	}

	var payload []byte
	bodyAllowed := method == http.MethodPost || method == http.MethodPut
	if bodyAllowed {
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", ContentTypeForm)
		}
		var err error
		payload, err = encodeRequestBody(mediaType(header.Get("Content-Type")), body)
		if err != nil {
			return nil, err
		}
	}

	fullURL := t.BaseURL + t.normalizePath(path)

	var reader io.Reader
	if bodyAllowed {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, NewTransportError(fmt.Sprintf("failed to create %s request", method), err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", t.UserAgent)
	req.Header.Set("Accept", "application/xml")
	if t.Session.HasCookie() {
		req.Header.Set("Cookie", t.Session.Cookie())
	}

	traceID := uuid.NewString()
	log := t.logger()
	if ce := log.Check(zap.DebugLevel, "REQUEST"); ce != nil {
		fields := []zap.Field{
			zap.String("trace_id", traceID),
			zap.String("method", method),
			zap.String("url", RedactPasswords(fullURL)),
			zap.Any("headers", flattenHeaders(req.Header)),
		}
		if t.LogRequestBody && bodyAllowed {
			fields = append(fields, zap.String("body", RedactPasswords(t.formatBody(mediaType(req.Header.Get("Content-Type")), payload))))
		}
		ce.Write(fields...)
	}

	start := time.Now()
	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		log.Debug("REQUEST FAILED", zap.String("trace_id", traceID), zap.Error(err))
		return nil, NewTransportError(fmt.Sprintf("%s %s failed", method, t.normalizePath(path)), err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError("failed to read response body", err)
	}

	env := &Envelope{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		ContentType: mediaType(resp.Header.Get("Content-Type")),
		Header:      resp.Header,
		Body:        respBody,
	}

	if ce := log.Check(zap.DebugLevel, "RESPONSE"); ce != nil {
		fields := []zap.Field{
			zap.String("trace_id", traceID),
			zap.String("status", resp.Status),
			zap.Duration("elapsed", time.Since(start)),
			zap.Any("headers", flattenHeaders(resp.Header)),
		}
		if t.LogResponseBody {
			fields = append(fields, zap.String("body", RedactPasswords(t.formatBody(env.ContentType, respBody))))
		}
		ce.Write(fields...)
	}

	return env, nil
}

// normalizePath strips a leading copy of the base URL and makes sure the
// path is absolute.
func (t *Transport) normalizePath(path string) string {
	path = strings.TrimPrefix(path, t.BaseURL)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func (t *Transport) formatBody(contentType string, body []byte) string {
	if contentType == ContentTypeJSON {
		if t.LogPrettyPrintBody {
			var buf bytes.Buffer
			if err := json.Indent(&buf, body, "", "  "); err == nil {
				return "\n" + buf.String()
			}
		}
		return string(body)
	}
	return strconv.Quote(string(body))
}

func encodeRequestBody(contentType string, body any) ([]byte, error) {
	switch contentType {
	case ContentTypeForm:
		switch b := body.(type) {
		case nil:
			return []byte{}, nil
		case *Payload:
			return EncodeForm(b)
		case url.Values:
			return []byte(b.Encode()), nil
		case map[string]any:
			return EncodeForm(PayloadFromMap(b))
		}
	case ContentTypeJSON:
		switch b := body.(type) {
		case nil:
			return []byte{}, nil
		case *Payload:
			return EncodeJSON(b)
		case []any, map[string]any:
			data, err := json.Marshal(b)
			if err != nil {
				return nil, &Error{Type: ErrTypeEncoding, Message: "failed to encode JSON body", Err: err}
			}
			return data, nil
		}
	}

	switch b := body.(type) {
	case nil:
		return []byte{}, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return nil, NewEncodingError(fmt.Sprintf("cannot send %T as %s", body, contentType))
	}
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		switch k {
		case "Cookie":
			vs = mapStrings(vs, RedactCookie)
		case "Set-Cookie":
			vs = mapStrings(vs, RedactSetCookie)
		}
		out[k] = RedactPasswords(strings.Join(vs, ", "))
	}
	return out
}

func mapStrings(in []string, fn func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fn(s)
	}
	return out
}

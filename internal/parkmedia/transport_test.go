package parkmedia

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type capturedRequest struct {
	method string
	path   string
	header http.Header
	body   string
}

// newRecordingServer answers every request with the given content type and
// body and records what it received.
func newRecordingServer(t *testing.T, status int, contentType, body string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var reqs []capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		reqs = append(reqs, capturedRequest{method: r.Method, path: r.URL.Path, header: r.Header.Clone(), body: string(b)})
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &reqs
}

func TestNewTransport(t *testing.T) {
	tests := []struct {
		useTLS bool
		want   string
	}{
		{true, "https://eval.parkmedia.tv:8123"},
		{false, "http://eval.parkmedia.tv:8123"},
	}

	for _, tt := range tests {
		tr := NewTransport("eval.parkmedia.tv", 8123, tt.useTLS, nil)
		if tr.BaseURL != tt.want {
			t.Errorf("BaseURL = %s, want %s", tr.BaseURL, tt.want)
		}
		if tr.String() != tt.want {
			t.Errorf("String() = %s, want %s", tr.String(), tt.want)
		}
		if tr.Session == nil {
			t.Error("Session should not be nil")
		}
		if tr.UserAgent != DefaultUserAgent {
			t.Errorf("UserAgent = %s, want %s", tr.UserAgent, DefaultUserAgent)
		}
	}
}

func TestTransportSetTimeout(t *testing.T) {
	tr := NewTransportWithURL("https://example.test/", nil)
	tr.SetTimeout(5 * time.Second)

	if tr.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", tr.HTTPClient.Timeout)
	}
	if tr.BaseURL != "https://example.test" {
		t.Errorf("BaseURL = %s, want trailing slash removed", tr.BaseURL)
	}
}

func TestTransportStandardHeaders(t *testing.T) {
	server, reqs := newRecordingServer(t, http.StatusOK, "text/plain", "ok")

	tr := NewTransportWithURL(server.URL, nil)
	if _, err := tr.Get(context.Background(), "/kmm/svc/Devices", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	got := (*reqs)[0]
	if got.header.Get("User-Agent") != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", got.header.Get("User-Agent"), DefaultUserAgent)
	}
	if got.header.Get("Accept") != "application/xml" {
		t.Errorf("Accept = %q, want application/xml", got.header.Get("Accept"))
	}
	if got.header.Get("Cookie") != "" {
		t.Errorf("Cookie = %q, want none without a session cookie", got.header.Get("Cookie"))
	}
	if got.body != "" {
		t.Errorf("GET body = %q, want empty", got.body)
	}
}

func TestTransportSendsSessionCookie(t *testing.T) {
	server, reqs := newRecordingServer(t, http.StatusOK, "", "")

	session := NewSession("JSESSIONID=abc")
	tr := NewTransportWithURL(server.URL, session)
	if _, err := tr.Get(context.Background(), "/x", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	session.Clear()
	if _, err := tr.Get(context.Background(), "/x", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got := (*reqs)[0].header.Get("Cookie"); got != "JSESSIONID=abc" {
		t.Errorf("first Cookie = %q, want JSESSIONID=abc", got)
	}
	if got := (*reqs)[1].header.Get("Cookie"); got != "" {
		t.Errorf("second Cookie = %q, want none after Clear", got)
	}
}

func TestTransportRequestBodies(t *testing.T) {
	tests := []struct {
		name            string
		method          string
		contentType     string
		body            any
		wantContentType string
		wantBody        string
	}{
		{"default form", http.MethodPost, "", NewPayload(Pair{"a", "1"}, Pair{"b", "2"}), ContentTypeForm, "a=1&b=2"},
		{"url values", http.MethodPost, ContentTypeForm, url.Values{"a": {"1"}}, ContentTypeForm, "a=1"},
		{"json payload", http.MethodPut, ContentTypeJSON, NewPayload(Pair{"a", 1}), ContentTypeJSON, `{"a":1}`},
		{"json list", http.MethodPost, ContentTypeJSON, []any{"x"}, ContentTypeJSON, `["x"]`},
		{"json string verbatim", http.MethodPost, ContentTypeJSON, `{"raw":true}`, ContentTypeJSON, `{"raw":true}`},
		{"xml bytes verbatim", http.MethodPut, ContentTypeXML, []byte("<kdata/>"), ContentTypeXML, "<kdata/>"},
		{"no body", http.MethodPost, ContentTypeForm, nil, ContentTypeForm, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, reqs := newRecordingServer(t, http.StatusOK, "", "")
			tr := NewTransportWithURL(server.URL, nil)

			var header http.Header
			if tt.contentType != "" {
				header = http.Header{"Content-Type": {tt.contentType}}
			}
			if _, err := tr.Do(context.Background(), tt.method, "/x", tt.body, header); err != nil {
				t.Fatalf("Do() error = %v", err)
			}

			got := (*reqs)[0]
			if got.method != tt.method {
				t.Errorf("method = %s, want %s", got.method, tt.method)
			}
			if ct := got.header.Get("Content-Type"); ct != tt.wantContentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.wantContentType)
			}
			if got.body != tt.wantBody {
				t.Errorf("body = %q, want %q", got.body, tt.wantBody)
			}
		})
	}
}

func TestTransportRejectsUnencodableBody(t *testing.T) {
	tr := NewTransportWithURL("http://127.0.0.1:1", nil)

	_, err := tr.Post(context.Background(), "/x", 42, nil)
	if !IsEncodingError(err) {
		t.Errorf("Post() error = %v, want encoding error", err)
	}

	_, err = tr.Post(context.Background(), "/x", NewPayload(Pair{"a", NewPayload()}), nil)
	if !IsEncodingError(err) {
		t.Errorf("Post(nested form) error = %v, want encoding error", err)
	}
}

func TestTransportEnvelope(t *testing.T) {
	server, _ := newRecordingServer(t, http.StatusCreated, "text/xml; charset=utf-8", "<kdata/>")

	env, err := NewTransportWithURL(server.URL, nil).Post(context.Background(), "/x", nil, nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if env.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want 201", env.StatusCode)
	}
	if env.ContentType != ContentTypeXML {
		t.Errorf("ContentType = %q, want %q", env.ContentType, ContentTypeXML)
	}
	if string(env.Body) != "<kdata/>" {
		t.Errorf("Body = %q, want <kdata/>", env.Body)
	}
}

func TestTransportNormalizesPath(t *testing.T) {
	server, reqs := newRecordingServer(t, http.StatusOK, "", "")
	tr := NewTransportWithURL(server.URL, nil)

	for _, p := range []string{"Devices", "/Devices", server.URL + "/Devices"} {
		if _, err := tr.Get(context.Background(), p, nil); err != nil {
			t.Fatalf("Get(%q) error = %v", p, err)
		}
	}
	for i, r := range *reqs {
		if r.path != "/Devices" {
			t.Errorf("request %d path = %q, want /Devices", i, r.path)
		}
	}
}

func TestTransportConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	_, err := NewTransportWithURL(addr, nil).Get(context.Background(), "/x", nil)
	if !IsTransportError(err) {
		t.Fatalf("Get() error = %v, want transport error", err)
	}
}

func TestTransportTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tr := NewTransportWithURL(server.URL, nil)
	_, err := tr.Get(context.Background(), "/x", nil)
	if !IsTransportError(err) {
		t.Fatalf("Get() with untrusted certificate error = %v, want transport error", err)
	}
	if e := err.(*Error); e.Subtype != TransportTLS {
		t.Errorf("Subtype = %v, want TransportTLS", e.Subtype)
	}

	tr.SetInsecureSkipVerify(true)
	env, err := tr.Get(context.Background(), "/x", nil)
	if err != nil {
		t.Fatalf("Get() with verification disabled error = %v", err)
	}
	if env.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", env.StatusCode)
	}
}

func TestTransportTraceRedactsPasswords(t *testing.T) {
	server, _ := newRecordingServer(t, http.StatusOK, ContentTypeJSON, `{"password":"echoed","ok":true}`)

	core, logs := observer.New(zapcore.DebugLevel)
	tr := NewTransportWithURL(server.URL, nil)
	tr.Logger = zap.New(core)
	tr.LogRequestBody = true
	tr.LogResponseBody = true

	data := NewPayload(Pair{"username", "foo"}, Pair{"password", "secret"})
	if _, err := tr.Post(context.Background(), "/Login?password=inurl", data, nil); err != nil {
		t.Fatalf("Post() error = %v", err)
	}

	reqLogs := logs.FilterMessage("REQUEST").All()
	if len(reqLogs) != 1 {
		t.Fatalf("got %d REQUEST records, want 1", len(reqLogs))
	}
	fields := reqLogs[0].ContextMap()
	body, _ := fields["body"].(string)
	if strings.Contains(body, "secret") || !strings.Contains(body, "password=*REDACTED*") {
		t.Errorf("request body log = %q, want password redacted", body)
	}
	if u, _ := fields["url"].(string); strings.Contains(u, "inurl") {
		t.Errorf("url log = %q, want password redacted", u)
	}
	if fields["trace_id"] == "" {
		t.Error("REQUEST record should carry a trace_id")
	}

	respLogs := logs.FilterMessage("RESPONSE").All()
	if len(respLogs) != 1 {
		t.Fatalf("got %d RESPONSE records, want 1", len(respLogs))
	}
	respFields := respLogs[0].ContextMap()
	respBody, _ := respFields["body"].(string)
	if strings.Contains(respBody, "echoed") {
		t.Errorf("response body log = %q, want password redacted", respBody)
	}
	if respFields["trace_id"] != fields["trace_id"] {
		t.Errorf("trace ids differ: %v vs %v", respFields["trace_id"], fields["trace_id"])
	}
}

func TestTransportTraceRedactsCookies(t *testing.T) {
	var sent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sent = r.Header.Get("Cookie")
		w.Header().Set("Set-Cookie", "JSESSIONID=fresh; Path=/kmm")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	core, logs := observer.New(zapcore.DebugLevel)
	tr := NewTransportWithURL(server.URL, NewSession("JSESSIONID=abc"))
	tr.Logger = zap.New(core)

	env, err := tr.Get(context.Background(), "/Devices", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sent != "JSESSIONID=abc" {
		t.Errorf("sent Cookie = %q, want the real value", sent)
	}
	if got := env.Header.Get("Set-Cookie"); got != "JSESSIONID=fresh; Path=/kmm" {
		t.Errorf("envelope Set-Cookie = %q, want the real value", got)
	}

	reqHeaders, _ := logs.FilterMessage("REQUEST").All()[0].ContextMap()["headers"].(map[string]string)
	if got := reqHeaders["Cookie"]; got != "JSESSIONID=*REDACTED*" {
		t.Errorf("logged Cookie = %q, want JSESSIONID=*REDACTED*", got)
	}
	respHeaders, _ := logs.FilterMessage("RESPONSE").All()[0].ContextMap()["headers"].(map[string]string)
	if got := respHeaders["Set-Cookie"]; got != "JSESSIONID=*REDACTED*; Path=/kmm" {
		t.Errorf("logged Set-Cookie = %q, want JSESSIONID=*REDACTED*; Path=/kmm", got)
	}
}

func TestTransportTraceOmitsBodiesByDefault(t *testing.T) {
	server, _ := newRecordingServer(t, http.StatusOK, "", "")

	core, logs := observer.New(zapcore.DebugLevel)
	tr := NewTransportWithURL(server.URL, nil)
	tr.Logger = zap.New(core)

	if _, err := tr.Post(context.Background(), "/x", NewPayload(Pair{"a", "1"}), nil); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	for _, entry := range logs.All() {
		if _, ok := entry.ContextMap()["body"]; ok {
			t.Errorf("%s record carries a body without body logging enabled", entry.Message)
		}
	}
}

package parkmedia

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewClient(t *testing.T) {
	client := NewClient(DefaultServerAddress, DefaultServerPort)

	if client.Transport().BaseURL != "https://eval.parkmedia.tv:8123" {
		t.Errorf("BaseURL = %s, want https://eval.parkmedia.tv:8123", client.Transport().BaseURL)
	}
	if client.BasePath != DefaultBasePath {
		t.Errorf("BasePath = %s, want %s", client.BasePath, DefaultBasePath)
	}
	if !client.ParseResponse {
		t.Error("ParseResponse should default to true")
	}
	if client.Session() != client.Transport().Session {
		t.Error("client and transport should share one session")
	}
}

func TestClientSetters(t *testing.T) {
	client := NewClientWithURL("https://example.test:8123")

	client.SetBasePath("/kmm/svc/")
	if client.BasePath != "/kmm/svc" {
		t.Errorf("BasePath = %s, want /kmm/svc", client.BasePath)
	}

	client.SetTimeout(3 * time.Second)
	if client.Transport().HTTPClient.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", client.Transport().HTTPClient.Timeout)
	}

	client.SetCookie("JSESSIONID=abc")
	if client.Cookie() != "JSESSIONID=abc" || client.Transport().Session.Cookie() != "JSESSIONID=abc" {
		t.Errorf("Cookie() = %q, want JSESSIONID=abc on both client and transport", client.Cookie())
	}
	client.SetCookie("")
	if client.Session().HasCookie() {
		t.Error("SetCookie(\"\") should clear the cookie")
	}
}

func TestClientSetCookieLogsRedactedValue(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	client := NewClientWithURL("https://example.test:8123")
	client.SetLogger(zap.New(core))

	client.SetCookie("JSESSIONID=abc")

	entries := logs.FilterMessage("Setting cookie").All()
	if len(entries) != 1 {
		t.Fatalf("got %d records, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["cookie"]; got != "JSESSIONID=*REDACTED*" {
		t.Errorf("logged cookie = %v, want JSESSIONID=*REDACTED*", got)
	}
	for _, e := range logs.All() {
		if strings.Contains(e.Message, "abc") {
			t.Errorf("record %q leaks the cookie value", e.Message)
		}
	}
	if client.Cookie() != "JSESSIONID=abc" {
		t.Errorf("Cookie() = %q, the stored value must stay intact", client.Cookie())
	}
}

func TestClientSuccessCodes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		call       func(c *Client) (Result, error)
		wantCode   int
		wantResult bool
	}{
		{"get ok", 200, func(c *Client) (Result, error) { return c.Get(context.Background(), "Devices", nil) }, 200, true},
		{"get not found", 404, func(c *Client) (Result, error) { return c.Get(context.Background(), "Devices", nil) }, 200, false},
		{"post created", 201, func(c *Client) (Result, error) { return c.Post(context.Background(), "Asset", nil, nil) }, 201, true},
		{"post ok is not created", 200, func(c *Client) (Result, error) { return c.Post(context.Background(), "Asset", nil, nil) }, 201, false},
		{"put ok", 200, func(c *Client) (Result, error) { return c.Put(context.Background(), "Asset/1", "", nil) }, 200, true},
		{"delete no content", 204, func(c *Client) (Result, error) { return c.Delete(context.Background(), "Asset/1", nil) }, 204, true},
		{"delete ok is not success", 200, func(c *Client) (Result, error) { return c.Delete(context.Background(), "Asset/1", nil) }, 204, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newRecordingServer(t, tt.status, "", "")
			client := NewClientWithURL(server.URL)

			if _, err := tt.call(client); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if client.SuccessCode() != tt.wantCode {
				t.Errorf("SuccessCode() = %d, want %d", client.SuccessCode(), tt.wantCode)
			}
			ok, known := client.Success()
			if !known || ok != tt.wantResult {
				t.Errorf("Success() = %v, %v, want %v, true", ok, known, tt.wantResult)
			}
		})
	}
}

func TestClientSuccessUnknown(t *testing.T) {
	client := NewClientWithURL("http://127.0.0.1:1")
	if _, known := client.Success(); known {
		t.Error("Success() should be unknown before any call")
	}

	server := newClosedServerURL(t)
	client = NewClientWithURL(server)
	if _, err := client.Get(context.Background(), "Devices", nil); err == nil {
		t.Fatal("Get() against a closed server should fail")
	}
	if _, known := client.Success(); known {
		t.Error("Success() should be unknown after a transport failure")
	}
	if client.LastResponse() != nil {
		t.Error("LastResponse() should be nil after a transport failure")
	}
}

func TestClientPrefixesBasePath(t *testing.T) {
	server, reqs := newRecordingServer(t, http.StatusOK, "", "")
	client := NewClientWithURL(server.URL)

	if _, err := client.Get(context.Background(), "Devices", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	client.SetBasePath("")
	if _, err := client.Get(context.Background(), "/Devices", nil); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if got := (*reqs)[0].path; got != "/kmm/svc/Devices" {
		t.Errorf("path = %q, want /kmm/svc/Devices", got)
	}
	if got := (*reqs)[1].path; got != "/Devices" {
		t.Errorf("path = %q, want /Devices", got)
	}
}

func TestClientParseResponseToggle(t *testing.T) {
	server, _ := newRecordingServer(t, http.StatusOK, ContentTypeJSON, `{"x":1}`)
	client := NewClientWithURL(server.URL)

	res, err := client.Get(context.Background(), "Devices", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, ok := res.(JSONResult); !ok {
		t.Errorf("parsed result = %T, want JSONResult", res)
	}

	client.ParseResponse = false
	res, err = client.Get(context.Background(), "Devices", nil)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	raw, ok := res.(RawResult)
	if !ok || string(raw.Body) != `{"x":1}` {
		t.Errorf("unparsed result = %#v, want raw body", res)
	}
	if last, ok := client.LastResult().(RawResult); !ok || string(last.Body) != `{"x":1}` {
		t.Errorf("LastResult() = %#v, want the last raw result", client.LastResult())
	}
}

func TestClientPostJSONAndPutXML(t *testing.T) {
	server, reqs := newRecordingServer(t, http.StatusOK, "", "")
	client := NewClientWithURL(server.URL)

	if _, err := client.PostJSON(context.Background(), "Asset", NewPayload(Pair{"a", "1"}), nil); err != nil {
		t.Fatalf("PostJSON() error = %v", err)
	}
	if _, err := client.PutXML(context.Background(), "Asset/1", NewPayload(Pair{"a", "1"}), nil); err != nil {
		t.Fatalf("PutXML() error = %v", err)
	}

	if got := (*reqs)[0]; got.header.Get("Content-Type") != ContentTypeJSON || got.body != `{"a":1}` {
		t.Errorf("PostJSON sent %q with %q", got.body, got.header.Get("Content-Type"))
	}
	if got := (*reqs)[1]; got.header.Get("Content-Type") != ContentTypeXML || got.body != kdataOpen+"<a>1</a></kdata>" {
		t.Errorf("PutXML sent %q with %q", got.body, got.header.Get("Content-Type"))
	}
}

func newClosedServerURL(t *testing.T) string {
	t.Helper()
	server, _ := newRecordingServer(t, http.StatusOK, "", "")
	server.Close()
	return server.URL
}

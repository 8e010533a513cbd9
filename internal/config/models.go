package config

import (
	"net"
	"strconv"
	"time"
)

// Registry is the persisted session file. Sessions are keyed by host:port so
// that one user can keep cookies for several servers.
type Registry struct {
	Version  int                 `yaml:"version"`
	Sessions map[string]*Session `yaml:"sessions,omitempty"`
}

// Session is one captured login. Passwords are never stored.
type Session struct {
	Cookie     string    `yaml:"cookie"`
	Username   string    `yaml:"username,omitempty"`
	CapturedAt time.Time `yaml:"captured_at"`
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Version:  1,
		Sessions: make(map[string]*Session),
	}
}

// SessionKey returns the registry key for a server
func SessionKey(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// GetSession returns the saved session for a server, nil if none.
func (r *Registry) GetSession(host string, port int) *Session {
	return r.Sessions[SessionKey(host, port)]
}

// PutSession records a freshly captured cookie for a server.
func (r *Registry) PutSession(host string, port int, username, cookie string) *Session {
	if r.Sessions == nil {
		r.Sessions = make(map[string]*Session)
	}
	s := &Session{
		Cookie:     cookie,
		Username:   username,
		CapturedAt: time.Now().UTC().Truncate(time.Second),
	}
	r.Sessions[SessionKey(host, port)] = s
	return s
}

// ForgetSession removes the saved session for a server and reports whether
// one existed.
func (r *Registry) ForgetSession(host string, port int) bool {
	key := SessionKey(host, port)
	if _, ok := r.Sessions[key]; !ok {
		return false
	}
	delete(r.Sessions, key)
	return true
}

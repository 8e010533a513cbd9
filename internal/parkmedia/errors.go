package parkmedia

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates a connection, DNS or TLS failure
	ErrTypeTransport ErrorType = iota
	// ErrTypeParse indicates a malformed JSON response body
	ErrTypeParse
	// ErrTypeEncoding indicates a payload shape the chosen encoding cannot carry
	ErrTypeEncoding
	// ErrTypeValidation indicates invalid arguments for an endpoint
	ErrTypeValidation
	// ErrTypeConfig indicates a bad option or an unknown method name
	ErrTypeConfig
	// ErrTypeHTTP indicates a server-side status the caller chose to treat as fatal
	ErrTypeHTTP
)

// TransportSubtype narrows down transport failures
type TransportSubtype int

const (
	TransportGeneral TransportSubtype = iota
	TransportTimeout
	TransportConnectionRefused
	TransportDNS
	TransportTLS
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeEncoding:
		return "Encoding Error"
	case ErrTypeValidation:
		return "Validation Error"
	case ErrTypeConfig:
		return "Configuration Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is the single error type returned by this package
type Error struct {
	Type       ErrorType        // Category of error
	Message    string           // Human-readable error message
	StatusCode int              // HTTP status code (ErrTypeHTTP only)
	Subtype    TransportSubtype // Transport failures only
	Err        error            // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransportError wraps a failure from the HTTP client and classifies it.
func NewTransportError(message string, err error) *Error {
	return &Error{
		Type:    ErrTypeTransport,
		Message: message,
		Subtype: classifyTransport(err),
		Err:     err,
	}
}

func classifyTransport(err error) TransportSubtype {
	if err == nil {
		return TransportGeneral
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return TransportTimeout
		}
	}
	if os.IsTimeout(err) {
		return TransportTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return TransportDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return TransportConnectionRefused
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) ||
		errors.As(err, &hostErr) || errors.As(err, &recordErr) {
		return TransportTLS
	}

	return TransportGeneral
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *Error {
	return &Error{Type: ErrTypeParse, Message: message, Err: err}
}

// NewEncodingError creates an encoding error
func NewEncodingError(message string) *Error {
	return &Error{Type: ErrTypeEncoding, Message: message}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *Error {
	return &Error{Type: ErrTypeValidation, Message: message}
}

// NewConfigError creates a configuration error
func NewConfigError(message string) *Error {
	return &Error{Type: ErrTypeConfig, Message: message}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, message string) *Error {
	return &Error{Type: ErrTypeHTTP, Message: message, StatusCode: statusCode}
}

func isType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// IsTransportError checks if an error is a transport error
func IsTransportError(err error) bool { return isType(err, ErrTypeTransport) }

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool { return isType(err, ErrTypeParse) }

// IsEncodingError checks if an error is an encoding error
func IsEncodingError(err error) bool { return isType(err, ErrTypeEncoding) }

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool { return isType(err, ErrTypeValidation) }

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool { return isType(err, ErrTypeConfig) }

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool { return isType(err, ErrTypeHTTP) }

// GetTroubleshootingHint returns user-friendly advice for an error
func GetTroubleshootingHint(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "An unexpected error occurred. Please try again."
	}

	switch e.Type {
	case ErrTypeTransport:
		hint := []string{"Could not reach the Park Media server."}
		switch e.Subtype {
		case TransportTimeout:
			hint = append(hint, "Troubleshooting:",
				"  • The server did not answer in time; try a larger --timeout")
		case TransportConnectionRefused:
			hint = append(hint, "Troubleshooting:",
				"  • Check --server-port (default 8123)",
				"  • Verify the server accepts HTTPS on that port")
		case TransportDNS:
			hint = append(hint, "Troubleshooting:",
				"  • Check the spelling of --server-address",
				"  • Check your network DNS settings")
		case TransportTLS:
			hint = append(hint, "Troubleshooting:",
				"  • The server certificate was rejected",
				"  • Use --insecure only against a trusted evaluation server")
		default:
			hint = append(hint, "Troubleshooting:",
				"  • Check your network connection")
		}
		return strings.Join(hint, "\n")

	case ErrTypeParse:
		return "The server returned a body that does not match its content type."

	case ErrTypeEncoding:
		return "Form encoded requests only carry flat key/value pairs."

	case ErrTypeValidation, ErrTypeConfig:
		return e.Message

	case ErrTypeHTTP:
		if e.StatusCode >= 500 {
			return fmt.Sprintf("The server failed to process the request (HTTP %d).", e.StatusCode)
		}
		return fmt.Sprintf("The server rejected the request (HTTP %d).", e.StatusCode)

	default:
		return "An error occurred. Please check the error message for details."
	}
}

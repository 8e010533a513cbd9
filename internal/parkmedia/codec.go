package parkmedia

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// Content types understood by the codec and the response classifier
const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
	ContentTypeXML  = "text/xml"
	ContentTypeHTML = "text/html"
)

// EncodeForm renders the payload as key=value pairs joined by '&'.
// Nested payloads cannot be form encoded and produce an encoding error.
// Slices are sent as repeated keys.
func EncodeForm(p *Payload) ([]byte, error) {
	if p.Len() == 0 {
		return []byte{}, nil
	}

	var b strings.Builder
	var encErr error
	write := func(k string, v any) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(scalarString(v)))
	}

	p.Each(func(k string, v any) {
		if encErr != nil {
			return
		}
		switch t := v.(type) {
		case *Payload, map[string]any:
			encErr = NewEncodingError(fmt.Sprintf("form value for %q is a mapping", k))
		case []any:
			for _, item := range t {
				if _, nested := item.(*Payload); nested {
					encErr = NewEncodingError(fmt.Sprintf("form value for %q contains a mapping", k))
					return
				}
				write(k, item)
			}
		case []string:
			for _, item := range t {
				write(k, item)
			}
		default:
			write(k, v)
		}
	})
	if encErr != nil {
		return nil, encErr
	}
	return []byte(b.String()), nil
}

// EncodeJSON serializes the payload. An empty payload encodes to an empty body.
func EncodeJSON(p *Payload) ([]byte, error) {
	if p.Len() == 0 {
		return []byte{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, &Error{Type: ErrTypeEncoding, Message: "failed to encode JSON body", Err: err}
	}
	return data, nil
}

// DecodeJSON parses a JSON object into an ordered payload.
func DecodeJSON(data []byte) (*Payload, error) {
	v, err := DecodeJSONValue(data)
	if err != nil {
		return nil, err
	}
	p, ok := v.(*Payload)
	if !ok {
		return nil, NewParseError(fmt.Sprintf("expected a JSON object, got %s", jsonKind(v)), nil)
	}
	return p, nil
}

// DecodeJSONValue parses any JSON document. Objects become *Payload, arrays
// become []any, integral numbers int64 and other numbers float64.
func DecodeJSONValue(data []byte) (any, error) {
	v, err := decodeJSONValue(data)
	if err != nil {
		return nil, NewParseError("failed to parse JSON response", err)
	}
	return v, nil
}

func decodeJSONValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			p := NewPayload()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				val, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				p.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return p, nil
		case '[':
			list := []any{}
			for dec.More() {
				val, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		// string, bool or nil
		return t, nil
	}
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "number"
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

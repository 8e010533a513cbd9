package parkmedia

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	// DefaultXMLRoot is the envelope element used by the asset endpoints
	DefaultXMLRoot = "kdata"
	// DefaultXMLNamespace is declared on the envelope element
	DefaultXMLNamespace = "http://www.kuvata.com/kdata"

	xmlDeclaration = `<?xml version="1.0" encoding="utf-8"?>`

	// xmlContentKey holds element text when the element also has attributes
	// or children
	xmlContentKey = "content"
)

// XMLOptions controls how payloads are written as kdata XML.
type XMLOptions struct {
	RootName        string
	Namespace       string
	NamespacePrefix string

	// Separator is placed between the declaration, the envelope and each
	// element. Empty by default, which matches what the server expects.
	Separator string

	// EscapeValues escapes markup characters in text and attribute values.
	// Off by default: the server historically receives values verbatim.
	EscapeValues bool
}

// XMLOption mutates XMLOptions
type XMLOption func(*XMLOptions)

// WithRoot sets the envelope element name
func WithRoot(name string) XMLOption {
	return func(o *XMLOptions) { o.RootName = name }
}

// WithNamespace sets the namespace URI declared on the envelope
func WithNamespace(ns string) XMLOption {
	return func(o *XMLOptions) { o.Namespace = ns }
}

// WithSeparator sets the text placed between elements (e.g. "\n")
func WithSeparator(sep string) XMLOption {
	return func(o *XMLOptions) { o.Separator = sep }
}

// WithEscaping turns on escaping of '<', '&' and quotes in values
func WithEscaping() XMLOption {
	return func(o *XMLOptions) { o.EscapeValues = true }
}

func newXMLOptions(opts []XMLOption) XMLOptions {
	o := XMLOptions{
		RootName:        DefaultXMLRoot,
		Namespace:       DefaultXMLNamespace,
		NamespacePrefix: DefaultXMLRoot,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.RootName == "" {
		o.RootName = DefaultXMLRoot
	}
	if o.NamespacePrefix == "" {
		o.NamespacePrefix = DefaultXMLRoot
	}
	return o
}

// EncodeXML writes the payload inside a namespaced envelope element. Scalar
// values become <key>value</key>; nested payloads recurse with the same rule.
// No attributes are emitted.
func EncodeXML(p *Payload, opts ...XMLOption) []byte {
	o := newXMLOptions(opts)
	return o.envelope(o.children(p))
}

// EncodeAssetEditXML is EncodeXML with one extra top-level rule: a key named
// "asset-metadata" or "metadata" is written as
//
//	<asset-metadata><metadata name="KEY">VALUE</metadata>...</asset-metadata>
//
// Nested occurrences of those names get the generic treatment.
func EncodeAssetEditXML(p *Payload, opts ...XMLOption) ([]byte, error) {
	o := newXMLOptions(opts)

	var parts []string
	var encErr error
	p.Each(func(k string, v any) {
		if encErr != nil {
			return
		}
		if k != "asset-metadata" && k != "metadata" {
			parts = append(parts, o.element(k, v))
			return
		}
		md, ok := v.(*Payload)
		if !ok {
			encErr = NewEncodingError(fmt.Sprintf("%q must be a mapping of metadata names to values, got %T", k, v))
			return
		}
		parts = append(parts, strings.Join([]string{
			"<asset-metadata>", o.metadata(md), "</asset-metadata>",
		}, o.Separator))
	})
	if encErr != nil {
		return nil, encErr
	}
	return o.envelope(strings.Join(parts, o.Separator)), nil
}

func (o XMLOptions) envelope(content string) []byte {
	open := fmt.Sprintf("%s\n<%s xmlns:%s=%q>", xmlDeclaration, o.RootName, o.NamespacePrefix, o.Namespace)
	return []byte(strings.Join([]string{open, content, "</" + o.RootName + ">"}, o.Separator))
}

func (o XMLOptions) children(p *Payload) string {
	parts := make([]string, 0, p.Len())
	p.Each(func(k string, v any) {
		parts = append(parts, o.element(k, v))
	})
	return strings.Join(parts, o.Separator)
}

func (o XMLOptions) element(k string, v any) string {
	switch t := v.(type) {
	case *Payload:
		return "<" + k + ">" + o.children(t) + "</" + k + ">"
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, o.element(k, item))
		}
		return strings.Join(parts, o.Separator)
	default:
		return "<" + k + ">" + o.text(scalarString(v)) + "</" + k + ">"
	}
}

func (o XMLOptions) metadata(md *Payload) string {
	parts := make([]string, 0, md.Len())
	md.Each(func(k string, v any) {
		parts = append(parts, fmt.Sprintf(`<metadata name="%s">%s</metadata>`, o.text(k), o.text(scalarString(v))))
	})
	return strings.Join(parts, o.Separator)
}

func (o XMLOptions) text(s string) string {
	if !o.EscapeValues {
		return s
	}
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// DecodeXML parses a kdata document into a payload. The envelope element is
// dropped; its attributes and children become the top-level keys.
//
// Malformed input yields an empty payload instead of an error. Callers that
// need to tell "empty" from "broken" should use ParseXML.
func DecodeXML(data []byte) *Payload {
	p, err := ParseXML(data)
	if err != nil {
		return NewPayload()
	}
	return p
}

type xmlNode struct {
	name     string
	attrs    []xml.Attr
	children []*xmlNode
	text     strings.Builder
}

// ParseXML is the strict form of DecodeXML.
//
// Conversion rules: repeated child names collect into a []any, attributes
// become keys (namespace declarations are skipped), an element holding only
// text becomes a string, an empty element becomes nil, and text next to
// attributes or children is stored under "content". Element names lose
// their namespace prefix.
func ParseXML(data []byte) (*Payload, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var root *xmlNode
	var stack []*xmlNode
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) && root != nil && len(stack) == 0 {
				break
			}
			return nil, NewParseError("malformed XML", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{name: t.Name.Local, attrs: t.Attr}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			} else {
				return nil, NewParseError("multiple root elements", nil)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}

	switch v := root.value().(type) {
	case *Payload:
		return v, nil
	case string:
		return NewPayload(Pair{xmlContentKey, v}), nil
	default:
		return NewPayload(), nil
	}
}

func (n *xmlNode) value() any {
	text := strings.TrimSpace(n.text.String())

	out := NewPayload()
	for _, a := range n.attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		out.Set(a.Name.Local, a.Value)
	}
	for _, c := range n.children {
		v := c.value()
		existing, ok := out.Get(c.name)
		if !ok {
			out.Set(c.name, v)
			continue
		}
		if list, isList := existing.([]any); isList {
			out.Set(c.name, append(list, v))
		} else {
			out.Set(c.name, []any{existing, v})
		}
	}

	if out.Len() == 0 {
		if text == "" {
			return nil
		}
		return text
	}
	if text != "" {
		out.Set(xmlContentKey, text)
	}
	return out
}

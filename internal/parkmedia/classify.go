package parkmedia

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"strings"
)

// Envelope is one HTTP response as returned by the Transport.
type Envelope struct {
	StatusCode int
	Status     string

	// ContentType is the media type of the Content-Type header, lower-cased
	// and without parameters ("text/xml; charset=utf-8" becomes "text/xml").
	ContentType string

	Header http.Header
	Body   []byte
}

func mediaType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(header))
	}
	return mt
}

// Result is the decoded form of a response body. It is one of JSONResult,
// XMLResult, HTMLResult or RawResult.
type Result interface {
	isResult()
}

// JSONResult holds a decoded application/json body. Value is a *Payload for
// objects, []any for arrays, or a scalar.
type JSONResult struct {
	Value any
}

// XMLResult holds a decoded text/xml body
type XMLResult struct {
	Payload *Payload
}

// HTMLResult holds the fields scraped from a text/html error page
type HTMLResult struct {
	Fields *Payload
	Body   []byte
}

// RawResult is a body passed through untouched
type RawResult struct {
	Body []byte
}

func (JSONResult) isResult() {}
func (XMLResult) isResult()  {}
func (HTMLResult) isResult() {}
func (RawResult) isResult()  {}

// String renders the scraped fields the way the server shows them, or the
// raw page when nothing matched.
func (r HTMLResult) String() string {
	if r.Fields.Len() == 0 {
		return string(r.Body)
	}
	msg, _ := r.Fields.GetString("message")
	desc, _ := r.Fields.GetString("description")
	return fmt.Sprintf("Message: '%s' Description: '%s'", msg, desc)
}

var (
	htmlMessagePattern     = regexp.MustCompile(`<b>message</b> <u>(.*)</u></p><p>`)
	htmlDescriptionPattern = regexp.MustCompile(`<b>description</b> <u>(.*)</u>`)
)

// ExtractHTMLFields scrapes "message" and "description" from a Tomcat style
// error page. Fields that do not match are left out.
func ExtractHTMLFields(body []byte) *Payload {
	fields := NewPayload()
	if m := htmlMessagePattern.FindSubmatch(body); m != nil {
		fields.Set("message", string(m[1]))
	}
	if m := htmlDescriptionPattern.FindSubmatch(body); m != nil {
		fields.Set("description", string(m[1]))
	}
	return fields
}

// Classify decodes a response body according to its content type:
//
//	application/json  decoded; malformed JSON is a parse error
//	text/xml          decoded when the body starts with '<', empty otherwise;
//	                  malformed XML also decodes to an empty payload
//	text/html         message/description scraped from the error page
//	anything else     body returned unchanged
func Classify(env *Envelope) (Result, error) {
	if env == nil {
		return RawResult{}, nil
	}

	switch env.ContentType {
	case ContentTypeJSON:
		v, err := DecodeJSONValue(env.Body)
		if err != nil {
			return nil, err
		}
		return JSONResult{Value: v}, nil

	case ContentTypeXML:
		if !bytes.HasPrefix(env.Body, []byte("<")) {
			return XMLResult{Payload: NewPayload()}, nil
		}
		return XMLResult{Payload: DecodeXML(env.Body)}, nil

	case ContentTypeHTML:
		return HTMLResult{Fields: ExtractHTMLFields(env.Body), Body: env.Body}, nil

	default:
		return RawResult{Body: env.Body}, nil
	}
}

// ResultPayload returns the mapping carried by a result, if any.
func ResultPayload(r Result) (*Payload, bool) {
	switch v := r.(type) {
	case JSONResult:
		p, ok := v.Value.(*Payload)
		return p, ok
	case XMLResult:
		return v.Payload, true
	case HTMLResult:
		return v.Fields, true
	default:
		return nil, false
	}
}

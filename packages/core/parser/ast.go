package parser

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Request is a fully parsed request file, ready to hand to a transport.
type Request struct {
	Method  string
	URL     *url.URL
	Headers []*Header
	// Body is nil when the file has no lines after the header block.
	Body *string
}

type Header struct {
	Name  string
	Value string
	Line  int
}

// HasBody reports whether the request carries a body, including an empty one.
func (r *Request) HasBody() bool {
	return r.Body != nil
}

// BodyString returns the body text or "" when there is none.
func (r *Request) BodyString() string {
	if r.Body == nil {
		return ""
	}
	return *r.Body
}

// Header returns the value of the first header matching name, case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

var (
	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrInvalidMethod        = errors.New("invalid method")
	ErrInvalidURL           = errors.New("invalid url")
	ErrInvalidHeaderName    = errors.New("invalid header name")
	ErrInvalidHeaderValue   = errors.New("invalid header value")
)

type ParseError struct {
	File    string
	Line    int
	Kind    error
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, msg)
	}
	return fmt.Sprintf("line %d: %s", e.Line, msg)
}

// Unwrap exposes both the error kind and the underlying cause.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

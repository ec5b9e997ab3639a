package http

import (
	"fmt"
	neturl "net/url"
	"strings"

	"github.com/sethetter/reqq/packages/core/parser"
)

type Header struct {
	Name  string
	Value string
}

// Request is what the client sends. Headers keep their order and
// duplicates; Body is nil when the request has none.
type Request struct {
	Method  string
	URL     *neturl.URL
	Headers []Header
	Body    *string
}

func NewRequest(method string, u *neturl.URL) *Request {
	return &Request{Method: method, URL: u}
}

func (r *Request) AddHeader(name, value string) *Request {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = &body
	return r
}

// HasHeader reports whether the request sets name, ignoring case.
func (r *Request) HasHeader(name string) bool {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

// BuildRequest maps a parsed request onto a transport request.
func BuildRequest(req *parser.Request) (*Request, error) {
	if req == nil || req.URL == nil {
		return nil, fmt.Errorf("request has no URL")
	}

	u := *req.URL
	r := NewRequest(req.Method, &u)
	for _, h := range req.Headers {
		r.AddHeader(h.Name, h.Value)
	}
	if req.Body != nil {
		r.SetBody(*req.Body)
	}
	return r, nil
}

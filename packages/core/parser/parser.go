package parser

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var headerPattern = regexp.MustCompile(`^[A-Za-z0-9-]+:\s*.+$`)

type zone int

const (
	zoneRequestLine zone = iota
	zoneHeaders
	zoneBody
)

func (z zone) String() string {
	switch z {
	case zoneRequestLine:
		return "request line"
	case zoneHeaders:
		return "headers"
	case zoneBody:
		return "body"
	default:
		return "unknown"
	}
}

// Parser consumes expanded request text one line at a time. Zones only move
// forward: request line, then headers, then body.
type Parser struct {
	file string
	zone zone
	line int
	req  *Request
	body []string
}

func NewParser(filename string) *Parser {
	return &Parser{
		file: filename,
		req:  &Request{},
	}
}

func ParseFile(path string) (*Request, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(content), path)
}

// Parse parses fully expanded request text. Template placeholders must
// already be resolved.
func Parse(input, filename string) (*Request, error) {
	p := NewParser(filename)
	for _, line := range SplitLines(input) {
		if err := p.Feed(line); err != nil {
			return nil, err
		}
	}
	return p.Finish()
}

// Feed advances the state machine by one line.
func (p *Parser) Feed(line string) error {
	p.line++

	switch p.zone {
	case zoneRequestLine:
		if err := p.parseRequestLine(line); err != nil {
			return err
		}
		p.zone = zoneHeaders
	case zoneHeaders:
		if !headerPattern.MatchString(line) {
			// The first non-header line seeds the body, blank or not.
			p.zone = zoneBody
			p.body = append(p.body, line)
			return nil
		}
		header, err := p.parseHeader(line)
		if err != nil {
			return err
		}
		p.req.Headers = append(p.req.Headers, header)
	case zoneBody:
		p.body = append(p.body, line)
	}
	return nil
}

// Finish returns the parsed request once all lines have been fed.
func (p *Parser) Finish() (*Request, error) {
	if p.zone == zoneRequestLine {
		return nil, p.errorf(ErrMalformedRequestLine, nil, "missing request line")
	}
	if len(p.body) > 0 {
		body := strings.Join(p.body, "\n")
		p.req.Body = &body
	}
	return p.req, nil
}

func (p *Parser) parseRequestLine(line string) error {
	method, rawURL, found := strings.Cut(line, " ")
	if !found {
		return p.errorf(ErrMalformedRequestLine, nil, "expected \"<METHOD> <URL>\", got %q", line)
	}

	if !ValidMethod(method) {
		return p.errorf(ErrInvalidMethod, nil, "%q", method)
	}

	u, err := ParseURL(rawURL)
	if err != nil {
		return p.errorf(ErrInvalidURL, err, "")
	}

	p.req.Method = method
	p.req.URL = u
	return nil
}

func (p *Parser) parseHeader(line string) (*Header, error) {
	name, value, found := strings.Cut(line, ": ")
	if !found {
		return nil, p.errorf(ErrInvalidHeaderValue, nil, "missing \": \" separator in %q", line)
	}
	if !httpguts.ValidHeaderFieldName(name) {
		return nil, p.errorf(ErrInvalidHeaderName, nil, "%q", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return nil, p.errorf(ErrInvalidHeaderValue, nil, "%q for header %s", value, name)
	}
	return &Header{
		Name:  name,
		Value: value,
		Line:  p.line,
	}, nil
}

func (p *Parser) errorf(kind, cause error, format string, args ...any) *ParseError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &ParseError{
		File:    p.file,
		Line:    p.line,
		Kind:    kind,
		Message: msg,
		Err:     cause,
	}
}

// ValidMethod reports whether s is a syntactically valid method token.
func ValidMethod(s string) bool {
	return httpguts.ValidHeaderFieldName(s)
}

var defaultPathSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
}

// ParseURL parses an absolute URL. Hierarchical web URLs without a path get
// "/" so https://example.com and https://example.com/ are the same request.
func ParseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	if defaultPathSchemes[u.Scheme] {
		if u.Host == "" {
			return nil, fmt.Errorf("%q has no host", raw)
		}
		u.Host = strings.ToLower(u.Host)
		if u.Path == "" && u.Opaque == "" {
			u.Path = "/"
		}
	}
	return u, nil
}

// SplitLines splits text into lines on "\n", dropping a trailing "\r" from
// each line. A final newline does not produce an empty last line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

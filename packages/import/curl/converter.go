// Package curl turns curl command lines into reqq request files.
package curl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/sethetter/reqq/packages/core/env"
	"github.com/sethetter/reqq/packages/core/parser"
)

var (
	ErrNoURL        = errors.New("no URL found in curl command")
	ErrMissingValue = errors.New("missing flag value")
)

// Converter converts curl commands to request file text.
type Converter struct {
	baseURLVar string
}

type Option func(*Converter)

// WithBaseURLVariable replaces the scheme and host of the URL with
// {{ name }} so the request can be pointed at another environment.
func WithBaseURLVariable(name string) Option {
	return func(c *Converter) {
		c.baseURLVar = name
	}
}

func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Command is a parsed curl invocation. Headers keep their command line order.
type Command struct {
	Method          string
	URL             string
	Headers         []parser.Header
	Body            string
	Insecure        bool
	FollowRedirects bool
}

// Header returns the first header with the given name, case-insensitively.
func (c *Command) Header(name string) (string, bool) {
	for _, h := range c.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

func (c *Command) addHeader(name, value string) {
	c.Headers = append(c.Headers, parser.Header{Name: name, Value: value})
}

func (c *Command) setHeaderDefault(name, value string) {
	if _, ok := c.Header(name); !ok {
		c.addHeader(name, value)
	}
}

// Convert parses a curl command and returns the request file text. The text
// is checked with the request parser before it is returned.
func (c *Converter) Convert(curlCmd string) (string, error) {
	cmd, err := Parse(curlCmd)
	if err != nil {
		return "", err
	}
	return c.Format(cmd)
}

// Parse parses a curl command line. Line continuations are accepted.
func Parse(curlCmd string) (*Command, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\r\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	return ParseArgs(tokenize(strings.TrimSpace(curlCmd)))
}

// ParseArgs parses an already split curl argument list, such as the
// arguments given after "--" on a command line.
func ParseArgs(tokens []string) (*Command, error) {
	if len(tokens) > 0 && tokens[0] == "curl" {
		tokens = tokens[1:]
	}

	cmd := &Command{}
	var (
		data     []string
		method   string
		getQuery bool
		head     bool
	)

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		value := func() (string, error) {
			if i+1 >= len(tokens) {
				return "", fmt.Errorf("%w for %s", ErrMissingValue, token)
			}
			i++
			return tokens[i], nil
		}

		switch token {
		case "-X", "--request":
			v, err := value()
			if err != nil {
				return nil, err
			}
			method = strings.ToUpper(v)

		case "-H", "--header":
			v, err := value()
			if err != nil {
				return nil, err
			}
			name, val, ok := strings.Cut(v, ":")
			if ok && strings.TrimSpace(val) != "" {
				cmd.addHeader(strings.TrimSpace(name), strings.TrimSpace(val))
			}

		case "-d", "--data", "--data-raw", "--data-binary", "--data-ascii":
			v, err := value()
			if err != nil {
				return nil, err
			}
			data = append(data, v)

		case "--data-urlencode":
			v, err := value()
			if err != nil {
				return nil, err
			}
			if name, val, ok := strings.Cut(v, "="); ok {
				data = append(data, name+"="+url.QueryEscape(val))
			} else {
				data = append(data, url.QueryEscape(v))
			}

		case "--json":
			v, err := value()
			if err != nil {
				return nil, err
			}
			data = append(data, v)
			cmd.setHeaderDefault("Content-Type", "application/json")
			cmd.setHeaderDefault("Accept", "application/json")

		case "-u", "--user":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.addHeader("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(v)))

		case "-A", "--user-agent":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.addHeader("User-Agent", v)

		case "-e", "--referer":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.addHeader("Referer", v)

		case "-b", "--cookie":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.addHeader("Cookie", v)

		case "--url":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cmd.URL = v

		case "-G", "--get":
			getQuery = true

		case "-I", "--head":
			head = true

		case "-k", "--insecure":
			cmd.Insecure = true

		case "-L", "--location":
			cmd.FollowRedirects = true

		default:
			if strings.HasPrefix(token, "-") {
				// Unknown flag; skip its value if it has one.
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
					i++
				}
				continue
			}
			if cmd.URL == "" && isURL(token) {
				cmd.URL = token
			}
		}
	}

	if cmd.URL == "" {
		return nil, ErrNoURL
	}

	body := strings.Join(data, "&")
	switch {
	case method != "":
		cmd.Method = method
	case head:
		cmd.Method = "HEAD"
	case body != "" && !getQuery:
		cmd.Method = "POST"
	default:
		cmd.Method = "GET"
	}

	if getQuery && body != "" {
		sep := "?"
		if strings.Contains(cmd.URL, "?") {
			sep = "&"
		}
		cmd.URL += sep + body
		body = ""
	}

	if body != "" {
		cmd.Body = body
		if !strings.HasPrefix(strings.TrimSpace(body), "{") && !strings.HasPrefix(strings.TrimSpace(body), "[") {
			cmd.setHeaderDefault("Content-Type", "application/x-www-form-urlencoded")
		}
	}

	return cmd, nil
}

// Format renders cmd as request file text.
func (c *Converter) Format(cmd *Command) (string, error) {
	target := cmd.URL
	vars := env.Variables{}
	if c.baseURLVar != "" {
		if u, err := url.Parse(cmd.URL); err == nil && u.Scheme != "" && u.Host != "" {
			base := u.Scheme + "://" + u.Host
			vars[c.baseURLVar] = base
			target = "{{ " + c.baseURLVar + " }}" + strings.TrimPrefix(cmd.URL, base)
		}
	}

	var sb strings.Builder
	sb.WriteString(cmd.Method)
	sb.WriteString(" ")
	sb.WriteString(target)
	sb.WriteString("\n")

	for _, h := range cmd.Headers {
		sb.WriteString(h.Name)
		sb.WriteString(": ")
		sb.WriteString(escapeBraces(h.Value))
		sb.WriteString("\n")
	}

	if cmd.Body != "" {
		sb.WriteString("\n")
		sb.WriteString(escapeBraces(cmd.Body))
		sb.WriteString("\n")
	}

	text := sb.String()

	rendered, err := env.NewResolver(vars, env.WithLookupEnv(noEnv)).Render(text)
	if err != nil {
		return "", fmt.Errorf("converted request contains a template: %w", err)
	}
	req, err := parser.Parse(rendered, "curl")
	if err != nil {
		return "", err
	}
	if len(req.Headers) != len(cmd.Headers) {
		return "", fmt.Errorf("%w: headers cannot all be written as request file headers", parser.ErrInvalidHeaderName)
	}

	return text, nil
}

// Name suggests a request name such as "get_users_list" from the method and URL path.
func (cmd *Command) Name() string {
	path := ""
	if u, err := url.Parse(cmd.URL); err == nil {
		path = u.Path
	}
	path = strings.Trim(path, "/")
	if path == "" {
		path = "root"
	}
	return sanitizeName(strings.ToLower(cmd.Method) + "_" + path)
}

func noEnv(string) (string, bool) { return "", false }

func escapeBraces(s string) string {
	return strings.ReplaceAll(s, "{{", `\{{`)
}

// tokenize splits a command line into shell words, respecting quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false
	started := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
				started = true
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
				started = true
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t', '\n', '\r':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 || started {
				tokens = append(tokens, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 || started {
		tokens = append(tokens, current.String())
	}

	return tokens
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func sanitizeName(name string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(name, "_"), "_")
}

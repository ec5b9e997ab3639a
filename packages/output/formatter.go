package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sethetter/reqq/packages/core/runner"
	"github.com/tidwall/gjson"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatBody    = "body"
)

// Formats lists the accepted output format names.
var Formats = []string{FormatConsole, FormatJSON, FormatBody}

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrNoMatch       = errors.New("query matched nothing")
	ErrNotJSON       = errors.New("response body is not JSON")
)

type Formatter interface {
	FormatResult(result *runner.Result) error
	FormatPrepared(prepared *runner.Prepared) error
	FormatError(err error)
}

type options struct {
	writer    io.Writer
	errWriter io.Writer
	verbose   bool
	noColor   bool
	query     string
}

type Option func(*options)

func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// WithErrWriter sets where FormatError writes. It defaults to stderr.
func WithErrWriter(w io.Writer) Option {
	return func(o *options) {
		o.errWriter = w
	}
}

func WithVerbose(v bool) Option {
	return func(o *options) {
		o.verbose = v
	}
}

func WithNoColor(nc bool) Option {
	return func(o *options) {
		o.noColor = nc
	}
}

// WithQuery narrows the output to the gjson path q of the response body.
func WithQuery(q string) Option {
	return func(o *options) {
		o.query = q
	}
}

func newOptions(opts []Option) options {
	o := options{
		writer:    os.Stdout,
		errWriter: os.Stderr,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the formatter for format.
func New(format string, opts ...Option) (Formatter, error) {
	switch format {
	case "", FormatConsole:
		return NewConsoleFormatter(opts...), nil
	case FormatJSON:
		return NewJSONFormatter(opts...), nil
	case FormatBody:
		return NewBodyFormatter(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownFormat, format, Formats)
	}
}

// Query extracts path from a JSON body. Strings come back unquoted, other
// values as JSON.
func Query(body []byte, path string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", ErrNotJSON
	}
	res := gjson.GetBytes(body, path)
	if !res.Exists() {
		return "", fmt.Errorf("%w: %s", ErrNoMatch, path)
	}
	if res.Type == gjson.String {
		return res.Str, nil
	}
	return res.Raw, nil
}

// PrettyBody indents a JSON body and returns anything else unchanged.
func PrettyBody(body []byte) string {
	if len(body) > 0 && gjson.ValidBytes(body) {
		return strings.TrimRight(gjson.GetBytes(body, "@pretty").Raw, "\n")
	}
	return string(body)
}

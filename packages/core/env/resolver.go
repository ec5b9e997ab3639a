package env

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sethetter/reqq/packages/builtin"
	"github.com/tidwall/gjson"
)

var (
	ErrTemplate = errors.New("template error")
	ErrUnbound  = errors.New("unbound variable")
	ErrSyntax   = errors.New("unsupported template syntax")
)

var pathPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*$`)

var numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// TemplateError reports where rendering stopped. It matches ErrTemplate and
// its cause with errors.Is.
type TemplateError struct {
	Line   int
	Column int
	Expr   string
	Err    error
}

func (e *TemplateError) Error() string {
	if e.Expr != "" {
		return fmt.Sprintf("line %d, column %d: {{ %s }}: %v", e.Line, e.Column, e.Expr, e.Err)
	}
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *TemplateError) Unwrap() []error {
	return []error{ErrTemplate, e.Err}
}

// LookupFunc looks up a process environment variable.
type LookupFunc func(name string) (string, bool)

// Resolver renders request templates against a fixed set of variables.
type Resolver struct {
	variables Variables
	funcs     *builtin.Registry
	lookupEnv LookupFunc
	document  []byte
}

type ResolverOption func(*Resolver)

func WithLookupEnv(fn LookupFunc) ResolverOption {
	return func(r *Resolver) {
		r.lookupEnv = fn
	}
}

func WithFunctions(funcs *builtin.Registry) ResolverOption {
	return func(r *Resolver) {
		r.funcs = funcs
	}
}

func NewResolver(vars Variables, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		variables: vars,
		funcs:     builtin.NewRegistry(),
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.variables == nil {
		r.variables = Variables{}
	}
	return r
}

// Render substitutes every {{ expr }} in input. Text without placeholders
// comes back unchanged. `\{{` produces a literal "{{".
func (r *Resolver) Render(input string) (string, error) {
	var out strings.Builder
	out.Grow(len(input))

	pos := 0
	for pos < len(input) {
		i := strings.Index(input[pos:], "{{")
		if i < 0 {
			out.WriteString(input[pos:])
			break
		}
		start := pos + i

		if start > 0 && input[start-1] == '\\' {
			out.WriteString(input[pos : start-1])
			out.WriteString("{{")
			pos = start + 2
			continue
		}
		out.WriteString(input[pos:start])

		open, close := "{{", "}}"
		if strings.HasPrefix(input[start:], "{{{") {
			open, close = "{{{", "}}}"
		}
		exprStart := start + len(open)
		end := strings.Index(input[exprStart:], close)
		if end < 0 {
			return "", newTemplateError(input, start, "", fmt.Errorf("%w: unclosed %q", ErrSyntax, open))
		}

		expr := strings.TrimSpace(input[exprStart : exprStart+end])
		value, err := r.evaluate(expr)
		if err != nil {
			return "", newTemplateError(input, start, expr, err)
		}
		out.WriteString(value)
		pos = exprStart + end + len(close)
	}

	return out.String(), nil
}

func (r *Resolver) evaluate(expr string) (string, error) {
	switch {
	case expr == "":
		return "", fmt.Errorf("%w: empty placeholder", ErrSyntax)
	case strings.HasPrefix(expr, "!"):
		return "", nil
	case strings.HasPrefix(expr, "$"):
		name := expr[1:]
		if val, ok := r.lookupEnv(name); ok {
			return val, nil
		}
		return "", fmt.Errorf("%w: environment variable $%s is not set", ErrUnbound, name)
	case strings.ContainsAny(expr[:1], "#/^>&~") || expr == "else" || strings.HasPrefix(expr, "else "):
		return "", fmt.Errorf("%w: block and partial helpers are not supported", ErrSyntax)
	case strings.Contains(expr, "("):
		return r.call(expr)
	default:
		return r.lookup(expr)
	}
}

func (r *Resolver) call(expr string) (string, error) {
	name, args, ok := builtin.ParseCall(expr)
	if !ok {
		return "", fmt.Errorf("%w: malformed function call", ErrSyntax)
	}

	values := make([]string, len(args))
	for i, arg := range args {
		if arg.Quoted || numberPattern.MatchString(arg.Value) {
			values[i] = arg.Value
			continue
		}
		v, err := r.lookup(arg.Value)
		if err != nil {
			return "", err
		}
		values[i] = v
	}

	return r.funcs.Call(name, values)
}

func (r *Resolver) lookup(path string) (string, error) {
	if v, ok := r.variables[path]; ok {
		return Stringify(v), nil
	}
	if !pathPattern.MatchString(path) {
		return "", fmt.Errorf("%w: %q is not a variable name", ErrSyntax, path)
	}
	if strings.Contains(path, ".") {
		if res := gjson.GetBytes(r.jsonDocument(), path); res.Exists() {
			return resultString(res), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnbound, path)
}

func (r *Resolver) jsonDocument() []byte {
	if r.document == nil {
		data, err := json.Marshal(r.variables)
		if err != nil {
			data = []byte("{}")
		}
		r.document = data
	}
	return r.document
}

// Lookup returns the rendered value of a variable path such as "user.id".
func (r *Resolver) Lookup(path string) (string, bool) {
	v, err := r.lookup(path)
	return v, err == nil
}

// Stringify renders a variable value the way it appears in a request:
// strings unquoted, numbers as written, null as nothing, and arrays or
// objects as compact JSON.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case map[string]any, []any, Variables:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func resultString(res gjson.Result) string {
	switch res.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return res.Str
	default:
		return res.Raw
	}
}

func newTemplateError(input string, offset int, expr string, err error) *TemplateError {
	prefix := input[:offset]
	line := strings.Count(prefix, "\n") + 1
	col := offset - strings.LastIndex(prefix, "\n")
	return &TemplateError{
		Line:   line,
		Column: col,
		Expr:   expr,
		Err:    err,
	}
}

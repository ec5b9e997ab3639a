package builtin

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownFunction = errors.New("unknown function")

type Func func(args []string) (string, error)

type Registry struct {
	funcs map[string]Func
	now   func() time.Time
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
		now:   time.Now,
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["now"] = r.funcNow
	r.funcs["date"] = r.funcDate
	r.funcs["timestamp"] = r.funcTimestamp
	r.funcs["timestampMs"] = r.funcTimestampMs
	r.funcs["uuid"] = funcUUID
	r.funcs["random"] = funcRandom
	r.funcs["randomString"] = funcRandomString
	r.funcs["base64"] = funcBase64
	r.funcs["urlEncode"] = funcURLEncode
	r.funcs["sha256"] = funcSHA256
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// SetClock fixes the time used by now, date and timestamp functions.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Call(name string, args []string) (string, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}
	out, err := fn(args)
	if err != nil {
		return "", fmt.Errorf("%s(): %w", name, err)
	}
	return out, nil
}

// Arg is one argument of a call expression. Quoted arguments are literals;
// unquoted ones may be numbers or variable references.
type Arg struct {
	Value  string
	Quoted bool
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\s*\((.*)\)$`)

// ParseCall splits an expression like `random(1, 10)` into its name and
// arguments. ok is false if expr is not a call.
func ParseCall(expr string) (name string, args []Arg, ok bool) {
	matches := funcCallPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if matches == nil {
		return "", nil, false
	}
	return matches[1], parseArgs(matches[2]), true
}

func parseArgs(s string) []Arg {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var args []Arg
	var current strings.Builder
	quoted := false
	quoteChar := byte(0)

	flush := func() {
		value := current.String()
		if !quoted {
			value = strings.TrimSpace(value)
		}
		args = append(args, Arg{Value: value, Quoted: quoted})
		current.Reset()
		quoted = false
	}

	inQuote := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case !inQuote && (ch == '"' || ch == '\''):
			if strings.TrimSpace(current.String()) == "" {
				current.Reset()
			}
			inQuote = true
			quoted = true
			quoteChar = ch
		case inQuote && ch == quoteChar:
			inQuote = false
			quoteChar = 0
		case !inQuote && ch == ',':
			flush()
		case !inQuote && quoted && (ch == ' ' || ch == '\t'):
			// whitespace after a closing quote
		default:
			current.WriteByte(ch)
		}
	}
	flush()

	return args
}

func (r *Registry) funcNow(_ []string) (string, error) {
	return r.now().UTC().Format(time.RFC3339), nil
}

func (r *Registry) funcDate(args []string) (string, error) {
	layout := "2006-01-02"
	if len(args) >= 1 && args[0] != "" {
		layout = args[0]
	}
	return r.now().UTC().Format(layout), nil
}

func (r *Registry) funcTimestamp(_ []string) (string, error) {
	return strconv.FormatInt(r.now().Unix(), 10), nil
}

func (r *Registry) funcTimestampMs(_ []string) (string, error) {
	return strconv.FormatInt(r.now().UnixMilli(), 10), nil
}

func funcUUID(_ []string) (string, error) {
	return uuid.NewString(), nil
}

func funcRandom(args []string) (string, error) {
	lo, hi := 0, 100
	if len(args) >= 2 {
		var err error
		if lo, err = strconv.Atoi(args[0]); err != nil {
			return "", fmt.Errorf("min %q is not an integer", args[0])
		}
		if hi, err = strconv.Atoi(args[1]); err != nil {
			return "", fmt.Errorf("max %q is not an integer", args[1])
		}
	}
	if hi < lo {
		return "", fmt.Errorf("max %d is less than min %d", hi, lo)
	}
	return strconv.Itoa(rand.IntN(hi-lo+1) + lo), nil
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func funcRandomString(args []string) (string, error) {
	length := 16
	if len(args) >= 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return "", fmt.Errorf("length %q is not a non-negative integer", args[0])
		}
		length = v
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}
	return string(b), nil
}

func requireArg(args []string) (string, error) {
	if len(args) < 1 {
		return "", errors.New("missing argument")
	}
	return args[0], nil
}

func funcBase64(args []string) (string, error) {
	s, err := requireArg(args)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString([]byte(s)), nil
}

func funcURLEncode(args []string) (string, error) {
	s, err := requireArg(args)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(s), nil
}

func funcSHA256(args []string) (string, error) {
	s, err := requireArg(args)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]), nil
}

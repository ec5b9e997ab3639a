package env

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sethetter/reqq/packages/core/source"
	"github.com/tidwall/gjson"
)

// EnvDir is the directory under the request directory holding environments.
const EnvDir = "envs"

const envExt = ".json"

var ErrFormat = errors.New("environment is not a JSON object")

// Variables maps names to JSON-like values: string, json.Number, bool, nil,
// []any or map[string]any.
type Variables map[string]any

// Config is an environment file, read on first use.
type Config struct {
	src *source.Source
}

func NewConfig(path string, opts ...source.Option) *Config {
	return &Config{src: source.New(path, opts...)}
}

// NewConfigFromText returns an environment whose content is already known.
func NewConfigFromText(path, text string) *Config {
	return &Config{src: source.NewLoaded(path, text)}
}

func (c *Config) Path() string {
	return c.src.Path
}

// Load reads the file if it has not been read yet.
func (c *Config) Load() error {
	_, err := c.src.Text()
	return err
}

// Variables decodes the environment into a flat mapping.
func (c *Config) Variables() (Variables, error) {
	text, err := c.src.Text()
	if err != nil {
		return nil, err
	}
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%s: %w: invalid JSON", c.src.Path, ErrFormat)
	}
	doc := gjson.Parse(text)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%s: %w: top-level value is %s", c.src.Path, ErrFormat, describe(doc))
	}
	return decode(doc).(map[string]any), nil
}

func decode(v gjson.Result) any {
	switch {
	case v.IsObject():
		m := make(map[string]any)
		v.ForEach(func(key, value gjson.Result) bool {
			m[key.String()] = decode(value)
			return true
		})
		return m
	case v.IsArray():
		arr := []any{}
		v.ForEach(func(_, value gjson.Result) bool {
			arr = append(arr, decode(value))
			return true
		})
		return arr
	}

	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return nil
	}
}

func describe(v gjson.Result) string {
	switch {
	case v.IsArray():
		return "an array"
	case v.Type == gjson.String:
		return "a string"
	case v.Type == gjson.Number:
		return "a number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "a boolean"
	default:
		return "null"
	}
}

// ParseValue decodes s as JSON when it is valid JSON and returns it as a
// plain string otherwise.
func ParseValue(s string) any {
	if s != "" && gjson.Valid(s) {
		return decode(gjson.Parse(s))
	}
	return s
}

// ParseAssignments turns "key=value" arguments into variables.
func ParseAssignments(args []string) (Variables, error) {
	vars := make(Variables, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("invalid argument %q: expected key=value", arg)
		}
		vars[key] = ParseValue(value)
	}
	return vars, nil
}

// Merge combines an optional environment with extra arguments. Extra
// arguments win on conflict. Environment failures are returned as is.
func Merge(cfg *Config, extra Variables) (Variables, error) {
	var envVars Variables
	if cfg != nil {
		vars, err := cfg.Variables()
		if err != nil {
			return nil, err
		}
		envVars = vars
	}
	return MergeVariables(envVars, extra), nil
}

func MergeVariables(sources ...Variables) Variables {
	result := make(Variables)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// EnvironmentPath resolves an environment name to a file. Names that look
// like paths are used directly.
func EnvironmentPath(dir, name string) string {
	if strings.HasSuffix(name, envExt) || strings.ContainsRune(name, filepath.Separator) || strings.Contains(name, "/") {
		return name
	}
	return filepath.Join(dir, EnvDir, name+envExt)
}

// ListEnvironments returns the environment names available in dir.
func ListEnvironments(dir string) ([]string, error) {
	envDir := filepath.Join(dir, EnvDir)

	entries, err := os.ReadDir(envDir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading environments: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), envExt) {
			names = append(names, strings.TrimSuffix(entry.Name(), envExt))
		}
	}
	sort.Strings(names)
	return names, nil
}

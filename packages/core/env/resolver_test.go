package env

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/sethetter/reqq/packages/builtin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func TestResolver_Render(t *testing.T) {
	vars := Variables{
		"headerVal": "lolwat",
		"shwat":     json.Number("5"),
		"asdf":      "thing",
		"flag":      false,
		"empty":     nil,
		"creds":     "user:pass",
		"user": map[string]any{
			"id":   json.Number("42"),
			"tags": []any{"a", "b"},
		},
		"dashed-name": "ok",
	}
	r := NewResolver(vars, WithLookupEnv(func(name string) (string, bool) {
		if name == "TOKEN" {
			return "s3cret", true
		}
		return "", false
	}))

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "header and body",
			input:    "POST https://example.com\nx-example-header: {{ headerVal }}\n\nrequest {{ shwat }} content",
			expected: "POST https://example.com\nx-example-header: lolwat\n\nrequest 5 content",
		},
		{"no whitespace", "{{asdf}}", "thing"},
		{"no placeholders", "GET https://example.com/\nAccept: */*\n", "GET https://example.com/\nAccept: */*\n"},
		{"empty input", "", ""},
		{"boolean", "flag={{ flag }}", "flag=false"},
		{"null renders empty", "[{{ empty }}]", "[]"},
		{"nested path", "/users/{{ user.id }}", "/users/42"},
		{"array index", "{{ user.tags.1 }}", "b"},
		{"object as json", "{{ user }}", `{"id":42,"tags":["a","b"]}`},
		{"dashed name", "{{ dashed-name }}", "ok"},
		{"triple stash", "{{{ headerVal }}}", "lolwat"},
		{"no html escaping", "{{ creds }}", "user:pass"},
		{"comment", "a{{! ignore me }}b", "ab"},
		{"escaped braces", `\{{ asdf }}`, "{{ asdf }}"},
		{"process env", "Bearer {{ $TOKEN }}", "Bearer s3cret"},
		{"function with variable", "{{ base64(creds) }}", "dXNlcjpwYXNz"},
		{"function with literal", `{{ base64("a") }}`, "YQ=="},
		{"function with number", "{{ random(3, 3) }}", "3"},
		{"many on one line", "{{ asdf }}-{{ shwat }}-{{ asdf }}", "thing-5-thing"},
		{"lone braces", "{ not } a } placeholder {", "{ not } a } placeholder {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolver_RenderErrors(t *testing.T) {
	r := NewResolver(Variables{"name": "x", "obj": map[string]any{"a": "b"}}, WithLookupEnv(noEnv))

	tests := []struct {
		name  string
		input string
		kind  error
	}{
		{"unbound", "hello {{ missing }}", ErrUnbound},
		{"unbound nested", "{{ obj.nope }}", ErrUnbound},
		{"unset env var", "{{ $NOPE }}", ErrUnbound},
		{"unbound function argument", "{{ base64(missing) }}", ErrUnbound},
		{"unclosed", "GET https://x/{{ name", ErrSyntax},
		{"empty placeholder", "{{ }}", ErrSyntax},
		{"block helper", "{{#if name}}yes{{/if}}", ErrSyntax},
		{"partial", "{{> header }}", ErrSyntax},
		{"else", "{{ else }}", ErrSyntax},
		{"not a name", "{{ two words }}", ErrSyntax},
		{"unknown function", "{{ nope() }}", builtin.ErrUnknownFunction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.input)
			require.Error(t, err)
			assert.Empty(t, got)
			assert.ErrorIs(t, err, ErrTemplate)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestResolver_ErrorPosition(t *testing.T) {
	r := NewResolver(nil, WithLookupEnv(noEnv))

	_, err := r.Render("GET https://example.com\nx-h: {{ token }}")
	require.Error(t, err)

	var tmplErr *TemplateError
	require.True(t, errors.As(err, &tmplErr))
	assert.Equal(t, 2, tmplErr.Line)
	assert.Equal(t, 6, tmplErr.Column)
	assert.Equal(t, "token", tmplErr.Expr)
	assert.Contains(t, err.Error(), "line 2, column 6")
	assert.Contains(t, err.Error(), "token")
}

func TestResolver_CustomFunctions(t *testing.T) {
	funcs := builtin.NewRegistry()
	funcs.Register("upper", func(args []string) (string, error) {
		if len(args) != 1 {
			return "", errors.New("upper takes one argument")
		}
		out := []byte(args[0])
		for i, c := range out {
			if c >= 'a' && c <= 'z' {
				out[i] = c - 32
			}
		}
		return string(out), nil
	})

	r := NewResolver(Variables{"name": "reqq"}, WithFunctions(funcs))
	got, err := r.Render("{{ upper(name) }}")
	require.NoError(t, err)
	assert.Equal(t, "REQQ", got)
}

func TestResolver_Lookup(t *testing.T) {
	r := NewResolver(Variables{"user": map[string]any{"name": "ada"}})

	v, ok := r.Lookup("user.name")
	assert.True(t, ok)
	assert.Equal(t, "ada", v)

	_, ok = r.Lookup("user.age")
	assert.False(t, ok)
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected string
	}{
		{"string", "abc", "abc"},
		{"json number", json.Number("1.50"), "1.50"},
		{"float", 2.5, "2.5"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"nil", nil, ""},
		{"array", []any{"a", json.Number("1")}, `["a",1]`},
		{"object", map[string]any{"k": "v"}, `{"k":"v"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Stringify(tt.in))
		})
	}
}

func TestRender_WithMergedEnvironment(t *testing.T) {
	text := "POST https://example.com\nx-example-header: {{ headerVal }}\n\nrequest {{ shwat }} content {{ asdf }}"

	cfg := NewConfigFromText("dev.json", `{"headerVal": "lolwat", "shwat": 5}`)
	vars, err := Merge(cfg, Variables{"asdf": "thing"})
	require.NoError(t, err)

	got, err := NewResolver(vars).Render(text)
	require.NoError(t, err)
	assert.Equal(t, "POST https://example.com\nx-example-header: lolwat\n\nrequest 5 content thing", got)

	// Without the extra argument the same template fails.
	vars, err = Merge(NewConfigFromText("dev.json", `{"headerVal": "lolwat", "shwat": 5}`), nil)
	require.NoError(t, err)
	_, err = NewResolver(vars).Render(text)
	assert.ErrorIs(t, err, ErrUnbound)
}

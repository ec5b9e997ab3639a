// Package builtin provides the functions callable from request templates.
//
// Available functions:
//   - uuid(): random UUID v4
//   - now(): current UTC time, RFC 3339
//   - date(layout): current UTC date, Go layout, default 2006-01-02
//   - timestamp(), timestampMs(): Unix time in seconds or milliseconds
//   - random(min, max): random integer in [min, max]
//   - randomString(length): random alphanumeric string
//   - base64(value), urlEncode(value), sha256(value)
//
// Functions are invoked as {{ uuid() }} or {{ base64("user:pass") }}.
package builtin

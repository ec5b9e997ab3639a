// Package http sends parsed requests over one reusable net/http client.
//
// It wraps the standard library's http package with:
//   - Configurable timeouts, redirects, TLS verification and proxy
//   - Default headers that never override a request's own headers
//   - Request building from a parsed request
//   - Response handling and body reading
package http

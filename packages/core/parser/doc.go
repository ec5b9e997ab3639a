// Package parser turns expanded request-file text into a Request.
//
// A request file has three zones, read in order:
//   - the request line: "<METHOD> <URL>"
//   - header lines matching "Name: value"
//   - the body: every line from the first non-header line to the end
//
// The first line that is not a header starts the body, even when it is the
// blank separator line, so a body after a blank line begins with "\n".
package parser

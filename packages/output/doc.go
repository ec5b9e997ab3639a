// Package output renders responses and prepared requests.
//
// Supported output formats:
//   - console: status line, headers and body, colored on a terminal
//   - json: machine-readable request and response details
//   - body: the response body only, for piping
//
// Every format honors a gjson query that narrows the output to one value of
// a JSON response body.
package output

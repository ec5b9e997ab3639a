// Package cmd implements the reqq CLI commands using Cobra.
//
// Available commands:
//   - reqq <request> [key=value ...]: Render, send and print a request
//   - list: Print the names of all request files
//   - validate: Render and parse request files without sending them
//   - env: List the available environments
//   - init: Create a .reqq directory with example files
//   - import curl: Convert a curl command into a request file
//   - completion: Generate shell completion scripts
//   - version: Show reqq version information
//
// Running a request supports dry runs, several output formats, gjson
// queries over the response body and a watch mode that re-sends the
// request whenever its file or environment changes.
package cmd

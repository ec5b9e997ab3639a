// Package runner executes a request file.
//
// Execution runs in stages: load the file, merge variables, render the
// original text, parse the rendered request and send it. A failure in any
// stage is returned as a *StageError naming that stage. Prepare stops
// before sending, which is what dry runs and validation use.
package runner

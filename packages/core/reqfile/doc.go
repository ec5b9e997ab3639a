// Package reqfile models a single .reqq request file: its lazily read text,
// its name relative to the request directory, and the request it parses to
// once rendered with a set of variables.
package reqfile

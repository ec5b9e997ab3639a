// Package source holds file contents that are read lazily, at most once.
package source

import (
	"fmt"
	"os"
)

// ReadFunc reads a whole file. os.ReadFile satisfies it.
type ReadFunc func(path string) ([]byte, error)

type state int

const (
	unloaded state = iota
	loaded
)

// Source is either unloaded or loaded with the text of Path. Once loaded the
// text never changes.
type Source struct {
	Path  string
	state state
	text  string
	read  ReadFunc
}

type Option func(*Source)

// WithReader replaces os.ReadFile.
func WithReader(fn ReadFunc) Option {
	return func(s *Source) {
		s.read = fn
	}
}

func New(path string, opts ...Option) *Source {
	s := &Source{
		Path: path,
		read: os.ReadFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewLoaded returns a source that already holds text and never reads Path.
func NewLoaded(path, text string) *Source {
	return &Source{
		Path:  path,
		state: loaded,
		text:  text,
		read:  os.ReadFile,
	}
}

// Text returns the contents, reading the file on first use.
func (s *Source) Text() (string, error) {
	if s.state == loaded {
		return s.text, nil
	}
	data, err := s.read(s.Path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", s.Path, err)
	}
	s.text = string(data)
	s.state = loaded
	return s.text, nil
}

func (s *Source) Loaded() bool {
	return s.state == loaded
}

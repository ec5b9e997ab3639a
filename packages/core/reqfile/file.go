package reqfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sethetter/reqq/packages/core/env"
	"github.com/sethetter/reqq/packages/core/parser"
	"github.com/sethetter/reqq/packages/core/source"
)

// Ext is the extension of request files.
const Ext = ".reqq"

// DefaultDir is where request files live unless told otherwise.
const DefaultDir = ".reqq"

// File is a request file. Its text is read once and never replaced by the
// rendered output, so it can be parsed again with other variables.
type File struct {
	src    *source.Source
	parsed *parser.Request
}

func NewFile(path string, opts ...source.Option) *File {
	return &File{src: source.New(path, opts...)}
}

// NewFileFromText returns a file whose text is already known.
func NewFileFromText(path, text string) *File {
	return &File{src: source.NewLoaded(path, text)}
}

func (f *File) Path() string {
	return f.src.Path
}

// Load reads the file if it has not been read yet.
func (f *File) Load() error {
	_, err := f.src.Text()
	return err
}

// Source returns the original, unrendered text.
func (f *File) Source() (string, error) {
	return f.src.Text()
}

// Name is the path relative to dir without the extension, slash separated.
// A path outside dir keeps its full form.
func (f *File) Name(dir string) string {
	name := filepath.ToSlash(f.src.Path)
	prefix := filepath.ToSlash(filepath.Clean(dir))
	if prefix != "." {
		name = strings.TrimPrefix(name, prefix)
	}
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimLeft(name, "/")
	return strings.TrimSuffix(name, Ext)
}

// Render expands the original text with vars.
func (f *File) Render(vars env.Variables, opts ...env.ResolverOption) (string, error) {
	text, err := f.src.Text()
	if err != nil {
		return "", err
	}
	return env.NewResolver(vars, opts...).Render(text)
}

// Parse renders the original text with vars and parses the result. A failed
// parse leaves any earlier result in place.
func (f *File) Parse(vars env.Variables, opts ...env.ResolverOption) (*parser.Request, error) {
	rendered, err := f.Render(vars, opts...)
	if err != nil {
		return nil, err
	}
	req, err := parser.Parse(rendered, f.src.Path)
	if err != nil {
		return nil, err
	}
	f.parsed = req
	return req, nil
}

// Parsed returns the last successfully parsed request, or nil.
func (f *File) Parsed() *parser.Request {
	return f.parsed
}

// Resolve maps a request name to its file under dir. Names that already
// point at an existing file are used as they are.
func Resolve(dir, name string) string {
	if strings.HasSuffix(name, Ext) {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return filepath.Join(dir, filepath.FromSlash(strings.TrimSuffix(name, Ext))+Ext)
}

// List returns every request file under dir, sorted by path.
func List(dir string) ([]*File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == env.EnvDir {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == Ext {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	sort.Strings(paths)
	files := make([]*File, len(paths))
	for i, p := range paths {
		files[i] = NewFile(p)
	}
	return files, nil
}

// Find returns the file called name under dir. A missing request is an
// error wrapping fs.ErrNotExist.
func Find(dir, name string) (*File, error) {
	path := Resolve(dir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("request %q not found in %s: %w", name, dir, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}
	return NewFile(path), nil
}

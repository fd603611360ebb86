package sheet

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnsupportedFormat is returned when no loader handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

// Table is the first sheet of a source file: a header row plus data rows.
// Rows are padded or truncated to the header width.
type Table struct {
	Path    string
	Headers []string
	Rows    [][]string
}

// FromRows splits raw rows into headers and data, normalizing row widths.
func FromRows(path string, raw [][]string) Table {
	t := Table{Path: path}
	if len(raw) == 0 {
		return t
	}

	t.Headers = append([]string(nil), raw[0]...)
	width := len(t.Headers)
	t.Rows = make([][]string, 0, len(raw)-1)
	for _, r := range raw[1:] {
		row := make([]string, width)
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Loader reads the first sheet of one spreadsheet format.
type Loader interface {
	// Extension is the lower-case file extension handled, including the dot.
	Extension() string
	Load(ctx context.Context, path string) (Table, error)
}

// Registry keeps a mapping from file extensions to loaders.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry builds a registry with the given loaders.
func NewRegistry(loaders ...Loader) *Registry {
	r := &Registry{loaders: map[string]Loader{}}
	for _, l := range loaders {
		r.Register(l)
	}
	return r
}

// Register adds or replaces a loader implementation.
func (r *Registry) Register(loader Loader) {
	if r.loaders == nil {
		r.loaders = map[string]Loader{}
	}
	r.loaders[strings.ToLower(loader.Extension())] = loader
}

// Supports reports whether a loader exists for the path's extension.
func (r *Registry) Supports(path string) bool {
	_, err := r.Resolve(path)
	return err == nil
}

// Resolve returns the loader for the path's extension.
func (r *Registry) Resolve(path string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if loader, ok := r.loaders[ext]; ok {
		return loader, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Load dispatches to the loader registered for the path's extension.
func (r *Registry) Load(ctx context.Context, path string) (Table, error) {
	loader, err := r.Resolve(path)
	if err != nil {
		return Table{}, err
	}
	return loader.Load(ctx, path)
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"GradeConsolidator/internal/ports"
)

// ErrInputDir marks a missing or unusable input directory. It aborts the run.
var ErrInputDir = errors.New("input directory unavailable")

// Matcher reports whether a file can be ingested.
type Matcher interface {
	Supports(path string) bool
}

// DirSource lists the supported spreadsheet files of one directory.
type DirSource struct {
	dir     string
	matcher Matcher
	logger  *slog.Logger
}

var _ ports.SourceLister = (*DirSource)(nil)

// NewDirSource binds the input directory to the registry of readable formats.
func NewDirSource(dir string, matcher Matcher, log *slog.Logger) *DirSource {
	return &DirSource{
		dir:     dir,
		matcher: matcher,
		logger:  log,
	}
}

// List returns supported files in lexical order. Subdirectories and files
// with other extensions are skipped.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputDir, s.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInputDir, s.dir)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputDir, s.dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if s.matcher != nil && !s.matcher.Supports(path) {
			s.debug("skip unsupported file", "file", entry.Name())
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)

	s.debug("input files listed", "dir", s.dir, "count", len(files))
	return files, nil
}

func (s *DirSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

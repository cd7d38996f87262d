package finder

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// DefaultIncludes are the patterns used when no include pattern is given.
var DefaultIncludes = []string{"**/*.html", "**/*.qute", "**/*.txt"}

// TemplateFinder is responsible for finding template files in a directory
type TemplateFinder interface {
	// FindTemplates finds all template files under dir matching the finder's patterns
	FindTemplates(ctx context.Context, dir string) ([]FileInfo, error)
}

// FileInfo represents information about a found template file
type FileInfo struct {
	// Path is slash separated and relative to the searched directory
	Path     string
	Content  []byte
	FileType string
}

// DefaultFinder is the default implementation of TemplateFinder
type DefaultFinder struct {
	fs      afero.Fs
	include []string
	exclude []string
}

// NewDefaultFinder creates a new DefaultFinder. Patterns use doublestar syntax and are
// matched against slash separated paths relative to the searched directory.
func NewDefaultFinder(fs afero.Fs, include, exclude []string) (*DefaultFinder, error) {
	if len(include) == 0 {
		include = DefaultIncludes
	}
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid glob pattern %q", p)
		}
	}
	return &DefaultFinder{fs: fs, include: include, exclude: exclude}, nil
}

// FindTemplates implements TemplateFinder
func (f *DefaultFinder) FindTemplates(ctx context.Context, dir string) ([]FileInfo, error) {
	if _, err := f.fs.Stat(dir); err != nil {
		return nil, errors.Errorf("reading template directory %s: %w", dir, err)
	}

	var found []FileInfo
	err := afero.Walk(f.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if !matchAny(f.include, rel) || matchAny(f.exclude, rel) {
			return nil
		}

		content, err := afero.ReadFile(f.fs, path)
		if err != nil {
			return errors.Errorf("reading template %s: %w", path, err)
		}

		found = append(found, FileInfo{
			Path:     rel,
			Content:  content,
			FileType: strings.TrimPrefix(filepath.Ext(rel), "."),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("finding templates in %s: %w", dir, err)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

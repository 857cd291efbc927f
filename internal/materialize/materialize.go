// Package materialize writes parsed file entries to a filesystem.
package materialize

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"devai/internal/response"
	"devai/logging"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	dirPerm  os.FileMode = 0755
	filePerm os.FileMode = 0644
)

// Result describes the outcome of writing one entry
type Result struct {
	Path    string // path as written, relative to the filesystem root
	Created bool   // false when an existing file was overwritten
	Added   int    // lines added relative to the previous content
	Removed int    // lines removed relative to the previous content
	Err     error
}

// OK reports whether the write succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Summary renders the result for progress output.
func (r Result) Summary() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: %v", r.Path, r.Err)
	case r.Created:
		return fmt.Sprintf("%s created", r.Path)
	default:
		return fmt.Sprintf("%s updated (+%d -%d)", r.Path, r.Added, r.Removed)
	}
}

// Materializer writes file entries below a filesystem root
type Materializer struct {
	fs     billy.Filesystem
	logger *slog.Logger
}

// New creates a Materializer over fs. A nil logger discards log output.
func New(fs billy.Filesystem, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Materializer{fs: fs, logger: logger}
}

// NewOS creates a Materializer rooted at dir on the local disk.
func NewOS(dir string, logger *slog.Logger) *Materializer {
	return New(osfs.New(dir), logger)
}

// WriteFiles writes every entry below root, which may be empty. Entries are
// independent: a failure is logged and recorded in its Result and the next
// entry is still written. Existing files are overwritten.
func (m *Materializer) WriteFiles(root string, entries []response.FileEntry) []Result {
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		result := m.write(root, entry)
		if result.Err != nil {
			m.logger.Error("file write failed", "path", result.Path, "error", result.Err)
		} else {
			m.logger.Info("file written",
				"path", result.Path,
				"created", result.Created,
				"added", result.Added,
				"removed", result.Removed)
		}
		results = append(results, result)
	}
	return results
}

func (m *Materializer) write(root string, entry response.FileEntry) Result {
	target := filepath.Join(root, entry.Path)
	result := Result{Path: target, Created: true}

	if entry.Path == "" {
		result.Err = errors.New("empty file path")
		return result
	}

	previous, err := util.ReadFile(m.fs, target)
	switch {
	case err == nil:
		result.Created = false
		result.Added, result.Removed = lineDelta(string(previous), entry.Content)
	case errors.Is(err, os.ErrNotExist):
	default:
		result.Err = fmt.Errorf("failed to read existing file: %w", err)
		return result
	}

	if dir := filepath.Dir(target); dir != "." && dir != "" {
		if err := m.fs.MkdirAll(dir, dirPerm); err != nil {
			result.Err = fmt.Errorf("failed to create directory %s: %w", dir, err)
			return result
		}
	}

	if err := util.WriteFile(m.fs, target, []byte(entry.Content), filePerm); err != nil {
		result.Err = fmt.Errorf("failed to write file: %w", err)
	}
	return result
}

// WrittenPaths returns the paths of the successful results.
func WrittenPaths(results []Result) []string {
	var paths []string
	for _, r := range results {
		if r.OK() {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

// lineDelta counts added and removed lines between two versions of a file.
func lineDelta(before, after string) (added, removed int) {
	if before == after {
		return 0, 0
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			removed += countLines(d.Text)
		}
	}
	return added, removed
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

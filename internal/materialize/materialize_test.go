package materialize

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"devai/internal/response"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles_CreatesParents(t *testing.T) {
	fs := memfs.New()
	m := New(fs, nil)

	results := m.WriteFiles("proj", []response.FileEntry{
		{Path: "a/b/c.txt", Content: "hello\nworld"},
	})

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.True(t, results[0].Created)
	assert.Equal(t, filepath.Join("proj", "a", "b", "c.txt"), results[0].Path)

	info, err := fs.Stat(filepath.Join("proj", "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	data, err := util.ReadFile(fs, filepath.Join("proj", "a", "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", string(data))
}

func TestWriteFiles_NoRoot(t *testing.T) {
	fs := memfs.New()
	m := New(fs, nil)

	results := m.WriteFiles("", []response.FileEntry{{Path: "README.md", Content: "# hi"}})

	require.Len(t, results, 1)
	assert.Equal(t, "README.md", results[0].Path)
	data, err := util.ReadFile(fs, "README.md")
	require.NoError(t, err)
	assert.Equal(t, "# hi", string(data))
}

func TestWriteFiles_OverwritesWithStats(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "main.go", []byte("package main\n\nfunc a() {}\n"), 0644))
	m := New(fs, nil)

	results := m.WriteFiles("", []response.FileEntry{
		{Path: "main.go", Content: "package main\n\nfunc b() {}\nfunc c() {}\n"},
	})

	require.Len(t, results, 1)
	r := results[0]
	require.NoError(t, r.Err)
	assert.False(t, r.Created)
	assert.Equal(t, 2, r.Added)
	assert.Equal(t, 1, r.Removed)
	assert.Equal(t, "main.go updated (+2 -1)", r.Summary())

	data, err := util.ReadFile(fs, "main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc b() {}\nfunc c() {}\n", string(data))
}

// failingFS rejects writes to one path.
type failingFS struct {
	billy.Filesystem
	failPath string
}

func (f *failingFS) OpenFile(name string, flag int, perm os.FileMode) (billy.File, error) {
	if name == f.failPath && flag&os.O_CREATE != 0 {
		return nil, errors.New("disk full")
	}
	return f.Filesystem.OpenFile(name, flag, perm)
}

func TestWriteFiles_FailureDoesNotStopBatch(t *testing.T) {
	fs := &failingFS{Filesystem: memfs.New(), failPath: filepath.Join("demo", "b.txt")}
	m := New(fs, nil)

	results := m.WriteFiles("demo", []response.FileEntry{
		{Path: "a.txt", Content: "a"},
		{Path: "b.txt", Content: "b"},
		{Path: "c.txt", Content: "c"},
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.ErrorContains(t, results[1].Err, "disk full")
	assert.True(t, results[2].OK())
	assert.Equal(t, []string{filepath.Join("demo", "a.txt"), filepath.Join("demo", "c.txt")}, WrittenPaths(results))
}

func TestWriteFiles_EmptyPath(t *testing.T) {
	m := New(memfs.New(), nil)

	results := m.WriteFiles("", []response.FileEntry{{Path: "", Content: "x"}})

	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}

func TestWriteFiles_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	m := NewOS(dir, nil)

	raw := "FILE: src/x.ts\n```typescript\nconst a=1;\n```\nFILE: src/y.ts\n```typescript\nconst b=2;\n```"
	results := m.WriteFiles("demo", response.Parse(raw))

	require.Len(t, results, 2)
	for _, r := range results {
		require.NoError(t, r.Err)
	}

	x, err := os.ReadFile(filepath.Join(dir, "demo", "src", "x.ts"))
	require.NoError(t, err)
	assert.Equal(t, "const a=1;", string(x))

	y, err := os.ReadFile(filepath.Join(dir, "demo", "src", "y.ts"))
	require.NoError(t, err)
	assert.Equal(t, "const b=2;", string(y))
}

func TestLineDelta(t *testing.T) {
	added, removed := lineDelta("a\nb\n", "a\nb\n")
	assert.Equal(t, 0, added)
	assert.Equal(t, 0, removed)

	added, removed = lineDelta("", "one\ntwo")
	assert.Equal(t, 2, added)
	assert.Equal(t, 0, removed)
}

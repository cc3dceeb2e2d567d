package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAllReplacesFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "a", "out.ts")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o644))

	files := []*file{
		{path: existing, data: []byte("new a")},
		{path: filepath.Join(dir, "b", "src", "out.ts"), data: []byte("new b")},
	}
	require.NoError(t, writeAll(files))

	for _, f := range files {
		data, err := os.ReadFile(f.path)
		require.NoError(t, err)
		assert.Equal(t, string(f.data), string(data))
		entries, err := os.ReadDir(filepath.Dir(f.path))
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temp file left in %s", filepath.Dir(f.path))
	}
}

func TestWriteAllStagingFailureLeavesDestinations(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	okPath := filepath.Join(dir, "ok", "out.ts")
	files := []*file{
		{path: okPath, data: []byte("a")},
		{path: filepath.Join(blocker, "out.ts"), data: []byte("b")},
	}
	require.Error(t, writeAll(files))

	_, err := os.Stat(okPath)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(filepath.Dir(okPath))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteAllRestoresOnRenameFailure(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a", "out.ts")
	second := filepath.Join(dir, "b", "out.ts")
	fresh := filepath.Join(dir, "c", "out.ts")
	for _, p := range []string{first, second} {
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("old "+p), 0o644))
	}

	// Fail moving the staged file over the second destination, after the
	// first destination and the new third file have been placed.
	rename = func(oldpath, newpath string) error {
		if newpath == second && filepath.Ext(oldpath) == ".tmp" {
			return errors.New("disk full")
		}
		return os.Rename(oldpath, newpath)
	}
	t.Cleanup(func() { rename = os.Rename })

	files := []*file{
		{path: first, data: []byte("new a")},
		{path: fresh, data: []byte("new c")},
		{path: second, data: []byte("new b")},
	}
	err := writeAll(files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	for _, p := range []string{first, second} {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, "old "+p, string(data))
	}
	_, err = os.Stat(fresh)
	assert.True(t, os.IsNotExist(err))

	for _, d := range []string{"a", "b", "c"} {
		entries, err := os.ReadDir(filepath.Join(dir, d))
		require.NoError(t, err)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		if d == "c" {
			assert.Empty(t, names)
		} else {
			assert.Equal(t, []string{"out.ts"}, names, "leftovers in %s", d)
		}
	}
}

func TestCommandFormatter(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "out.ts")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := CommandFormatter{Command: []string{"sh", "-c", `printf formatted > "$1"`, "sh"}}
		require.NoError(t, f.Format(ctx, path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "formatted", string(data))
	})

	t.Run("Failure", func(t *testing.T) {
		f := CommandFormatter{Command: []string{"sh", "-c", "echo boom >&2; exit 3", "sh"}}
		err := f.Format(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sh exited 3: boom")
	})

	t.Run("Missing", func(t *testing.T) {
		f := CommandFormatter{Command: []string{"graphql-ops-no-such-formatter"}}
		err := f.Format(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "running graphql-ops-no-such-formatter")
	})

	t.Run("Empty", func(t *testing.T) {
		assert.NoError(t, CommandFormatter{}.Format(ctx, path))
	})
}

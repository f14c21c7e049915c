package providers

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	billyutil "github.com/go-git/go-billy/v5/util"
	"github.com/overfs/overfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T, files map[string]string) billy.Filesystem {
	t.Helper()
	fsys := memfs.New()
	for name, content := range files {
		require.NoError(t, billyutil.WriteFile(fsys, name, []byte(content), 0o644))
	}
	return fsys
}

func TestLocalDir_OpenDirectory(t *testing.T) {
	t.Parallel()

	fsys := newTestFS(t, map[string]string{
		"a.txt":     "alpha",
		"sub/b.txt": "beta",
		"sub/c.txt": "gamma",
	})
	p := NewLocalDirFS("proj", fsys)

	entries, err := p.OpenDirectory(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byPath := make(map[string]overfs.DirEntry, len(entries))
	var paths []string
	for _, e := range entries {
		byPath[e.RelPath] = e
		paths = append(paths, e.RelPath)
	}
	assert.ElementsMatch(t, []string{"proj/a.txt", "proj/sub/b.txt", "proj/sub/c.txt"}, paths)

	a := byPath["proj/a.txt"]
	assert.Equal(t, []byte("alpha"), a.Blob.Bytes())
	require.NotNil(t, a.Handle)
	assert.Equal(t, "proj", a.Handle.Name(), "top-level files carry the selection root's handle")

	b := byPath["proj/sub/b.txt"]
	c := byPath["proj/sub/c.txt"]
	require.NotNil(t, b.Handle)
	assert.Equal(t, "sub", b.Handle.Name())
	assert.Same(t, b.Handle, c.Handle, "files in one directory share a handle")
	assert.NotEqual(t, a.Handle.ID(), b.Handle.ID())
}

func TestLocalDir_OpenDirectoryNonRecursive(t *testing.T) {
	t.Parallel()

	fsys := newTestFS(t, map[string]string{
		"top.txt":      "t",
		"deep/down.md": "d",
	})
	p := NewLocalDirFS("proj", fsys)

	entries, err := p.OpenDirectory(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "proj/top.txt", entries[0].RelPath)
}

func TestLocalDir_OpenFile(t *testing.T) {
	t.Parallel()

	// pick paths are relative to the provider root
	fsys := newTestFS(t, map[string]string{"todo.txt": "buy milk"})
	p := NewLocalDirFS("notes", fsys).WithPick("todo.txt")

	pick, err := p.OpenFile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "todo.txt", pick.Name)
	assert.Equal(t, []byte("buy milk"), pick.Blob.Bytes())
	assert.Equal(t, "text/plain; charset=utf-8", pick.Blob.ContentType())
}

func TestLocalDir_OpenFileNoSelection(t *testing.T) {
	t.Parallel()

	p := NewLocalDirFS("proj", memfs.New())

	_, err := p.OpenFile(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, overfs.ErrCancelled)
}

func TestLocalDirHandle_CreateSubdirectory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := newTestFS(t, map[string]string{"x.txt": "x"})
	p := NewLocalDirFS("proj", fsys)

	entries, err := p.OpenDirectory(ctx, true)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	root := entries[0].Handle

	sub, err := root.CreateSubdirectory(ctx, "sub", true)
	require.NoError(t, err)
	assert.Equal(t, "sub", sub.Name())

	info, err := fsys.Stat("sub")
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "directory must be created in the real store")

	// nesting goes through the child handle
	inner, err := sub.CreateSubdirectory(ctx, "inner", true)
	require.NoError(t, err)
	assert.Equal(t, "inner", inner.Name())
	info, err = fsys.Stat("sub/inner")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLocalDirHandle_CreateSubdirectoryExisting(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := newTestFS(t, map[string]string{"x.txt": "x", "have/y.txt": "y"})
	p := NewLocalDirFS("proj", fsys)

	entries, err := p.OpenDirectory(ctx, true)
	require.NoError(t, err)

	var root overfs.DirHandle
	for _, e := range entries {
		if e.RelPath == "proj/x.txt" {
			root = e.Handle
		}
	}
	require.NotNil(t, root)

	// existing directory is returned without error
	h, err := root.CreateSubdirectory(ctx, "have", true)
	require.NoError(t, err)
	assert.Equal(t, "have", h.Name())

	// name collision with a file fails
	_, err = root.CreateSubdirectory(ctx, "x.txt", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, overfs.ErrHandleCreate)

	// missing without createIfAbsent fails
	_, err = root.CreateSubdirectory(ctx, "absent", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, overfs.ErrNotFound)
}

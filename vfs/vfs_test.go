package vfs

import (
	"context"
	"testing"

	"github.com/overfs/overfs"
	"github.com/overfs/overfs/config"
	"github.com/overfs/overfs/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestVfs(provider overfs.StorageProvider) *Vfs {
	return New(config.NewDefaultConfig(), provider)
}

func TestVfs_MkdirThenLs(t *testing.T) {
	t.Parallel()

	v := newTestVfs(nil)
	ctx := context.Background()

	node, err := v.Mkdir(ctx, "/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, "/a/b/c", node.Path())

	names, err := v.Ls("/a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, names)
}

func TestVfs_OpenPathRoundTrip(t *testing.T) {
	t.Parallel()

	v := newTestVfs(nil)
	ctx := context.Background()

	paths := []string{"/a/b/c", "/a/b/d", "/x", "/a/y"}
	for _, p := range paths {
		_, err := v.Mkdir(ctx, p)
		require.NoError(t, err)
	}
	for _, p := range paths {
		node, err := v.Open(p)
		require.NoError(t, err)
		assert.Equal(t, NormalizePath(p), node.Path())
	}
}

func TestVfs_WriteFileInMemory(t *testing.T) {
	t.Parallel()

	v := newTestVfs(nil)
	ctx := context.Background()

	node, err := v.WriteFile(ctx, "/a", "note.txt", []byte("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/a/note.txt", node.Path())
	assert.Equal(t, TypeFile, node.Type())
	require.NotNil(t, node.Blob())
	assert.Equal(t, []byte("hello"), node.Blob().Bytes())
	assert.Equal(t, "text/plain", node.Blob().ContentType())

	opened, err := v.Open("/a/note.txt")
	require.NoError(t, err)
	assert.Same(t, node, opened)
}

func TestVfs_OpenMissing(t *testing.T) {
	t.Parallel()

	v := newTestVfs(nil)

	_, err := v.Open("/nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, overfs.ErrNotFound)

	_, err = v.Ls("/nope")
	assert.ErrorIs(t, err, overfs.ErrNotFound)
}

func TestVfs_LsOrderStable(t *testing.T) {
	t.Parallel()

	v := newTestVfs(nil)
	ctx := context.Background()

	for _, p := range []string{"/d/z", "/d/a", "/d/m"} {
		_, err := v.Mkdir(ctx, p)
		require.NoError(t, err)
	}
	// unrelated operations must not disturb listing order
	_, err := v.WriteFile(ctx, "/other", "f.txt", nil, "")
	require.NoError(t, err)

	names, err := v.Ls("/d")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, names)
}

func TestVfs_MountLocalFile(t *testing.T) {
	t.Parallel()

	provider := &mocks.MockStorageProvider{}
	provider.On("OpenFile", mock.Anything).Return(&overfs.FilePick{
		Name: "readme.txt",
		Blob: overfs.NewBlob([]byte("hi"), "text/plain"),
	}, nil)

	v := newTestVfs(provider)
	node, err := v.MountLocalFile(context.Background(), "/docs")
	require.NoError(t, err)
	assert.Equal(t, "/docs/readme.txt", node.Path())
	assert.Equal(t, TypeFile, node.Type())

	mounts := v.Mounts()
	require.Len(t, mounts, 1)
	assert.Equal(t, "/docs/readme.txt", mounts[0].Path)
	assert.Same(t, node, mounts[0].Root)
}

func TestVfs_MountLocalFileCancelled(t *testing.T) {
	t.Parallel()

	provider := &mocks.MockStorageProvider{}
	provider.On("OpenFile", mock.Anything).Return(nil, overfs.ErrCancelled)

	v := newTestVfs(provider)
	_, err := v.MountLocalFile(context.Background(), "/docs")
	require.Error(t, err)
	assert.ErrorIs(t, err, overfs.ErrCancelled)
	assert.Empty(t, v.Mounts(), "no mount is registered on failure")
}

func TestVfs_MountLocalFolder(t *testing.T) {
	t.Parallel()

	handle := &mocks.MockDirHandle{}
	provider := &mocks.MockStorageProvider{}
	provider.On("OpenDirectory", mock.Anything, true).Return([]overfs.DirEntry{
		{
			RelPath: "proj/x.txt",
			Blob:    overfs.NewBlob([]byte("data"), "text/plain"),
			Handle:  handle,
		},
	}, nil)

	v := newTestVfs(provider)
	node, err := v.MountLocalFolder(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "/proj", node.Path())
	assert.Equal(t, TypeFolder, node.Type())
	assert.Equal(t, overfs.DirHandle(handle), node.Handle(), "handle attached to the top-level folder")

	file, err := v.Open("/proj/x.txt")
	require.NoError(t, err)
	assert.Equal(t, TypeFile, file.Type())
	assert.Equal(t, []byte("data"), file.Blob().Bytes())

	mounts := v.Mounts()
	require.Len(t, mounts, 1)
	assert.Equal(t, "/proj", mounts[0].Path)
	assert.Same(t, node, mounts[0].Root)
}

func TestVfs_MountLocalFolderEmptySelection(t *testing.T) {
	t.Parallel()

	provider := &mocks.MockStorageProvider{}
	provider.On("OpenDirectory", mock.Anything, true).Return([]overfs.DirEntry{}, nil)

	v := newTestVfs(provider)
	_, err := v.MountLocalFolder(context.Background(), "/")
	require.Error(t, err)
	assert.ErrorIs(t, err, overfs.ErrNotFound)
	assert.Empty(t, v.Mounts())
}

func TestVfs_MkdirUnderMountCreatesHandles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	rootHandle := &mocks.MockDirHandle{}
	subHandle := &mocks.MockDirHandle{}
	innerHandle := &mocks.MockDirHandle{}
	rootHandle.On("CreateSubdirectory", mock.Anything, "sub", true).Return(subHandle, nil)
	subHandle.On("CreateSubdirectory", mock.Anything, "inner", true).Return(innerHandle, nil)

	provider := &mocks.MockStorageProvider{}
	provider.On("OpenDirectory", mock.Anything, true).Return([]overfs.DirEntry{
		{RelPath: "proj/x.txt", Blob: overfs.NewBlob(nil, ""), Handle: rootHandle},
	}, nil)

	v := newTestVfs(provider)
	_, err := v.MountLocalFolder(ctx, "/")
	require.NoError(t, err)

	node, err := v.Mkdir(ctx, "/proj/sub/inner")
	require.NoError(t, err)
	assert.Equal(t, "/proj/sub/inner", node.Path())

	// sub was created from the mount root's handle, inner from sub's
	rootHandle.AssertCalled(t, "CreateSubdirectory", mock.Anything, "sub", true)
	subHandle.AssertCalled(t, "CreateSubdirectory", mock.Anything, "inner", true)

	sub, err := v.Open("/proj/sub")
	require.NoError(t, err)
	assert.Equal(t, overfs.DirHandle(subHandle), sub.Handle())
	assert.Equal(t, overfs.DirHandle(innerHandle), node.Handle())
	assert.Equal(t, TypeFolder, node.Type())
}

func TestVfs_MkdirUnderMountHandleFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	rootHandle := &mocks.MockDirHandle{}
	rootHandle.On("CreateSubdirectory", mock.Anything, "sub", true).Return(nil, overfs.ErrHandleCreate)

	provider := &mocks.MockStorageProvider{}
	provider.On("OpenDirectory", mock.Anything, true).Return([]overfs.DirEntry{
		{RelPath: "proj/x.txt", Blob: overfs.NewBlob(nil, ""), Handle: rootHandle},
	}, nil)

	v := newTestVfs(provider)
	_, err := v.MountLocalFolder(ctx, "/")
	require.NoError(t, err)

	_, err = v.Mkdir(ctx, "/proj/sub")
	require.Error(t, err)
	assert.ErrorIs(t, err, overfs.ErrHandleCreate)
}

func TestVfs_WriteFileUnderUnwritableMount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	provider := &mocks.MockStorageProvider{}
	provider.On("OpenFile", mock.Anything).Return(&overfs.FilePick{
		Name: "readme.txt",
		Blob: overfs.NewBlob([]byte("hi"), "text/plain"),
	}, nil)

	v := newTestVfs(provider)
	mountRoot, err := v.MountLocalFile(ctx, "/docs")
	require.NoError(t, err)

	// the mount's root is a file node that never received a handle
	_, err = v.WriteFile(ctx, "/docs/readme.txt", "extra.txt", []byte("x"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, overfs.ErrNotFound)

	// the tree below the mount is untouched
	assert.Empty(t, mountRoot.ChildNames())
}

func TestVfs_WriteFileUnderMountIsTreeOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	rootHandle := &mocks.MockDirHandle{}
	provider := &mocks.MockStorageProvider{}
	provider.On("OpenDirectory", mock.Anything, true).Return([]overfs.DirEntry{
		{RelPath: "proj/x.txt", Blob: overfs.NewBlob(nil, ""), Handle: rootHandle},
	}, nil)

	v := newTestVfs(provider)
	_, err := v.MountLocalFolder(ctx, "/")
	require.NoError(t, err)

	node, err := v.WriteFile(ctx, "/proj", "new.txt", []byte("body"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/proj/new.txt", node.Path())
	assert.Equal(t, []byte("body"), node.Blob().Bytes())

	// file writes never touch the real store
	rootHandle.AssertNotCalled(t, "CreateSubdirectory", mock.Anything, mock.Anything, mock.Anything)
}

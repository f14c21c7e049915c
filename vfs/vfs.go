// Package vfs implements a unified hierarchical namespace overlaying
// purely in-memory entries with subtrees backed by a permission-gated
// real directory store. Paths are slash-delimited and resolved against a
// mount table: paths under a registered mount route to the local
// backend, everything else to the memory backend.
package vfs

import (
	"context"
	"fmt"

	"github.com/overfs/overfs"
	"github.com/overfs/overfs/config"
)

// Vfs is the façade over the tree, the mount table, and the two
// backends. The tree and mount table are shared mutable state; callers
// are responsible for serializing writes to overlapping subtrees.
type Vfs struct {
	cfg      *config.Config
	tree     *Tree
	table    *MountTable
	mem      *memoryBackend
	local    *localBackend
	provider overfs.StorageProvider
}

// New creates an empty Vfs. provider is the capability source used by
// the MountLocal operations; it may be nil if no local mounts are made.
func New(cfg *config.Config, provider overfs.StorageProvider) *Vfs {
	tree := NewTree()
	table := NewMountTable()
	return &Vfs{
		cfg:      cfg,
		tree:     tree,
		table:    table,
		mem:      &memoryBackend{tree: tree},
		local:    &localBackend{tree: tree, table: table},
		provider: provider,
	}
}

// Tree exposes the underlying namespace tree.
func (v *Vfs) Tree() *Tree {
	return v.tree
}

// Root returns the root node of the namespace.
func (v *Vfs) Root() *Node {
	return v.tree.Root()
}

// Mounts returns the registered mount points in registration order.
func (v *Vfs) Mounts() []*MountPoint {
	return v.table.Mounts()
}

// resolve routes a path through the mount table: a match yields the
// mount and the remaining suffix, no match yields the tree root and the
// normalized path unchanged.
func (v *Vfs) resolve(path string) (*MountPoint, *Node, string) {
	norm := NormalizePath(path)
	mp, rel := v.table.GetMount(norm)
	if mp == nil {
		return nil, v.tree.Root(), norm
	}
	return mp, mp.Root, rel
}

// Open resolves path to its node, or ErrNotFound.
func (v *Vfs) Open(path string) (*Node, error) {
	_, from, rel := v.resolve(path)
	return v.tree.Open(from, rel)
}

// Ls returns the names of path's children in the order they were first
// created, or ErrNotFound if path does not resolve.
func (v *Vfs) Ls(path string) ([]string, error) {
	node, err := v.Open(path)
	if err != nil {
		return nil, err
	}
	return node.ChildNames(), nil
}

// Mkdir creates the folder at path, and any missing ancestors, in the
// backend the mount table routes it to.
func (v *Vfs) Mkdir(ctx context.Context, path string) (*Node, error) {
	mp, from, rel := v.resolve(path)
	if mp == nil {
		return v.mem.Mkdir(from, rel), nil
	}
	return v.local.Mkdir(ctx, mp, rel)
}

// WriteFile creates a file node named fileName under path with the given
// content and content-type hint. Under a local mount the write is gated
// by the closest-handle search but the content itself stays in the tree.
func (v *Vfs) WriteFile(ctx context.Context, path, fileName string, data []byte, contentType string) (*Node, error) {
	blob := overfs.NewBlob(data, contentType)
	mp, from, rel := v.resolve(JoinPath(path, fileName))
	if mp == nil {
		return v.mem.WriteFile(from, rel, blob), nil
	}
	return v.local.WriteFile(ctx, mp, rel, blob)
}

// MountLocalFile mounts a single provider-selected file under path.
func (v *Vfs) MountLocalFile(ctx context.Context, path string) (*Node, error) {
	return v.MountLocalFileFrom(ctx, v.provider, path)
}

// MountLocalFileFrom is MountLocalFile with an explicit provider.
func (v *Vfs) MountLocalFileFrom(ctx context.Context, provider overfs.StorageProvider, path string) (*Node, error) {
	if provider == nil {
		return nil, fmt.Errorf("mount file at %q: no storage provider: %w", path, overfs.ErrNotFound)
	}
	return v.local.MountFile(ctx, provider, NormalizePath(path))
}

// MountLocalFolder mounts a provider-selected directory tree under path.
func (v *Vfs) MountLocalFolder(ctx context.Context, path string) (*Node, error) {
	return v.MountLocalFolderFrom(ctx, v.provider, path)
}

// MountLocalFolderFrom is MountLocalFolder with an explicit provider.
func (v *Vfs) MountLocalFolderFrom(ctx context.Context, provider overfs.StorageProvider, path string) (*Node, error) {
	if provider == nil {
		return nil, fmt.Errorf("mount folder at %q: no storage provider: %w", path, overfs.ErrNotFound)
	}
	return v.local.MountFolder(ctx, provider, NormalizePath(path))
}

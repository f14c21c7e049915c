package vfs

import (
	"context"
	"fmt"

	"github.com/overfs/overfs"
	"github.com/overfs/overfs/internal/util"
)

// localBackend mirrors tree structure onto real storage reached through
// provider-issued directory handles. Mounting populates the tree from a
// user selection; writes below a mount extend the real directory tree
// one handle at a time.
type localBackend struct {
	tree  *Tree
	table *MountTable
}

// MountFile asks the provider for a single file capability and pushes it
// as a file node under the node resolved from path. A mount point is
// registered at path + "/" + name rooted at the new node.
func (l *localBackend) MountFile(ctx context.Context, provider overfs.StorageProvider, path string) (*Node, error) {
	logger := util.GetLogger("Local.MountFile")

	pick, err := provider.OpenFile(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("File selection failed")
		return nil, fmt.Errorf("mount file at %q: %w", path, err)
	}

	anchor := l.tree.Push(l.tree.Root(), path, Metadata{Type: TypeFolder})
	node := l.tree.Push(anchor, pick.Name, Metadata{Type: TypeFile, Blob: pick.Blob})

	mountPath := JoinPath(path, pick.Name)
	mp := l.table.Register(TypeLocal, mountPath, node)
	logger.Info().Str("mount", mountPath).Str("id", mp.ID).Msg("Mounted local file")
	return node, nil
}

// MountFolder asks the provider for every file under a user-selected
// real directory and mirrors the structure into the tree below the node
// resolved from path. Each entry's directory handle is attached to the
// file's immediate parent folder node. A mount point is registered at
// path + "/" + <top-level directory name>; an empty selection fails and
// registers nothing.
func (l *localBackend) MountFolder(ctx context.Context, provider overfs.StorageProvider, path string) (*Node, error) {
	logger := util.GetLogger("Local.MountFolder")

	entries, err := provider.OpenDirectory(ctx, true)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Directory selection failed")
		return nil, fmt.Errorf("mount folder at %q: %w", path, err)
	}
	if len(entries) == 0 {
		logger.Warn().Str("path", path).Msg("Directory selection yielded no entries")
		return nil, fmt.Errorf("mount folder at %q: empty selection: %w", path, overfs.ErrNotFound)
	}

	anchor := l.tree.Push(l.tree.Root(), path, Metadata{Type: TypeFolder})

	var top string
	for _, entry := range entries {
		segs := SplitPath(entry.RelPath)
		if len(segs) == 0 {
			continue
		}
		if top == "" {
			top = segs[0]
		}
		node := l.tree.Push(anchor, entry.RelPath, Metadata{Type: TypeFile, Blob: entry.Blob})
		if entry.Handle != nil {
			if parent := node.Parent(); parent != nil {
				if err := parent.AttachHandle(entry.Handle); err != nil {
					logger.Warn().Err(err).Str("path", parent.Path()).Msg("Could not attach handle")
				}
			}
		}
	}
	if top == "" {
		return nil, fmt.Errorf("mount folder at %q: empty selection: %w", path, overfs.ErrNotFound)
	}

	root, err := l.tree.Open(anchor, top)
	if err != nil {
		return nil, err
	}
	mountPath := JoinPath(path, top)
	mp := l.table.Register(TypeLocal, mountPath, root)
	logger.Info().Str("mount", mountPath).Str("id", mp.ID).Int("entries", len(entries)).Msg("Mounted local folder")
	return root, nil
}

// closestHandle walks from the mount root toward rel and returns the
// deepest already-materialized node carrying a directory handle, plus
// the count of rel's segments that node covers. A mount whose root never
// received a handle is not writable and yields ErrNotFound.
func (l *localBackend) closestHandle(mp *MountPoint, segs []string) (*Node, int, error) {
	var deepest *Node
	covered := 0
	if mp.Root.Handle() != nil {
		deepest = mp.Root
	}
	cur := mp.Root
	for i, name := range segs {
		child, ok := cur.Child(name)
		if !ok {
			break
		}
		cur = child
		if cur.Handle() != nil {
			deepest = cur
			covered = i + 1
		}
	}
	if deepest == nil {
		return nil, 0, fmt.Errorf("mount %q has no writable handle: %w", mp.Path, overfs.ErrNotFound)
	}
	return deepest, covered, nil
}

// Mkdir creates the folder rel below the mount's subtree. Missing
// segments are first mirrored into the tree, then realized shallowest
// to deepest as directory handles created from the closest ancestor
// handle, each new handle attached to its tree node as it is created.
//
// Concurrent Mkdir or WriteFile calls on overlapping paths can both pass
// the closest-handle search before either creates a handle, issuing
// duplicate provider calls. Callers serialize writes to overlapping
// subtrees.
func (l *localBackend) Mkdir(ctx context.Context, mp *MountPoint, rel string) (*Node, error) {
	logger := util.GetLogger("Local.Mkdir")

	segs := SplitPath(rel)
	start, covered, err := l.closestHandle(mp, segs)
	if err != nil {
		logger.Warn().Err(err).Str("mount", mp.Path).Str("rel", rel).Msg("No ancestor handle")
		return nil, err
	}

	node := l.tree.Push(mp.Root, rel, Metadata{Type: TypeFolder})

	handle := start.Handle()
	cur := start
	for _, name := range segs[covered:] {
		child, ok := cur.Child(name)
		if !ok {
			// just pushed above; only a concurrent writer could remove it
			return nil, fmt.Errorf("mkdir %q: lost segment %q: %w", rel, name, overfs.ErrNotFound)
		}
		next, err := handle.CreateSubdirectory(ctx, name, true)
		if err != nil {
			logger.Error().Err(err).Str("mount", mp.Path).Str("dir", child.Path()).Msg("Handle creation failed")
			return nil, fmt.Errorf("mkdir %q: %w", rel, err)
		}
		if err := child.AttachHandle(next); err != nil {
			return nil, fmt.Errorf("mkdir %q: %w", rel, err)
		}
		handle = next
		cur = child
	}

	logger.Debug().Str("path", node.Path()).Int("created", len(segs)-covered).Msg("Created local folder")
	return node, nil
}

// WriteFile creates the file rel below the mount's subtree. The same
// closest-handle search gates the write, but only the tree is mutated:
// no content is flushed to the real directory handle. Callers that
// expect real-storage persistence of file content will not get it here.
func (l *localBackend) WriteFile(ctx context.Context, mp *MountPoint, rel string, blob *overfs.Blob) (*Node, error) {
	logger := util.GetLogger("Local.WriteFile")

	segs := SplitPath(rel)
	if _, _, err := l.closestHandle(mp, segs); err != nil {
		logger.Warn().Err(err).Str("mount", mp.Path).Str("rel", rel).Msg("No ancestor handle")
		return nil, err
	}

	node := l.tree.Push(mp.Root, rel, Metadata{Type: TypeFile, Blob: blob})
	logger.Debug().Str("path", node.Path()).Int64("size", blob.Size()).Msg("Created local file node")
	return node, nil
}

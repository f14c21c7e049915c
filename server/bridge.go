package server

import (
	"context"
	"syscall"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/overfs/overfs/vfs"
)

// bridgeNode adapts one vfs.Node to the go-fuse inode API. The bridge is
// read-only: the namespace is mutated through the Vfs Go API, not the
// kernel.
type bridgeNode struct {
	fusefs.Inode
	node *vfs.Node
}

var (
	_ fusefs.NodeLookuper  = (*bridgeNode)(nil)
	_ fusefs.NodeReaddirer = (*bridgeNode)(nil)
	_ fusefs.NodeGetattrer = (*bridgeNode)(nil)
	_ fusefs.NodeOpener    = (*bridgeNode)(nil)
	_ fusefs.NodeReader    = (*bridgeNode)(nil)
)

func newBridgeRoot(v *vfs.Vfs) *bridgeNode {
	return &bridgeNode{node: v.Root()}
}

func stableAttr(n *vfs.Node) fusefs.StableAttr {
	mode := uint32(fuse.S_IFREG)
	if n.IsDir() {
		mode = fuse.S_IFDIR
	}
	// tree ids are stable for the node's lifetime
	return fusefs.StableAttr{Mode: mode, Ino: n.ID()}
}

func (b *bridgeNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	child, ok := b.node.Child(name)
	if !ok {
		return nil, syscall.ENOENT
	}
	fillAttr(child, &out.Attr)
	return b.NewInode(ctx, &bridgeNode{node: child}, stableAttr(child)), 0
}

func (b *bridgeNode) Readdir(ctx context.Context) (fusefs.DirStream, syscall.Errno) {
	var entries []fuse.DirEntry
	for child := range b.node.Children() {
		mode := uint32(fuse.S_IFREG)
		if child.IsDir() {
			mode = fuse.S_IFDIR
		}
		entries = append(entries, fuse.DirEntry{
			Name: child.Name(),
			Mode: mode,
			Ino:  child.ID(),
		})
	}
	return fusefs.NewListDirStream(entries), 0
}

func (b *bridgeNode) Getattr(ctx context.Context, fh fusefs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fillAttr(b.node, &out.Attr)
	return 0
}

func (b *bridgeNode) Open(ctx context.Context, flags uint32) (fusefs.FileHandle, uint32, syscall.Errno) {
	if b.node.IsDir() {
		return nil, 0, syscall.EISDIR
	}
	if flags&uint32(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (b *bridgeNode) Read(ctx context.Context, fh fusefs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	blob := b.node.Blob()
	if blob == nil {
		return fuse.ReadResultData(nil), 0
	}
	data := blob.Bytes()
	if off >= int64(len(data)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return fuse.ReadResultData(data[off:end]), 0
}

func fillAttr(n *vfs.Node, out *fuse.Attr) {
	out.Ino = n.ID()
	if n.IsDir() {
		out.Mode = fuse.S_IFDIR | 0o555
		return
	}
	out.Mode = fuse.S_IFREG | 0o444
	if blob := n.Blob(); blob != nil {
		out.Size = uint64(blob.Size())
	}
}

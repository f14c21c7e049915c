package vfs

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/overfs/overfs"
	"github.com/puzpuzpuz/xsync/v4"
)

// RootID is the id assigned to a tree's root node.
const RootID uint64 = 1

// Tree owns the root node and the id allocator. Every node created
// through it, directly or via mounting, receives a strictly increasing
// id and is registered for id-based lookup.
type Tree struct {
	root   *Node
	lastID atomic.Uint64            // last id assigned; root gets RootID
	nodes  *xsync.Map[uint64, *Node] // id -> node registry
}

// NewTree creates an empty tree with a folder-typed root node.
func NewTree() *Tree {
	t := &Tree{nodes: xsync.NewMap[uint64, *Node]()}
	t.root = newNode(RootID, "", TypeFolder)
	t.lastID.Store(RootID)
	t.nodes.Store(RootID, t.root)
	return t
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node {
	return t.root
}

// NodeByID returns the node with the given id.
func (t *Tree) NodeByID(id uint64) (*Node, bool) {
	return t.nodes.Load(id)
}

// newChild allocates a folder-typed node with a fresh id and registers it.
func (t *Tree) newChild(name string) *Node {
	n := newNode(t.lastID.Add(1), name, TypeFolder)
	t.nodes.Store(n.id, n)
	return n
}

// Push walks path segment by segment from the given node, creating
// folder-typed children wherever a segment is missing, then merges meta
// into the terminal node and returns it. Re-pushing an existing path
// returns the same node; the metadata merge is the only mutation.
func (t *Tree) Push(from *Node, path string, meta Metadata) *Node {
	cur := from
	for _, name := range SplitPath(path) {
		child, ok := cur.Child(name)
		if !ok {
			child = t.newChild(name)
			cur.addChild(child)
		}
		cur = child
	}
	cur.merge(meta)
	return cur
}

// Open performs the same walk as Push without creating anything. It
// returns ErrNotFound the instant a segment is missing.
func (t *Tree) Open(from *Node, path string) (*Node, error) {
	cur := from
	for _, name := range SplitPath(path) {
		child, ok := cur.Child(name)
		if !ok {
			return nil, fmt.Errorf("open %q: %w", path, overfs.ErrNotFound)
		}
		cur = child
	}
	return cur, nil
}

// SplitPath breaks a slash-delimited path into its segments, discarding
// leading, trailing, and empty segments.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// NormalizePath rewrites path as an absolute path with single slashes
// and no trailing slash. The empty path normalizes to "/".
func NormalizePath(path string) string {
	return "/" + strings.Join(SplitPath(path), "/")
}

// JoinPath joins base and name into a normalized absolute path.
func JoinPath(base, name string) string {
	return NormalizePath(base + "/" + name)
}

package vfs

import (
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/overfs/overfs"
)

// NodeType discriminates folder and file nodes.
type NodeType string

const (
	TypeFolder NodeType = "folder"
	TypeFile   NodeType = "file"
)

// Metadata carries the mutable per-node attributes merged in by
// [Tree.Push]. Zero-valued fields leave the node's existing attributes
// untouched, except Type: a terminal push with an empty Type marks the
// node as a file.
type Metadata struct {
	Type   NodeType
	Blob   *overfs.Blob
	Handle overfs.DirHandle
}

// Node is one vertex of the namespace tree: a name unique among its
// siblings, a non-owning parent back-reference, and an insertion-ordered
// child mapping. Nodes are created by [Tree.Push] only and never removed.
type Node struct {
	id       uint64
	name     string
	parent   *Node // non-owning back-reference; nil for the root
	typ      NodeType
	blob     *overfs.Blob
	handle   overfs.DirHandle
	children map[string]*Node
	order    []string // child names in creation order
	mu       sync.RWMutex
}

func newNode(id uint64, name string, typ NodeType) *Node {
	return &Node{
		id:       id,
		name:     name,
		typ:      typ,
		children: make(map[string]*Node),
	}
}

// ID returns the node's tree-unique id.
func (n *Node) ID() uint64 {
	return n.id
}

// Name returns the node's immutable name; empty for the root.
func (n *Node) Name() string {
	return n.name
}

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// Type returns the node's current type.
func (n *Node) Type() NodeType {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.typ
}

// IsDir reports whether the node is folder-typed.
func (n *Node) IsDir() bool {
	return n.Type() == TypeFolder
}

// Blob returns the node's content, or nil for folders and empty files.
func (n *Node) Blob() *overfs.Blob {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.blob
}

// Handle returns the real-storage directory capability attached to this
// node, or nil if none has been attached yet.
func (n *Node) Handle() overfs.DirHandle {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.handle
}

// AttachHandle binds a directory handle to a folder node. Attaching to a
// file node is an error; re-attaching replaces the previous handle.
func (n *Node) AttachHandle(h overfs.DirHandle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.typ != TypeFolder {
		return fmt.Errorf("attach handle to file node %q: %w", n.name, overfs.ErrHandleCreate)
	}
	n.handle = h
	return nil
}

// Child returns the named child node.
func (n *Node) Child(name string) (child *Node, ok bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	child, ok = n.children[name]
	return
}

// addChild links child under n and sets its parent back-reference.
// Caller guarantees the name is not already taken.
func (n *Node) addChild(child *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.children[child.name] = child
	n.order = append(n.order, child.name)

	child.mu.Lock()
	defer child.mu.Unlock()
	child.parent = n
}

// Children yields the current child nodes in creation order. The
// sequence is restartable and re-reads the live mapping on each
// iteration rather than a snapshot.
func (n *Node) Children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.mu.RLock()
		names := make([]string, len(n.order))
		copy(names, n.order)
		n.mu.RUnlock()

		for _, name := range names {
			child, ok := n.Child(name)
			if !ok {
				continue
			}
			if !yield(child) {
				return
			}
		}
	}
}

// ChildNames returns the child names in creation order.
func (n *Node) ChildNames() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, len(n.order))
	copy(names, n.order)
	return names
}

// Path returns the node's absolute path, derived by walking parent
// links up to the root. The root's path is "/".
func (n *Node) Path() string {
	var names []string
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.name == "" {
			break // root
		}
		names = append(names, cur.name)
	}
	// collected leaf-first; reverse in place
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return "/" + strings.Join(names, "/")
}

// merge applies meta onto the node's attributes. Existing attributes are
// retained unless overwritten; an empty meta.Type marks the node a file.
func (n *Node) merge(meta Metadata) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if meta.Type != "" {
		n.typ = meta.Type
	} else {
		n.typ = TypeFile
	}
	if meta.Blob != nil {
		n.blob = meta.Blob
	}
	if meta.Handle != nil && n.typ == TypeFolder {
		n.handle = meta.Handle
	}
}

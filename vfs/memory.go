package vfs

import (
	"github.com/overfs/overfs"
	"github.com/overfs/overfs/internal/util"
)

// memoryBackend realizes mkdir and write_file purely as tree mutations.
type memoryBackend struct {
	tree *Tree
}

// Mkdir creates the folder at path below from, along with any missing
// ancestors. Equivalent to `mkdir -p`: existing folders are reused.
func (m *memoryBackend) Mkdir(from *Node, path string) *Node {
	logger := util.GetLogger("Memory.Mkdir")
	node := m.tree.Push(from, path, Metadata{Type: TypeFolder})
	logger.Debug().Str("path", node.Path()).Msg("Created folder node")
	return node
}

// WriteFile creates or overwrites the file at path below from, creating
// missing ancestor folders along the way.
func (m *memoryBackend) WriteFile(from *Node, path string, blob *overfs.Blob) *Node {
	logger := util.GetLogger("Memory.WriteFile")
	node := m.tree.Push(from, path, Metadata{Type: TypeFile, Blob: blob})
	logger.Debug().Str("path", node.Path()).Int64("size", blob.Size()).Msg("Created file node")
	return node
}

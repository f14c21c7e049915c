package vfs

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MountType identifies the backend a mount point routes to.
type MountType string

// TypeLocal is the only mount type: a subtree backed by real storage.
const TypeLocal MountType = "local"

// MountPoint claims an absolute path prefix and redirects resolution
// under it to the subtree rooted at Root. Mount points are append-only
// and live for the lifetime of the Vfs instance.
type MountPoint struct {
	ID   string
	Type MountType
	Path string
	Root *Node
}

// MountTable is the ordered registry of mount points.
type MountTable struct {
	mu     sync.RWMutex
	mounts []*MountPoint
}

// NewMountTable returns an empty mount table.
func NewMountTable() *MountTable {
	return &MountTable{}
}

// Register appends a mount point record and returns it. Registration
// order is match order.
func (mt *MountTable) Register(typ MountType, path string, root *Node) *MountPoint {
	mp := &MountPoint{
		ID:   uuid.NewString(),
		Type: typ,
		Path: path,
		Root: root,
	}
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.mounts = append(mt.mounts, mp)
	return mp
}

// Mounts returns the registered mount points in registration order.
func (mt *MountTable) Mounts() []*MountPoint {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	out := make([]*MountPoint, len(mt.mounts))
	copy(out, mt.mounts)
	return out
}

// GetMount scans mount points in registration order and returns the
// first whose path is a string prefix of the queried path, together with
// the remainder after stripping that prefix. With no match it returns
// nil and the original path.
//
// Known limitation: the test is a raw string prefix, not segment-aware.
// A mount at "/a" also matches a query for "/ab" (remainder "b"), and
// the first registered mount wins regardless of specificity.
func (mt *MountTable) GetMount(path string) (*MountPoint, string) {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	for _, mp := range mt.mounts {
		if strings.HasPrefix(path, mp.Path) {
			return mp, strings.TrimPrefix(path, mp.Path)
		}
	}
	return nil, path
}

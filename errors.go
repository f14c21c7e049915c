package overfs

import "errors"

// Sentinel error kinds surfaced by VFS operations and storage providers.
// Callers that only care about success can treat any non-nil error as a
// generic failure; callers that need detail can errors.Is against these.
var (
	// ErrNotFound is returned when a path lookup misses or a local
	// write has no writable ancestor handle.
	ErrNotFound = errors.New("not found")

	// ErrCancelled is returned when the user aborts a provider
	// interaction (file or directory selection).
	ErrCancelled = errors.New("selection cancelled")

	// ErrDenied is returned when the storage provider refuses access.
	ErrDenied = errors.New("permission denied")

	// ErrHandleCreate is returned when creating a real sub-directory
	// handle fails.
	ErrHandleCreate = errors.New("directory handle creation failed")
)

package overfs

import "context"

// FilePick is the result of a single-file selection: the file's base name
// and its content.
type FilePick struct {
	Name string
	Blob *Blob
}

// DirEntry is one file yielded by a directory selection. RelPath is the
// slash-delimited path of the file relative to the selection root,
// including the root directory's own name as the first segment. Handle is
// the capability for the directory immediately containing the file.
type DirEntry struct {
	RelPath string
	Blob    *Blob
	Handle  DirHandle
}

// DirHandle is an opaque capability over one real directory. It is the
// only way the VFS can extend the real directory tree.
type DirHandle interface {
	// ID returns a stable identifier for log correlation.
	ID() string

	// Name returns the directory's base name.
	Name() string

	// CreateSubdirectory obtains a handle for the named child directory.
	// With createIfAbsent it creates the directory when missing;
	// otherwise a missing child is an error.
	CreateSubdirectory(ctx context.Context, name string, createIfAbsent bool) (DirHandle, error)
}

// StorageProvider is the external collaborator that yields file and
// directory capabilities. Calls block until the interaction completes and
// may fail with ErrCancelled or ErrDenied.
type StorageProvider interface {
	// OpenFile yields a single file capability.
	OpenFile(ctx context.Context) (*FilePick, error)

	// OpenDirectory yields every file under a selected directory. With
	// recursive it descends into subdirectories; otherwise only direct
	// children are returned.
	OpenDirectory(ctx context.Context, recursive bool) ([]DirEntry, error)
}

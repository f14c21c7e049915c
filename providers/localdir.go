package providers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"
	"github.com/overfs/overfs"
	"github.com/overfs/overfs/internal/util"
)

// LocalDirProvider yields file and directory capabilities from a real
// directory tree, exposed through a billy filesystem. It stands in for
// an interactive picker: the selection is fixed at construction time.
type LocalDirProvider struct {
	name string
	fsys billy.Filesystem
	pick string // file offered by OpenFile; empty means no file selection
}

// NewLocalDir creates a provider rooted at the given real directory.
func NewLocalDir(root string) (*LocalDirProvider, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("localdir root %q: %w", root, overfs.ErrNotFound)
		}
		return nil, fmt.Errorf("localdir root %q: %w", root, overfs.ErrDenied)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("localdir root %q is not a directory: %w", root, overfs.ErrDenied)
	}
	return NewLocalDirFS(filepath.Base(root), osfs.New(root)), nil
}

// NewLocalDirFS creates a provider over an arbitrary billy filesystem.
// name becomes the top-level directory name in yielded entry paths.
func NewLocalDirFS(name string, fsys billy.Filesystem) *LocalDirProvider {
	return &LocalDirProvider{name: name, fsys: fsys}
}

// WithPick sets the file OpenFile offers, as a path relative to the
// provider root.
func (p *LocalDirProvider) WithPick(pick string) *LocalDirProvider {
	p.pick = pick
	return p
}

// Name returns the provider's top-level directory name.
func (p *LocalDirProvider) Name() string {
	return p.name
}

// OpenFile yields the configured pick. Without one the selection is
// treated as cancelled.
func (p *LocalDirProvider) OpenFile(ctx context.Context) (*overfs.FilePick, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open file: %w", overfs.ErrCancelled)
	}
	if p.pick == "" {
		return nil, fmt.Errorf("open file: no selection: %w", overfs.ErrCancelled)
	}
	blob, err := p.readBlob(p.pick)
	if err != nil {
		return nil, err
	}
	return &overfs.FilePick{Name: path.Base(p.pick), Blob: blob}, nil
}

// OpenDirectory walks the provider root and yields one entry per file,
// each carrying the handle of its containing directory. Entry paths are
// prefixed with the provider's name.
func (p *LocalDirProvider) OpenDirectory(ctx context.Context, recursive bool) ([]overfs.DirEntry, error) {
	logger := util.GetLogger("LocalDir.OpenDirectory")
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open directory: %w", overfs.ErrCancelled)
	}

	handles := make(map[string]overfs.DirHandle)
	var entries []overfs.DirEntry

	var walk func(dir string) error
	walk = func(dir string) error {
		infos, err := p.fsys.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("read dir %q: %w", dir, overfs.ErrDenied)
		}
		for _, info := range infos {
			full := path.Join(dir, info.Name())
			if info.IsDir() {
				if recursive {
					if err := walk(full); err != nil {
						return err
					}
				}
				continue
			}
			blob, err := p.readBlob(full)
			if err != nil {
				return err
			}
			entries = append(entries, overfs.DirEntry{
				RelPath: path.Join(p.name, full),
				Blob:    blob,
				Handle:  p.handleFor(handles, dir),
			})
		}
		return nil
	}

	if err := walk("."); err != nil {
		logger.Warn().Err(err).Str("name", p.name).Msg("Directory walk failed")
		return nil, err
	}
	logger.Debug().Str("name", p.name).Int("entries", len(entries)).Msg("Directory walk complete")
	return entries, nil
}

func (p *LocalDirProvider) readBlob(file string) (*overfs.Blob, error) {
	f, err := p.fsys.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", file, overfs.ErrDenied)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", file, overfs.ErrDenied)
	}
	return overfs.NewBlob(data, mime.TypeByExtension(path.Ext(file))), nil
}

// handleFor returns the handle for dir, creating and caching it so every
// entry in the same directory shares one handle.
func (p *LocalDirProvider) handleFor(handles map[string]overfs.DirHandle, dir string) overfs.DirHandle {
	if h, ok := handles[dir]; ok {
		return h
	}
	name := path.Base(dir)
	if dir == "." {
		name = p.name
	}
	h := &localDirHandle{
		id:   uuid.NewString(),
		name: name,
		path: dir,
		fsys: p.fsys,
	}
	handles[dir] = h
	return h
}

// localDirHandle is a directory capability over one directory inside the
// provider's billy filesystem.
type localDirHandle struct {
	id   string
	name string
	path string // relative to the provider root
	fsys billy.Filesystem
}

func (h *localDirHandle) ID() string {
	return h.id
}

func (h *localDirHandle) Name() string {
	return h.name
}

// CreateSubdirectory returns a handle for the named child directory,
// creating it on disk when absent and createIfAbsent is set.
func (h *localDirHandle) CreateSubdirectory(ctx context.Context, name string, createIfAbsent bool) (overfs.DirHandle, error) {
	logger := util.GetLogger("LocalDir.CreateSubdirectory")
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("create subdirectory %q: %w", name, overfs.ErrCancelled)
	}

	child := path.Join(h.path, name)
	info, err := h.fsys.Stat(child)
	switch {
	case err == nil && !info.IsDir():
		return nil, fmt.Errorf("create subdirectory %q: exists as file: %w", name, overfs.ErrHandleCreate)
	case err == nil:
		// already materialized
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("create subdirectory %q: %w", name, overfs.ErrDenied)
	case !createIfAbsent:
		return nil, fmt.Errorf("subdirectory %q: %w", name, overfs.ErrNotFound)
	default:
		if err := h.fsys.MkdirAll(child, 0o755); err != nil {
			logger.Error().Err(err).Str("dir", child).Msg("MkdirAll failed")
			return nil, fmt.Errorf("create subdirectory %q: %w", name, overfs.ErrHandleCreate)
		}
		logger.Debug().Str("dir", child).Msg("Created real directory")
	}

	return &localDirHandle{
		id:   uuid.NewString(),
		name: name,
		path: child,
		fsys: h.fsys,
	}, nil
}

var (
	_ overfs.StorageProvider = (*LocalDirProvider)(nil)
	_ overfs.DirHandle       = (*localDirHandle)(nil)
)

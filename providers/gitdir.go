package providers

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/uuid"
	"github.com/overfs/overfs"
	"github.com/overfs/overfs/internal/util"
	"golang.org/x/sync/singleflight"
)

// GitDirProvider yields the file tree of a repository's HEAD commit as
// directory entries. Handles are read-only: the provider never extends
// the real store, so CreateSubdirectory is refused.
type GitDirProvider struct {
	name string
	repo *git.Repository

	g  singleflight.Group
	mu sync.RWMutex
	// HEAD tree, resolved once on first use
	tree *object.Tree
}

// NewGitDir opens the repository at the given path.
func NewGitDir(root string) (*GitDirProvider, error) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("gitdir root %q: %w", root, overfs.ErrNotFound)
	}
	return NewGitDirRepo(filepath.Base(root), repo), nil
}

// NewGitDirRepo wraps an already-open repository. name becomes the
// top-level directory name in yielded entry paths.
func NewGitDirRepo(name string, repo *git.Repository) *GitDirProvider {
	return &GitDirProvider{name: name, repo: repo}
}

// Name returns the provider's top-level directory name.
func (p *GitDirProvider) Name() string {
	return p.name
}

// OpenFile is refused: the provider only offers whole-tree selections.
func (p *GitDirProvider) OpenFile(ctx context.Context) (*overfs.FilePick, error) {
	return nil, fmt.Errorf("gitdir %q: file selection not offered: %w", p.name, overfs.ErrDenied)
}

// OpenDirectory yields one entry per file in the HEAD commit tree. With
// recursive unset only root-level files are returned.
func (p *GitDirProvider) OpenDirectory(ctx context.Context, recursive bool) ([]overfs.DirEntry, error) {
	logger := util.GetLogger("GitDir.OpenDirectory")
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("open directory: %w", overfs.ErrCancelled)
	}

	tree, err := p.headTree(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("name", p.name).Msg("HEAD tree resolution failed")
		return nil, err
	}

	handles := make(map[string]overfs.DirHandle)
	var entries []overfs.DirEntry

	iter := tree.Files()
	defer iter.Close()
	err = iter.ForEach(func(f *object.File) error {
		if !recursive && strings.Contains(f.Name, "/") {
			return nil
		}
		contents, err := f.Contents()
		if err != nil {
			return fmt.Errorf("read blob %q: %w", f.Name, overfs.ErrDenied)
		}
		dir := path.Dir(f.Name)
		entries = append(entries, overfs.DirEntry{
			RelPath: path.Join(p.name, f.Name),
			Blob:    overfs.NewBlob([]byte(contents), mime.TypeByExtension(path.Ext(f.Name))),
			Handle:  p.handleFor(handles, dir),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("name", p.name).Int("entries", len(entries)).Msg("Commit tree walk complete")
	return entries, nil
}

// headTree resolves and caches the HEAD commit's tree. Concurrent first
// uses are collapsed into a single repository read.
func (p *GitDirProvider) headTree(ctx context.Context) (*object.Tree, error) {
	p.mu.RLock()
	t := p.tree
	p.mu.RUnlock()
	if t != nil {
		return t, nil
	}

	res, err, _ := p.g.Do("head", func() (interface{}, error) {
		head, err := p.repo.Head()
		if err != nil {
			return nil, fmt.Errorf("gitdir %q: resolve HEAD: %w", p.name, overfs.ErrNotFound)
		}
		commit, err := p.repo.CommitObject(head.Hash())
		if err != nil {
			return nil, fmt.Errorf("gitdir %q: load commit: %w", p.name, overfs.ErrDenied)
		}
		tree, err := commit.Tree()
		if err != nil {
			return nil, fmt.Errorf("gitdir %q: load tree: %w", p.name, overfs.ErrDenied)
		}
		p.mu.Lock()
		p.tree = tree
		p.mu.Unlock()
		return tree, nil
	})
	if err != nil {
		return nil, err
	}
	return res.(*object.Tree), nil
}

func (p *GitDirProvider) handleFor(handles map[string]overfs.DirHandle, dir string) overfs.DirHandle {
	if h, ok := handles[dir]; ok {
		return h
	}
	name := path.Base(dir)
	if dir == "." {
		name = p.name
	}
	h := &gitDirHandle{id: uuid.NewString(), name: name, path: dir}
	handles[dir] = h
	return h
}

// gitDirHandle is a read-only directory capability over one directory of
// the commit tree.
type gitDirHandle struct {
	id   string
	name string
	path string
}

func (h *gitDirHandle) ID() string {
	return h.id
}

func (h *gitDirHandle) Name() string {
	return h.name
}

// CreateSubdirectory is always refused: commit trees are immutable.
func (h *gitDirHandle) CreateSubdirectory(ctx context.Context, name string, createIfAbsent bool) (overfs.DirHandle, error) {
	return nil, fmt.Errorf("gitdir %q is read-only: %w", h.path, overfs.ErrDenied)
}

var (
	_ overfs.StorageProvider = (*GitDirProvider)(nil)
	_ overfs.DirHandle       = (*gitDirHandle)(nil)
)

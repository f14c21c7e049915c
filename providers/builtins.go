package providers

import (
	"github.com/overfs/overfs"
	"github.com/overfs/overfs/config"
)

type BuiltInProviderType = string

const (
	LocalDirProviderType BuiltInProviderType = "localdir"
	GitDirProviderType   BuiltInProviderType = "gitdir"
)

// RegisterBuiltins registers all built-in providers by default
// or only the specific ones if keys are provided.
func RegisterBuiltins(r *Registry, types ...BuiltInProviderType) {
	if len(types) == 0 {
		types = append(types, LocalDirProviderType, GitDirProviderType)
	}

	for _, key := range types {
		switch key {
		case LocalDirProviderType:
			r.Register(LocalDirProviderType, newLocalDirFactory)
		case GitDirProviderType:
			r.Register(GitDirProviderType, newGitDirFactory)
		}
	}
}

func newLocalDirFactory(entry config.MountEntry) (overfs.StorageProvider, error) {
	p, err := NewLocalDir(entry.Root)
	if err != nil {
		return nil, err
	}
	if entry.Pick != "" {
		p = p.WithPick(entry.Pick)
	}
	return p, nil
}

func newGitDirFactory(entry config.MountEntry) (overfs.StorageProvider, error) {
	return NewGitDir(entry.Root)
}

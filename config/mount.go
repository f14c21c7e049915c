package config

// MountOptions holds high-level settings for mounting.
// No go-fuse types are exposed here.
type MountOptions struct {
	Debug  bool   // fuse debug logs
	FsName string // mount's FsName
	Name   string // mount's Name
}

// MountEntry declares one local mount to perform at startup: the VFS
// path to mount under, the provider type to build, and provider inputs.
type MountEntry struct {
	Path     string `yaml:"path" json:"path"`
	Provider string `yaml:"provider" json:"provider"`
	Root     string `yaml:"root" json:"root"`
	// Pick names a single file below Root for file mounts; empty for
	// folder mounts.
	Pick string `yaml:"pick,omitempty" json:"pick,omitempty"`
}

// Package server exposes an assembled Vfs through a read-only FUSE
// mount.
package server

import (
	"time"

	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/overfs/overfs/config"
	"github.com/overfs/overfs/internal/util"
	"github.com/overfs/overfs/vfs"
)

// Server mounts and serves a Vfs over FUSE, abstracting over the
// underlying wire protocol implementation.
type Server struct {
	vfs    *vfs.Vfs
	cfg    *config.Config
	server *fuse.Server
}

// New creates a Server for the given Vfs and config.
func New(cfg *config.Config, v *vfs.Vfs) *Server {
	return &Server{vfs: v, cfg: cfg}
}

// Serve mounts and serves the filesystem at the given mountPoint. It
// returns once the mount is live; use Wait to block until unmount.
func (s *Server) Serve(mountPoint string) error {
	logger := util.GetLogger("Server")
	opts := s.cfg.MountOptions

	timeout := time.Second
	srv, err := fusefs.Mount(mountPoint, newBridgeRoot(s.vfs), &fusefs.Options{
		MountOptions: fuse.MountOptions{
			Name:   opts.Name,
			FsName: opts.FsName,
			Debug:  opts.Debug,
			Logger: util.NewLogLogger("FuseServer", s.cfg.LogLvl),
		},
		AttrTimeout:  &timeout,
		EntryTimeout: &timeout,
	})
	if err != nil {
		return err
	}
	s.server = srv
	logger.Info().Str("mountPoint", mountPoint).Msg("Filesystem mounted")
	return nil
}

// ServeAsync runs Serve in a goroutine and reports its result.
func (s *Server) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- s.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Wait blocks until the filesystem is unmounted.
func (s *Server) Wait() {
	if s.server != nil {
		s.server.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (s *Server) Unmount() error {
	if s.server == nil {
		return nil
	}
	return s.server.Unmount()
}

package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/overfs/overfs/config"
	"github.com/overfs/overfs/internal/util"
	"github.com/overfs/overfs/providers"
	"github.com/overfs/overfs/server"
	"github.com/overfs/overfs/vfs"
)

func main() {
	// Parse command line arguments
	var (
		configPath string
		verbose    int
		umount     bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (yaml or json)")
	flag.StringVar(&configPath, "c", "", "--config (shorthand)")
	flag.BoolVar(&umount, "umount", false,
		"Unmount the fs first if needed before mounting again. Useful for debuggers that don't exit properly.")
	flag.BoolVar(&umount, "u", false, "--umount (shorthand)")
	flag.IntVar(&verbose, "verbose", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace). Default is 3 (info).")
	flag.IntVar(&verbose, "v", config.InfoVerbose, "--verbose (shorthand)")
	flag.Parse()

	// Initialize logger
	util.InitializeLogger(config.VerbosityToLevel(verbose))
	logger := util.GetLogger("main")

	mnt := flag.Arg(0)
	logger.Info().Int("verbose", verbose).Str("config", configPath).Str("mnt", mnt).Msg("overfs initializing")
	// Check if mount point is provided
	if mnt == "" {
		logger.Fatal().Msg("Mount point not specified; it must be passed as the argument")
	}
	// Try unmount if requested
	if umount { // send cli command
		cmd := exec.Command("fusermount", "-u", mnt)
		// we ignore error here if not already mounted
		cmd.Run() // nolint:errcheck
	}

	cfg := config.NewDefaultConfig()
	if configPath != "" {
		override, err := config.LoadConfigOverrideFile(configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("config", configPath).Msg("Failed to load config file")
		}
		cfg.Merge(override)
	}
	// CLI verbosity wins over the config file
	cfg.LogLvl = config.VerbosityToLevel(verbose)

	// Register all built-in providers
	registry := providers.NewRegistry()
	providers.RegisterBuiltins(registry)

	// Init the vfs and perform declarative mounts
	v := vfs.New(cfg, nil)
	ctx := context.Background()
	mounted := 0
	for _, entry := range cfg.Mounts {
		provider, err := registry.New(entry)
		if err != nil {
			logger.Error().Err(err).Str("path", entry.Path).Str("provider", entry.Provider).Msg("Failed to build provider")
			continue
		}
		if entry.Pick != "" {
			_, err = v.MountLocalFileFrom(ctx, provider, entry.Path)
		} else {
			_, err = v.MountLocalFolderFrom(ctx, provider, entry.Path)
		}
		if err != nil {
			logger.Error().Err(err).Str("path", entry.Path).Str("root", entry.Root).Msg("Mount failed")
			continue
		}
		mounted++
	}
	logger.Info().Int("mounts", mounted).Msg("Local mounts established")

	// Serve
	srv := server.New(cfg, v)
	if err := srv.Serve(mnt); err != nil {
		logger.Fatal().Err(err).Msg("Failed to mount filesystem")
	}

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	logger.Info().Str("mountpoint", mnt).Msg("Filesystem mounted successfully")

	// Wait for termination signal
	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")

	// Unmount the filesystem
	if err := srv.Unmount(); err != nil {
		logger.Error().Err(err).Msg("Failed to unmount filesystem")
	} else {
		logger.Info().Msg("Filesystem unmounted successfully")
	}
}

package cli

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/figwatch/internal/config"
	"github.com/hupe1980/figwatch/internal/convert"
	"github.com/hupe1980/figwatch/internal/latex"
	"github.com/hupe1980/figwatch/internal/logging"
	"github.com/hupe1980/figwatch/internal/pidfile"
	"github.com/hupe1980/figwatch/internal/roots"
	"github.com/hupe1980/figwatch/internal/watch"
)

type watchOptions struct {
	foreground bool
	stop       bool
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch figure directories and auto-convert on change",
		Long: `Watch monitors every registered figure directory (plus the current
working directory) for changes to vector sources. Changes are debounced
per file; once a save settles, the figure is recompiled and its include
snippet is copied to the clipboard.

By default the watcher detaches into the background and records its PID
in the data directory. Use --foreground to keep it attached to the
terminal, and --stop to terminate a running background watcher.

Editing the roots file causes the running watcher to rebuild its watch
set on the fly — no restart needed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.foreground, "foreground", false, "run in the foreground instead of daemonizing")
	f.BoolVar(&opts.stop, "stop", false, "stop a running background watcher")
	f.Duration("debounce", time.Second, "quiet period before a changed figure is recompiled")
	f.String("watch-backend", config.BackendAuto, "notification backend: auto, native, fswatch")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	paths := config.PathsFromContext(ctx)
	logger := logging.FromContext(ctx)

	if opts.stop {
		return stopDaemon(cmd, paths)
	}

	if !opts.foreground {
		return spawnDaemon(cmd, cfg, paths)
	}

	if err := pidfile.Acquire(paths.PIDFile); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	defer func() { _ = pidfile.Release(paths.PIDFile) }()

	snippet, err := latex.NewSnippet(cfg.SnippetTemplate)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	converter, err := convert.New(convert.Options{
		InkscapeBin: cfg.InkscapeBin,
		ExportDPI:   cfg.ExportDPI,
		Snippet:     snippet,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	daemon := watch.NewDaemon(watch.DaemonOptions{
		Store:      roots.NewStore(paths.RootsFile),
		ConfigDir:  paths.ConfigDir,
		Backend:    cfg.Backend,
		FswatchBin: cfg.FswatchBin,
		Debounce:   cfg.Debounce,
		Handle:     converter.HandleChange,
		Logger:     logger,
	})

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("watching figures")

	return daemon.Run(sigCtx)
}

// spawnDaemon re-executes the binary detached, in foreground mode, with
// logs going to a rotating file in the data directory.
func spawnDaemon(cmd *cobra.Command, cfg *config.Config, paths *config.Paths) error {
	if running, pid, _ := pidfile.IsRunning(paths.PIDFile); running {
		return fmt.Errorf("watch daemon already running with PID %d", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable: %w", err)
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = filepath.Join(paths.ConfigDir, "figwatch.log")
	}

	args := []string{
		"watch", "--foreground",
		"--config-dir", paths.ConfigDir,
		"--log-file", logFile,
	}
	if cfg.ConfigFile != "" {
		args = append(args, "--config", cfg.ConfigFile)
	}

	child := exec.Command(exe, args...) //nolint:gosec
	if err := child.Start(); err != nil {
		return fmt.Errorf("starting watch daemon: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "watch daemon started with PID %d\n", child.Process.Pid)

	return nil
}

// stopDaemon terminates the background watcher recorded in the pidfile.
func stopDaemon(cmd *cobra.Command, paths *config.Paths) error {
	running, pid, err := pidfile.IsRunning(paths.PIDFile)
	if err != nil {
		return err
	}

	if !running {
		fmt.Fprintln(cmd.OutOrStdout(), "no watch daemon running")

		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}

	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("stopping watch daemon: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "watch daemon stopped (PID %d)\n", pid)

	return nil
}

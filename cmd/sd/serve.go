package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zulandar/stagedocs/internal/api"
	"github.com/zulandar/stagedocs/internal/cache"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the document HTTP API",
		Long:  "Starts the HTTP API serving document trees, file content and file comments.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "stagedocs.yaml", "path to stagedocs config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	a, err := newApp(ctx, cfg, appOpts{LogOut: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := a.store.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}

	defaults := a.treeOptions()
	if a.cache != nil && cfg.Cache.WarmSchedule != "" {
		w, err := cache.NewWarmer(cache.WarmerConfig{
			Cache:    a.cache,
			Source:   a.trees,
			Users:    cfg.Cache.WarmUsers,
			Schedule: cfg.Cache.WarmSchedule,
			Options:  defaults,
			Logger:   a.log,
		})
		if err != nil {
			return err
		}
		w.Start(ctx)
		defer w.Stop()
	}

	return api.Start(ctx, api.StartOpts{
		Store:        a.store,
		Trees:        a.trees,
		Content:      a.content,
		Comments:     a.comments,
		TreeDefaults: &defaults,
		Port:         cfg.Server.Port,
		Mode:         cfg.Server.Mode,
		Logger:       a.log,
		Tracer:       a.telemetry.Tracer,
		Metrics:      a.metrics,
		Out:          cmd.OutOrStdout(),
	})
}

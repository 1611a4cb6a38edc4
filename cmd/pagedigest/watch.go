package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nguyentantai21042004/pagedigest/internal/metrics"
	"github.com/nguyentantai21042004/pagedigest/internal/watcher"
	"github.com/spf13/cobra"
)

func watchCMD(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Summarize every page dropped into the input folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			a, err := newApp(ctx, *cfgPath, nil)
			if err != nil {
				return err
			}
			defer a.close()
			log := a.log

			log.Info(ctx, "========================================")
			log.Info(ctx, "Page Digest Pipeline")
			log.Info(ctx, "========================================")
			log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
			log.Info(ctx, "Provider: %s", a.cfg.Provider.Kind)
			log.Info(ctx, "Max Concurrent Processing: %d (model slots: %d)", a.cfg.Performance.MaxConcurrent, a.cfg.Performance.ModelSlots)

			if err := ensureDirectories(a.cfg); err != nil {
				return err
			}

			if addr := a.cfg.Metrics.Addr; addr != "" {
				go func() {
					if err := metrics.Serve(ctx, addr, a.registry); err != nil {
						log.Error(ctx, "Metrics server error: %v", err)
					}
				}()
				log.Info(ctx, "Metrics: http://%s/metrics", addr)
			}

			w, err := watcher.New(a.cfg.Paths.Input, a.processor.Process, log, a.cfg.Performance.MaxConcurrent)
			if err != nil {
				return err
			}
			defer w.Stop()

			// Setup graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			errChan := make(chan error, 1)
			go func() {
				errChan <- w.Start(ctx)
			}()

			log.Info(ctx, "Monitoring: %s", a.cfg.Paths.Input)
			log.Info(ctx, "Output: %s", a.cfg.Paths.Output)
			log.Info(ctx, "Press Ctrl+C to stop")

			select {
			case <-sigChan:
				log.Info(ctx, "Shutdown signal received")
			case err := <-errChan:
				if err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}

			log.Info(ctx, "Shutting down gracefully...")
			cancel()
			<-errChan
			log.Info(ctx, "Page Digest Pipeline stopped")
			return nil
		},
	}
}

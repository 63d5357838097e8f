package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pagemason/pagemason/internal/config"
	"github.com/pagemason/pagemason/internal/config/autoconfig"
	"github.com/pagemason/pagemason/internal/server"
	"github.com/pagemason/pagemason/pkg/theme"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var watch bool

	cmd := cobra.Command{
		Use:   "serve",
		Short: "Start the page builder server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return autoconfig.Invoke(func(
				cfg *config.Config,
				srv *server.Server,
				dir *theme.Dir,
				registry *theme.Registry,
				logger *zap.Logger,
			) error {
				defer func() { _ = logger.Sync() }()

				if watch || cfg.ThemeWatch {
					watcher, err := theme.Watch(dir, registry, logger)
					if err != nil {
						return err
					}
					defer func() { _ = watcher.Close() }()
					logger.Info("watching theme for changes", zap.String("theme", registry.Theme()))
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				g, ctx := errgroup.WithContext(ctx)
				g.Go(srv.ListenAndServe)
				g.Go(func() error {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					return srv.Shutdown(shutdownCtx)
				})
				return g.Wait()
			})
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the theme catalog when theme files change.")

	return &cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/username/budget-planner/internal/api"
	"github.com/username/budget-planner/internal/daemon"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var withDaemon bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.manager.Service().SeedCategories(cmd.Context()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler := api.NewHandler(a.manager, a.cfg.Daemon.MonthsAhead, logger)
			srv := &http.Server{
				Addr:         a.cfg.Server.Address,
				Handler:      api.NewRouter(handler, a.cfg.Server.AllowedOrigins),
				ReadTimeout:  a.cfg.Server.GetReadTimeout(),
				WriteTimeout: a.cfg.Server.GetWriteTimeout(),
			}

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				logger.Info("HTTP server listening", zap.String("address", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})

			g.Go(func() error {
				<-gctx.Done()
				logger.Info("Shutting down HTTP server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if withDaemon {
				// No tray in server mode
				d, err := daemon.New(a.manager, a.cfg.Daemon.Schedule, a.cfg.Daemon.MonthsAhead, false, logger)
				if err != nil {
					return err
				}
				g.Go(func() error {
					return d.Start(gctx)
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&withDaemon, "with-daemon", false, "Also run scheduled salary generation")

	return cmd
}

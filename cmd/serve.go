package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/grass-estimator/internal/server"
	"github.com/sells-group/grass-estimator/internal/snapshot"
)

var (
	servePort     int
	janitorPeriod = time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP intake server for the estimate form",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		srv := server.New(cfg.Server, server.Deps{
			Snapshots: env.Store,
			Pricing:   env.Pricing,
			Submitter: env.Submitter,
			Builder:   env.Builder,
			Notifier:  env.Notifier,
			Places:    env.Places,
			Formatter: env.Formatter,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			runJanitor(gctx, env.Store, srv, sessionTTL(), janitorPeriod)
			return nil
		})

		// Graceful shutdown
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 10*time.Second)
			defer cancel()
			return eris.Wrap(httpSrv.Shutdown(shutdownCtx), "server shutdown")
		})

		return g.Wait()
	},
}

// runJanitor purges expired snapshots and idle sessions every period until
// ctx is done.
func runJanitor(ctx context.Context, store snapshot.Store, srv *server.Server, ttl, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx, store, srv, ttl)
		}
	}
}

func sweep(ctx context.Context, store snapshot.Store, srv *server.Server, ttl time.Duration) {
	purged, err := store.DeleteExpired(ctx)
	if err != nil {
		zap.L().Warn("purge expired snapshots", zap.Error(err))
	}
	idle := srv.Sweep(ttl)
	if purged > 0 || idle > 0 {
		zap.L().Info("janitor sweep",
			zap.Int("snapshots_purged", purged),
			zap.Int("sessions_closed", idle),
		)
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

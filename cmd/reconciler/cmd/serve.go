package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bank-ledger-reconciler/cmd/reconciler/config"
	"bank-ledger-reconciler/internal/server"
	"bank-ledger-reconciler/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reconciliations over HTTP",
	Long: `Serve starts the reconciliation HTTP API.

Endpoints:
  GET  /healthz               liveness probe
  GET  /metrics               Prometheus metrics
  POST /v1/reconciliations    reconcile a JSON request body
  POST /v1/ledger-metrics     backfill cash-flow metrics from ledger entries

Matching tolerances come from the config file or RECONCILER_* environment
variables and can be overridden per request.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	viper.BindPFlag(config.KeyServerPort, serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	serverConfig, err := config.CreateServerConfig(viper.GetViper())
	if err != nil {
		return err
	}
	matchingConfig, err := config.CreateMatchingConfig(viper.GetViper())
	if err != nil {
		return err
	}

	log := logger.GetGlobalLogger().WithComponent("server")
	srv, err := server.NewServer(serverConfig, matchingConfig, log)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/ats-matcher/internal/api"
	"github.com/spigell/ats-matcher/internal/logger"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	st, err := newStore(config.Store, logger)
	if err != nil {
		logger.Fatal("creating a store", zap.Error(err))
	}

	scorer, err := newScorer(ctx, config, logger)
	if err != nil {
		logger.Fatal("configuring ai scoring", zap.Error(err))
	}

	server := api.New(st, newOrchestrator(scorer, config.Matching, logger), api.Config{
		Version: version,
		Filters: config.Filters,
	}, logger)

	srv := &http.Server{
		Addr:              config.Server.Listen,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting the http api", zap.String("listen", srv.Addr), zap.String("version", version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serving http", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down the http api")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutting down", zap.Error(err))
		}
	}
}

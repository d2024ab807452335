package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/job-finder/internal/logger"
	"github.com/spigell/job-finder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "address to listen on (default from API_HOST or 0.0.0.0)")
	serveCmd.Flags().Int("port", 0, "port to listen on (default from API_PORT or 8000)")

	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-finder api",
		zap.String("version", version),
		zap.String("addr", config.Server.Addr()),
		zap.Float64("min_relevance_score", config.Relevance.MinScore),
	)

	relevance := newRelevance(ctx, config, logger)
	defer relevance.Close()

	if relevance.AIEnabled() {
		logger.Info("ai scoring is enabled")
	}

	srv := server.New(config.Server, newSearchService(config, logger), relevance, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("serving", zap.Error(err))
		return
	}

	logger.Info("stopped")
}

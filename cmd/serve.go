package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/devhire-ats/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default is :5000)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger := setup()
	defer logger.Sync()

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("starting the devhire-ats api", zap.String("version", version))

	scorer, err := newScorer(ctx, config, newExtractor(config, logger), logger)
	if err != nil {
		logger.Fatal("building the scorer", zap.Error(err))
	}

	srv := server.New(server.Config{
		Address:        config.Server.Address,
		MaxUploadBytes: config.Server.MaxUploadBytes,
		AllowedOrigins: config.Server.AllowedOrigins,
		Version:        version,
		RateLimit:      config.Server.RateLimit,
		RateBurst:      config.Server.RateBurst,
	}, scorer, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}

	logger.Info("server stopped")
}

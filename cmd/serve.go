package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"advanced-prompt/internal/config"
	chatdomain "advanced-prompt/internal/features/chat/domain"
	"advanced-prompt/internal/features/chat/infrastructure"
	configapp "advanced-prompt/internal/features/config/application"
	sessionapp "advanced-prompt/internal/features/session/application"
	"advanced-prompt/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().String("addr", envOr("LISTEN_ADDR", ":8080"), "Address to listen on")
	cmd.Flags().String("config", envOr("APP_CONFIG_PATH", "config/app_config.json"), "Path of the JSON app config")
	cmd.Flags().String("modifiers", envOr("MODIFIERS_PATH", "config/modifiers.yaml"), "Path of the YAML modifier catalog")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	configPath, _ := cmd.Flags().GetString("config")
	modifiersPath, _ := cmd.Flags().GetString("modifiers")

	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize services
	configService := configapp.NewConfigService(config.NewAppConfigService(configPath, logger))
	if _, err := configService.Current(); err != nil {
		return fmt.Errorf("failed to load app config: %w", err)
	}

	catalog, err := chatdomain.LoadCatalog(modifiersPath)
	if err != nil {
		return err
	}
	logger.WithField("categories", len(catalog)).Info("Modifier catalog loaded")

	// Chat is disabled without an API key. The API URL is read from the app
	// config on every request.
	var client infrastructure.CompletionClient
	openaiClient, err := infrastructure.NewReloadingClient(
		os.Getenv("OPENAI_API_KEY"),
		os.Getenv("OPENAI_BASE_URL"),
		func() (string, error) {
			cfg, err := configService.Current()
			return cfg.Chat.APIURL, err
		},
		logger,
	)
	if err != nil {
		logger.WithError(err).Warn("Chat drafting disabled")
	} else {
		client = openaiClient
	}

	sessionService := sessionapp.NewSessionService(configService, client, catalog, logger)
	defer sessionService.Shutdown()

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(configService, sessionService, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

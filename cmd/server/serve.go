package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dasmlab/myanlang/pkg/langid"
	"github.com/dasmlab/myanlang/pkg/server"
	"github.com/dasmlab/myanlang/pkg/translate"
)

const (
	shutdownTimeout     = 30 * time.Second
	healthCheckInterval = 10 * time.Second
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}

	cmd.Flags().Int("port", 8000, "HTTP server port")
	cmd.Flags().Int("grpc-port", 50051, "gRPC server port")
	cmd.Flags().Bool("grpc", true, "Enable the gRPC server")
	cmd.Flags().String("mt-engine", "placeholder", "Translation engine: placeholder or libretranslate")
	cmd.Flags().String("mt-url", "http://localhost:5000", "Base URL for the translation engine API")
	mustBind(ctx.v, "http.port", cmd.Flags().Lookup("port"))
	mustBind(ctx.v, "grpc.port", cmd.Flags().Lookup("grpc-port"))
	mustBind(ctx.v, "grpc.enabled", cmd.Flags().Lookup("grpc"))
	mustBind(ctx.v, "translate.engine", cmd.Flags().Lookup("mt-engine"))
	mustBind(ctx.v, "translate.url", cmd.Flags().Lookup("mt-url"))

	return cmd
}

func runServe(parent context.Context, cmdCtx *commandContext) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, logger := cmdCtx.cfg, cmdCtx.logger

	logger.WithFields(logrus.Fields{
		"http_port":  cfg.HTTP.Port,
		"grpc":       cfg.GRPC.Enabled,
		"grpc_port":  cfg.GRPC.Port,
		"mt_engine":  cfg.Translate.Engine,
		"model_path": cfg.Model.Path,
		"cache":      cfg.Redis.Addr != "",
		"log_level":  logger.GetLevel().String(),
	}).Info("Starting myanlang server")

	comps, err := buildComponents(parent, cfg, logger)
	if err != nil {
		return err
	}
	defer comps.Close()

	if cfg.Model.Eager {
		if err := comps.loader.Warm(parent); err != nil {
			logger.WithError(err).Warn("Model not loaded at startup, classification will retry on demand")
		}
	}

	checkCtx, cancel := context.WithTimeout(parent, 10*time.Second)
	checkTranslator(checkCtx, comps.translator, logger)
	cancel()

	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}

	errChan := make(chan error, 2)

	httpServer := server.NewHTTPServer(comps.service, logger, server.HTTPConfig{
		Port:           cfg.HTTP.Port,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	go func() {
		if err := httpServer.Start(); err != nil {
			errChan <- err
		}
	}()

	watchCtx, stopWatch := context.WithCancel(parent)
	defer stopWatch()

	var grpcServer *server.GRPCServer
	if cfg.GRPC.Enabled {
		grpcServer = server.NewGRPCServer(comps.service, logger, cfg.GRPC.Port)
		go grpcServer.WatchHealth(watchCtx, healthCheckInterval)
		go func() {
			if err := grpcServer.Serve(); err != nil {
				errChan <- err
			}
		}()
	}

	sigCtx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runErr error
	select {
	case runErr = <-errChan:
		logger.WithError(runErr).Error("Server error")
	case <-sigCtx.Done():
		logger.Info("Received signal, shutting down gracefully...")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("HTTP server shutdown incomplete")
	} else {
		logger.Info("HTTP server stopped gracefully")
	}

	return runErr
}

// serviceLanguages are the codes every translation request resolves to.
var serviceLanguages = []string{langid.Myanmar.String(), langid.English.String()}

// checkTranslator logs the translator's health and the languages it offers,
// warning when either service language is missing. Failures never stop startup.
func checkTranslator(ctx context.Context, t translate.Translator, logger *logrus.Logger) {
	if err := t.CheckHealth(ctx); err != nil {
		logger.WithError(err).Warn("Translator health check failed, but continuing anyway")
		return
	}
	logger.Info("Translator health check passed")

	langs, err := t.SupportedLanguages(ctx)
	if err != nil {
		logger.WithError(err).Warn("Could not list translator languages")
		return
	}

	var missing []string
	for _, want := range serviceLanguages {
		if !slices.Contains(langs, want) {
			missing = append(missing, want)
		}
	}

	entry := logger.WithFields(logrus.Fields{"languages": langs})
	if len(missing) > 0 {
		entry.WithField("missing", missing).Warn("Translator does not support every service language")
		return
	}
	entry.Info("Translator supports all service languages")
}

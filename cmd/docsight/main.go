// Package main is the Docsight server entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/docsight/docsight/internal/config"
	"github.com/docsight/docsight/internal/encode"
	"github.com/docsight/docsight/internal/render"
	"github.com/docsight/docsight/internal/server"
	"github.com/docsight/docsight/internal/upload"
	"github.com/docsight/docsight/internal/vision"
	"github.com/docsight/docsight/pkg/utils"
)

var version = "dev"

const apiKeyEnv = "OPENAI_API_KEY"

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "config file path (optional; defaults apply without one)")
	debug := flag.Bool("debug", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("docsight version %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		logger.Fatal("model service API key not found; refusing to start",
			zap.String("env", apiKeyEnv))
	}

	spool, err := upload.NewSpool(cfg.Upload.Dir)
	if err != nil {
		logger.Fatal("Failed to initialize upload spool", zap.Error(err))
	}
	renderer := render.NewRenderer(cfg.Render.DPI, cfg.Render.Workers, cfg.Render.Timeout())
	encoder := encode.NewEncoder(cfg.Render.JPEGQuality)
	analyzer := vision.NewClient(&cfg.Vision, apiKey)

	srv := server.NewServer(renderer, encoder, analyzer, spool, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/network/netpoll"
	"github.com/spf13/cobra"

	_ "github.com/johnwlockwood/knowledge-graph/docs" // swagger docs
	"github.com/johnwlockwood/knowledge-graph/internal/config"
	"github.com/johnwlockwood/knowledge-graph/internal/handler"
	"github.com/johnwlockwood/knowledge-graph/internal/infrastructure/captcha"
	"github.com/johnwlockwood/knowledge-graph/internal/infrastructure/openai"
	"github.com/johnwlockwood/knowledge-graph/internal/ratelimit"
	"github.com/johnwlockwood/knowledge-graph/internal/router"
	"github.com/johnwlockwood/knowledge-graph/internal/task"
	"github.com/johnwlockwood/knowledge-graph/internal/usecase"
	"github.com/johnwlockwood/knowledge-graph/pkg/logger"
)

//	@title			Knowledge Graph API
//	@version		0.1.0
//	@description	Streaming knowledge-graph generation service: turns a free-text subject into nodes and edges via LLM structured generation

//	@contact.name	API Support
//	@contact.email	support@example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:9000
//	@BasePath	/api

var (
	cfgFile string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "kg-apiserver",
	Short: "Knowledge graph generation API server",
	Long: `kg-apiserver is an HTTP API server built with the Hertz framework.
It generates knowledge graphs from free-text subjects through an LLM
structured-generation backend, streamed entity by entity over NDJSON.`,
	Version: version,
	Run:     runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	slog.Info("knowledge graph API server starting...",
		"version", version,
		"config", cfgFile,
	)

	// Route Hertz's own log output through slog
	hlog.SetLogger(logger.NewHertzAdapter(slog.Default()))

	gate, err := captcha.NewGate(cfg.Verification, slog.Default())
	if err != nil {
		slog.Error("failed to initialize verification gate", "error", err)
		os.Exit(1)
	}
	if gate.Enabled() {
		slog.Info("human verification enabled", "provider_url", cfg.Verification.URL)
	} else {
		slog.Warn("human verification disabled, streaming endpoints are open")
	}

	generator := openai.NewClient(cfg.OpenAI, cfg.Models, slog.Default())
	registry := task.NewRegistry(slog.Default())
	graphUsecase := usecase.NewGraphUsecase(generator, registry, slog.Default())
	graphHandler := handler.NewGraphHandler(graphUsecase, gate, slog.Default())
	healthHandler := handler.NewHealthHandler(gate, cfg.Models.AvailableModels(), slog.Default())

	counter := ratelimit.NewCounter(cfg.RateLimit.MaxClients)

	h := server.Default(
		server.WithHostPorts(cfg.GetServerAddr()),
		server.WithReadTimeout(cfg.Server.ReadTimeout),
		server.WithWriteTimeout(cfg.Server.WriteTimeout),
		server.WithMaxRequestBodySize(cfg.Server.MaxRequestBodySize*1024*1024),
		server.WithTransport(netpoll.NewTransporter),
	)

	router.Setup(h, cfg, counter, graphHandler, healthHandler)

	slog.Info("server started",
		"address", cfg.GetServerAddr(),
		"rate_limit", cfg.RateLimit.MaxRequests,
		"window_seconds", cfg.RateLimit.WindowSeconds,
	)

	go func() {
		if err := h.Run(); err != nil {
			slog.Error("server run failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

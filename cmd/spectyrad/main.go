// Spectyrad is the prompt optimization daemon.
//
// It exposes a single HTTP endpoint, POST /v1/optimize, that rewrites LLM
// prompts into cheaper equivalents: segmentation, relevance graph
// construction, spectral stability analysis, and level-gated transforms.
//
// Configuration comes from a YAML file plus SPECTYRA_* environment
// variables. See internal/config for the full schema.
//
// Usage:
//
//	# Start with defaults (port 8077)
//	spectyrad serve
//
//	# Start with a config file
//	spectyrad serve --config /etc/spectyra/config.yaml
//
//	# Configure via environment
//	SPECTYRA_SERVER_PORT=9000 spectyrad serve
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spectyralabs/spectyra/internal/config"
	"github.com/spectyralabs/spectyra/internal/embeddings"
	"github.com/spectyralabs/spectyra/internal/engine"
	"github.com/spectyralabs/spectyra/internal/httpapi"
	"github.com/spectyralabs/spectyra/internal/logging"
	"github.com/spectyralabs/spectyra/internal/nli"
	"github.com/spectyralabs/spectyra/internal/pricing"
	"github.com/spectyralabs/spectyra/internal/registry"
	"github.com/spectyralabs/spectyra/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "spectyrad",
	Short: "Prompt optimization daemon",
	Long: `spectyrad reduces LLM token spend by rewriting prompts before they
reach the provider. It segments the prompt into semantic units, builds a
weighted relevance graph, checks spectral stability, and applies only the
transforms the stability verdict allows.`,
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the optimization server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		return run(ctx)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("spectyrad by Spectyra Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run starts the daemon and blocks until the context is cancelled.
//
// Initialization order:
//  1. Load and validate configuration
//  2. Initialize logger and telemetry
//  3. Build the service registry (NLI, embedders, pricing)
//  4. Create the engine and HTTP server
//  5. Serve until cancellation, then shut down gracefully
func run(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("starting spectyrad",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled))

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	reg := buildRegistry(cfg, logger)
	for _, f := range reg.Failures() {
		logger.Warn("service unavailable",
			zap.String("kind", f.Kind),
			zap.String("name", f.Name),
			zap.Error(f.Err))
	}

	nliSvc, ok := reg.NLI(nliServiceName(cfg))
	if !ok {
		// The static backend has no external dependencies and always builds.
		nliSvc, _ = reg.NLI("static")
	}
	embedder, ok := reg.Embedder(cfg.Embeddings.Provider)
	if !ok {
		// Hash embeddings have no external dependencies and always build.
		embedder, _ = reg.Embedder("hash")
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	eng, err := engine.New(cfg.Engine, nliSvc, embedder, reg.Pricing(),
		logger, engine.NewMetrics(promReg))
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	srv, err := httpapi.NewServer(eng, logger, &httpapi.Config{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		Gatherer: promReg,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

// buildRegistry registers every backend the configuration names. Missing
// backends are recorded as failures, not fatal errors; the engine runs
// with neutral NLI and hash embeddings when nothing else is available.
func buildRegistry(cfg *config.Config, logger *zap.Logger) *registry.Registry {
	b := registry.NewBuilder(logger).
		AddNLI("static", func() (nli.Service, error) {
			return &nli.Static{}, nil
		}).
		AddEmbedder("hash", func() (embeddings.Embedder, error) {
			return embeddings.NewHashEmbedder(), nil
		}).
		SetPricing(pricing.NewTable(nil))

	if cfg.NLI.BaseURL != "" {
		b.AddNLI("remote", func() (nli.Service, error) {
			return nli.NewClient(nli.ClientConfig{
				BaseURL:           cfg.NLI.BaseURL,
				Timeout:           cfg.NLI.Timeout,
				MaxBatchSize:      cfg.NLI.MaxBatchSize,
				RequestsPerSecond: cfg.NLI.RequestsPerSecond,
			}, logger)
		})
	}
	if cfg.Embeddings.Provider == "fastembed" {
		b.AddEmbedder("fastembed", func() (embeddings.Embedder, error) {
			return embeddings.NewFastEmbedder(embeddings.FastEmbedConfig{
				Model:    cfg.Embeddings.Model,
				CacheDir: cfg.Embeddings.CacheDir,
			})
		})
	}

	return b.Build()
}

// nliServiceName picks the remote backend when one is configured.
func nliServiceName(cfg *config.Config) string {
	if cfg.NLI.BaseURL != "" {
		return "remote"
	}
	return "static"
}

// Package config loads and validates spectyrad configuration from YAML
// and environment variables. Out-of-range engine knobs are rejected here,
// at startup, never at request time.
package config

import (
	"fmt"
	"time"

	"github.com/spectyralabs/spectyra/internal/logging"
)

// Config is the full daemon configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    logging.Config   `koanf:"logging"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Engine     EngineConfig     `koanf:"engine"`
	NLI        NLIConfig        `koanf:"nli"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// TelemetryConfig holds trace export settings.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

// EngineConfig holds the optimization engine knobs.
type EngineConfig struct {
	// StabilityTLow/StabilityTHigh bound the mixed zone of the verdict.
	StabilityTLow  float64 `koanf:"stability_t_low"`
	StabilityTHigh float64 `koanf:"stability_t_high"`
	// SimilarityReuseThreshold is refpack's near-identical cosine cutoff.
	SimilarityReuseThreshold float64 `koanf:"similarity_reuse_threshold"`
	// MaxOutputTokensOptimized caps the generation budget advertised for
	// optimized prompts, independent of transform choice.
	MaxOutputTokensOptimized int `koanf:"max_output_tokens_optimized"`
	// CodePatchModeDefault treats unlabeled requests as code-path when true.
	CodePatchModeDefault bool `koanf:"code_patch_mode_default"`
	// MaxRefs is the default refpack budget.
	MaxRefs int `koanf:"max_refs"`
	// NLIPairBudget caps classification pairs per request.
	NLIPairBudget int `koanf:"nli_pair_budget"`
}

// NLIConfig holds the classification sidecar settings.
type NLIConfig struct {
	// BaseURL of the NLI sidecar. Empty disables remote classification;
	// every pair is then neutral.
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	MaxBatchSize      int           `koanf:"max_batch_size"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// EmbeddingsConfig selects the embedding provider for refpack.
type EmbeddingsConfig struct {
	// Provider is "hash" or "fastembed".
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	CacheDir string `koanf:"cache_dir"`
}

// Default returns the documented defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "localhost", Port: 8077},
		Logging: logging.DefaultConfig(),
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "spectyrad",
		},
		Engine: EngineConfig{
			StabilityTLow:            0.4,
			StabilityTHigh:           0.7,
			SimilarityReuseThreshold: 0.92,
			MaxOutputTokensOptimized: 2048,
			CodePatchModeDefault:     false,
			MaxRefs:                  8,
			NLIPairBudget:            64,
		},
		NLI: NLIConfig{
			Timeout:           10 * time.Second,
			MaxBatchSize:      16,
			RequestsPerSecond: 8,
		},
		Embeddings: EmbeddingsConfig{Provider: "hash"},
	}
}

// Validate checks every section. Threshold errors name the offending
// field.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	switch c.Embeddings.Provider {
	case "", "hash", "fastembed":
	default:
		return fmt.Errorf("config: embeddings.provider %q unknown (want hash or fastembed)", c.Embeddings.Provider)
	}
	return nil
}

// Validate checks the engine knob ranges.
func (c EngineConfig) Validate() error {
	if c.StabilityTLow < 0 || c.StabilityTLow > 1 {
		return fmt.Errorf("config: engine.stability_t_low %.3f outside [0,1]", c.StabilityTLow)
	}
	if c.StabilityTHigh < 0 || c.StabilityTHigh > 1 {
		return fmt.Errorf("config: engine.stability_t_high %.3f outside [0,1]", c.StabilityTHigh)
	}
	if c.StabilityTLow > c.StabilityTHigh {
		return fmt.Errorf("config: engine.stability_t_low %.3f > engine.stability_t_high %.3f",
			c.StabilityTLow, c.StabilityTHigh)
	}
	if c.SimilarityReuseThreshold < 0 || c.SimilarityReuseThreshold > 1 {
		return fmt.Errorf("config: engine.similarity_reuse_threshold %.3f outside [0,1]", c.SimilarityReuseThreshold)
	}
	if c.MaxOutputTokensOptimized <= 0 {
		return fmt.Errorf("config: engine.max_output_tokens_optimized must be > 0, got %d", c.MaxOutputTokensOptimized)
	}
	if c.MaxRefs < 0 {
		return fmt.Errorf("config: engine.max_refs must be >= 0, got %d", c.MaxRefs)
	}
	if c.NLIPairBudget <= 0 {
		return fmt.Errorf("config: engine.nli_pair_budget must be > 0, got %d", c.NLIPairBudget)
	}
	return nil
}

package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/spectyralabs/spectyra/internal/config"
	"github.com/spectyralabs/spectyra/internal/embeddings"
	"github.com/spectyralabs/spectyra/internal/graph"
	"github.com/spectyralabs/spectyra/internal/logging"
	"github.com/spectyralabs/spectyra/internal/nli"
	"github.com/spectyralabs/spectyra/internal/pricing"
	"github.com/spectyralabs/spectyra/internal/signal"
	"github.com/spectyralabs/spectyra/internal/spectral"
	"github.com/spectyralabs/spectyra/internal/textnorm"
	"github.com/spectyralabs/spectyra/internal/transform"
	"github.com/spectyralabs/spectyra/internal/unit"
	"github.com/spectyralabs/spectyra/internal/workload"
)

// Engine wires the pipeline stages together. It holds no per-request
// state; concurrent Optimize calls are independent.
type Engine struct {
	cfg      config.EngineConfig
	analyzer *spectral.Analyzer
	semantic *graph.SemanticBuilder
	pipeline *transform.Pipeline
	pricing  pricing.Estimator
	logger   *zap.Logger
	metrics  *Metrics
	tracer   trace.Tracer
}

// New creates an engine. The NLI service backs the semantic edge builder
// and the embedder backs refpack; both are required. metrics may be nil.
func New(cfg config.EngineConfig, nliSvc nli.Service, embedder embeddings.Embedder, priceTable pricing.Estimator, logger *zap.Logger, metrics *Metrics) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if nliSvc == nil {
		return nil, fmt.Errorf("engine: nli service is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("engine: embedder is required")
	}
	if priceTable == nil {
		priceTable = pricing.NewTable(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	analyzer, err := spectral.NewAnalyzer(spectral.Config{
		TLow:  cfg.StabilityTLow,
		THigh: cfg.StabilityTHigh,
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := transform.NewPipeline(transform.Config{
		SimilarityReuseThreshold: cfg.SimilarityReuseThreshold,
		MaxRefs:                  cfg.MaxRefs,
	}, embedder, logger)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:      cfg,
		analyzer: analyzer,
		semantic: graph.NewSemanticBuilder(nliSvc, cfg.NLIPairBudget, logger),
		pipeline: pipeline,
		pricing:  priceTable,
		logger:   logger.Named("engine"),
		metrics:  metrics,
		tracer:   otel.Tracer("spectyra/engine"),
	}, nil
}

// Optimize runs the full pipeline for one request. The result is produced
// atomically: on cancellation between stages no partial report or diff is
// returned.
func (e *Engine) Optimize(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if err := req.validate(); err != nil {
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "engine.optimize")
	defer span.End()

	path := e.resolvePath(req.Path)
	level, _ := transform.ParseLevel(req.Level)

	units := e.segment(req, path)
	sig := e.extract(req, units)

	edges, err := e.buildEdges(ctx, units, path)
	if err != nil {
		return nil, err
	}

	report := e.analyzer.Analyze(len(units), edges)
	span.SetAttributes(
		attribute.Int("units", len(units)),
		attribute.Int("edges", len(edges)),
		attribute.String("recommendation", string(report.Recommendation)),
	)

	maxRefs := req.MaxRefs
	if maxRefs == 0 {
		maxRefs = e.cfg.MaxRefs
	}

	res, err := e.pipeline.Run(ctx, units, edges, report, transform.Options{
		Level:              level,
		MaxRefs:            maxRefs,
		CodemapDetailLevel: req.CodemapDetailLevel,
		KeepLastTurns:      req.KeepLastTurns,
	})
	if err != nil {
		return nil, err
	}

	diff := res.Diff
	diff.EstimatedSavedUSD = e.pricing.EstimateCost(pricing.Usage{
		InputTokens: diff.TokensBefore - diff.TokensAfter,
	}, req.Provider)

	promptLength := 0
	for _, u := range units {
		promptLength += len(u.Text)
	}
	key := workload.ComputeKey(workload.KeyInput{
		Path:         string(path),
		Provider:     req.Provider,
		Model:        req.Model,
		Scenario:     req.Scenario,
		PromptLength: promptLength,
		TaskType:     req.TaskType,
	})
	hash, err := workload.ComputePromptHash(res.Content)
	if err != nil {
		return nil, fmt.Errorf("engine: hash optimized prompt: %w", err)
	}

	out := &Result{
		OptimizedContent:  res.Content,
		AppliedTransforms: res.Applied,
		Diff:              diff,
		Safety:            res.Safety,
		MaxOutputTokens:   e.cfg.MaxOutputTokensOptimized,
		WorkloadKey:       key,
		PromptHash:        hash,
	}
	if req.IncludeDebug {
		out.Debug = &DebugInfo{
			Budgets: Budgets{
				MaxRefs:         maxRefs,
				MaxOutputTokens: e.cfg.MaxOutputTokensOptimized,
				NLIPairBudget:   e.cfg.NLIPairBudget,
			},
			Spectral:   report,
			Transforms: res.PerTransform,
			Signals:    sig,
		}
	}

	e.metrics.observe(string(level), string(report.Recommendation),
		diff.TokensBefore-diff.TokensAfter, res.Applied, time.Since(start).Seconds())
	e.logger.Info("request optimized",
		append(logging.ContextFields(ctx),
			zap.String("level", string(level)),
			zap.String("path", string(path)),
			zap.String("recommendation", string(report.Recommendation)),
			zap.Int("tokens_saved", diff.TokensBefore-diff.TokensAfter),
			zap.Strings("applied", res.Applied),
		)...)

	return out, nil
}

// resolvePath applies the configured default when the request does not
// declare a path.
func (e *Engine) resolvePath(path string) unit.PathContext {
	if path != "" {
		return unit.PathContext(path)
	}
	if e.cfg.CodePatchModeDefault {
		return unit.PathCode
	}
	return unit.PathTalk
}

// segment turns the request payload into semantic units.
func (e *Engine) segment(req Request, path unit.PathContext) []unit.Unit {
	if len(req.Blocks) > 0 {
		return unit.Segment(req.Blocks, path)
	}
	return unit.SegmentText(req.RawText, path, unit.OriginUser)
}

// extract gathers the structured signals used for debug views and
// logging: constraints, diagnostics, touched files, and the deduplicated
// list of repeated user asks (last occurrence wins).
func (e *Engine) extract(req Request, units []unit.Unit) Signals {
	var full strings.Builder
	var askLines []string
	for _, u := range units {
		full.WriteString(u.Text)
		full.WriteString("\n")
		if u.Kind == unit.KindNarrative {
			askLines = append(askLines, strings.Split(u.Text, "\n")...)
		}
	}
	text := full.String()

	return Signals{
		Constraints:    signal.ExtractConstraints(text),
		FailingSignals: signal.ExtractFailingSignals(text),
		TouchedFiles:   signal.ExtractTouchedFiles(text),
		UserAsks:       textnorm.DedupeSentencesKeepLast(askLines),
	}
}

// buildEdges concatenates the structural and semantic edge families. The
// semantic builder is the pipeline's only suspension point.
func (e *Engine) buildEdges(ctx context.Context, units []unit.Unit, path unit.PathContext) ([]graph.Edge, error) {
	_, span := e.tracer.Start(ctx, "engine.build_edges")
	defer span.End()

	edges := graph.BuildDependencyEdges(units, path)

	semantic, err := e.semantic.Build(ctx, units)
	if err != nil {
		return nil, err
	}
	return append(edges, semantic...), nil
}

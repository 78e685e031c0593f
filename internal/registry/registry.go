// Package registry holds the capability backends the engine resolves by
// name: NLI services, embedders, and the pricing estimator. The registry
// is an explicit value constructed once at startup and passed by
// reference; it is never global mutable state. Individual backend
// construction failures are collected and logged, not fatal.
package registry

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/spectyralabs/spectyra/internal/embeddings"
	"github.com/spectyralabs/spectyra/internal/nli"
	"github.com/spectyralabs/spectyra/internal/pricing"
)

// Failure records one backend that could not be constructed.
type Failure struct {
	Kind string
	Name string
	Err  error
}

// Registry is the immutable capability lookup built by Builder.
type Registry struct {
	nliServices map[string]nli.Service
	embedders   map[string]embeddings.Embedder
	pricing     pricing.Estimator
	failures    []Failure
}

// NLI returns the named classification backend.
func (r *Registry) NLI(name string) (nli.Service, bool) {
	svc, ok := r.nliServices[name]
	return svc, ok
}

// Embedder returns the named embedding backend.
func (r *Registry) Embedder(name string) (embeddings.Embedder, bool) {
	e, ok := r.embedders[name]
	return e, ok
}

// Pricing returns the cost estimator. Always non-nil: the zero estimator
// prices everything at 0.
func (r *Registry) Pricing() pricing.Estimator {
	return r.pricing
}

// Failures returns the collected registration failures.
func (r *Registry) Failures() []Failure {
	return r.failures
}

// Builder accumulates backend constructors and assembles a Registry.
type Builder struct {
	logger      *zap.Logger
	nliFns      map[string]func() (nli.Service, error)
	embedderFns map[string]func() (embeddings.Embedder, error)
	pricing     pricing.Estimator
}

// NewBuilder creates an empty builder.
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		logger:      logger.Named("registry"),
		nliFns:      make(map[string]func() (nli.Service, error)),
		embedderFns: make(map[string]func() (embeddings.Embedder, error)),
	}
}

// AddNLI registers a classification backend constructor under name.
func (b *Builder) AddNLI(name string, fn func() (nli.Service, error)) *Builder {
	b.nliFns[name] = fn
	return b
}

// AddEmbedder registers an embedding backend constructor under name.
func (b *Builder) AddEmbedder(name string, fn func() (embeddings.Embedder, error)) *Builder {
	b.embedderFns[name] = fn
	return b
}

// SetPricing sets the cost estimator.
func (b *Builder) SetPricing(e pricing.Estimator) *Builder {
	b.pricing = e
	return b
}

// Build constructs every registered backend. Failures are logged and
// recorded on the registry; successful backends remain available.
func (b *Builder) Build() *Registry {
	reg := &Registry{
		nliServices: make(map[string]nli.Service),
		embedders:   make(map[string]embeddings.Embedder),
		pricing:     b.pricing,
	}
	if reg.pricing == nil {
		reg.pricing = pricing.NewTable(nil)
	}

	for _, name := range sortedKeys(b.nliFns) {
		svc, err := b.nliFns[name]()
		if err != nil {
			reg.failures = append(reg.failures, Failure{Kind: "nli", Name: name, Err: err})
			b.logger.Warn("nli backend unavailable", zap.String("name", name), zap.Error(err))
			continue
		}
		reg.nliServices[name] = svc
	}

	for _, name := range sortedKeys(b.embedderFns) {
		e, err := b.embedderFns[name]()
		if err != nil {
			reg.failures = append(reg.failures, Failure{Kind: "embedder", Name: name, Err: err})
			b.logger.Warn("embedder backend unavailable", zap.String("name", name), zap.Error(err))
			continue
		}
		reg.embedders[name] = e
	}

	return reg
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ErrNotRegistered builds the standard lookup error.
func ErrNotRegistered(kind, name string) error {
	return fmt.Errorf("registry: no %s backend named %q", kind, name)
}

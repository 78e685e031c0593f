// Package spectral analyzes the unit/edge graph and produces a stability
// verdict. Connectivity is measured by the algebraic connectivity (second
// smallest eigenvalue of the graph Laplacian); internal inconsistency by
// the summed squared weight of contradiction edges.
package spectral

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/spectyralabs/spectyra/internal/graph"
)

// Recommendation is the discrete stability verdict.
type Recommendation string

const (
	RecommendStable   Recommendation = "stable"
	RecommendUnstable Recommendation = "unstable"
	RecommendMixed    Recommendation = "mixed"
)

// Report is the stability verdict for one request. It is produced fresh
// per request and never mutated after creation.
type Report struct {
	NNodes              int            `json:"nNodes"`
	NEdges              int            `json:"nEdges"`
	StabilityIndex      float64        `json:"stabilityIndex"`
	Lambda2             *float64       `json:"lambda2,omitempty"`
	ContradictionEnergy float64        `json:"contradictionEnergy"`
	Recommendation      Recommendation `json:"recommendation"`
	StableCount         int            `json:"stableCount"`
	UnstableCount       int            `json:"unstableCount"`

	// UnstableUnits lists the indices classified unstable, driving
	// per-unit transform eligibility.
	UnstableUnits []int `json:"unstableUnits,omitempty"`
}

// Config holds the analyzer thresholds. The [TLow, THigh) band is the
// "mixed" zone.
type Config struct {
	TLow  float64
	THigh float64
}

// DefaultConfig returns the default threshold band.
func DefaultConfig() Config {
	return Config{TLow: 0.4, THigh: 0.7}
}

// Validate rejects out-of-range or inverted thresholds. Configuration
// errors surface at startup, not at request time.
func (c Config) Validate() error {
	if c.TLow < 0 || c.TLow > 1 {
		return fmt.Errorf("spectral: t_low %.3f outside [0,1]", c.TLow)
	}
	if c.THigh < 0 || c.THigh > 1 {
		return fmt.Errorf("spectral: t_high %.3f outside [0,1]", c.THigh)
	}
	if c.TLow > c.THigh {
		return fmt.Errorf("spectral: t_low %.3f > t_high %.3f", c.TLow, c.THigh)
	}
	return nil
}

// Analyzer computes stability reports.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer after validating the config.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg}, nil
}

// Analyze builds the Laplacian L = D - W over nNodes nodes and the given
// edges and derives the verdict. Graphs with fewer than 2 nodes are
// trivially stable: there is nothing to destabilize.
func (a *Analyzer) Analyze(nNodes int, edges []graph.Edge) Report {
	if nNodes < 2 {
		return Report{
			NNodes:         nNodes,
			StabilityIndex: 1,
			Recommendation: RecommendStable,
			StableCount:    nNodes,
		}
	}

	lambda2 := algebraicConnectivity(nNodes, edges)
	energy := contradictionEnergy(edges)
	index := a.stabilityIndex(lambda2, energy)

	unstable := classifyUnits(nNodes, edges)

	return Report{
		NNodes:              nNodes,
		NEdges:              len(edges),
		StabilityIndex:      index,
		Lambda2:             &lambda2,
		ContradictionEnergy: energy,
		Recommendation:      a.recommend(index),
		StableCount:         nNodes - len(unstable),
		UnstableCount:       len(unstable),
		UnstableUnits:       unstable,
	}
}

// algebraicConnectivity computes the second smallest eigenvalue of the
// Laplacian. Numerical noise can push small eigenvalues slightly negative;
// they are clamped to zero.
func algebraicConnectivity(n int, edges []graph.Edge) float64 {
	lap := mat.NewSymDense(n, nil)
	for _, e := range edges {
		if e.I >= n || e.J >= n {
			continue
		}
		lap.SetSym(e.I, e.J, lap.At(e.I, e.J)-e.Weight)
		lap.SetSym(e.I, e.I, lap.At(e.I, e.I)+e.Weight)
		lap.SetSym(e.J, e.J, lap.At(e.J, e.J)+e.Weight)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(lap, false); !ok {
		// Factorization failure is treated as a disconnected graph.
		return 0
	}
	values := eig.Values(nil)
	lambda2 := values[1] // ascending order
	if lambda2 < 0 {
		return 0
	}
	return lambda2
}

// contradictionEnergy is the sum of squared weights over contradiction
// edges.
func contradictionEnergy(edges []graph.Edge) float64 {
	var energy float64
	for _, e := range edges {
		if e.Type == graph.EdgeContradiction {
			energy += e.Weight * e.Weight
		}
	}
	return energy
}

// stabilityIndex blends connectivity and contradiction into [0,1]:
//
//	index = sigmoid(2*lambda2) * exp(-contradictionEnergy)
//
// Monotonically increasing in lambda2 and decreasing in energy. The exact
// shape is a tunable policy, not a fixed law; the threshold band in Config
// bounds the mixed zone.
func (a *Analyzer) stabilityIndex(lambda2, energy float64) float64 {
	connectivity := 1 / (1 + math.Exp(-2*lambda2))
	index := connectivity * math.Exp(-energy)
	if index < 0 {
		return 0
	}
	if index > 1 {
		return 1
	}
	return index
}

func (a *Analyzer) recommend(index float64) Recommendation {
	switch {
	case index >= a.cfg.THigh:
		return RecommendStable
	case index < a.cfg.TLow:
		return RecommendUnstable
	default:
		return RecommendMixed
	}
}

// classifyUnits thresholds each unit's local contribution: a unit whose
// incident contradiction weight outweighs its incident similarity and
// dependency weight is unstable.
func classifyUnits(n int, edges []graph.Edge) []int {
	contra := make([]float64, n)
	support := make([]float64, n)
	for _, e := range edges {
		if e.I >= n || e.J >= n {
			continue
		}
		if e.Type == graph.EdgeContradiction {
			contra[e.I] += e.Weight
			contra[e.J] += e.Weight
		} else {
			support[e.I] += e.Weight
			support[e.J] += e.Weight
		}
	}
	var unstable []int
	for i := 0; i < n; i++ {
		if contra[i] > support[i] {
			unstable = append(unstable, i)
		}
	}
	return unstable
}

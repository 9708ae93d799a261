package attribution

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

// Attribution model names. Every conversion is attributed under all of
// them so historical comparisons stay possible.
const (
	ModelFirstTouch    = "first_touch"
	ModelLastTouch     = "last_touch"
	ModelLinear        = "linear"
	ModelTimeDecay     = "time_decay"
	ModelPositionBased = "position_based"
	ModelDataDriven    = "data_driven"
)

// ModelNames lists all supported attribution models in storage order
var ModelNames = []string{
	ModelFirstTouch,
	ModelLastTouch,
	ModelLinear,
	ModelTimeDecay,
	ModelPositionBased,
	ModelDataDriven,
}

// ContributionTable is a precomputed per-channel marginal-contribution
// snapshot consumed by the data-driven model. ComputedAt lets callers
// judge staleness; a stale table is still usable.
type ContributionTable struct {
	Contributions map[string]float64
	PathCount     int
	ComputedAt    time.Time
}

// Config controls allocation behavior
type Config struct {
	HalfLifeDays float64
	MinPaths     int
}

// Engine allocates conversion revenue across touchpoints. It holds no
// cross-request state; the contribution table is supplied per call.
type Engine struct {
	cfg Config
	log *zap.Logger
}

// New creates an attribution engine
func New(cfg Config, log *zap.Logger) *Engine {
	if cfg.HalfLifeDays <= 0 {
		cfg.HalfLifeDays = 7
	}
	return &Engine{cfg: cfg, log: log}
}

// Attribute allocates one conversion's revenue across its touchpoints
// under one model. Touchpoints are sorted internally by occurred_at, so
// input order never changes the outcome. Credits sum to the conversion's
// revenue amount.
func (e *Engine) Attribute(conv *domain.ConversionEvent, touchpoints []*domain.Touchpoint, modelName string, table *ContributionTable) ([]*domain.AttributionResult, error) {
	if len(touchpoints) == 0 {
		return nil, &domain.EmptyPathError{ConversionID: conv.ConversionID}
	}

	ordered := make([]*domain.Touchpoint, len(touchpoints))
	copy(ordered, touchpoints)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OccurredAt < ordered[j].OccurredAt
	})

	var weights []float64
	fallback := false

	switch modelName {
	case ModelFirstTouch:
		weights = singleTouchWeights(len(ordered), 0)
	case ModelLastTouch:
		weights = singleTouchWeights(len(ordered), len(ordered)-1)
	case ModelLinear:
		weights = linearWeights(len(ordered))
	case ModelTimeDecay:
		weights = e.timeDecayWeights(conv.OccurredAt, ordered)
	case ModelPositionBased:
		weights = positionBasedWeights(len(ordered))
	case ModelDataDriven:
		weights, fallback = e.dataDrivenWeights(ordered, table)
	default:
		return nil, &domain.UnknownModelError{Name: modelName}
	}

	now := time.Now()
	results := make([]*domain.AttributionResult, len(ordered))
	for i, tp := range ordered {
		results[i] = &domain.AttributionResult{
			ConversionID:    conv.ConversionID,
			TouchpointID:    tp.TouchpointID,
			ModelName:       modelName,
			CreditedRevenue: weights[i] * conv.RevenueAmount,
			Fallback:        fallback,
			ComputedAt:      now,
		}
	}

	return results, nil
}

// AttributeAll computes every supported model for one conversion
func (e *Engine) AttributeAll(conv *domain.ConversionEvent, touchpoints []*domain.Touchpoint, table *ContributionTable) ([]*domain.AttributionResult, error) {
	var all []*domain.AttributionResult
	for _, name := range ModelNames {
		results, err := e.Attribute(conv, touchpoints, name, table)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

func singleTouchWeights(n, index int) []float64 {
	weights := make([]float64, n)
	weights[index] = 1
	return weights
}

func linearWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1 / float64(n)
	}
	return weights
}

func (e *Engine) timeDecayWeights(conversionTime int64, ordered []*domain.Touchpoint) []float64 {
	halfLifeSeconds := e.cfg.HalfLifeDays * 86400
	weights := make([]float64, len(ordered))
	sum := 0.0
	for i, tp := range ordered {
		age := float64(conversionTime - tp.OccurredAt)
		if age < 0 {
			age = 0
		}
		weights[i] = math.Pow(2, -age/halfLifeSeconds)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// positionBasedWeights gives 40% to the first and last touches and splits
// the remaining 20% across the middle; short paths degrade to linear.
func positionBasedWeights(n int) []float64 {
	if n <= 2 {
		return linearWeights(n)
	}

	weights := make([]float64, n)
	weights[0] = 0.4
	weights[n-1] = 0.4
	middle := 0.2 / float64(n-2)
	for i := 1; i < n-1; i++ {
		weights[i] = middle
	}
	return weights
}

// dataDrivenWeights allocates credit proportional to each touchpoint
// channel's precomputed marginal contribution. Without a reliable table
// it falls back to linear and flags the results.
func (e *Engine) dataDrivenWeights(ordered []*domain.Touchpoint, table *ContributionTable) ([]float64, bool) {
	if table == nil || table.PathCount < e.cfg.MinPaths {
		pathCount := 0
		if table != nil {
			pathCount = table.PathCount
		}
		e.log.Warn("Data-driven attribution falling back to linear",
			zap.Int("path_count", pathCount),
			zap.Int("min_paths", e.cfg.MinPaths))
		return linearWeights(len(ordered)), true
	}

	weights := make([]float64, len(ordered))
	sum := 0.0
	for i, tp := range ordered {
		w := table.Contributions[tp.Channel]
		if w < 0 {
			w = 0
		}
		weights[i] = w
		sum += w
	}

	if sum <= 0 {
		e.log.Warn("Contribution table has no mass for observed channels, falling back to linear")
		return linearWeights(len(ordered)), true
	}

	for i := range weights {
		weights[i] /= sum
	}
	return weights, false
}

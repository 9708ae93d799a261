package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/anomaly"
	"github.com/BarkinBalci/customer-scoring-engine/internal/attribution"
	"github.com/BarkinBalci/customer-scoring-engine/internal/config"
	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
	"github.com/BarkinBalci/customer-scoring-engine/internal/ml"
	"github.com/BarkinBalci/customer-scoring-engine/internal/registry"
	"github.com/BarkinBalci/customer-scoring-engine/internal/repository"
)

// EngineService coordinates scoring, attribution, anomaly detection and
// retraining. It is the only component holding cross-cutting state: the
// per-model-type lifecycle states and the decoded-forest cache.
type EngineService struct {
	features  FeatureComputer
	registry  ModelRegistry
	repo      repository.Repository
	engine    *attribution.Engine
	estimator *attribution.ShapleyEstimator
	detector  *anomaly.Detector
	cfg       *config.Config
	log       *zap.Logger

	stateMu sync.Mutex
	states  map[domain.ModelType]ModelState

	forestMu sync.RWMutex
	forests  map[string]*ml.Forest
}

// NewEngineService creates the engine service
func NewEngineService(
	features FeatureComputer,
	reg ModelRegistry,
	repo repository.Repository,
	cfg *config.Config,
	log *zap.Logger,
) *EngineService {
	s := &EngineService{
		features: features,
		registry: reg,
		repo:     repo,
		engine: attribution.New(attribution.Config{
			HalfLifeDays: cfg.Attribution.HalfLifeDays,
			MinPaths:     cfg.Attribution.MinPaths,
		}, log),
		estimator: attribution.NewShapleyEstimator(cfg.Attribution.ShapleySample, log),
		detector: anomaly.New(anomaly.Config{
			MinPoints: cfg.Anomaly.MinPoints,
			Sigma:     cfg.Anomaly.Sigma,
		}),
		cfg:     cfg,
		log:     log,
		states:  make(map[domain.ModelType]ModelState),
		forests: make(map[string]*ml.Forest),
	}

	// a persisted artifact found at startup means the type was trained before
	for _, mt := range []domain.ModelType{domain.ModelCLV, domain.ModelChurn, domain.ModelLead} {
		if _, err := reg.Current(mt); err == nil {
			s.states[mt] = StateActive
		} else {
			s.states[mt] = StateUntrained
		}
	}

	return s
}

// Score computes one prediction for one customer. The active artifact is
// snapshotted once, so a concurrent promotion never changes the version
// mid-call. Passing a version pins a specific artifact for audit replay.
func (s *EngineService) Score(ctx context.Context, customerID, model, version string) (*domain.Prediction, error) {
	if !domain.ValidModelType(model) {
		return nil, &domain.UnknownModelError{Name: model}
	}
	modelType := domain.ModelType(model)

	var artifact *registry.ModelArtifact
	var err error
	if version != "" {
		artifact, err = s.registry.ByVersion(ctx, version)
		if err != nil {
			return nil, err
		}
		if artifact.ModelType != modelType {
			return nil, &domain.UnknownModelError{Name: version}
		}
	} else {
		artifact, err = s.registry.Current(modelType)
		if err != nil {
			return nil, err
		}
	}

	// hour-aligned cutoff keeps the feature cache effective
	asOf := time.Now().Truncate(time.Hour).Unix()
	vector, err := s.features.Compute(ctx, customerID, asOf)
	if err != nil {
		return nil, err
	}

	if vector.SchemaVersion != artifact.SchemaVersion {
		return nil, &domain.SchemaMismatchError{
			Expected: artifact.SchemaVersion,
			Got:      vector.SchemaVersion,
		}
	}

	forest, err := s.forest(artifact)
	if err != nil {
		return nil, err
	}

	value, err := forest.Predict(vector.Values)
	if err != nil {
		return nil, err
	}

	prediction := &domain.Prediction{
		PredictionID: uuid.NewString(),
		CustomerID:   customerID,
		ModelType:    string(modelType),
		ModelVersion: artifact.Version,
		Value:        value,
		ProducedAt:   time.Now(),
	}

	// the audit log is best-effort; a storage hiccup must not fail scoring
	if err := s.repo.InsertPredictions(ctx, []*domain.Prediction{prediction}); err != nil {
		s.log.Warn("Failed to append prediction to audit log",
			zap.String("customer_id", customerID),
			zap.Error(err))
	}

	return prediction, nil
}

// forest returns the decoded ensemble for an artifact, decoding at most
// once per version
func (s *EngineService) forest(artifact *registry.ModelArtifact) (*ml.Forest, error) {
	s.forestMu.RLock()
	forest, ok := s.forests[artifact.Version]
	s.forestMu.RUnlock()
	if ok {
		return forest, nil
	}

	forest, err := ml.UnmarshalForest(artifact.Parameters)
	if err != nil {
		return nil, err
	}

	s.forestMu.Lock()
	s.forests[artifact.Version] = forest
	s.forestMu.Unlock()

	return forest, nil
}

// evictForest drops a retired version from the decoded-forest cache so the
// cache holds at most one entry per active model type
func (s *EngineService) evictForest(version string) {
	s.forestMu.Lock()
	delete(s.forests, version)
	s.forestMu.Unlock()
}

// Anomalies loads the rolling window of a metric series and reports each
// point's verdict
func (s *EngineService) Anomalies(ctx context.Context, metricName string, window int) ([]anomaly.Flag, error) {
	if window <= 0 {
		window = s.cfg.Anomaly.WindowSize
	}

	series, err := s.repo.MetricSeries(ctx, metricName, window)
	if err != nil {
		return nil, err
	}

	points := make([]anomaly.Point, len(series))
	for i, p := range series {
		points[i] = anomaly.Point{Timestamp: p.Timestamp, Value: p.Value}
	}

	return s.detector.CheckSeries(metricName, points, window), nil
}

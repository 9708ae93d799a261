package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
	"github.com/BarkinBalci/customer-scoring-engine/internal/features"
	"github.com/BarkinBalci/customer-scoring-engine/internal/ml"
	"github.com/BarkinBalci/customer-scoring-engine/internal/registry"
)

// ModelState is one lifecycle state of a model type
type ModelState string

const (
	StateUntrained  ModelState = "untrained"
	StateTraining   ModelState = "training"
	StateActive     ModelState = "active"
	StateRetraining ModelState = "retraining"
)

const minTrainingRows = 20

// State reports the lifecycle state of a model type
func (s *EngineService) State(modelType domain.ModelType) ModelState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.states[modelType]
}

// beginTraining moves a model type into its training state, rejecting
// concurrent retrains. It returns the state to restore on failure.
func (s *EngineService) beginTraining(modelType domain.ModelType) (ModelState, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	switch s.states[modelType] {
	case StateTraining, StateRetraining:
		return "", &domain.RetrainInProgressError{ModelType: modelType}
	case StateActive:
		s.states[modelType] = StateRetraining
		return StateActive, nil
	default:
		s.states[modelType] = StateTraining
		return StateUntrained, nil
	}
}

func (s *EngineService) endTraining(modelType domain.ModelType, state ModelState) {
	s.stateMu.Lock()
	s.states[modelType] = state
	s.stateMu.Unlock()
}

// Retrain fits a fresh ensemble for one model type and promotes it only
// when it clears the validation threshold. Training builds the new
// artifact in isolation; scoring keeps reading the still-active version
// and observes the swap only after success. A failed validation leaves
// the previous model untouched.
func (s *EngineService) Retrain(ctx context.Context, model string) (*registry.ModelArtifact, error) {
	if !domain.ValidModelType(model) {
		return nil, &domain.UnknownModelError{Name: model}
	}
	modelType := domain.ModelType(model)

	previous, err := s.beginTraining(modelType)
	if err != nil {
		return nil, err
	}

	s.log.Info("Retraining started", zap.String("model_type", model))

	artifact, err := s.train(ctx, modelType)
	if err != nil {
		s.endTraining(modelType, previous)
		s.log.Warn("Retraining failed, previous model stays active",
			zap.String("model_type", model),
			zap.Error(err))
		return nil, err
	}

	retiredVersion := ""
	if current, err := s.registry.Current(modelType); err == nil {
		retiredVersion = current.Version
	}

	if err := s.registry.Promote(ctx, artifact); err != nil {
		s.endTraining(modelType, previous)
		return nil, err
	}
	if retiredVersion != "" {
		s.evictForest(retiredVersion)
	}

	s.endTraining(modelType, StateActive)
	s.log.Info("Retraining complete",
		zap.String("model_type", model),
		zap.String("version", artifact.Version),
		zap.Any("metrics", artifact.Metrics))

	return artifact, nil
}

func (s *EngineService) train(ctx context.Context, modelType domain.ModelType) (*registry.ModelArtifact, error) {
	x, y, err := s.buildDataset(ctx, modelType)
	if err != nil {
		return nil, err
	}
	if len(x) < minTrainingRows {
		return nil, fmt.Errorf("not enough training data for %s: %d rows", modelType, len(x))
	}

	seed := time.Now().UnixNano()
	trainIdx, validIdx := ml.HoldoutSplit(len(x), 0.2, seed)
	trainX, trainY := subset(x, y, trainIdx)
	validX, validY := subset(x, y, validIdx)

	cfg := ml.TrainConfig{
		Trees:    s.cfg.Scoring.TreeCount,
		MaxDepth: s.cfg.Scoring.MaxTreeDepth,
		Seed:     seed,
	}

	var forest *ml.Forest
	if modelType == domain.ModelCLV {
		forest, err = ml.TrainRegressor(trainX, trainY, cfg)
	} else {
		forest, err = ml.TrainClassifier(trainX, trainY, cfg)
	}
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(validX))
	for i, row := range validX {
		scores[i], err = forest.Predict(row)
		if err != nil {
			return nil, err
		}
	}

	metrics, gateMetric, gateValue, threshold := s.validate(modelType, scores, validY)
	if gateValue < threshold {
		return nil, &domain.ValidationThresholdNotMetError{
			ModelType: modelType,
			Metric:    gateMetric,
			Value:     gateValue,
			Threshold: threshold,
		}
	}

	parameters, err := forest.Marshal()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &registry.ModelArtifact{
		ID:            uuid.NewString(),
		ModelType:     modelType,
		Version:       fmt.Sprintf("%s-%s-%s", modelType, now.UTC().Format("20060102150405"), uuid.NewString()[:8]),
		TrainedAt:     now,
		SchemaVersion: features.SchemaVersion,
		Metrics:       metrics,
		Parameters:    parameters,
	}, nil
}

func (s *EngineService) validate(modelType domain.ModelType, scores, labels []float64) (map[string]float64, string, float64, float64) {
	if modelType == domain.ModelCLV {
		r2 := ml.RSquared(scores, labels)
		return map[string]float64{"r2": r2}, "r2", r2, s.cfg.Scoring.MinCLVR2
	}

	auc := ml.AUC(scores, labels)
	metrics := map[string]float64{
		"auc":      auc,
		"accuracy": ml.Accuracy(scores, labels),
	}
	threshold := s.cfg.Scoring.MinChurnAUC
	if modelType == domain.ModelLead {
		threshold = s.cfg.Scoring.MinLeadAUC
	}
	return metrics, "auc", auc, threshold
}

// buildDataset assembles (features, label) rows. Features are computed as
// of a cutoff in the past; labels come only from history after the cutoff,
// so the label window never leaks into the features.
func (s *EngineService) buildDataset(ctx context.Context, modelType domain.ModelType) ([][]float64, []float64, error) {
	now := time.Now().Unix()

	var labelWindowDays int
	switch modelType {
	case domain.ModelCLV:
		labelWindowDays = s.cfg.Scoring.CLVHorizonDays
	case domain.ModelChurn:
		labelWindowDays = s.cfg.Scoring.ChurnInactiveDays
	case domain.ModelLead:
		labelWindowDays = s.cfg.Scoring.LeadWindowDays
	}
	cutoff := now - int64(labelWindowDays)*86400

	customers, err := s.repo.CustomerIDs(ctx, cutoff)
	if err != nil {
		return nil, nil, err
	}

	var labelOf func(customerID string) float64
	switch modelType {
	case domain.ModelCLV:
		revenue, err := s.repo.RevenueByCustomer(ctx, cutoff, now)
		if err != nil {
			return nil, nil, err
		}
		labelOf = func(id string) float64 { return revenue[id] }
	case domain.ModelChurn:
		active, err := s.repo.ActiveCustomers(ctx, cutoff, now)
		if err != nil {
			return nil, nil, err
		}
		labelOf = func(id string) float64 {
			if active[id] {
				return 0
			}
			return 1
		}
	case domain.ModelLead:
		converted, err := s.repo.ConvertedCustomers(ctx, cutoff, now)
		if err != nil {
			return nil, nil, err
		}
		labelOf = func(id string) float64 {
			if converted[id] {
				return 1
			}
			return 0
		}
	}

	var x [][]float64
	var y []float64
	for _, id := range customers {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		events, err := s.repo.CustomerEvents(ctx, id, cutoff)
		if err != nil {
			return nil, nil, err
		}
		if len(events) == 0 {
			continue
		}

		vector := features.Derive(id, cutoff, events)
		x = append(x, vector.Values)
		y = append(y, labelOf(id))
	}

	return x, y, nil
}

func subset(x [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	sx := make([][]float64, len(idx))
	sy := make([]float64, len(idx))
	for i, j := range idx {
		sx[i] = x[j]
		sy[i] = y[j]
	}
	return sx, sy
}

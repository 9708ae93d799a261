package service

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

// Scheduler runs the nightly maintenance jobs: retraining each model type
// and rebuilding the data-driven contribution table
type Scheduler struct {
	engine *EngineService
	cron   *cron.Cron
	log    *zap.Logger
}

// NewScheduler creates the scheduler without starting it
func NewScheduler(engine *EngineService, log *zap.Logger) *Scheduler {
	return &Scheduler{
		engine: engine,
		cron:   cron.New(),
		log:    log,
	}
}

// Start registers the maintenance job at the configured schedule and
// starts the cron loop in the background
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.runMaintenance)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Started maintenance scheduler", zap.String("schedule", spec))
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Stopped maintenance scheduler")
}

func (s *Scheduler) runMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	for _, mt := range []domain.ModelType{domain.ModelCLV, domain.ModelChurn, domain.ModelLead} {
		artifact, err := s.engine.Retrain(ctx, string(mt))
		if err != nil {
			// failed validation keeps the previous version active, which
			// is the expected outcome on a bad data day
			var thresholdErr *domain.ValidationThresholdNotMetError
			if errors.As(err, &thresholdErr) {
				s.log.Warn("Scheduled retrain rejected by validation",
					zap.String("model_type", string(mt)),
					zap.String("metric", thresholdErr.Metric),
					zap.Float64("value", thresholdErr.Value),
					zap.Float64("threshold", thresholdErr.Threshold))
				continue
			}
			s.log.Error("Scheduled retrain failed",
				zap.String("model_type", string(mt)),
				zap.Error(err))
			continue
		}
		s.log.Info("Scheduled retrain promoted new version",
			zap.String("model_type", string(mt)),
			zap.String("version", artifact.Version))
	}

	if err := s.engine.RefreshContributions(ctx); err != nil {
		s.log.Error("Failed to rebuild contribution table", zap.Error(err))
	}
}

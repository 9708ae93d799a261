package service

import (
	"context"

	"github.com/BarkinBalci/customer-scoring-engine/internal/anomaly"
	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
	"github.com/BarkinBalci/customer-scoring-engine/internal/dto"
	"github.com/BarkinBalci/customer-scoring-engine/internal/features"
	"github.com/BarkinBalci/customer-scoring-engine/internal/registry"
)

// IngestServicer defines the interface for ingestion operations
type IngestServicer interface {
	ProcessEvent(ctx context.Context, event *dto.PublishEventRequest) (string, error)
	ProcessBulkEvents(ctx context.Context, events []dto.PublishEventRequest) ([]string, []string, error)
	ProcessTouchpoint(ctx context.Context, touchpoint *dto.PublishTouchpointRequest) (string, error)
	ProcessConversion(ctx context.Context, conversion *dto.PublishConversionRequest) (string, error)
}

// EngineServicer defines the interface for scoring, attribution, anomaly
// and retraining operations
type EngineServicer interface {
	Score(ctx context.Context, customerID, model, version string) (*domain.Prediction, error)
	Attribute(ctx context.Context, conversionID string) (*domain.ConversionEvent, []*domain.AttributionResult, error)
	Anomalies(ctx context.Context, metricName string, window int) ([]anomaly.Flag, error)
	Retrain(ctx context.Context, modelType string) (*registry.ModelArtifact, error)
}

// FeatureComputer is satisfied by both the plain and the cached feature
// computer
type FeatureComputer interface {
	Compute(ctx context.Context, customerID string, asOf int64) (*features.Vector, error)
}

// ModelRegistry is the durable artifact store behind the engine, satisfied
// by the Postgres-backed registry
type ModelRegistry interface {
	Current(modelType domain.ModelType) (*registry.ModelArtifact, error)
	ByVersion(ctx context.Context, version string) (*registry.ModelArtifact, error)
	Promote(ctx context.Context, artifact *registry.ModelArtifact) error
	SaveContributionTable(ctx context.Context, table *registry.ContributionTable) error
	LatestContributionTable(ctx context.Context) (*registry.ContributionTable, error)
}

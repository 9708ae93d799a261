package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/attribution"
	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
	"github.com/BarkinBalci/customer-scoring-engine/internal/registry"
)

// Attribute computes all supported attribution models for one conversion
// and appends the credits to the results log. The touchpoint path is
// restricted to the conversion's attribution window.
func (s *EngineService) Attribute(ctx context.Context, conversionID string) (*domain.ConversionEvent, []*domain.AttributionResult, error) {
	conv, err := s.repo.Conversion(ctx, conversionID)
	if err != nil {
		return nil, nil, err
	}

	touchpoints, err := s.repo.TouchpointsBetween(ctx, conv.CustomerID, conv.WindowStart, conv.OccurredAt)
	if err != nil {
		return nil, nil, err
	}

	table, err := s.contributionTable(ctx)
	if err != nil {
		// data-driven degrades to its fallback without a table
		s.log.Warn("Failed to load contribution table", zap.Error(err))
		table = nil
	}

	results, err := s.engine.AttributeAll(conv, touchpoints, table)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.InsertAttributionResults(ctx, results); err != nil {
		return nil, nil, fmt.Errorf("failed to store attribution results: %w", err)
	}

	return conv, results, nil
}

// contributionTable loads the latest precomputed data-driven table, or nil
// when none exists yet
func (s *EngineService) contributionTable(ctx context.Context) (*attribution.ContributionTable, error) {
	stored, err := s.registry.LatestContributionTable(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}

	return &attribution.ContributionTable{
		Contributions: stored.Contributions,
		PathCount:     stored.PathCount,
		ComputedAt:    stored.ComputedAt,
	}, nil
}

// RefreshContributions rebuilds the data-driven contribution table from
// the trailing year of observed paths. Runs as a batch job; attribution
// requests keep using the previous snapshot until this one is stored.
func (s *EngineService) RefreshContributions(ctx context.Context) error {
	now := time.Now().Unix()
	paths, err := s.repo.ConversionPaths(ctx, now-365*86400, now)
	if err != nil {
		return err
	}

	table := s.estimator.Build(paths)

	err = s.registry.SaveContributionTable(ctx, &registry.ContributionTable{
		ComputedAt:    table.ComputedAt,
		PathCount:     table.PathCount,
		Contributions: table.Contributions,
	})
	if err != nil {
		return err
	}

	s.log.Info("Rebuilt contribution table",
		zap.Int("path_count", table.PathCount),
		zap.Int("channels", len(table.Contributions)))
	return nil
}

package registry

import (
	"time"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

// ModelArtifact is a trained, immutable scorer persisted in Postgres.
// Artifacts are never updated in place; superseded ones are marked retired.
type ModelArtifact struct {
	ID            string             `gorm:"primaryKey;size:64"`
	ModelType     domain.ModelType   `gorm:"size:16;index:idx_type_retired"`
	Version       string             `gorm:"size:64;uniqueIndex"`
	TrainedAt     time.Time          ``
	SchemaVersion string             `gorm:"size:32"`
	Metrics       map[string]float64 `gorm:"serializer:json"`
	Parameters    []byte             ``
	Retired       bool               `gorm:"index:idx_type_retired"`
	CreatedAt     time.Time          ``
}

// ContributionTable is a precomputed per-channel marginal-contribution
// snapshot used by data-driven attribution. Stale tables are acceptable;
// ComputedAt lets callers judge staleness.
type ContributionTable struct {
	ID            uint               `gorm:"primaryKey"`
	ComputedAt    time.Time          ``
	PathCount     int                ``
	Contributions map[string]float64 `gorm:"serializer:json"`
}

package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

// Registry stores model artifacts durably and owns the "current version"
// pointer per model type. The pointer swap is the only shared mutable state
// in the engine; it is guarded by a short-held mutex so scoring reads never
// wait on training.
type Registry struct {
	db  *gorm.DB
	log *zap.Logger

	mu      sync.RWMutex
	current map[domain.ModelType]*ModelArtifact
}

// New creates a registry, migrates its tables and loads the current
// pointers from storage
func New(ctx context.Context, db *gorm.DB, log *zap.Logger) (*Registry, error) {
	if err := db.WithContext(ctx).AutoMigrate(&ModelArtifact{}, &ContributionTable{}); err != nil {
		return nil, fmt.Errorf("failed to migrate registry schema: %w", err)
	}

	r := &Registry{
		db:      db,
		log:     log,
		current: make(map[domain.ModelType]*ModelArtifact),
	}

	if err := r.loadCurrent(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Registry) loadCurrent(ctx context.Context) error {
	for _, mt := range []domain.ModelType{domain.ModelCLV, domain.ModelChurn, domain.ModelLead} {
		var artifact ModelArtifact
		err := r.db.WithContext(ctx).
			Where("model_type = ? AND retired = ?", mt, false).
			Order("trained_at DESC").
			First(&artifact).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load current %s artifact: %w", mt, err)
		}

		r.current[mt] = &artifact
		r.log.Info("Loaded active model",
			zap.String("model_type", string(mt)),
			zap.String("version", artifact.Version))
	}

	return nil
}

// Current returns the active artifact for a model type. The returned
// artifact is an immutable snapshot valid for the whole scoring call.
func (r *Registry) Current(modelType domain.ModelType) (*ModelArtifact, error) {
	r.mu.RLock()
	artifact, ok := r.current[modelType]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.NoActiveModelError{ModelType: modelType}
	}
	return artifact, nil
}

// ByVersion loads an artifact by its version string, retired or not,
// for reproducibility and audit
func (r *Registry) ByVersion(ctx context.Context, version string) (*ModelArtifact, error) {
	var artifact ModelArtifact
	err := r.db.WithContext(ctx).Where("version = ?", version).First(&artifact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &domain.UnknownModelError{Name: version}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact %s: %w", version, err)
	}
	return &artifact, nil
}

// Promote persists a freshly validated artifact, retires the previous
// active one and swaps the current pointer. Scoring calls that already
// snapshotted the old artifact finish against it.
func (r *Registry) Promote(ctx context.Context, artifact *ModelArtifact) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(artifact).Error; err != nil {
			return err
		}
		return tx.Model(&ModelArtifact{}).
			Where("model_type = ? AND retired = ? AND version <> ?", artifact.ModelType, false, artifact.Version).
			Update("retired", true).Error
	})
	if err != nil {
		return fmt.Errorf("failed to persist artifact %s: %w", artifact.Version, err)
	}

	r.mu.Lock()
	r.current[artifact.ModelType] = artifact
	r.mu.Unlock()

	r.log.Info("Promoted model artifact",
		zap.String("model_type", string(artifact.ModelType)),
		zap.String("version", artifact.Version))

	return nil
}

// SaveContributionTable stores a new data-driven contribution snapshot
func (r *Registry) SaveContributionTable(ctx context.Context, table *ContributionTable) error {
	if err := r.db.WithContext(ctx).Create(table).Error; err != nil {
		return fmt.Errorf("failed to save contribution table: %w", err)
	}
	return nil
}

// LatestContributionTable returns the most recent contribution snapshot,
// or nil when none has been computed yet
func (r *Registry) LatestContributionTable(ctx context.Context) (*ContributionTable, error) {
	var table ContributionTable
	err := r.db.WithContext(ctx).Order("computed_at DESC").First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contribution table: %w", err)
	}
	return &table, nil
}

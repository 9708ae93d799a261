package attribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/repository"
)

func seededEstimator() *ShapleyEstimator {
	est := NewShapleyEstimator(500, zap.NewNop())
	est.Seed = 1
	return est
}

func TestShapley_EmptyPaths(t *testing.T) {
	est := seededEstimator()

	table := est.Build(nil)

	assert.Equal(t, 0, table.PathCount)
	assert.Empty(t, table.Contributions)
}

func TestShapley_StrongChannelDominates(t *testing.T) {
	est := seededEstimator()

	// "search" paths convert, "social" paths don't
	var paths []repository.ConversionPath
	for i := 0; i < 100; i++ {
		paths = append(paths, repository.ConversionPath{
			Channels:  []string{"search", "web"},
			Converted: true,
		})
		paths = append(paths, repository.ConversionPath{
			Channels:  []string{"social", "web"},
			Converted: false,
		})
	}

	table := est.Build(paths)

	assert.Equal(t, 200, table.PathCount)
	assert.Greater(t, table.Contributions["search"], table.Contributions["social"])
}

func TestShapley_ContributionsNonNegative(t *testing.T) {
	est := seededEstimator()

	var paths []repository.ConversionPath
	for i := 0; i < 50; i++ {
		paths = append(paths, repository.ConversionPath{
			Channels:  []string{"email"},
			Converted: i%10 == 0,
		})
		paths = append(paths, repository.ConversionPath{
			Channels:  []string{"email", "web"},
			Converted: i%2 == 0,
		})
	}

	table := est.Build(paths)

	for ch, c := range table.Contributions {
		assert.GreaterOrEqual(t, c, 0.0, ch)
	}
}

func TestShapley_DuplicateChannelsCollapse(t *testing.T) {
	est := seededEstimator()

	var paths []repository.ConversionPath
	for i := 0; i < 20; i++ {
		paths = append(paths, repository.ConversionPath{
			Channels:  []string{"web", "web", "web"},
			Converted: true,
		})
	}

	table := est.Build(paths)

	assert.Len(t, table.Contributions, 1)
	assert.Contains(t, table.Contributions, "web")
}

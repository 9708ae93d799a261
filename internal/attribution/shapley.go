package attribution

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/repository"
)

// ShapleyEstimator precomputes per-channel average marginal contributions
// to conversion probability from the observed channel-path population.
// It runs as a batch job decoupled from attribution requests.
type ShapleyEstimator struct {
	SampleSize int
	Seed       int64
	log        *zap.Logger
}

// NewShapleyEstimator creates an estimator
func NewShapleyEstimator(sampleSize int, log *zap.Logger) *ShapleyEstimator {
	if sampleSize <= 0 {
		sampleSize = 500
	}
	return &ShapleyEstimator{
		SampleSize: sampleSize,
		Seed:       time.Now().UnixNano(),
		log:        log,
	}
}

type subsetStats struct {
	conversions int
	total       int
}

// Build estimates each channel's marginal contribution: the average change
// in empirical conversion rate from adding the channel to random subsets of
// the other observed channels. Contributions are floored at zero.
func (s *ShapleyEstimator) Build(paths []repository.ConversionPath) *ContributionTable {
	table := &ContributionTable{
		Contributions: make(map[string]float64),
		PathCount:     len(paths),
		ComputedAt:    time.Now(),
	}
	if len(paths) == 0 {
		return table
	}

	stats := make(map[string]*subsetStats)
	channelRate := make(map[string]*subsetStats)
	channelSet := make(map[string]bool)

	for _, p := range paths {
		set := uniqueChannels(p.Channels)
		key := subsetKey(set)
		st, ok := stats[key]
		if !ok {
			st = &subsetStats{}
			stats[key] = st
		}
		st.total++
		if p.Converted {
			st.conversions++
		}

		for _, ch := range set {
			channelSet[ch] = true
			cr, ok := channelRate[ch]
			if !ok {
				cr = &subsetStats{}
				channelRate[ch] = cr
			}
			cr.total++
			if p.Converted {
				cr.conversions++
			}
		}
	}

	channels := make([]string, 0, len(channelSet))
	for ch := range channelSet {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	prob := func(subset []string) float64 {
		if len(subset) == 0 {
			return 0
		}
		if st, ok := stats[subsetKey(subset)]; ok && st.total >= 5 {
			return float64(st.conversions) / float64(st.total)
		}
		// unseen or thin subset: back off to the mean containment rate
		// of its member channels
		sum := 0.0
		for _, ch := range subset {
			if cr, ok := channelRate[ch]; ok && cr.total > 0 {
				sum += float64(cr.conversions) / float64(cr.total)
			}
		}
		return sum / float64(len(subset))
	}

	rng := rand.New(rand.NewSource(s.Seed))
	for _, ch := range channels {
		others := make([]string, 0, len(channels)-1)
		for _, other := range channels {
			if other != ch {
				others = append(others, other)
			}
		}

		marginal := 0.0
		for i := 0; i < s.SampleSize; i++ {
			subset := randomSubset(others, rng)
			with := append(append([]string{}, subset...), ch)
			sort.Strings(with)
			marginal += prob(with) - prob(subset)
		}
		marginal /= float64(s.SampleSize)
		if marginal < 0 {
			marginal = 0
		}
		table.Contributions[ch] = marginal
	}

	s.log.Info("Built contribution table",
		zap.Int("paths", table.PathCount),
		zap.Int("channels", len(table.Contributions)))

	return table
}

func uniqueChannels(channels []string) []string {
	seen := make(map[string]bool, len(channels))
	var out []string
	for _, ch := range channels {
		if !seen[ch] {
			seen[ch] = true
			out = append(out, ch)
		}
	}
	sort.Strings(out)
	return out
}

func subsetKey(sortedChannels []string) string {
	return strings.Join(sortedChannels, "|")
}

func randomSubset(channels []string, rng *rand.Rand) []string {
	var subset []string
	for _, ch := range channels {
		if rng.Intn(2) == 1 {
			subset = append(subset, ch)
		}
	}
	sort.Strings(subset)
	return subset
}

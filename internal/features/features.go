package features

import (
	"context"
	"encoding/json"
	"math"

	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

// SchemaVersion identifies the feature layout below. Bump it whenever the
// derived feature set changes; model artifacts record the version they were
// trained on and scoring refuses to mix versions.
const SchemaVersion = "v1"

const secondsPerDay = 86400

var channelBuckets = []string{"web", "email", "social", "search", "store", "other"}

var tierBuckets = []string{"basic", "silver", "gold", "platinum", "other"}

// Vector is a customer's derived feature vector as of a cutoff timestamp.
// The layout (Names order) is fixed by SchemaVersion.
type Vector struct {
	CustomerID    string    `json:"customer_id"`
	AsOf          int64     `json:"as_of"`
	SchemaVersion string    `json:"schema_version"`
	Names         []string  `json:"names"`
	Values        []float64 `json:"values"`
}

// Get returns a named feature value, or 0 if the name is unknown
func (v *Vector) Get(name string) float64 {
	for i, n := range v.Names {
		if n == name {
			return v.Values[i]
		}
	}
	return 0
}

// EventSource is the read surface the computer needs
type EventSource interface {
	CustomerEvents(ctx context.Context, customerID string, until int64) ([]*domain.Event, error)
}

// Computer derives feature vectors from raw event history. It is a pure
// function of the history: no events after the cutoff are ever read, so
// training labels cannot leak into features.
type Computer struct {
	source EventSource
	log    *zap.Logger
}

// NewComputer creates a feature computer
func NewComputer(source EventSource, log *zap.Logger) *Computer {
	return &Computer{source: source, log: log}
}

// Compute derives the feature vector for a customer as of the cutoff.
// A customer with zero events yields InsufficientHistoryError; callers
// decide on cold-start handling instead of receiving a silent default.
func (c *Computer) Compute(ctx context.Context, customerID string, asOf int64) (*Vector, error) {
	events, err := c.source.CustomerEvents(ctx, customerID, asOf)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, &domain.InsufficientHistoryError{CustomerID: customerID}
	}

	return Derive(customerID, asOf, events), nil
}

// Derive builds the vector from an already-loaded, timestamp-ascending
// event history. Events after asOf are dropped; a trailing N-day window
// covers (asOf - N days, asOf].
func Derive(customerID string, asOf int64, events []*domain.Event) *Vector {
	var (
		lastTs        int64
		freq30        float64
		freq90        float64
		freq365       float64
		monSum90      float64
		monCount90    float64
		monMax90      float64
		sends         float64
		opens         float64
		clicks        float64
		channelCounts = map[string]float64{}
		tier          string
	)

	cut30 := asOf - 30*secondsPerDay
	cut90 := asOf - 90*secondsPerDay
	cut365 := asOf - 365*secondsPerDay

	for _, e := range events {
		if e.Timestamp > asOf {
			continue
		}
		if e.Timestamp > lastTs {
			lastTs = e.Timestamp
		}

		if e.Timestamp > cut30 {
			freq30++
		}
		if e.Timestamp > cut90 {
			freq90++
			if e.Value != nil {
				monSum90 += *e.Value
				monCount90++
				if *e.Value > monMax90 {
					monMax90 = *e.Value
				}
			}
		}
		if e.Timestamp > cut365 {
			freq365++
		}

		switch e.EventType {
		case "email_send":
			sends++
		case "email_open":
			opens++
		case "click":
			clicks++
		}

		channelCounts[e.Channel]++

		if t := tierFromMetadata(e.Metadata); t != "" {
			tier = t
		}
	}

	recency := float64(asOf-lastTs) / secondsPerDay
	if lastTs == 0 {
		recency = 365
	}

	monMean90 := 0.0
	if monCount90 > 0 {
		monMean90 = monSum90 / monCount90
	}

	openRate := ratio(opens, sends)
	clickRate := ratio(clicks, opens)

	names := []string{
		"recency_days",
		"frequency_30d",
		"frequency_90d",
		"frequency_365d",
		"monetary_sum_90d",
		"monetary_mean_90d",
		"monetary_max_90d",
		"open_rate",
		"click_rate",
	}
	values := []float64{
		recency,
		freq30,
		freq90,
		freq365,
		monSum90,
		monMean90,
		monMax90,
		openRate,
		clickRate,
	}

	preferred := modalChannel(channelCounts)
	for _, ch := range channelBuckets {
		names = append(names, "channel_"+ch)
		if ch == preferred {
			values = append(values, 1)
		} else {
			values = append(values, 0)
		}
	}

	tierBucket := bucketOf(tier, tierBuckets)
	for _, t := range tierBuckets {
		names = append(names, "tier_"+t)
		if t == tierBucket {
			values = append(values, 1)
		} else {
			values = append(values, 0)
		}
	}

	return &Vector{
		CustomerID:    customerID,
		AsOf:          asOf,
		SchemaVersion: SchemaVersion,
		Names:         names,
		Values:        values,
	}
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

func modalChannel(counts map[string]float64) string {
	best := ""
	bestCount := 0.0
	for _, ch := range channelBuckets {
		if counts[ch] > bestCount {
			best = ch
			bestCount = counts[ch]
		}
	}
	if best == "" && len(counts) > 0 {
		// channels outside the known buckets fold into "other"
		return "other"
	}
	return best
}

func bucketOf(value string, buckets []string) string {
	if value == "" {
		return ""
	}
	for _, b := range buckets {
		if b == value {
			return b
		}
	}
	return "other"
}

func tierFromMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(metadata), &m); err != nil {
		return ""
	}
	if t, ok := m["tier"].(string); ok {
		return t
	}
	return ""
}

package repository

import (
	"context"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

// MetricPoint is one point of a named metric series
type MetricPoint struct {
	Timestamp int64
	Value     float64
}

// ConversionPath is one customer's ordered channel sequence and whether it
// ended in a conversion. Input to the data-driven attribution estimator.
type ConversionPath struct {
	CustomerID string
	Channels   []string
	Converted  bool
}

// Supported metric series names
const (
	MetricDailyConversions = "daily_conversions"
	MetricDailyRevenue     = "daily_revenue"
)

// RecordRepository defines append-only storage for ingestion records and
// engine outputs
type RecordRepository interface {
	// InitSchema initializes the database schema (creates tables if they don't exist)
	InitSchema(ctx context.Context) error

	// InsertEvents inserts a batch of events
	InsertEvents(ctx context.Context, events []*domain.Event) (int, error)

	// InsertTouchpoints inserts a batch of touchpoints
	InsertTouchpoints(ctx context.Context, touchpoints []*domain.Touchpoint) (int, error)

	// InsertConversions inserts a batch of conversion events
	InsertConversions(ctx context.Context, conversions []*domain.ConversionEvent) (int, error)

	// InsertPredictions appends scoring results to the audit log
	InsertPredictions(ctx context.Context, predictions []*domain.Prediction) error

	// InsertAttributionResults appends attribution credits
	InsertAttributionResults(ctx context.Context, results []*domain.AttributionResult) error

	// Ping checks if the database connection is alive
	Ping(ctx context.Context) error

	// Close closes the repository and releases resources
	Close() error
}

// HistoryRepository defines the read side consumed by the feature store,
// the attribution engine, the anomaly detector and model training
type HistoryRepository interface {
	// CustomerEvents returns a customer's events with timestamp <= until,
	// ordered by timestamp ascending
	CustomerEvents(ctx context.Context, customerID string, until int64) ([]*domain.Event, error)

	// Conversion looks up one conversion event by id
	Conversion(ctx context.Context, conversionID string) (*domain.ConversionEvent, error)

	// TouchpointsBetween returns a customer's touchpoints in [from, to],
	// ordered by occurred_at ascending
	TouchpointsBetween(ctx context.Context, customerID string, from, to int64) ([]*domain.Touchpoint, error)

	// MetricSeries returns the most recent points of a named daily metric,
	// ordered by timestamp ascending
	MetricSeries(ctx context.Context, metricName string, points int) ([]MetricPoint, error)

	// CustomerIDs returns ids of customers with at least one event before until
	CustomerIDs(ctx context.Context, until int64) ([]string, error)

	// RevenueByCustomer returns summed event value per customer in (from, to]
	RevenueByCustomer(ctx context.Context, from, to int64) (map[string]float64, error)

	// ActiveCustomers returns the set of customers with any event in (from, to]
	ActiveCustomers(ctx context.Context, from, to int64) (map[string]bool, error)

	// ConvertedCustomers returns the set of customers with a conversion in (from, to]
	ConvertedCustomers(ctx context.Context, from, to int64) (map[string]bool, error)

	// ConversionPaths returns per-customer ordered channel paths observed in
	// (from, to], marked converted when the customer converted in the range
	ConversionPaths(ctx context.Context, from, to int64) ([]ConversionPath, error)
}

// Repository is the full storage surface implemented by the ClickHouse adapter
type Repository interface {
	RecordRepository
	HistoryRepository
}

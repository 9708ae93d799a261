package clickhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
	"github.com/BarkinBalci/customer-scoring-engine/internal/repository"
)

// Repository implements repository.Repository for ClickHouse
type Repository struct {
	client        *Client
	retentionDays int
	log           *zap.Logger
}

// NewRepository creates a new ClickHouse repository
func NewRepository(client *Client, log *zap.Logger) *Repository {
	return &Repository{
		client:        client,
		retentionDays: client.config.RetentionDays,
		log:           log,
	}
}

// InitSchema initializes the ClickHouse schema. Ingestion tables use
// ReplacingMergeTree keyed on the deterministic record id so redelivered
// queue messages collapse to one row; output logs are plain append-only.
func (r *Repository) InitSchema(ctx context.Context) error {
	queries := []string{
		fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS events (
		event_id String,
		customer_id String,
		event_type LowCardinality(String),
		channel LowCardinality(String),
		campaign_id String,
		timestamp Int64,
		value Nullable(Float64),
		metadata String,
		processed_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (event_id)
	ORDER BY (event_id, timestamp)
	PARTITION BY toYYYYMM(toDateTime(timestamp))
	TTL toDateTime(timestamp) + INTERVAL %d DAY
	SETTINGS index_granularity = 8192
	`, r.retentionDays),
		`
	CREATE TABLE IF NOT EXISTS touchpoints (
		touchpoint_id String,
		customer_id String,
		channel LowCardinality(String),
		campaign_id String,
		occurred_at Int64,
		processed_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (touchpoint_id)
	ORDER BY (touchpoint_id, occurred_at)
	PARTITION BY toYYYYMM(toDateTime(occurred_at))
	SETTINGS index_granularity = 8192
	`,
		`
	CREATE TABLE IF NOT EXISTS conversions (
		conversion_id String,
		customer_id String,
		revenue_amount Float64,
		occurred_at Int64,
		window_start Int64,
		processed_at DateTime64(3) DEFAULT now64(3),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	PRIMARY KEY (conversion_id)
	ORDER BY (conversion_id, occurred_at)
	PARTITION BY toYYYYMM(toDateTime(occurred_at))
	SETTINGS index_granularity = 8192
	`,
		`
	CREATE TABLE IF NOT EXISTS predictions (
		prediction_id String,
		customer_id String,
		model_type LowCardinality(String),
		model_version String,
		value Float64,
		produced_at DateTime64(3) DEFAULT now64(3)
	) ENGINE = MergeTree()
	ORDER BY (customer_id, produced_at)
	PARTITION BY toYYYYMM(produced_at)
	SETTINGS index_granularity = 8192
	`,
		`
	CREATE TABLE IF NOT EXISTS attribution_results (
		conversion_id String,
		touchpoint_id String,
		model_name LowCardinality(String),
		credited_revenue Float64,
		fallback Bool,
		computed_at DateTime64(3) DEFAULT now64(3)
	) ENGINE = MergeTree()
	ORDER BY (conversion_id, model_name, computed_at)
	PARTITION BY toYYYYMM(computed_at)
	SETTINGS index_granularity = 8192
	`,
	}

	for _, query := range queries {
		if err := r.client.Conn().Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	r.log.Info("ClickHouse schema initialized successfully")
	return nil
}

// InsertEvents inserts a batch of events into ClickHouse
func (r *Repository) InsertEvents(ctx context.Context, events []*domain.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO events")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare events batch: %w", err)
	}

	for _, event := range events {
		if event.Version == 0 {
			event.Version = uint64(time.Now().UnixNano())
		}

		metadataJSON := event.Metadata
		if metadataJSON == "" {
			metadataJSON = "{}"
		}

		if err := batch.Append(
			event.EventID,
			event.CustomerID,
			event.EventType,
			event.Channel,
			event.CampaignID,
			event.Timestamp,
			event.Value,
			metadataJSON,
			event.ProcessedAt,
			event.Version,
		); err != nil {
			return 0, fmt.Errorf("failed to append event to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send events batch: %w", err)
	}

	return len(events), nil
}

// InsertTouchpoints inserts a batch of touchpoints into ClickHouse
func (r *Repository) InsertTouchpoints(ctx context.Context, touchpoints []*domain.Touchpoint) (int, error) {
	if len(touchpoints) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO touchpoints")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare touchpoints batch: %w", err)
	}

	for _, tp := range touchpoints {
		if tp.Version == 0 {
			tp.Version = uint64(time.Now().UnixNano())
		}

		if err := batch.Append(
			tp.TouchpointID,
			tp.CustomerID,
			tp.Channel,
			tp.CampaignID,
			tp.OccurredAt,
			tp.ProcessedAt,
			tp.Version,
		); err != nil {
			return 0, fmt.Errorf("failed to append touchpoint to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send touchpoints batch: %w", err)
	}

	return len(touchpoints), nil
}

// InsertConversions inserts a batch of conversion events into ClickHouse
func (r *Repository) InsertConversions(ctx context.Context, conversions []*domain.ConversionEvent) (int, error) {
	if len(conversions) == 0 {
		return 0, nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO conversions")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare conversions batch: %w", err)
	}

	for _, conv := range conversions {
		if conv.Version == 0 {
			conv.Version = uint64(time.Now().UnixNano())
		}

		if err := batch.Append(
			conv.ConversionID,
			conv.CustomerID,
			conv.RevenueAmount,
			conv.OccurredAt,
			conv.WindowStart,
			conv.ProcessedAt,
			conv.Version,
		); err != nil {
			return 0, fmt.Errorf("failed to append conversion to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("failed to send conversions batch: %w", err)
	}

	return len(conversions), nil
}

// InsertPredictions appends scoring results to the predictions log
func (r *Repository) InsertPredictions(ctx context.Context, predictions []*domain.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO predictions")
	if err != nil {
		return fmt.Errorf("failed to prepare predictions batch: %w", err)
	}

	for _, p := range predictions {
		if err := batch.Append(
			p.PredictionID,
			p.CustomerID,
			p.ModelType,
			p.ModelVersion,
			p.Value,
			p.ProducedAt,
		); err != nil {
			return fmt.Errorf("failed to append prediction to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send predictions batch: %w", err)
	}

	return nil
}

// InsertAttributionResults appends attribution credits to the results log
func (r *Repository) InsertAttributionResults(ctx context.Context, results []*domain.AttributionResult) error {
	if len(results) == 0 {
		return nil
	}

	batch, err := r.client.Conn().PrepareBatch(ctx, "INSERT INTO attribution_results")
	if err != nil {
		return fmt.Errorf("failed to prepare attribution batch: %w", err)
	}

	for _, res := range results {
		if err := batch.Append(
			res.ConversionID,
			res.TouchpointID,
			res.ModelName,
			res.CreditedRevenue,
			res.Fallback,
			res.ComputedAt,
		); err != nil {
			return fmt.Errorf("failed to append attribution result to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send attribution batch: %w", err)
	}

	return nil
}

// Ping checks if the ClickHouse connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Conn().Ping(ctx)
}

// Close closes the ClickHouse connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// CustomerEvents returns a customer's events up to the cutoff, oldest first
func (r *Repository) CustomerEvents(ctx context.Context, customerID string, until int64) ([]*domain.Event, error) {
	query := `
		SELECT event_id, customer_id, event_type, channel, campaign_id,
		       timestamp, value, metadata, processed_at, version
		FROM events FINAL
		WHERE customer_id = ? AND timestamp <= ?
		ORDER BY timestamp ASC
	`

	rows, err := r.client.Conn().Query(ctx, query, customerID, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer events: %w", err)
	}
	defer r.closeRows(rows)

	var events []*domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.EventID, &e.CustomerID, &e.EventType, &e.Channel, &e.CampaignID,
			&e.Timestamp, &e.Value, &e.Metadata, &e.ProcessedAt, &e.Version); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}

// Conversion looks up one conversion event by id
func (r *Repository) Conversion(ctx context.Context, conversionID string) (*domain.ConversionEvent, error) {
	query := `
		SELECT conversion_id, customer_id, revenue_amount, occurred_at,
		       window_start, processed_at, version
		FROM conversions FINAL
		WHERE conversion_id = ?
		LIMIT 1
	`

	var conv domain.ConversionEvent
	row := r.client.Conn().QueryRow(ctx, query, conversionID)
	if err := row.Scan(&conv.ConversionID, &conv.CustomerID, &conv.RevenueAmount,
		&conv.OccurredAt, &conv.WindowStart, &conv.ProcessedAt, &conv.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.ConversionNotFoundError{ConversionID: conversionID}
		}
		return nil, fmt.Errorf("failed to load conversion %s: %w", conversionID, err)
	}

	return &conv, nil
}

// TouchpointsBetween returns a customer's touchpoints inside [from, to], oldest first
func (r *Repository) TouchpointsBetween(ctx context.Context, customerID string, from, to int64) ([]*domain.Touchpoint, error) {
	query := `
		SELECT touchpoint_id, customer_id, channel, campaign_id,
		       occurred_at, processed_at, version
		FROM touchpoints FINAL
		WHERE customer_id = ? AND occurred_at >= ? AND occurred_at <= ?
		ORDER BY occurred_at ASC
	`

	rows, err := r.client.Conn().Query(ctx, query, customerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query touchpoints: %w", err)
	}
	defer r.closeRows(rows)

	var touchpoints []*domain.Touchpoint
	for rows.Next() {
		var tp domain.Touchpoint
		if err := rows.Scan(&tp.TouchpointID, &tp.CustomerID, &tp.Channel, &tp.CampaignID,
			&tp.OccurredAt, &tp.ProcessedAt, &tp.Version); err != nil {
			return nil, fmt.Errorf("failed to scan touchpoint row: %w", err)
		}
		touchpoints = append(touchpoints, &tp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating touchpoint rows: %w", err)
	}

	return touchpoints, nil
}

// MetricSeries returns the most recent daily points of a supported metric,
// oldest first
func (r *Repository) MetricSeries(ctx context.Context, metricName string, points int) ([]repository.MetricPoint, error) {
	var query string
	switch metricName {
	case repository.MetricDailyConversions:
		query = `
			SELECT day, value FROM (
				SELECT toInt64(toUnixTimestamp(toStartOfDay(toDateTime(occurred_at)))) AS day,
				       toFloat64(count()) AS value
				FROM conversions FINAL
				GROUP BY day
				ORDER BY day DESC
				LIMIT ?
			) ORDER BY day ASC
		`
	case repository.MetricDailyRevenue:
		query = `
			SELECT day, value FROM (
				SELECT toInt64(toUnixTimestamp(toStartOfDay(toDateTime(occurred_at)))) AS day,
				       sum(revenue_amount) AS value
				FROM conversions FINAL
				GROUP BY day
				ORDER BY day DESC
				LIMIT ?
			) ORDER BY day ASC
		`
	default:
		return nil, fmt.Errorf("unsupported metric: %s (supported: %s, %s)",
			metricName, repository.MetricDailyConversions, repository.MetricDailyRevenue)
	}

	rows, err := r.client.Conn().Query(ctx, query, points)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric series: %w", err)
	}
	defer r.closeRows(rows)

	var series []repository.MetricPoint
	for rows.Next() {
		var p repository.MetricPoint
		if err := rows.Scan(&p.Timestamp, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}
		series = append(series, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric rows: %w", err)
	}

	return series, nil
}

// CustomerIDs returns ids of customers with at least one event before until
func (r *Repository) CustomerIDs(ctx context.Context, until int64) ([]string, error) {
	query := `SELECT DISTINCT customer_id FROM events FINAL WHERE timestamp <= ?`

	rows, err := r.client.Conn().Query(ctx, query, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer ids: %w", err)
	}
	defer r.closeRows(rows)

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan customer id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer id rows: %w", err)
	}

	return ids, nil
}

// RevenueByCustomer returns summed event value per customer over (from, to]
func (r *Repository) RevenueByCustomer(ctx context.Context, from, to int64) (map[string]float64, error) {
	query := `
		SELECT customer_id, sum(coalesce(value, 0)) AS revenue
		FROM events FINAL
		WHERE timestamp > ? AND timestamp <= ?
		GROUP BY customer_id
	`

	rows, err := r.client.Conn().Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue by customer: %w", err)
	}
	defer r.closeRows(rows)

	revenue := make(map[string]float64)
	for rows.Next() {
		var id string
		var amount float64
		if err := rows.Scan(&id, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		revenue[id] = amount
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revenue rows: %w", err)
	}

	return revenue, nil
}

// ActiveCustomers returns the set of customers with any event in (from, to]
func (r *Repository) ActiveCustomers(ctx context.Context, from, to int64) (map[string]bool, error) {
	query := `SELECT DISTINCT customer_id FROM events FINAL WHERE timestamp > ? AND timestamp <= ?`
	return r.customerSet(ctx, query, from, to)
}

// ConvertedCustomers returns the set of customers with a conversion in (from, to]
func (r *Repository) ConvertedCustomers(ctx context.Context, from, to int64) (map[string]bool, error) {
	query := `SELECT DISTINCT customer_id FROM conversions FINAL WHERE occurred_at > ? AND occurred_at <= ?`
	return r.customerSet(ctx, query, from, to)
}

func (r *Repository) customerSet(ctx context.Context, query string, from, to int64) (map[string]bool, error) {
	rows, err := r.client.Conn().Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer set: %w", err)
	}
	defer r.closeRows(rows)

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan customer id: %w", err)
		}
		set[id] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customer set rows: %w", err)
	}

	return set, nil
}

// ConversionPaths returns per-customer ordered channel sequences observed in
// (from, to], marked converted when the customer converted in that range
func (r *Repository) ConversionPaths(ctx context.Context, from, to int64) ([]repository.ConversionPath, error) {
	query := `
		SELECT customer_id, groupArray(channel) AS channels
		FROM (
			SELECT customer_id, channel
			FROM touchpoints FINAL
			WHERE occurred_at > ? AND occurred_at <= ?
			ORDER BY customer_id, occurred_at ASC
		)
		GROUP BY customer_id
	`

	rows, err := r.client.Conn().Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversion paths: %w", err)
	}
	defer r.closeRows(rows)

	var paths []repository.ConversionPath
	for rows.Next() {
		var p repository.ConversionPath
		if err := rows.Scan(&p.CustomerID, &p.Channels); err != nil {
			return nil, fmt.Errorf("failed to scan path row: %w", err)
		}
		paths = append(paths, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating path rows: %w", err)
	}

	converted, err := r.ConvertedCustomers(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for i := range paths {
		paths[i].Converted = converted[paths[i].CustomerID]
	}

	return paths, nil
}

func (r *Repository) closeRows(rows driver.Rows) {
	if err := rows.Close(); err != nil {
		r.log.Error("Failed to close rows", zap.Error(err))
	}
}

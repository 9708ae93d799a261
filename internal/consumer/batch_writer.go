package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
	"github.com/BarkinBalci/customer-scoring-engine/internal/repository"
)

// BatchWriterConfig configures the batch writer
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
}

// BatchWriter batches record envelopes and writes them to the repository,
// fanned out per record kind
type BatchWriter struct {
	repository repository.RecordRepository
	config     BatchWriterConfig
	log        *zap.Logger
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(repo repository.RecordRepository, config BatchWriterConfig, log *zap.Logger) *BatchWriter {
	return &BatchWriter{
		repository: repo,
		config:     config,
		log:        log,
	}
}

// Start begins processing envelopes, batching, and writing to the repository
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, w.config.MaxBatchSize)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			if len(batch) > 0 {
				w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
				w.processBatch(ctx, batch)
			}
			return

		case envelope, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				if len(batch) > 0 {
					w.log.Info("Flushing final batch", zap.Int("envelope_count", len(batch)))
					w.processBatch(ctx, batch)
				}
				return
			}

			batch = append(batch, envelope)

			if len(batch) >= w.config.MaxBatchSize {
				w.log.Info("Batch size threshold reached", zap.Int("batch_size", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.log.Info("Batch timeout reached", zap.Int("envelope_count", len(batch)))
				w.processBatch(ctx, batch)
				batch = make([]*Envelope, 0, w.config.MaxBatchSize)
			}
		}
	}
}

// processBatch splits a batch per record kind, inserts each group, and
// acks the whole batch only when every group landed
func (w *BatchWriter) processBatch(ctx context.Context, envelopes []*Envelope) {
	if len(envelopes) == 0 {
		return
	}

	var (
		events      []*domain.Event
		touchpoints []*domain.Touchpoint
		conversions []*domain.ConversionEvent
	)
	for _, env := range envelopes {
		switch env.Record.Type {
		case domain.RecordEvent:
			events = append(events, env.Record.Event)
		case domain.RecordTouchpoint:
			touchpoints = append(touchpoints, env.Record.Touchpoint)
		case domain.RecordConversion:
			conversions = append(conversions, env.Record.Conversion)
		}
	}

	if len(events) > 0 {
		if _, err := w.repository.InsertEvents(ctx, events); err != nil {
			w.log.Error("Failed to insert events batch",
				zap.Error(err),
				zap.Int("event_count", len(events)))
			w.nackAll(ctx, envelopes)
			return
		}
	}
	if len(touchpoints) > 0 {
		if _, err := w.repository.InsertTouchpoints(ctx, touchpoints); err != nil {
			w.log.Error("Failed to insert touchpoints batch",
				zap.Error(err),
				zap.Int("touchpoint_count", len(touchpoints)))
			w.nackAll(ctx, envelopes)
			return
		}
	}
	if len(conversions) > 0 {
		if _, err := w.repository.InsertConversions(ctx, conversions); err != nil {
			w.log.Error("Failed to insert conversions batch",
				zap.Error(err),
				zap.Int("conversion_count", len(conversions)))
			w.nackAll(ctx, envelopes)
			return
		}
	}

	w.log.Info("Successfully inserted records",
		zap.Int("events", len(events)),
		zap.Int("touchpoints", len(touchpoints)),
		zap.Int("conversions", len(conversions)))
	w.ackAll(ctx, envelopes)
}

// ackAll acknowledges all envelopes (deletes from SQS)
func (w *BatchWriter) ackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Ack(ctx); err != nil {
			w.log.Error("Failed to ack envelope", zap.Error(err))
		}
	}
}

// nackAll negatively acknowledges all envelopes (leaves in SQS for retry)
func (w *BatchWriter) nackAll(ctx context.Context, envelopes []*Envelope) {
	for _, env := range envelopes {
		if err := env.Nack(ctx); err != nil {
			w.log.Error("Failed to nack envelope", zap.Error(err))
		}
	}
}

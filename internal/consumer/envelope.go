package consumer

import (
	"context"

	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

// Envelope wraps an ingestion record with acknowledgment callbacks
type Envelope struct {
	Record *domain.Record
	ack    func(context.Context) error
	nack   func(context.Context) error
}

// NewEnvelope creates a new message envelope
func NewEnvelope(record *domain.Record, ack, nack func(context.Context) error) *Envelope {
	return &Envelope{
		Record: record,
		ack:    ack,
		nack:   nack,
	}
}

// Ack acknowledges successful processing
func (e *Envelope) Ack(ctx context.Context) error {
	if e.ack != nil {
		return e.ack(ctx)
	}
	return nil
}

// Nack negatively acknowledges processing
func (e *Envelope) Nack(ctx context.Context) error {
	if e.nack != nil {
		return e.nack(ctx)
	}
	return nil
}

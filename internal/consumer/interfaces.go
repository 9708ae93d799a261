package consumer

import (
	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

// MessageParser defines the interface for parsing raw message bytes into
// ingestion records
type MessageParser interface {
	Parse(body []byte) (*domain.Record, error)
}

package ports

import (
	"context"
	"encoding/json"

	"github.com/formatrack/training-system/internal/core/domain"
)

// AggregateService serves the two derived read results the application
// caches: the dropdown option index and the summary statistics bundle.
type AggregateService interface {
	// GetOptions returns the serialized option index. Within the TTL window
	// repeated calls return the cached blob byte-for-byte without rescanning
	// the reference table.
	GetOptions(ctx context.Context) (json.RawMessage, error)
	// GetSummary returns statistics computed over the full record set,
	// regardless of who asks.
	GetSummary(ctx context.Context) (*domain.SummaryStats, error)
	// Invalidate drops both cache keys. Called after every successful
	// record mutation.
	Invalidate(ctx context.Context) error
}

package ports

import (
	"context"

	"github.com/formatrack/training-system/internal/core/domain"
)

// RecordRepository is the record store adapter: row-oriented access to the
// `data` collection. The table is small enough that queries read it whole;
// all filtering happens in the service layer.
type RecordRepository interface {
	// FindAll returns every record in store (insertion) order.
	FindAll(ctx context.Context) ([]domain.Record, error)
	FindByID(ctx context.Context, id string) (*domain.Record, error)
	// Insert appends a record, assigning its ID and row sequence. A
	// national-id collision surfaces as domain.ErrDuplicateNationalID.
	Insert(ctx context.Context, record *domain.Record) error
	// Replace rewrites the whole row identified by record.ID, keeping its
	// row sequence.
	Replace(ctx context.Context, record *domain.Record) error
	Delete(ctx context.Context, id string) error
}

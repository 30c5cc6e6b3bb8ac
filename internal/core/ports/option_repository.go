package ports

import (
	"context"

	"github.com/formatrack/training-system/internal/core/domain"
)

// OptionRepository reads the reference table backing cascading dropdowns.
// The table is mutated out-of-band; the application only scans it.
type OptionRepository interface {
	FindAll(ctx context.Context) ([]domain.OptionRow, error)
}

package ports

import (
	"context"
	"time"

	"github.com/formatrack/training-system/internal/core/domain"
)

// ListRecordsInput carries the requester identity and all list criteria.
// Empty filter values impose no constraint; supplied filters are ANDed.
type ListRecordsInput struct {
	RequesterEmail string
	RequesterRole  string

	Specialty      string
	Group          string
	FullName       string
	NationalID     string
	Commune        string
	Institution    string
	SupervisorName string

	// DateFrom/DateTo bound training_date inclusively; zero means unset.
	// Rows whose date does not parse are excluded while either bound is set.
	DateFrom time.Time
	DateTo   time.Time

	Page    int // 1-based; 0 disables pagination
	PerPage int
}

// RecordView is one list result. ID doubles as the mutation handle for a
// later update or delete.
type RecordView struct {
	ID             string  `json:"id"`
	Specialty      string  `json:"specialty"`
	Group          string  `json:"group"`
	FullName       string  `json:"full_name"`
	NationalID     string  `json:"national_id"`
	TrainingDate   string  `json:"training_date"`
	HoursCount     float64 `json:"hours_count"`
	Commune        string  `json:"commune"`
	Institution    string  `json:"institution"`
	SupervisorName string  `json:"supervisor_name"`
	SupervisorID   string  `json:"supervisor_id"`
	OwnerEmail     string  `json:"owner_email"`
}

// ListRecordsResult is the paginated outcome of List.
type ListRecordsResult struct {
	Items   []RecordView
	Total   int // matching rows before pagination
	Page    int
	PerPage int
}

// RecordInput carries the ten business fields of a create or update. The
// acting admin is passed separately and stamped as owner by the service.
type RecordInput struct {
	Specialty      string
	Group          string
	FullName       string
	NationalID     string
	TrainingDate   string
	HoursCount     float64
	Commune        string
	Institution    string
	SupervisorName string
	SupervisorID   string
}

// RecordService combines the filter/visibility engine (List) with the
// mutation coordinator (Create/Update/Delete).
type RecordService interface {
	List(ctx context.Context, input ListRecordsInput) (*ListRecordsResult, error)
	Create(ctx context.Context, input RecordInput, actingEmail string) (*domain.Record, error)
	Update(ctx context.Context, id string, input RecordInput, actingEmail string) (*domain.Record, error)
	Delete(ctx context.Context, id string, actingEmail string) error
}

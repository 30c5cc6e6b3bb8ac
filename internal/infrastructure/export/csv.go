// Package export renders record sets into downloadable artifacts.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/formatrack/training-system/internal/core/ports"
)

var csvHeader = []string{
	"specialty", "group", "full_name", "national_id", "training_date",
	"hours_count", "commune", "institution", "supervisor_name",
	"supervisor_id", "owner_email",
}

// CSVRenderer writes the record set as a CSV artifact, one row per record,
// preserving the order it was given.
type CSVRenderer struct {
	now func() time.Time
}

func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{now: time.Now}
}

func (r *CSVRenderer) Render(_ context.Context, records []ports.RecordView) (string, []byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", nil, fmt.Errorf("write csv header: %w", err)
	}
	for i := range records {
		rec := &records[i]
		row := []string{
			rec.Specialty,
			rec.Group,
			rec.FullName,
			rec.NationalID,
			rec.TrainingDate,
			strconv.FormatFloat(rec.HoursCount, 'f', -1, 64),
			rec.Commune,
			rec.Institution,
			rec.SupervisorName,
			rec.SupervisorID,
			rec.OwnerEmail,
		}
		if err := w.Write(row); err != nil {
			return "", nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", nil, fmt.Errorf("flush csv: %w", err)
	}

	filename := fmt.Sprintf("records-%s.csv", r.now().UTC().Format("20060102-150405"))
	return filename, buf.Bytes(), nil
}

package export

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/formatrack/training-system/internal/core/ports"
)

func TestCSVRenderer_Render(t *testing.T) {
	r := NewCSVRenderer()

	records := []ports.RecordView{
		{
			Specialty:      "nursing",
			Group:          "G1",
			FullName:       "Amel B",
			NationalID:     "A123",
			TrainingDate:   "2025-03-10",
			HoursCount:     7.5,
			Commune:        "Center",
			Institution:    "CHU",
			SupervisorName: "Dr. K",
			SupervisorID:   "S9",
			OwnerEmail:     "admin@example.com",
		},
		{FullName: "Second", NationalID: "B456", HoursCount: 2},
	}

	name, content, err := r.Render(context.Background(), records)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(name, "records-") || !strings.HasSuffix(name, ".csv") {
		t.Fatalf("unexpected artifact name: %s", name)
	}

	rows, err := csv.NewReader(strings.NewReader(string(content))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "specialty" || rows[0][10] != "owner_email" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][3] != "A123" || rows[1][5] != "7.5" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][2] != "Second" {
		t.Fatalf("row order not preserved: %v", rows[2])
	}
}

func TestCSVRenderer_Empty(t *testing.T) {
	r := NewCSVRenderer()
	_, content, err := r.Render(context.Background(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(content))).ReadAll()
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected header only, got %v (err %v)", rows, err)
	}
}

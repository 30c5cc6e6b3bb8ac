package service

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/formatrack/training-system/internal/core/domain"
	"github.com/formatrack/training-system/internal/infrastructure/cache"
)

// countingOptionRepo counts table scans so tests can assert a cache hit
// avoided one.
type countingOptionRepo struct {
	rows  []domain.OptionRow
	scans int
}

func (r *countingOptionRepo) FindAll(context.Context) ([]domain.OptionRow, error) {
	r.scans++
	out := make([]domain.OptionRow, len(r.rows))
	copy(out, r.rows)
	return out, nil
}

// fakeClock drives the memory cache's notion of time.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func optionRows() []domain.OptionRow {
	return []domain.OptionRow{
		{Specialty: "nursing", Group: "G1", Name: "Ana", Commune: "Center", Institution: "CHU", Supervisor: "Dr. K"},
		{Specialty: "nursing", Group: "G1", Name: "Bela", Commune: "Center", Institution: "CHU", Supervisor: "Dr. L"},
		{Specialty: "nursing", Group: "G1", Name: "Ana", Commune: "North", Institution: "Clinic", Supervisor: "Dr. K"},
		{Specialty: "midwifery", Group: "G2", Name: "Cara", Commune: "Center", Institution: "CHU", Supervisor: "Dr. K"},
	}
}

func newAggregateFixture(t *testing.T) (*AggregateService, *countingOptionRepo, *stubRecordRepo, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	options := &countingOptionRepo{rows: optionRows()}
	records := newStubRecordRepo()
	svc := NewAggregateService(options, records, cache.NewMemoryWithClock(clock.Now), 300*time.Second, zerolog.Nop())
	return svc, options, records, clock
}

func TestGetOptions_CachedWithinTTL(t *testing.T) {
	svc, options, _, clock := newAggregateFixture(t)
	ctx := context.Background()

	first, err := svc.GetOptions(ctx)
	if err != nil {
		t.Fatalf("first GetOptions: %v", err)
	}
	if options.scans != 1 {
		t.Fatalf("expected 1 scan, got %d", options.scans)
	}

	clock.Advance(299 * time.Second)
	second, err := svc.GetOptions(ctx)
	if err != nil {
		t.Fatalf("second GetOptions: %v", err)
	}
	if options.scans != 1 {
		t.Fatalf("cache hit still scanned the table: %d scans", options.scans)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("cached blob differs from the original:\n%s\n%s", first, second)
	}
}

func TestGetOptions_RebuildAfterTTLExpiry(t *testing.T) {
	svc, options, _, clock := newAggregateFixture(t)
	ctx := context.Background()

	if _, err := svc.GetOptions(ctx); err != nil {
		t.Fatalf("GetOptions: %v", err)
	}

	clock.Advance(301 * time.Second)
	if _, err := svc.GetOptions(ctx); err != nil {
		t.Fatalf("GetOptions after expiry: %v", err)
	}
	if options.scans != 2 {
		t.Fatalf("expected rescan after expiry, got %d scans", options.scans)
	}
}

func TestGetOptions_IndexShape(t *testing.T) {
	svc, _, _, _ := newAggregateFixture(t)

	blob, err := svc.GetOptions(context.Background())
	if err != nil {
		t.Fatalf("GetOptions: %v", err)
	}

	var index domain.OptionIndex
	if err := json.Unmarshal(blob, &index); err != nil {
		t.Fatalf("unmarshal index: %v", err)
	}

	// values de-duplicated and sorted
	if got := index.BySpecialty["nursing"]["G1"]; !reflect.DeepEqual(got, []string{"Ana", "Bela"}) {
		t.Fatalf("wrong nursing/G1 names: %v", got)
	}
	if got := index.ByCommune["Center"]["CHU"]; !reflect.DeepEqual(got, []string{"Dr. K", "Dr. L"}) {
		t.Fatalf("wrong Center/CHU supervisors: %v", got)
	}
	if got := index.BySpecialty["midwifery"]["G2"]; !reflect.DeepEqual(got, []string{"Cara"}) {
		t.Fatalf("wrong midwifery/G2 names: %v", got)
	}
}

func TestGetSummary_IgnoresBlankRowsAndRequester(t *testing.T) {
	svc, _, records, _ := newAggregateFixture(t)
	ctx := context.Background()

	a := testRecord("A1", "admin@example.com")
	a.HoursCount = 2
	b := testRecord("B1", "user@example.com")
	b.HoursCount = 3
	b.Specialty = "midwifery"
	b.Institution = "Clinic"
	blank := domain.Record{TrainingDate: "2025-01-01", HoursCount: 99}
	for _, r := range []domain.Record{a, b, blank} {
		r := r
		if err := records.Insert(ctx, &r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	stats, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	want := domain.SummaryStats{
		SpecialtyCount:   2,
		RecordCount:      2,
		TotalHours:       5,
		InstitutionCount: 2,
	}
	if *stats != want {
		t.Fatalf("summary mismatch: got %+v want %+v", *stats, want)
	}
}

func TestGetSummary_FreshAfterInvalidate(t *testing.T) {
	svc, _, records, _ := newAggregateFixture(t)
	ctx := context.Background()

	first := testRecord("A1", "admin@example.com")
	if err := records.Insert(ctx, &first); err != nil {
		t.Fatalf("seed: %v", err)
	}

	stats, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if stats.RecordCount != 1 {
		t.Fatalf("expected 1 record, got %d", stats.RecordCount)
	}

	second := testRecord("B2", "admin@example.com")
	if err := records.Insert(ctx, &second); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// without invalidation the stale count survives inside the TTL window
	stale, _ := svc.GetSummary(ctx)
	if stale.RecordCount != 1 {
		t.Fatalf("expected stale cached count 1, got %d", stale.RecordCount)
	}

	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	fresh, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary after invalidate: %v", err)
	}
	if fresh.RecordCount != 2 {
		t.Fatalf("expected fresh count 2, got %d", fresh.RecordCount)
	}
}

func TestInvalidate_DropsOptionsToo(t *testing.T) {
	svc, options, _, _ := newAggregateFixture(t)
	ctx := context.Background()

	if _, err := svc.GetOptions(ctx); err != nil {
		t.Fatalf("GetOptions: %v", err)
	}
	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := svc.GetOptions(ctx); err != nil {
		t.Fatalf("GetOptions after invalidate: %v", err)
	}
	if options.scans != 2 {
		t.Fatalf("expected rescan after invalidate, got %d scans", options.scans)
	}
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/formatrack/training-system/internal/core/domain"
	"github.com/formatrack/training-system/internal/core/ports"
)

// RecordService reads the record table with role-based visibility and
// coordinates admin mutations against it.
type RecordService struct {
	records ports.RecordRepository
	auth    ports.AuthService
	cache   ports.AggregateService
	logger  zerolog.Logger
}

func NewRecordService(records ports.RecordRepository, auth ports.AuthService, cache ports.AggregateService, logger zerolog.Logger) *RecordService {
	return &RecordService{records: records, auth: auth, cache: cache, logger: logger}
}

// List returns the visible, filtered record set in store order.
//
// A user-role requester only sees rows they own; admins see everything.
// Filters are ANDed equality checks; the date range is inclusive and, while
// active, drops rows whose training date does not parse.
func (s *RecordService) List(ctx context.Context, input ports.ListRecordsInput) (*ports.ListRecordsResult, error) {
	all, err := s.records.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	requester := domain.NormalizeEmail(input.RequesterEmail)
	dateFilter := !input.DateFrom.IsZero() || !input.DateTo.IsZero()

	var matched []ports.RecordView
	for i := range all {
		r := &all[i]
		if r.Blank() {
			continue
		}
		if input.RequesterRole != domain.RoleAdmin && domain.NormalizeEmail(r.OwnerEmail) != requester {
			continue
		}
		if !matchesFilters(r, &input) {
			continue
		}
		if dateFilter && !inDateRange(r.TrainingDate, input.DateFrom, input.DateTo) {
			continue
		}
		matched = append(matched, toView(r))
	}

	result := &ports.ListRecordsResult{
		Items:   matched,
		Total:   len(matched),
		Page:    input.Page,
		PerPage: input.PerPage,
	}
	if input.Page > 0 && input.PerPage > 0 {
		result.Items = paginate(matched, input.Page, input.PerPage)
	}
	return result, nil
}

// Create validates and appends a new record owned by the acting admin.
func (s *RecordService) Create(ctx context.Context, input ports.RecordInput, actingEmail string) (*domain.Record, error) {
	if err := s.requireAdmin(ctx, actingEmail); err != nil {
		return nil, err
	}
	record, err := buildRecord(input, actingEmail)
	if err != nil {
		return nil, err
	}

	all, err := s.records.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if nationalIDTaken(all, record.NationalID, "") {
		return nil, domain.ErrDuplicateNationalID
	}

	// The unique index on national_id backs this up if a concurrent create
	// slipped past the scan.
	if err := s.records.Insert(ctx, record); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)

	s.logger.Info().Str("national_id", record.NationalID).Str("owner", record.OwnerEmail).Msg("record created")
	return record, nil
}

// Update validates and rewrites the whole record identified by id, restamping
// ownership to the acting admin.
func (s *RecordService) Update(ctx context.Context, id string, input ports.RecordInput, actingEmail string) (*domain.Record, error) {
	if err := s.requireAdmin(ctx, actingEmail); err != nil {
		return nil, err
	}

	current, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	record, err := buildRecord(input, actingEmail)
	if err != nil {
		return nil, err
	}
	record.ID = current.ID
	record.Row = current.Row

	all, err := s.records.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if nationalIDTaken(all, record.NationalID, record.ID) {
		return nil, domain.ErrDuplicateNationalID
	}

	if err := s.records.Replace(ctx, record); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)

	s.logger.Info().Str("id", record.ID).Str("owner", record.OwnerEmail).Msg("record updated")
	return record, nil
}

// Delete removes the record identified by id.
func (s *RecordService) Delete(ctx context.Context, id string, actingEmail string) error {
	if err := s.requireAdmin(ctx, actingEmail); err != nil {
		return err
	}

	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)

	s.logger.Info().Str("id", id).Str("actor", domain.NormalizeEmail(actingEmail)).Msg("record deleted")
	return nil
}

// requireAdmin resolves the acting requester's role before any record-store
// access happens.
func (s *RecordService) requireAdmin(ctx context.Context, email string) error {
	isAdmin, err := s.auth.IsAdmin(ctx, email)
	if err != nil {
		return err
	}
	if !isAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *RecordService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("cache invalidation failed")
	}
}

// fieldRule is one ordered validation step. The first failing rule decides
// the rejection message.
type fieldRule struct {
	field string
	label string
	value func(*ports.RecordInput) string
}

var requiredFields = []fieldRule{
	{"specialty", "specialty", func(in *ports.RecordInput) string { return in.Specialty }},
	{"group", "group", func(in *ports.RecordInput) string { return in.Group }},
	{"full_name", "full name", func(in *ports.RecordInput) string { return in.FullName }},
	{"national_id", "national id", func(in *ports.RecordInput) string { return in.NationalID }},
	{"training_date", "training date", func(in *ports.RecordInput) string { return in.TrainingDate }},
	{"commune", "commune", func(in *ports.RecordInput) string { return in.Commune }},
	{"institution", "institution", func(in *ports.RecordInput) string { return in.Institution }},
	{"supervisor_name", "supervisor name", func(in *ports.RecordInput) string { return in.SupervisorName }},
	{"supervisor_id", "supervisor id", func(in *ports.RecordInput) string { return in.SupervisorID }},
}

// buildRecord trims and validates the input, returning a store-ready record
// stamped with the acting admin as owner.
func buildRecord(input ports.RecordInput, actingEmail string) (*domain.Record, error) {
	for _, rule := range requiredFields {
		if strings.TrimSpace(rule.value(&input)) == "" {
			return nil, domain.NewValidationError(rule.field, rule.label, "is required")
		}
	}
	if input.HoursCount < 1 {
		return nil, domain.NewValidationError("hours_count", "hours count", "must be at least 1")
	}
	if _, err := domain.ParseTrainingDate(input.TrainingDate); err != nil {
		return nil, domain.NewValidationError("training_date", "training date", "is not a valid date")
	}
	nationalID := strings.TrimSpace(input.NationalID)
	if !domain.ValidNationalID(nationalID) {
		return nil, domain.NewValidationError("national_id", "national id", "must be 1 to 15 letters or digits")
	}

	return &domain.Record{
		Specialty:      strings.TrimSpace(input.Specialty),
		Group:          strings.TrimSpace(input.Group),
		FullName:       strings.TrimSpace(input.FullName),
		NationalID:     nationalID,
		TrainingDate:   strings.TrimSpace(input.TrainingDate),
		HoursCount:     input.HoursCount,
		Commune:        strings.TrimSpace(input.Commune),
		Institution:    strings.TrimSpace(input.Institution),
		SupervisorName: strings.TrimSpace(input.SupervisorName),
		SupervisorID:   strings.TrimSpace(input.SupervisorID),
		OwnerEmail:     domain.NormalizeEmail(actingEmail),
	}, nil
}

// nationalIDTaken reports whether any record other than excludeID already
// carries the given national id.
func nationalIDTaken(all []domain.Record, nationalID, excludeID string) bool {
	for i := range all {
		if all[i].ID == excludeID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(all[i].NationalID), nationalID) {
			return true
		}
	}
	return false
}

func matchesFilters(r *domain.Record, in *ports.ListRecordsInput) bool {
	checks := []struct{ filter, value string }{
		{in.Specialty, r.Specialty},
		{in.Group, r.Group},
		{in.FullName, r.FullName},
		{in.NationalID, r.NationalID},
		{in.Commune, r.Commune},
		{in.Institution, r.Institution},
		{in.SupervisorName, r.SupervisorName},
	}
	for _, c := range checks {
		if c.filter != "" && !strings.EqualFold(strings.TrimSpace(c.value), strings.TrimSpace(c.filter)) {
			return false
		}
	}
	return true
}

// inDateRange parses the row's training date and checks it against the
// inclusive bounds. Unparsable dates never match an active date filter.
func inDateRange(trainingDate string, from, to time.Time) bool {
	d, err := domain.ParseTrainingDate(trainingDate)
	if err != nil {
		return false
	}
	if !from.IsZero() && d.Before(from) {
		return false
	}
	if !to.IsZero() && d.After(to) {
		return false
	}
	return true
}

func paginate(items []ports.RecordView, page, perPage int) []ports.RecordView {
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func toView(r *domain.Record) ports.RecordView {
	return ports.RecordView{
		ID:             r.ID,
		Specialty:      r.Specialty,
		Group:          r.Group,
		FullName:       r.FullName,
		NationalID:     r.NationalID,
		TrainingDate:   r.TrainingDate,
		HoursCount:     r.HoursCount,
		Commune:        r.Commune,
		Institution:    r.Institution,
		SupervisorName: r.SupervisorName,
		SupervisorID:   r.SupervisorID,
		OwnerEmail:     r.OwnerEmail,
	}
}

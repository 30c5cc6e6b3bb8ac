package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/formatrack/training-system/internal/core/domain"
	"github.com/formatrack/training-system/internal/core/ports"
)

const (
	// The cache holds exactly two entries, one per key.
	optionsCacheKey = "cache:options"
	summaryCacheKey = "cache:summary"

	defaultCacheTTL = 300 * time.Second
)

// AggregateService caches the two derived read results: the dropdown option
// index and the summary statistics bundle. Both are stored as whole JSON
// blobs; a mutation evicts both keys unconditionally.
type AggregateService struct {
	options ports.OptionRepository
	records ports.RecordRepository
	cache   ports.Cache
	ttl     time.Duration
	logger  zerolog.Logger
}

func NewAggregateService(options ports.OptionRepository, records ports.RecordRepository, cache ports.Cache, ttl time.Duration, logger zerolog.Logger) *AggregateService {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &AggregateService{options: options, records: records, cache: cache, ttl: ttl, logger: logger}
}

// GetOptions returns the serialized option index, rebuilding it from the
// reference table only on a cache miss. A hit returns the stored blob
// verbatim.
func (s *AggregateService) GetOptions(ctx context.Context) (json.RawMessage, error) {
	if blob, ok, err := s.cache.Get(ctx, optionsCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("options cache read failed, rebuilding")
	} else if ok {
		return blob, nil
	}

	rows, err := s.options.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan option table: %w", err)
	}

	index := buildOptionIndex(rows)
	blob, err := json.Marshal(index)
	if err != nil {
		return nil, fmt.Errorf("serialize option index: %w", err)
	}

	if err := s.cache.Set(ctx, optionsCacheKey, blob, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("options cache write failed")
	}
	return blob, nil
}

// GetSummary returns statistics over the full record set, regardless of the
// requester. The elevated visibility is deliberate: the summary is shared.
func (s *AggregateService) GetSummary(ctx context.Context) (*domain.SummaryStats, error) {
	if blob, ok, err := s.cache.Get(ctx, summaryCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("summary cache read failed, recomputing")
	} else if ok {
		var stats domain.SummaryStats
		if err := json.Unmarshal(blob, &stats); err == nil {
			return &stats, nil
		}
		s.logger.Warn().Msg("summary cache entry unreadable, recomputing")
	}

	all, err := s.records.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan record table: %w", err)
	}

	stats := computeSummary(all)
	if blob, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, summaryCacheKey, blob, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("summary cache write failed")
		}
	}
	return stats, nil
}

// Invalidate drops both cache keys. No partial invalidation: any write
// evicts everything the cache knows.
func (s *AggregateService) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, optionsCacheKey, summaryCacheKey)
}

// buildOptionIndex derives the two cascading dropdown mappings. Values are
// de-duplicated and sorted so the serialized form is stable.
func buildOptionIndex(rows []domain.OptionRow) *domain.OptionIndex {
	bySpecialty := map[string]map[string]map[string]struct{}{}
	byCommune := map[string]map[string]map[string]struct{}{}

	for _, row := range rows {
		addOption(bySpecialty, row.Specialty, row.Group, row.Name)
		addOption(byCommune, row.Commune, row.Institution, row.Supervisor)
	}

	return &domain.OptionIndex{
		BySpecialty: flattenOptions(bySpecialty),
		ByCommune:   flattenOptions(byCommune),
	}
}

func addOption(index map[string]map[string]map[string]struct{}, outer, inner, value string) {
	outer = strings.TrimSpace(outer)
	inner = strings.TrimSpace(inner)
	value = strings.TrimSpace(value)
	if outer == "" || inner == "" || value == "" {
		return
	}
	if index[outer] == nil {
		index[outer] = map[string]map[string]struct{}{}
	}
	if index[outer][inner] == nil {
		index[outer][inner] = map[string]struct{}{}
	}
	index[outer][inner][value] = struct{}{}
}

func flattenOptions(index map[string]map[string]map[string]struct{}) map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(index))
	for outer, inners := range index {
		out[outer] = make(map[string][]string, len(inners))
		for inner, values := range inners {
			list := make([]string, 0, len(values))
			for v := range values {
				list = append(list, v)
			}
			sort.Strings(list)
			out[outer][inner] = list
		}
	}
	return out
}

// computeSummary aggregates over every non-blank record.
func computeSummary(all []domain.Record) *domain.SummaryStats {
	specialties := map[string]struct{}{}
	institutions := map[string]struct{}{}
	stats := &domain.SummaryStats{}

	for i := range all {
		r := &all[i]
		if r.Blank() {
			continue
		}
		stats.RecordCount++
		stats.TotalHours += r.HoursCount
		if s := strings.TrimSpace(r.Specialty); s != "" {
			specialties[s] = struct{}{}
		}
		if inst := strings.TrimSpace(r.Institution); inst != "" {
			institutions[inst] = struct{}{}
		}
	}

	stats.SpecialtyCount = len(specialties)
	stats.InstitutionCount = len(institutions)
	return stats
}

package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect-four/internal/domain"
)

const roundKeyPrefix = "round:"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Repository interface {
	SaveGame(ctx context.Context, record domain.GameRecord) error
	GetRound(ctx context.Context, roundID string) (*domain.GameRecord, error)
	ListByTable(ctx context.Context, tableID string, limit int) ([]domain.GameRecord, error)
}

type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Service archives finished rounds and serves them back, caching single
// round lookups when a cache is configured
type Service struct {
	repo  Repository
	cache CacheRepository // Optional, can be nil
	ttl   time.Duration
}

func NewService(repo Repository, cache CacheRepository, ttl time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

func (s *Service) SaveGame(ctx context.Context, record domain.GameRecord) error {
	if err := s.repo.SaveGame(ctx, record); err != nil {
		return err
	}
	s.cacheRound(ctx, &record)
	return nil
}

func (s *Service) GetRound(ctx context.Context, roundID string) (*domain.GameRecord, error) {
	if record := s.cachedRound(ctx, roundID); record != nil {
		return record, nil
	}

	record, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	s.cacheRound(ctx, record)
	return record, nil
}

// ListByTable returns the newest rounds of a table. limit is clamped to
// [1, MaxLimit], zero or negative means DefaultLimit.
func (s *Service) ListByTable(ctx context.Context, tableID string, limit int) ([]domain.GameRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.repo.ListByTable(ctx, tableID, limit)
}

func (s *Service) cachedRound(ctx context.Context, roundID string) *domain.GameRecord {
	if s.cache == nil {
		return nil
	}

	data, err := s.cache.Get(ctx, roundKeyPrefix+roundID)
	if err != nil {
		return nil
	}

	var record domain.GameRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		log.Warn().Err(err).Str("component", "history").Str("round_id", roundID).Msg("Dropping corrupt cache entry")
		if err := s.cache.Del(ctx, roundKeyPrefix+roundID); err != nil {
			log.Warn().Err(err).Str("component", "history").Msg("Failed to delete cache entry")
		}
		return nil
	}
	return &record
}

func (s *Service) cacheRound(ctx context.Context, record *domain.GameRecord) {
	if s.cache == nil || record == nil {
		return
	}

	data, err := json.Marshal(record)
	if err != nil {
		log.Warn().Err(err).Str("component", "history").Msg("Failed to marshal round for cache")
		return
	}
	if err := s.cache.Set(ctx, roundKeyPrefix+record.RoundID, data, s.ttl); err != nil {
		log.Warn().Err(err).Str("component", "history").Str("round_id", record.RoundID).Msg("Failed to populate cache")
	}
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"tradenet/internal/dto"
	"tradenet/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// statsCacheKey holds the serialized statistics response in Redis. Node
// writes delete it so readers never see counters older than one write.
const statsCacheKey = "tradenet:stats"

// StatsService computes the network-wide aggregate: node counts per kind,
// exact total debt, and the average hierarchy level.
type StatsService interface {
	Get(ctx context.Context) (*dto.StatisticsResponse, error)
}

type statsService struct {
	repo repository.NodeRepository
	rdb  *redis.Client
	ttl  time.Duration
}

func NewStatsService(repo repository.NodeRepository, rdb *redis.Client, ttl time.Duration) StatsService {
	return &statsService{repo: repo, rdb: rdb, ttl: ttl}
}

func (s *statsService) Get(ctx context.Context) (*dto.StatisticsResponse, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	agg, err := s.repo.Aggregate(ctx)
	if err != nil {
		return nil, err
	}

	// Average level is Σlevel / count rounded half-up to two places; an
	// empty collection reports 0 rather than failing on the division.
	average := decimal.Zero
	if agg.TotalNodes > 0 {
		average = decimal.NewFromInt(agg.TotalLevel).
			DivRound(decimal.NewFromInt(agg.TotalNodes), 2)
	}

	resp := &dto.StatisticsResponse{
		TotalNodes:     agg.TotalNodes,
		TotalProducers: agg.TotalProducers,
		TotalNetworks:  agg.TotalNetworks,
		TotalResellers: agg.TotalResellers,
		TotalDebt:      agg.TotalDebt,
		AverageLevel:   average,
	}
	s.toCache(ctx, resp)
	return resp, nil
}

// Cache failures are logged and ignored: statistics always fall back to the
// database.

func (s *statsService) fromCache(ctx context.Context) *dto.StatisticsResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var resp dto.StatisticsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *statsService) toCache(ctx context.Context, resp *dto.StatisticsResponse) {
	if s.rdb == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, statsCacheKey, raw, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("statistics cache write failed")
	}
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

const fundSummaryCacheKey = "fund:summary"

// FundService computes the overall fund position.
type FundService interface {
	Summary(ctx context.Context) (dto.FundSummaryResponse, error)
	Invalidate(ctx context.Context)
}

type fundService struct {
	payments repository.PaymentRepository
	expenses repository.ExpenseRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewFundService constructs the fund summary service.
func NewFundService(
	payments repository.PaymentRepository,
	expenses repository.ExpenseRepository,
	cache *redis.Client,
	ttl time.Duration,
	logger zerolog.Logger,
) FundService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &fundService{
		payments: payments,
		expenses: expenses,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "fund_service").Logger(),
	}
}

func (s *fundService) Summary(ctx context.Context) (dto.FundSummaryResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, fundSummaryCacheKey).Result(); err == nil {
			var response dto.FundSummaryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				s.logger.Debug().Msg("fund summary cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read fund summary cache")
		}
	}

	collected, err := s.payments.SumPaid(ctx)
	if err != nil {
		return dto.FundSummaryResponse{}, err
	}

	spent, err := s.expenses.SumTotal(ctx)
	if err != nil {
		return dto.FundSummaryResponse{}, err
	}

	totals, err := s.payments.PeriodTotals(ctx)
	if err != nil {
		return dto.FundSummaryResponse{}, err
	}

	periods := make([]dto.PeriodBreakdown, 0, len(totals))
	for _, total := range totals {
		periods = append(periods, dto.PeriodBreakdown{Period: total.Period, Collected: total.Total})
	}

	response := dto.FundSummaryResponse{
		TotalCollected: collected,
		TotalExpenses:  spent,
		Balance:        collected - spent,
		Periods:        periods,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, fundSummaryCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store fund summary cache")
			}
		}
	}

	return response, nil
}

// Invalidate drops the cached summary. Called after any mutation that moves
// money in or out of the fund.
func (s *fundService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fundSummaryCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate fund summary cache")
	}
}

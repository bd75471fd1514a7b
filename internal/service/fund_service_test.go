package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
	"gorm.io/gorm"
)

func newFundFixture(t *testing.T) (FundService, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	db := newTestDB(t)
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	svc := NewFundService(
		repository.NewPaymentRepository(db),
		repository.NewExpenseRepository(db),
		cache, time.Minute, zerolog.Nop(),
	)
	return svc, db, mr
}

func seedFund(t *testing.T, db *gorm.DB) {
	t.Helper()
	paidAt := time.Now()
	studentID := uint(1)
	require.NoError(t, db.Create(&models.Payment{
		StudentID: &studentID,
		Period:    "2026-03",
		Amount:    50000,
		Status:    models.PaymentStatusPaid,
		Reference: "PAY-TEST00000001",
		PaidAt:    &paidAt,
	}).Error)
	require.NoError(t, db.Create(&models.Expense{
		Title:      "markers",
		Amount:     20000,
		RecordedBy: 1,
		SpentAt:    paidAt,
	}).Error)
}

func TestFundServiceSummaryCaches(t *testing.T) {
	svc, db, _ := newFundFixture(t)
	seedFund(t, db)
	ctx := context.Background()

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.EqualValues(t, 50000, first.TotalCollected)
	require.EqualValues(t, 20000, first.TotalExpenses)
	require.EqualValues(t, 30000, first.Balance)
	require.Len(t, first.Periods, 1)
	require.Equal(t, "2026-03", first.Periods[0].Period)

	second, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.Balance, second.Balance)
}

func TestFundServiceInvalidateDropsCache(t *testing.T) {
	svc, db, _ := newFundFixture(t)
	seedFund(t, db)
	ctx := context.Background()

	_, err := svc.Summary(ctx)
	require.NoError(t, err)

	// New money arrives, the cache is dropped, the next read is fresh.
	paidAt := time.Now()
	studentID := uint(2)
	require.NoError(t, db.Create(&models.Payment{
		StudentID: &studentID,
		Period:    "2026-03",
		Amount:    50000,
		Status:    models.PaymentStatusPaid,
		Reference: "PAY-TEST00000002",
		PaidAt:    &paidAt,
	}).Error)
	svc.Invalidate(ctx)

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	require.False(t, summary.CacheHit)
	require.EqualValues(t, 100000, summary.TotalCollected)
}

func TestFundServiceSummaryWithoutCache(t *testing.T) {
	db := newTestDB(t)
	seedFund(t, db)

	svc := NewFundService(
		repository.NewPaymentRepository(db),
		repository.NewExpenseRepository(db),
		nil, time.Minute, zerolog.Nop(),
	)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.False(t, summary.CacheHit)
	require.EqualValues(t, 30000, summary.Balance)
}

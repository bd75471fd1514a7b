package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasku-go-api/internal/models"
)

func studentRef(id uint) *uint {
	return &id
}

func TestPaymentRepositoryPeriodAggregates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()
	now := time.Now()

	payments := []models.Payment{
		{StudentID: studentRef(1), Period: "2026-08", Amount: 10000, Status: models.PaymentStatusPaid, Reference: "r1", PaidAt: &now},
		{StudentID: studentRef(2), Period: "2026-08", Amount: 10000, Status: models.PaymentStatusPaid, Reference: "r2", PaidAt: &now},
		{StudentID: studentRef(1), Period: "2026-07", Amount: 10000, Status: models.PaymentStatusPaid, Reference: "r3", PaidAt: &now},
	}
	for i := range payments {
		require.NoError(t, repo.Create(ctx, &payments[i]))
	}

	total, count, err := repo.SumPaidByPeriod(ctx, "2026-08")
	require.NoError(t, err)
	require.Equal(t, int64(20000), total)
	require.Equal(t, int64(2), count)

	all, err := repo.SumPaid(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(30000), all)

	periods, err := repo.PeriodTotals(ctx)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	require.Equal(t, "2026-07", periods[0].Period)
	require.Equal(t, int64(10000), periods[0].Total)
}

func TestPaymentRepositoryUniqueStudentPeriod(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	first := models.Payment{StudentID: studentRef(5), Period: "2026-08", Amount: 10000, Status: models.PaymentStatusPaid, Reference: "u1"}
	require.NoError(t, repo.Create(ctx, &first))

	dup := models.Payment{StudentID: studentRef(5), Period: "2026-08", Amount: 10000, Status: models.PaymentStatusPaid, Reference: "u2"}
	require.Error(t, repo.Create(ctx, &dup))

	found, err := repo.GetByStudentPeriod(ctx, 5, "2026-08")
	require.NoError(t, err)
	require.Equal(t, "u1", found.Reference)
}

func TestPaymentRepositorySurplusRowsSkipUniqueIndex(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	first := models.Payment{Period: "2026-08", Amount: 5000, Status: models.PaymentStatusPaid, Method: models.PaymentMethodEventSurplus, Reference: "s1"}
	require.NoError(t, repo.Create(ctx, &first))

	second := models.Payment{Period: "2026-08", Amount: 7000, Status: models.PaymentStatusPaid, Method: models.PaymentMethodEventSurplus, Reference: "s2"}
	require.NoError(t, repo.Create(ctx, &second))

	total, err := repo.SumPaid(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(12000), total)
}

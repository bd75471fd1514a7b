package service

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

func newPaymentFixture(t *testing.T) (PaymentService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewPaymentService(
		repository.NewPaymentRepository(db),
		repository.NewStudentRepository(db),
		repository.NewSettingRepository(db),
		nil, 5, newTestValidator(), zerolog.Nop(),
	)
	return svc, db
}

func addActiveStudent(t *testing.T, db *gorm.DB, name string) models.Student {
	t.Helper()
	student := models.Student{Name: name, Phone: "+628111111111", Active: true}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func TestPaymentServiceCreateAssignsReference(t *testing.T) {
	svc, db := newPaymentFixture(t)
	ctx := context.Background()
	student := addActiveStudent(t, db, "Budi")

	payment, err := svc.Create(ctx, dto.PaymentCreateRequest{
		StudentID: student.ID,
		Period:    "2026-03",
		Amount:    25000,
	})
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.Equal(t, models.PaymentMethodCash, payment.Method)
	require.True(t, strings.HasPrefix(payment.Reference, "PAY-"))
	require.Len(t, payment.Reference, len("PAY-")+12)
	require.NotNil(t, payment.PaidAt)
}

func TestPaymentServiceCreateRejectsDoublePayment(t *testing.T) {
	svc, db := newPaymentFixture(t)
	ctx := context.Background()
	student := addActiveStudent(t, db, "Budi")

	_, err := svc.Create(ctx, dto.PaymentCreateRequest{StudentID: student.ID, Period: "2026-03", Amount: 25000})
	require.NoError(t, err)

	_, err = svc.Create(ctx, dto.PaymentCreateRequest{StudentID: student.ID, Period: "2026-03", Amount: 25000})
	require.ErrorIs(t, err, ErrPeriodAlreadyPaid)

	// A different month is a fresh period.
	_, err = svc.Create(ctx, dto.PaymentCreateRequest{StudentID: student.ID, Period: "2026-04", Amount: 25000})
	require.NoError(t, err)
}

func TestPaymentServiceCreateUnknownStudent(t *testing.T) {
	svc, _ := newPaymentFixture(t)

	_, err := svc.Create(context.Background(), dto.PaymentCreateRequest{StudentID: 404, Period: "2026-03", Amount: 25000})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestPaymentServicePeriodSummary(t *testing.T) {
	svc, db := newPaymentFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Setting{DuesAmount: 25000, ReminderGraceDays: 3}).Error)
	paying := addActiveStudent(t, db, "Budi")
	addActiveStudent(t, db, "Sinta")
	addActiveStudent(t, db, "Rina")

	_, err := svc.Create(ctx, dto.PaymentCreateRequest{StudentID: paying.ID, Period: "2026-03", Amount: 25000})
	require.NoError(t, err)

	summary, err := svc.PeriodSummary(ctx, "2026-03")
	require.NoError(t, err)
	require.EqualValues(t, 25000, summary.Collected)
	require.EqualValues(t, 50000, summary.Outstanding)
	require.Equal(t, 1, summary.PaidStudents)
	require.Equal(t, 3, summary.ActiveStudents)
}

func TestPaymentServicePeriodSummaryOutstandingFloor(t *testing.T) {
	svc, db := newPaymentFixture(t)
	ctx := context.Background()

	// No dues configured means collections can exceed the expectation;
	// outstanding never goes negative.
	student := addActiveStudent(t, db, "Budi")
	_, err := svc.Create(ctx, dto.PaymentCreateRequest{StudentID: student.ID, Period: "2026-03", Amount: 99000})
	require.NoError(t, err)

	summary, err := svc.PeriodSummary(ctx, "2026-03")
	require.NoError(t, err)
	require.Zero(t, summary.Outstanding)
}

func TestPaymentServiceUploadProofWithoutStorage(t *testing.T) {
	svc, db := newPaymentFixture(t)
	ctx := context.Background()
	student := addActiveStudent(t, db, "Budi")

	payment, err := svc.Create(ctx, dto.PaymentCreateRequest{StudentID: student.ID, Period: "2026-03", Amount: 25000})
	require.NoError(t, err)

	_, err = svc.UploadProof(ctx, payment.ID, nil)
	require.ErrorIs(t, err, ErrProofStorageUnavailable)
}

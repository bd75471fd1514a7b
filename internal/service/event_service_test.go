package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

func newEventFixture(t *testing.T) (EventService, *eventService, repository.PaymentRepository, func(name string) models.Student) {
	t.Helper()
	db := newTestDB(t)
	payments := repository.NewPaymentRepository(db)
	students := repository.NewStudentRepository(db)
	svc := NewEventService(repository.NewEventRepository(db), students, newTestValidator(), zerolog.Nop())
	impl := svc.(*eventService)

	createStudent := func(name string) models.Student {
		student := models.Student{Name: name, Phone: "+620000000", Active: true}
		require.NoError(t, students.Create(context.Background(), &student))
		return student
	}

	return svc, impl, payments, createStudent
}

func TestEventServiceCloseTransfersSurplus(t *testing.T) {
	svc, impl, payments, createStudent := newEventFixture(t)
	ctx := context.Background()

	closedAt := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	impl.now = func() time.Time { return closedAt }

	event, err := svc.Create(ctx, dto.EventCreateRequest{Name: "Study Tour", DueAmount: 50000, Target: 100000})
	require.NoError(t, err)

	student := createStudent("Budi")
	_, err = svc.AddPayment(ctx, event.ID, dto.EventPaymentRequest{StudentID: student.ID, Amount: 150000})
	require.NoError(t, err)

	result, err := svc.Close(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, models.EventStatusClosed, result.Event.Status)
	require.EqualValues(t, 50000, result.Surplus)
	require.NotNil(t, result.Transfer)

	transfer, err := payments.GetByID(ctx, *result.Transfer)
	require.NoError(t, err)
	require.Nil(t, transfer.StudentID)
	require.Equal(t, "2026-03", transfer.Period)
	require.Equal(t, models.PaymentMethodEventSurplus, transfer.Method)
	require.Equal(t, models.PaymentStatusPaid, transfer.Status)
	require.EqualValues(t, 50000, transfer.Amount)
}

func TestEventServiceCloseAtOrBelowTargetNoTransfer(t *testing.T) {
	svc, _, _, createStudent := newEventFixture(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, dto.EventCreateRequest{Name: "Bake Sale", DueAmount: 10000, Target: 100000})
	require.NoError(t, err)

	student := createStudent("Rina")
	_, err = svc.AddPayment(ctx, event.ID, dto.EventPaymentRequest{StudentID: student.ID, Amount: 100000})
	require.NoError(t, err)

	result, err := svc.Close(ctx, event.ID)
	require.NoError(t, err)
	require.Zero(t, result.Surplus)
	require.Nil(t, result.Transfer)
}

func TestEventServiceCloseTwiceRejected(t *testing.T) {
	svc, _, _, createStudent := newEventFixture(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, dto.EventCreateRequest{Name: "Study Tour", DueAmount: 50000, Target: 100000})
	require.NoError(t, err)

	student := createStudent("Budi")
	_, err = svc.AddPayment(ctx, event.ID, dto.EventPaymentRequest{StudentID: student.ID, Amount: 150000})
	require.NoError(t, err)

	_, err = svc.Close(ctx, event.ID)
	require.NoError(t, err)

	// A second close is rejected so the surplus is never transferred twice.
	_, err = svc.Close(ctx, event.ID)
	require.ErrorIs(t, err, ErrEventClosed)
}

func TestEventServiceClosedEventRejectsChanges(t *testing.T) {
	svc, _, _, createStudent := newEventFixture(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, dto.EventCreateRequest{Name: "Bake Sale", DueAmount: 10000, Target: 50000})
	require.NoError(t, err)
	_, err = svc.Close(ctx, event.ID)
	require.NoError(t, err)

	student := createStudent("Budi")
	_, err = svc.AddPayment(ctx, event.ID, dto.EventPaymentRequest{StudentID: student.ID, Amount: 5000})
	require.ErrorIs(t, err, ErrEventClosed)

	name := "Renamed"
	_, err = svc.Update(ctx, event.ID, dto.EventUpdateRequest{Name: &name})
	require.ErrorIs(t, err, ErrEventClosed)
}

func TestEventServiceAddPaymentUnknownStudent(t *testing.T) {
	svc, _, _, _ := newEventFixture(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, dto.EventCreateRequest{Name: "Bake Sale", DueAmount: 10000, Target: 50000})
	require.NoError(t, err)

	_, err = svc.AddPayment(ctx, event.ID, dto.EventPaymentRequest{StudentID: 404, Amount: 5000})
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestEventServiceCloseRollsBackWhenTransferFails(t *testing.T) {
	// No payments table, so the surplus insert fails. The close must roll
	// back with it: a closed event without its transfer row could never be
	// reconciled, because a second close is rejected.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Event{}, &models.EventPayment{}, &models.Student{}))

	students := repository.NewStudentRepository(db)
	svc := NewEventService(repository.NewEventRepository(db), students, newTestValidator(), zerolog.Nop())
	ctx := context.Background()

	student := models.Student{Name: "Budi", Phone: "+620000000", Active: true}
	require.NoError(t, students.Create(ctx, &student))

	event, err := svc.Create(ctx, dto.EventCreateRequest{Name: "Bazaar", DueAmount: 50000, Target: 100000})
	require.NoError(t, err)
	_, err = svc.AddPayment(ctx, event.ID, dto.EventPaymentRequest{StudentID: student.ID, Amount: 150000})
	require.NoError(t, err)

	_, err = svc.Close(ctx, event.ID)
	require.Error(t, err)

	reloaded, err := svc.Get(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, models.EventStatusOpen, reloaded.Status)
	require.Nil(t, reloaded.ClosedAt)

	// Once the transfer can be stored the same event closes cleanly.
	require.NoError(t, db.AutoMigrate(&models.Payment{}))
	closed, err := svc.Close(ctx, event.ID)
	require.NoError(t, err)
	require.EqualValues(t, 50000, closed.Surplus)
}

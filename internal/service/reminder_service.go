package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/observability"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

const defaultReminderTemplate = "Hi {name}, friendly reminder: class dues of {amount} for {period} are still unpaid. Thank you!"

// WhatsAppMessage is the payload published to the gateway subject.
type WhatsAppMessage struct {
	Phone   string    `json:"phone"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// MessageSender delivers an outbound WhatsApp message.
type MessageSender interface {
	Send(ctx context.Context, msg WhatsAppMessage) error
}

// NATSSender publishes outbound messages to a NATS subject consumed by the
// WhatsApp gateway.
type NATSSender struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSender constructs a NATS-backed message sender.
func NewNATSSender(conn *nats.Conn, subject string) *NATSSender {
	return &NATSSender{conn: conn, subject: subject}
}

// Send publishes the message to the configured subject.
func (s *NATSSender) Send(_ context.Context, msg WhatsAppMessage) error {
	if s.conn == nil || s.subject == "" {
		return errors.New("nats sender not configured")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return s.conn.Publish(s.subject, payload)
}

// LogSender writes outbound messages to the log. Used when NATS is not
// configured so reminder passes stay observable in development.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender constructs a logging message sender.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "whatsapp_log_sender").Logger()}
}

// Send logs the message instead of delivering it.
func (s *LogSender) Send(_ context.Context, msg WhatsAppMessage) error {
	s.logger.Info().Str("phone", msg.Phone).Str("message", msg.Message).Msg("whatsapp message (log only)")
	return nil
}

// ReminderService sends dues reminders to students with unpaid periods.
type ReminderService interface {
	Run(ctx context.Context) (int, error)
}

type reminderService struct {
	students repository.StudentRepository
	payments repository.PaymentRepository
	settings repository.SettingRepository
	marks    *redis.Client
	sender   MessageSender
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewReminderService constructs the reminder service.
func NewReminderService(
	students repository.StudentRepository,
	payments repository.PaymentRepository,
	settings repository.SettingRepository,
	marks *redis.Client,
	sender MessageSender,
	logger zerolog.Logger,
) ReminderService {
	observability.RegisterMetrics()
	return &reminderService{
		students: students,
		payments: payments,
		settings: settings,
		marks:    marks,
		sender:   sender,
		logger:   logger.With().Str("component", "reminder_service").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/kasku-go-api/internal/service/reminder"),
		now:      time.Now,
	}
}

// Run executes one reminder pass and returns the number of messages sent.
func (s *reminderService) Run(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "reminder.pass")
	defer span.End()

	start := s.now()
	defer func() {
		observability.ReminderPassDuration().Observe(time.Since(start).Seconds())
	}()

	setting, err := s.settings.Get(ctx)
	if err != nil {
		return 0, err
	}

	if !setting.ReminderEnabled {
		s.logger.Debug().Msg("reminders disabled, skipping pass")
		return 0, nil
	}
	if setting.ReminderStartDate != nil && s.now().Before(*setting.ReminderStartDate) {
		s.logger.Debug().Time("start_date", *setting.ReminderStartDate).Msg("reminder start date not reached")
		return 0, nil
	}

	period := s.now().Format("2006-01")
	span.SetAttributes(attribute.String("reminder.period", period))

	students, err := s.students.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	template := setting.ReminderTemplate
	if strings.TrimSpace(template) == "" {
		template = defaultReminderTemplate
	}

	grace := time.Duration(setting.ReminderGraceDays) * 24 * time.Hour
	if grace <= 0 {
		grace = 24 * time.Hour
	}

	sent := 0
	for _, student := range students {
		if strings.TrimSpace(student.Phone) == "" {
			continue
		}

		paid, err := s.hasPaid(ctx, student.ID, period)
		if err != nil {
			s.logger.Warn().Err(err).Uint("student_id", student.ID).Msg("failed to check dues, skipping")
			continue
		}
		if paid {
			continue
		}

		if s.recentlyReminded(ctx, student.ID, period) {
			continue
		}

		message := renderReminder(template, student.Name, period, setting.DuesAmount)
		if err := s.sender.Send(ctx, WhatsAppMessage{
			Phone:   student.Phone,
			Message: message,
			SentAt:  s.now().UTC(),
		}); err != nil {
			s.logger.Error().Err(err).Uint("student_id", student.ID).Msg("failed to send reminder")
			continue
		}

		s.markReminded(ctx, student.ID, period, grace)
		observability.RemindersSent().Inc()
		sent++
	}

	span.SetAttributes(attribute.Int("reminder.sent", sent))
	if sent > 0 {
		s.logger.Info().Int("sent", sent).Str("period", period).Msg("reminder pass completed")
	}

	return sent, nil
}

func (s *reminderService) hasPaid(ctx context.Context, studentID uint, period string) (bool, error) {
	payment, err := s.payments.GetByStudentPeriod(ctx, studentID, period)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return payment.Status == models.PaymentStatusPaid, nil
}

func reminderMarkKey(studentID uint, period string) string {
	return fmt.Sprintf("reminder:sent:%d:%s", studentID, period)
}

// recentlyReminded consults the Redis grace-window mark. A Redis outage
// degrades to re-sending rather than silence.
func (s *reminderService) recentlyReminded(ctx context.Context, studentID uint, period string) bool {
	if s.marks == nil {
		return false
	}

	_, err := s.marks.Get(ctx, reminderMarkKey(studentID, period)).Result()
	if err == nil {
		return true
	}
	if err != redis.Nil {
		s.logger.Warn().Err(err).Msg("failed to read reminder mark")
	}
	return false
}

func (s *reminderService) markReminded(ctx context.Context, studentID uint, period string, grace time.Duration) {
	if s.marks == nil {
		return
	}

	if err := s.marks.Set(ctx, reminderMarkKey(studentID, period), s.now().UTC().Format(time.RFC3339), grace).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store reminder mark")
	}
}

func renderReminder(template, name, period string, amount int64) string {
	replacer := strings.NewReplacer(
		"{name}", name,
		"{period}", period,
		"{amount}", strconv.FormatInt(amount, 10),
	)
	return replacer.Replace(template)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/observability"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

var (
	// ErrPaymentNotFound indicates the requested payment does not exist.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPeriodAlreadyPaid indicates the student already paid the period.
	ErrPeriodAlreadyPaid = errors.New("period already paid for this student")
	// ErrProofTooLarge indicates the proof exceeded the configured limit.
	ErrProofTooLarge = errors.New("proof exceeds maximum allowed size")
	// ErrProofTypeNotAllowed indicates the proof MIME type is not permitted.
	ErrProofTypeNotAllowed = errors.New("proof file type not allowed")
	// ErrProofStorageUnavailable indicates no upload backend is configured.
	ErrProofStorageUnavailable = errors.New("proof storage is not configured")
)

// FileStorage abstracts proof upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// PaymentService records dues payments and their proofs.
type PaymentService interface {
	Create(ctx context.Context, req dto.PaymentCreateRequest) (dto.PaymentResponse, error)
	Get(ctx context.Context, id uint) (dto.PaymentResponse, error)
	List(ctx context.Context, filter repository.PaymentFilter) (dto.PaymentListResponse, error)
	Update(ctx context.Context, id uint, req dto.PaymentUpdateRequest) (dto.PaymentResponse, error)
	Delete(ctx context.Context, id uint) error
	PeriodSummary(ctx context.Context, period string) (dto.PeriodSummaryResponse, error)
	UploadProof(ctx context.Context, paymentID uint, file *multipart.FileHeader) (dto.ProofUploadResponse, error)
}

type paymentService struct {
	repo     repository.PaymentRepository
	students repository.StudentRepository
	settings repository.SettingRepository
	storage  FileStorage
	validate *validator.Validate
	logger   zerolog.Logger
	maxProof int64
	tracer   trace.Tracer
	now      func() time.Time
}

// NewPaymentService constructs the dues payment service.
func NewPaymentService(
	repo repository.PaymentRepository,
	students repository.StudentRepository,
	settings repository.SettingRepository,
	storage FileStorage,
	maxProofMB int,
	validate *validator.Validate,
	logger zerolog.Logger,
) PaymentService {
	if maxProofMB <= 0 {
		maxProofMB = 5
	}
	observability.RegisterMetrics()
	return &paymentService{
		repo:     repo,
		students: students,
		settings: settings,
		storage:  storage,
		validate: validate,
		logger:   logger.With().Str("component", "payment_service").Logger(),
		maxProof: int64(maxProofMB) * 1024 * 1024,
		tracer:   otel.Tracer("github.com/noah-isme/kasku-go-api/internal/service/payment"),
		now:      time.Now,
	}
}

func (s *paymentService) Create(ctx context.Context, req dto.PaymentCreateRequest) (dto.PaymentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.PaymentResponse{}, err
	}

	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentResponse{}, ErrStudentNotFound
		}
		return dto.PaymentResponse{}, err
	}

	if existing, err := s.repo.GetByStudentPeriod(ctx, req.StudentID, req.Period); err == nil {
		if existing.Status == models.PaymentStatusPaid {
			return dto.PaymentResponse{}, ErrPeriodAlreadyPaid
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.PaymentResponse{}, err
	}

	method := strings.TrimSpace(req.Method)
	if method == "" {
		method = models.PaymentMethodCash
	}

	paidAt := s.now()
	studentID := req.StudentID
	payment := models.Payment{
		StudentID: &studentID,
		Period:    req.Period,
		Amount:    req.Amount,
		Status:    models.PaymentStatusPaid,
		Method:    method,
		Reference: newPaymentReference(),
		Note:      strings.TrimSpace(req.Note),
		PaidAt:    &paidAt,
	}

	if err := s.repo.Create(ctx, &payment); err != nil {
		s.logger.Error().Err(err).Uint("student_id", req.StudentID).Msg("failed to record payment")
		return dto.PaymentResponse{}, err
	}

	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) Get(ctx context.Context, id uint) (dto.PaymentResponse, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentResponse{}, ErrPaymentNotFound
		}
		return dto.PaymentResponse{}, err
	}

	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) List(ctx context.Context, filter repository.PaymentFilter) (dto.PaymentListResponse, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.PaymentListResponse{}, err
	}

	items := make([]dto.PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		items = append(items, dto.NewPaymentResponse(payment))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(filter.Page, 1),
		PageSize:   filter.PageSize,
		TotalItems: total,
	}
	if filter.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(filter.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.PaymentListResponse{Items: items, Pagination: pagination}, nil
}

func (s *paymentService) Update(ctx context.Context, id uint, req dto.PaymentUpdateRequest) (dto.PaymentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return dto.PaymentResponse{}, err
	}

	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaymentResponse{}, ErrPaymentNotFound
		}
		return dto.PaymentResponse{}, err
	}

	if req.Amount != nil {
		payment.Amount = *req.Amount
	}
	if req.Method != nil {
		payment.Method = strings.TrimSpace(*req.Method)
	}
	if req.Note != nil {
		payment.Note = strings.TrimSpace(*req.Note)
	}

	if err := s.repo.Update(ctx, &payment); err != nil {
		return dto.PaymentResponse{}, err
	}

	return dto.NewPaymentResponse(payment), nil
}

func (s *paymentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}

	return s.repo.Delete(ctx, id)
}

func (s *paymentService) PeriodSummary(ctx context.Context, period string) (dto.PeriodSummaryResponse, error) {
	collected, paidCount, err := s.repo.SumPaidByPeriod(ctx, period)
	if err != nil {
		return dto.PeriodSummaryResponse{}, err
	}

	activeStudents, err := s.students.CountActive(ctx)
	if err != nil {
		return dto.PeriodSummaryResponse{}, err
	}

	setting, err := s.settings.Get(ctx)
	if err != nil {
		return dto.PeriodSummaryResponse{}, err
	}

	outstanding := setting.DuesAmount*activeStudents - collected
	if outstanding < 0 {
		outstanding = 0
	}

	return dto.PeriodSummaryResponse{
		Period:         period,
		Collected:      collected,
		Outstanding:    outstanding,
		PaidStudents:   int(paidCount),
		ActiveStudents: int(activeStudents),
	}, nil
}

func (s *paymentService) UploadProof(ctx context.Context, paymentID uint, file *multipart.FileHeader) (dto.ProofUploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "payment.proof_upload")
	defer span.End()
	span.SetAttributes(attribute.Int("payment.id", int(paymentID)))

	if s.storage == nil {
		span.SetStatus(codes.Error, "storage unavailable")
		return dto.ProofUploadResponse{}, ErrProofStorageUnavailable
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "payment not found")
			return dto.ProofUploadResponse{}, ErrPaymentNotFound
		}
		return dto.ProofUploadResponse{}, err
	}

	if file == nil {
		return dto.ProofUploadResponse{}, errors.New("file is required")
	}
	if file.Size > s.maxProof {
		observability.ProofUploads().WithLabelValues("rejected_size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.ProofUploadResponse{}, ErrProofTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return dto.ProofUploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxProof+1)); err != nil {
		return dto.ProofUploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxProof {
		observability.ProofUploads().WithLabelValues("rejected_size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.ProofUploadResponse{}, ErrProofTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	detected := strings.ToLower(strings.TrimSpace(mime.String()))
	span.SetAttributes(attribute.String("proof.detected_mime", detected))
	if !isAllowedProofType(detected) {
		observability.ProofUploads().WithLabelValues("rejected_type").Inc()
		span.SetStatus(codes.Error, "type not allowed")
		return dto.ProofUploadResponse{}, ErrProofTypeNotAllowed
	}

	name := fmt.Sprintf("payment-%d%s", paymentID, mime.Extension())
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.ProofUploads().WithLabelValues("storage_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.ProofUploadResponse{}, err
	}

	payment.ProofURL = url
	if err := s.repo.Update(ctx, &payment); err != nil {
		return dto.ProofUploadResponse{}, err
	}

	observability.ProofUploads().WithLabelValues("accepted").Inc()
	span.SetStatus(codes.Ok, "stored")

	return dto.ProofUploadResponse{
		PaymentID: payment.ID,
		URL:       url,
		MimeType:  detected,
		SizeBytes: int64(buf.Len()),
	}, nil
}

func isAllowedProofType(mime string) bool {
	switch {
	case strings.HasPrefix(mime, "image/jpeg"),
		strings.HasPrefix(mime, "image/png"),
		strings.HasPrefix(mime, "image/webp"),
		strings.HasPrefix(mime, "application/pdf"):
		return true
	default:
		return false
	}
}

func newPaymentReference() string {
	return "PAY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/observability"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

// AuditEntry captures the details required to persist one audit record.
type AuditEntry struct {
	UserID       uint
	Action       string
	Resource     string
	ResourceID   *string
	Context      map[string]interface{}
	IPAddress    string
	UserAgent    string
	Success      bool
	ErrorMessage string
}

// AuditRecorder defines behaviour for recording audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditService exposes methods to persist and query the audit trail.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error)
}

type auditService struct {
	repo   repository.AuditLogRepository
	logger zerolog.Logger
}

// NewAuditService constructs the audit trail service.
func NewAuditService(repo repository.AuditLogRepository, logger zerolog.Logger) AuditService {
	observability.RegisterMetrics()
	return &auditService{
		repo:   repo,
		logger: logger.With().Str("component", "audit_service").Logger(),
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) error {
	action := strings.ToUpper(strings.TrimSpace(entry.Action))
	if action == "" {
		return fmt.Errorf("action is required")
	}
	resource := strings.TrimSpace(entry.Resource)
	if resource == "" {
		return fmt.Errorf("resource is required")
	}

	model := models.AuditLog{
		UserID:       entry.UserID,
		Action:       action,
		Resource:     resource,
		ResourceID:   entry.ResourceID,
		Context:      sanitizeContext(entry.Context),
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		Success:      entry.Success,
		ErrorMessage: entry.ErrorMessage,
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		observability.AuditWriteFailures().Inc()
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist audit entry")
		return err
	}

	outcome := "success"
	if !entry.Success {
		outcome = "failure"
	}
	observability.AuditEntries().WithLabelValues(action, outcome).Inc()

	return nil
}

func (s *auditService) List(ctx context.Context, req dto.AuditListRequest) (dto.AuditListResponse, error) {
	filter := repository.AuditLogFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Action:   strings.ToUpper(strings.TrimSpace(req.Action)),
		Resource: strings.TrimSpace(req.Resource),
		From:     req.From,
		To:       req.To,
	}
	if req.UserID > 0 {
		filter.UserID = &req.UserID
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditListResponse{}, err
	}

	responses := make([]dto.AuditResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewAuditResponse(entry))
	}

	pagination := dto.PaginationMeta{
		Page:       maxInt(req.Page, 1),
		PageSize:   req.PageSize,
		TotalItems: total,
	}
	if req.PageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	} else {
		pagination.TotalPages = 1
	}

	return dto.AuditListResponse{Items: responses, Pagination: pagination}, nil
}

// sensitiveContextKeys lists the top-level payload keys that are masked
// before an audit context is persisted. Matching is exact and shallow;
// nested maps are stored as-is.
var sensitiveContextKeys = map[string]struct{}{
	"password":        {},
	"currentPassword": {},
	"newPassword":     {},
	"token":           {},
	"secret":          {},
}

func sanitizeContext(context map[string]interface{}) datatypes.JSONMap {
	if context == nil {
		return datatypes.JSONMap{}
	}

	sanitized := datatypes.JSONMap{}
	for key, value := range context {
		if _, sensitive := sensitiveContextKeys[key]; sensitive {
			sanitized[key] = "***"
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

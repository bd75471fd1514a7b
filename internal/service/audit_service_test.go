package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasku-go-api/internal/dto"
	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

func TestAuditServiceRecordMasksSensitiveKeys(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	svc := NewAuditService(repo, zerolog.Nop())

	err := svc.Record(context.Background(), AuditEntry{
		UserID:   7,
		Action:   "password_change",
		Resource: "auth",
		Context: map[string]interface{}{
			"currentPassword": "hunter2",
			"newPassword":     "correct horse",
			"token":           "eyJ...",
			"username":        "sinta",
			"nested":          map[string]interface{}{"password": "kept-as-is"},
		},
		Success: true,
	})
	require.NoError(t, err)

	var stored models.AuditLog
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, "PASSWORD_CHANGE", stored.Action)
	require.Equal(t, "***", stored.Context["currentPassword"])
	require.Equal(t, "***", stored.Context["newPassword"])
	require.Equal(t, "***", stored.Context["token"])
	require.Equal(t, "sinta", stored.Context["username"])

	// Masking is shallow; nested maps are stored verbatim.
	nested, ok := stored.Context["nested"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "kept-as-is", nested["password"])
}

func TestAuditServiceRecordRequiresAction(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditService(repository.NewAuditLogRepository(db), zerolog.Nop())

	err := svc.Record(context.Background(), AuditEntry{Resource: "auth"})
	require.Error(t, err)

	err = svc.Record(context.Background(), AuditEntry{Action: "LOGIN"})
	require.Error(t, err)
}

func TestAuditServiceListFiltersByUser(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	svc := NewAuditService(repo, zerolog.Nop())

	for _, entry := range []AuditEntry{
		{UserID: 1, Action: models.AuditActionLogin, Resource: "auth", Success: true},
		{UserID: 1, Action: models.AuditActionLogout, Resource: "auth", Success: true},
		{UserID: 2, Action: models.AuditActionLogin, Resource: "auth", Success: false},
	} {
		require.NoError(t, svc.Record(context.Background(), entry))
	}

	result, err := svc.List(context.Background(), dto.AuditListRequest{Page: 1, PageSize: 10, UserID: 1})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.EqualValues(t, 2, result.Pagination.TotalItems)

	failures, err := svc.List(context.Background(), dto.AuditListRequest{Page: 1, PageSize: 10, Action: "login"})
	require.NoError(t, err)
	require.Len(t, failures.Items, 2)
}

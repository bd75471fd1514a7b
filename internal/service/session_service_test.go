package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasku-go-api/internal/models"
	"github.com/noah-isme/kasku-go-api/internal/repository"
)

func TestSessionServiceRevokeEnforcesOwnership(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(repository.NewSessionRepository(db), zerolog.Nop())
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	mine, err := svc.Open(ctx, 1, "token-mine", expires, "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0", "10.0.0.1")
	require.NoError(t, err)
	theirs, err := svc.Open(ctx, 2, "token-theirs", expires, "", "")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Revoke(ctx, 1, theirs.ID), ErrSessionForbidden)
	require.ErrorIs(t, svc.Revoke(ctx, 1, 9999), ErrSessionNotFound)
	require.NoError(t, svc.Revoke(ctx, 1, mine.ID))

	var revoked models.Session
	require.NoError(t, db.First(&revoked, mine.ID).Error)
	require.False(t, revoked.Active)
}

func TestSessionServiceOpenRecordsClientInfo(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(repository.NewSessionRepository(db), zerolog.Nop())

	session, err := svc.Open(context.Background(), 1, "token-1", time.Now().Add(time.Hour),
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", "203.0.113.7")
	require.NoError(t, err)
	require.Equal(t, "Desktop", session.Device)
	require.Equal(t, "Chrome", session.Browser)
	require.Equal(t, "Windows", session.OS)
}

func TestSessionServiceListMarksCurrent(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(repository.NewSessionRepository(db), zerolog.Nop())
	ctx := context.Background()
	expires := time.Now().Add(time.Hour)

	first, err := svc.Open(ctx, 1, "token-1", expires, "", "")
	require.NoError(t, err)
	_, err = svc.Open(ctx, 1, "token-2", expires, "", "")
	require.NoError(t, err)

	sessions, err := svc.ListForUser(ctx, 1, first.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	current := 0
	for _, session := range sessions {
		if session.IsCurrent {
			current++
			require.Equal(t, first.ID, session.ID)
		}
	}
	require.Equal(t, 1, current)
}

func TestSessionServiceCleanupExpiredIgnoresActiveFlag(t *testing.T) {
	db := newTestDB(t)
	svc := NewSessionService(repository.NewSessionRepository(db), zerolog.Nop())
	ctx := context.Background()

	live, err := svc.Open(ctx, 1, "token-live", time.Now().Add(time.Hour), "", "")
	require.NoError(t, err)
	_, err = svc.Open(ctx, 1, "token-expired", time.Now().Add(-time.Minute), "", "")
	require.NoError(t, err)
	require.NoError(t, svc.RevokeByToken(ctx, "token-expired"))

	removed, err := svc.CleanupExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var remaining models.Session
	require.NoError(t, db.First(&remaining).Error)
	require.Equal(t, live.ID, remaining.ID)
}

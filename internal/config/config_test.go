package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsToDevFallbackSecret(t *testing.T) {
	t.Setenv("KASKU_JWT_SECRET", "")
	t.Setenv("KASKU_APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DevFallbackSecret, cfg.JWTSecret)
	require.False(t, cfg.Production())
}

func TestLoadRefusesProductionWithoutSecret(t *testing.T) {
	t.Setenv("KASKU_JWT_SECRET", "")
	t.Setenv("KASKU_APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRefusesProductionWithFallbackSecret(t *testing.T) {
	t.Setenv("KASKU_JWT_SECRET", DevFallbackSecret)
	t.Setenv("KASKU_APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadAcceptsProductionWithExplicitSecret(t *testing.T) {
	t.Setenv("KASKU_JWT_SECRET", "an-explicit-strong-secret")
	t.Setenv("KASKU_APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.Production())
	require.Equal(t, ":8080", cfg.HTTPAddress())
}

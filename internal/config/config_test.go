package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 15*time.Second, cfg.SubmitTimeout)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.AllowedOrigins)
	assert.Contains(t, cfg.DatabaseURL, "sanmateo_reports")
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://reports.sanmateo.gov.ph , ,https://admin.sanmateo.gov.ph")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "app")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "reports")
	t.Setenv("DRAFT_TTL", "45m")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, []string{"https://reports.sanmateo.gov.ph", "https://admin.sanmateo.gov.ph"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://app:p%40ss@db:5432/reports?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, 45*time.Minute, cfg.DraftTTL)
}

func TestFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("SUBMIT_TIMEOUT", "soon")
	t.Setenv("MAX_UPLOAD_MB", "lots")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SUBMIT_TIMEOUT")
	assert.Contains(t, err.Error(), "MAX_UPLOAD_MB")
}

func TestFromEnv_UnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_ProductionRequirements(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")
	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("ADMIN_PASSWORD_HASH", "")
	_, err = FromEnv()
	require.Error(t, err)

	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	_, err = FromEnv()
	require.Error(t, err)

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://reports.sanmateo.gov.ph")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

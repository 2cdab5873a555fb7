package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INTERNAL_API_SECRET", "s3cret")
	t.Setenv("MINIO_ACCESS_KEY_ID", "minio")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "minio123")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "documents", cfg.MinIO.Bucket)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, "modern", cfg.Render.DefaultTemplate)
	assert.True(t, cfg.Render.PDFCompression)
	assert.Equal(t, "DRAFT", cfg.Render.WatermarkText)
}

func TestLoadReadsEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "5m")
	t.Setenv("RENDER_DEFAULT_TEMPLATE", "classic")
	t.Setenv("RENDER_PDF_COMPRESSION", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "classic", cfg.Render.DefaultTemplate)
	assert.False(t, cfg.Render.PDFCompression)
}

func TestLoadRequiresInternalSecret(t *testing.T) {
	t.Setenv("MINIO_ACCESS_KEY_ID", "minio")
	t.Setenv("MINIO_SECRET_ACCESS_KEY", "minio123")
	t.Setenv("INTERNAL_API_SECRET", " ")

	_, err := Load()
	assert.ErrorContains(t, err, "internal api secret")
}

func TestLoadRenderNeedsNoCredentials(t *testing.T) {
	t.Setenv("INTERNAL_API_SECRET", "")
	t.Setenv("RENDER_WATERMARK_TEXT", "PREVIEW")

	cfg, err := LoadRender()
	require.NoError(t, err)
	assert.Equal(t, "PREVIEW", cfg.WatermarkText)
	assert.Equal(t, "modern", cfg.DefaultTemplate)
}

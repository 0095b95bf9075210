package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OCR_ENGINE", "")
	t.Setenv("REJECT_DUPLICATE_INVOICES", "")
	t.Setenv("BATCH_WORKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "inventory.db", cfg.DatabaseURL)
	assert.Equal(t, "vision", cfg.OCREngine)
	assert.Equal(t, []string{"pt", "en"}, cfg.OCRLanguageHints)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	assert.False(t, cfg.RejectDuplicateInvoices)
	assert.Equal(t, 4, cfg.BatchWorkers)
	assert.Equal(t, "info", cfg.GetLoggerConfig().Level)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "pgx")
	t.Setenv("DATABASE_URL", "postgres://localhost/inventory")
	t.Setenv("OCR_LANGUAGE_HINTS", " pt , , es ")
	t.Setenv("OCR_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("REJECT_DUPLICATE_INVOICES", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, []string{"pt", "es"}, cfg.OCRLanguageHints)
	assert.Equal(t, 0.5, cfg.OCRRequestsPerSecond)
	assert.True(t, cfg.RejectDuplicateInvoices)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown driver", "DATABASE_DRIVER", "mysql"},
		{"unknown engine", "OCR_ENGINE", "tesseract"},
		{"non numeric pool size", "DB_MAX_OPEN_CONNS", "many"},
		{"bad duration", "DB_CONN_MAX_LIFETIME", "forever"},
		{"bad boolean", "REJECT_DUPLICATE_INVOICES", "sometimes"},
		{"zero rate", "OCR_REQUESTS_PER_SECOND", "0"},
		{"no workers", "BATCH_WORKERS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateDocumentAI(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ValidateDocumentAI())

	cfg.GoogleCloudProject = "acme"
	assert.Error(t, cfg.ValidateDocumentAI())

	cfg.DocumentAIProcessorID = "proc-1"
	assert.NoError(t, cfg.ValidateDocumentAI())
}

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupRejectsUnknownLevel(t *testing.T) {
	err := Setup(LogConfig{Level: "loud", Format: "json", Output: "stderr"})
	assert.Error(t, err)
}

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.log")

	require.NoError(t, Setup(LogConfig{Level: "info", Format: "json", Output: path}))
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	log := WithCompany("ingest", "company-1")
	log.Info().Str("invoice_number", "12345").Msg("invoice stored")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"ingest"`)
	assert.Contains(t, string(data), `"company_id":"company-1"`)
	assert.Contains(t, string(data), `"invoice_number":"12345"`)
}

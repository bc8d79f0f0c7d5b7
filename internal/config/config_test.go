package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/einvoice/internal/config"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "einvoice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 0, cfg.Writer.AmountPrecision)
	assert.Equal(t, 2, cfg.Writer.Indent)
	assert.Equal(t, "factur-x.xml", cfg.PDF.AttachmentName)
	assert.Equal(t, 4, cfg.Batch.Concurrency)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
  format: json
server:
  address: ":9090"
  read_timeout: 5s
  debug: true
writer:
  amount_precision: 2
pdf:
  attachment_name: zugferd-invoice.xml
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, 2, cfg.Writer.AmountPrecision)
	assert.Equal(t, 2, cfg.Writer.Indent)
	assert.Equal(t, "zugferd-invoice.xml", cfg.PDF.AttachmentName)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "writer:\n  amount_precision: 2\n")

	t.Setenv("EINVOICE_AMOUNT_PRECISION", "3")
	t.Setenv("EINVOICE_LOG_LEVEL", "warn")
	t.Setenv("EINVOICE_SERVER_WRITE_TIMEOUT", "10s")
	t.Setenv("EINVOICE_BATCH_CONCURRENCY", "8")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Writer.AmountPrecision)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			file:    "writer: [",
			wantErr: "failed to parse config file",
		},
		{
			name:    "invalid int",
			env:     map[string]string{"EINVOICE_AMOUNT_PRECISION": "two"},
			wantErr: "invalid EINVOICE_AMOUNT_PRECISION",
		},
		{
			name:    "invalid bool",
			env:     map[string]string{"EINVOICE_SERVER_DEBUG": "maybe"},
			wantErr: "invalid EINVOICE_SERVER_DEBUG",
		},
		{
			name:    "invalid duration",
			env:     map[string]string{"EINVOICE_SERVER_READ_TIMEOUT": "soon"},
			wantErr: "invalid EINVOICE_SERVER_READ_TIMEOUT",
		},
		{
			name:    "negative precision",
			file:    "writer:\n  amount_precision: -1\n",
			wantErr: "amount_precision",
		},
		{
			name:    "zero concurrency",
			env:     map[string]string{"EINVOICE_BATCH_CONCURRENCY": "0"},
			wantErr: "batch.concurrency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}

			_, err := config.Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoggerConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "debug"

	lc := cfg.LoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, cfg.Log.Output, lc.Output)
}

// Package config loads runtime settings for the CLI and the HTTP server.
//
// Values are resolved in order: defaults, optional YAML file, .env file,
// EINVOICE_* environment variables. Command line flags are applied on top by
// the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rezonia/einvoice/internal/logger"
	"github.com/rezonia/einvoice/internal/pdf"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "EINVOICE_"

// Config is the full runtime configuration
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
	Writer WriterConfig `yaml:"writer"`
	PDF    PDFConfig    `yaml:"pdf"`
	Batch  BatchConfig  `yaml:"batch"`
}

// LogConfig mirrors logger.LogConfig with YAML tags
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	TimeFormat string `yaml:"time_format"`
	Output     string `yaml:"output"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	Debug        bool          `yaml:"debug"`
}

// WriterConfig holds XML writer settings
type WriterConfig struct {
	// AmountPrecision is the minimum number of fractional digits for amounts
	AmountPrecision int `yaml:"amount_precision"`
	Indent          int `yaml:"indent"`
}

// PDFConfig holds PDF attachment settings
type PDFConfig struct {
	AttachmentName string `yaml:"attachment_name"`
}

// BatchConfig holds batch conversion settings
type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Default returns the built-in configuration
func Default() *Config {
	lc := logger.DefaultConfig()
	return &Config{
		Log: LogConfig{
			Level:      lc.Level,
			Format:     lc.Format,
			TimeFormat: lc.TimeFormat,
			Output:     lc.Output,
		},
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
		Writer: WriterConfig{
			Indent: 2,
		},
		PDF: PDFConfig{
			AttachmentName: pdf.DefaultAttachmentName,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
	}
}

// Load resolves the configuration. path may be empty; a missing .env file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Log.TimeFormat, "LOG_TIME_FORMAT")
	setString(&c.Log.Output, "LOG_OUTPUT")
	setString(&c.Server.Address, "SERVER_ADDRESS")
	setString(&c.PDF.AttachmentName, "PDF_ATTACHMENT_NAME")

	if err := setDuration(&c.Server.ReadTimeout, "SERVER_READ_TIMEOUT"); err != nil {
		return err
	}
	if err := setDuration(&c.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT"); err != nil {
		return err
	}
	if err := setBool(&c.Server.Debug, "SERVER_DEBUG"); err != nil {
		return err
	}
	if err := setInt(&c.Writer.AmountPrecision, "AMOUNT_PRECISION"); err != nil {
		return err
	}
	if err := setInt(&c.Writer.Indent, "INDENT"); err != nil {
		return err
	}
	return setInt(&c.Batch.Concurrency, "BATCH_CONCURRENCY")
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Writer.AmountPrecision < 0 {
		return fmt.Errorf("writer.amount_precision must not be negative")
	}
	if c.Writer.Indent < 0 {
		return fmt.Errorf("writer.indent must not be negative")
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("batch.concurrency must be at least 1")
	}
	if strings.TrimSpace(c.PDF.AttachmentName) == "" {
		return fmt.Errorf("pdf.attachment_name is required")
	}
	return nil
}

// LoggerConfig returns the logger configuration
func (c *Config) LoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		TimeFormat: c.Log.TimeFormat,
		Output:     c.Log.Output,
	}
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
	}
	*dst = d
	return nil
}

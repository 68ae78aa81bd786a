// Package config loads the application configuration from the environment.
//
// The configuration is constructed once at startup and passed by reference
// into the orchestrator and every backend adapter. Nothing in the core reads
// environment variables after Load returns.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"invoiceparser/internal/logger"
)

type Config struct {
	// Azure OpenAI configuration
	OpenAIEndpoint   string
	OpenAIKey        string
	OpenAIAPIVersion string
	DeploymentName   string // multimodal chat deployment (e.g. gpt-4o)
	SmallDeployment  string // small instruction deployment for di_small_llm

	// Google Cloud configuration
	GoogleCloudProject  string
	GoogleCloudLocation string
	LayoutProcessorID   string

	// AWS configuration (Bedrock, Textract, S3)
	AWSRegion      string
	AWSBucketName  string
	AWSInputPath   string
	AWSOutputPath  string
	AWSProjectID   string
	AWSProfileName string
	ClaudeModelID  string

	// Document preparation
	PdftoppmBin string
	RasterDPI   int

	// Result cache
	CacheDir string

	// Async job polling
	PollInterval    time.Duration
	MaxPollAttempts int

	// Logging configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads the configuration from the environment. Credentials are not
// validated here; each backend service checks for the settings it needs and
// fails with its own configuration error, so that commands which touch no
// external service (e.g. cache maintenance) work without any keys set.
func Load() (*Config, error) {
	config := &Config{
		OpenAIEndpoint:   getEnv("OPENAI_ENDPOINT", ""),
		OpenAIKey:        getEnv("OPENAI_KEY", ""),
		OpenAIAPIVersion: getEnv("OPENAI_API_VERSION", "2024-08-01-preview"),
		DeploymentName:   getEnv("DEPLOYMENT_NAME", "gpt-4o"),
		SmallDeployment:  getEnv("SMALL_DEPLOYMENT_NAME", "phi-4"),

		GoogleCloudProject:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation: getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		LayoutProcessorID:   getEnv("LAYOUT_PROCESSOR_ID", ""),

		AWSRegion:      getEnv("AWS_REGION", ""),
		AWSBucketName:  getEnv("AWS_BUCKET_NAME", ""),
		AWSInputPath:   getEnv("AWS_INPUT_PATH", "BDA/Input"),
		AWSOutputPath:  getEnv("AWS_OUTPUT_PATH", "BDA/Output"),
		AWSProjectID:   getEnv("AWS_PROJECT_ID", ""),
		AWSProfileName: getEnv("AWS_PROFILE_NAME", "us.data-automation-v1"),
		ClaudeModelID:  getEnv("CLAUDE_MODEL_ID", "anthropic.claude-3-5-sonnet-20241022-v2:0"),

		PdftoppmBin: getEnv("PDFTOPPM_BIN", "pdftoppm"),
		RasterDPI:   getEnvInt("RASTER_DPI", 200),

		CacheDir: getEnv("CACHE_DIR", ".invoice_cache"),

		PollInterval:    time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 2)) * time.Second,
		MaxPollAttempts: getEnvInt("MAX_POLL_ATTEMPTS", 150),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stdout"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.RasterDPI <= 0 {
		return fmt.Errorf("RASTER_DPI must be positive, got %d", c.RasterDPI)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}
	if c.MaxPollAttempts <= 0 {
		return fmt.Errorf("MAX_POLL_ATTEMPTS must be positive, got %d", c.MaxPollAttempts)
	}
	if c.CacheDir == "" {
		return fmt.Errorf("CACHE_DIR must not be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-trick-analyzer/internal/factory"
	"go-trick-analyzer/pkg/validation"

	"github.com/arbovm/levenshtein"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DotEnvFile is loaded from the working directory when present
const DotEnvFile = ".env"

type Config struct {
	Host                 string        `yaml:"host"`
	Port                 string        `yaml:"port"`
	AnalysisEndpoint     string        `yaml:"analysis_endpoint"`
	AnalysisPath         string        `yaml:"analysis_path"`
	AnalysisTimeout      time.Duration `yaml:"analysis_timeout"`
	AnalysisRateInterval time.Duration `yaml:"analysis_rate_interval"`
	ImageFetchTimeout    time.Duration `yaml:"image_fetch_timeout"`
	MaxUploadSize        int64         `yaml:"max_upload_size"`
	StorageType          string        `yaml:"storage_type"`
	AzureAccount         string        `yaml:"azure_storage_account"`
	AzureKey             string        `yaml:"azure_storage_key"`
	LogLevel             string        `yaml:"log_level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Host:              "127.0.0.1",
		Port:              "8080",
		AnalysisEndpoint:  "http://localhost:5000",
		AnalysisPath:      "/predict",
		AnalysisTimeout:   60 * time.Second,
		ImageFetchTimeout: 15 * time.Second,
		MaxUploadSize:     10 * 1024 * 1024, // 10MB
		StorageType:       string(factory.HTTPStorage),
		LogLevel:          "info",
	}
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// PredictURL is the full address analysis requests are posted to
func (c *Config) PredictURL() string {
	return validation.JoinPath(c.AnalysisEndpoint, c.AnalysisPath)
}

// Load builds the configuration from defaults, then .env, then the YAML
// file at path (if path is not empty), then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Keys absent from the file keep their current value
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Host = getEnvOrDefault("HOST", c.Host)
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.AnalysisEndpoint = getEnvOrDefault("ANALYSIS_ENDPOINT", c.AnalysisEndpoint)
	c.AnalysisPath = getEnvOrDefault("ANALYSIS_PATH", c.AnalysisPath)
	c.AnalysisTimeout = parseDurationOrDefault("ANALYSIS_TIMEOUT", c.AnalysisTimeout)
	c.AnalysisRateInterval = parseDurationOrDefault("ANALYSIS_RATE_INTERVAL", c.AnalysisRateInterval)
	c.ImageFetchTimeout = parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", c.ImageFetchTimeout)
	c.MaxUploadSize = parseIntOrDefault("MAX_UPLOAD_SIZE", c.MaxUploadSize)
	c.StorageType = getEnvOrDefault("STORAGE_TYPE", c.StorageType)
	c.AzureAccount = getEnvOrDefault("AZURE_STORAGE_ACCOUNT", c.AzureAccount)
	c.AzureKey = getEnvOrDefault("AZURE_STORAGE_KEY", c.AzureKey)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
}

// Validate checks the final configuration
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if err := validation.NewURLValidator().ValidateEndpoint(c.AnalysisEndpoint); err != nil {
		return fmt.Errorf("invalid ANALYSIS_ENDPOINT %q: %w", c.AnalysisEndpoint, err)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", c.MaxUploadSize)
	}
	if c.AnalysisTimeout <= 0 || c.ImageFetchTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got analysis=%s, fetch=%s)",
			c.AnalysisTimeout, c.ImageFetchTimeout)
	}
	if c.AnalysisRateInterval < 0 {
		return fmt.Errorf("ANALYSIS_RATE_INTERVAL must be >= 0 (got %s)", c.AnalysisRateInterval)
	}

	switch factory.StorageType(c.StorageType) {
	case factory.HTTPStorage:
	case factory.AzureStorage:
		if c.AzureAccount == "" || c.AzureKey == "" {
			return fmt.Errorf("STORAGE_TYPE=azure requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	default:
		msg := fmt.Sprintf("invalid STORAGE_TYPE: %q", c.StorageType)
		if s := Suggest(c.StorageType, factory.StorageTypes); s != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", s)
		}
		return errors.New(msg)
	}
	return nil
}

// Suggest returns the option closest to input by edit distance, or "" when
// nothing is close enough to be a plausible typo.
func Suggest(input string, options []string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	best, bestDist := "", -1
	for _, opt := range options {
		d := levenshtein.Distance(input, opt)
		if bestDist < 0 || d < bestDist {
			best, bestDist = opt, d
		}
	}
	if bestDist < 0 || bestDist > 2 || bestDist >= len(input) {
		return ""
	}
	return best
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

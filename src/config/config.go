package config

import (
	"fmt"
	"os"
	"strings"

	"gpu-price-tracker/src/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvAPIKey     = "MARKETPLACE_API_KEY"
	EnvDBDSN      = "TRACKER_DB_DSN"
	EnvSummaryDir = "TRACKER_SUMMARY_DIR"
	EnvBackend    = "TRACKER_STORAGE_BACKEND"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new MConfig instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	return Parse(data)
}

// Parse builds a validated Config from YAML bytes, applying defaults and the
// environment overlay.
func Parse(data []byte) (*Config, error) {
	modelConfig := Defaults()
	// yaml.v3 merges into existing maps; partitions from the file replace the defaults.
	defaultPartitions := modelConfig.Tracking.SocketPartitions
	modelConfig.Tracking.SocketPartitions = nil
	if err := yaml.Unmarshal(data, modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}
	if modelConfig.Tracking.SocketPartitions == nil {
		modelConfig.Tracking.SocketPartitions = defaultPartitions
	}

	config := &Config{MConfig: modelConfig}
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Defaults returns the configuration used when a key is absent from the file.
func Defaults() *models.MConfig {
	return &models.MConfig{
		Name:     "gpu-price-tracker",
		Host:     "127.0.0.1",
		Port:     8000,
		LogLevel: "INFO",
		GrpcPort: 50051,
		Storage: models.MStorageConfig{
			Backend:        "jsonl",
			SummaryDir:     "data/summary",
			ArchiveDir:     "data/full_snapshots",
			ArchiveEnabled: true,
			DBPath:         "data/series.db",
			DBSchema:       "gpu_prices",
		},
		Network: models.MNetworkConfig{
			RequestTimeout: 30,
			MaxRetries:     2,
			UserAgent:      "gpu-price-tracker/1.0",
		},
		Marketplace: models.MMarketplaceConfig{
			BaseURL:          "https://api.primeintellect.ai",
			AvailabilityPath: "/api/v1/availability/",
		},
		Tracking: models.MTrackingConfig{
			GPUTypes: []string{
				"B200_180GB",
				"H200_96GB",
				"H200_141GB",
				"H100_80GB",
				"GH200_96GB",
				"GH200_480GB",
				"GH200_624GB",
				"A100_80GB",
			},
			SocketPartitions: map[string][]string{
				"H100_80GB": {"SXM5", "PCIe"},
				"A100_80GB": {"SXM4", "PCIe"},
			},
		},
		Viewer: models.MViewerConfig{
			Source:        "data/summary",
			DefaultWindow: "7",
		},
	}
}

// LoadEnv reads a .env file if present. Missing files are not an error.
func LoadEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Marketplace.APIKey = v
	}
	if v := os.Getenv(EnvDBDSN); v != "" {
		c.Storage.DBConnectionString = v
	}
	if v := os.Getenv(EnvSummaryDir); v != "" {
		c.Storage.SummaryDir = v
	}
	if v := os.Getenv(EnvBackend); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GrpcPort < 0 || c.GrpcPort > 65535 {
		return fmt.Errorf("invalid grpc port number: %d", c.GrpcPort)
	}

	// Validate Storage configuration
	switch c.Storage.Backend {
	case "jsonl":
		if c.Storage.SummaryDir == "" {
			return fmt.Errorf("summary directory cannot be empty for jsonl storage")
		}
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.ArchiveEnabled && c.Storage.ArchiveDir == "" {
		return fmt.Errorf("archive directory cannot be empty when archiving is enabled")
	}

	// Validate Network configuration
	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}
	if c.Network.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}

	// Validate tracking configuration
	if len(c.Tracking.GPUTypes) == 0 {
		return fmt.Errorf("at least one gpu type must be tracked")
	}
	seen := make(map[string]bool)
	for i, gpu := range c.Tracking.GPUTypes {
		if gpu == "" {
			return fmt.Errorf("gpu type %d cannot be empty", i)
		}
		if seen[gpu] {
			return fmt.Errorf("gpu type %s listed twice", gpu)
		}
		seen[gpu] = true
	}
	for gpu, sockets := range c.Tracking.SocketPartitions {
		if len(sockets) == 0 {
			return fmt.Errorf("socket partition for %s must list at least one socket", gpu)
		}
		for _, s := range sockets {
			if s == "" {
				return fmt.Errorf("socket partition for %s contains an empty socket", gpu)
			}
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path.
// The marketplace API key and the database connection string are left out;
// they come back from the environment on load.
func (c *Config) Save(configPath string) error {
	// 1. Marshal a copy without secrets
	redacted := *c.MConfig
	redacted.Marketplace.APIKey = ""
	redacted.Storage.DBConnectionString = ""
	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

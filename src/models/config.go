package models

// MConfig Structure
type MConfig struct {
	Name        string             `yaml:"name"`
	Host        string             `yaml:"host"`
	Port        int                `yaml:"port"`
	LogLevel    string             `yaml:"log_level"`
	LogFile     string             `yaml:"log_file"`
	GrpcHost    string             `yaml:"grpc_host"`
	GrpcPort    int                `yaml:"grpc_port"`
	Storage     MStorageConfig     `yaml:"storage"`
	Network     MNetworkConfig     `yaml:"network"`
	Marketplace MMarketplaceConfig `yaml:"marketplace"`
	Tracking    MTrackingConfig    `yaml:"tracking"`
	Viewer      MViewerConfig      `yaml:"viewer"`
}

type MStorageConfig struct {
	Backend            string `yaml:"backend"` // jsonl, sqlite, postgres
	SummaryDir         string `yaml:"summary_dir"`
	ArchiveDir         string `yaml:"archive_dir"`
	ArchiveEnabled     bool   `yaml:"archive_enabled"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string,omitempty"`
	DBSchema           string `yaml:"db_schema"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MMarketplaceConfig struct {
	BaseURL          string `yaml:"base_url"`
	AvailabilityPath string `yaml:"availability_path"`
	APIKey           string `yaml:"api_key,omitempty"` // usually supplied through MARKETPLACE_API_KEY
	FixturePath      string `yaml:"fixture_path"`
}

// MTrackingConfig lists the tracked GPU types. SocketPartitions holds the GPU
// types whose physical form factors are tracked as separate series.
type MTrackingConfig struct {
	GPUTypes         []string            `yaml:"gpu_types"`
	SocketPartitions map[string][]string `yaml:"socket_partitions"`
}

type MViewerConfig struct {
	Source        string `yaml:"source"` // directory or http(s) base URL
	DefaultWindow string `yaml:"default_window"`
	Smoothing     bool   `yaml:"smoothing"`
}

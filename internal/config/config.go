package config

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Parser    ParserConfig    `yaml:"parser" envconfig:"PARSER"`
	Storage   StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Import    ImportConfig    `yaml:"import" envconfig:"IMPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:"0.0.0.0"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"20"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"10"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/drillsheet.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration. Relative paths
// are resolved against BaseDir.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR" default:"."`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	ExportsDir string `yaml:"exports_dir" envconfig:"EXPORTS_DIR" default:"data/exports"`
}

// ParserConfig tunes workbook parsing
type ParserConfig struct {
	SeriesPageSize    int   `yaml:"series_page_size" envconfig:"SERIES_PAGE_SIZE" default:"400"`
	ReportDroppedRows bool  `yaml:"report_dropped_rows" envconfig:"REPORT_DROPPED_ROWS" default:"false"`
	MaxUploadBytes    int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
}

// StorageConfig selects where parsed records are kept
type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"DRIVER" default:"memory"`
	DSN    string `yaml:"dsn" envconfig:"DSN" default:"data/drillsheet.db"`
}

// ImportConfig controls batch directory imports
type ImportConfig struct {
	Workers int    `yaml:"workers" envconfig:"WORKERS" default:"4"`
	Pattern string `yaml:"pattern" envconfig:"PATTERN" default:"*.xlsx"`
}

// TelemetryConfig controls tracing and metrics
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" default:"drillsheet"`
	TracesEnabled  bool   `yaml:"traces_enabled" envconfig:"TRACES_ENABLED" default:"false"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from the first config file found in the usual
// locations, with environment variables taking precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration from the given YAML file, if non-empty,
// with environment variables taking precedence.
func LoadFrom(configFile string) (*Config, error) {
	var envCfg Config
	if err := envconfig.Process(EnvPrefix, &envCfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg := envCfg
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, envCfg, *Default())
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file on top of the defaults
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfigs overlays every env value that differs from its default onto
// the file config, so env wins only where it was actually set.
func mergeConfigs(fileConfig, envConfig, defaults Config) Config {
	mergeValue(reflect.ValueOf(&fileConfig).Elem(), reflect.ValueOf(envConfig), reflect.ValueOf(defaults))
	return fileConfig
}

func mergeValue(dst, env, def reflect.Value) {
	if dst.Kind() == reflect.Struct {
		for i := 0; i < dst.NumField(); i++ {
			mergeValue(dst.Field(i), env.Field(i), def.Field(i))
		}
		return
	}
	if !reflect.DeepEqual(env.Interface(), def.Interface()) {
		dst.Set(env)
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid logging output: %q", c.Logging.Output)
	}
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Parser.SeriesPageSize <= 0 {
		return fmt.Errorf("parser series page size must be positive")
	}
	if c.Parser.MaxUploadBytes <= 0 {
		return fmt.Errorf("parser max upload bytes must be positive")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.DSN == "" {
			return fmt.Errorf("sqlite storage requires a dsn")
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	if c.Import.Workers <= 0 {
		return fmt.Errorf("import workers must be positive")
	}
	if c.Import.Pattern == "" {
		c.Import.Pattern = DefaultImportPattern
	}
	return nil
}

// getConfigFilePath returns the path to the config file, or "" when none
// exists. DRILLSHEET_CONFIG names an explicit file.
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/drillsheet.log",
		},
		Paths: PathsConfig{
			BaseDir:    ".",
			DataDir:    "data",
			LogsDir:    "logs",
			ExportsDir: "data/exports",
		},
		Parser: ParserConfig{
			SeriesPageSize: DefaultSeriesPageSize,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
			DSN:    "data/drillsheet.db",
		},
		Import: ImportConfig{
			Workers: DefaultImportWorkers,
			Pattern: DefaultImportPattern,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			MetricsEnabled: true,
		},
	}
}

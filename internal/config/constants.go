package config

// Application constants
const (
	AppName = "drillsheet"

	// EnvPrefix namespaces every environment variable, e.g. DRILLSHEET_SERVER_PORT.
	EnvPrefix = "DRILLSHEET"

	// Storage drivers
	StorageMemory = "memory"
	StorageSQLite = "sqlite"

	// Parser defaults
	DefaultSeriesPageSize = 400
	DefaultMaxUploadBytes = 32 << 20

	// Import defaults
	DefaultImportWorkers = 4
	DefaultImportPattern = "*.xlsx"
)

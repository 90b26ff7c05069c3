// Package config loads drillsheet configuration.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DRILLSHEET_<SECTION>_<FIELD>:
//
//	DRILLSHEET_SERVER_PORT=8080
//	DRILLSHEET_STORAGE_DRIVER=sqlite
//	DRILLSHEET_STORAGE_DSN=data/drillsheet.db
//	DRILLSHEET_PARSER_REPORT_DROPPED_ROWS=true
//	DRILLSHEET_IMPORT_WORKERS=8
//
// DRILLSHEET_CONFIG names the YAML file explicitly; otherwise config.yaml
// and configs/config.yaml are tried.
//
// # Configuration File
//
//	server:
//	  port: 8080
//	parser:
//	  series_page_size: 400
//	storage:
//	  driver: sqlite
//	  dsn: data/drillsheet.db
//	import:
//	  workers: 4
//	  pattern: "*.xlsx"
package config

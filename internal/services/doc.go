// Package services implements the business logic between the transports
// (HTTP handlers, the CLI) and the parser and store.
//
// # Available Services
//
//	- ParseService: reads one workbook, parses and validates it, records
//	  metrics and persists the result together with its parse job
//	- ImportService: parses every workbook of a directory with a bounded
//	  number of workers
//	- HealthService: reports version, uptime and store reachability
//
// # Error Handling
//
// Services return *errors.AppError values that handlers map to problem
// responses:
//
//	- PARSING when the upload is not a readable workbook
//	- STORAGE when the store rejects a write
//	- NOT_FOUND from store lookups
//	- IMPORT when a batch cannot be started
//
// A workbook that is readable but fails validation is not an error: the
// result and its job are returned with validation.isValid set to false.
//
// # Concurrency
//
// ParseService holds no per-call state and is safe for concurrent use.
// ImportService fans out over an errgroup limited to the configured worker
// count and returns outcomes in input order.
package services

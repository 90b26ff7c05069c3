// Package app wires drillsheet together: configuration, logging,
// telemetry, the record store, the parse/import/health services and the
// HTTP router.
//
// # Initialization Flow
//
//	1. Load configuration from config.yaml and DRILLSHEET_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Resolve paths and open the store (memory or sqlite)
//	4. Create the parser and services
//	5. Build the router and HTTP server
//
// # Usage
//
//	a, err := app.NewApplication("")
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// The CLI reuses the same container for one-shot commands and calls
// Close instead of Run.
//
// # Graceful Shutdown
//
// Run stops on SIGINT, SIGTERM or context cancellation. In-flight
// requests get Server.ShutdownTimeout to finish, then the store is closed
// and telemetry flushed. Errors are returned; the package never calls
// os.Exit.
package app

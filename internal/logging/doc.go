// Package logging provides structured logging for tripgrid.
//
// The package wraps a zap logger with convenience functions. Logging is
// silent until Initialize is called with a level (or TRIPGRID_LOG_LEVEL is
// set), so CLI output stays clean by default.
//
// # Log Levels
//
//   - Debug: row mode transitions, store calls that found nothing
//   - Info: replication rounds, server connections
//   - Warn: skipped writes, rejected mutations
//   - Error: failed store writes and resets (the write is not retried)
//
// # Configuration
//
// Initialize logging once at startup, before any store or grid is built:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// Tests that want to inspect log output can install their own logger with
// SetLogger.
package logging

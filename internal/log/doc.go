// Package log builds the slog loggers used across lncgraph.
//
// Every logger is wrapped in a SecureHandler that masks credentials before
// they reach the output: API keys and bearer tokens configured as request
// headers, cookies, passwords and anything that looks like a long opaque
// token. Lightning node public keys and short channel ids are public graph
// data and are always logged as-is, so fetch progress stays readable.
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Debug("query sent", "pubkey", pubkey, "headers", cfg.Headers)
//	// headers with an Authorization entry print as Authorization=***REDACTED***
package log

package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and can be matched with
// errors.Is().
var (
	// ErrNoTarget is returned when no community id was given.
	ErrNoTarget = errors.New("no target specified: provide a community id or a configured community alias")

	// ErrInvalidEndpoint is returned when the GraphQL endpoint is not an
	// absolute http(s) URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the timeout is negative.
	// Zero means no client timeout.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidConcurrency is returned when the member fetch concurrency
	// is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidBatchSize is returned when the number of communities
	// processed at once is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidHighlightCapacity is returned when the highlight threshold is negative.
	ErrInvalidHighlightCapacity = errors.New("invalid highlight capacity: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address is
	// not in host:port form.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)

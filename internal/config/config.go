package config

import (
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultEndpoint is the GraphQL endpoint of the Amboss API.
	DefaultEndpoint = "https://api.amboss.space/graphql"

	// DefaultHost is sent as the Host header of every API request.
	DefaultHost = "api.amboss.space"

	// DefaultUserAgent is sent as the User-Agent header of every API request.
	DefaultUserAgent = "BTC"

	// DefaultTimeout of zero leaves the HTTP client without a timeout.
	DefaultTimeout = time.Duration(0)

	// DefaultConcurrency fetches members strictly one after another.
	DefaultConcurrency = 1

	// DefaultBatchSize processes communities one at a time.
	DefaultBatchSize = 1

	// DefaultHighlightCapacity marks channels of at least 5M sats as "top".
	DefaultHighlightCapacity int64 = 5_000_000

	// DefaultMaxBodySize limits API response bodies to 10MB.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultChannelDumpFile is the relative path of the channel dump.
	DefaultChannelDumpFile = "data.json"

	// DefaultListenAddress is where the graph page is served.
	DefaultListenAddress = "127.0.0.1:8050"

	// AppName is the application name used for XDG directory paths.
	AppName = "lncgraph"
)

// Config holds all configuration options.
// It is populated from the configuration file and CLI flags and passed
// explicitly to the components that need it.
type Config struct {
	// Endpoint is the GraphQL endpoint URL.
	Endpoint string

	// Host is the Host header sent with API requests.
	// Empty means the host of Endpoint.
	Host string

	// UserAgent is the User-Agent header sent with API requests.
	UserAgent string

	// Headers are extra static headers sent with every API request,
	// e.g. an API key.
	Headers map[string]string

	// Timeout is the HTTP client timeout per request. Zero means none.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy ("host:port") for API traffic.
	ProxyAddress string

	// MaxBodySize limits the size of API responses. Zero means the default.
	MaxBodySize int64

	// Concurrency is the number of member queries in flight at once.
	// 1 keeps the fetch strictly sequential.
	Concurrency int

	// BatchSize is the number of communities processed at once.
	BatchSize int

	// LegacyDedup reproduces the original precedence of the channel
	// filter, which can admit duplicate short channel ids.
	LegacyDedup bool

	// HighlightCapacity is the capacity (sats) at or above which a channel
	// edge is classed "top".
	HighlightCapacity int64

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches log output to JSON.
	LogJSON bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// File is the loaded configuration file. Never nil after loading.
	File *File

	// JSONReport outputs the report as JSON.
	JSONReport bool

	// MarkdownReport outputs the report as Markdown.
	MarkdownReport bool

	// ReportFile writes the report to this path instead of stdout.
	ReportFile string

	// SaveChannels writes the in-community channel list to ChannelDumpFile.
	SaveChannels bool

	// ChannelDumpFile is the channel dump path.
	ChannelDumpFile string

	// ExportDB is an optional SQLite file the fetched graph is exported to.
	ExportDB string

	// ListenAddress is the address of the graph web server.
	ListenAddress string

	// Targets are the community ids to fetch.
	Targets []string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Endpoint:          DefaultEndpoint,
		Host:              DefaultHost,
		UserAgent:         DefaultUserAgent,
		Headers:           make(map[string]string),
		Timeout:           DefaultTimeout,
		MaxBodySize:       DefaultMaxBodySize,
		Concurrency:       DefaultConcurrency,
		BatchSize:         DefaultBatchSize,
		HighlightCapacity: DefaultHighlightCapacity,
		ChannelDumpFile:   DefaultChannelDumpFile,
		ListenAddress:     DefaultListenAddress,
		File:              NewFile(),
	}
}

// XDGConfigDir returns the XDG config directory for the tool.
// On Linux: ~/.config/lncgraph
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if !isValidEndpoint(c.Endpoint) {
		return ErrInvalidEndpoint
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.HighlightCapacity < 0 {
		return ErrInvalidHighlightCapacity
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.ProxyAddress != "" && !IsValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// isValidEndpoint checks for an absolute http(s) URL with a host.
func isValidEndpoint(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// IsValidProxyAddress checks if the address is in "host:port" form with a
// port between 1 and 65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

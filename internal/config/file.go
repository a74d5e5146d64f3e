package config

import (
	"strings"
	"time"
)

// File is the structure of the YAML configuration file.
//
// Example:
//
//	api:
//	  endpoint: https://api.amboss.space/graphql
//	  userAgent: BTC
//	  headers:
//	    Authorization: "Bearer xxx"
//	  timeout: 30s
//	highlightCapacity: 5000000
//	concurrency: 4
//	communities:
//	  plebnet: 1b2c3d4e-...
type File struct {
	// API holds the GraphQL API connection settings.
	API APISettings `yaml:"api,omitempty"`

	// HighlightCapacity overrides the "top" edge threshold in sats.
	HighlightCapacity int64 `yaml:"highlightCapacity,omitempty"`

	// Concurrency overrides the member fetch concurrency.
	Concurrency int `yaml:"concurrency,omitempty"`

	// LegacyDedup enables the legacy channel filter precedence.
	LegacyDedup bool `yaml:"legacyDedup,omitempty"`

	// Communities maps short aliases to community ids.
	Communities map[string]string `yaml:"communities,omitempty"`
}

// APISettings configures how the GraphQL API is reached.
type APISettings struct {
	Endpoint  string            `yaml:"endpoint,omitempty"`
	Host      string            `yaml:"host,omitempty"`
	UserAgent string            `yaml:"userAgent,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`

	// Proxy is an optional SOCKS5 proxy address (host:port).
	Proxy string `yaml:"proxy,omitempty"`

	// Timeout is a Go duration string such as "30s".
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// NewFile returns an empty configuration file.
func NewFile() *File {
	return &File{
		Communities: make(map[string]string),
	}
}

// Apply copies every value set in the file onto cfg.
// Zero values in the file leave cfg untouched, so CLI flags applied
// afterwards take precedence over the file.
func (f *File) Apply(cfg *Config) {
	if f == nil || cfg == nil {
		return
	}
	if f.API.Endpoint != "" {
		cfg.Endpoint = f.API.Endpoint
	}
	if f.API.Host != "" {
		cfg.Host = f.API.Host
	}
	if f.API.UserAgent != "" {
		cfg.UserAgent = f.API.UserAgent
	}
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string, len(f.API.Headers))
	}
	for k, v := range f.API.Headers {
		cfg.Headers[k] = v
	}
	if f.API.Proxy != "" {
		cfg.ProxyAddress = f.API.Proxy
	}
	if f.API.Timeout != 0 {
		cfg.Timeout = f.API.Timeout
	}
	if f.HighlightCapacity != 0 {
		cfg.HighlightCapacity = f.HighlightCapacity
	}
	if f.Concurrency != 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.LegacyDedup {
		cfg.LegacyDedup = true
	}
	cfg.File = f
}

// ResolveCommunity maps a configured alias to its community id.
// Unknown arguments are returned unchanged (trimmed), so raw ids pass through.
func (f *File) ResolveCommunity(arg string) string {
	arg = strings.TrimSpace(arg)
	if f == nil {
		return arg
	}
	if id, ok := f.Communities[arg]; ok && id != "" {
		return id
	}
	return arg
}

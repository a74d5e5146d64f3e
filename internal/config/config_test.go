package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies the defaults returned by NewConfig.
// Changing a default should require changing this test.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default endpoint is the Amboss GraphQL API", func(t *testing.T) {
		t.Parallel()
		if cfg.Endpoint != "https://api.amboss.space/graphql" {
			t.Errorf("unexpected endpoint %q", cfg.Endpoint)
		}
	})

	t.Run("default host and user agent", func(t *testing.T) {
		t.Parallel()
		if cfg.Host != "api.amboss.space" {
			t.Errorf("unexpected host %q", cfg.Host)
		}
		if cfg.UserAgent != "BTC" {
			t.Errorf("unexpected user agent %q", cfg.UserAgent)
		}
	})

	t.Run("default timeout is none", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 0 {
			t.Errorf("expected zero timeout, got %v", cfg.Timeout)
		}
	})

	t.Run("default fetch is sequential with strict dedup", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 1 {
			t.Errorf("expected concurrency 1, got %d", cfg.Concurrency)
		}
		if cfg.LegacyDedup {
			t.Error("expected LegacyDedup to be false")
		}
	})

	t.Run("default highlight capacity is 5M sats", func(t *testing.T) {
		t.Parallel()
		if cfg.HighlightCapacity != 5_000_000 {
			t.Errorf("expected 5000000, got %d", cfg.HighlightCapacity)
		}
	})

	t.Run("default channel dump and listen address", func(t *testing.T) {
		t.Parallel()
		if cfg.ChannelDumpFile != "data.json" {
			t.Errorf("unexpected dump file %q", cfg.ChannelDumpFile)
		}
		if cfg.ListenAddress != "127.0.0.1:8050" {
			t.Errorf("unexpected listen address %q", cfg.ListenAddress)
		}
	})

	t.Run("file and headers are initialized", func(t *testing.T) {
		t.Parallel()
		if cfg.File == nil || cfg.Headers == nil {
			t.Error("expected File and Headers to be non-nil")
		}
	})
}

// TestConfigValidate tests the Validate method with one rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"community-1"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid config", modify: func(*Config) {}},
		{name: "multiple targets", modify: func(c *Config) { c.Targets = []string{"a", "b"} }},
		{name: "no targets", modify: func(c *Config) { c.Targets = nil }, wantErr: ErrNoTarget},
		{name: "empty endpoint", modify: func(c *Config) { c.Endpoint = "" }, wantErr: ErrInvalidEndpoint},
		{name: "relative endpoint", modify: func(c *Config) { c.Endpoint = "/graphql" }, wantErr: ErrInvalidEndpoint},
		{name: "ftp endpoint", modify: func(c *Config) { c.Endpoint = "ftp://x/graphql" }, wantErr: ErrInvalidEndpoint},
		{name: "http endpoint", modify: func(c *Config) { c.Endpoint = "http://127.0.0.1:8080/graphql" }},
		{name: "negative timeout", modify: func(c *Config) { c.Timeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "positive timeout", modify: func(c *Config) { c.Timeout = 30 * time.Second }},
		{name: "zero concurrency", modify: func(c *Config) { c.Concurrency = 0 }, wantErr: ErrInvalidConcurrency},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, wantErr: ErrInvalidBatchSize},
		{name: "negative highlight", modify: func(c *Config) { c.HighlightCapacity = -1 }, wantErr: ErrInvalidHighlightCapacity},
		{name: "zero highlight", modify: func(c *Config) { c.HighlightCapacity = 0 }},
		{
			name:    "json and markdown",
			modify:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
		{name: "proxy without port", modify: func(c *Config) { c.ProxyAddress = "127.0.0.1" }, wantErr: ErrInvalidProxyAddress},
		{name: "proxy with port", modify: func(c *Config) { c.ProxyAddress = "127.0.0.1:9050" }},
		{name: "negative max body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestIsValidProxyAddress tests proxy address parsing.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:1080", true},
		{"[::1]:9050", true},
		{"127.0.0.1", false},
		{":9050", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:70000", false},
		{"127.0.0.1:abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()
			if got := IsValidProxyAddress(tt.address); got != tt.want {
				t.Errorf("IsValidProxyAddress(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

// TestFileApply tests that file values override defaults and zero values do not.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("set values are applied", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		f := &File{
			API: APISettings{
				Endpoint:  "http://localhost:4000/graphql",
				Host:      "example.com",
				UserAgent: "test-agent",
				Headers:   map[string]string{"X-Api-Key": "k"},
				Proxy:     "127.0.0.1:9050",
				Timeout:   15 * time.Second,
			},
			HighlightCapacity: 1000,
			Concurrency:       4,
			LegacyDedup:       true,
		}
		f.Apply(cfg)

		if cfg.Endpoint != "http://localhost:4000/graphql" || cfg.Host != "example.com" || cfg.UserAgent != "test-agent" {
			t.Errorf("api settings not applied: %+v", cfg)
		}
		if cfg.Headers["X-Api-Key"] != "k" {
			t.Error("expected header to be applied")
		}
		if cfg.ProxyAddress != "127.0.0.1:9050" || cfg.Timeout != 15*time.Second {
			t.Errorf("transport settings not applied: proxy=%q timeout=%v", cfg.ProxyAddress, cfg.Timeout)
		}
		if cfg.HighlightCapacity != 1000 || cfg.Concurrency != 4 || !cfg.LegacyDedup {
			t.Errorf("fetch settings not applied: %+v", cfg)
		}
		if cfg.File != f {
			t.Error("expected cfg.File to reference the applied file")
		}
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		NewFile().Apply(cfg)

		if cfg.Endpoint != DefaultEndpoint || cfg.Concurrency != DefaultConcurrency {
			t.Errorf("defaults changed: %+v", cfg)
		}
		if cfg.HighlightCapacity != DefaultHighlightCapacity {
			t.Errorf("expected default highlight, got %d", cfg.HighlightCapacity)
		}
	})

	t.Run("nil file is a no-op", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		var f *File
		f.Apply(cfg)
		if cfg.Endpoint != DefaultEndpoint {
			t.Error("expected defaults to be kept")
		}
	})
}

// TestFileResolveCommunity tests alias resolution.
func TestFileResolveCommunity(t *testing.T) {
	t.Parallel()

	f := &File{Communities: map[string]string{"plebs": "abc-123", "empty": ""}}

	tests := []struct {
		name string
		arg  string
		want string
	}{
		{name: "alias resolves", arg: "plebs", want: "abc-123"},
		{name: "raw id passes through", arg: "def-456", want: "def-456"},
		{name: "whitespace is trimmed", arg: "  plebs ", want: "abc-123"},
		{name: "empty alias target passes through", arg: "empty", want: "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := f.ResolveCommunity(tt.arg); got != tt.want {
				t.Errorf("ResolveCommunity(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}

	t.Run("nil file passes through", func(t *testing.T) {
		t.Parallel()
		var nf *File
		if got := nf.ResolveCommunity("x"); got != "x" {
			t.Errorf("expected x, got %q", got)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		f, err := LoadConfigFile("/nonexistent/path/.lncgraph")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if f != nil {
			t.Error("expected nil file when not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".lncgraph")
		content := `api:
  endpoint: http://localhost:4000/graphql
  userAgent: lncgraph-test
  headers:
    Authorization: "Bearer token"
  timeout: 30s
highlightCapacity: 2000000
concurrency: 3
legacyDedup: true
communities:
  plebs: abc-123
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.API.Endpoint != "http://localhost:4000/graphql" {
			t.Errorf("unexpected endpoint %q", f.API.Endpoint)
		}
		if f.API.Headers["Authorization"] != "Bearer token" {
			t.Error("expected Authorization header")
		}
		if f.API.Timeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", f.API.Timeout)
		}
		if f.HighlightCapacity != 2_000_000 || f.Concurrency != 3 || !f.LegacyDedup {
			t.Errorf("unexpected file values: %+v", f)
		}
		if f.Communities["plebs"] != "abc-123" {
			t.Error("expected plebs alias")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".lncgraph")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Communities map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".lncgraph")
		if err := os.WriteFile(configPath, []byte("concurrency: 2\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		f, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Communities == nil {
			t.Error("expected Communities map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestLoad tests resolving and applying the configuration file.
func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit missing path is an error", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ConfigFilePath = "/nonexistent/path/.lncgraph"
		if _, err := Load(cfg); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("explicit path is applied", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "lncgraph.yaml")
		if err := os.WriteFile(configPath, []byte("concurrency: 5\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg := NewConfig()
		cfg.ConfigFilePath = configPath
		path, err := Load(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != configPath {
			t.Errorf("expected %q, got %q", configPath, path)
		}
		if cfg.Concurrency != 5 {
			t.Errorf("expected concurrency 5, got %d", cfg.Concurrency)
		}
	})
}

// TestXDGConfigDir tests the XDG config directory.
func TestXDGConfigDir(t *testing.T) {
	t.Parallel()

	if !strings.HasSuffix(XDGConfigDir(), AppName) {
		t.Errorf("expected config dir to end with %q, got %q", AppName, XDGConfigDir())
	}
}

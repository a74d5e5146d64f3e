package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mbio16/ln-community-graph/internal/config"
	"github.com/mbio16/ln-community-graph/internal/log"
	"github.com/mbio16/ln-community-graph/internal/model"
)

// TestNewServeCmd tests the serve command creation.
func TestNewServeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewServeCmd()

	t.Run("has listen flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("listen")
		if flag == nil {
			t.Fatal("expected listen flag")
		}
		if flag.Shorthand != "l" {
			t.Errorf("expected shorthand 'l', got %q", flag.Shorthand)
		}
		if flag.DefValue != config.DefaultListenAddress {
			t.Errorf("expected default %q, got %q", config.DefaultListenAddress, flag.DefValue)
		}
	})

	t.Run("has from-db and api flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"from-db", "endpoint", "highlight-capacity", "proxy"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("accepts at most one community", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
			t.Error("expected error for two communities")
		}
	})
}

// TestLoadReport tests rebuilding a report from an export.
func TestLoadReport(t *testing.T) {
	t.Parallel()

	ab := model.Channel{ShortChannelID: "800000x1x0", Capacity: 100, Node1Pub: "A", Node2Pub: "B"}
	single := writeExport(t, "single.db", exportReport("c1", "Plebs", []string{"A", "B", "C"}, ab))
	double := writeExport(t, "double.db",
		exportReport("c1", "Plebs", []string{"A", "B"}, ab),
		exportReport("c2", "Others", []string{"X"}),
	)
	empty := writeExport(t, "empty.db")

	t.Run("only community", func(t *testing.T) {
		t.Parallel()
		r, err := loadReport(t.Context(), single, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.CommunityID != "c1" || r.Community == nil || r.Community.Name != "Plebs" {
			t.Errorf("unexpected report: %+v", r)
		}
		if r.Stats == nil {
			t.Fatal("expected stats to be recomputed")
		}
		if r.Stats.NodeCount != 3 || r.Stats.EdgeCount != 1 || r.Stats.TotalCapacity != 100 {
			t.Errorf("unexpected stats: %+v", r.Stats)
		}
		if len(r.Stats.IsolatedMembers) != 1 {
			t.Errorf("expected one isolated member, got %v", r.Stats.IsolatedMembers)
		}
	})

	t.Run("named community", func(t *testing.T) {
		t.Parallel()
		r, err := loadReport(t.Context(), double, []string{"c2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Community.Name != "Others" {
			t.Errorf("expected Others, got %q", r.Community.Name)
		}
	})

	errTests := []struct {
		name    string
		path    string
		targets []string
		wantErr string
	}{
		{"ambiguous", double, nil, "specify one of"},
		{"empty export", empty, nil, "holds no communities"},
		{"unknown community", single, []string{"c9"}, "not found"},
		{"missing export", single + ".missing", nil, "not found"},
	}
	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := loadReport(t.Context(), tt.path, tt.targets)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestServeReport tests that the summary is printed and the server stops
// with its context.
func TestServeReport(t *testing.T) {
	t.Parallel()

	r := exportReport("c1", "Plebs", []string{"A", "B"},
		model.Channel{ShortChannelID: "800000x1x0", Capacity: 100, Node1Pub: "A", Node2Pub: "B"})

	cfg := config.NewConfig()
	cfg.ListenAddress = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var out bytes.Buffer
	if err := serveReport(ctx, cfg, r, &out, log.Discard()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"name: Plebs", "num_members: 2", "nodes: [A, B]", "Serving graph on http://127.0.0.1:0"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out.String())
		}
	}

	t.Run("report without graph", func(t *testing.T) {
		t.Parallel()
		if err := serveReport(ctx, cfg, model.NewCommunityReport("c1"), &bytes.Buffer{}, log.Discard()); err == nil {
			t.Error("expected error for report without graph")
		}
	})
}

// TestRunServeCmdErrors tests serve failures that happen before listening.
func TestRunServeCmdErrors(t *testing.T) {
	srv := newFakeAPI(t)
	cfgPath := writeTestConfig(t, srv.URL)

	t.Run("no community", func(t *testing.T) {
		if _, err := runRoot(t, "serve", "-c", cfgPath); err == nil {
			t.Error("expected error without a community")
		}
	})

	t.Run("unknown community", func(t *testing.T) {
		if _, err := runRoot(t, "serve", "-c", cfgPath, "no-such-community"); err == nil {
			t.Error("expected error for unknown community")
		}
	})
}

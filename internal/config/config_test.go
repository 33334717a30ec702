package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing server id",
			mutate:  func(cfg *Config) { cfg.Server.ID = "" },
			wantErr: "server.id must be set",
		},
		{
			name:    "non positive course dimensions",
			mutate:  func(cfg *Config) { cfg.Course.Height = 0 },
			wantErr: "course dimensions must be positive",
		},
		{
			name:    "zero attempts",
			mutate:  func(cfg *Config) { cfg.Course.MaxAttempts = 0 },
			wantErr: "course.max_attempts must be positive",
		},
		{
			name:    "unknown noise backend",
			mutate:  func(cfg *Config) { cfg.Terrain.Backend = "worley" },
			wantErr: "terrain.backend",
		},
		{
			name:    "zero octaves",
			mutate:  func(cfg *Config) { cfg.Terrain.Octaves = 0 },
			wantErr: "terrain.octaves must be positive",
		},
		{
			name:    "zero terrain scale",
			mutate:  func(cfg *Config) { cfg.Terrain.TerrainScale = 0 },
			wantErr: "terrain scales must be positive",
		},
		{
			name:    "zero putter distance",
			mutate:  func(cfg *Config) { cfg.Dice.PutterDistance = 0 },
			wantErr: "dice.putter_distance must be positive",
		},
		{
			name: "disk storage without root",
			mutate: func(cfg *Config) {
				cfg.Storage.Backend = "disk"
				cfg.Storage.DataRoot = ""
			},
			wantErr: "storage.data_root must be set",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadOverlaysYAMLOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "golf.yml")
	contents := `
server:
  id: yaml-server
course:
  width: 20
sessions:
  idle_timeout: 45s
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ID != "yaml-server" {
		t.Fatalf("unexpected server id %q", cfg.Server.ID)
	}
	if cfg.Course.Width != 20 || cfg.Course.Height != 26 {
		t.Fatalf("unexpected course dimensions %dx%d", cfg.Course.Width, cfg.Course.Height)
	}
	if got := cfg.Sessions.IdleTimeout.Duration(); got != 45*time.Second {
		t.Fatalf("unexpected idle timeout %v", got)
	}
	if cfg.Terrain.TerrainScale != 15 {
		t.Fatalf("terrain scale default lost: %v", cfg.Terrain.TerrainScale)
	}
}

func TestLoadAcceptsJSON(t *testing.T) {
	cfg := Default()
	cfg.Server.ID = "json-server"
	cfg.Sessions.ReapInterval = Duration(2 * time.Second)
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "golf.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Server.ID != "json-server" {
		t.Fatalf("unexpected id %q", loaded.Server.ID)
	}
	if loaded.Sessions.ReapInterval.Duration() != 2*time.Second {
		t.Fatalf("unexpected reap interval %v", loaded.Sessions.ReapInterval.Duration())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestWriteDefaultProducesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "golf.yml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.ID != Default().Server.ID {
		t.Fatalf("unexpected id %q", cfg.Server.ID)
	}
	if cfg.Sessions.IdleTimeout != Default().Sessions.IdleTimeout {
		t.Fatalf("idle timeout did not survive yaml round trip")
	}
}

func TestDurationUnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{`"150ms"`, 150 * time.Millisecond},
		{`""`, 0},
		{`null`, 0},
		{`1000`, time.Microsecond},
	}
	for _, tc := range tests {
		var d Duration
		if err := json.Unmarshal([]byte(tc.in), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if d.Duration() != tc.want {
			t.Fatalf("unmarshal %s = %v, want %v", tc.in, d.Duration(), tc.want)
		}
	}
	var d Duration
	if err := json.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Fatal("expected parse error")
	}
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so configuration files can use human readable
// strings such as "30s" in both YAML and JSON. Numeric values are nanoseconds.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.parse(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("duration: decode int: %w", err)
		}
		*d = Duration(time.Duration(n))
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration: decode string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures the tunable parameters of a golf server. JSON and YAML keys
// are identical so either encoding can be loaded by Load.
type Config struct {
	Server   ServerConfig  `yaml:"server" json:"server"`
	Network  NetworkConfig `yaml:"network" json:"network"`
	Course   CourseConfig  `yaml:"course" json:"course"`
	Terrain  TerrainConfig `yaml:"terrain" json:"terrain"`
	Dice     DiceConfig    `yaml:"dice" json:"dice"`
	Rules    RulesConfig   `yaml:"rules" json:"rules"`
	Sessions SessionConfig `yaml:"sessions" json:"sessions"`
	Storage  StorageConfig `yaml:"storage" json:"storage"`
}

type ServerConfig struct {
	ID              string   `yaml:"id" json:"id"`
	ListenAddress   string   `yaml:"listen_address" json:"listen_address"`
	HTTPPort        int      `yaml:"http_port" json:"http_port"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

type NetworkConfig struct {
	ListenUDP            string   `yaml:"listen_udp" json:"listen_udp"` // empty disables the UDP transport
	SpectatorEndpoints   []string `yaml:"spectator_endpoints" json:"spectator_endpoints"`
	MaxDatagramSizeBytes int      `yaml:"max_datagram_size_bytes" json:"max_datagram_size_bytes"`
}

type CourseConfig struct {
	Width       int   `yaml:"width" json:"width"`
	Height      int   `yaml:"height" json:"height"`
	TileSize    int   `yaml:"tile_size" json:"tile_size"` // pixels, passed through to clients
	Seed        int64 `yaml:"seed" json:"seed"`           // 0 derives seeds from the clock
	MaxAttempts int   `yaml:"max_attempts" json:"max_attempts"`
}

type TerrainConfig struct {
	Backend      string  `yaml:"backend" json:"backend"` // simplex | perlin
	Octaves      int     `yaml:"octaves" json:"octaves"`
	Persistence  float64 `yaml:"persistence" json:"persistence"`
	Lacunarity   float64 `yaml:"lacunarity" json:"lacunarity"`
	TerrainScale float64 `yaml:"terrain_scale" json:"terrain_scale"`
	HeightScale  float64 `yaml:"height_scale" json:"height_scale"`
}

type DiceConfig struct {
	Sides           int `yaml:"sides" json:"sides"`
	FairwayModifier int `yaml:"fairway_modifier" json:"fairway_modifier"`
	SandModifier    int `yaml:"sand_modifier" json:"sand_modifier"`
	PutterDistance  int `yaml:"putter_distance" json:"putter_distance"`
}

type RulesConfig struct {
	Par             int  `yaml:"par" json:"par"`
	AutoRerollStuck bool `yaml:"auto_reroll_stuck" json:"auto_reroll_stuck"`
}

type SessionConfig struct {
	MaxSessions  int      `yaml:"max_sessions" json:"max_sessions"`
	IdleTimeout  Duration `yaml:"idle_timeout" json:"idle_timeout"`
	ReapInterval Duration `yaml:"reap_interval" json:"reap_interval"`
}

type StorageConfig struct {
	Backend  string `yaml:"backend" json:"backend"` // memory | disk
	DataRoot string `yaml:"data_root" json:"data_root"`
}

// Default returns a configuration that starts a local server with the
// reference 16x26 course.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ID:              "golf-0",
			ListenAddress:   "0.0.0.0",
			HTTPPort:        28180,
			ShutdownTimeout: Duration(5 * time.Second),
		},
		Network: NetworkConfig{
			ListenUDP:            "",
			SpectatorEndpoints:   []string{},
			MaxDatagramSizeBytes: 1 << 16,
		},
		Course: CourseConfig{
			Width:       16,
			Height:      26,
			TileSize:    32,
			MaxAttempts: 8,
		},
		Terrain: TerrainConfig{
			Backend:      "simplex",
			Octaves:      4,
			Persistence:  0.5,
			Lacunarity:   2.0,
			TerrainScale: 15,
			HeightScale:  250,
		},
		Dice: DiceConfig{
			Sides:           6,
			FairwayModifier: 1,
			SandModifier:    -1,
			PutterDistance:  1,
		},
		Rules: RulesConfig{
			Par: 6,
		},
		Sessions: SessionConfig{
			MaxSessions:  256,
			IdleTimeout:  Duration(30 * time.Minute),
			ReapInterval: Duration(time.Minute),
		},
		Storage: StorageConfig{
			Backend:  "memory",
			DataRoot: "./data",
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.ID == "" {
		return errors.New("server.id must be set")
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d out of range", c.Server.HTTPPort)
	}
	if c.Course.Width <= 0 || c.Course.Height <= 0 {
		return errors.New("course dimensions must be positive")
	}
	if c.Course.MaxAttempts <= 0 {
		return errors.New("course.max_attempts must be positive")
	}
	switch strings.ToLower(c.Terrain.Backend) {
	case "simplex", "perlin":
	default:
		return fmt.Errorf("terrain.backend %q must be simplex or perlin", c.Terrain.Backend)
	}
	if c.Terrain.Octaves <= 0 {
		return errors.New("terrain.octaves must be positive")
	}
	if c.Terrain.TerrainScale <= 0 || c.Terrain.HeightScale <= 0 {
		return errors.New("terrain scales must be positive")
	}
	if c.Dice.Sides <= 0 {
		return errors.New("dice.sides must be positive")
	}
	if c.Dice.PutterDistance <= 0 {
		return errors.New("dice.putter_distance must be positive")
	}
	if c.Sessions.MaxSessions < 0 {
		return errors.New("sessions.max_sessions cannot be negative")
	}
	switch strings.ToLower(c.Storage.Backend) {
	case "memory":
	case "disk":
		if c.Storage.DataRoot == "" {
			return errors.New("storage.data_root must be set for the disk backend")
		}
	default:
		return fmt.Errorf("storage.backend %q must be memory or disk", c.Storage.Backend)
	}
	return nil
}

// Load reads a YAML (or JSON) configuration file layered over Default. A
// missing file returns an error wrapping os.ErrNotExist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to path as YAML.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

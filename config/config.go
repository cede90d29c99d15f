// Package config provides configuration loading and access for the gold helper.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Tracker   TrackerConfig   `yaml:"tracker"`
	Display   DisplayConfig   `yaml:"display"`
	Screen    ScreenConfig    `yaml:"screen"`
	Sampler   SamplerConfig   `yaml:"sampler"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// TrackerConfig holds run tracking and history parameters.
type TrackerConfig struct {
	MaxHistory    int    `yaml:"max_history"`    // Bound on persisted run records (N)
	RecencyWindow int    `yaml:"recency_window"` // Most-recent runs per name used for ranking
	TopK          int    `yaml:"top_k"`          // Ranked names shown
	HistoryPath   string `yaml:"history_path"`   // JSON file holding finalized runs
	Persist       bool   `yaml:"persist"`        // Mirror history to HistoryPath
	AsyncSave     bool   `yaml:"async_save"`     // Write history from a background goroutine
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	RefreshInterval float64 `yaml:"refresh_interval"` // Seconds between display cache rebuilds
	Layout          string  `yaml:"layout"`           // "vertical" or "horizontal"
	ShowSession     bool    `yaml:"show_session"`
	ShowGraph       bool    `yaml:"show_graph"`
	ShowMap         bool    `yaml:"show_map"`
	ShowArea        bool    `yaml:"show_area"`
	ShowRanking     bool    `yaml:"show_ranking"`
	GraphBars       int     `yaml:"graph_bars"` // Recent runs drawn in the session graph
	PositionX       int     `yaml:"position_x"`
	PositionY       int     `yaml:"position_y"`

	TextColor       string   `yaml:"text_color"`
	TitleTextColor  string   `yaml:"title_text_color"`
	TitleBarColor   string   `yaml:"title_bar_color"`
	BackgroundColor string   `yaml:"background_color"`
	BarColors       []string `yaml:"bar_colors"`
}

// ScreenConfig holds window settings for graphical mode.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SamplerConfig selects and tunes the sample source.
type SamplerConfig struct {
	Mode         string   `yaml:"mode"`          // "simulated" or "replay"
	TickInterval float64  `yaml:"tick_interval"` // Seconds between samples in headless mode
	Seed         int64    `yaml:"seed"`          // 0 = time-based
	ReplayPath   string   `yaml:"replay_path"`
	Zones        []string `yaml:"zones"`          // Run-eligible zone names
	Hubs         []string `yaml:"hubs"`           // Peaceful zone names
	RunSeconds   float64  `yaml:"run_seconds"`    // Mean time spent in a zone
	HubSeconds   float64  `yaml:"hub_seconds"`    // Mean time spent in a hub
	GoldPerPick  int64    `yaml:"gold_per_pick"`  // Mean gold per pickup
	PickChance   float64  `yaml:"pick_chance"`    // Chance of a pickup per tick in a zone
	SpendChance  float64  `yaml:"spend_chance"`   // Chance of a purchase per tick in a hub
	StartBalance int64    `yaml:"start_balance"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds of active time per stats window
	OutputDir           string  `yaml:"output_dir"`            // CSV output directory (empty = disabled)
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
	OTELEndpoint        string  `yaml:"otel_endpoint"`         // OTLP/HTTP endpoint (empty = no-op)
	OTELInsecure        bool    `yaml:"otel_insecure"`
}

// ServerConfig holds the HTTP control surface settings.
type ServerConfig struct {
	Addr string `yaml:"addr"` // Listen address (empty = disabled)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	RefreshInterval time.Duration
	TickInterval    time.Duration
	StatsWindow     time.Duration
	Vertical        bool
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults with derived values computed.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	cfg.computeDerived()
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. Environment overrides
// are applied last.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.computeDerived()

	return cfg, nil
}

// applyEnv overlays GOLDHELPER_* environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("GOLDHELPER_HISTORY_PATH"); v != "" {
		c.Tracker.HistoryPath = v
	}
	if v := os.Getenv("GOLDHELPER_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("GOLDHELPER_OTEL_ENDPOINT"); v != "" {
		c.Telemetry.OTELEndpoint = v
	}
	if v := os.Getenv("GOLDHELPER_MAX_HISTORY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing GOLDHELPER_MAX_HISTORY: %w", err)
		}
		c.Tracker.MaxHistory = n
	}
	return nil
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Tracker.MaxHistory < 1 {
		errs = append(errs, fmt.Errorf("tracker.max_history must be >= 1, got %d", c.Tracker.MaxHistory))
	}
	if c.Tracker.RecencyWindow < 1 {
		errs = append(errs, fmt.Errorf("tracker.recency_window must be >= 1, got %d", c.Tracker.RecencyWindow))
	}
	if c.Tracker.TopK < 1 {
		errs = append(errs, fmt.Errorf("tracker.top_k must be >= 1, got %d", c.Tracker.TopK))
	}
	if c.Tracker.Persist && c.Tracker.HistoryPath == "" {
		errs = append(errs, errors.New("tracker.history_path is required when tracker.persist is set"))
	}
	switch strings.ToLower(c.Display.Layout) {
	case "vertical", "horizontal":
	default:
		errs = append(errs, fmt.Errorf("display.layout must be vertical or horizontal, got %q", c.Display.Layout))
	}
	switch c.Sampler.Mode {
	case "simulated", "replay":
	default:
		errs = append(errs, fmt.Errorf("sampler.mode must be simulated or replay, got %q", c.Sampler.Mode))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.RefreshInterval = seconds(c.Display.RefreshInterval, time.Second)
	c.Derived.TickInterval = seconds(c.Sampler.TickInterval, time.Second/60)
	c.Derived.StatsWindow = seconds(c.Telemetry.StatsWindow, time.Minute)
	c.Derived.Vertical = strings.EqualFold(c.Display.Layout, "vertical")

	if c.Display.GraphBars < 1 {
		c.Display.GraphBars = 3
	}
}

func seconds(v float64, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v * float64(time.Second))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

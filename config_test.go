package hotspot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	def := DefaultConfig()
	if cfg.ZoomDuration != def.ZoomDuration || cfg.Navigation.Mode != def.Navigation.Mode {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotspot.yaml")
	doc := `zoom_duration: 1.5s
scale_mode: cover
padding: 0.02
navigation:
  mode: scroll
  wheel_sensitivity: 80
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOTSPOT_NAVIGATION__MODE", "click")
	t.Setenv("HOTSPOT_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ZoomDuration != 1500*time.Millisecond {
		t.Errorf("zoom_duration = %v", cfg.ZoomDuration)
	}
	if cfg.ScaleMode != "cover" || cfg.Padding != 0.02 {
		t.Errorf("scale_mode %q padding %v", cfg.ScaleMode, cfg.Padding)
	}
	if cfg.Navigation.Mode != "click" {
		t.Errorf("env override lost: mode = %q", cfg.Navigation.Mode)
	}
	if cfg.Navigation.WheelSensitivity != 80 {
		t.Errorf("wheel_sensitivity = %v", cfg.Navigation.WheelSensitivity)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q", cfg.LogLevel)
	}
	// Untouched keys keep their defaults.
	if cfg.ZoomOutDuration != 800*time.Millisecond || !cfg.Navigation.Keyboard {
		t.Errorf("defaults overwritten: %+v", cfg)
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("zoom_fill: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed YAML accepted")
	}
}

func TestConfigSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := DefaultConfig()
	cfg.ZoomFill = 0.6
	cfg.PanelFadeDuration = 450 * time.Millisecond
	cfg.Navigation.Keyboard = false
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.ZoomFill != 0.6 || got.PanelFadeDuration != 450*time.Millisecond || got.Navigation.Keyboard {
		t.Errorf("round trip = %+v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative duration", func(c *Config) { c.ZoomDuration = -time.Second }, "non-negative"},
		{"unknown ease", func(c *Config) { c.Ease = "wobble" }, "ease"},
		{"scale mode", func(c *Config) { c.ScaleMode = "stretch" }, "scale_mode"},
		{"zero fill", func(c *Config) { c.ZoomFill = 0 }, "zoom_fill"},
		{"fill above one", func(c *Config) { c.ZoomFill = 1.2 }, "zoom_fill"},
		{"padding eats viewport", func(c *Config) { c.PaddingTop = 0.6; c.Padding = 0.4 }, "padding"},
		{"side padding", func(c *Config) { c.Padding = 0.5; c.PaddingTop = 0 }, "padding"},
		{"threshold", func(c *Config) { c.AlphaThreshold = 300 }, "alpha_threshold"},
		{"nav mode", func(c *Config) { c.Navigation.Mode = "hover" }, "navigation.mode"},
		{"sensitivity", func(c *Config) { c.Navigation.WheelSensitivity = 0 }, "sensitivities"},
		{"idle reset", func(c *Config) { c.Navigation.IdleReset = -1 }, "idle_reset"},
		{"concurrency", func(c *Config) { c.AssetConcurrency = -1 }, "asset_concurrency"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate accepted invalid config")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestEaseByName(t *testing.T) {
	names := []string{
		"power2.inOut", "POWER2.INOUT", "linear", "sine.out",
		"InOutCubic", "OutQuad", "InOutBack", "OutInBounce", "inelastic",
	}
	for _, name := range names {
		if _, ok := EaseByName(name); !ok {
			t.Errorf("EaseByName(%q) not found", name)
		}
	}
	if _, ok := EaseByName("steps(4)"); ok {
		t.Error("unknown ease resolved")
	}
	cfg := DefaultConfig()
	cfg.Ease = "OutQuad"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate with a gween ease: %v", err)
	}
	cfg.Ease = "nope"
	if cfg.easing() == nil {
		t.Error("unknown ease should fall back to linear")
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"HOTSPOT_ZOOM_FILL":              "zoom_fill",
		"HOTSPOT_NAVIGATION__MODE":       "navigation.mode",
		"HOTSPOT_NAVIGATION__IDLE_RESET": "navigation.idle_reset",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	log := NewLogger(cfg, &buf)
	log.Debug().Msg("hidden")
	log.Info().Str("hotspot", "a").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if entry["component"] != "hotspot" || entry["hotspot"] != "a" || entry["message"] != "shown" {
		t.Errorf("entry = %v", entry)
	}

	buf.Reset()
	cfg.Debug = true
	debugLog := NewLogger(cfg, &buf)
	debugLog.Debug().Msg("console")
	if !strings.Contains(buf.String(), "console") || strings.HasPrefix(buf.String(), "{") {
		t.Errorf("debug output = %q", buf.String())
	}

	nilLog := NewLogger(cfg, nil)
	nilLog.Error().Msg("dropped")
}

package hotspot

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/tanema/gween/ease"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides. Nested keys use a double
// underscore: HOTSPOT_NAVIGATION__MODE -> navigation.mode.
const EnvPrefix = "HOTSPOT_"

// Config holds the deployment options of a mapper. The feature switches
// (PrecomputeTransforms, BadgePositioning, IllustrationAnimation) select
// between the lighter and the richer widget behaviour.
type Config struct {
	ZoomDuration      time.Duration `yaml:"zoom_duration" koanf:"zoom_duration"`
	ZoomOutDuration   time.Duration `yaml:"zoom_out_duration" koanf:"zoom_out_duration"`
	PanelFadeDuration time.Duration `yaml:"panel_fade_duration" koanf:"panel_fade_duration"`
	Ease              string        `yaml:"ease" koanf:"ease"`

	ScaleMode   string  `yaml:"scale_mode" koanf:"scale_mode"`
	ZoomFill    float64 `yaml:"zoom_fill" koanf:"zoom_fill"`
	PaddingTop  float64 `yaml:"padding_top" koanf:"padding_top"`
	Padding     float64 `yaml:"padding" koanf:"padding"`
	KeepCovered bool    `yaml:"keep_covered" koanf:"keep_covered"`

	AlphaThreshold int `yaml:"alpha_threshold" koanf:"alpha_threshold"`
	MaxMaskPixels  int `yaml:"max_mask_pixels" koanf:"max_mask_pixels"`

	PrecomputeTransforms  bool `yaml:"precompute_transforms" koanf:"precompute_transforms"`
	BadgePositioning      bool `yaml:"badge_positioning" koanf:"badge_positioning"`
	IllustrationAnimation bool `yaml:"illustration_animation" koanf:"illustration_animation"`

	Navigation NavigationConfig `yaml:"navigation" koanf:"navigation"`

	AssetConcurrency int    `yaml:"asset_concurrency" koanf:"asset_concurrency"`
	Debug            bool   `yaml:"debug" koanf:"debug"`
	LogLevel         string `yaml:"log_level" koanf:"log_level"`
}

// NavigationConfig configures the scroll and keyboard adapter.
type NavigationConfig struct {
	Enabled          bool          `yaml:"enabled" koanf:"enabled"`
	Mode             string        `yaml:"mode" koanf:"mode"`
	WheelSensitivity float64       `yaml:"wheel_sensitivity" koanf:"wheel_sensitivity"`
	TouchSensitivity float64       `yaml:"touch_sensitivity" koanf:"touch_sensitivity"`
	IdleReset        time.Duration `yaml:"idle_reset" koanf:"idle_reset"`
	Keyboard         bool          `yaml:"keyboard" koanf:"keyboard"`
}

// DefaultConfig returns the stock widget settings.
func DefaultConfig() *Config {
	return &Config{
		ZoomDuration:      1200 * time.Millisecond,
		ZoomOutDuration:   800 * time.Millisecond,
		PanelFadeDuration: 300 * time.Millisecond,
		Ease:              "power2.inOut",

		ScaleMode:   "fit",
		ZoomFill:    0.8,
		PaddingTop:  0.1,
		Padding:     0.05,
		KeepCovered: true,

		AlphaThreshold: DefaultAlphaThreshold,
		MaxMaskPixels:  defaultMaxMaskPixels,

		PrecomputeTransforms:  true,
		BadgePositioning:      true,
		IllustrationAnimation: true,

		Navigation: NavigationConfig{
			Enabled:          true,
			Mode:             "scroll",
			WheelSensitivity: 50,
			TouchSensitivity: 30,
			IdleReset:        200 * time.Millisecond,
			Keyboard:         true,
		},

		AssetConcurrency: 4,
		LogLevel:         "info",
	}
}

// LoadConfig layers defaults, the YAML file at path (skipped when path is
// empty or missing) and HOTSPOT_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.ZoomDuration < 0 || c.ZoomOutDuration < 0 || c.PanelFadeDuration < 0 {
		return fmt.Errorf("durations must be non-negative")
	}
	if _, ok := EaseByName(c.Ease); !ok {
		return fmt.Errorf("unknown ease %q", c.Ease)
	}
	if _, ok := ParseScaleMode(c.ScaleMode); !ok {
		return fmt.Errorf("invalid scale_mode %q: must be fit or cover", c.ScaleMode)
	}
	if c.ZoomFill <= 0 || c.ZoomFill > 1 {
		return fmt.Errorf("zoom_fill must be in (0, 1], got %v", c.ZoomFill)
	}
	if c.PaddingTop < 0 || c.Padding < 0 || c.PaddingTop+c.Padding >= 1 || 2*c.Padding >= 1 {
		return fmt.Errorf("padding leaves no visible area (top %v, sides %v)", c.PaddingTop, c.Padding)
	}
	if c.AlphaThreshold < 0 || c.AlphaThreshold > 255 {
		return fmt.Errorf("alpha_threshold must be in [0, 255], got %d", c.AlphaThreshold)
	}
	if _, ok := ParseNavMode(c.Navigation.Mode); !ok {
		return fmt.Errorf("invalid navigation.mode %q: must be scroll or click", c.Navigation.Mode)
	}
	if c.Navigation.WheelSensitivity <= 0 || c.Navigation.TouchSensitivity <= 0 {
		return fmt.Errorf("navigation sensitivities must be positive")
	}
	if c.Navigation.IdleReset < 0 {
		return fmt.Errorf("navigation.idle_reset must be non-negative")
	}
	if c.AssetConcurrency < 0 {
		return fmt.Errorf("asset_concurrency must be non-negative")
	}
	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// easing returns the configured easing function, linear when unknown.
func (c *Config) easing() ease.TweenFunc {
	if fn, ok := EaseByName(c.Ease); ok {
		return fn
	}
	return ease.Linear
}

func seconds(d time.Duration) float32 {
	return float32(d.Seconds())
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/heartscroll/constants"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// EnvPrefix is prepended to every environment override
const EnvPrefix = "HEARTSCROLL_"

// Color modes
const (
	ColorAuto      = "auto"
	ColorTrueColor = "truecolor"
	Color256       = "256"
)

// Config is the resolved runtime configuration
// Precedence: defaults < YAML file < environment < command-line flags
type Config struct {
	ContentPath       string        `yaml:"content_path" env:"CONTENT"`
	ContentURL        string        `yaml:"content_url" env:"CONTENT_URL"`
	ContentResultPath string        `yaml:"content_result_path" env:"CONTENT_RESULT_PATH"`
	Watch             bool          `yaml:"watch" env:"WATCH"`
	ColorMode         string        `yaml:"color" env:"COLOR"`
	Muted             bool          `yaml:"mute" env:"MUTE"`
	Volume            float64       `yaml:"volume" env:"VOLUME"`
	Debug             bool          `yaml:"debug" env:"DEBUG"`
	LogDir            string        `yaml:"log_dir" env:"LOG_DIR"`
	BroadcastAddr     string        `yaml:"broadcast_addr" env:"BROADCAST_ADDR"`
	TransitionTime    time.Duration `yaml:"transition_duration" env:"TRANSITION_DURATION"`
	WheelCooldown     time.Duration `yaml:"wheel_cooldown" env:"WHEEL_COOLDOWN"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Watch:          true,
		ColorMode:      ColorAuto,
		Volume:         constants.AudioCueVolume,
		LogDir:         "logs",
		TransitionTime: constants.TransitionDuration,
		WheelCooldown:  constants.WheelCooldown,
	}
}

// Load resolves defaults, the optional YAML file at path, then environment overrides
// environ replaces the process environment when non-nil
func Load(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix, Environment: environ}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("%w: parse env: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and mutually exclusive options
func (c Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorTrueColor, Color256:
	default:
		return fmt.Errorf("%w: color mode %q (want auto, truecolor or 256)", ErrInvalidConfig, c.ColorMode)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume %.2f out of range [0, 1]", ErrInvalidConfig, c.Volume)
	}
	if c.ContentPath != "" && c.ContentURL != "" {
		return fmt.Errorf("%w: content path and content url are mutually exclusive", ErrInvalidConfig)
	}
	if c.TransitionTime <= 0 {
		return fmt.Errorf("%w: transition duration must be positive", ErrInvalidConfig)
	}
	if c.WheelCooldown < 0 {
		return fmt.Errorf("%w: wheel cooldown must not be negative", ErrInvalidConfig)
	}
	return nil
}

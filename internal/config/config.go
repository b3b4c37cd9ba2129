package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName   = "spynners"
	envPrefix = "SPYNNERS_"
)

type Config struct {
	Playback      PlaybackConfig      `koanf:"playback"`
	Mirror        MirrorConfig        `koanf:"mirror"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Log           LogConfig           `koanf:"log"`
	State         StateConfig         `koanf:"state"`
}

// PlaybackConfig tunes the engine and the coordinator.
type PlaybackConfig struct {
	StatusInterval  time.Duration `koanf:"status_interval"`  // engine status tick (default: 250ms)
	PreviewGrace    time.Duration `koanf:"preview_grace"`    // cutoff check delay after load (default: 1s)
	AdvanceDebounce time.Duration `koanf:"advance_debounce"` // delay before auto-advance (default: 500ms)
	LoadTimeout     time.Duration `koanf:"load_timeout"`     // negative disables (default: 15s)
	SampleRate      int           `koanf:"sample_rate"`      // output rate in Hz (default: 44100)
}

// MirrorConfig controls the system now-playing surface (MPRIS).
type MirrorConfig struct {
	Enabled  *bool  `koanf:"enabled"`  // default: true
	Identity string `koanf:"identity"` // default: "Spynners"
}

// NotificationsConfig controls desktop notifications on track change.
type NotificationsConfig struct {
	Enabled *bool         `koanf:"enabled"` // default: true
	Timeout time.Duration `koanf:"timeout"` // negative uses the server default (default: 5s)
}

type LogConfig struct {
	Level string `koanf:"level"` // "debug", "info", "warn" or "error" (default: "info")
	File  string `koanf:"file"`  // empty means the XDG state dir
}

// StateConfig controls session persistence.
type StateConfig struct {
	Enabled *bool  `koanf:"enabled"` // default: true
	Path    string `koanf:"path"`    // empty means the XDG data dir
}

func Load() (*Config, error) {
	return load(getConfigPaths(), ".env")
}

func load(configPaths []string, dotenv string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range configPaths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	// .env only fills variables that are not already set
	if dotenv != "" {
		if _, err := os.Stat(dotenv); err == nil {
			if err := godotenv.Load(dotenv); err != nil {
				return nil, fmt.Errorf("load %s: %w", dotenv, err)
			}
		}
	}

	// SPYNNERS_PLAYBACK__LOAD_TIMEOUT -> playback.load_timeout
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/spynners/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func (c *Config) applyDefaults() {
	p := &c.Playback
	if p.StatusInterval == 0 {
		p.StatusInterval = 250 * time.Millisecond
	}
	if p.PreviewGrace == 0 {
		p.PreviewGrace = time.Second
	}
	if p.AdvanceDebounce == 0 {
		p.AdvanceDebounce = 500 * time.Millisecond
	}
	if p.LoadTimeout == 0 {
		p.LoadTimeout = 15 * time.Second
	}
	if p.SampleRate == 0 {
		p.SampleRate = 44100
	}

	if c.Mirror.Identity == "" {
		c.Mirror.Identity = "Spynners"
	}
	if c.Notifications.Timeout == 0 {
		c.Notifications.Timeout = 5 * time.Second
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.File = expandPath(c.Log.File)
	c.State.Path = expandPath(c.State.Path)
}

// Validate rejects values the player cannot run with. A negative load
// timeout is allowed and disables the timeout.
func (c *Config) Validate() error {
	var errs []error
	p := c.Playback
	if p.StatusInterval < 0 {
		errs = append(errs, fmt.Errorf("playback.status_interval: negative duration %s", p.StatusInterval))
	}
	if p.PreviewGrace < 0 {
		errs = append(errs, fmt.Errorf("playback.preview_grace: negative duration %s", p.PreviewGrace))
	}
	if p.AdvanceDebounce < 0 {
		errs = append(errs, fmt.Errorf("playback.advance_debounce: negative duration %s", p.AdvanceDebounce))
	}
	if p.SampleRate < 0 {
		errs = append(errs, fmt.Errorf("playback.sample_rate: invalid rate %d", p.SampleRate))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

func (c *Config) MirrorEnabled() bool {
	return boolOr(c.Mirror.Enabled, true)
}

func (c *Config) NotificationsEnabled() bool {
	return boolOr(c.Notifications.Enabled, true)
}

func (c *Config) StateEnabled() bool {
	return boolOr(c.State.Enabled, true)
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

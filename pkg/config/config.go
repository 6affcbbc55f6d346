// Package config loads editor settings from TOML files and the environment.
//
// A configuration file has four optional sections:
//
//	[policy]
//	allow_cycles = false
//	allow_self_loops = false
//	max_depth = 0          # 0 = unlimited
//	max_parents = 0        # 0 = unlimited
//	predicate_timeout = "2s"
//
//	[history]
//	capacity = 50
//	disabled = false
//
//	[layout]
//	engine = "force"       # force, neato or hold
//	width = 1200
//	height = 800
//	seed = 42
//
//	[cache]
//	backend = "file"       # file, memory, redis or none
//	dir = ""               # default: user cache dir
//	ttl = "720h"
//	redis_addr = "localhost:6379"
//	redis_db = 0
//	redis_prefix = "dagedit:"
//
// Missing keys keep their [Default] values. [ApplyEnv] then overrides
// individual keys from DAGEDIT_* variables; [Load] runs both steps and
// validates the result.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dagedit/pkg/cache"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
	"github.com/matzehuels/dagedit/pkg/history"
	"github.com/matzehuels/dagedit/pkg/layout"
	"github.com/matzehuels/dagedit/pkg/validate"
)

// Layout engines.
const (
	EngineForce = "force"
	EngineNeato = "neato"
	EngineHold  = "hold"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Duration is a time.Duration that decodes from TOML strings like "1m30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Config is the full editor configuration.
type Config struct {
	Policy  PolicyConfig  `toml:"policy"`
	History HistoryConfig `toml:"history"`
	Layout  LayoutConfig  `toml:"layout"`
	Cache   CacheConfig   `toml:"cache"`
}

// PolicyConfig mirrors [validate.Policy] without the predicate, which only
// code can supply.
type PolicyConfig struct {
	AllowCycles      bool     `toml:"allow_cycles"`
	AllowSelfLoops   bool     `toml:"allow_self_loops"`
	MaxDepth         int      `toml:"max_depth"`
	MaxParents       int      `toml:"max_parents"`
	PredicateTimeout Duration `toml:"predicate_timeout"`
}

// HistoryConfig mirrors [history.Options].
type HistoryConfig struct {
	Capacity int  `toml:"capacity"`
	Disabled bool `toml:"disabled"`
}

// LayoutConfig selects the layout engine and viewport.
type LayoutConfig struct {
	Engine string  `toml:"engine"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Seed   int64   `toml:"seed"`
}

// CacheConfig selects where layout state persists between sessions.
type CacheConfig struct {
	Backend     string   `toml:"backend"`
	Dir         string   `toml:"dir"`
	TTL         Duration `toml:"ttl"`
	RedisAddr   string   `toml:"redis_addr"`
	RedisDB     int      `toml:"redis_db"`
	RedisPrefix string   `toml:"redis_prefix"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		History: HistoryConfig{Capacity: history.DefaultCapacity},
		Layout: LayoutConfig{
			Engine: EngineForce,
			Width:  layout.DefaultViewport.Width,
			Height: layout.DefaultViewport.Height,
			Seed:   layout.DefaultSeed,
		},
		Cache: CacheConfig{
			Backend:     BackendFile,
			TTL:         Duration{30 * 24 * time.Hour},
			RedisAddr:   "localhost:6379",
			RedisPrefix: "dagedit:",
		},
	}
}

// Parse decodes TOML data over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, apperr.Wrap(apperr.ErrCodeConfigInvalid, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, apperr.New(apperr.ErrCodeConfigInvalid, "unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Load reads the file at path (when non-empty), applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, apperr.Wrap(apperr.ErrCodeConfigInvalid, err, "read config")
		}
		if cfg, err = Parse(data); err != nil {
			return Config{}, err
		}
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects negative limits and unknown engines or backends.
func (c Config) Validate() error {
	switch {
	case c.Policy.MaxDepth < 0:
		return apperr.New(apperr.ErrCodeConfigInvalid, "policy.max_depth must not be negative")
	case c.Policy.MaxParents < 0:
		return apperr.New(apperr.ErrCodeConfigInvalid, "policy.max_parents must not be negative")
	case c.Policy.PredicateTimeout.Duration < 0:
		return apperr.New(apperr.ErrCodeConfigInvalid, "policy.predicate_timeout must not be negative")
	case c.History.Capacity < 0:
		return apperr.New(apperr.ErrCodeConfigInvalid, "history.capacity must not be negative")
	case c.Layout.Width < 0 || c.Layout.Height < 0:
		return apperr.New(apperr.ErrCodeConfigInvalid, "layout viewport must not be negative")
	case c.Cache.TTL.Duration < 0:
		return apperr.New(apperr.ErrCodeConfigInvalid, "cache.ttl must not be negative")
	}

	switch c.Layout.Engine {
	case EngineForce, EngineNeato, EngineHold:
	default:
		return apperr.New(apperr.ErrCodeConfigInvalid, "unknown layout engine %q", c.Layout.Engine)
	}

	switch c.Cache.Backend {
	case BackendFile, BackendMemory, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return apperr.New(apperr.ErrCodeConfigInvalid, "cache.redis_addr is required for the redis backend")
		}
		if c.Cache.RedisPrefix == "" {
			return apperr.New(apperr.ErrCodeConfigInvalid, "cache.redis_prefix must not be empty")
		}
	default:
		return apperr.New(apperr.ErrCodeConfigInvalid, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// ValidationPolicy converts the policy section. The predicate stays nil.
func (c Config) ValidationPolicy() validate.Policy {
	return validate.Policy{
		AllowCycles:      c.Policy.AllowCycles,
		AllowSelfLoops:   c.Policy.AllowSelfLoops,
		MaxDepth:         c.Policy.MaxDepth,
		MaxParents:       c.Policy.MaxParents,
		PredicateTimeout: c.Policy.PredicateTimeout.Duration,
	}
}

// HistoryOptions converts the history section.
func (c Config) HistoryOptions() history.Options {
	return history.Options{Capacity: c.History.Capacity, Disabled: c.History.Disabled}
}

// Viewport converts the layout section's canvas size.
func (c Config) Viewport() layout.Viewport {
	return layout.Viewport{Width: c.Layout.Width, Height: c.Layout.Height}
}

// RedisConfig converts the cache section for [cache.NewRedisCache].
func (c Config) RedisConfig() cache.RedisConfig {
	return cache.RedisConfig{Addr: c.Cache.RedisAddr, DB: c.Cache.RedisDB, Prefix: c.Cache.RedisPrefix}
}

// Encode writes cfg as TOML.
func (c Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DAGEDIT_"

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return apperr.Wrap(apperr.ErrCodeConfigInvalid, err, "load %s", f)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from DAGEDIT_* variables found through lookup,
// typically os.LookupEnv. The recognised names are the section and key in
// upper case, e.g. DAGEDIT_POLICY_MAX_DEPTH or DAGEDIT_CACHE_BACKEND.
// DAGEDIT_REDIS_PASSWORD is read by the CLI directly and never stored.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	a := applier{lookup: lookup}

	a.boolean("POLICY_ALLOW_CYCLES", &cfg.Policy.AllowCycles)
	a.boolean("POLICY_ALLOW_SELF_LOOPS", &cfg.Policy.AllowSelfLoops)
	a.integer("POLICY_MAX_DEPTH", &cfg.Policy.MaxDepth)
	a.integer("POLICY_MAX_PARENTS", &cfg.Policy.MaxParents)
	a.duration("POLICY_PREDICATE_TIMEOUT", &cfg.Policy.PredicateTimeout.Duration)

	a.integer("HISTORY_CAPACITY", &cfg.History.Capacity)
	a.boolean("HISTORY_DISABLED", &cfg.History.Disabled)

	a.str("LAYOUT_ENGINE", &cfg.Layout.Engine)
	a.float("LAYOUT_WIDTH", &cfg.Layout.Width)
	a.float("LAYOUT_HEIGHT", &cfg.Layout.Height)
	a.int64("LAYOUT_SEED", &cfg.Layout.Seed)

	a.str("CACHE_BACKEND", &cfg.Cache.Backend)
	a.str("CACHE_DIR", &cfg.Cache.Dir)
	a.duration("CACHE_TTL", &cfg.Cache.TTL.Duration)
	a.str("CACHE_REDIS_ADDR", &cfg.Cache.RedisAddr)
	a.integer("CACHE_REDIS_DB", &cfg.Cache.RedisDB)
	a.str("CACHE_REDIS_PREFIX", &cfg.Cache.RedisPrefix)

	return a.err
}

// applier records the first parse failure and skips the rest.
type applier struct {
	lookup func(string) (string, bool)
	err    error
}

func (a *applier) get(key string) (string, bool) {
	if a.err != nil {
		return "", false
	}
	v, ok := a.lookup(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (a *applier) fail(key, value string, err error) {
	a.err = apperr.Wrap(apperr.ErrCodeConfigInvalid, err, "%s%s=%q", EnvPrefix, key, value)
}

func (a *applier) str(key string, dst *string) {
	if v, ok := a.get(key); ok {
		*dst = v
	}
}

func (a *applier) boolean(key string, dst *bool) {
	if v, ok := a.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			a.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (a *applier) integer(key string, dst *int) {
	if v, ok := a.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			a.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (a *applier) int64(key string, dst *int64) {
	if v, ok := a.get(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			a.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (a *applier) float(key string, dst *float64) {
	if v, ok := a.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			a.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (a *applier) duration(key string, dst *time.Duration) {
	if v, ok := a.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			a.fail(key, v, err)
			return
		}
		*dst = d
	}
}

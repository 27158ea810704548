package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownKey is returned for a key outside Keys.
var ErrUnknownKey = errors.New("unknown config key")

type field struct {
	get func(Config) string
	set func(*Config, string) error // nil when the key is read-only here
}

var fields = map[string]field{
	"database.path": {
		get: func(c Config) string { return c.Database.Path },
		set: func(c *Config, v string) error { return setText(&c.Database.Path, v) },
	},
	"api.base_url": {
		get: func(c Config) string { return c.API.BaseURL },
		set: func(c *Config, v string) error { return setText(&c.API.BaseURL, v) },
	},
	"api.token_env": {
		get: func(c Config) string { return c.API.TokenEnv },
		set: func(c *Config, v string) error { return setText(&c.API.TokenEnv, v) },
	},
	"api.token": {
		get: func(c Config) string {
			if c.API.Token == "" {
				return ""
			}
			return "(set)"
		},
	},
	"api.timeout": {
		get: func(c Config) string { return c.API.Timeout.String() },
		set: func(c *Config, v string) error { return setDuration(&c.API.Timeout, v) },
	},
	"api.poll_interval": {
		get: func(c Config) string { return c.API.PollInterval.String() },
		set: func(c *Config, v string) error { return setDuration(&c.API.PollInterval, v) },
	},
	"api.use_openai": {
		get: func(c Config) string { return strconv.FormatBool(c.API.UseOpenAI) },
		set: func(c *Config, v string) error { return setBool(&c.API.UseOpenAI, v) },
	},
	"api.mock": {
		get: func(c Config) string { return strconv.FormatBool(c.API.Mock) },
		set: func(c *Config, v string) error { return setBool(&c.API.Mock, v) },
	},
	"cache.ttl": {
		get: func(c Config) string { return c.Cache.TTL.String() },
		set: func(c *Config, v string) error { return setDuration(&c.Cache.TTL, v) },
	},
	"workflow.first_delay": {
		get: func(c Config) string { return c.Workflow.FirstDelay.String() },
		set: func(c *Config, v string) error { return setDuration(&c.Workflow.FirstDelay, v) },
	},
	"workflow.second_delay": {
		get: func(c Config) string { return c.Workflow.SecondDelay.String() },
		set: func(c *Config, v string) error { return setDuration(&c.Workflow.SecondDelay, v) },
	},
	"ui.default_mode": {
		get: func(c Config) string { return c.UI.DefaultMode },
		set: func(c *Config, v string) error {
			return setChoice(&c.UI.DefaultMode, strings.ToUpper(v), "MACRO", "CRYPTO")
		},
	},
	"log.path": {
		get: func(c Config) string { return c.Log.Path },
		set: func(c *Config, v string) error { return setText(&c.Log.Path, v) },
	},
	"log.level": {
		get: func(c Config) string { return c.Log.Level },
		set: func(c *Config, v string) error {
			return setChoice(&c.Log.Level, strings.ToLower(v), "debug", "info", "warn", "error")
		},
	},
}

// Keys lists every config key in sorted order.
func Keys() []string {
	out := make([]string, 0, len(fields))
	for k := range fields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get renders the value of key. The API token is masked.
func Get(c Config, key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return f.get(c), nil
}

func setText(dst *string, v string) error {
	if v == "" {
		return errors.New("value is empty")
	}
	*dst = v
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	if d < 0 {
		return errors.New("duration must not be negative")
	}
	*dst = d
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

func setChoice(dst *string, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			*dst = v
			return nil
		}
	}
	return fmt.Errorf("want one of %s, got %q", strings.Join(allowed, ", "), v)
}

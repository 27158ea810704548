package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	UI       UIConfig       `mapstructure:"ui"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// APIConfig holds analysis backend settings. Mock short-circuits the backend
// with the bundled payload.
type APIConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	TokenEnv     string        `mapstructure:"token_env"`
	Token        string        `mapstructure:"token"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	UseOpenAI    bool          `mapstructure:"use_openai"`
	Mock         bool          `mapstructure:"mock"`
}

// CacheConfig controls the local result cache. A zero TTL disables it.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// WorkflowConfig holds the pauses of the scan sequence.
type WorkflowConfig struct {
	FirstDelay  time.Duration `mapstructure:"first_delay"`
	SecondDelay time.Duration `mapstructure:"second_delay"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DefaultMode string `mapstructure:"default_mode"`
}

// LogConfig holds log file settings. The TUI owns stdout so logs always go to a file.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// DataDir is where the database and log file live by default.
func DataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "horaculo")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", filepath.Join(DataDir(), "horaculo.db"))
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.token_env", "HORACULO_API_TOKEN")
	v.SetDefault("api.token", "")
	v.SetDefault("api.timeout", 90*time.Second)
	v.SetDefault("api.poll_interval", 2*time.Second)
	v.SetDefault("api.use_openai", false)
	v.SetDefault("api.mock", true)
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("workflow.first_delay", 500*time.Millisecond)
	v.SetDefault("workflow.second_delay", 1000*time.Millisecond)
	v.SetDefault("ui.default_mode", "MACRO")
	v.SetDefault("log.path", filepath.Join(DataDir(), "horaculo.log"))
	v.SetDefault("log.level", "info")
}

// Load reads configuration from file and env. Env var overrides use prefix HORACULO_.
// An explicit path wins over HORACULO_CONFIG.
func Load(path string) (Config, error) {
	return load(path, true)
}

// Defaults is the configuration with no file and no env applied.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// FilePath resolves the config file used for path: the argument, then
// HORACULO_CONFIG, then ~/.config/horaculo/config.toml.
func FilePath(path string) string {
	if path == "" {
		path = os.Getenv("HORACULO_CONFIG")
	}
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "horaculo", "config.toml")
	}
	return path
}

func load(path string, withEnv bool) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := path
	if cfgPath == "" {
		cfgPath = os.Getenv("HORACULO_CONFIG")
	}
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "horaculo"))
		v.SetConfigName("config")
	}

	if withEnv {
		v.SetEnvPrefix("HORACULO")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// a missing default file is fine; a broken or missing explicit one is not
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Apply reads the config file at path and returns it with key set to value,
// ready for Save. Env overrides are not read, so they never end up in the
// file. A missing file starts from Defaults.
func Apply(path, key, value string) (Config, error) {
	f, ok := fields[key]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if f.set == nil {
		return Config{}, fmt.Errorf("%s cannot be set here", key)
	}

	file := FilePath(path)
	cfg := Defaults()
	if _, err := os.Stat(file); err == nil {
		if cfg, err = load(file, false); err != nil {
			return Config{}, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("stat config: %w", err)
	}

	if err := f.set(&cfg, strings.TrimSpace(value)); err != nil {
		return Config{}, fmt.Errorf("%s: %w", key, err)
	}
	return cfg, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// The API token is never written; prefer the env var or the secrets store.
func Save(path string, cfg Config) error {
	path = FilePath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.token_env", cfg.API.TokenEnv)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.poll_interval", cfg.API.PollInterval.String())
	v.Set("api.use_openai", cfg.API.UseOpenAI)
	v.Set("api.mock", cfg.API.Mock)
	v.Set("cache.ttl", cfg.Cache.TTL.String())
	v.Set("workflow.first_delay", cfg.Workflow.FirstDelay.String())
	v.Set("workflow.second_delay", cfg.Workflow.SecondDelay.String())
	v.Set("ui.default_mode", cfg.UI.DefaultMode)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

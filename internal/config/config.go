package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Zoo    ZooConfig    `mapstructure:"zoo"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig holds connection settings for the artifact server.
type ServerConfig struct {
	URL       string `mapstructure:"url"`
	Workspace string `mapstructure:"workspace"`
	TokenEnv  string `mapstructure:"token_env"`
}

// ZooConfig holds collection and review settings.
type ZooConfig struct {
	Collection  string        `mapstructure:"collection"`
	PageSize    int           `mapstructure:"page_size"`
	CallTimeout time.Duration `mapstructure:"call_timeout"`
	RunnerURL   string        `mapstructure:"runner_url"`
}

// LogConfig holds file logging settings.
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// Load reads configuration from file and env. Env var overrides use prefix ZOOREVIEW_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.url", "https://hypha.aicell.io")
	v.SetDefault("server.workspace", "bioimage-io")
	v.SetDefault("server.token_env", "WORKSPACE_TOKEN")
	v.SetDefault("zoo.collection", "bioimage-io/bioimage.io")
	v.SetDefault("zoo.page_size", 10)
	v.SetDefault("zoo.call_timeout", "20s")
	v.SetDefault("zoo.runner_url", "https://bioimage-io.github.io/bioengine-web-client/")
	v.SetDefault("log.file", filepath.Join(os.Getenv("HOME"), ".local", "state", "zooreview", "zooreview.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("ZOOREVIEW_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "zooreview"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("ZOOREVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// This is used by the TUI settings view for non-sensitive preferences; auth tokens
// never go here, they live in the encrypted secrets store.
func Save(cfg Config) error {
	path := os.Getenv("ZOOREVIEW_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "zooreview", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.workspace", cfg.Server.Workspace)
	v.Set("server.token_env", cfg.Server.TokenEnv)
	v.Set("zoo.collection", cfg.Zoo.Collection)
	v.Set("zoo.page_size", cfg.Zoo.PageSize)
	v.Set("zoo.call_timeout", cfg.Zoo.CallTimeout.String())
	v.Set("zoo.runner_url", cfg.Zoo.RunnerURL)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

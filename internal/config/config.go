package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all junomem configuration.
type Config struct {
	AppData string        `yaml:"app_data"` // base dir for persisted files; default ~/.juno
	Server  ServerConfig  `yaml:"server"`
	Memory  MemoryConfig  `yaml:"memory"`
	Context ContextConfig `yaml:"context"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type MemoryConfig struct {
	WorkingCapacity   int `yaml:"working_capacity"`
	ShortTermCapacity int `yaml:"short_term_capacity"`
	LongTermCapacity  int `yaml:"long_term_capacity"`
}

type ContextConfig struct {
	// URL is the base URL of the app's context service, which receives
	// memory invalidation webhooks. Empty disables delivery.
	URL string `yaml:"url"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38388,
		},
		Memory: MemoryConfig{
			WorkingCapacity:   50,
			ShortTermCapacity: 200,
			LongTermCapacity:  1000,
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is
// not an error — defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultAppDataPath returns the default app-data directory: ~/.juno
func DefaultAppDataPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".juno"), nil
}

// DefaultConfigPath returns the default config file path: ~/.juno/config.yaml
func DefaultConfigPath() (string, error) {
	dir, err := DefaultAppDataPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// AppDataPath implements the collaborator contract the memory subsystem
// consumes for resolving its persisted files.
func (c *Config) AppDataPath() string { return c.AppData }

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

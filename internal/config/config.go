// Package config holds engram configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all engram configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Embed  EmbedConfig  `toml:"embed"`
	Backup BackupConfig `toml:"backup"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type StoreConfig struct {
	Backend string `toml:"backend"` // "json" or "sqlite"
	Path    string `toml:"path"`
}

type EmbedConfig struct {
	OllamaURL string `toml:"ollama_url"`
	Model     string `toml:"model"` // e.g. "nomic-embed-text"
	Dims      int    `toml:"dims"`
}

type BackupConfig struct {
	Enabled       bool `toml:"enabled"`
	IntervalHours int  `toml:"interval_hours"`
	Keep          int  `toml:"keep"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38888,
		},
		Store: StoreConfig{
			Backend: "json",
			Path:    "", // resolved at runtime via persist.DefaultPath()
		},
		Embed: EmbedConfig{
			OllamaURL: "http://localhost:11434",
			Model:     "nomic-embed-text",
			Dims:      768,
		},
		Backup: BackupConfig{
			Enabled:       true,
			IntervalHours: 6,
			Keep:          5,
		},
	}
}

// FromEnv returns the default config with environment overrides applied:
// ENGRAM_STORE, ENGRAM_BACKEND, ENGRAM_ADDR, ENGRAM_PORT,
// ENGRAM_OLLAMA_URL, ENGRAM_EMBED_MODEL.
func FromEnv() Config {
	cfg := Default()
	if v := os.Getenv("ENGRAM_STORE"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("ENGRAM_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("ENGRAM_ADDR"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("ENGRAM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("ENGRAM_OLLAMA_URL"); v != "" {
		cfg.Embed.OllamaURL = v
	}
	if v := os.Getenv("ENGRAM_EMBED_MODEL"); v != "" {
		cfg.Embed.Model = v
	}
	return cfg
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

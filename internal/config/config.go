// Package config loads the duel server configuration from YAML.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/peterkuimelis/duelcore/internal/game"
	"github.com/peterkuimelis/duelcore/internal/store"
)

type Config struct {
	Rules   RulesConfig  `yaml:"rules"`
	Server  ServerConfig `yaml:"server"`
	Store   StoreConfig  `yaml:"store"`
	Catalog string       `yaml:"catalog"`
	Decks   string       `yaml:"decks"`
	Log     LogConfig    `yaml:"log"`
}

type RulesConfig struct {
	StartingLP int `yaml:"starting_lp"`
	HandSize   int `yaml:"hand_size"`
	MaxTurns   int `yaml:"max_turns"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // memory or sqlite
	Path   string `yaml:"path"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Rules:   RulesConfig{StartingLP: game.DefaultStartingLP, HandSize: game.DefaultHandSize},
		Server:  ServerConfig{Addr: ":8080"},
		Store:   StoreConfig{Driver: "memory"},
		Catalog: "data/cards.yaml",
		Decks:   "data/decks.yaml",
		Log:     LogConfig{Level: "info"},
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a config file. An empty path yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// fill restores defaults for fields a file explicitly zeroed.
func (c *Config) fill() {
	d := Default()
	if c.Rules.StartingLP == 0 {
		c.Rules.StartingLP = d.Rules.StartingLP
	}
	if c.Rules.HandSize == 0 {
		c.Rules.HandSize = d.Rules.HandSize
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Store.Driver == "" {
		c.Store.Driver = d.Store.Driver
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

func (c Config) Validate() error {
	if c.Rules.StartingLP < 0 || c.Rules.HandSize < 0 || c.Rules.MaxTurns < 0 {
		return fmt.Errorf("rules: values must not be negative")
	}
	if c.Rules.HandSize > game.MaxHandSize {
		return fmt.Errorf("rules: hand_size %d exceeds the hand limit %d", c.Rules.HandSize, game.MaxHandSize)
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store: sqlite driver needs a path")
		}
	default:
		return fmt.Errorf("store: unknown driver %q", c.Store.Driver)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// GameRules converts the rules section for game.WithRules.
func (c Config) GameRules() game.Rules {
	return game.Rules{
		StartingLP: c.Rules.StartingLP,
		HandSize:   c.Rules.HandSize,
		MaxTurns:   c.Rules.MaxTurns,
	}
}

// OpenStore opens the configured match store.
func (c Config) OpenStore() (store.Store, error) {
	if c.Store.Driver == "sqlite" {
		return store.NewSQLiteStore(c.Store.Path)
	}
	return store.NewMemoryStore(), nil
}

// NewLogger builds the diagnostics logger.
func (c Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

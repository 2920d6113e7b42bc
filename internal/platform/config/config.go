// Package config holds the tunable parameters of the academy server.
// Values come from DEVLEARN_* environment variables on top of built-in defaults.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every knob the server reads at startup.
type Config struct {
	// Storage
	DBPath   string `env:"DEVLEARN_DB_PATH" envDefault:"academy.db"`
	SaveSlot string `env:"DEVLEARN_SAVE_SLOT" envDefault:"main"`

	// Server
	HTTPAddr         string `env:"DEVLEARN_HTTP_ADDR" envDefault:":8080"`
	ClientSendBuffer int    `env:"DEVLEARN_CLIENT_SEND_BUFFER" envDefault:"64"`
	LogLevel         string `env:"DEVLEARN_LOG_LEVEL" envDefault:"info"`
	CatalogPath      string `env:"DEVLEARN_CATALOG_PATH"`

	// Loop
	TickInterval      time.Duration `env:"DEVLEARN_TICK_INTERVAL" envDefault:"100ms"`
	AutosaveInterval  time.Duration `env:"DEVLEARN_AUTOSAVE_INTERVAL" envDefault:"30s"`
	MaxOfflineCatchUp time.Duration `env:"DEVLEARN_MAX_OFFLINE_CATCH_UP" envDefault:"8h"`

	// Simulation
	Rules Rules `envPrefix:"DEVLEARN_"`
}

// Rules are the balance parameters consumed by the simulation systems.
type Rules struct {
	MaxEnergy           float64 `env:"MAX_ENERGY" envDefault:"100"`
	MaxStress           float64 `env:"MAX_STRESS" envDefault:"100"`
	EnergyDecayPerSec   float64 `env:"ENERGY_DECAY_PER_SEC" envDefault:"0.1"`
	StressGainPerSec    float64 `env:"STRESS_GAIN_PER_SEC" envDefault:"0.05"`
	EnergyLowThreshold  float64 `env:"ENERGY_LOW_THRESHOLD" envDefault:"20"`
	StressHighThreshold float64 `env:"STRESS_HIGH_THRESHOLD" envDefault:"80"`

	XPPerLevel       int64   `env:"XP_PER_LEVEL" envDefault:"100"`
	ClickMoney       float64 `env:"CLICK_MONEY" envDefault:"1"`
	ClickXP          int64   `env:"CLICK_XP" envDefault:"1"`
	StartingMoney    float64 `env:"STARTING_MONEY" envDefault:"50"`
	RestEnergy       float64 `env:"REST_ENERGY" envDefault:"25"`
	RestStressRelief float64 `env:"REST_STRESS_RELIEF" envDefault:"15"`
	BaseProjectRate  float64 `env:"BASE_PROJECT_RATE" envDefault:"1"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns the configuration from the environment, falling back to defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration, ignoring the environment.
func Default() *Config {
	return &Config{
		DBPath:            "academy.db",
		SaveSlot:          "main",
		HTTPAddr:          ":8080",
		ClientSendBuffer:  64,
		LogLevel:          "info",
		TickInterval:      100 * time.Millisecond,
		AutosaveInterval:  30 * time.Second,
		MaxOfflineCatchUp: 8 * time.Hour,
		Rules:             DefaultRules(),
	}
}

// LowResourceConfig returns minimal settings for development and tests.
func LowResourceConfig() *Config {
	cfg := Default()
	cfg.ClientSendBuffer = 8
	cfg.TickInterval = time.Second
	cfg.AutosaveInterval = time.Minute
	cfg.MaxOfflineCatchUp = time.Hour
	return cfg
}

// DefaultRules returns the default balance parameters.
func DefaultRules() Rules {
	return Rules{
		MaxEnergy:           100,
		MaxStress:           100,
		EnergyDecayPerSec:   0.1,
		StressGainPerSec:    0.05,
		EnergyLowThreshold:  20,
		StressHighThreshold: 80,
		XPPerLevel:          100,
		ClickMoney:          1,
		ClickXP:             1,
		StartingMoney:       50,
		RestEnergy:          25,
		RestStressRelief:    15,
		BaseProjectRate:     1,
	}
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.AutosaveInterval < 0 {
		return fmt.Errorf("autosave interval must not be negative, got %s", c.AutosaveInterval)
	}
	if c.SaveSlot == "" {
		return fmt.Errorf("save slot name is required")
	}
	return c.Rules.Validate()
}

// Validate rejects balance parameters that break the state invariants.
func (r Rules) Validate() error {
	if r.MaxEnergy <= 0 || r.MaxStress <= 0 {
		return fmt.Errorf("max energy and max stress must be positive")
	}
	if r.EnergyDecayPerSec < 0 || r.StressGainPerSec < 0 {
		return fmt.Errorf("decay and gain rates must not be negative")
	}
	if r.XPPerLevel <= 0 {
		return fmt.Errorf("xp per level must be positive, got %d", r.XPPerLevel)
	}
	return nil
}

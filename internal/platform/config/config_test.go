package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsMatchDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DEVLEARN_DB_PATH", "/tmp/academy-test.db")
	t.Setenv("DEVLEARN_TICK_INTERVAL", "250ms")
	t.Setenv("DEVLEARN_ENERGY_DECAY_PER_SEC", "0.5")
	t.Setenv("DEVLEARN_XP_PER_LEVEL", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/academy-test.db", cfg.DBPath)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 0.5, cfg.Rules.EnergyDecayPerSec)
	assert.Equal(t, int64(250), cfg.Rules.XPPerLevel)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("DEVLEARN_TICK_INTERVAL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero tick", func(c *Config) { c.TickInterval = 0 }},
		{"negative autosave", func(c *Config) { c.AutosaveInterval = -time.Second }},
		{"empty slot", func(c *Config) { c.SaveSlot = "" }},
		{"zero max energy", func(c *Config) { c.Rules.MaxEnergy = 0 }},
		{"negative decay", func(c *Config) { c.Rules.EnergyDecayPerSec = -1 }},
		{"zero xp per level", func(c *Config) { c.Rules.XPPerLevel = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, LowResourceConfig().Validate())
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aasipp.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
connectedness = 16
allowanyangle = false
timelimit = 2.5
maxreschedules = 3
loglevel = "debug"
logformat = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Connectedness)
	assert.False(t, cfg.AllowAnyAngle)
	assert.Equal(t, 3, cfg.MaxReschedules)
	assert.Equal(t, 2500*time.Millisecond, cfg.SearchTimeLimit())
	assert.Equal(t, 0.05, cfg.CollisionStep, "unset keys keep defaults")

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoadAppliesAlgType(t *testing.T) {
	tests := []struct {
		name        string
		algtype     int
		wantFocal   bool
		wantLik     bool
		wantHWeight float64
		wantFocalW  float64
	}{
		{"likhachev", AlgLikhachev, false, true, 2, 1},
		{"weighted", AlgWeighted, false, false, 2, 1},
		{"focal", AlgFocal, true, false, 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.AlgType = tt.algtype
			cfg.Weight = 2
			cfg.ApplyAlgType()
			assert.Equal(t, tt.wantFocal, cfg.UseFocal)
			assert.Equal(t, tt.wantLik, cfg.UseLikhachev)
			assert.Equal(t, tt.wantHWeight, cfg.HWeight)
			assert.Equal(t, tt.wantFocalW, cfg.FocalWeight)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"connectedness", func(c *Config) { c.Connectedness = 6 }},
		{"focal weight", func(c *Config) { c.FocalWeight = 0.5 }},
		{"exclusive modes", func(c *Config) { c.UseFocal, c.UseLikhachev = true, true }},
		{"negative time limit", func(c *Config) { c.TimeLimit = -1 }},
		{"rescheduling", func(c *Config) { c.Rescheduling = 5 }},
		{"collision step", func(c *Config) { c.CollisionStep = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "connectedness = "))
	assert.ErrorContains(t, err, "decode config file")

	_, err = Load(writeConfig(t, "connectedness = 5"))
	assert.ErrorContains(t, err, "connectedness")
}

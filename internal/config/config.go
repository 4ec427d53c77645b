// Package config holds the planner parameter bundle and its TOML loader.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Rescheduling selects how priorities change after a failed round.
type Rescheduling int

const (
	RescheduleNone    Rescheduling = 0 // Fail after the first round
	RescheduleRaise   Rescheduling = 1 // Move the agent at fault ahead of the agent it collided with
	RescheduleShuffle Rescheduling = 2 // Seeded random permutation
)

// Prioritization selects the initial priority order.
type Prioritization int

const (
	PriorityIdentity      Prioritization = 0 // Task order
	PriorityShortestFirst Prioritization = 1 // Ascending start-goal distance
	PriorityLongestFirst  Prioritization = 2 // Descending start-goal distance
	PriorityRandom        Prioritization = 3 // Seeded random permutation
)

// FocalType selects the heuristic oracle strategy used as the focal key.
type FocalType int

const (
	FocalGoalDistance FocalType = 0 // Backward cost-to-go table
	FocalPathDistance FocalType = 1 // Planar distance to the unconstrained path
	FocalPathTime     FocalType = 2 // Distance to the path waypoint nearest in time
)

// Algorithm presets. AlgNone keeps the explicit search flags.
const (
	AlgNone      = 0
	AlgLikhachev = 1
	AlgWeighted  = 2
	AlgFocal     = 3
)

// Config is the immutable parameter bundle shared by all planner components.
type Config struct {
	Connectedness             int            `toml:"connectedness"`
	AllowAnyAngle             bool           `toml:"allowanyangle"`
	PlanForTurns              bool           `toml:"planforturns"`
	RotationCost              float64        `toml:"rotationcost"` // Time to turn 180 degrees
	TimeLimit                 float64        `toml:"timelimit"`    // Seconds per agent search, 0 = unlimited
	Rescheduling              Rescheduling   `toml:"rescheduling"`
	MaxReschedules            int            `toml:"maxreschedules"`
	InflateCollisionIntervals float64        `toml:"inflatecollisionintervals"`
	InitialPrioritization     Prioritization `toml:"initialprioritization"`
	StartSafeInterval         float64        `toml:"startsafeinterval"`
	FocalWeight               float64        `toml:"focal_weight"`
	HWeight                   float64        `toml:"h_weight"`
	UseFocal                  bool           `toml:"use_focal"`
	UseLikhachev              bool           `toml:"use_likhachev"`
	FocalType                 FocalType      `toml:"focaltype"`
	AlgType                   int            `toml:"algtype"`
	Weight                    float64        `toml:"weight"`
	CollisionStep             float64        `toml:"collisionstep"`
	Seed                      int64          `toml:"seed"`
	LogLevel                  string         `toml:"loglevel"`
	LogFormat                 string         `toml:"logformat"`
}

// Default returns a valid bundle: 8-connected any-angle search, plain A*, raise-at-fault rescheduling.
func Default() *Config {
	return &Config{
		Connectedness:         8,
		AllowAnyAngle:         true,
		RotationCost:          1,
		Rescheduling:          RescheduleRaise,
		MaxReschedules:        10,
		InitialPrioritization: PriorityIdentity,
		FocalWeight:           1,
		HWeight:               1,
		FocalType:             FocalGoalDistance,
		Weight:                1,
		CollisionStep:         0.05,
		Seed:                  1,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// Load decodes a TOML file over the defaults, applies the algorithm preset and validates.
func Load(path string) (*Config, error) {
	cfg := Default()
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	if _, err := toml.Decode(string(bytes), cfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	cfg.ApplyAlgType()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyAlgType expands the AlgType preset into the search flags and weights.
func (c *Config) ApplyAlgType() {
	switch c.AlgType {
	case AlgLikhachev:
		c.UseFocal, c.UseLikhachev = false, true
		c.HWeight, c.FocalWeight = c.Weight, 1
	case AlgWeighted:
		c.UseFocal, c.UseLikhachev = false, false
		c.HWeight, c.FocalWeight = c.Weight, 1
	case AlgFocal:
		c.UseFocal, c.UseLikhachev = true, false
		c.HWeight, c.FocalWeight = 1, c.Weight
	}
}

// Validate rejects out-of-range parameters.
func (c *Config) Validate() error {
	var errs []error
	switch c.Connectedness {
	case 4, 8, 16, 32:
	default:
		errs = append(errs, fmt.Errorf("connectedness %d not in {4, 8, 16, 32}", c.Connectedness))
	}
	if c.AlgType < AlgNone || c.AlgType > AlgFocal {
		errs = append(errs, fmt.Errorf("algtype %d not in [0, 3]", c.AlgType))
	}
	if c.Weight < 1 {
		errs = append(errs, fmt.Errorf("weight %v below 1", c.Weight))
	}
	if c.FocalWeight < 1 {
		errs = append(errs, fmt.Errorf("focal_weight %v below 1", c.FocalWeight))
	}
	if c.HWeight < 1 {
		errs = append(errs, fmt.Errorf("h_weight %v below 1", c.HWeight))
	}
	if c.UseFocal && c.UseLikhachev {
		errs = append(errs, errors.New("use_focal and use_likhachev are exclusive"))
	}
	if c.RotationCost < 0 || c.TimeLimit < 0 || c.InflateCollisionIntervals < 0 || c.StartSafeInterval < 0 {
		errs = append(errs, errors.New("rotationcost, timelimit, inflatecollisionintervals and startsafeinterval must be non-negative"))
	}
	if c.Rescheduling < RescheduleNone || c.Rescheduling > RescheduleShuffle {
		errs = append(errs, fmt.Errorf("rescheduling %d not in [0, 2]", c.Rescheduling))
	}
	if c.MaxReschedules < 0 {
		errs = append(errs, fmt.Errorf("maxreschedules %d is negative", c.MaxReschedules))
	}
	if c.InitialPrioritization < PriorityIdentity || c.InitialPrioritization > PriorityRandom {
		errs = append(errs, fmt.Errorf("initialprioritization %d not in [0, 3]", c.InitialPrioritization))
	}
	if c.FocalType < FocalGoalDistance || c.FocalType > FocalPathTime {
		errs = append(errs, fmt.Errorf("focaltype %d not in [0, 2]", c.FocalType))
	}
	if c.CollisionStep <= 0 {
		errs = append(errs, fmt.Errorf("collisionstep %v must be positive", c.CollisionStep))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("logformat %q not in {text, json}", c.LogFormat))
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("loglevel: %w", err)
	}
	return lvl, nil
}

// SearchTimeLimit returns the per-agent wall-clock limit, 0 when unlimited.
func (c *Config) SearchTimeLimit() time.Duration {
	return time.Duration(c.TimeLimit * float64(time.Second))
}

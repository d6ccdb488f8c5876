// Package config loads the pipeline's tuning knobs from a TOML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalidConfig is returned when a loaded configuration cannot be used.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OXY_MORPH_"

type Config struct {
	Pipeline PipelineConfig `toml:"pipeline"`
	Engine   EngineConfig   `toml:"engine"`
	Logging  LoggingConfig  `toml:"logging"`
}

// PipelineConfig holds the scheduler's budget and pool knobs.
type PipelineConfig struct {
	MaxUpdatesPerTick            int     `toml:"max_updates_per_tick"`            // min 1
	MaxTimeBudgetMs              float64 `toml:"max_time_budget_ms"`              // soft ceiling of the apply stage
	MinFramesBetweenRegeneration int     `toml:"min_frames_between_regeneration"` // min 1
	PoolCapacity                 int     `toml:"pool_capacity"`                   // fixed, must be positive
	PriorityAgingWeight          float64 `toml:"priority_aging_weight"`           // 0 disables aging
	ShapeEpsilon                 float64 `toml:"shape_epsilon"`
	MaxStagingBytes              int     `toml:"max_staging_bytes"` // 0 = unlimited
	Workers                      int     `toml:"workers"`
	BatchSize                    int     `toml:"batch_size"` // objects per worker task
}

// MaxTimeBudget returns the apply stage's time ceiling as a duration.
func (p PipelineConfig) MaxTimeBudget() time.Duration {
	return time.Duration(p.MaxTimeBudgetMs * float64(time.Millisecond))
}

type EngineConfig struct {
	TickRate      float64 `toml:"tick_rate"` // ticks per second
	Profiling     bool    `toml:"profiling"`
	Renderer      string  `toml:"renderer"` // "memory" or "wgpu"
	ForceSoftware bool    `toml:"force_software"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads a TOML file on top of the defaults, applies environment overrides and validates the result.
//
// Parameters:
//   - path: the config file to read
//
// Returns:
//   - *Config: the loaded configuration
//   - error: a read, parse or validation error
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML data on top of the defaults, applies environment overrides and validates the result.
//
// Parameters:
//   - data: the TOML document
//   - name: used in error messages
//
// Returns:
//   - *Config: the parsed configuration
//   - error: a parse or validation error
func Parse(data []byte, name string) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			MaxUpdatesPerTick:            50,
			MaxTimeBudgetMs:              8.0,
			MinFramesBetweenRegeneration: 1,
			PoolCapacity:                 10000,
			ShapeEpsilon:                 1e-4,
			Workers:                      defaultWorkers(),
			BatchSize:                    64,
		},
		Engine: EngineConfig{
			TickRate: 60,
			Renderer: "memory",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// ApplyEnv overrides fields from OXY_MORPH_* environment variables.
//
// Returns:
//   - error: ErrInvalidConfig wrapping the first value that failed to parse
func (c *Config) ApplyEnv() error {
	ints := map[string]*int{
		"MAX_UPDATES_PER_TICK":            &c.Pipeline.MaxUpdatesPerTick,
		"MIN_FRAMES_BETWEEN_REGENERATION": &c.Pipeline.MinFramesBetweenRegeneration,
		"POOL_CAPACITY":                   &c.Pipeline.PoolCapacity,
		"MAX_STAGING_BYTES":               &c.Pipeline.MaxStagingBytes,
		"WORKERS":                         &c.Pipeline.Workers,
		"BATCH_SIZE":                      &c.Pipeline.BatchSize,
	}
	floats := map[string]*float64{
		"MAX_TIME_BUDGET_MS":    &c.Pipeline.MaxTimeBudgetMs,
		"PRIORITY_AGING_WEIGHT": &c.Pipeline.PriorityAgingWeight,
		"SHAPE_EPSILON":         &c.Pipeline.ShapeEpsilon,
		"TICK_RATE":             &c.Engine.TickRate,
	}
	strs := map[string]*string{
		"RENDERER":   &c.Engine.Renderer,
		"LOG_LEVEL":  &c.Logging.Level,
		"LOG_FORMAT": &c.Logging.Format,
	}

	for key, dst := range ints {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q: %w", ErrInvalidConfig, EnvPrefix, key, v, err)
			}
			*dst = n
		}
	}
	for key, dst := range floats {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q: %w", ErrInvalidConfig, EnvPrefix, key, v, err)
			}
			*dst = f
		}
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "PROFILING"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %sPROFILING=%q: %w", ErrInvalidConfig, EnvPrefix, v, err)
		}
		c.Engine.Profiling = b
	}
	return nil
}

// Normalize clamps soft knobs into their valid ranges. Pool capacity is left alone so Validate can reject it.
func (c *Config) Normalize() {
	p := &c.Pipeline
	p.MaxUpdatesPerTick = max(p.MaxUpdatesPerTick, 1)
	p.MaxTimeBudgetMs = max(p.MaxTimeBudgetMs, 0)
	p.MinFramesBetweenRegeneration = max(p.MinFramesBetweenRegeneration, 1)
	p.MaxStagingBytes = max(p.MaxStagingBytes, 0)
	if p.Workers < 1 {
		p.Workers = defaultWorkers()
	}
	if p.BatchSize < 1 {
		p.BatchSize = 64
	}
	if p.ShapeEpsilon <= 0 {
		p.ShapeEpsilon = 1e-4
	}
	if c.Engine.TickRate <= 0 {
		c.Engine.TickRate = 60
	}
	c.Engine.Renderer = strings.ToLower(c.Engine.Renderer)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// Validate reports settings that cannot be clamped into a usable value.
//
// Returns:
//   - error: ErrInvalidConfig joined with every problem found
func (c *Config) Validate() error {
	var errs []error
	p := c.Pipeline
	if p.PoolCapacity <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.pool_capacity must be positive, got %d", p.PoolCapacity))
	}
	for name, v := range map[string]float64{
		"pipeline.max_time_budget_ms":    p.MaxTimeBudgetMs,
		"pipeline.priority_aging_weight": p.PriorityAgingWeight,
		"pipeline.shape_epsilon":         p.ShapeEpsilon,
		"engine.tick_rate":               c.Engine.TickRate,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be finite", name))
		}
	}
	if p.PriorityAgingWeight < 0 {
		errs = append(errs, fmt.Errorf("pipeline.priority_aging_weight must not be negative, got %g", p.PriorityAgingWeight))
	}
	switch c.Engine.Renderer {
	case "memory", "wgpu":
	default:
		errs = append(errs, fmt.Errorf("engine.renderer %q is not one of memory, wgpu", c.Engine.Renderer))
	}
	switch c.Logging.Format {
	case "json", "console", "":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not one of json, console", c.Logging.Format))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

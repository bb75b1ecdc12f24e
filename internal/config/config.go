package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/azargarov/jobpool"
)

// Shutdown modes accepted in RunConfig.Mode.
const (
	ModeWait      = "wait"
	ModeTerminate = "terminate"
	ModeKill      = "kill"
)

// File is the structure of a jobpool run file.
type File struct {
	Pool PoolConfig `yaml:"pool"`
	Run  RunConfig  `yaml:"run"`
	Log  LogConfig  `yaml:"log"`
}

type PoolConfig struct {
	Workers    int         `yaml:"workers" default:"4"`
	Verbose    bool        `yaml:"verbose"`
	QueueLimit int         `yaml:"queue_limit"`
	PinWorkers bool        `yaml:"pin_workers"`
	Retry      RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts" default:"1"`
	Initial  time.Duration `yaml:"initial" default:"200ms"`
	Max      time.Duration `yaml:"max" default:"5s"`
}

// RunConfig describes the synthetic workload pushed through the pool.
type RunConfig struct {
	Mode      string          `yaml:"mode" default:"wait"`
	Durations []time.Duration `yaml:"durations"`
	Repeat    int             `yaml:"repeat" default:"1"`
	// FailEvery makes every n-th job fail; 0 disables failures.
	FailEvery int `yaml:"fail_every"`
	// StopAfter is how long the pool runs before terminate or kill.
	StopAfter time.Duration `yaml:"stop_after" default:"250ms"`
}

type LogConfig struct {
	// Format is "console" or "json".
	Format string `yaml:"format" default:"console"`
}

// DefaultDurations is the workload used when none is configured.
var DefaultDurations = []time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
	300 * time.Millisecond,
}

// Default returns a configuration with every default applied.
func Default() (*File, error) {
	var f File
	if err := f.applyDefaults(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads a YAML run file. Missing fields get their defaults.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data and applies defaults.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := f.applyDefaults(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) applyDefaults() error {
	if err := defaults.Set(f); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}
	if len(f.Run.Durations) == 0 {
		f.Run.Durations = append([]time.Duration(nil), DefaultDurations...)
	}
	return nil
}

// Validate checks values the pool cannot default on its own.
func (f *File) Validate() error {
	if f.Pool.Workers <= 0 {
		return fmt.Errorf("pool.workers must be positive, got %d", f.Pool.Workers)
	}
	switch f.Run.Mode {
	case ModeWait, ModeTerminate, ModeKill:
	default:
		return fmt.Errorf("unknown run.mode %q", f.Run.Mode)
	}
	if f.Run.Repeat <= 0 {
		return fmt.Errorf("run.repeat must be positive, got %d", f.Run.Repeat)
	}
	if f.Run.FailEvery < 0 {
		return fmt.Errorf("run.fail_every must not be negative, got %d", f.Run.FailEvery)
	}
	for i, d := range f.Run.Durations {
		if d < 0 {
			return fmt.Errorf("run.durations[%d] is negative", i)
		}
	}
	switch f.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log.format %q", f.Log.Format)
	}
	return nil
}

// PoolOptions converts the pool section into jobpool.Options.
func (f *File) PoolOptions() jobpool.Options {
	return jobpool.Options{
		Workers:    f.Pool.Workers,
		Verbose:    f.Pool.Verbose,
		QueueLimit: f.Pool.QueueLimit,
		PinWorkers: f.Pool.PinWorkers,
		Retry: jobpool.RetryPolicy{
			Attempts: f.Pool.Retry.Attempts,
			Initial:  f.Pool.Retry.Initial,
			Max:      f.Pool.Retry.Max,
		},
	}
}

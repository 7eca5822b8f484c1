package sim

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"hifive/src/joy"
)

// Environment variables that provide defaults under the config file.
const (
	EnvInterval = "HARTSIM_INTERVAL"
	EnvCycles   = "HARTSIM_CYCLES"
	EnvTicks    = "HARTSIM_TICKS"
	EnvTrace    = "HARTSIM_TRACE"
)

// TaskConfig picks the program for one task.
type TaskConfig struct {
	Program string `toml:"program"`
	Magic   uint64 `toml:"magic"`
	Steps   uint64 `toml:"steps"`
}

// Config is a simulator run.  It reads like:
//
//	interval = 1000
//	cycles_per_instruction = 10
//	ticks = 200
//
//	[[task]]
//	program = "counter"
//	magic = 0x5a5a
type Config struct {
	Interval             uint64       `toml:"interval"`
	CyclesPerInstruction uint64       `toml:"cycles_per_instruction"`
	Ticks                uint64       `toml:"ticks"`
	TraceLimit           int          `toml:"trace_limit"`
	Tasks                []TaskConfig `toml:"task"`
}

// DefaultConfig is two counter tasks, 100 ticks of 1000.
func DefaultConfig() Config {
	return Config{
		Interval:             1000,
		CyclesPerInstruction: 1,
		Ticks:                100,
		TraceLimit:           DefaultTraceLimit,
		Tasks: []TaskConfig{
			{Program: "counter", Magic: 0x1111},
			{Program: "counter", Magic: 0x2222},
		},
	}
}

// LoadEnv reads dotenv files into the environment (missing files are not an
// error) and then applies the HARTSIM_ variables to c.
func LoadEnv(c Config, files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	var err error
	if c.Interval, err = envUint(EnvInterval, c.Interval); err != nil {
		return c, err
	}
	if c.CyclesPerInstruction, err = envUint(EnvCycles, c.CyclesPerInstruction); err != nil {
		return c, err
	}
	if c.Ticks, err = envUint(EnvTicks, c.Ticks); err != nil {
		return c, err
	}
	limit, err := envUint(EnvTrace, uint64(c.TraceLimit))
	if err != nil {
		return c, err
	}
	c.TraceLimit = int(limit)
	return c, nil
}

func envUint(name string, def uint64) (uint64, error) {
	s, ok := os.LookupEnv(name)
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// ParseConfig overlays TOML onto base.  A file that names tasks replaces
// the base task list; unknown keys are an error.
func ParseConfig(data []byte, base Config) (Config, error) {
	c := base
	c.Tasks = nil
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(&c); err != nil {
		return base, err
	}
	if c.Tasks == nil {
		c.Tasks = base.Tasks
	}
	if err := c.Validate(); err != nil {
		return base, err
	}
	return c, nil
}

// LoadConfig reads a TOML file over base.
func LoadConfig(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	c, err := ParseConfig(data, base)
	if err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks what the kernel would not catch itself.  More tasks than
// the kernel holds is allowed: the kernel reports and skips them.
func (c *Config) Validate() error {
	if c.CyclesPerInstruction == 0 {
		return fmt.Errorf("cycles_per_instruction must be at least 1")
	}
	if len(c.Tasks) > 4*joy.MaxTasks {
		return fmt.Errorf("%d tasks is more than anyone needs to see the kernel refuse", len(c.Tasks))
	}
	for i, t := range c.Tasks {
		if _, err := t.program(); err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
	}
	return nil
}

func (t TaskConfig) program() (Program, error) {
	switch t.Program {
	case "counter", "":
		return &Counter{Magic: t.Magic}, nil
	case "returner":
		return &Returner{Steps: t.Steps}, nil
	case "faulter":
		return &Faulter{Steps: t.Steps}, nil
	}
	return nil, fmt.Errorf("unknown program %q", t.Program)
}

// Programs builds a fresh program for each task.
func (c *Config) Programs() ([]Program, error) {
	progs := make([]Program, 0, len(c.Tasks))
	for i, t := range c.Tasks {
		p, err := t.program()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		progs = append(progs, p)
	}
	return progs, nil
}

// Options is the Machine side of the config.
func (c *Config) Options() Options {
	return Options{
		Interval:             c.Interval,
		CyclesPerInstruction: c.CyclesPerInstruction,
		TraceLimit:           c.TraceLimit,
	}
}

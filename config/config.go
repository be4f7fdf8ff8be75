package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shirou/gopsutil/cpu"
	log "github.com/sirupsen/logrus"
)

const (
	EnvRiskFreeRate = "DPRICE_RISK_FREE_RATE"
	EnvSeed         = "DPRICE_SEED"
	EnvSimulations  = "DPRICE_SIMULATIONS"
	EnvConfidence   = "DPRICE_CONFIDENCE"
	EnvWorkers      = "DPRICE_WORKERS"
	EnvLogLevel     = "DPRICE_LOG_LEVEL"
	EnvOutput       = "DPRICE_OUTPUT"
)

const (
	DefaultRiskFreeRate = 0.05
	DefaultSimulations  = 100000
	DefaultConfidence   = 0.95
	DefaultLogLevel     = "info"
	DefaultOutput       = OutputTable
)

// Output formats for CLI reports.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputCSV   = "csv"
)

// Config holds CLI defaults. Command-line flags take precedence over it.
type Config struct {
	RiskFreeRate float64
	Seed         *uint64 // nil leaves the Monte Carlo stream seeded from the clock
	Simulations  int
	Confidence   float64
	Workers      int
	LogLevel     log.Level
	Output       string
}

// Load reads envFiles (".env" when none are given) into the environment and builds
// a Config from it. Missing env files are skipped.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s file: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		RiskFreeRate: DefaultRiskFreeRate,
		Simulations:  DefaultSimulations,
		Confidence:   DefaultConfidence,
		Workers:      DefaultWorkers(),
		LogLevel:     log.InfoLevel,
		Output:       DefaultOutput,
	}

	var err error
	if v, ok := lookup(EnvRiskFreeRate); ok {
		if cfg.RiskFreeRate, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, envError(EnvRiskFreeRate, v, err)
		}
	}
	if v, ok := lookup(EnvSeed); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, envError(EnvSeed, v, err)
		}
		cfg.Seed = &seed
	}
	if v, ok := lookup(EnvSimulations); ok {
		if cfg.Simulations, err = strconv.Atoi(v); err != nil {
			return nil, envError(EnvSimulations, v, err)
		}
		if cfg.Simulations < 1 {
			return nil, envError(EnvSimulations, v, errors.New("must be positive"))
		}
	}
	if v, ok := lookup(EnvConfidence); ok {
		if cfg.Confidence, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, envError(EnvConfidence, v, err)
		}
		if cfg.Confidence <= 0 || cfg.Confidence >= 1 {
			return nil, envError(EnvConfidence, v, errors.New("must lie in (0, 1)"))
		}
	}
	if v, ok := lookup(EnvWorkers); ok {
		if cfg.Workers, err = strconv.Atoi(v); err != nil {
			return nil, envError(EnvWorkers, v, err)
		}
		if cfg.Workers < 1 {
			return nil, envError(EnvWorkers, v, errors.New("must be positive"))
		}
	}
	if v, ok := lookup(EnvLogLevel); ok {
		if cfg.LogLevel, err = log.ParseLevel(v); err != nil {
			return nil, envError(EnvLogLevel, v, err)
		}
	}
	if v, ok := lookup(EnvOutput); ok {
		if cfg.Output, err = ParseOutput(v); err != nil {
			return nil, envError(EnvOutput, v, err)
		}
	}

	return cfg, nil
}

// ParseOutput accepts table, json or csv in any case.
func ParseOutput(s string) (string, error) {
	switch out := strings.ToLower(strings.TrimSpace(s)); out {
	case OutputTable, OutputJSON, OutputCSV:
		return out, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// DefaultWorkers is the number of physical cores, or logical CPUs when that is unknown.
func DefaultWorkers() int {
	n, err := cpu.Counts(false)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func envError(key, value string, err error) error {
	return fmt.Errorf("invalid %s=%q: %w", key, value, err)
}

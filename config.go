package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"mach_cas_calc/airdata"
	"mach_cas_calc/asky"
	"mach_cas_calc/envelope"
	"mach_cas_calc/units"
)

// environment variable prefix, e.g. MACHCAS_SOLVER_TOLERANCE
const envPrefix = "MACHCAS"

type Config struct {
	Solver    SolverConfig    `mapstructure:"solver" yaml:"solver"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	ActiveSky ActiveSkyConfig `mapstructure:"activesky" yaml:"activesky"`
	Envelope  EnvelopeConfig  `mapstructure:"envelope" yaml:"envelope"`
	Table     TableConfig     `mapstructure:"table" yaml:"table"`
}

type SolverConfig struct {
	Tolerance     float64 `mapstructure:"tolerance" yaml:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations" yaml:"max_iterations"`
	MaxExpansions int     `mapstructure:"max_expansions" yaml:"max_expansions"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type ActiveSkyConfig struct {
	Host    string        `mapstructure:"host" yaml:"host"`
	Port    int           `mapstructure:"port" yaml:"port"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type EnvelopeConfig struct {
	MaxMach       float64 `mapstructure:"max_mach" yaml:"max_mach"`
	MaxTotalTempC float64 `mapstructure:"max_total_temp_c" yaml:"max_total_temp_c"`
	CASLimitsPath string  `mapstructure:"cas_limits" yaml:"cas_limits"`
}

type TableConfig struct {
	// 0 means GOMAXPROCS
	Workers int `mapstructure:"workers" yaml:"workers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("solver.tolerance", airdata.DefaultTolerance)
	v.SetDefault("solver.max_iterations", airdata.DefaultMaxIterations)
	v.SetDefault("solver.max_expansions", airdata.DefaultMaxExpansions)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("activesky.host", asky.DefaultHost)
	v.SetDefault("activesky.port", asky.DefaultPort)
	v.SetDefault("activesky.timeout", asky.DefaultTimeout)
	v.SetDefault("envelope.max_mach", envelope.DefaultMaxMach)
	v.SetDefault("envelope.max_total_temp_c", units.KelvinToCelsius(envelope.DefaultMaxTotalTemperature))
	v.SetDefault("envelope.cas_limits", "")
	v.SetDefault("table.workers", 0)
}

/*
Load the configuration.

	Args:
	    path: YAML file to read; empty to use defaults and environment only
	    flags: command line flags; log-level and log-format override the file

	Returns:
	    validated configuration
*/
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range map[string]string{"log.level": "log-level", "log.format": "log-format"} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.SolverSettings().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.ActiveSky.Port < 1 || c.ActiveSky.Port > 65535 {
		errs = append(errs, fmt.Errorf("activesky.port %d out of range", c.ActiveSky.Port))
	}
	if c.ActiveSky.Timeout <= 0 {
		errs = append(errs, errors.New("activesky.timeout must be positive"))
	}
	if err := c.envelopeLimits().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Table.Workers < 0 {
		errs = append(errs, fmt.Errorf("table.workers must not be negative, got %d", c.Table.Workers))
	}
	return errors.Join(errs...)
}

func (c *Config) SolverSettings() *airdata.Solver {
	return &airdata.Solver{
		Tolerance:     c.Solver.Tolerance,
		MaxIterations: c.Solver.MaxIterations,
		MaxExpansions: c.Solver.MaxExpansions,
	}
}

// envelopeLimits returns the envelope without its CAS table.
func (c *Config) envelopeLimits() envelope.Envelope {
	return envelope.Envelope{
		MaxMach:             c.Envelope.MaxMach,
		MaxTotalTemperature: units.CelsiusToKelvin(c.Envelope.MaxTotalTempC),
	}
}

// LoadEnvelope returns the envelope, reading the CAS table if one is
// configured.
func (c *Config) LoadEnvelope() (envelope.Envelope, error) {
	e := c.envelopeLimits()
	if c.Envelope.CASLimitsPath == "" {
		return e, nil
	}
	cas, err := envelope.LoadCASLimitsFile(c.Envelope.CASLimitsPath)
	if err != nil {
		return envelope.Envelope{}, err
	}
	e.CAS = cas
	return e, nil
}

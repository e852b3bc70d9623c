// Package config loads lambda-doctor project settings.
//
// Settings come from, in increasing precedence: DefaultConfig, a
// .lambda-doctor.{yml,yaml,json,toml} file in the project, LAMBDA_DOCTOR_*
// environment variables, and command-line flags the user set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/lambda-doctor/internal/filesystem"
	"github.com/simonhull/lambda-doctor/pkg/analyzer"
	"github.com/simonhull/lambda-doctor/pkg/diagnosis"
	"github.com/simonhull/lambda-doctor/pkg/heavy"
	"github.com/simonhull/lambda-doctor/pkg/report"
)

// FileNames are the project config files looked up, in order.
var FileNames = []string{
	".lambda-doctor.yml",
	".lambda-doctor.yaml",
	".lambda-doctor.json",
	".lambda-doctor.toml",
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LAMBDA_DOCTOR"

// FailOnNever disables the findings exit code.
const FailOnNever = "never"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the settings of one analysis run.
type Config struct {
	Analyzers     []string        `yaml:"analyzers" mapstructure:"analyzers"`
	Exclude       []string        `yaml:"exclude" mapstructure:"exclude"`
	Format        string          `yaml:"format" mapstructure:"format"`
	Verbose       bool            `yaml:"verbose" mapstructure:"verbose"`
	FailOn        string          `yaml:"failOn" mapstructure:"failOn"`
	HeavyPackages []heavy.Package `yaml:"heavyPackages,omitempty" mapstructure:"heavyPackages"`

	// File is the config file that was read, if any.
	File string `yaml:"-" mapstructure:"-"`
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() *Config {
	return &Config{
		Analyzers: analyzer.Names(),
		Exclude:   slices.Clone(filesystem.DefaultExcludePatterns),
		Format:    string(report.FormatConsole),
		Verbose:   false,
		FailOn:    string(diagnosis.SeverityCritical),
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"analyzers": "analyzers",
	"exclude":   "exclude",
	"format":    "format",
	"verbose":   "verbose",
	"fail-on":   "failOn",
}

// envKeys maps config keys to the environment variables that set them.
var envKeys = map[string]string{
	"analyzers": EnvPrefix + "_ANALYZERS",
	"exclude":   EnvPrefix + "_EXCLUDE",
	"format":    EnvPrefix + "_FORMAT",
	"verbose":   EnvPrefix + "_VERBOSE",
	"failOn":    EnvPrefix + "_FAIL_ON",
}

// Load resolves the configuration for the project in dir. When file is
// non-empty it is read instead of searching dir, and must exist. Only
// flags in flags that the user changed override other sources; flags
// may be nil.
func Load(dir, file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("analyzers", defaults.Analyzers)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("failOn", defaults.FailOn)

	if file == "" {
		file = findFile(dir)
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findFile(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// normalize trims list entries and drops empty ones.
func (c *Config) normalize() {
	c.Analyzers = cleanList(c.Analyzers)
	c.Exclude = cleanList(c.Exclude)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.FailOn = strings.ToLower(strings.TrimSpace(c.FailOn))
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks analyzer names, format, fail-on policy and custom
// heavy-package entries.
func (c *Config) Validate() error {
	known := analyzer.Names()
	for _, name := range c.Analyzers {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w: unknown analyzer %q (known: %s)", ErrInvalidConfig, name, strings.Join(known, ", "))
		}
	}

	if _, err := report.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if _, err := c.FailSeverity(); err != nil {
		return err
	}

	for i, p := range c.HeavyPackages {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: heavyPackages[%d] has no name", ErrInvalidConfig, i)
		}
		if p.EstimatedSavingsMs < 0 {
			return fmt.Errorf("%w: heavyPackages[%d] (%s) has a negative estimatedSavingsMs", ErrInvalidConfig, i, p.Name)
		}
	}
	return nil
}

// FailSeverity returns the minimum severity that fails a run, or ""
// under the "never" policy.
func (c *Config) FailSeverity() (diagnosis.Severity, error) {
	switch c.FailOn {
	case "", string(diagnosis.SeverityCritical):
		return diagnosis.SeverityCritical, nil
	case string(diagnosis.SeverityWarning), string(diagnosis.SeverityInfo):
		return diagnosis.Severity(c.FailOn), nil
	case FailOnNever:
		return "", nil
	default:
		return "", fmt.Errorf("%w: fail-on %q (want critical, warning, info or never)", ErrInvalidConfig, c.FailOn)
	}
}

// ExcludePatterns returns the configured exclude globs, or nil when
// none are set so that the built-in defaults apply.
func (c *Config) ExcludePatterns() []string {
	if len(c.Exclude) == 0 {
		return nil
	}
	return slices.Clone(c.Exclude)
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() report.Format {
	f, err := report.ParseFormat(c.Format)
	if err != nil {
		return report.FormatConsole
	}
	return f
}

// Catalog returns the built-in heavy-package catalog extended with the
// project's own entries.
func (c *Config) Catalog() *heavy.Catalog {
	return heavy.Default().Extend(c.HeavyPackages)
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	header := []byte("# lambda-doctor configuration\n# Flags and LAMBDA_DOCTOR_* environment variables override these values.\n")
	return os.WriteFile(path, append(header, data...), 0644)
}

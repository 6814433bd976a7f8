// Package config holds the run configuration: built-in defaults, optionally
// overridden by a YAML file, in turn overridden by command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"slicecheck/internal/analyzer"
	"slicecheck/internal/coverage"
	"slicecheck/internal/logging"
)

var (
	ErrEmptyBuildCommand = errors.New("config: build_command is empty")
	ErrInvalidJobs       = errors.New("config: jobs must be at least 1")
)

// Config is the complete set of run settings. Relative paths are resolved
// later, against the working directory.
type Config struct {
	Tasks    string `yaml:"tasks"`
	Expected string `yaml:"expected"`
	Project  string `yaml:"project"`
	Scratch  string `yaml:"scratch"`
	Failures string `yaml:"failures"`

	Java      string `yaml:"java"`
	Jar       string `yaml:"jar"`
	MainClass string `yaml:"main_class"`

	BuildCommand   []string        `yaml:"build_command"`
	CoverageReport string          `yaml:"coverage_report"`
	Exclusions     []coverage.Pair `yaml:"exclusions"`

	Jobs     int    `yaml:"jobs"`
	ShowDiff bool   `yaml:"show_diff"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the settings of a stock slicer checkout.
func Default() Config {
	return Config{
		Tasks:          "evalscripts/tasks.json",
		Expected:       "expected-results",
		Project:        ".",
		Scratch:        os.TempDir(),
		Failures:       os.TempDir(),
		Java:           analyzer.DefaultJavaBin,
		Jar:            analyzer.DefaultJar,
		MainClass:      analyzer.DefaultMainClass,
		BuildCommand:   append([]string(nil), coverage.DefaultBuildCommand...),
		CoverageReport: coverage.DefaultReportPath,
		Exclusions:     coverage.DefaultExclusionPairs(),
		Jobs:           1,
		LogLevel:       "info",
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default; unknown keys are rejected.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}
	cfg, err := Parse(bytes.NewReader(b))
	if err != nil {
		return Config{}, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c Config) Validate() error {
	var errs []error
	if len(c.BuildCommand) == 0 || strings.TrimSpace(c.BuildCommand[0]) == "" {
		errs = append(errs, ErrEmptyBuildCommand)
	}
	if c.Jobs < 1 {
		errs = append(errs, ErrInvalidJobs)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	for name, v := range map[string]string{
		"tasks": c.Tasks, "expected": c.Expected, "project": c.Project,
		"scratch": c.Scratch, "failures": c.Failures, "java": c.Java, "jar": c.Jar,
	} {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("config: %s must not be empty", name))
		}
	}
	return errors.Join(errs...)
}

// ExclusionSet returns the configured coverage exclusions.
func (c Config) ExclusionSet() coverage.ExclusionSet {
	return coverage.NewExclusionSet(c.Exclusions...)
}

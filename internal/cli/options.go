package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"slicecheck/internal/config"
	"slicecheck/internal/logging"
)

// options holds raw flag values. Fields that mirror config keys only
// override the configuration when the flag was given.
type options struct {
	configPath string
	workDir    string
	noColor    bool

	tasks, expected, project string
	scratch, failures        string
	java, jar                string
	jobs                     int
	showDiff                 bool
	logLevel                 string
}

func (o *options) bind(cmd *cobra.Command) {
	def := config.Default()
	f := cmd.PersistentFlags()
	f.StringVar(&o.configPath, "config", "", "YAML configuration file")
	f.StringVar(&o.workDir, "workdir", "", "absolute directory relative paths resolve against (default: current directory)")
	f.BoolVar(&o.noColor, "no-color", false, "disable colored log output")

	f.StringVar(&o.tasks, "tasks", def.Tasks, "task catalog (.json, .yaml)")
	f.StringVar(&o.expected, "expected", def.Expected, "directory of expected artifacts")
	f.StringVar(&o.project, "project", def.Project, "project root for the build and the analyzer")
	f.StringVar(&o.scratch, "scratch", def.Scratch, "directory the analyzer writes artifacts to")
	f.StringVar(&o.failures, "failures", def.Failures, "directory receiving artifacts of failed tasks")
	f.StringVar(&o.java, "java", def.Java, "java executable")
	f.StringVar(&o.jar, "jar", def.Jar, "analyzer jar, relative to the project root")
	f.IntVar(&o.jobs, "jobs", def.Jobs, "concurrent analyzer invocations")
	f.BoolVar(&o.showDiff, "show-diff", def.ShowDiff, "print a unified diff for every mismatching task")
	f.StringVar(&o.logLevel, "log-level", def.LogLevel, "log level: debug|info|warn|error")
}

// settings is the resolved configuration of one command execution.
type settings struct {
	config.Config

	WorkDir string
	Logger  *slog.Logger
}

// resolve layers flags over the configuration file over defaults and makes
// every path absolute.
func (o *options) resolve(cmd *cobra.Command, stderr io.Writer) (*settings, error) {
	workDir, err := resolveWorkDir(o.workDir)
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	if o.configPath != "" {
		p, err := resolveUnderWorkDir(workDir, o.configPath)
		if err != nil {
			return nil, err
		}
		if cfg, err = config.Load(p); err != nil {
			return nil, setupError(err, "invalid configuration")
		}
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("tasks", &cfg.Tasks, o.tasks)
	override("expected", &cfg.Expected, o.expected)
	override("project", &cfg.Project, o.project)
	override("scratch", &cfg.Scratch, o.scratch)
	override("failures", &cfg.Failures, o.failures)
	override("java", &cfg.Java, o.java)
	override("jar", &cfg.Jar, o.jar)
	override("log-level", &cfg.LogLevel, o.logLevel)
	if flags.Changed("jobs") {
		cfg.Jobs = o.jobs
	}
	if flags.Changed("show-diff") {
		cfg.ShowDiff = o.showDiff
	}
	if o.jobs < 1 && flags.Changed("jobs") {
		return nil, invalidInvocationf("--jobs must be at least 1 (got %d)", o.jobs)
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, invalidInvocationf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, invalidInvocationf("%v", err)
	}

	for _, p := range []*string{&cfg.Tasks, &cfg.Expected, &cfg.Project, &cfg.Scratch, &cfg.Failures} {
		if *p, err = resolveUnderWorkDir(workDir, *p); err != nil {
			return nil, err
		}
	}
	if cfg.Java, err = resolveProgram(workDir, cfg.Java); err != nil {
		return nil, err
	}

	return &settings{
		Config:  cfg,
		WorkDir: workDir,
		Logger:  logging.New(logging.Config{Level: level, Writer: stderr, NoColor: o.noColor}),
	}, nil
}

// Package analyzer drives the slicing tool under test, once per task.
package analyzer

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"slicecheck/internal/catalog"
	"slicecheck/internal/core"
)

// Request is everything the analyzer needs for one task.
type Request struct {
	Task catalog.Task

	// OutputPath is where the trace artifact must be written.
	OutputPath string

	// ProjectDir anchors relative tool paths (the analyzer jar).
	ProjectDir string
}

// Analyzer produces a trace artifact for a request. A failed run is
// expected to leave no artifact at Request.OutputPath.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*core.ExecutionResult, error)
}

// Defaults for the bundled slicer.
const (
	DefaultJavaBin   = "/usr/bin/java"
	DefaultJar       = "build/libs/slicer-1.0-SNAPSHOT.jar"
	DefaultMainClass = "de.uni_passau.fim.se2.SlicerMain"
)

// JavaSlicer runs the slicer's main class on a JVM.
type JavaSlicer struct {
	Executor  *core.Executor
	JavaBin   string
	Jar       string
	MainClass string
	Env       map[string]string
}

// NewJavaSlicer creates a JavaSlicer with the default JVM, jar and main
// class.
func NewJavaSlicer() *JavaSlicer {
	return &JavaSlicer{
		Executor:  core.NewExecutor(""),
		JavaBin:   DefaultJavaBin,
		Jar:       DefaultJar,
		MainClass: DefaultMainClass,
	}
}

// Invocation builds the command line for req:
//
//	java -cp <jar>[:<class_path>] <main> -c <package.class> -m <method>
//	     -l <line> -v <variable> -x -t <output>
func (s *JavaSlicer) Invocation(req Request) core.Invocation {
	jar := s.Jar
	if jar == "" {
		jar = DefaultJar
	}
	if !filepath.IsAbs(jar) && req.ProjectDir != "" {
		jar = filepath.Join(req.ProjectDir, jar)
	}
	classPath := []string{jar}
	if cp := strings.TrimSpace(req.Task.ClassPath); cp != "" {
		classPath = append(classPath, cp)
	}

	mainClass := s.MainClass
	if mainClass == "" {
		mainClass = DefaultMainClass
	}
	javaBin := s.JavaBin
	if javaBin == "" {
		javaBin = DefaultJavaBin
	}

	return core.Invocation{
		Name: req.Task.Name,
		Path: javaBin,
		Args: []string{
			"-cp", strings.Join(classPath, string(filepath.ListSeparator)),
			mainClass,
			"-c", req.Task.QualifiedClass(),
			"-m", req.Task.Method,
			"-l", strconv.Itoa(req.Task.Line),
			"-v", req.Task.Variable,
			"-x",
			"-t", req.OutputPath,
		},
		Dir:        req.ProjectDir,
		Env:        s.Env,
		InheritEnv: true,
	}
}

// Analyze implements Analyzer.
func (s *JavaSlicer) Analyze(ctx context.Context, req Request) (*core.ExecutionResult, error) {
	exec := s.Executor
	if exec == nil {
		exec = core.NewExecutor(req.ProjectDir)
	}
	return exec.Execute(ctx, s.Invocation(req))
}

package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicecheck/internal/catalog"
	"slicecheck/internal/core"
)

var gcdTask = catalog.Task{
	Name:     "gcd1",
	Package:  "de.uni_passau.fim.se2.examples",
	Class:    "GCD",
	Method:   "gcd:(II)I",
	Line:     12,
	Variable: "a",
}

type recordingAnalyzer struct {
	mu       sync.Mutex
	requests []Request
	write    func(req Request) error
	result   *core.ExecutionResult
	err      error

	active, peak atomic.Int32
	delay        time.Duration
}

func (r *recordingAnalyzer) Analyze(_ context.Context, req Request) (*core.ExecutionResult, error) {
	n := r.active.Add(1)
	defer r.active.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()

	if r.write != nil {
		if err := r.write(req); err != nil {
			return nil, err
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	if r.result != nil {
		return r.result, nil
	}
	return &core.ExecutionResult{}, nil
}

func writeReport(req Request) error {
	return os.WriteFile(req.OutputPath, []byte(`<report/>`), 0o644)
}

func TestJavaSlicer_Invocation(t *testing.T) {
	s := NewJavaSlicer()
	inv := s.Invocation(Request{Task: gcdTask, OutputPath: "/tmp/gcd1.xml", ProjectDir: "/work/slicer"})

	assert.Equal(t, "gcd1", inv.Name)
	assert.Equal(t, "/usr/bin/java", inv.Path)
	assert.Equal(t, "/work/slicer", inv.Dir)
	assert.True(t, inv.InheritEnv)
	assert.Equal(t, []string{
		"-cp", "/work/slicer/build/libs/slicer-1.0-SNAPSHOT.jar",
		"de.uni_passau.fim.se2.SlicerMain",
		"-c", "de.uni_passau.fim.se2.examples.GCD",
		"-m", "gcd:(II)I",
		"-l", "12",
		"-v", "a",
		"-x",
		"-t", "/tmp/gcd1.xml",
	}, inv.Args)
}

func TestJavaSlicer_InvocationAppendsTaskClassPath(t *testing.T) {
	s := &JavaSlicer{JavaBin: "java", Jar: "/opt/slicer.jar", MainClass: "Main"}
	task := gcdTask
	task.ClassPath = "lib/asm.jar"

	inv := s.Invocation(Request{Task: task, OutputPath: "out.xml", ProjectDir: "/p"})
	assert.Equal(t, "java", inv.Path)
	assert.Equal(t, "/opt/slicer.jar:lib/asm.jar", inv.Args[1])
	assert.Equal(t, "Main", inv.Args[2])
}

func TestJavaSlicer_AnalyzeRunsConfiguredProgram(t *testing.T) {
	dir := t.TempDir()
	// A stand-in JVM that writes its last argument (the -t target).
	fakeJava := filepath.Join(dir, "java")
	require.NoError(t, os.WriteFile(fakeJava, []byte("#!/bin/sh\nfor a; do out=$a; done\necho '<report/>' > \"$out\"\n"), 0o755))

	s := &JavaSlicer{Executor: core.NewExecutor(dir), JavaBin: fakeJava}
	out := filepath.Join(dir, "gcd1.xml")
	res, err := s.Analyze(context.Background(), Request{Task: gcdTask, OutputPath: out, ProjectDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.FileExists(t, out)
}

func TestDriver_RunWritesToScratchPath(t *testing.T) {
	scratch := filepath.Join(t.TempDir(), "scratch")
	a := &recordingAnalyzer{write: writeReport}
	d := NewDriver(a, scratch, "/project", nil)

	d.Run(context.Background(), gcdTask)

	require.Len(t, a.requests, 1)
	assert.Equal(t, filepath.Join(scratch, "gcd1.xml"), a.requests[0].OutputPath)
	assert.Equal(t, "/project", a.requests[0].ProjectDir)
	assert.Equal(t, gcdTask, a.requests[0].Task)
	assert.FileExists(t, filepath.Join(scratch, "gcd1.xml"))
}

func TestDriver_RunRemovesStaleArtifact(t *testing.T) {
	scratch := t.TempDir()
	stale := filepath.Join(scratch, "gcd1.xml")
	require.NoError(t, os.WriteFile(stale, []byte("<report/>"), 0o644))

	a := &recordingAnalyzer{result: &core.ExecutionResult{ExitCode: 1, Stderr: []byte("Exception in thread main")}}
	NewDriver(a, scratch, "", nil).Run(context.Background(), gcdTask)

	assert.NoFileExists(t, stale)
}

func TestDriver_RunIgnoresAnalyzerFailure(t *testing.T) {
	a := &recordingAnalyzer{err: errors.New("exec: java: not found")}
	d := NewDriver(a, t.TempDir(), "", nil)

	assert.NotPanics(t, func() { d.Run(context.Background(), gcdTask) })
	assert.Len(t, a.requests, 1)
}

func TestDriver_RunAllSequentialKeepsCatalogOrder(t *testing.T) {
	tasks := []catalog.Task{gcdTask, gcdTask, gcdTask}
	tasks[1].Name = "b"
	tasks[2].Name = "a"

	a := &recordingAnalyzer{}
	NewDriver(a, t.TempDir(), "", nil).RunAll(context.Background(), tasks)

	var names []string
	for _, r := range a.requests {
		names = append(names, r.Task.Name)
	}
	assert.Equal(t, []string{"gcd1", "b", "a"}, names)
	assert.EqualValues(t, 1, a.peak.Load())
}

func TestDriver_RunAllParallelBounded(t *testing.T) {
	var tasks []catalog.Task
	for _, n := range []string{"t1", "t2", "t3", "t4", "t5", "t6"} {
		task := gcdTask
		task.Name = n
		tasks = append(tasks, task)
	}

	scratch := t.TempDir()
	a := &recordingAnalyzer{write: writeReport, delay: 20 * time.Millisecond}
	d := NewDriver(a, scratch, "", nil)
	d.Jobs = 2
	d.RunAll(context.Background(), tasks)

	require.Len(t, a.requests, len(tasks))
	assert.LessOrEqual(t, a.peak.Load(), int32(2))

	var got []string
	for _, r := range a.requests {
		got = append(got, filepath.Base(r.OutputPath))
	}
	sort.Strings(got)
	assert.Equal(t, []string{"t1.xml", "t2.xml", "t3.xml", "t4.xml", "t5.xml", "t6.xml"}, got)
	for _, task := range tasks {
		assert.FileExists(t, OutputPath(scratch, task))
	}
}

package eval

import (
	"log/slog"
	"sync"

	"slicecheck/internal/compare"
)

// Phase names a stage of an evaluation run.
type Phase string

const (
	PhaseCatalog  Phase = "catalog"
	PhaseOracles  Phase = "oracles"
	PhaseCoverage Phase = "coverage"
	PhaseAnalyze  Phase = "analyze"
	PhaseCompare  Phase = "compare"
	PhaseSummary  Phase = "summary"
)

// EventKind distinguishes phase transitions from per-task verdicts.
type EventKind string

const (
	EventPhaseStarted EventKind = "phase_started"
	EventVerdict      EventKind = "verdict"
)

// Event is one observation of a running evaluation.
type Event struct {
	Kind    EventKind
	Phase   Phase
	Task    string
	Verdict compare.Verdict
}

// Sink observes an evaluation.
//
// Record must be inert: it must not panic and cannot fail the run. The
// evaluator assumes Record may be a no-op.
type Sink interface {
	Record(event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(Event) {}

// SafeRecord records an event, swallowing panics from a buggy sink.
func SafeRecord(s Sink, event Event) {
	if s == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.Record(event)
}

// Recorder is a concurrency-safe in-memory Sink.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(event Event) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Snapshot returns a copy of the events recorded so far.
func (r *Recorder) Snapshot() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Phases returns the started phases in the order they were recorded.
func (r *Recorder) Phases() []Phase {
	var out []Phase
	for _, e := range r.Snapshot() {
		if e.Kind == EventPhaseStarted {
			out = append(out, e.Phase)
		}
	}
	return out
}

// LogSink writes every event to a logger at debug level.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Record(event Event) {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	switch event.Kind {
	case EventPhaseStarted:
		log.Debug("phase started", "phase", event.Phase)
	case EventVerdict:
		log.Debug("verdict recorded", "task", event.Task, "verdict", event.Verdict)
	}
}

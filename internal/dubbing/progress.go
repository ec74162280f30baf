package dubbing

import (
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
)

// State is the assembler's position in building one track.
type State int

const (
	Idle State = iota
	Allocating
	Synthesizing
	Mixing
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Allocating:
		return "allocating"
	case Synthesizing:
		return "synthesizing"
	case Mixing:
		return "mixing"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is one state change. Segment and Total are set while synthesizing.
type Event struct {
	Language language.Code
	State    State
	Segment  int
	Total    int
	Status   SegmentStatus
	Err      error
}

// ProgressReporter receives assembler events. Reporters are shared across
// languages and must be safe for concurrent use.
type ProgressReporter interface {
	Report(Event)
}

// NopReporter drops every event.
type NopReporter struct{}

func (NopReporter) Report(Event) {}

// LogReporter writes events to a logger, segments at debug level.
type LogReporter struct {
	Logger *logging.Logger
}

func (r LogReporter) Report(e Event) {
	log := logging.OrNop(r.Logger)
	switch e.State {
	case Synthesizing:
		log.Debugw("segment processed",
			"language", e.Language,
			"segment", e.Segment+1,
			"total", e.Total,
			"status", e.Status,
		)
	case Failed:
		log.Errorw("speech track failed", "language", e.Language, "error", e.Err)
	default:
		log.Debugw("speech track state", "language", e.Language, "state", e.State.String())
	}
}

// ReporterFunc adapts a function to ProgressReporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

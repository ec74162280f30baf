package pipeline

import (
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
)

// Stage of a file in the generate flow.
type Stage int

const (
	StageQueued Stage = iota
	StageExtracting
	StageTranscribing
	StageWriting
	StageEmbedding
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageQueued:
		return "queued"
	case StageExtracting:
		return "extracting audio"
	case StageTranscribing:
		return "transcribing"
	case StageWriting:
		return "writing subtitles"
	case StageEmbedding:
		return "embedding subtitles"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress maps a stage onto [0,100] for progress bars.
func (s Stage) Progress() int {
	switch s {
	case StageExtracting:
		return 10
	case StageTranscribing:
		return 30
	case StageWriting:
		return 70
	case StageEmbedding:
		return 80
	case StageDone, StageFailed:
		return 100
	default:
		return 0
	}
}

type Event struct {
	File  string
	Stage Stage
	Err   error
}

// Observer receives stage changes. Calls may come from several goroutines
// in batch mode.
type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type NopObserver struct{}

func (NopObserver) Observe(Event) {}

// LogObserver writes stage changes at debug level.
type LogObserver struct {
	Logger *logging.Logger
}

func (o LogObserver) Observe(e Event) {
	l := logging.OrNop(o.Logger)
	if e.Err != nil {
		l.Debugw("stage", "file", e.File, "stage", e.Stage.String(), "error", e.Err)
		return
	}
	l.Debugw("stage", "file", e.File, "stage", e.Stage.String())
}

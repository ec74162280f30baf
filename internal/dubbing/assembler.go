// Package dubbing builds time-aligned synthetic speech tracks from subtitle
// segments and muxes them into per-language videos.
package dubbing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gopxl/beep"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/tts"
)

const (
	minSegment     = 500 * time.Millisecond
	speedThreshold = 1.2
	maxSpeed       = 2.0
	fadeMinimum    = 200 * time.Millisecond
	fadeLength     = 100 * time.Millisecond
)

// SegmentStatus is the outcome for one segment.
type SegmentStatus string

const (
	StatusInserted SegmentStatus = "inserted"
	StatusSkipped  SegmentStatus = "skipped"
	StatusFailed   SegmentStatus = "failed"
)

type SegmentReport struct {
	Index  int
	Status SegmentStatus
	// speed-up applied, 1 when the clip was used as synthesized
	SpeedRatio float64
	// length actually overlaid
	ClipLength time.Duration
	Err        error
}

type Request struct {
	Segments []subtitle.Segment
	Total    time.Duration
	Voice    tts.Voice
	// nil means the original audio is silence
	Original *audio.Track
	Mix      audio.MixSpec
}

type Result struct {
	Track    *audio.Track
	State    State
	Segments []SegmentReport
}

// Inserted counts segments that made it into the track.
func (r *Result) Inserted() int {
	n := 0
	for _, s := range r.Segments {
		if s.Status == StatusInserted {
			n++
		}
	}
	return n
}

// Failed counts segments whose synthesis failed.
func (r *Result) Failed() int {
	n := 0
	for _, s := range r.Segments {
		if s.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Assembler turns segments into one speech track. It keeps no per-call
// state, so one Assembler serves every language concurrently.
type Assembler struct {
	synth    tts.Synthesizer
	mixer    audio.Mixer
	rate     beep.SampleRate
	reporter ProgressReporter
	logger   *logging.Logger
}

type Option func(*Assembler)

func WithReporter(r ProgressReporter) Option {
	return func(a *Assembler) {
		if r != nil {
			a.reporter = r
		}
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(a *Assembler) {
		a.logger = logging.OrNop(l)
	}
}

// WithSampleRate sets the rate of the assembled track.
func WithSampleRate(rate beep.SampleRate) Option {
	return func(a *Assembler) {
		if rate > 0 {
			a.rate = rate
		}
	}
}

func NewAssembler(synth tts.Synthesizer, mixer audio.Mixer, opts ...Option) (*Assembler, error) {
	if synth == nil {
		return nil, errors.New("speech synthesizer is required")
	}
	if mixer == nil {
		return nil, errors.New("audio mixer is required")
	}
	a := &Assembler{
		synth:    synth,
		mixer:    mixer,
		rate:     audio.DefaultRate,
		reporter: NopReporter{},
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Assemble synthesizes every usable segment, places it at its start time and
// mixes the result with the original audio. Per-segment synthesis failures
// are recorded in the result and do not fail the call.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Result, error) {
	lang := req.Voice.Language
	res := &Result{State: Idle, Segments: make([]SegmentReport, 0, len(req.Segments))}

	fail := func(err error) (*Result, error) {
		res.State = Failed
		a.reporter.Report(Event{Language: lang, State: Failed, Err: err})
		return res, err
	}

	if req.Total < 0 {
		return fail(apperr.Newf(apperr.Input, string(lang), "negative track length %s", req.Total))
	}
	if err := req.Mix.Validate(); err != nil {
		return fail(apperr.New(apperr.Input, string(lang), err))
	}

	res.State = Allocating
	a.reporter.Report(Event{Language: lang, State: Allocating})
	track := audio.Silence(a.rate, req.Total)

	res.State = Synthesizing
	for i, seg := range req.Segments {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		report := a.insert(ctx, track, i, seg, req.Voice)
		res.Segments = append(res.Segments, report)
		a.reporter.Report(Event{
			Language: lang,
			State:    Synthesizing,
			Segment:  i,
			Total:    len(req.Segments),
			Status:   report.Status,
			Err:      report.Err,
		})
	}

	res.State = Mixing
	a.reporter.Report(Event{Language: lang, State: Mixing})
	mixed, err := a.mixer.Mix(req.Original, track, req.Mix, req.Total)
	if err != nil {
		return fail(fmt.Errorf("mix: %w", err))
	}
	if peak := mixed.Peak(); peak > 1 {
		a.logger.Warnw("mixed track clips", "language", lang, "peak", peak)
	}

	res.Track = mixed
	res.State = Done
	a.reporter.Report(Event{Language: lang, State: Done})
	return res, nil
}

func (a *Assembler) insert(ctx context.Context, track *audio.Track, i int, seg subtitle.Segment, voice tts.Voice) SegmentReport {
	report := SegmentReport{Index: i, Status: StatusSkipped, SpeedRatio: 1}

	target := seg.Duration()
	text := strings.TrimSpace(seg.Text)
	if target < minSegment || text == "" {
		return report
	}

	clip, err := a.synth.Synthesize(ctx, text, voice)
	if err == nil && (clip == nil || clip.Len() == 0) {
		err = errors.New("synthesizer returned no audio")
	}
	if err != nil {
		report.Status = StatusFailed
		report.Err = apperr.New(apperr.Synthesis, fmt.Sprintf("%s segment %d", voice.Language, i+1), err)
		a.logger.Warnw("segment synthesis failed",
			"language", voice.Language,
			"segment", i+1,
			"error", err,
		)
		return report
	}
	// work on a private copy at the track rate; synthesizers may cache clips
	clip = clip.Resample(a.rate)

	if length := clip.Duration(); float64(length) > float64(target)*speedThreshold {
		ratio := min(float64(length)/float64(target), maxSpeed)
		fast, err := clip.SpeedUp(ratio)
		switch {
		case err == nil:
			clip = fast
			report.SpeedRatio = ratio
		case errors.Is(err, audio.ErrTooShort):
			a.logger.Debugw("clip too short to speed up", "segment", i+1, "clip", length)
		default:
			a.logger.Warnw("speed-up failed", "segment", i+1, "error", err)
		}
	}

	clip.Truncate(target)
	if clip.Duration() > fadeMinimum {
		clip.Fade(fadeLength, fadeLength)
	}

	if err := track.Overlay(clip, seg.Start); err != nil {
		report.Status = StatusFailed
		report.Err = apperr.New(apperr.Synthesis, fmt.Sprintf("%s segment %d", voice.Language, i+1), err)
		return report
	}

	report.Status = StatusInserted
	report.ClipLength = clip.Duration()
	return report
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/dubbing"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/pipeline"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/tasks"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/transcribe"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/web"
)

type (
	generateRunner func(ctx context.Context, req web.Request, obs pipeline.Observer) (*pipeline.FileResult, error)
	dubRunner      func(ctx context.Context, req web.Request, obs pipeline.Observer, rep dubbing.ProgressReporter) (*dubbing.Report, error)
)

// taskWorker turns web requests into queue jobs.
type taskWorker struct {
	generate generateRunner
	dub      dubRunner
}

func (w taskWorker) Work(req web.Request) tasks.Func {
	if req.Kind == tasks.KindDub {
		return func(ctx context.Context, r tasks.Reporter) (tasks.Outcome, error) {
			return w.runDub(ctx, req, r)
		}
	}
	return func(ctx context.Context, r tasks.Reporter) (tasks.Outcome, error) {
		return w.runGenerate(ctx, req, r)
	}
}

func (w taskWorker) runGenerate(ctx context.Context, req web.Request, r tasks.Reporter) (tasks.Outcome, error) {
	obs := pipeline.ObserverFunc(func(e pipeline.Event) {
		r.Update(e.Stage.Progress(), e.Stage.String())
	})
	res, err := w.generate(ctx, req, obs)
	if res == nil {
		return tasks.Outcome{}, err
	}
	out := tasks.Outcome{Partial: res.Status == pipeline.StatusPartial}
	for _, f := range pipeline.FormatOrder(res.Outputs) {
		out.Outputs = append(out.Outputs, res.Outputs[f])
	}
	return out, err
}

// transcription takes the first 40% of a dub task, speech the rest
const dubTranscribeShare = 40

func (w taskWorker) runDub(ctx context.Context, req web.Request, r tasks.Reporter) (tasks.Outcome, error) {
	obs := pipeline.ObserverFunc(func(e pipeline.Event) {
		if e.Stage == pipeline.StageDone || e.Stage == pipeline.StageFailed {
			return
		}
		r.Update(e.Stage.Progress()*dubTranscribeShare/100, e.Stage.String())
	})
	rep := newDubProgress(len(req.Languages), r)

	report, err := w.dub(ctx, req, obs, rep)
	if err != nil {
		return tasks.Outcome{}, err
	}

	var out tasks.Outcome
	for _, res := range report.Results {
		for _, p := range []string{res.Subtitles, res.TTSAudio, res.VideoWithTTS, res.FinalVideo} {
			if p != "" && (len(out.Outputs) == 0 || out.Outputs[len(out.Outputs)-1] != p) {
				out.Outputs = append(out.Outputs, p)
			}
		}
	}

	errs := report.Errors()
	switch {
	case len(errs) == 0:
		return out, nil
	case report.Count(dubbing.LanguageFailed) == len(report.Results):
		return out, errors.Join(errs...)
	default:
		out.Partial = true
		return out, errors.Join(errs...)
	}
}

// dubProgress folds per-language assembler events into one percentage.
type dubProgress struct {
	reporter tasks.Reporter
	total    int

	mu   sync.Mutex
	done map[language.Code]float64
}

func newDubProgress(languages int, r tasks.Reporter) *dubProgress {
	if languages <= 0 {
		languages = 1
	}
	return &dubProgress{reporter: r, total: languages, done: make(map[language.Code]float64)}
}

func (p *dubProgress) Report(e dubbing.Event) {
	p.mu.Lock()
	switch e.State {
	case dubbing.Synthesizing:
		if e.Total > 0 {
			p.done[e.Language] = float64(e.Segment+1) / float64(e.Total)
		}
	case dubbing.Done, dubbing.Failed:
		p.done[e.Language] = 1
	}
	var sum float64
	for _, f := range p.done {
		sum += f
	}
	percent := dubTranscribeShare + int(sum/float64(p.total)*float64(100-dubTranscribeShare))
	p.mu.Unlock()

	p.reporter.Update(percent, fmt.Sprintf("%s: %s", e.Language, e.State))
}

// serveRunners builds the runners used by the web worker. Transcribers are
// cached per model so every task of the process shares them.
func serveRunners(a *app) taskWorker {
	var (
		mu     sync.Mutex
		cached = map[string]*transcribe.Lazy{}
	)
	transcriber := func(req web.Request) (*transcribe.Lazy, transcribeSettings, error) {
		s := transcribeSettings{
			Provider: a.cfg.Transcription.Provider,
			Model:    a.cfg.Transcription.Model,
			Language: req.Language,
			Device:   a.cfg.Transcription.Device,
		}
		if req.Model != "" && transcribe.Provider(s.Provider) == transcribe.ProviderWhisper {
			s.Model = req.Model
		}
		key := s.Model + "|" + s.Language
		mu.Lock()
		defer mu.Unlock()
		if t, ok := cached[key]; ok {
			return t, s, nil
		}
		t, err := a.transcriber(s)
		if err != nil {
			return nil, s, err
		}
		cached[key] = t
		return t, s, nil
	}

	return taskWorker{
		generate: func(ctx context.Context, req web.Request, obs pipeline.Observer) (*pipeline.FileResult, error) {
			t, _, err := transcriber(req)
			if err != nil {
				return nil, err
			}
			p, err := a.processor(t, obs)
			if err != nil {
				return nil, err
			}
			return p.ProcessFile(ctx, req.Input, req.OutputDir,
				a.pipelineOptions(req.Formats, req.Style, req.IncludeTimestamps, req.Enhance))
		},
		dub: func(ctx context.Context, req web.Request, obs pipeline.Observer, rep dubbing.ProgressReporter) (*dubbing.Report, error) {
			_, ts, err := transcriber(req)
			if err != nil {
				return nil, err
			}
			codes, err := languageCodes(req.Languages)
			if err != nil {
				return nil, err
			}
			return a.dub(ctx, req.Input, req.OutputDir, dubSettings{
				Languages:  codes,
				Transcribe: ts,
				TTS: ttsSettings{
					Backend: a.cfg.TTS.Backend,
					Voice:   a.cfg.TTS.Voice,
					Speed:   a.cfg.TTS.Speed,
				},
				Style:             req.Style,
				OriginalRatio:     a.cfg.Dubbing.OriginalRatio,
				Burn:              a.cfg.Dubbing.BurnSubtitles,
				Translate:         a.cfg.Dubbing.Translate,
				TranslateProvider: a.cfg.Translation.Provider,
				Enhance:           req.Enhance,
			}, obs, rep)
		},
	}
}

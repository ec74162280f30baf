// Package transcribe turns speech audio into timed subtitle segments using a
// hosted model or a local whisper install.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

// transcription result
type Result struct {
	Segments []subtitle.Segment
	Language string
	Duration time.Duration
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

type ConcurrentTranscriber interface {
	Transcriber
	TranscribeWithChunks(
		ctx context.Context,
		chunks []audio.ChunkInfo,
		concurrency int,
	) (*Result, error)
}

// Prober reports media duration. *audio.Processor satisfies it.
type Prober interface {
	GetDuration(ctx context.Context, path string) (time.Duration, error)
}

// transcription service provider
type Provider string

const (
	ProviderWhisper Provider = "whisper"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
)

// Providers in the order the CLI lists them.
func Providers() []Provider {
	return []Provider{ProviderWhisper, ProviderGemini, ProviderOpenAI}
}

// NeedsKey reports whether the provider is a hosted API.
func (p Provider) NeedsKey() bool {
	return p == ProviderGemini || p == ProviderOpenAI
}

// transcription options
type Options struct {
	Language           string // Source language of audio
	TranscriptLanguage string // Output language for transcript (default: "native")
	Model              string
	Prompt             string

	// local whisper only
	Command string
	Device  string

	Prober Prober // optional; fills Result.Duration
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderWhisper:
		return NewWhisperTranscriber(opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// Run transcribes a single file, or its chunks when the backend supports
// concurrent chunk transcription and more than one chunk was provided. A
// transcript without segments is an apperr.Transcription error.
func Run(ctx context.Context, t Transcriber, audioPath string, chunks []audio.ChunkInfo, concurrency int) (*Result, error) {
	var (
		res *Result
		err error
	)
	if ct, ok := t.(ConcurrentTranscriber); ok && len(chunks) > 1 {
		res, err = ct.TranscribeWithChunks(ctx, chunks, concurrency)
	} else {
		res, err = t.Transcribe(ctx, audioPath)
	}
	if err != nil {
		return nil, err
	}
	return checkResult(audioPath, res)
}

// checkResult rejects a transcript with no segments.
func checkResult(audioPath string, res *Result) (*Result, error) {
	if res == nil || len(res.Segments) == 0 {
		return nil, apperr.Newf(apperr.Transcription, filepath.Base(audioPath), "no speech segments recognized")
	}
	return res, nil
}

func probe(ctx context.Context, p Prober, path string) time.Duration {
	if p == nil {
		return 0
	}
	d, err := p.GetDuration(ctx, path)
	if err != nil {
		return 0
	}
	return d
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Package tts turns short texts into speech clips.
package tts

import (
	"context"
	"fmt"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
)

// Voice selects how a clip is spoken.
type Voice struct {
	Language language.Code
	Locale   string
	// backend specific voice name
	Name  string
	Speed float64
}

// Synthesizer renders text as speech. Implementations must be safe for
// concurrent use by different languages.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) (*audio.Track, error)
}

// speech backend
type Backend string

const (
	BackendEdge   Backend = "edge"
	BackendOpenAI Backend = "openai"
	BackendGemini Backend = "gemini"
)

func Backends() []Backend {
	return []Backend{BackendEdge, BackendOpenAI, BackendGemini}
}

// default voice names for the API backends
const (
	DefaultOpenAIVoice = "alloy"
	DefaultGeminiVoice = "Kore"
)

type Options struct {
	Model string
	// voice used for every language by the API backends; edge uses the
	// per-language neural voice unless this is set
	Voice string
	Speed float64

	// external command for the edge backend
	Command     string
	CommandArgs []string
	Decoder     Decoder

	// requests per minute, 0 disables limiting
	RateLimit int
	Retries   int
}

// VoiceFor picks the voice for lang on backend.
func VoiceFor(backend Backend, lang language.Info, opts Options) Voice {
	v := Voice{Language: lang.Code, Locale: lang.Locale, Speed: opts.Speed}
	switch {
	case opts.Voice != "":
		v.Name = opts.Voice
	case backend == BackendOpenAI:
		v.Name = DefaultOpenAIVoice
	case backend == BackendGemini:
		v.Name = DefaultGeminiVoice
	default:
		v.Name = lang.Voice
	}
	return v
}

// creates Synthesizer based on backend, wrapped in a rate limiter when
// opts.RateLimit is set
func Factory(ctx context.Context, backend Backend, apiKey string, opts Options) (Synthesizer, error) {
	var (
		s   Synthesizer
		err error
	)
	switch backend {
	case BackendEdge:
		s, err = NewCommandSynthesizer(opts.Command, opts.CommandArgs, opts.Decoder)
	case BackendOpenAI:
		s, err = NewOpenAISynthesizer(apiKey, opts)
	case BackendGemini:
		s, err = NewGeminiSynthesizer(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported tts backend: %s", backend)
	}
	if err != nil {
		return nil, err
	}
	if opts.RateLimit > 0 || opts.Retries > 0 {
		return NewLimited(s, opts.RateLimit, opts.Retries), nil
	}
	return s, nil
}

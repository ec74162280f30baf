package transcribe

import (
	"context"
	"sync"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
)

// Lazy builds its backend on first use and shares it afterwards. A failed
// construction is remembered and returned to every caller.
type Lazy struct {
	build func(ctx context.Context) (Transcriber, error)

	once sync.Once
	t    Transcriber
	err  error
}

func NewLazy(build func(ctx context.Context) (Transcriber, error)) *Lazy {
	return &Lazy{build: build}
}

// LazyFactory defers Factory until the first transcription.
func LazyFactory(provider Provider, apiKey string, opts Options) *Lazy {
	return NewLazy(func(ctx context.Context) (Transcriber, error) {
		return Factory(ctx, provider, apiKey, opts)
	})
}

func (l *Lazy) get(ctx context.Context) (Transcriber, error) {
	l.once.Do(func() {
		l.t, l.err = l.build(ctx)
	})
	return l.t, l.err
}

func (l *Lazy) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	t, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return t.Transcribe(ctx, audioPath)
}

// TranscribeWithChunks uses the backend's chunked path when it has one.
func (l *Lazy) TranscribeWithChunks(ctx context.Context, chunks []audio.ChunkInfo, concurrency int) (*Result, error) {
	t, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	if ct, ok := t.(ConcurrentTranscriber); ok {
		return ct.TranscribeWithChunks(ctx, chunks, concurrency)
	}
	return transcribeChunks(ctx, t, chunks, concurrency, "")
}

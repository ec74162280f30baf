package tts

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
)

// Limited throttles and retries calls to another Synthesizer. One Limited
// is shared by every language of a run so the quota is global.
type Limited struct {
	next    Synthesizer
	limiter *rate.Limiter
	retries int
	backoff time.Duration
}

// NewLimited allows perMinute requests per minute (0 means unlimited) and
// retries failed requests with exponential backoff.
func NewLimited(next Synthesizer, perMinute, retries int) *Limited {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60.0)
	}
	if retries < 0 {
		retries = 0
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
		retries: retries,
		backoff: time.Second,
	}
}

func (l *Limited) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Track, error) {
	var lastErr error
	for attempt := 0; attempt <= l.retries; attempt++ {
		if attempt > 0 {
			wait := l.backoff << uint(attempt-1)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		if err := l.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		clip, err := l.next.Synthesize(ctx, text, voice)
		if err == nil {
			return clip, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if l.retries > 0 {
		return nil, fmt.Errorf("failed after %d attempts: %w", l.retries+1, lastErr)
	}
	return nil, lastErr
}

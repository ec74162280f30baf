package transcribe

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

// transcribes one chunk and moves its segments to the chunk offset
func transcribeChunk(ctx context.Context, t Transcriber, chunk audio.ChunkInfo) ([]subtitle.Segment, error) {
	result, err := t.Transcribe(ctx, chunk.Path)
	if err != nil {
		return nil, err
	}

	adjusted := make([]subtitle.Segment, len(result.Segments))
	for i, seg := range result.Segments {
		adjusted[i] = seg.Shift(chunk.Start)
	}
	return adjusted, nil
}

// transcribeChunks fans chunks out to t, at most concurrency at once. The
// first failure cancels the remaining chunks.
func transcribeChunks(
	ctx context.Context,
	t Transcriber,
	chunks []audio.ChunkInfo,
	concurrency int,
	lang string,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	perChunk := make([][]subtitle.Segment, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			segments, err := transcribeChunk(gctx, t, chunk)
			if err != nil {
				return fmt.Errorf("chunk %d failed: %w", chunk.Index, err)
			}
			perChunk[i] = segments
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []subtitle.Segment
	for _, segs := range perChunk {
		all = append(all, segs...)
	}

	return &Result{
		Segments: all,
		Language: lang,
		Duration: chunks[len(chunks)-1].End,
	}, nil
}

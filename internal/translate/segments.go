package translate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/logging"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

// NewFunc builds a translator for one target language.
type NewFunc func(ctx context.Context, opts Options) (Translator, error)

// ProviderFunc returns a NewFunc backed by Factory.
func ProviderFunc(provider Provider, apiKey string) NewFunc {
	return func(ctx context.Context, opts Options) (Translator, error) {
		return Factory(ctx, provider, apiKey, opts)
	}
}

// SegmentTranslator rewrites segment text per dub language. Timing is kept.
type SegmentTranslator struct {
	newTranslator NewFunc
	base          Options
	concurrency   int
	logger        *logging.Logger
}

func NewSegmentTranslator(fn NewFunc, base Options, concurrency int, logger *logging.Logger) (*SegmentTranslator, error) {
	if fn == nil {
		return nil, fmt.Errorf("translator constructor is required")
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &SegmentTranslator{
		newTranslator: fn,
		base:          base,
		concurrency:   concurrency,
		logger:        logging.OrNop(logger),
	}, nil
}

func (s *SegmentTranslator) TranslateSegments(
	ctx context.Context,
	segments []subtitle.Segment,
	target language.Info,
) ([]subtitle.Segment, error) {
	opts := s.base
	opts.TargetLanguage = target.Name
	if opts.TargetLanguage == "" {
		opts.TargetLanguage = language.EnglishName(string(target.Code))
	}

	if opts.InputLanguage != "" && strings.EqualFold(opts.InputLanguage, opts.TargetLanguage) {
		out := make([]subtitle.Segment, len(segments))
		copy(out, segments)
		return out, nil
	}

	t, err := s.newTranslator(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}

	items := make([]TranslationItem, 0, len(segments))
	for i, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		items = append(items, TranslationItem{Index: i, Text: seg.Text})
	}

	s.logger.Infow("Translating segments",
		"language", target.Code,
		"items", len(items),
	)

	results, err := Run(ctx, t, items, s.concurrency)
	if err != nil {
		return nil, fmt.Errorf("translation to %s failed: %w", target.Code, err)
	}

	out := make([]subtitle.Segment, len(segments))
	copy(out, segments)
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(out) {
			s.logger.Warnw("Skipping invalid result index",
				"index", r.Index,
				"max", len(out)-1,
			)
			continue
		}
		out[r.Index].Text = r.Text
	}
	return out, nil
}

// FileOptions controls TranslateFile.
type FileOptions struct {
	Overlay     bool
	Concurrency int
}

// TranslateFile translates every entry of f in place. With Overlay the
// original line is kept under the translation. It returns the number of
// entries changed.
func TranslateFile(
	ctx context.Context,
	t Translator,
	f subtitle.File,
	opts FileOptions,
	logger *logging.Logger,
) (int, error) {
	logger = logging.OrNop(logger)

	segments := f.Segments()
	if len(segments) == 0 {
		return 0, fmt.Errorf("subtitle file contains no entries")
	}

	items := make([]TranslationItem, len(segments))
	for i, seg := range segments {
		items[i] = TranslationItem{Index: i, Text: seg.Text}
	}

	logger.Infow("Translating subtitles",
		"items", len(items),
		"concurrency", opts.Concurrency,
	)

	results, err := Run(ctx, t, items, opts.Concurrency)
	if err != nil {
		return 0, fmt.Errorf("translation failed: %w", err)
	}

	changed := 0
	for _, result := range results {
		if result.Index < 0 || result.Index >= len(segments) {
			logger.Warnw("Skipping invalid result index",
				"index", result.Index,
				"max", len(segments)-1,
			)
			continue
		}

		set := f.SetText
		if opts.Overlay {
			set = f.SetTextWithOverlay
		}
		if err := set(result.Index, result.Text); err != nil {
			return changed, fmt.Errorf("failed to set text for entry %d: %w", result.Index, err)
		}
		changed++
	}

	logger.Infow("Translation complete", "results", len(results))
	return changed, nil
}

// OutputPath derives the default output name: video.ja.srt or
// video.ja.overlay.srt.
func OutputPath(input, target string, overlay bool) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if overlay {
		return fmt.Sprintf("%s.%s.overlay%s", base, target, ext)
	}
	return fmt.Sprintf("%s.%s%s", base, target, ext)
}

package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

const defaultOpenAIModel = "whisper-1"

// OpenAITranscriber sends audio to the OpenAI audio endpoints and asks for
// verbose_json so segments keep their timestamps.
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// verbose_json body shared by the transcription and translation endpoints
type whisperVerboseResponse struct {
	Text     string              `json:"text"`
	Segments []transcriptSegment `json:"segments"`
	Language string              `json:"language"`
	Duration float64             `json:"duration"`
}

func NewOpenAITranscriber(
	_ context.Context,
	apiKey string,
	opts Options,
	extra ...option.RequestOption,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key is required (set OPENAI_API_KEY)")
	}
	model := opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAITranscriber{
		client:  openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, extra...)...),
		model:   model,
		options: opts,
	}, nil
}

// Transcribe uploads one audio file. An English transcript of non-English
// speech goes through the translations endpoint; everything else is
// transcribed in the spoken language.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, apperr.New(apperr.Input, audioPath, err)
	}
	defer file.Close()

	duration := probe(ctx, t.options.Prober, audioPath)

	lang := t.options.Language
	var raw, text string
	if t.shouldUseTranslation() {
		lang = "en"
		raw, text, err = t.toEnglish(ctx, file)
	} else {
		raw, text, err = t.native(ctx, file)
	}
	if err != nil {
		return nil, apperr.New(apperr.Transcription, filepath.Base(audioPath), err)
	}

	segments, err := t.parseVerboseJSONResponse(raw, duration)
	if err != nil {
		segments = fallbackSegment(text, duration)
	}
	return &Result{Segments: segments, Language: lang, Duration: duration}, nil
}

func (t *OpenAITranscriber) shouldUseTranslation() bool {
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	return lang == "english" || lang == "en"
}

func (t *OpenAITranscriber) toEnglish(ctx context.Context, file *os.File) (raw, text string, err error) {
	params := openai.AudioTranslationNewParams{
		File:           file,
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}
	resp, err := t.client.Audio.Translations.New(ctx, params)
	if err != nil {
		return "", "", err
	}
	return resp.RawJSON(), resp.Text, nil
}

func (t *OpenAITranscriber) native(ctx context.Context, file *os.File) (raw, text string, err error) {
	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}
	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", "", err
	}
	return resp.RawJSON(), resp.Text, nil
}

// one segment spanning the whole file, used when no timestamps came back
func fallbackSegment(text string, duration time.Duration) []subtitle.Segment {
	text = strings.TrimSpace(text)
	if text == "" || duration <= 0 {
		return nil
	}
	return []subtitle.Segment{{Start: 0, End: duration, Text: text}}
}

// parseVerboseJSONResponse reads a verbose_json body. A body with text but
// no segments becomes one segment spanning the reported duration, or
// fallback when the API reported none.
func (t *OpenAITranscriber) parseVerboseJSONResponse(raw string, fallback time.Duration) ([]subtitle.Segment, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty response")
	}
	var resp whisperVerboseResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}
	if len(resp.Segments) > 0 {
		return toSegments(resp.Segments), nil
	}
	if resp.Duration > 0 {
		fallback = time.Duration(resp.Duration * float64(time.Second))
	}
	if segs := fallbackSegment(resp.Text, fallback); segs != nil {
		return segs, nil
	}
	return nil, fmt.Errorf("no segments or text in response")
}

// TranscribeWithChunks uploads chunks in parallel and stitches the
// segments back onto the source timeline.
func (t *OpenAITranscriber) TranscribeWithChunks(
	ctx context.Context,
	chunks []audio.ChunkInfo,
	concurrency int,
) (*Result, error) {
	return transcribeChunks(ctx, t, chunks, concurrency, t.options.Language)
}

func (t *OpenAITranscriber) Close() error {
	return nil
}

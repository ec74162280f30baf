package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"google.golang.org/genai"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/apperr"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/language"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/subtitle"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiTranscriber uploads audio through the Files API and asks the model
// for a JSON array of timed segments.
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required (set GEMINI_API_KEY)")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := opts.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiTranscriber{client: client, model: model, options: opts}, nil
}

func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if !fileExists(audioPath) {
		return nil, apperr.Newf(apperr.Input, audioPath, "audio file not found")
	}
	name := filepath.Base(audioPath)

	uploaded, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, apperr.New(apperr.Transcription, name, fmt.Errorf("upload: %w", err))
	}
	// uploads expire on their own; deleting early keeps the quota free
	defer func() {
		_, _ = t.client.Files.Delete(context.WithoutCancel(ctx), uploaded.Name, nil)
	}()

	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText(geminiPrompt(t.options)),
		genai.NewPartFromURI(uploaded.URI, uploaded.MIMEType),
	}, genai.RoleUser)}
	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, apperr.New(apperr.Transcription, name, err)
	}

	segments, err := parseTranscriptionResponse(resp)
	if err != nil {
		return nil, apperr.New(apperr.Transcription, name, err)
	}
	return &Result{
		Segments: segments,
		Language: t.options.Language,
		Duration: probe(ctx, t.options.Prober, audioPath),
	}, nil
}

func (t *GeminiTranscriber) TranscribeWithChunks(ctx context.Context, chunks []audio.ChunkInfo, concurrency int) (*Result, error) {
	return transcribeChunks(ctx, t, chunks, concurrency, t.options.Language)
}

func geminiPrompt(opts Options) string {
	lines := []string{
		"Transcribe this audio for subtitles.",
		`Return a JSON array of objects {"start": number, "end": number, "text": string}, one per sentence or short phrase.`,
		"start and end are offsets in seconds from the beginning of the audio.",
	}
	if opts.Language != "" {
		lines = append(lines, fmt.Sprintf("The speech is in %s.", language.EnglishName(opts.Language)))
	}
	if out := strings.TrimSpace(opts.TranscriptLanguage); out != "" && !strings.EqualFold(out, "native") {
		lines = append(lines, fmt.Sprintf("Write the text in %s.", out))
	}
	if opts.Prompt != "" {
		lines = append(lines, opts.Prompt)
	}
	lines = append(lines, "Reply with the JSON array only, without markdown.")
	return strings.Join(lines, "\n")
}

func parseTranscriptionResponse(resp *genai.GenerateContentResponse) ([]subtitle.Segment, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}
	var sb strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
	}

	segments, err := parseTranscript(sb.String())
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return segments, nil
}

func (t *GeminiTranscriber) Close() error {
	return nil
}

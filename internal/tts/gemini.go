package tts

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
)

// Gemini speech output is 24 kHz signed 16-bit mono PCM
const geminiPCMRate = 24000

// implements Synthesizer using Gemini's AUDIO response modality
type GeminiSynthesizer struct {
	client *genai.Client
	model  string
}

func NewGeminiSynthesizer(ctx context.Context, apiKey string, opts Options) (*GeminiSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-preview-tts"
	}

	return &GeminiSynthesizer{client: client, model: model}, nil
}

func (s *GeminiSynthesizer) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Track, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	name := voice.Name
	if name == "" {
		name = DefaultGeminiVoice
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			LanguageCode: voice.Locale,
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: name},
			},
		},
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(text), config)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}

	data, err := inlineAudio(result)
	if err != nil {
		return nil, err
	}
	return audio.DecodePCM16(data, geminiPCMRate, 1)
}

// concatenated inline audio of the first candidate that carries any
func inlineAudio(result *genai.GenerateContentResponse) ([]byte, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		var data []byte
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil {
				data = append(data, part.InlineData.Data...)
			}
		}
		if len(data) > 0 {
			return data, nil
		}
	}
	return nil, fmt.Errorf("no audio in Gemini response")
}

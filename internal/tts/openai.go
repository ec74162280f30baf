package tts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/audio"
)

// OpenAI returns raw PCM as 24 kHz signed 16-bit mono
const openAIPCMRate = 24000

// implements Synthesizer using the OpenAI speech endpoint
type OpenAISynthesizer struct {
	client openai.Client
	model  string
}

func NewOpenAISynthesizer(apiKey string, opts Options, extra ...option.RequestOption) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, extra...)
	client := openai.NewClient(reqOpts...)

	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini-tts"
	}

	return &OpenAISynthesizer{client: client, model: model}, nil
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text string, voice Voice) (*audio.Track, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	params := openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(s.model),
		Voice:          openai.AudioSpeechNewParamsVoice(voice.Name),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	}
	if voice.Speed > 0 && voice.Speed != 1 {
		params.Speed = openai.Float(voice.Speed)
	}

	resp, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty speech response")
	}
	return audio.DecodePCM16(data, openAIPCMRate, 1)
}

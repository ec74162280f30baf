package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/transcribe"
	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/translate"
)

var geminiModels = []string{
	"gemini-3-pro-preview",
	"gemini-3-flash-preview",
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
}

var openAIModels = []string{
	"o1", "o3-mini", "o1-pro", "o3",
	"gpt-5", "gpt-5-nano", "gpt-5-mini", "gpt-5-pro",
	"gpt-5.1", "gpt-5.2", "gpt-5.2-pro",
}

var anthropicModels = []string{
	"claude-opus-4-5",
	"claude-sonnet-4-5",
	"claude-haiku-4-5",
}

var openAITranscriptionModels = []string{
	"whisper-1",
	"gpt-4o-transcribe",
	"gpt-4o-mini-transcribe",
}

func isValidGeminiModel(model string) bool {
	return slices.Contains(geminiModels, model)
}

func isValidOpenAIModel(model string) bool {
	return slices.Contains(openAIModels, model)
}

func isValidAnthropicModel(model string) bool {
	return slices.Contains(anthropicModels, model)
}

// isValidOpenAITranscriptLanguage reports whether OpenAI can produce the
// requested transcript language. The API only transcribes in the spoken
// language or translates to English.
func isValidOpenAITranscriptLanguage(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "native", "english", "en":
		return true
	default:
		return false
	}
}

func validateTranslationModel(provider translate.Provider, model string) error {
	if model == "" {
		return nil
	}
	switch provider {
	case translate.ProviderGemini:
		if !isValidGeminiModel(model) {
			return fmt.Errorf(
				"unsupported Gemini model %q: valid models are %s (use --model-override to bypass)",
				model, strings.Join(geminiModels, ", "),
			)
		}
	case translate.ProviderOpenAI:
		if !isValidOpenAIModel(model) {
			return fmt.Errorf(
				"unsupported OpenAI model %q: valid models are %s (use --model-override to bypass)",
				model, strings.Join(openAIModels, ", "),
			)
		}
	case translate.ProviderAnthropic:
		if !isValidAnthropicModel(model) {
			return fmt.Errorf(
				"unsupported Anthropic model %q: valid models are %s (use --model-override to bypass)",
				model, strings.Join(anthropicModels, ", "),
			)
		}
	default:
		return fmt.Errorf("unsupported provider %q: use gemini, openai or anthropic", provider)
	}
	return nil
}

func validateTranscriptionModel(provider transcribe.Provider, model string) error {
	if model == "" {
		return nil
	}
	switch provider {
	case transcribe.ProviderWhisper:
		if !slices.Contains(transcribe.WhisperModels, model) {
			return fmt.Errorf("unsupported whisper model %q: valid models are %s",
				model, strings.Join(transcribe.WhisperModels, ", "))
		}
	case transcribe.ProviderGemini:
		if !isValidGeminiModel(model) {
			return fmt.Errorf("unsupported Gemini model %q: valid models are %s",
				model, strings.Join(geminiModels, ", "))
		}
	case transcribe.ProviderOpenAI:
		if !slices.Contains(openAITranscriptionModels, model) {
			return fmt.Errorf("unsupported OpenAI transcription model %q: valid models are %s",
				model, strings.Join(openAITranscriptionModels, ", "))
		}
	default:
		return fmt.Errorf("unsupported transcription provider %q: use whisper, gemini or openai", provider)
	}
	return nil
}

// Package audio implements the synthesis stage: text-to-speech providers
// and the Synthesizer that turns a tutor reply into an audio artifact.
package audio

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/snonux/denglish/internal/job"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio speaks text with voice and saves it to outputFile
	GenerateAudio(ctx context.Context, text, voice, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// VoiceSet names the voice used for each target language.
type VoiceSet struct {
	EN string
	DE string
}

// For returns the voice for lang.
func (v VoiceSet) For(lang job.Language) string {
	if lang == job.DE {
		return v.DE
	}
	return v.EN
}

// Default voices per provider.
var (
	OpenAIVoices = VoiceSet{EN: "nova", DE: "shimmer"}
	ESpeakVoices = VoiceSet{EN: "en-us", DE: "de"}
)

// Config holds common configuration for audio providers
type Config struct {
	Provider     string // Provider name: "openai" or "espeak"
	Fallback     string // Optional fallback provider: "espeak" or ""
	OutputFormat string // Output format: "mp3" or "wav"
	Voices       VoiceSet

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts model

	// espeak-ng settings
	ESpeak *ESpeakConfig
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "openai",
		OutputFormat:      "mp3",
		OpenAIModel:       "gpt-4o-mini-tts",
		OpenAISpeed:       1.0,
		OpenAIInstruction: "You are reading a language tutor's feedback to a Vietnamese student. Speak clearly and at a moderate pace. Read English and German example sentences with native pronunciation.",
		ESpeak:            DefaultConfig(),
	}
}

// NewProvider creates the appropriate audio provider based on configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	primary, err := newSingleProvider(config.Provider, config)
	if err != nil {
		return nil, err
	}
	if config.Provider == "espeak" {
		for _, voice := range UnknownVoices(config.VoicesFor(config.Provider)) {
			slog.Warn("voice is not a known espeak-ng voice", "voice", voice)
		}
	}
	if config.Fallback == "" || config.Fallback == config.Provider {
		return primary, nil
	}

	fallback, err := newSingleProvider(config.Fallback, config)
	if err != nil {
		return nil, fmt.Errorf("fallback audio provider: %w", err)
	}

	primaryVoices := config.VoicesFor(config.Provider)
	fallbackVoices := defaultVoicesFor(config.Fallback)
	return NewProviderWithFallback(primary, fallback, map[string]string{
		primaryVoices.EN: fallbackVoices.EN,
		primaryVoices.DE: fallbackVoices.DE,
	}), nil
}

// VoicesFor returns the configured voices for provider, filling gaps with
// that provider's defaults.
func (c *Config) VoicesFor(provider string) VoiceSet {
	voices := defaultVoicesFor(provider)
	if c.Voices.EN != "" {
		voices.EN = c.Voices.EN
	}
	if c.Voices.DE != "" {
		voices.DE = c.Voices.DE
	}
	return voices
}

func defaultVoicesFor(provider string) VoiceSet {
	if provider == "espeak" {
		return ESpeakVoices
	}
	return OpenAIVoices
}

func newSingleProvider(name string, config *Config) (Provider, error) {
	switch name {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	case "espeak":
		return NewESpeakProvider(config.ESpeak)

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", name)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	voiceMap map[string]string
	logger   *slog.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails.
// voiceMap translates primary voice names into fallback voice names; unmapped
// voices are passed through unchanged.
func NewProviderWithFallback(primary, fallback Provider, voiceMap map[string]string) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		voiceMap: voiceMap,
		logger:   slog.Default(),
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text, voice, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, voice, outputFile)
	if err == nil {
		return nil
	}

	fallbackVoice := voice
	if mapped, ok := p.voiceMap[voice]; ok {
		fallbackVoice = mapped
	}
	p.logger.Warn("primary speech provider failed, falling back",
		"primary", p.primary.Name(), "fallback", p.fallback.Name(), "error", err)

	if fbErr := p.fallback.GenerateAudio(ctx, text, fallbackVoice, outputFile); fbErr != nil {
		return fmt.Errorf("primary=%v, fallback=%w", err, fbErr)
	}
	return nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}

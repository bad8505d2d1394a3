package audio

import (
	"context"
	"errors"
	"os"
	"testing"

	"codeberg.org/snonux/denglish/internal/job"
)

// mockProvider implements Provider interface for testing
type mockProvider struct {
	name          string
	generateErr   error
	availableErr  error
	generateCalls int
	lastVoice     string
	payload       []byte
}

func (m *mockProvider) GenerateAudio(ctx context.Context, text, voice, outputFile string) error {
	m.generateCalls++
	m.lastVoice = voice
	if m.generateErr != nil {
		return m.generateErr
	}
	if m.payload != nil {
		return os.WriteFile(outputFile, m.payload, 0600)
	}
	return nil
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) IsAvailable() error {
	return m.availableErr
}

func TestDefaultProviderConfig(t *testing.T) {
	config := DefaultProviderConfig()

	if config.Provider != "openai" {
		t.Errorf("Expected provider 'openai', got '%s'", config.Provider)
	}

	if config.OutputFormat != "mp3" {
		t.Errorf("Expected output format 'mp3', got '%s'", config.OutputFormat)
	}

	if config.OpenAIModel != "gpt-4o-mini-tts" {
		t.Errorf("Expected OpenAI model 'gpt-4o-mini-tts', got '%s'", config.OpenAIModel)
	}

	if config.OpenAISpeed != 1.0 {
		t.Errorf("Expected OpenAI speed 1.0, got %f", config.OpenAISpeed)
	}

	if config.ESpeak == nil {
		t.Error("Expected espeak defaults to be set")
	}
}

func TestVoiceSetFor(t *testing.T) {
	if got := OpenAIVoices.For(job.EN); got != "nova" {
		t.Errorf("For(EN) = %q, want nova", got)
	}
	if got := OpenAIVoices.For(job.DE); got != "shimmer" {
		t.Errorf("For(DE) = %q, want shimmer", got)
	}
	if got := ESpeakVoices.For(job.DE); got != "de" {
		t.Errorf("For(DE) = %q, want de", got)
	}
}

func TestConfigVoicesFor(t *testing.T) {
	tests := []struct {
		name     string
		voices   VoiceSet
		provider string
		want     VoiceSet
	}{
		{"openai defaults", VoiceSet{}, "openai", OpenAIVoices},
		{"espeak defaults", VoiceSet{}, "espeak", ESpeakVoices},
		{"partial override", VoiceSet{DE: "onyx"}, "openai", VoiceSet{EN: "nova", DE: "onyx"}},
		{"full override", VoiceSet{EN: "a", DE: "b"}, "espeak", VoiceSet{EN: "a", DE: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Voices: tt.voices}
			if got := c.VoicesFor(tt.provider); got != tt.want {
				t.Errorf("VoicesFor(%q) = %+v, want %+v", tt.provider, got, tt.want)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:    "nil config uses defaults",
			config:  nil,
			wantErr: true,
			errMsg:  "OpenAI API key is required",
		},
		{
			name: "openai provider without key",
			config: &Config{
				Provider: "openai",
			},
			wantErr: true,
			errMsg:  "OpenAI API key is required",
		},
		{
			name: "unknown provider",
			config: &Config{
				Provider: "unknown",
			},
			wantErr: true,
			errMsg:  "unknown audio provider: unknown",
		},
		{
			name: "unknown fallback",
			config: &Config{
				Provider:  "openai",
				Fallback:  "bogus",
				OpenAIKey: "test-key",
			},
			wantErr: true,
			errMsg:  "fallback audio provider: unknown audio provider: bogus",
		},
		{
			name: "openai with key",
			config: &Config{
				Provider:  "openai",
				OpenAIKey: "test-key",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err != nil && err.Error() != tt.errMsg {
				t.Errorf("NewProvider() error = %v, want %v", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestProviderWithFallback(t *testing.T) {
	primary := &mockProvider{name: "primary"}
	fallback := &mockProvider{name: "fallback"}

	provider := NewProviderWithFallback(primary, fallback, map[string]string{"nova": "en-us"})

	// Test successful primary
	ctx := context.Background()
	err := provider.GenerateAudio(ctx, "test", "nova", "output.mp3")
	if err != nil {
		t.Errorf("GenerateAudio() unexpected error: %v", err)
	}
	if primary.generateCalls != 1 {
		t.Errorf("Expected 1 primary call, got %d", primary.generateCalls)
	}
	if fallback.generateCalls != 0 {
		t.Errorf("Expected 0 fallback calls, got %d", fallback.generateCalls)
	}

	// Test primary failure, fallback success with mapped voice
	primary.generateErr = errors.New("primary failed")
	primary.generateCalls = 0

	err = provider.GenerateAudio(ctx, "test", "nova", "output.mp3")
	if err != nil {
		t.Errorf("GenerateAudio() unexpected error: %v", err)
	}
	if primary.generateCalls != 1 {
		t.Errorf("Expected 1 primary call, got %d", primary.generateCalls)
	}
	if fallback.generateCalls != 1 {
		t.Errorf("Expected 1 fallback call, got %d", fallback.generateCalls)
	}
	if fallback.lastVoice != "en-us" {
		t.Errorf("Expected fallback voice en-us, got %q", fallback.lastVoice)
	}

	// Unmapped voices pass through
	if err := provider.GenerateAudio(ctx, "test", "onyx", "output.mp3"); err != nil {
		t.Errorf("GenerateAudio() unexpected error: %v", err)
	}
	if fallback.lastVoice != "onyx" {
		t.Errorf("Expected fallback voice onyx, got %q", fallback.lastVoice)
	}

	// Test both fail
	fallbackErr := errors.New("fallback failed")
	fallback.generateErr = fallbackErr

	err = provider.GenerateAudio(ctx, "test", "nova", "output.mp3")
	if err == nil {
		t.Fatal("GenerateAudio() expected error when both providers fail")
	}
	if !errors.Is(err, fallbackErr) {
		t.Errorf("Expected error to wrap fallback error, got %v", err)
	}
}

func TestProviderWithFallbackName(t *testing.T) {
	primary := &mockProvider{name: "primary"}
	fallback := &mockProvider{name: "fallback"}

	provider := NewProviderWithFallback(primary, fallback, nil)

	expected := "primary (fallback: fallback)"
	if provider.Name() != expected {
		t.Errorf("Name() = %v, want %v", provider.Name(), expected)
	}
}

func TestProviderWithFallbackIsAvailable(t *testing.T) {
	primary := &mockProvider{name: "primary"}
	fallback := &mockProvider{name: "fallback"}

	provider := NewProviderWithFallback(primary, fallback, nil)

	// Both available
	err := provider.IsAvailable()
	if err != nil {
		t.Errorf("IsAvailable() unexpected error: %v", err)
	}

	// Primary unavailable, fallback available
	primary.availableErr = errors.New("primary unavailable")
	err = provider.IsAvailable()
	if err != nil {
		t.Errorf("IsAvailable() unexpected error when fallback available: %v", err)
	}

	// Primary available, fallback unavailable
	primary.availableErr = nil
	fallback.availableErr = errors.New("fallback unavailable")
	err = provider.IsAvailable()
	if err != nil {
		t.Errorf("IsAvailable() unexpected error when primary available: %v", err)
	}

	// Both unavailable
	primary.availableErr = errors.New("primary unavailable")
	err = provider.IsAvailable()
	if err == nil {
		t.Error("IsAvailable() expected error when both providers unavailable")
	}
}

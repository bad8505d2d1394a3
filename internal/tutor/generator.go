package tutor

import (
	"context"
	"fmt"
)

// Generator produces a reply for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt, params Params) (string, error)
	Name() string
}

// Config selects and configures a generator.
type Config struct {
	Provider string // "openai" or "gemini"
	Model    string

	OpenAIKey string
	GeminiKey string

	Params Params
}

// DefaultConfig returns the default generator configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: "openai",
		Params:   DefaultParams(),
	}
}

// NewGenerator creates the generator named by config.Provider.
func NewGenerator(ctx context.Context, config *Config) (Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "openai":
		return NewOpenAIGenerator(config.OpenAIKey, config.Model)
	case "gemini":
		return NewGeminiGenerator(ctx, config.GeminiKey, config.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", config.Provider)
	}
}

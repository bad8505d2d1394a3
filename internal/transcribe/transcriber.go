// Package transcribe turns recorded speech into text. The cloud adapter
// uses OpenAI Whisper; the local adapter runs a whisper.cpp style binary.
package transcribe

import (
	"context"
	"fmt"
)

// Result is the outcome of a transcription.
type Result struct {
	Text string
	// Language is the language the engine detected, if it reports one.
	Language string
}

// Transcriber converts the audio file at path into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (Result, error)
	Name() string
}

// Config selects and configures a transcriber.
type Config struct {
	Provider string // "openai" or "command"

	OpenAIKey   string
	OpenAIModel string // "whisper-1"

	Command     string // path of the local binary
	CommandArgs []string
}

// DefaultConfig returns the default transcriber configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:    "openai",
		OpenAIModel: "whisper-1",
		Command:     "whisper-cli",
	}
}

// New creates the transcriber named by config.Provider.
func New(config *Config) (Transcriber, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "openai":
		return NewOpenAIWhisper(config)
	case "command":
		return NewCommand(config.Command, config.CommandArgs...)
	default:
		return nil, fmt.Errorf("unknown transcription provider: %s", config.Provider)
	}
}

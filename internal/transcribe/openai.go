package transcribe

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIWhisper transcribes audio with the OpenAI transcription API.
type OpenAIWhisper struct {
	client *openai.Client
	model  string
}

// NewOpenAIWhisper creates a Whisper transcriber.
func NewOpenAIWhisper(config *Config) (*OpenAIWhisper, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := config.OpenAIModel
	if model == "" {
		model = openai.Whisper1
	}

	return &OpenAIWhisper{
		client: openai.NewClient(config.OpenAIKey),
		model:  model,
	}, nil
}

// Transcribe uploads the file at path and returns the recognized text.
func (w *OpenAIWhisper) Transcribe(ctx context.Context, path string) (Result, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return Result{}, fmt.Errorf("OpenAI transcription API error: %w", err)
	}

	return Result{Text: resp.Text, Language: resp.Language}, nil
}

// Name returns the provider name
func (w *OpenAIWhisper) Name() string {
	return "openai"
}

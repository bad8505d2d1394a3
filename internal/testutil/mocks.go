package testutil

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"codeberg.org/snonux/denglish/internal/ocr"
	"codeberg.org/snonux/denglish/internal/transcribe"
	"codeberg.org/snonux/denglish/internal/tutor"
)

// MockTranscriber mocks a speech recognition engine
type MockTranscriber struct {
	Text     string
	Language string
	Err      error
	Panic    any

	mu    sync.Mutex
	Calls []string
}

// Transcribe records the audio path and returns the canned result
func (m *MockTranscriber) Transcribe(ctx context.Context, path string) (transcribe.Result, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, path)
	m.mu.Unlock()

	if m.Panic != nil {
		panic(m.Panic)
	}
	if _, err := os.Stat(path); err != nil {
		return transcribe.Result{}, fmt.Errorf("mock transcriber: %w", err)
	}
	if m.Err != nil {
		return transcribe.Result{}, m.Err
	}
	return transcribe.Result{Text: m.Text, Language: m.Language}, nil
}

func (m *MockTranscriber) Name() string { return "mock-stt" }

// CallCount returns the number of Transcribe calls
func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockRecognizer mocks an OCR engine
type MockRecognizer struct {
	Text string
	Err  error

	mu       sync.Mutex
	Profiles []ocr.Profile
}

// Recognize records the profile and returns the canned text
func (m *MockRecognizer) Recognize(ctx context.Context, img image.Image, profile ocr.Profile) (string, error) {
	m.mu.Lock()
	m.Profiles = append(m.Profiles, profile)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

func (m *MockRecognizer) Name() string { return "mock-ocr" }

// LastProfile returns the profile of the most recent call
func (m *MockRecognizer) LastProfile() ocr.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Profiles) == 0 {
		return ""
	}
	return m.Profiles[len(m.Profiles)-1]
}

// MockGenerator mocks a language model
type MockGenerator struct {
	Reply string
	Err   error

	mu      sync.Mutex
	Prompts []tutor.Prompt
}

// Generate records the prompt and returns the canned reply. An empty
// Reply echoes the system prompt.
func (m *MockGenerator) Generate(ctx context.Context, prompt tutor.Prompt, params tutor.Params) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Reply == "" {
		return "Correction: " + prompt.System, nil
	}
	return m.Reply, nil
}

func (m *MockGenerator) Name() string { return "mock-llm" }

// LastPrompt returns the most recent prompt
func (m *MockGenerator) LastPrompt() tutor.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return tutor.Prompt{}
	}
	return m.Prompts[len(m.Prompts)-1]
}

// MockSpeech mocks a text-to-speech provider
type MockSpeech struct {
	Audio []byte // written to the output file; nil means MP3Header
	Err   error

	mu     sync.Mutex
	Voices []string
	Files  []string
}

// GenerateAudio records the voice and writes the canned audio
func (m *MockSpeech) GenerateAudio(ctx context.Context, text, voice, outputFile string) error {
	m.mu.Lock()
	m.Voices = append(m.Voices, voice)
	m.Files = append(m.Files, outputFile)
	m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	data := m.Audio
	if data == nil {
		data = MP3Header
	}
	return os.WriteFile(outputFile, data, 0600)
}

func (m *MockSpeech) Name() string { return "mock-tts" }

func (m *MockSpeech) IsAvailable() error { return nil }

// LastVoice returns the voice of the most recent call
func (m *MockSpeech) LastVoice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Voices) == 0 {
		return ""
	}
	return m.Voices[len(m.Voices)-1]
}

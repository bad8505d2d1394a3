package audio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codeberg.org/snonux/denglish/internal/job"
	"codeberg.org/snonux/denglish/internal/scratch"
)

func TestSynthesizerVoice(t *testing.T) {
	s := NewSynthesizer(&mockProvider{name: "mock"}, OpenAIVoices, "mp3", nil)

	if got := s.Voice(job.EN); got != "nova" {
		t.Errorf("Voice(EN) = %q, want nova", got)
	}
	if got := s.Voice(job.DE); got != "shimmer" {
		t.Errorf("Voice(DE) = %q, want shimmer", got)
	}
}

func TestSynthesize(t *testing.T) {
	provider := &mockProvider{name: "mock", payload: []byte("ID3fake")}
	s := NewSynthesizer(provider, OpenAIVoices, "mp3", nil)
	tracker := scratch.NewTracker(t.TempDir())

	data, err := s.Synthesize(context.Background(), "Gut gemacht!", job.DE, tracker)
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if string(data) != "ID3fake" {
		t.Errorf("Synthesize() = %q, want provider payload", data)
	}
	if provider.lastVoice != "shimmer" {
		t.Errorf("Expected German voice, got %q", provider.lastVoice)
	}

	artifacts := tracker.Artifacts()
	if len(artifacts) != 1 {
		t.Fatalf("Expected 1 tracked artifact, got %d", len(artifacts))
	}
	if artifacts[0].Purpose != scratch.OutputAudio {
		t.Errorf("Expected output audio artifact, got %v", artifacts[0].Purpose)
	}
	if !strings.HasSuffix(artifacts[0].Path, ".mp3") {
		t.Errorf("Expected .mp3 artifact, got %s", artifacts[0].Path)
	}

	if err := tracker.ReleaseAll(); err != nil {
		t.Fatalf("ReleaseAll() error: %v", err)
	}
	if tracker.Removed() != tracker.Created() {
		t.Errorf("Removed %d of %d artifacts", tracker.Removed(), tracker.Created())
	}
}

func TestSynthesizeFailures(t *testing.T) {
	tests := []struct {
		name     string
		provider *mockProvider
	}{
		{"provider error", &mockProvider{name: "mock", generateErr: errors.New("quota exceeded")}},
		{"empty output", &mockProvider{name: "mock"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(tt.provider, OpenAIVoices, "wav", nil)
			tracker := scratch.NewTracker(t.TempDir())

			data, err := s.Synthesize(context.Background(), "hi", job.EN, tracker)
			if err == nil {
				t.Fatal("Synthesize() expected error")
			}
			if data != nil {
				t.Error("Expected no audio on failure")
			}
			if kind := job.KindOf(err); kind != job.SynthesisFailed {
				t.Errorf("KindOf() = %v, want SynthesisFailed", kind)
			}
			if tracker.Created() != 1 {
				t.Errorf("Expected the artifact to be tracked, got %d", tracker.Created())
			}
			_ = tracker.ReleaseAll()
			if tracker.Removed() != 1 {
				t.Errorf("Expected the artifact to be removed, got %d", tracker.Removed())
			}
		})
	}
}

func TestSynthesizeMissingScratchDir(t *testing.T) {
	s := NewSynthesizer(&mockProvider{name: "mock"}, OpenAIVoices, "mp3", nil)
	tracker := scratch.NewTracker("/nonexistent/denglish/scratch")

	_, err := s.Synthesize(context.Background(), "hi", job.EN, tracker)
	if job.KindOf(err) != job.SynthesisFailed {
		t.Errorf("Expected SynthesisFailed, got %v", err)
	}
	if tracker.Created() != 0 {
		t.Errorf("Expected nothing tracked, got %d", tracker.Created())
	}
}

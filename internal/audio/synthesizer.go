package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"codeberg.org/snonux/denglish/internal/job"
	"codeberg.org/snonux/denglish/internal/scratch"
)

// Synthesizer runs the synthesis stage on top of a Provider.
type Synthesizer struct {
	provider Provider
	voices   VoiceSet
	suffix   string
	logger   *slog.Logger
}

// NewSynthesizer creates a synthesizer writing format ("mp3", "wav", ...)
// artifacts with the given per-language voices.
func NewSynthesizer(provider Provider, voices VoiceSet, format string, logger *slog.Logger) *Synthesizer {
	if format == "" {
		format = "mp3"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		provider: provider,
		voices:   voices,
		suffix:   "." + strings.TrimPrefix(format, "."),
		logger:   logger,
	}
}

// Voice returns the voice used for lang.
func (s *Synthesizer) Voice(lang job.Language) string {
	return s.voices.For(lang)
}

// Synthesize speaks text in the voice for lang and returns the audio
// bytes. The output file and any provider scratch files are tracked by
// tracker.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, lang job.Language, tracker *scratch.Tracker) ([]byte, error) {
	voice := s.Voice(lang)

	artifact, err := tracker.Create(scratch.OutputAudio, s.suffix)
	if err != nil {
		return nil, job.Wrap(job.SynthesisFailed, err, "speech synthesis failed")
	}

	s.logger.Debug("synthesizing reply", "provider", s.provider.Name(), "voice", voice, "lang", lang.Code())

	// Providers that need their own scratch files find the tracker in ctx
	if err := s.provider.GenerateAudio(scratch.WithTracker(ctx, tracker), text, voice, artifact.Path); err != nil {
		return nil, job.Wrap(job.SynthesisFailed, err, "speech synthesis failed (%s)", s.provider.Name())
	}

	data, err := os.ReadFile(artifact.Path)
	if err != nil {
		return nil, job.Wrap(job.SynthesisFailed, err, "failed to read synthesized audio")
	}
	if len(data) == 0 {
		return nil, job.Wrap(job.SynthesisFailed, fmt.Errorf("provider %s wrote no data", s.provider.Name()), "speech synthesis failed")
	}

	return data, nil
}

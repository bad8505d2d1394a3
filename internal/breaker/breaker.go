// Package breaker guards the external engines with circuit breakers so a
// failing engine is skipped quickly instead of stalling every job.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/denglish/internal/audio"
	"codeberg.org/snonux/denglish/internal/ocr"
	"codeberg.org/snonux/denglish/internal/transcribe"
	"codeberg.org/snonux/denglish/internal/tutor"
)

// Config controls when a breaker opens and how long it stays open.
type Config struct {
	Enabled     bool
	MaxFailures uint32        // consecutive failures before opening
	Timeout     time.Duration // open period before a trial request
}

// DefaultConfig returns the default breaker settings.
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		MaxFailures: 5,
		Timeout:     30 * time.Second,
	}
}

func newBreaker(name string, config Config, logger *slog.Logger) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = slog.Default()
	}
	maxFailures := config.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultConfig().MaxFailures
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// A caller giving up says nothing about the engine's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "engine", name, "from", from.String(), "to", to.String())
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s unavailable: %w", cb.Name(), err)
		}
		return zero, err
	}
	return result.(T), nil
}

// Transcriber guards a transcribe.Transcriber.
type Transcriber struct {
	next transcribe.Transcriber
	cb   *gobreaker.CircuitBreaker
}

// WrapTranscriber returns next guarded by a breaker, or next itself when
// breakers are disabled.
func WrapTranscriber(next transcribe.Transcriber, config Config, logger *slog.Logger) transcribe.Transcriber {
	if next == nil || !config.Enabled {
		return next
	}
	return &Transcriber{next: next, cb: newBreaker("transcriber "+next.Name(), config, logger)}
}

func (t *Transcriber) Transcribe(ctx context.Context, path string) (transcribe.Result, error) {
	return execute(t.cb, func() (transcribe.Result, error) {
		return t.next.Transcribe(ctx, path)
	})
}

func (t *Transcriber) Name() string { return t.next.Name() }

// Recognizer guards an ocr.Recognizer.
type Recognizer struct {
	next ocr.Recognizer
	cb   *gobreaker.CircuitBreaker
}

// WrapRecognizer returns next guarded by a breaker.
func WrapRecognizer(next ocr.Recognizer, config Config, logger *slog.Logger) ocr.Recognizer {
	if next == nil || !config.Enabled {
		return next
	}
	return &Recognizer{next: next, cb: newBreaker("recognizer "+next.Name(), config, logger)}
}

func (r *Recognizer) Recognize(ctx context.Context, img image.Image, profile ocr.Profile) (string, error) {
	return execute(r.cb, func() (string, error) {
		return r.next.Recognize(ctx, img, profile)
	})
}

func (r *Recognizer) Name() string { return r.next.Name() }

// Generator guards a tutor.Generator.
type Generator struct {
	next tutor.Generator
	cb   *gobreaker.CircuitBreaker
}

// WrapGenerator returns next guarded by a breaker.
func WrapGenerator(next tutor.Generator, config Config, logger *slog.Logger) tutor.Generator {
	if next == nil || !config.Enabled {
		return next
	}
	return &Generator{next: next, cb: newBreaker("generator "+next.Name(), config, logger)}
}

func (g *Generator) Generate(ctx context.Context, prompt tutor.Prompt, params tutor.Params) (string, error) {
	return execute(g.cb, func() (string, error) {
		return g.next.Generate(ctx, prompt, params)
	})
}

func (g *Generator) Name() string { return g.next.Name() }

// Speech guards an audio.Provider.
type Speech struct {
	next audio.Provider
	cb   *gobreaker.CircuitBreaker
}

// WrapSpeech returns next guarded by a breaker.
func WrapSpeech(next audio.Provider, config Config, logger *slog.Logger) audio.Provider {
	if next == nil || !config.Enabled {
		return next
	}
	return &Speech{next: next, cb: newBreaker("speech "+next.Name(), config, logger)}
}

func (s *Speech) GenerateAudio(ctx context.Context, text, voice, outputFile string) error {
	_, err := execute(s.cb, func() (struct{}, error) {
		return struct{}{}, s.next.GenerateAudio(ctx, text, voice, outputFile)
	})
	return err
}

func (s *Speech) Name() string { return s.next.Name() }

func (s *Speech) IsAvailable() error {
	if s.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s: %w", s.cb.Name(), gobreaker.ErrOpenState)
	}
	return s.next.IsAvailable()
}

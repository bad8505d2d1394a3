package processor

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/snonux/denglish/internal/audio"
	"codeberg.org/snonux/denglish/internal/breaker"
	"codeberg.org/snonux/denglish/internal/extract"
	"codeberg.org/snonux/denglish/internal/ocr"
	"codeberg.org/snonux/denglish/internal/pipeline"
	"codeberg.org/snonux/denglish/internal/transcribe"
	"codeberg.org/snonux/denglish/internal/tutor"
)

// providerNone disables a recognition engine; jobs of that modality then
// fail extraction.
const providerNone = "none"

// Engines are the external collaborators of the pipeline.
type Engines struct {
	Transcriber transcribe.Transcriber
	Recognizer  ocr.Recognizer
	Generator   tutor.Generator
	Speech      audio.Provider
}

// NewEngines creates the engines named by the settings.
func NewEngines(ctx context.Context, s Settings) (*Engines, error) {
	var (
		engines Engines
		err     error
	)

	if s.Transcribe.Provider != providerNone {
		if engines.Transcriber, err = transcribe.New(&s.Transcribe); err != nil {
			return nil, fmt.Errorf("speech recognition: %w", err)
		}
	}

	if s.OCR.Provider != providerNone {
		if engines.Recognizer, err = ocr.New(ctx, &s.OCR); err != nil {
			return nil, fmt.Errorf("text recognition: %w", err)
		}
	}

	if engines.Generator, err = tutor.NewGenerator(ctx, &s.LLM); err != nil {
		return nil, fmt.Errorf("language model: %w", err)
	}

	if engines.Speech, err = audio.NewProvider(&s.Audio); err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}
	if err := engines.Speech.IsAvailable(); err != nil {
		return nil, fmt.Errorf("speech synthesis: %w", err)
	}

	return &engines, nil
}

// Guarded returns the engines wrapped in circuit breakers.
func (e *Engines) Guarded(config breaker.Config, logger *slog.Logger) *Engines {
	return &Engines{
		Transcriber: breaker.WrapTranscriber(e.Transcriber, config, logger),
		Recognizer:  breaker.WrapRecognizer(e.Recognizer, config, logger),
		Generator:   breaker.WrapGenerator(e.Generator, config, logger),
		Speech:      breaker.WrapSpeech(e.Speech, config, logger),
	}
}

// Stages wraps the engines into pipeline stages.
func (e *Engines) Stages(s Settings, logger *slog.Logger) pipeline.Stages {
	return pipeline.Stages{
		Extractor:   extract.New(e.Transcriber, e.Recognizer, s.OCR.Preprocess, logger),
		Corrector:   tutor.NewCorrector(e.Generator, s.LLM.Params),
		Synthesizer: audio.NewSynthesizer(e.Speech, s.Audio.VoicesFor(s.Audio.Provider), s.Audio.OutputFormat, logger),
	}
}

// Health reports whether jobs can currently be spoken. A speech breaker
// that is open makes every job fail, so it counts as unhealthy.
func (e *Engines) Health() error {
	if e.Speech == nil {
		return fmt.Errorf("no speech provider")
	}
	return e.Speech.IsAvailable()
}

// Package extract turns a resolved job input into plain text.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"codeberg.org/snonux/denglish/internal/job"
	"codeberg.org/snonux/denglish/internal/ocr"
	"codeberg.org/snonux/denglish/internal/scratch"
	"codeberg.org/snonux/denglish/internal/transcribe"
)

// Extractor runs the extraction stage. Engines may be nil when the
// corresponding modality is not served; such inputs fail extraction.
type Extractor struct {
	transcriber transcribe.Transcriber
	recognizer  ocr.Recognizer
	preprocess  ocr.PreprocessConfig
	logger      *slog.Logger
}

// New creates an extractor.
func New(transcriber transcribe.Transcriber, recognizer ocr.Recognizer, preprocess ocr.PreprocessConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		transcriber: transcriber,
		recognizer:  recognizer,
		preprocess:  preprocess,
		logger:      logger,
	}
}

// Extract converts input into text. Audio input creates exactly one
// tracked artifact; image and text input create none.
func (e *Extractor) Extract(ctx context.Context, input job.Input, lang job.Language, tracker *scratch.Tracker) (job.ExtractedText, error) {
	var (
		text string
		err  error
	)

	switch in := input.(type) {
	case job.AudioInput:
		text, err = e.fromAudio(ctx, in, tracker)
	case job.ImageInput:
		text, err = e.fromImage(ctx, in, lang)
	case job.TextInput:
		text = in.Text
	default:
		return job.ExtractedText{}, job.Errorf(job.InternalError, "unsupported input type %T", input)
	}
	if err != nil {
		return job.ExtractedText{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return job.ExtractedText{}, job.Errorf(job.ExtractionFailed, "no %s content could be extracted", input.Modality())
	}

	return job.ExtractedText{Value: text, Source: input.Modality()}, nil
}

func (e *Extractor) fromAudio(ctx context.Context, in job.AudioInput, tracker *scratch.Tracker) (string, error) {
	data, err := DecodeBase64(in.Encoded)
	if err != nil {
		return "", job.Wrap(job.DecodeFailed, err, "invalid audio_base64")
	}
	if e.transcriber == nil {
		return "", job.Errorf(job.ExtractionFailed, "speech recognition is not configured")
	}

	artifact, err := tracker.Create(scratch.InputAudio, ".wav")
	if err != nil {
		return "", job.Wrap(job.InternalError, err, "failed to stage input audio")
	}
	if err := os.WriteFile(artifact.Path, data, 0600); err != nil {
		return "", job.Wrap(job.InternalError, err, "failed to stage input audio")
	}

	result, err := e.transcriber.Transcribe(ctx, artifact.Path)
	if err != nil {
		return "", job.Wrap(job.ExtractionFailed, err, "speech recognition failed (%s)", e.transcriber.Name())
	}

	if result.Language != "" {
		e.logger.Debug("transcription language detected", "language", result.Language, "engine", e.transcriber.Name())
	}
	return result.Text, nil
}

func (e *Extractor) fromImage(ctx context.Context, in job.ImageInput, lang job.Language) (string, error) {
	data, err := DecodeBase64(in.Encoded)
	if err != nil {
		return "", job.Wrap(job.DecodeFailed, err, "invalid image_base64")
	}

	img, format, err := ocr.DecodeImage(data)
	if err != nil {
		return "", job.Wrap(job.DecodeFailed, err, "unreadable image")
	}
	if e.recognizer == nil {
		return "", job.Errorf(job.ExtractionFailed, "text recognition is not configured")
	}

	profile := ocr.ProfileFor(lang)
	bounds := img.Bounds()
	e.logger.Debug("recognizing image", "format", format,
		"size", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()), "profile", profile)

	text, err := e.recognizer.Recognize(ctx, ocr.Preprocess(img, e.preprocess), profile)
	if err != nil {
		return "", job.Wrap(job.ExtractionFailed, err, "text recognition failed (%s)", e.recognizer.Name())
	}
	return text, nil
}

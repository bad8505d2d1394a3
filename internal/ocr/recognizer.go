// Package ocr recognizes text in images. It decodes the common image
// formats, applies optional deterministic preprocessing and hands the
// result to a recognition engine together with a language profile.
package ocr

import (
	"context"
	"fmt"
	"image"

	"codeberg.org/snonux/denglish/internal/job"
)

// Profile is a recognition language profile in Tesseract notation.
type Profile string

const (
	English Profile = "eng"
	German  Profile = "deu"
)

// ProfileFor returns the recognition profile for a target language.
func ProfileFor(lang job.Language) Profile {
	if lang == job.EN {
		return English
	}
	return German
}

// Recognizer extracts text from an image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, profile Profile) (string, error)
	Name() string
}

// Config selects and configures a recognizer.
type Config struct {
	Provider string // "tesseract" or "gemini"

	TesseractCommand string

	GeminiKey   string
	GeminiModel string

	Preprocess PreprocessConfig
}

// DefaultConfig returns the default recognizer configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:         "tesseract",
		TesseractCommand: "tesseract",
		GeminiModel:      "gemini-2.5-flash",
		Preprocess:       DefaultPreprocessConfig(),
	}
}

// New creates the recognizer named by config.Provider.
func New(ctx context.Context, config *Config) (Recognizer, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case "tesseract":
		return NewTesseract(config.TesseractCommand)
	case "gemini":
		return NewGemini(ctx, config.GeminiKey, config.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown OCR provider: %s", config.Provider)
	}
}

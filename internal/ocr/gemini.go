package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"google.golang.org/genai"
)

var profileNames = map[Profile]string{
	English: "English",
	German:  "German",
}

const geminiOCRInstruction = `You are an OCR engine. Transcribe every piece of text visible in the image exactly as written, including mistakes. The text is expected to be in %s. Output only the transcribed text, with no commentary. Output nothing if the image contains no text.`

// Gemini recognizes text with a Gemini vision model.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini backed recognizer.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Recognize sends the image to Gemini and returns the transcription.
func (g *Gemini) Recognize(ctx context.Context, img image.Image, profile Profile) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image for Gemini: %w", err)
	}

	name, ok := profileNames[profile]
	if !ok {
		name = string(profile)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(fmt.Sprintf(geminiOCRInstruction, name)),
			genai.NewPartFromBytes(buf.Bytes(), "image/png"),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini OCR error: %w", err)
	}
	return resp.Text(), nil
}

// Name returns the provider name
func (g *Gemini) Name() string {
	return "gemini"
}

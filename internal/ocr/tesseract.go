package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"
)

// Tesseract runs the tesseract CLI, feeding a PNG on stdin and reading
// the recognized text from stdout.
type Tesseract struct {
	path string
}

// NewTesseract locates the tesseract binary.
func NewTesseract(binary string) (*Tesseract, error) {
	if binary == "" {
		binary = "tesseract"
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("tesseract is not installed or not in PATH: %w", err)
	}

	return &Tesseract{path: path}, nil
}

// Recognize runs tesseract with the given language profile.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, profile Profile) (string, error) {
	var input bytes.Buffer
	if err := png.Encode(&input, img); err != nil {
		return "", fmt.Errorf("failed to encode image for tesseract: %w", err)
	}

	cmd := exec.CommandContext(ctx, t.path, "stdin", "stdout", "-l", string(profile))
	cmd.Stdin = &input

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w\nOutput: %s", err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

// Name returns the provider name
func (t *Tesseract) Name() string {
	return "tesseract"
}

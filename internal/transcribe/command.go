package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Command runs a local speech-to-text binary. The audio path is appended
// as the last argument and the transcript is read from stdout.
type Command struct {
	path string
	args []string
}

// NewCommand creates a transcriber that shells out to binary.
func NewCommand(binary string, args ...string) (*Command, error) {
	if binary == "" {
		return nil, fmt.Errorf("transcription command is required")
	}

	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%s is not installed or not in PATH: %w", binary, err)
	}

	return &Command{path: path, args: args}, nil
}

// Transcribe runs the binary on the audio file at path.
func (c *Command) Transcribe(ctx context.Context, path string) (Result, error) {
	args := append(append([]string{}, c.args...), path)
	cmd := exec.CommandContext(ctx, c.path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("transcription command failed: %w\nOutput: %s", err, strings.TrimSpace(stderr.String()))
	}

	return Result{Text: stdout.String()}, nil
}

// Name returns the provider name
func (c *Command) Name() string {
	return "command"
}

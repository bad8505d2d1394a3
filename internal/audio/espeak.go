package audio

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"codeberg.org/snonux/denglish/internal/scratch"
)

// waitDelay bounds how long a killed engine may keep its output pipes open.
const waitDelay = 2 * time.Second

// ESpeakConfig holds configuration for espeak-ng audio generation
type ESpeakConfig struct {
	Speed     int // Speech speed in words per minute (default: 150)
	Pitch     int // Pitch adjustment, 0 to 99 (default: 50)
	Amplitude int // Volume/amplitude, 0 to 200 (default: 100)
	WordGap   int // Gap between words in 10ms units (default: 0)
}

// DefaultConfig returns the default espeak-ng configuration
func DefaultConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Speed:     150,
		Pitch:     50,
		Amplitude: 100,
		WordGap:   0,
	}
}

// ESpeak provides an interface to the espeak-ng text-to-speech engine
type ESpeak struct {
	config *ESpeakConfig
}

// New creates a new ESpeak instance with the given configuration. Out of
// range values are clamped.
func New(config *ESpeakConfig) (*ESpeak, error) {
	// Check if espeak-ng is installed
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}

	if config == nil {
		config = DefaultConfig()
	}

	e := &ESpeak{config: &ESpeakConfig{}}
	e.SetSpeed(config.Speed)
	e.SetPitch(config.Pitch)
	e.SetAmplitude(config.Amplitude)
	e.SetWordGap(config.WordGap)
	return e, nil
}

// buildArgs assembles the espeak-ng command line
func (e *ESpeak) buildArgs(text, voice, outputFile string) []string {
	args := []string{
		"-v", voice, // Voice selection
		"-s", fmt.Sprintf("%d", e.config.Speed), // Speed
		"-p", fmt.Sprintf("%d", e.config.Pitch), // Pitch
		"-a", fmt.Sprintf("%d", e.config.Amplitude), // Amplitude/volume
	}

	// Add word gap if specified
	if e.config.WordGap > 0 {
		args = append(args, "-g", fmt.Sprintf("%d", e.config.WordGap))
	}

	// The text goes last, after "--" so a leading dash is not read as a flag
	return append(args, "-w", outputFile, "--", text)
}

// GenerateAudio generates a WAV file for the given text
func (e *ESpeak) GenerateAudio(ctx context.Context, text, voice, outputFile string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	return runEngine(ctx, "espeak-ng", e.buildArgs(text, voice, outputFile)...)
}

// SetSpeed updates the speech speed
func (e *ESpeak) SetSpeed(speed int) {
	if speed < 80 {
		speed = 80
	} else if speed > 450 {
		speed = 450
	}
	e.config.Speed = speed
}

// SetPitch updates the pitch (0-99, 50 is default)
func (e *ESpeak) SetPitch(pitch int) {
	if pitch < 0 {
		pitch = 0
	} else if pitch > 99 {
		pitch = 99
	}
	e.config.Pitch = pitch
}

// SetAmplitude updates the volume/amplitude (0-200, 100 is default)
func (e *ESpeak) SetAmplitude(amplitude int) {
	if amplitude < 0 {
		amplitude = 0
	} else if amplitude > 200 {
		amplitude = 200
	}
	e.config.Amplitude = amplitude
}

// SetWordGap updates the gap between words in 10ms units
func (e *ESpeak) SetWordGap(gap int) {
	if gap < 0 {
		gap = 0
	}
	e.config.WordGap = gap
}

// checkESpeakInstalled verifies that espeak-ng is available on the system
func checkESpeakInstalled() error {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}

// ListVoices returns the espeak-ng voices suitable for each target language
func ListVoices() []string {
	return []string{
		"en-us",    // American English
		"en-gb",    // British English
		"en-us+f3", // American English, female variant
		"de",       // German
		"de+f3",    // German, female variant
		"de+m3",    // German, male variant
	}
}

// UnknownVoices returns the voices of v that ListVoices does not name.
func UnknownVoices(v VoiceSet) []string {
	var unknown []string
	for _, voice := range []string{v.EN, v.DE} {
		if !slices.Contains(ListVoices(), voice) {
			unknown = append(unknown, voice)
		}
	}
	return unknown
}

// ConvertWAVToMP3 converts a WAV file to MP3 using ffmpeg
func ConvertWAVToMP3(ctx context.Context, wavFile, mp3File string) error {
	// Check if ffmpeg is installed
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}

	return runEngine(ctx, "ffmpeg", "-i", wavFile, "-acodec", "mp3", "-y", mp3File)
}

// GenerateMP3 generates an MP3 file for the given text. The intermediate
// WAV is registered with the job tracker in ctx; without one it is
// removed before returning.
func (e *ESpeak) GenerateMP3(ctx context.Context, text, voice, outputFile string) error {
	tracker, ok := scratch.FromContext(ctx)
	if !ok {
		tracker = scratch.NewTracker(filepath.Dir(outputFile))
		defer tracker.ReleaseAll()
	}

	wav, err := tracker.Create(scratch.IntermediateAudio, ".wav")
	if err != nil {
		return err
	}

	if err := e.GenerateAudio(ctx, text, voice, wav.Path); err != nil {
		return err
	}

	return ConvertWAVToMP3(ctx, wav.Path, outputFile)
}

// runEngine runs an external engine, killing it when ctx ends.
func runEngine(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted: %w", name, ctxErr)
		}
		return fmt.Errorf("%s failed: %w\nOutput: %s", name, err, string(output))
	}

	return nil
}

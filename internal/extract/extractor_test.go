package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"codeberg.org/snonux/denglish/internal/job"
	"codeberg.org/snonux/denglish/internal/ocr"
	"codeberg.org/snonux/denglish/internal/scratch"
	"codeberg.org/snonux/denglish/internal/transcribe"
)

type fakeTranscriber struct {
	result   transcribe.Result
	err      error
	lastPath string
	sawData  []byte
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (transcribe.Result, error) {
	f.lastPath = path
	f.sawData, _ = os.ReadFile(path)
	return f.result, f.err
}

func (f *fakeTranscriber) Name() string { return "fake-stt" }

type fakeRecognizer struct {
	text    string
	err     error
	profile ocr.Profile
	calls   int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img image.Image, profile ocr.Profile) (string, error) {
	f.calls++
	f.profile = profile
	return f.text, f.err
}

func (f *fakeRecognizer) Name() string { return "fake-ocr" }

func pngBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestExtractText(t *testing.T) {
	e := New(nil, nil, ocr.DefaultPreprocessConfig(), nil)
	tracker := scratch.NewTracker(t.TempDir())

	got, err := e.Extract(context.Background(), job.TextInput{Text: "  I has a cat \n"}, job.EN, tracker)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.Value != "I has a cat" || got.Source != job.ModalityText {
		t.Errorf("Extract() = %+v", got)
	}
	if tracker.Created() != 0 {
		t.Errorf("Text input created %d artifacts", tracker.Created())
	}
}

func TestExtractWhitespaceText(t *testing.T) {
	e := New(nil, nil, ocr.DefaultPreprocessConfig(), nil)

	_, err := e.Extract(context.Background(), job.TextInput{Text: "   "}, job.EN, scratch.NewTracker(t.TempDir()))
	if job.KindOf(err) != job.ExtractionFailed {
		t.Errorf("Expected ExtractionFailed, got %v", err)
	}
}

func TestExtractAudio(t *testing.T) {
	stt := &fakeTranscriber{result: transcribe.Result{Text: " hello world ", Language: "en"}}
	e := New(stt, nil, ocr.DefaultPreprocessConfig(), nil)
	tracker := scratch.NewTracker(t.TempDir())

	audio := base64.StdEncoding.EncodeToString([]byte("RIFFfakewav"))
	got, err := e.Extract(context.Background(), job.AudioInput{Encoded: audio}, job.EN, tracker)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.Value != "hello world" || got.Source != job.ModalityAudio {
		t.Errorf("Extract() = %+v", got)
	}
	if string(stt.sawData) != "RIFFfakewav" {
		t.Errorf("Transcriber saw %q", stt.sawData)
	}

	artifacts := tracker.Artifacts()
	if len(artifacts) != 1 || artifacts[0].Purpose != scratch.InputAudio || artifacts[0].Path != stt.lastPath {
		t.Fatalf("Unexpected artifacts: %+v", artifacts)
	}

	_ = tracker.ReleaseAll()
	if _, err := os.Stat(stt.lastPath); !os.IsNotExist(err) {
		t.Error("Input audio artifact was not removed")
	}
}

func TestExtractAudioFailures(t *testing.T) {
	valid := base64.StdEncoding.EncodeToString([]byte("RIFF"))

	tests := []struct {
		name        string
		encoded     string
		stt         *fakeTranscriber
		wantKind    job.Kind
		wantTracked int
	}{
		{"silent audio", valid, &fakeTranscriber{}, job.ExtractionFailed, 1},
		{"engine error", valid, &fakeTranscriber{err: errors.New("boom")}, job.ExtractionFailed, 1},
		{"bad base64", "!!!not base64!!!", &fakeTranscriber{}, job.DecodeFailed, 0},
		{"empty data url", "data:audio/wav;base64,", &fakeTranscriber{}, job.DecodeFailed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.stt, nil, ocr.DefaultPreprocessConfig(), nil)
			tracker := scratch.NewTracker(t.TempDir())

			_, err := e.Extract(context.Background(), job.AudioInput{Encoded: tt.encoded}, job.EN, tracker)
			if kind := job.KindOf(err); kind != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v (err %v)", kind, tt.wantKind, err)
			}
			if tracker.Created() != tt.wantTracked {
				t.Errorf("Created() = %d, want %d", tracker.Created(), tt.wantTracked)
			}
			_ = tracker.ReleaseAll()
			if tracker.Removed() != tracker.Created() {
				t.Errorf("Removed %d of %d artifacts", tracker.Removed(), tracker.Created())
			}
		})
	}
}

func TestExtractAudioWrapsCause(t *testing.T) {
	cause := errors.New("model not loaded")
	e := New(&fakeTranscriber{err: cause}, nil, ocr.DefaultPreprocessConfig(), nil)

	_, err := e.Extract(context.Background(), job.AudioInput{Encoded: "UklGRg=="}, job.EN, scratch.NewTracker(t.TempDir()))
	if !errors.Is(err, cause) {
		t.Errorf("Expected wrapped cause, got %v", err)
	}
}

func TestExtractImageProfile(t *testing.T) {
	tests := []struct {
		lang job.Language
		want ocr.Profile
	}{
		{job.EN, ocr.English},
		{job.DE, ocr.German},
	}

	for _, tt := range tests {
		t.Run(tt.lang.Code(), func(t *testing.T) {
			rec := &fakeRecognizer{text: "Ich bin mude"}
			e := New(nil, rec, ocr.PreprocessConfig{Threshold: true, Level: 128}, nil)
			tracker := scratch.NewTracker(t.TempDir())

			got, err := e.Extract(context.Background(), job.ImageInput{Encoded: pngBase64(t)}, tt.lang, tracker)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if rec.profile != tt.want {
				t.Errorf("profile = %q, want %q", rec.profile, tt.want)
			}
			if got.Source != job.ModalityImage {
				t.Errorf("Source = %v, want image", got.Source)
			}
			if tracker.Created() != 0 {
				t.Errorf("Image input created %d artifacts", tracker.Created())
			}
		})
	}
}

func TestExtractImageFailures(t *testing.T) {
	tests := []struct {
		name     string
		encoded  string
		rec      *fakeRecognizer
		wantKind job.Kind
		wantCall bool
	}{
		{"not an image", base64.StdEncoding.EncodeToString([]byte("plain text")), &fakeRecognizer{}, job.DecodeFailed, false},
		{"blank page", "", &fakeRecognizer{text: "  "}, job.ExtractionFailed, true},
		{"engine error", "", &fakeRecognizer{err: errors.New("quota")}, job.ExtractionFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := tt.encoded
			if encoded == "" {
				encoded = pngBase64(t)
			}
			e := New(nil, tt.rec, ocr.DefaultPreprocessConfig(), nil)

			_, err := e.Extract(context.Background(), job.ImageInput{Encoded: encoded}, job.DE, scratch.NewTracker(t.TempDir()))
			if kind := job.KindOf(err); kind != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v (err %v)", kind, tt.wantKind, err)
			}
			if (tt.rec.calls > 0) != tt.wantCall {
				t.Errorf("recognizer calls = %d, wantCall %v", tt.rec.calls, tt.wantCall)
			}
		})
	}
}

func TestExtractUnconfiguredEngines(t *testing.T) {
	e := New(nil, nil, ocr.DefaultPreprocessConfig(), nil)
	tracker := scratch.NewTracker(t.TempDir())

	_, err := e.Extract(context.Background(), job.AudioInput{Encoded: "UklGRg=="}, job.EN, tracker)
	if job.KindOf(err) != job.ExtractionFailed {
		t.Errorf("audio: expected ExtractionFailed, got %v", err)
	}
	_, err = e.Extract(context.Background(), job.ImageInput{Encoded: pngBase64(t)}, job.EN, tracker)
	if job.KindOf(err) != job.ExtractionFailed {
		t.Errorf("image: expected ExtractionFailed, got %v", err)
	}
	if tracker.Created() != 0 {
		t.Errorf("Expected no artifacts, got %d", tracker.Created())
	}
}

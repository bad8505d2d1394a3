package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile      string
	LogLevel     string
	LogFormat    string
	ScratchDir   string
	HistoryPath  string
	StageTimeout time.Duration

	// serve flags
	Addr          string
	MaxConcurrent int
	QueueTimeout  time.Duration

	// run flags
	BatchFile string
	Lang      string
	Parallel  int

	// Speech recognition flags
	STTProvider    string
	WhisperModel   string
	WhisperCommand string

	// OCR flags
	OCRProvider     string
	TesseractCmd    string
	OCRModel        string
	OCRGrayscale    bool
	OCRThreshold    bool
	OCRLevel        int
	OCRMaxDimension int

	// Language model flags
	LLMProvider string
	LLMModel    string
	MaxTokens   int
	Temperature float64

	// Speech synthesis flags
	AudioProvider     string
	AudioFallback     string
	AudioFormat       string
	VoiceEN           string
	VoiceDE           string
	OpenAIModel       string
	OpenAISpeed       float64
	OpenAIInstruction string
	ESpeakSpeed       int
	ESpeakPitch       int
	ESpeakAmplitude   int
	ESpeakWordGap     int

	// Circuit breaker flags
	BreakerEnabled     bool
	BreakerMaxFailures int
	BreakerTimeout     time.Duration

	// models flags
	AllModels bool

	// history flags
	HistoryLimit int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8080",
		MaxConcurrent:      4,
		QueueTimeout:       30 * time.Second,
		Lang:               "en",
		Parallel:           1,
		STTProvider:        "openai",
		WhisperModel:       "whisper-1",
		WhisperCommand:     "whisper-cli",
		OCRProvider:        "tesseract",
		TesseractCmd:       "tesseract",
		OCRModel:           "gemini-2.5-flash",
		OCRLevel:           128,
		OCRMaxDimension:    3000,
		LLMProvider:        "openai",
		MaxTokens:          400,
		Temperature:        0.3,
		AudioProvider:      "openai",
		AudioFormat:        "mp3",
		OpenAIModel:        "gpt-4o-mini-tts",
		OpenAISpeed:        1.0,
		ESpeakSpeed:        150,
		ESpeakPitch:        50,
		ESpeakAmplitude:    100,
		BreakerEnabled:     true,
		BreakerMaxFailures: 5,
		BreakerTimeout:     30 * time.Second,
		HistoryLimit:       20,
	}
}

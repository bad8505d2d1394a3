package processor

import (
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/denglish/internal/audio"
	"codeberg.org/snonux/denglish/internal/breaker"
	"codeberg.org/snonux/denglish/internal/cli"
	"codeberg.org/snonux/denglish/internal/ocr"
	"codeberg.org/snonux/denglish/internal/server"
	"codeberg.org/snonux/denglish/internal/transcribe"
	"codeberg.org/snonux/denglish/internal/tutor"
)

// Settings is the resolved worker configuration. Values come from flags,
// the config file and DENGLISH_* environment variables, in that order.
type Settings struct {
	LogLevel     string
	LogFormat    string
	ScratchDir   string
	HistoryPath  string
	StageTimeout time.Duration

	Transcribe transcribe.Config
	OCR        ocr.Config
	LLM        tutor.Config
	Audio      audio.Config
	Breaker    breaker.Config
	Server     server.Config
}

// LoadSettings reads the settings from viper. The cli package binds every
// flag to its key, so unset flags still contribute their defaults.
func LoadSettings() Settings {
	openAIKey := cli.GetOpenAIKey()
	geminiKey := cli.GetGeminiKey()

	s := Settings{
		LogLevel:     viper.GetString("log.level"),
		LogFormat:    viper.GetString("log.format"),
		ScratchDir:   viper.GetString("pipeline.scratch_dir"),
		HistoryPath:  viper.GetString("history.path"),
		StageTimeout: viper.GetDuration("pipeline.stage_timeout"),
	}

	s.Transcribe = transcribe.Config{
		Provider:    viper.GetString("transcribe.provider"),
		OpenAIKey:   openAIKey,
		OpenAIModel: viper.GetString("transcribe.model"),
		Command:     viper.GetString("transcribe.command"),
		CommandArgs: viper.GetStringSlice("transcribe.args"),
	}

	s.OCR = ocr.Config{
		Provider:         viper.GetString("ocr.provider"),
		TesseractCommand: viper.GetString("ocr.command"),
		GeminiKey:        geminiKey,
		GeminiModel:      viper.GetString("ocr.model"),
		Preprocess: ocr.PreprocessConfig{
			MaxDimension: viper.GetInt("ocr.max_dimension"),
			Grayscale:    viper.GetBool("ocr.grayscale"),
			Threshold:    viper.GetBool("ocr.threshold"),
			Level:        clampLevel(viper.GetInt("ocr.level")),
		},
	}

	s.LLM = tutor.Config{
		Provider:  viper.GetString("llm.provider"),
		Model:     viper.GetString("llm.model"),
		OpenAIKey: openAIKey,
		GeminiKey: geminiKey,
		Params: tutor.Params{
			MaxTokens:   viper.GetInt("llm.max_tokens"),
			Temperature: float32(viper.GetFloat64("llm.temperature")),
		},
	}

	audioDefaults := audio.DefaultProviderConfig()
	s.Audio = audio.Config{
		Provider:     viper.GetString("audio.provider"),
		Fallback:     viper.GetString("audio.fallback"),
		OutputFormat: viper.GetString("audio.format"),
		Voices: audio.VoiceSet{
			EN: viper.GetString("audio.voice_en"),
			DE: viper.GetString("audio.voice_de"),
		},
		OpenAIKey:         openAIKey,
		OpenAIModel:       viper.GetString("audio.openai_model"),
		OpenAISpeed:       viper.GetFloat64("audio.openai_speed"),
		OpenAIInstruction: viper.GetString("audio.openai_instruction"),
		ESpeak: &audio.ESpeakConfig{
			Speed:     viper.GetInt("audio.espeak_speed"),
			Pitch:     viper.GetInt("audio.espeak_pitch"),
			Amplitude: viper.GetInt("audio.espeak_amplitude"),
			WordGap:   viper.GetInt("audio.espeak_word_gap"),
		},
	}
	if s.Audio.OpenAIInstruction == "" {
		s.Audio.OpenAIInstruction = audioDefaults.OpenAIInstruction
	}

	s.Breaker = breaker.Config{
		Enabled:     viper.GetBool("breaker.enabled"),
		MaxFailures: uint32(max(viper.GetInt("breaker.max_failures"), 0)),
		Timeout:     viper.GetDuration("breaker.timeout"),
	}

	serverDefaults := server.DefaultConfig()
	s.Server = server.Config{
		Addr:          viper.GetString("server.addr"),
		MaxConcurrent: int64(viper.GetInt("server.max_concurrent")),
		QueueTimeout:  viper.GetDuration("server.queue_timeout"),
		MaxBodyBytes:  viper.GetInt64("server.max_body_bytes"),
		ShutdownGrace: viper.GetDuration("server.shutdown_grace"),
	}
	if s.Server.Addr == "" {
		s.Server.Addr = serverDefaults.Addr
	}

	return s
}

func clampLevel(level int) uint8 {
	return uint8(min(max(level, 0), 255))
}

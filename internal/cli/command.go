package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/denglish/internal"
)

// Commands groups the root command and its subcommands so callers can
// attach their run functions.
type Commands struct {
	Root   *cobra.Command
	Serve  *cobra.Command
	Run     *cobra.Command
	Models  *cobra.Command
	History *cobra.Command
}

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *Commands {
	rootCmd := &cobra.Command{
		Use:   "denglish",
		Short: "English and German tutor worker",
		Long: `denglish corrects English and German exercises for Vietnamese students.

A job carries typed text, a photo of an exercise or a voice recording.
The worker extracts the text, asks a language model to correct and
explain it, and speaks the feedback.

Examples:
  denglish serve --addr :8080          # Serve jobs over HTTP
  denglish run job.json                # Process one job file
  echo '{"input":{"text":"I has a cat"}}' | denglish run
  denglish run --batch sentences.txt   # Process one job per line
  denglish models                      # List OpenAI models for your key
  denglish history --history jobs.db   # Show recent job outcomes`,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tutoring jobs over HTTP",
		Args:  cobra.NoArgs,
	}

	runCmd := &cobra.Command{
		Use:   "run [job.json]",
		Short: "Process a job from a file or stdin",
		Long: `Process a single job JSON ({"id": ..., "input": {...}}) read from a
file or stdin and print the result envelope. With --batch, every line of
the batch file is a job: either a job JSON object or a bare sentence
processed as a text job.`,
		Args: cobra.MaximumNArgs(1),
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List available OpenAI models for the current API key",
		Args:  cobra.NoArgs,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent job outcomes from the job history",
		Args:  cobra.NoArgs,
	}

	rootCmd.AddCommand(serveCmd, runCmd, modelsCmd, historyCmd)

	cmds := &Commands{Root: rootCmd, Serve: serveCmd, Run: runCmd, Models: modelsCmd, History: historyCmd}
	setupFlags(cmds, flags)

	return cmds
}

func setupFlags(cmds *Commands, flags *Flags) {
	pf := cmds.Root.PersistentFlags()

	// Global flags
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.denglish.yaml)")
	pf.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	pf.StringVar(&flags.LogFormat, "log-format", flags.LogFormat, "Log format: text or json")
	pf.StringVar(&flags.ScratchDir, "scratch-dir", "", "Directory for per-job temporary files (default: system temp)")
	pf.StringVar(&flags.HistoryPath, "history", "", "SQLite file for the job outcome ledger (default: disabled)")
	pf.DurationVar(&flags.StageTimeout, "stage-timeout", 0, "Deadline per pipeline stage, 0 for none")

	// Speech recognition flags
	pf.StringVar(&flags.STTProvider, "stt-provider", flags.STTProvider, "Speech recognition: openai or command")
	pf.StringVar(&flags.WhisperModel, "whisper-model", flags.WhisperModel, "OpenAI transcription model")
	pf.StringVar(&flags.WhisperCommand, "whisper-command", flags.WhisperCommand, "Local transcription binary (stt-provider=command)")

	// OCR flags
	pf.StringVar(&flags.OCRProvider, "ocr-provider", flags.OCRProvider, "Text recognition: tesseract or gemini")
	pf.StringVar(&flags.TesseractCmd, "tesseract-command", flags.TesseractCmd, "Tesseract binary")
	pf.StringVar(&flags.OCRModel, "ocr-model", flags.OCRModel, "Gemini model for text recognition")
	pf.BoolVar(&flags.OCRGrayscale, "ocr-grayscale", false, "Convert images to grayscale before recognition")
	pf.BoolVar(&flags.OCRThreshold, "ocr-threshold", false, "Binarize images before recognition")
	pf.IntVar(&flags.OCRLevel, "ocr-level", flags.OCRLevel, "Binarization level (0-255)")
	pf.IntVar(&flags.OCRMaxDimension, "ocr-max-dimension", flags.OCRMaxDimension, "Downscale images whose longest side exceeds this, 0 to disable")

	// Language model flags
	pf.StringVar(&flags.LLMProvider, "llm-provider", flags.LLMProvider, "Language model: openai or gemini")
	pf.StringVar(&flags.LLMModel, "llm-model", "", "Language model name (default depends on provider)")
	pf.IntVar(&flags.MaxTokens, "max-tokens", flags.MaxTokens, "Maximum tokens of the tutor reply")
	pf.Float64Var(&flags.Temperature, "temperature", flags.Temperature, "Sampling temperature of the tutor reply")

	// Speech synthesis flags
	pf.StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Speech synthesis: openai or espeak")
	pf.StringVar(&flags.AudioFallback, "audio-fallback", "", "Fallback speech synthesis provider, e.g. espeak")
	pf.StringVarP(&flags.AudioFormat, "format", "f", flags.AudioFormat, "Audio format (wav or mp3)")
	pf.StringVar(&flags.VoiceEN, "voice-en", "", "Voice for English feedback (default depends on provider)")
	pf.StringVar(&flags.VoiceDE, "voice-de", "", "Voice for German feedback (default depends on provider)")
	pf.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	pf.Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0, may be ignored by gpt-4o-mini-tts)")
	pf.StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts model")
	pf.IntVar(&flags.ESpeakSpeed, "espeak-speed", flags.ESpeakSpeed, "espeak-ng speed in words per minute (80-450)")
	pf.IntVar(&flags.ESpeakPitch, "espeak-pitch", flags.ESpeakPitch, "espeak-ng pitch (0-99)")
	pf.IntVar(&flags.ESpeakAmplitude, "espeak-amplitude", flags.ESpeakAmplitude, "espeak-ng volume (0-200)")
	pf.IntVar(&flags.ESpeakWordGap, "espeak-word-gap", 0, "espeak-ng gap between words in 10ms units")

	// Circuit breaker flags
	pf.BoolVar(&flags.BreakerEnabled, "breaker", flags.BreakerEnabled, "Guard engines with circuit breakers")
	pf.IntVar(&flags.BreakerMaxFailures, "breaker-max-failures", flags.BreakerMaxFailures, "Consecutive engine failures before a breaker opens")
	pf.DurationVar(&flags.BreakerTimeout, "breaker-timeout", flags.BreakerTimeout, "How long an open breaker rejects calls")

	// serve flags
	cmds.Serve.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "Listen address")
	cmds.Serve.Flags().IntVar(&flags.MaxConcurrent, "max-concurrent", flags.MaxConcurrent, "Jobs processed at the same time")
	cmds.Serve.Flags().DurationVar(&flags.QueueTimeout, "queue-timeout", flags.QueueTimeout, "How long a job may wait for a free slot")

	// run flags
	cmds.Run.Flags().StringVar(&flags.BatchFile, "batch", "", "Process jobs from file (one per line)")
	cmds.Run.Flags().StringVar(&flags.Lang, "lang", flags.Lang, "Target language for bare batch sentences: en or de")
	cmds.Run.Flags().IntVarP(&flags.Parallel, "parallel", "p", flags.Parallel, "Batch jobs processed at the same time")

	// models flags
	cmds.Models.Flags().BoolVar(&flags.AllModels, "all", false, "List every chat model instead of the relevant ones")

	// history flags
	cmds.History.Flags().IntVarP(&flags.HistoryLimit, "limit", "n", flags.HistoryLimit, "Number of recent jobs to show")

	// Bind flags to viper
	bindFlagsToViper(cmds)
}

func bindFlagsToViper(cmds *Commands) {
	pf := cmds.Root.PersistentFlags()

	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))
	viper.BindPFlag("pipeline.scratch_dir", pf.Lookup("scratch-dir"))
	viper.BindPFlag("pipeline.stage_timeout", pf.Lookup("stage-timeout"))
	viper.BindPFlag("history.path", pf.Lookup("history"))

	viper.BindPFlag("transcribe.provider", pf.Lookup("stt-provider"))
	viper.BindPFlag("transcribe.model", pf.Lookup("whisper-model"))
	viper.BindPFlag("transcribe.command", pf.Lookup("whisper-command"))

	viper.BindPFlag("ocr.provider", pf.Lookup("ocr-provider"))
	viper.BindPFlag("ocr.command", pf.Lookup("tesseract-command"))
	viper.BindPFlag("ocr.model", pf.Lookup("ocr-model"))
	viper.BindPFlag("ocr.grayscale", pf.Lookup("ocr-grayscale"))
	viper.BindPFlag("ocr.threshold", pf.Lookup("ocr-threshold"))
	viper.BindPFlag("ocr.level", pf.Lookup("ocr-level"))
	viper.BindPFlag("ocr.max_dimension", pf.Lookup("ocr-max-dimension"))

	viper.BindPFlag("llm.provider", pf.Lookup("llm-provider"))
	viper.BindPFlag("llm.model", pf.Lookup("llm-model"))
	viper.BindPFlag("llm.max_tokens", pf.Lookup("max-tokens"))
	viper.BindPFlag("llm.temperature", pf.Lookup("temperature"))

	viper.BindPFlag("audio.provider", pf.Lookup("audio-provider"))
	viper.BindPFlag("audio.fallback", pf.Lookup("audio-fallback"))
	viper.BindPFlag("audio.format", pf.Lookup("format"))
	viper.BindPFlag("audio.voice_en", pf.Lookup("voice-en"))
	viper.BindPFlag("audio.voice_de", pf.Lookup("voice-de"))
	viper.BindPFlag("audio.openai_model", pf.Lookup("openai-model"))
	viper.BindPFlag("audio.openai_speed", pf.Lookup("openai-speed"))
	viper.BindPFlag("audio.openai_instruction", pf.Lookup("openai-instruction"))
	viper.BindPFlag("audio.espeak_speed", pf.Lookup("espeak-speed"))
	viper.BindPFlag("audio.espeak_pitch", pf.Lookup("espeak-pitch"))
	viper.BindPFlag("audio.espeak_amplitude", pf.Lookup("espeak-amplitude"))
	viper.BindPFlag("audio.espeak_word_gap", pf.Lookup("espeak-word-gap"))

	viper.BindPFlag("breaker.enabled", pf.Lookup("breaker"))
	viper.BindPFlag("breaker.max_failures", pf.Lookup("breaker-max-failures"))
	viper.BindPFlag("breaker.timeout", pf.Lookup("breaker-timeout"))

	viper.BindPFlag("server.addr", cmds.Serve.Flags().Lookup("addr"))
	viper.BindPFlag("server.max_concurrent", cmds.Serve.Flags().Lookup("max-concurrent"))
	viper.BindPFlag("server.queue_timeout", cmds.Serve.Flags().Lookup("queue-timeout"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	// A .env file in the working directory may hold the API keys; the
	// real environment always wins over it
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".denglish" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".denglish")
	}

	// Environment variables
	viper.SetEnvPrefix("DENGLISH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("openai.api_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return viper.GetString("gemini.api_key")
}

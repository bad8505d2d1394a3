package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func TestCreateRootCommand(t *testing.T) {
	flags := NewFlags()
	cmds := CreateRootCommand(flags)

	// Test basic command properties
	if cmds.Root.Use != "denglish" {
		t.Errorf("Expected Use to be 'denglish', got %s", cmds.Root.Use)
	}

	if !strings.Contains(cmds.Root.Short, "tutor") {
		t.Errorf("Expected Short description to mention the tutor, got %q", cmds.Root.Short)
	}

	subcommands := map[string]bool{}
	for _, sub := range cmds.Root.Commands() {
		subcommands[sub.Name()] = true
	}
	for _, name := range []string{"serve", "run", "models", "history"} {
		if !subcommands[name] {
			t.Errorf("Expected subcommand %s", name)
		}
	}

	// Test that flags are set up
	flagTests := []struct {
		name  string
		flags *pflag.FlagSet
	}{
		{"config", cmds.Root.PersistentFlags()},
		{"log-level", cmds.Root.PersistentFlags()},
		{"stage-timeout", cmds.Root.PersistentFlags()},
		{"history", cmds.Root.PersistentFlags()},
		{"stt-provider", cmds.Root.PersistentFlags()},
		{"ocr-provider", cmds.Root.PersistentFlags()},
		{"ocr-threshold", cmds.Root.PersistentFlags()},
		{"llm-provider", cmds.Root.PersistentFlags()},
		{"audio-provider", cmds.Root.PersistentFlags()},
		{"voice-de", cmds.Root.PersistentFlags()},
		{"breaker-timeout", cmds.Root.PersistentFlags()},
		{"addr", cmds.Serve.Flags()},
		{"max-concurrent", cmds.Serve.Flags()},
		{"batch", cmds.Run.Flags()},
		{"lang", cmds.Run.Flags()},
		{"all", cmds.Models.Flags()},
		{"limit", cmds.History.Flags()},
		{"espeak-speed", cmds.Root.PersistentFlags()},
	}

	for _, tt := range flagTests {
		t.Run("flag_"+tt.name, func(t *testing.T) {
			if tt.flags.Lookup(tt.name) == nil {
				t.Errorf("Expected flag %s to exist", tt.name)
			}
		})
	}
}

func TestSetupFlagsDefaults(t *testing.T) {
	cmds := CreateRootCommand(NewFlags())

	tests := []struct {
		flags *pflag.FlagSet
		name  string
		want  string
	}{
		{cmds.Root.PersistentFlags(), "format", "mp3"},
		{cmds.Root.PersistentFlags(), "max-tokens", "400"},
		{cmds.Root.PersistentFlags(), "temperature", "0.3"},
		{cmds.Root.PersistentFlags(), "ocr-level", "128"},
		{cmds.Root.PersistentFlags(), "stage-timeout", "0s"},
		{cmds.Serve.Flags(), "addr", ":8080"},
	}

	for _, tt := range tests {
		flag := tt.flags.Lookup(tt.name)
		if flag == nil {
			t.Fatalf("%s flag not found", tt.name)
		}
		if flag.DefValue != tt.want {
			t.Errorf("Expected default %s to be %s, got %s", tt.name, tt.want, flag.DefValue)
		}
	}
}

func TestInitConfig(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		check     func(t *testing.T)
	}{
		{
			name: "with config file",
			setupFunc: func(t *testing.T) string {
				tmpDir := t.TempDir()
				cfgPath := filepath.Join(tmpDir, "test-config.yaml")
				content := `llm:
  provider: gemini
audio:
  voice_de: onyx
pipeline:
  stage_timeout: 45s`
				if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to create test config: %v", err)
				}
				return cfgPath
			},
			check: func(t *testing.T) {
				if viper.GetString("llm.provider") != "gemini" {
					t.Errorf("Expected llm.provider gemini, got %q", viper.GetString("llm.provider"))
				}
				if viper.GetString("audio.voice_de") != "onyx" {
					t.Errorf("Expected audio.voice_de onyx, got %q", viper.GetString("audio.voice_de"))
				}
				if viper.GetDuration("pipeline.stage_timeout") != 45*time.Second {
					t.Errorf("Expected 45s stage timeout, got %v", viper.GetDuration("pipeline.stage_timeout"))
				}
			},
		},
		{
			name: "without config file",
			setupFunc: func(t *testing.T) string {
				return ""
			},
			check: func(t *testing.T) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper for each test
			viper.Reset()

			InitConfig(tt.setupFunc(t))
			tt.check(t)

			// Test environment variable prefix and nested keys
			t.Setenv("DENGLISH_TEST_VAR", "test-value")
			t.Setenv("DENGLISH_SERVER_ADDR", ":9999")

			if viper.GetString("test_var") != "test-value" {
				t.Error("Environment variable not properly loaded")
			}
			if viper.GetString("server.addr") != ":9999" {
				t.Errorf("Expected nested key from env, got %q", viper.GetString("server.addr"))
			}
		})
	}
}

func TestGetOpenAIKey(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	tests := []struct {
		name      string
		envKey    string
		configKey string
		expected  string
	}{
		{
			name:      "from environment",
			envKey:    "env-test-key",
			configKey: "config-test-key",
			expected:  "env-test-key",
		},
		{
			name:      "from config when no env",
			envKey:    "",
			configKey: "config-test-key",
			expected:  "config-test-key",
		},
		{
			name:      "empty when neither set",
			envKey:    "",
			configKey: "",
			expected:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper
			viper.Reset()

			// Set up environment
			t.Setenv("OPENAI_API_KEY", tt.envKey)

			// Set up config
			if tt.configKey != "" {
				viper.Set("openai.api_key", tt.configKey)
			}

			got := GetOpenAIKey()
			if got != tt.expected {
				t.Errorf("GetOpenAIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetGeminiKey(t *testing.T) {
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	viper.Reset()
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	if got := GetGeminiKey(); got != "google-key" {
		t.Errorf("GetGeminiKey() = %q, want google-key", got)
	}

	t.Setenv("GEMINI_API_KEY", "gemini-key")
	if got := GetGeminiKey(); got != "gemini-key" {
		t.Errorf("GetGeminiKey() = %q, want gemini-key", got)
	}

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	viper.Set("gemini.api_key", "config-key")
	if got := GetGeminiKey(); got != "config-key" {
		t.Errorf("GetGeminiKey() = %q, want config-key", got)
	}
}

func TestBindFlagsToViper(t *testing.T) {
	// Save original viper state
	originalConfig := viper.New()
	*originalConfig = *viper.GetViper()
	defer func() {
		*viper.GetViper() = *originalConfig
	}()

	// Reset viper
	viper.Reset()

	cmds := CreateRootCommand(NewFlags())

	// Set some flag values
	cmds.Root.PersistentFlags().Set("format", "wav")
	cmds.Root.PersistentFlags().Set("voice-de", "onyx")
	cmds.Root.PersistentFlags().Set("stage-timeout", "2m")
	cmds.Serve.Flags().Set("addr", "127.0.0.1:9000")

	// Test that values are bound
	if viper.GetString("audio.format") != "wav" {
		t.Errorf("Expected audio.format to be wav, got %s", viper.GetString("audio.format"))
	}

	if viper.GetString("audio.voice_de") != "onyx" {
		t.Errorf("Expected audio.voice_de to be onyx, got %s", viper.GetString("audio.voice_de"))
	}

	if viper.GetDuration("pipeline.stage_timeout") != 2*time.Minute {
		t.Errorf("Expected pipeline.stage_timeout to be 2m, got %v", viper.GetDuration("pipeline.stage_timeout"))
	}

	if viper.GetString("server.addr") != "127.0.0.1:9000" {
		t.Errorf("Expected server.addr to be 127.0.0.1:9000, got %s", viper.GetString("server.addr"))
	}

	// Unchanged flags still provide their defaults
	if viper.GetInt("llm.max_tokens") != 400 {
		t.Errorf("Expected llm.max_tokens default 400, got %d", viper.GetInt("llm.max_tokens"))
	}
}

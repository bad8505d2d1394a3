package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Catalog holds model ids grouped by the stage that can use them
type Catalog struct {
	Transcription []string
	Speech        []string
	Chat          []string
}

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
	}
}

// Categorize groups model ids by stage
func Categorize(ids []string) Catalog {
	var catalog Catalog

	for _, id := range ids {
		switch {
		case strings.Contains(id, "whisper") || strings.Contains(id, "transcribe"):
			catalog.Transcription = append(catalog.Transcription, id)
		case strings.Contains(id, "tts") || strings.Contains(id, "audio"):
			catalog.Speech = append(catalog.Speech, id)
		case strings.Contains(id, "gpt") || strings.Contains(id, "chat"):
			catalog.Chat = append(catalog.Chat, id)
		}
	}

	// Sort models
	sort.Strings(catalog.Transcription)
	sort.Strings(catalog.Speech)
	sort.Strings(catalog.Chat)

	return catalog
}

// Fetch returns the models available to the key
func (l *Lister) Fetch(ctx context.Context) (Catalog, error) {
	if l.apiKey == "" {
		return Catalog{}, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .denglish.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, model := range models.Models {
		ids = append(ids, model.ID)
	}
	return Categorize(ids), nil
}

// ListAvailableModels prints all available OpenAI models categorized by stage
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer, all bool) error {
	catalog, err := l.Fetch(ctx)
	if err != nil {
		return err
	}
	Print(w, catalog, all)
	return nil
}

// Print writes catalog to w. Unless all is set, long chat model lists are
// cut down to the gpt-4 family.
func Print(w io.Writer, catalog Catalog, all bool) {
	fmt.Fprintln(w, "Available OpenAI Models:")

	printSection(w, "Speech Recognition Models (transcribe.model):", catalog.Transcription, "No transcription models found")
	printSection(w, "Text-to-Speech Models (audio.openai_model):", catalog.Speech, "No TTS models found")

	fmt.Fprintln(w, "\nChat Models (llm.model):")
	if !all && len(catalog.Chat) > 10 {
		// Show only relevant models
		relevantModels := []string{}
		for _, model := range catalog.Chat {
			if strings.Contains(model, "gpt-4") {
				relevantModels = append(relevantModels, model)
			}
		}
		for _, model := range relevantModels {
			fmt.Fprintf(w, "  %s\n", model)
		}
		fmt.Fprintf(w, "  ... and %d more models (use --all)\n", len(catalog.Chat)-len(relevantModels))
		return
	}
	for _, model := range catalog.Chat {
		fmt.Fprintf(w, "  %s\n", model)
	}
}

func printSection(w io.Writer, title string, models []string, empty string) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(models) == 0 {
		fmt.Fprintf(w, "  %s\n", empty)
		return
	}
	for _, model := range models {
		fmt.Fprintf(w, "  %s\n", model)
	}
}
